package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zenithds/zenithds/internal/domain"
	"github.com/zenithds/zenithds/internal/domain/file"
	"github.com/zenithds/zenithds/internal/domain/query"
	"github.com/zenithds/zenithds/internal/domain/table"
)

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // row length is checked against the detected header
	return cr
}

// isComplete reports whether every cell of the record is non-empty.
func isComplete(record []string) bool {
	for _, v := range record {
		if v == "" {
			return false
		}
	}
	return len(record) > 0
}

// Scan streams CSV from r and returns the detected header and matching rows.
//
// The header is the first record whose cells are all non-empty; records before
// it are discarded. Afterwards only records with the header's length are
// considered. A nil query returns every such record unchanged.
func Scan(r io.Reader, q *query.Query) (table.Table, error) {
	cr := newReader(r)

	var header []string
	rows := make([][]string, 0)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table.Table{}, domain.CSVError("read record", err)
		}

		if header == nil {
			if isComplete(record) {
				header = record
			}
			continue
		}
		if len(record) != len(header) {
			continue
		}

		if q == nil {
			rows = append(rows, record)
			continue
		}
		if row, ok := filterRow(header, record, q); ok {
			rows = append(rows, row)
		}
	}

	if header == nil {
		header = []string{}
	}
	if q != nil && q.HasProjection() {
		header = project(header, q.Fields())
	}
	return table.Table{Header: header, Rows: rows}, nil
}

// filterRow applies the query predicates and projection to one eligible record.
func filterRow(header, record []string, q *query.Query) ([]string, bool) {
	if len(q.Predicates()) == 0 && !q.HasProjection() {
		return record, true
	}

	values := make(map[string]string, len(header))
	for i, k := range header {
		values[k] = record[i]
	}
	if !q.Match(values) {
		return nil, false
	}
	if !q.HasProjection() {
		return record, true
	}

	out := make([]string, 0, len(q.Fields()))
	for _, f := range q.Fields() {
		if v, ok := values[f]; ok {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// project returns the requested fields present in header, in request order.
func project(header, fields []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := present[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// ScanFile opens path and scans it with q.
func ScanFile(path string, q *query.Query) (table.Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return table.Table{}, domain.FileSystemError("open "+path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := Scan(f, q)
	if err != nil {
		return table.Table{}, fmt.Errorf("scan %s: %w", path, err)
	}
	return t, nil
}

// DetectHeader reads r only as far as the first complete record and returns it.
// It returns nil when no record qualifies.
func DetectHeader(r io.Reader) ([]string, error) {
	cr := newReader(r)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, domain.CSVError("read record", err)
		}
		if isComplete(record) {
			return record, nil
		}
	}
}

// Write encodes header followed by rows as CSV.
func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return domain.CSVError("write header", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return domain.CSVError("write rows", err)
	}
	return nil
}

// Scanner scans collection files from disk.
type Scanner struct{}

// NewScanner creates a Scanner.
func NewScanner() *Scanner { return &Scanner{} }

// Scan scans the file described by f.
func (*Scanner) Scan(_ context.Context, f file.Metadata, q *query.Query) (table.Table, error) {
	return ScanFile(f.Path, q)
}
