package collection

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/zenithds/zenithds/internal/domain"
	"github.com/zenithds/zenithds/internal/domain/table"
	"github.com/zenithds/zenithds/internal/logger"
	"github.com/zenithds/zenithds/internal/metrics"
	"github.com/zenithds/zenithds/internal/repository/csvfile"
)

// DefaultHeaderSample is the number of existing files checked on insert.
const DefaultHeaderSample = 3

// Service handles the write path: insert, delete and render.
type Service struct {
	repo   Repository
	sample int
}

// New creates a collection service.
func New(repo Repository) *Service {
	return &Service{repo: repo, sample: DefaultHeaderSample}
}

// WithHeaderSample configures how many existing files are checked on insert.
func (s *Service) WithHeaderSample(n int) *Service {
	if n > 0 {
		s.sample = n
	}
	return s
}

// Insert writes header and rows as filename in the collection, replacing any
// file of that name. The header must equal, in order, the header of every
// sampled existing file.
func (s *Service) Insert(
	ctx context.Context, collection, filename string, header []string, rows [][]string,
) (err error) {
	defer func() { metrics.WritesTotal.WithLabelValues("insert", metrics.Status(err)).Inc() }()

	if err := validateInsert(collection, filename, header, rows); err != nil {
		return err
	}

	existing, err := s.repo.SampleHeaders(ctx, collection, s.sample)
	if err != nil {
		return fmt.Errorf("sample headers: %w", err)
	}
	for _, h := range existing {
		if !slices.Equal(h, header) {
			return fmt.Errorf("header %v differs from collection header %v: %w", header, h, domain.ErrQuery)
		}
	}

	if err := s.repo.Write(ctx, collection, filename, header, rows); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.FromContext(ctx).Info("inserted file",
		zap.String("collection", collection),
		zap.String("file", filename),
		zap.Int("header_len", len(header)),
		zap.Int("rows", len(rows)),
	)
	return nil
}

// Delete removes filename from the collection.
func (s *Service) Delete(ctx context.Context, collection, filename string) (err error) {
	defer func() { metrics.WritesTotal.WithLabelValues("delete", metrics.Status(err)).Inc() }()

	if err := validateNames(collection, filename); err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, collection, filename); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	logger.FromContext(ctx).Info("deleted file",
		zap.String("collection", collection),
		zap.String("file", filename),
	)
	return nil
}

// Render parses raw CSV with the same header and row-length rules as a scan,
// without predicates or projection. Nothing is stored.
func (s *Service) Render(_ context.Context, data []byte) (table.Table, error) {
	t, err := csvfile.Scan(bytes.NewReader(data), nil)
	if err != nil {
		return table.Table{}, fmt.Errorf("render: %w", err)
	}
	return t, nil
}

func validateNames(collection, filename string) error {
	if collection == "" {
		return fmt.Errorf("collection is required: %w", domain.ErrQuery)
	}
	if filename == "" {
		return fmt.Errorf("filename is required: %w", domain.ErrQuery)
	}
	if !isPlainName(collection) {
		return fmt.Errorf("collection %q must be a single path element: %w", collection, domain.ErrQuery)
	}
	if !isPlainName(filename) {
		return fmt.Errorf("filename %q must be a single path element: %w", filename, domain.ErrQuery)
	}
	return nil
}

func isPlainName(name string) bool {
	return name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func validateInsert(collection, filename string, header []string, rows [][]string) error {
	if err := validateNames(collection, filename); err != nil {
		return err
	}
	if len(header) == 0 {
		return fmt.Errorf("header is required: %w", domain.ErrQuery)
	}
	// a header with an empty cell would not be detected as the header on read
	for i, h := range header {
		if h == "" {
			return fmt.Errorf("header column %d is empty: %w", i, domain.ErrQuery)
		}
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("row %d has %d values, header has %d: %w",
				i, len(row), len(header), domain.ErrQuery)
		}
	}
	return nil
}
