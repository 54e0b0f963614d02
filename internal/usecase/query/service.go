package query

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/zenithds/zenithds/internal/domain/file"
	domquery "github.com/zenithds/zenithds/internal/domain/query"
	"github.com/zenithds/zenithds/internal/domain/table"
	"github.com/zenithds/zenithds/internal/logger"
	"github.com/zenithds/zenithds/internal/metrics"
)

// Service executes selects by scattering file groups over a worker pool and
// gathering the partial tables.
type Service struct {
	files   FileLister
	scanner FileScanner
	workers int
}

// New creates a query service.
func New(files FileLister, scanner FileScanner) *Service {
	return &Service{files: files, scanner: scanner, workers: file.DefaultGroups}
}

// WithWorkers configures the number of groups and workers per select.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Select runs a query over every eligible file of the collection.
//
// It fails only on predicate syntax or enumeration errors. A file that cannot
// be scanned is logged and left out of the result. Row order across files is
// not deterministic. The context supplies the logger; scans are not cancelled.
func (s *Service) Select(
	ctx context.Context, collection string, fields, predicates []string,
) (_ table.Table, err error) {
	start := time.Now()
	// unknown until the collection is listed, so bad names cannot add series
	label := metrics.UnresolvedCollection
	defer func() {
		metrics.SelectDuration.WithLabelValues(label, metrics.Status(err)).
			Observe(time.Since(start).Seconds())
	}()

	q, err := domquery.New(fields, predicates)
	if err != nil {
		return table.Table{}, fmt.Errorf("parse query: %w", err)
	}

	files, err := s.files.List(ctx, collection, q.FilenamePredicates())
	if err != nil {
		return table.Table{}, fmt.Errorf("list files: %w", err)
	}
	label = collection

	groups := file.Partition(files, s.workers)
	log := logger.FromContext(ctx)
	log.Info("select",
		zap.String("collection", collection),
		zap.Int("files", len(files)),
		zap.Int("groups", len(groups)),
		zap.Strings("group_sizes", groupSizes(groups)),
	)

	result, err := s.gather(ctx, collection, groups, q)
	if err != nil {
		return table.Table{}, err
	}
	metrics.RowsReturnedTotal.WithLabelValues(collection).Add(float64(len(result.Rows)))
	return result, nil
}

// gather runs one task per group on a fresh pool and merges the results as
// they arrive. The first non-empty header wins.
func (s *Service) gather(
	ctx context.Context, collection string, groups []file.Group, q *domquery.Query,
) (table.Table, error) {
	log := logger.FromContext(ctx)

	pool, err := ants.NewPool(len(groups), ants.WithPanicHandler(func(v any) {
		log.Error("scan worker panic", zap.String("collection", collection), zap.Any("panic", v))
	}))
	if err != nil {
		return table.Table{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan table.Table, len(groups))
	var wg sync.WaitGroup
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		wg.Add(1)
		group := g
		if err := pool.Submit(func() {
			defer wg.Done()
			s.scanGroup(ctx, collection, group, q, results)
		}); err != nil {
			wg.Done()
			log.Error("submit scan group", zap.String("collection", collection), zap.Error(err))
		}
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	merged := table.Table{Header: []string{}, Rows: make([][]string, 0)}
	headerSet := false
	for t := range results {
		if !headerSet && len(t.Header) > 0 {
			merged.Header = t.Header
			headerSet = true
		}
		merged.Rows = append(merged.Rows, t.Rows...)
	}
	return merged, nil
}

// scanGroup scans the group's files in order and forwards each result.
func (s *Service) scanGroup(
	ctx context.Context, collection string, group file.Group, q *domquery.Query, out chan<- table.Table,
) {
	log := logger.FromContext(ctx)
	for _, f := range group {
		metrics.BytesScannedTotal.WithLabelValues(collection).Add(float64(f.Size))
		t, err := s.scanner.Scan(ctx, f, q)
		if err != nil {
			metrics.FilesScannedTotal.WithLabelValues(collection, "error").Inc()
			log.Warn("scan file failed",
				zap.String("collection", f.Collection),
				zap.String("file", f.Name),
				zap.Error(err),
			)
			continue
		}
		metrics.FilesScannedTotal.WithLabelValues(collection, "ok").Inc()
		out <- t
	}
}

func groupSizes(groups []file.Group) []string {
	sizes := make([]string, len(groups))
	for i, g := range groups {
		sizes[i] = strconv.FormatInt(g.Size()/1000, 10) + "KB"
	}
	return sizes
}
