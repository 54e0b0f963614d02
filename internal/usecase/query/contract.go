package query

import (
	"context"

	"github.com/zenithds/zenithds/internal/domain/file"
	"github.com/zenithds/zenithds/internal/domain/predicate"
	domquery "github.com/zenithds/zenithds/internal/domain/query"
	"github.com/zenithds/zenithds/internal/domain/table"
)

// FileLister enumerates the candidate files of a collection.
type FileLister interface {
	List(ctx context.Context, collection string, preds []predicate.Predicate) ([]file.Metadata, error)
}

// FileScanner scans a single file with a parsed query.
type FileScanner interface {
	Scan(ctx context.Context, f file.Metadata, q *domquery.Query) (table.Table, error)
}
