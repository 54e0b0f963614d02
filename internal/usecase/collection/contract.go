package collection

import "context"

// Repository defines the storage contract for collection files.
type Repository interface {
	SampleHeaders(ctx context.Context, collection string, n int) ([][]string, error)
	Write(ctx context.Context, collection, filename string, header []string, rows [][]string) error
	Remove(ctx context.Context, collection, filename string) error
}
