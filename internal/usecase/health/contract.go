package health

import "context"

// StoragePinger checks that the data root is reachable.
type StoragePinger interface {
	Ping(ctx context.Context) error
}
