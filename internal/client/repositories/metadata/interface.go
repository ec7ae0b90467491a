// Package metadata stores small installation-scoped values (the sealed
// device identifier and its key salt) in the local cache.
package metadata

import (
	"context"
)

// Repository is a byte-valued key store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
