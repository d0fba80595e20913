// Package store persists small string slots in a key-value backend.
package store

import "context"

// KVStore is a string-keyed slot store. Get reports found=false for a
// missing key rather than an error.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}
