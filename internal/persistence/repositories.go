package persistence

import "context"

// KeyValueStore is the substrate every record store is built on. Values are
// opaque bytes; Get returns ErrNotFound for unknown keys and Delete of an
// unknown key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}
