// Package storage persists small client-side values such as session tokens
// between runs of the CLI.
package storage

import "context"

// KV is a string key/value store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
