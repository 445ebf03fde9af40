// Package cache stores query results keyed by resource.
//
// Keys follow resource:scope[:id][:params], e.g. "bikes:detail:42" or
// "bikes:list:page=2&search=city". A prefix matches a key when it equals the
// key or is followed by ':' in it, so "bikes:detail:4" does not match
// "bikes:detail:42".
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Entry is a cached query result.
type Entry struct {
	Data        json.RawMessage `json:"data,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Invalidated bool            `json:"invalidated,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
}

// HasData reports whether the entry holds a successful result.
func (e *Entry) HasData() bool {
	return e != nil && len(e.Data) > 0
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	if e.Data != nil {
		c.Data = append(json.RawMessage(nil), e.Data...)
	}
	return &c
}

// Store persists entries. Get returns (nil, nil) for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	// Keys lists the keys matching prefix; an empty prefix lists all keys.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Clear(ctx context.Context) error
}

// MatchPrefix reports whether key belongs to prefix.
func MatchPrefix(key, prefix string) bool {
	if prefix == "" || key == prefix {
		return true
	}
	return strings.HasPrefix(key, prefix) && key[len(prefix)] == ':'
}
