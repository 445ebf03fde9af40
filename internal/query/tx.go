package query

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"ebikerent/internal/cache"
	"ebikerent/internal/events"
	"ebikerent/internal/metrics"

	"github.com/goccy/go-json"
)

var ErrTxDone = errors.New("optimistic transaction already settled")

// Tx is an optimistic update over a fixed set of keys. Begin snapshots the
// keys, Update writes speculative values, and Rollback restores the
// snapshots exactly. Commit keeps the speculative values.
type Tx struct {
	c         *Client
	resource  string
	keys      []string
	snapshots map[string]*cache.Entry
	done      bool
}

// Begin snapshots keys and supersedes fetches of them that are in flight, so
// a late response cannot overwrite the speculative value.
func (c *Client) Begin(ctx context.Context, resource string, keys ...string) (*Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx := &Tx{
		c:         c,
		resource:  resource,
		keys:      keys,
		snapshots: make(map[string]*cache.Entry, len(keys)),
	}
	for _, key := range keys {
		entry, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", key, err)
		}
		tx.snapshots[key] = entry
		c.bumpLocked(key)
	}
	return tx, nil
}

// Update replaces the cached value of key with fn(current). ok reports whether
// a value was cached; returning keep=false leaves the key untouched.
func Update[T any](ctx context.Context, tx *Tx, key string, fn func(current T, ok bool) (next T, keep bool)) error {
	if tx.done {
		return ErrTxDone
	}
	if !slices.Contains(tx.keys, key) {
		return fmt.Errorf("key %s is not part of the transaction", key)
	}

	c := tx.c
	stored, err := tx.write(ctx, key, func(entry *cache.Entry) (json.RawMessage, bool, error) {
		var current T
		ok := entry.HasData() && json.Unmarshal(entry.Data, &current) == nil
		next, keep := fn(current, ok)
		if !keep {
			return nil, false, nil
		}
		data, err := json.Marshal(next)
		if err != nil {
			return nil, false, fmt.Errorf("encode %s: %w", key, err)
		}
		return data, true, nil
	})
	if stored {
		_ = c.bus.PublishJSON(events.EventCacheUpdated, events.CachePayload{Key: key})
	}
	return err
}

func (tx *Tx) write(ctx context.Context, key string, next func(entry *cache.Entry) (json.RawMessage, bool, error)) (bool, error) {
	c := tx.c
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read cache %s: %w", key, err)
	}
	data, keep, err := next(entry)
	if err != nil || !keep {
		return false, err
	}

	updated := &cache.Entry{Data: data, UpdatedAt: c.now()}
	if entry != nil {
		updated.UpdatedAt = entry.UpdatedAt
		updated.Invalidated = entry.Invalidated
	}
	c.bumpLocked(key)
	if err := c.store.Set(ctx, key, updated); err != nil {
		return false, fmt.Errorf("write cache %s: %w", key, err)
	}
	return true, nil
}

// Commit keeps the speculative values.
func (tx *Tx) Commit() {
	tx.done = true
}

// Rollback restores every key to its snapshot. Keys that were absent at
// Begin are removed.
func (tx *Tx) Rollback(ctx context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true

	c := tx.c
	c.mu.Lock()
	var errs []error
	for _, key := range tx.keys {
		c.bumpLocked(key)
		snap := tx.snapshots[key]
		var err error
		if snap == nil {
			err = c.store.Delete(ctx, key)
		} else {
			err = c.store.Set(ctx, key, snap)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", key, err))
		}
	}
	c.mu.Unlock()

	metrics.IncRollback(tx.resource)
	for _, key := range tx.keys {
		_ = c.bus.PublishJSON(events.EventCacheRolledBack, events.CachePayload{Key: key})
	}
	c.logger.Debug().Str("resource", tx.resource).Strs("keys", tx.keys).Msg("optimistic update rolled back")
	return errors.Join(errs...)
}
