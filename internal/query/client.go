// Package query is the keyed read/write layer between resource services and
// the cache store.
//
// Every cache write goes through a Client. Each key carries a write version;
// a fetch remembers the version it started at and its result is dropped when
// a newer write (another fetch, SetData, Invalidate or an optimistic Tx)
// happened in between.
package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/cache"
	"ebikerent/internal/events"
	"ebikerent/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Options control a single Fetch.
type Options struct {
	// StaleTime is how long a cached result is served without refetching.
	StaleTime time.Duration
	Retry     apiclient.RetryPolicy
}

// State is a snapshot of one key.
type State struct {
	Data        json.RawMessage
	UpdatedAt   time.Time
	Invalidated bool
	LastError   string
	Loading     bool
}

type Client struct {
	store  cache.Store
	bus    *events.EventBus
	logger *zerolog.Logger
	group  singleflight.Group
	now    func() time.Time

	mu       sync.Mutex
	epoch    uint64
	versions map[string]uint64
	inflight map[string]int
}

func New(store cache.Store, bus *events.EventBus, logger *zerolog.Logger) *Client {
	return &Client{
		store:    store,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
		versions: make(map[string]uint64),
		inflight: make(map[string]int),
	}
}

type version struct {
	epoch, key uint64
}

func (c *Client) versionLocked(key string) version {
	return version{epoch: c.epoch, key: c.versions[key]}
}

func (c *Client) bumpLocked(key string) {
	c.versions[key]++
}

// Resource returns the first segment of key, used as metrics label.
func Resource(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// Fetch returns the cached value for key while it is fresh and otherwise
// calls fn. Concurrent fetches of the same key share one call of fn. When ctx
// ends first the caller gets ctx.Err() but the call keeps running and its
// result is cached.
func Fetch[T any](ctx context.Context, c *Client, key string, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("read cache %s: %w", key, err)
	}
	resource := Resource(key)
	if entry.HasData() && !entry.Invalidated && entry.LastError == "" && c.now().Sub(entry.UpdatedAt) < opts.StaleTime {
		var v T
		if err := json.Unmarshal(entry.Data, &v); err == nil {
			metrics.IncCacheLookup(resource, "hit")
			return v, nil
		}
	}
	if entry.HasData() {
		metrics.IncCacheLookup(resource, "stale")
	} else {
		metrics.IncCacheLookup(resource, "miss")
	}

	c.mu.Lock()
	start := c.versionLocked(key)
	c.mu.Unlock()

	flight := key + "#" + strconv.FormatUint(start.epoch, 10) + "." + strconv.FormatUint(start.key, 10)
	ch := c.group.DoChan(flight, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), key, start, opts.Retry, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		var v T
		if err := json.Unmarshal(res.Val.(json.RawMessage), &v); err != nil {
			return zero, fmt.Errorf("decode cached %s: %w", key, err)
		}
		return v, nil
	}
}

// load runs fn with retries and settles the outcome into the cache.
func (c *Client) load(ctx context.Context, key string, start version, policy apiclient.RetryPolicy, fn func(ctx context.Context) (any, error)) (json.RawMessage, error) {
	c.mu.Lock()
	c.inflight[key]++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		if c.inflight[key]--; c.inflight[key] <= 0 {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}()

	var (
		val any
		err error
	)
	for attempt := 0; ; attempt++ {
		val, err = fn(ctx)
		if err == nil || attempt >= policy.MaxRetries || !apiclient.Retryable(err) {
			break
		}
		delay := policy.NextDelay(attempt + 1)
		c.logger.Debug().Err(err).Str("key", key).Dur("delay", delay).Msg("retrying fetch")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	var data json.RawMessage
	if err == nil {
		data, err = json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
	}
	data, stored, err := c.settle(ctx, key, start, data, err)
	if stored {
		_ = c.bus.PublishJSON(events.EventCacheUpdated, events.CachePayload{Key: key})
	}
	return data, err
}

// settle writes a fetch outcome unless a newer write superseded it. stored
// reports whether fresh data was written.
func (c *Client) settle(ctx context.Context, key string, start version, data json.RawMessage, fetchErr error) (json.RawMessage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.versionLocked(key) != start {
		c.logger.Debug().Str("key", key).Msg("discarding fetch result superseded by a newer write")
		if fetchErr != nil {
			return nil, false, fetchErr
		}
		current, err := c.store.Get(ctx, key)
		if err != nil || !current.HasData() {
			return data, false, nil
		}
		return current.Data, false, nil
	}

	c.bumpLocked(key)
	if fetchErr != nil {
		entry, err := c.store.Get(ctx, key)
		if err != nil || entry == nil {
			entry = &cache.Entry{}
		}
		entry.LastError = fetchErr.Error()
		if err := c.store.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to record fetch error")
		}
		return nil, false, fetchErr
	}

	if err := c.store.Set(ctx, key, &cache.Entry{Data: data, UpdatedAt: c.now()}); err != nil {
		return nil, false, fmt.Errorf("write cache %s: %w", key, err)
	}
	return data, true, nil
}

// GetData decodes the cached value of key. ok is false when nothing is cached.
func GetData[T any](ctx context.Context, c *Client, key string) (T, bool, error) {
	var v T
	entry, err := c.store.Get(ctx, key)
	if err != nil || !entry.HasData() {
		return v, false, err
	}
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		return v, false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return v, true, nil
}

// SetData writes v as the fresh value of key, superseding in-flight fetches.
func SetData[T any](ctx context.Context, c *Client, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	c.mu.Lock()
	c.bumpLocked(key)
	err = c.store.Set(ctx, key, &cache.Entry{Data: data, UpdatedAt: c.now()})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write cache %s: %w", key, err)
	}

	_ = c.bus.PublishJSON(events.EventCacheUpdated, events.CachePayload{Key: key})
	return nil
}

// Invalidate marks every key under prefix stale so the next Fetch refetches.
// Cached data stays readable until then.
func (c *Client) Invalidate(ctx context.Context, prefix string) error {
	c.mu.Lock()
	keys, err := c.store.Keys(ctx, prefix)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("list cache keys %s: %w", prefix, err)
	}

	var errs []error
	for _, key := range keys {
		entry, err := c.store.Get(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if entry == nil {
			continue
		}
		c.bumpLocked(key)
		entry.Invalidated = true
		if err := c.store.Set(ctx, key, entry); err != nil {
			errs = append(errs, err)
		}
	}
	c.mu.Unlock()

	_ = c.bus.PublishJSON(events.EventCacheInvalidated, events.CachePayload{Key: prefix})
	return errors.Join(errs...)
}

// Remove deletes every key under prefix.
func (c *Client) Remove(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.store.Keys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list cache keys %s: %w", prefix, err)
	}
	var errs []error
	for _, key := range keys {
		c.bumpLocked(key)
		if err := c.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear empties the cache. Results of fetches started before Clear are dropped.
func (c *Client) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	clear(c.versions)
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// State reports the cached entry of key together with its loading flag.
func (c *Client) State(ctx context.Context, key string) (State, error) {
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		return State{}, err
	}

	c.mu.Lock()
	loading := c.inflight[key] > 0
	c.mu.Unlock()

	st := State{Loading: loading}
	if entry != nil {
		st.Data = entry.Data
		st.UpdatedAt = entry.UpdatedAt
		st.Invalidated = entry.Invalidated
		st.LastError = entry.LastError
	}
	return st, nil
}
