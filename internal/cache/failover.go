package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverStore serves from primary until a call fails, then from fallback.
// The primary is retried once recoveryInterval has passed since the failure.
type FailoverStore struct {
	primary   Store
	fallback  Store
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverStore(primary, fallback Store, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *FailoverStore) markDown(err error) {
	if !s.isDown.Swap(true) {
		s.logger.Error().Err(err).Msg("Primary cache store failed, falling back to memory")
	}
	s.lastCheck.Store(time.Now().UnixNano())
}

func (s *FailoverStore) usePrimary() bool {
	if !s.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, s.lastCheck.Load())) > recoveryInterval
}

// run calls fn on the primary when it is healthy (or due for a recovery
// attempt) and on the fallback otherwise.
func (s *FailoverStore) run(fn func(Store) error) error {
	if s.usePrimary() {
		err := fn(s.primary)
		if err == nil {
			if s.isDown.Swap(false) {
				s.logger.Info().Msg("Primary cache store recovered")
			}
			return nil
		}
		s.markDown(err)
	}
	return fn(s.fallback)
}

func (s *FailoverStore) Get(ctx context.Context, key string) (*Entry, error) {
	var entry *Entry
	err := s.run(func(st Store) error {
		var err error
		entry, err = st.Get(ctx, key)
		return err
	})
	return entry, err
}

func (s *FailoverStore) Set(ctx context.Context, key string, entry *Entry) error {
	return s.run(func(st Store) error { return st.Set(ctx, key, entry) })
}

func (s *FailoverStore) Delete(ctx context.Context, key string) error {
	return s.run(func(st Store) error { return st.Delete(ctx, key) })
}

func (s *FailoverStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.run(func(st Store) error {
		var err error
		keys, err = st.Keys(ctx, prefix)
		return err
	})
	return keys, err
}

func (s *FailoverStore) Clear(ctx context.Context) error {
	return s.run(func(st Store) error { return st.Clear(ctx) })
}
