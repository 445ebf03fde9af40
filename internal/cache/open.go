package cache

import (
	"context"
	"fmt"
	"io"

	"ebikerent/internal/config"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store selected by cfg.Cache.Backend. The returned closer
// releases the Redis connection, if any.
func Open(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (Store, io.Closer, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	case config.CacheBackendRedis:
		client := NewRedisClient(cfg.Redis)
		if err := Ping(ctx, client); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return NewRedisStore(client, cfg.Cache.Namespace, cfg.Cache.TTL), client, nil
	case config.CacheBackendFailover:
		client := NewRedisClient(cfg.Redis)
		store := NewFailoverStore(NewRedisStore(client, cfg.Cache.Namespace, cfg.Cache.TTL), NewMemoryStore(), logger)
		if err := Ping(ctx, client); err != nil {
			store.markDown(err)
		}
		return store, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
