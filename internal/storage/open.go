package storage

import (
	"fmt"

	"ebikerent/internal/config"

	"github.com/rs/zerolog"
)

// Open returns the token store selected by cfg.Storage.
func Open(cfg config.SessionConfig, logger *zerolog.Logger) (KV, error) {
	switch cfg.Storage {
	case config.StorageBackendMemory, "":
		return NewMemoryKV(), nil
	case config.StorageBackendSQLite:
		kv, err := NewSQLiteKV(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown session storage %q", cfg.Storage)
	}
}
