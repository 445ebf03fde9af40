package storage

import (
	"context"
	"sync"
)

type MemoryKV struct {
	values sync.Map
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok := m.values.Load(key)
	if !ok {
		return "", false, nil
	}
	return val.(string), true, nil
}

func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	m.values.Store(key, value)
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.values.Delete(key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
