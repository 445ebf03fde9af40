package cache

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	entries sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	val, ok := s.entries.Load(key)
	if !ok {
		return nil, nil
	}
	return val.(*Entry).Clone(), nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, entry *Entry) error {
	s.entries.Store(key, entry.Clone())
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	s.entries.Range(func(k, _ any) bool {
		if key := k.(string); MatchPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.entries.Range(func(k, _ any) bool {
		s.entries.Delete(k)
		return true
	})
	return nil
}
