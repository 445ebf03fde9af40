package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (*Entry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entry), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key string, entry *Entry) error {
	args := m.Called(ctx, key, entry)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestFailoverStore(t *testing.T) {
	primary := new(mockStore)
	fallback := new(mockStore)
	logger := zerolog.New(io.Discard)
	store := NewFailoverStore(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		entry := &Entry{Data: json.RawMessage(`1`)}
		primary.On("Get", ctx, "a").Return(entry, nil).Once()

		got, err := store.Get(ctx, "a")
		assert.NoError(t, err)
		assert.Equal(t, entry, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		entry := &Entry{Data: json.RawMessage(`2`)}
		primary.On("Get", ctx, "b").Return(nil, errors.New("fail")).Once()
		fallback.On("Get", ctx, "b").Return(entry, nil).Once()

		got, err := store.Get(ctx, "b")
		assert.NoError(t, err)
		assert.Equal(t, entry, got)
		assert.True(t, store.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		fallback.On("Set", ctx, "c", mock.Anything).Return(nil).Once()
		fallback.On("Keys", ctx, "bikes").Return([]string{"bikes:list"}, nil).Once()

		assert.NoError(t, store.Set(ctx, "c", &Entry{}))
		keys, err := store.Keys(ctx, "bikes")
		assert.NoError(t, err)
		assert.Equal(t, []string{"bikes:list"}, keys)
		primary.AssertNotCalled(t, "Set", ctx, "c", mock.Anything)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		store.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())
		primary.On("Delete", ctx, "d").Return(nil).Once()

		assert.NoError(t, store.Delete(ctx, "d"))
		assert.False(t, store.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("FailedRecoveryFallsBack", func(t *testing.T) {
		store.isDown.Store(true)
		store.lastCheck.Store(time.Now().Add(-2 * time.Minute).UnixNano())
		primary.On("Clear", ctx).Return(errors.New("still down")).Once()
		fallback.On("Clear", ctx).Return(nil).Once()

		assert.NoError(t, store.Clear(ctx))
		assert.True(t, store.isDown.Load())
		assert.WithinDuration(t, time.Now(), time.Unix(0, store.lastCheck.Load()), time.Second)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
