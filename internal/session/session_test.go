package session

import (
	"context"
	"testing"
	"time"

	"ebikerent/internal/models"
	"ebikerent/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, kv storage.KV) *Session {
	t.Helper()
	logger := zerolog.Nop()
	s, err := New(context.Background(), kv, &logger)
	require.NoError(t, err)
	return s
}

func TestSessionLoadsPersistedTokens(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, AccessTokenKey, "a1"))
	require.NoError(t, kv.Set(ctx, RefreshTokenKey, "r1"))

	s := newTestSession(t, kv)
	assert.True(t, s.HasToken())
	assert.Equal(t, "a1", s.AccessToken())
	assert.Equal(t, "r1", s.RefreshToken())
}

func TestSessionSetAndClear(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := newTestSession(t, kv)
	ctx := context.Background()

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })

	assert.False(t, s.HasToken())
	require.NoError(t, s.SetTokens(ctx, models.AuthTokens{Access: "a2", Refresh: "r2"}))
	assert.Equal(t, "a2", s.AccessToken())

	stored, ok, _ := kv.Get(ctx, AccessTokenKey)
	assert.True(t, ok)
	assert.Equal(t, "a2", stored)

	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.HasToken())
	assert.Empty(t, s.RefreshToken())
	_, ok, _ = kv.Get(ctx, RefreshTokenKey)
	assert.False(t, ok)

	assert.Equal(t, []Change{{HasToken: true}, {HasToken: false}}, changes)

	unsubscribe()
	require.NoError(t, s.SetTokens(ctx, models.AuthTokens{Access: "a3"}))
	assert.Len(t, changes, 2)
}

func TestSessionRefreshKeepsRefreshToken(t *testing.T) {
	s := newTestSession(t, storage.NewMemoryKV())
	ctx := context.Background()

	require.NoError(t, s.SetTokens(ctx, models.AuthTokens{Access: "a1", Refresh: "r1"}))
	require.NoError(t, s.SetTokens(ctx, models.AuthTokens{Access: "a2"}))
	assert.Equal(t, "a2", s.AccessToken())
	assert.Equal(t, "r1", s.RefreshToken())
}

func TestSessionRejectsEmptyAccessToken(t *testing.T) {
	s := newTestSession(t, storage.NewMemoryKV())
	assert.Error(t, s.SetTokens(context.Background(), models.AuthTokens{Refresh: "r"}))
}

func TestSessionReload(t *testing.T) {
	kv := storage.NewMemoryKV()
	s := newTestSession(t, kv)
	ctx := context.Background()

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, kv.Set(ctx, AccessTokenKey, "from-other-process"))
	require.NoError(t, s.Reload(ctx))
	assert.Equal(t, "from-other-process", s.AccessToken())

	require.NoError(t, s.Reload(ctx))
	assert.Equal(t, []Change{{HasToken: true}}, changes)
}

func TestClearWithoutTokenDoesNotNotify(t *testing.T) {
	s := newTestSession(t, storage.NewMemoryKV())
	called := false
	s.Subscribe(func(Change) { called = true })
	require.NoError(t, s.Clear(context.Background()))
	assert.False(t, called)
}

func signedToken(t *testing.T, exp *jwt.NumericDate) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: exp,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestAccessExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, storage.NewMemoryKV())

	_, ok := s.AccessExpiry()
	assert.False(t, ok, "no token")

	want := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	require.NoError(t, s.SetTokens(ctx, models.AuthTokens{Access: signedToken(t, jwt.NewNumericDate(want))}))
	exp, ok := s.AccessExpiry()
	require.True(t, ok)
	assert.True(t, want.Equal(exp))

	require.NoError(t, s.SetTokens(ctx, models.AuthTokens{Access: signedToken(t, nil)}))
	_, ok = s.AccessExpiry()
	assert.False(t, ok, "no exp claim")

	require.NoError(t, s.SetTokens(ctx, models.AuthTokens{Access: "opaque"}))
	_, ok = s.AccessExpiry()
	assert.False(t, ok, "not a jwt")
}
