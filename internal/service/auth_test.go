package service

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"ebikerent/internal/models"
	"ebikerent/internal/query"
	"ebikerent/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndCurrentUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"access":"acc","refresh":"ref"}}`)
	})
	mux.HandleFunc("GET /users/me/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":1,"email":"ana@example.com","first_name":"Ana"}}`)
	})
	env := newTestEnv(t, mux, "")
	ctx := context.Background()

	var changes []session.Change
	env.session.Subscribe(func(c session.Change) { changes = append(changes, c) })

	require.NoError(t, env.svc.Auth.Login(ctx, models.LoginCredentials{Email: "ana@example.com", Password: "pw"}))
	assert.Equal(t, "acc", env.session.AccessToken())
	assert.Equal(t, "ref", env.session.RefreshToken())
	assert.Equal(t, []session.Change{{HasToken: true}}, changes)

	user, err := env.svc.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.FullName())
}

func TestLoginFailureKeepsSessionEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"No active account found with the given credentials"}`)
	})
	env := newTestEnv(t, mux, "")

	err := env.svc.Auth.Login(context.Background(), models.LoginCredentials{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, "No active account found with the given credentials", err.Error())
	assert.False(t, env.session.HasToken())
	note := env.lastNotification(t)
	assert.Equal(t, "Login Failed", note.Title)
	assert.Equal(t, "No active account found with the given credentials", note.Message)
}

func TestCurrentUserWithoutSession(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	env := newTestEnv(t, mux, "")

	_, err := env.svc.Auth.CurrentUser(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Zero(t, calls.Load())
	assert.Empty(t, env.notifications())
}

func TestCurrentUserIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/me/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, ``)
	})
	env := newTestEnv(t, mux, "tok")

	_, err := env.svc.Auth.CurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLogoutClearsSessionAndCache(t *testing.T) {
	env := newTestEnv(t, http.NewServeMux(), "tok")
	ctx := context.Background()
	require.NoError(t, query.SetData(ctx, env.query, KeyUser, models.User{ID: 1}))
	require.NoError(t, query.SetData(ctx, env.query, KeyMyBookings, []int{1}))

	require.NoError(t, env.svc.Auth.Logout(ctx))
	assert.False(t, env.session.HasToken())
	assert.Empty(t, env.session.RefreshToken())
	keys, err := env.store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRefresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"access":"fresh"}`)
	})
	env := newTestEnv(t, mux, "old")

	require.NoError(t, env.svc.Auth.Refresh(context.Background()))
	assert.Equal(t, "fresh", env.session.AccessToken())
	assert.Equal(t, "refresh-old", env.session.RefreshToken())

	require.NoError(t, env.session.Clear(context.Background()))
	assert.ErrorIs(t, env.svc.Auth.Refresh(context.Background()), session.ErrNoSession)
}

func TestSignupPasswordMismatch(t *testing.T) {
	env := newTestEnv(t, http.NewServeMux(), "")
	_, err := env.svc.Auth.Signup(context.Background(), models.SignupCredentials{Email: "a@b.c", Password: "x", Password2: "y"})
	assert.True(t, IsValidation(err))
	note := env.lastNotification(t)
	assert.Equal(t, "Signup Failed", note.Title)
	assert.Equal(t, "Passwords do not match", note.Message)
}

func TestLoginValidationNotifies(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	env := newTestEnv(t, mux, "")

	err := env.svc.Auth.Login(context.Background(), models.LoginCredentials{Email: "  ", Password: "pw"})
	assert.True(t, IsValidation(err))
	assert.Zero(t, calls.Load())
	require.Len(t, env.notifications(), 1)
	note := env.lastNotification(t)
	assert.Equal(t, "Login Failed", note.Title)
	assert.Equal(t, "Email and password are required.", note.Message)
}

func expiringToken(t *testing.T, in time.Duration) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(in)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestEnsureFresh(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, `{"access":"fresh"}`)
	})

	t.Run("far from expiry", func(t *testing.T) {
		calls.Store(0)
		env := newTestEnv(t, mux, expiringToken(t, time.Hour))
		require.NoError(t, env.svc.Auth.EnsureFresh(context.Background(), time.Minute))
		assert.Zero(t, calls.Load())
	})

	t.Run("about to expire", func(t *testing.T) {
		calls.Store(0)
		env := newTestEnv(t, mux, expiringToken(t, 30*time.Second))
		require.NoError(t, env.svc.Auth.EnsureFresh(context.Background(), time.Minute))
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, "fresh", env.session.AccessToken())
	})

	t.Run("opaque token", func(t *testing.T) {
		calls.Store(0)
		env := newTestEnv(t, mux, "opaque")
		require.NoError(t, env.svc.Auth.EnsureFresh(context.Background(), time.Minute))
		assert.Zero(t, calls.Load())
	})

	t.Run("no session", func(t *testing.T) {
		calls.Store(0)
		env := newTestEnv(t, mux, "")
		require.NoError(t, env.svc.Auth.EnsureFresh(context.Background(), time.Minute))
		assert.Zero(t, calls.Load())
	})
}
