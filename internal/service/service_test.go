package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ebikerent/internal/apiclient"
	"ebikerent/internal/cache"
	"ebikerent/internal/events"
	"ebikerent/internal/models"
	"ebikerent/internal/query"
	"ebikerent/internal/session"
	"ebikerent/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc     *Services
	query   *query.Client
	store   *cache.MemoryStore
	session *session.Session
	bus     *events.EventBus

	mu     sync.Mutex
	notes  []events.Notification
	server *httptest.Server
}

func (e *testEnv) notifications() []events.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]events.Notification(nil), e.notes...)
}

func (e *testEnv) lastNotification(t *testing.T) events.Notification {
	t.Helper()
	notes := e.notifications()
	require.NotEmpty(t, notes)
	return notes[len(notes)-1]
}

// newTestEnv wires the services against a fake backend serving mux under
// /api/v1. The session starts logged in when token is non-empty.
func newTestEnv(t *testing.T, mux *http.ServeMux, token string) *testEnv {
	t.Helper()
	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", mux))
	server := httptest.NewServer(root)
	t.Cleanup(server.Close)

	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	sess, err := session.New(ctx, storage.NewMemoryKV(), &logger)
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, sess.SetTokens(ctx, models.AuthTokens{Access: token, Refresh: "refresh-" + token}))
	}

	store := cache.NewMemoryStore()
	bus := events.NewEventBus()
	q := query.New(store, bus, &logger)
	api := apiclient.New(apiclient.Options{Root: server.URL + "/api/v1"}, sess, &logger)

	env := &testEnv{
		query:   q,
		store:   store,
		session: sess,
		bus:     bus,
		server:  server,
	}
	bus.OnNotification(func(n events.Notification) {
		env.mu.Lock()
		env.notes = append(env.notes, n)
		env.mu.Unlock()
	})
	env.svc = New(Deps{API: api, Query: q, Session: sess, Bus: bus, Logger: &logger})
	return env
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
