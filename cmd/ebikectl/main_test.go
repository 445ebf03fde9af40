package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ebikerent/internal/models"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bikesPage = `{"success":true,"data":{"count":3,"next":null,"previous":null,"results":[
	{"id":1,"title":"Cargo hauler","bike_type":"cargo","daily_rate":"45.00","status":"available"},
	{"id":2,"title":"Road racer","bike_type":"road","daily_rate":"60.00","status":"available"},
	{"id":3,"title":"Luxury cargo","bike_type":"cargo","daily_rate":"250.00","status":"available"}]}}`

func testApp(t *testing.T, handler http.Handler) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	cfg := "api:\n  base_url: \"" + server.URL + "\"\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))

	var out, errOut bytes.Buffer
	app, err := newApp(context.Background(), configPath, &out, &errOut)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app, &out, &errOut
}

func runCLI(t *testing.T, app *App, args ...string) error {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Exit(func(int) { t.Fatal("unexpected exit") }), kong.Writers(io.Discard, io.Discard))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return kctx.Run(app)
}

func TestBikesListFiltersByTypeAndPrice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/bikes/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Lisbon", r.URL.Query().Get("location"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, bikesPage)
	})
	app, out, _ := testApp(t, mux)

	require.NoError(t, runCLI(t, app, "bikes", "list", "--location", "Lisbon", "--type", "cargo", "--type", "mountain"))
	assert.Contains(t, out.String(), "Cargo hauler")
	assert.NotContains(t, out.String(), "Road racer")
	assert.NotContains(t, out.String(), "Luxury cargo")
}

func TestWhoamiWithoutSession(t *testing.T) {
	app, _, errOut := testApp(t, http.NewServeMux())
	err := runCLI(t, app, "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
	assert.Empty(t, errOut.String())
}

func TestQuote(t *testing.T) {
	app, out, _ := testApp(t, http.NewServeMux())
	require.NoError(t, runCLI(t, app, "quote", "--daily", "45", "--hours", "50h"))
	assert.Contains(t, out.String(), "3 day(s) x 45.00 = 135.00")
	assert.Contains(t, out.String(), "Total:       150.00")
}

func TestFailureIsPrintedAsNotification(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/auth/token/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"No active account found with the given credentials"}`)
	})
	mux.HandleFunc("POST /api/v1/ratings/create/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid rating must not reach the backend")
	})
	app, _, errOut := testApp(t, mux)

	err := runCLI(t, app, "login", "--email", "a@b.c", "--password", "bad")
	assert.EqualError(t, err, "No active account found with the given credentials")
	assert.Contains(t, errOut.String(), "[error] Login Failed: No active account found with the given credentials")

	require.NoError(t, app.session.SetTokens(context.Background(), tokens("tok")))
	err = runCLI(t, app, "ratings", "create", "--booking", "1", "--rating", "0")
	assert.Error(t, err)
	assert.Contains(t, errOut.String(), "[error] Rating Required")
}

func tokens(access string) models.AuthTokens {
	return models.AuthTokens{Access: access, Refresh: "r-" + access}
}
