package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	logger := zerolog.Nop()
	return New(Options{Root: ts.URL + "/api/v1/"}, staticToken(token), &logger)
}

func TestCallUnwrapsEnvelope(t *testing.T) {
	var gotAuth, gotPath, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = io.WriteString(w, `{"success":true,"message":"ok","data":{"id":7,"name":"Cargo"}}`)
	}, "tok")

	res, err := Call[item](context.Background(), c, http.MethodGet, "/bikes/7/", nil)
	require.NoError(t, err)
	assert.Equal(t, item{ID: 7, Name: "Cargo"}, res.Data)
	assert.Equal(t, "ok", res.Message)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/api/v1/bikes/7/", gotPath)
	assert.NotEmpty(t, gotRequestID)
}

func TestCallWithoutTokenOmitsAuthorization(t *testing.T) {
	var hasAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		_, _ = io.WriteString(w, `{"success":true,"data":null}`)
	}, "")

	_, err := Call[any](context.Background(), c, http.MethodGet, "/bikes/", nil)
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestCallPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"count":2,"next":null,"previous":null,"results":[{"id":1},{"id":2}]}}`)
	}, "")

	res, err := Call[Page[item]](context.Background(), c, http.MethodGet, "/bikes/", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Data.Count)
	assert.Len(t, res.Data.Results, 2)
	assert.Nil(t, res.Data.Next)
}

func TestCallNonEnvelopeFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"front"}]`)
	}, "")

	res, err := Call[[]item](context.Background(), c, http.MethodGet, "/bikes/1/images/", nil)
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: 1, Name: "front"}}, res.Data)
}

func TestCallErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message", http.StatusBadRequest, `{"success":false,"message":"End time must be after start time."}`, "End time must be after start time."},
		{"detail", http.StatusUnauthorized, `{"detail":"Given token not valid"}`, "Given token not valid"},
		{"error", http.StatusForbidden, `{"error":"Not your bike"}`, "Not your bike"},
		{"fallback", http.StatusInternalServerError, `<html>oops</html>`, "HTTP 500"},
		{"empty body", http.StatusNotFound, ``, "HTTP 404"},
		{"non string error", http.StatusBadRequest, `{"error":{"code":1}}`, "HTTP 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, "")

			_, err := Call[any](context.Background(), c, http.MethodPost, "/bookings/create/", map[string]any{"bike_id": 1})
			require.Error(t, err)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.want, reqErr.Error())
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestCallSuccessFalseOn2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"data":null}`)
	}, "")

	_, err := Call[any](context.Background(), c, http.MethodGet, "/x/", nil)
	require.Error(t, err)
	assert.Equal(t, "Request failed", err.Error())
}

func TestCallNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "")

	_, err := Call[any](context.Background(), c, http.MethodDelete, "/ratings/1/", nil)
	assert.NoError(t, err)
}

func TestCallNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	root := ts.URL
	ts.Close()

	logger := zerolog.Nop()
	c := New(Options{Root: root}, nil, &logger)
	_, err := Call[any](context.Background(), c, http.MethodGet, "/bikes/", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, Retryable(err))
}

func TestCallDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":"not an object"}`)
	}, "")

	_, err := Call[item](context.Background(), c, http.MethodGet, "/bikes/1/", nil)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestCallSendsJSONBody(t *testing.T) {
	var gotBody, gotType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, `{"success":true,"data":{}}`)
	}, "")

	_, err := Call[any](context.Background(), c, http.MethodPost, "/favorites/create/", map[string]int{"bike": 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bike":4}`, gotBody)
	assert.Equal(t, "application/json", gotType)
}

func TestUploadMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "City cruiser", r.FormValue("title"))
		assert.Equal(t, `["LED Lights"]`, r.FormValue("features"))
		files := r.MultipartForm.File["image_files"]
		require.Len(t, files, 1)
		assert.Equal(t, "front.jpg", files[0].Filename)
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":9,"name":"City cruiser"}}`)
	}, "tok")

	form := &Form{}
	form.Add("title", "City cruiser")
	require.NoError(t, form.AddJSON("features", []string{"LED Lights"}))
	form.AddFile("image_files", "front.jpg", []byte("jpeg"))

	res, err := Upload[item](context.Background(), c, http.MethodPost, "/bikes/create/", form)
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.Data.ID)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":null}`)
	}))
	t.Cleanup(ts.Close)
	logger := zerolog.Nop()
	c := New(Options{Root: ts.URL, RPS: 0.001, Burst: 1}, nil, &logger)

	_, err := Call[any](context.Background(), c, http.MethodGet, "/", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = Call[any](ctx, c, http.MethodGet, "/", nil)
	assert.Error(t, err)
}
