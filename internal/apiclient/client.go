package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"ebikerent/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("ebikerent/apiclient")

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	AccessToken() string
}

type Options struct {
	// Root is the versioned API base, e.g. http://localhost:8001/api/v1.
	Root    string
	Timeout time.Duration
	// RPS > 0 throttles outgoing requests client side.
	RPS   float64
	Burst int
}

// Client calls the rental backend. It does not retry and does not refresh
// tokens; both are left to callers.
type Client struct {
	root       string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     *zerolog.Logger
}

func New(opts Options, tokens TokenSource, logger *zerolog.Logger) *Client {
	c := &Client{
		root:       strings.TrimRight(opts.Root, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		tokens:     tokens,
		logger:     logger,
	}
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 5
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}
	return c
}

// Root returns the API base URL.
func (c *Client) Root() string { return c.root }

// Call sends a JSON request and unwraps the response envelope into T.
func Call[T any](ctx context.Context, c *Client, method, path string, body any) (Result[T], error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Result[T]{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	status, raw, err := c.do(ctx, method, path, reader, "application/json")
	if err != nil {
		return Result[T]{}, err
	}
	return decode[T](status, raw)
}

// Upload sends a multipart form and unwraps the response envelope into T.
func Upload[T any](ctx context.Context, c *Client, method, path string, form *Form) (Result[T], error) {
	payload, contentType, err := form.encode()
	if err != nil {
		return Result[T]{}, fmt.Errorf("encode form: %w", err)
	}
	status, raw, err := c.do(ctx, method, path, payload, contentType)
	if err != nil {
		return Result[T]{}, err
	}
	return decode[T](status, raw)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (status int, raw []byte, err error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, err
		}
	}

	requestID := uuid.NewString()
	ctx, span := tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("request.id", requestID),
		))
	defer func() {
		if status > 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.root+path, body)
	if err != nil {
		return 0, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(method, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, ctxErr
		}
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", requestID).Msg("request failed")
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	metrics.ObserveRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, details := errorMessage(resp.StatusCode, raw)
		return resp.StatusCode, raw, &RequestError{StatusCode: resp.StatusCode, Message: msg, Errors: details}
	}
	return resp.StatusCode, raw, nil
}

// Form is a multipart/form-data body.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct{ name, value string }

type formFile struct {
	field, filename string
	content         []byte
}

func (f *Form) Add(name, value string) {
	f.fields = append(f.fields, formField{name, value})
}

// AddJSON adds a field holding the JSON encoding of v.
func (f *Form) AddJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.Add(name, string(data))
	return nil
}

func (f *Form) AddFile(field, filename string, content []byte) {
	f.files = append(f.files, formFile{field, filename, content})
}

func (f *Form) encode() (io.Reader, string, error) {
	if f == nil {
		return nil, "", errors.New("nil form")
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
