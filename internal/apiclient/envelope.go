package apiclient

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// ErrNetwork wraps transport failures: the request never produced an HTTP
// response or the response could not be read.
var ErrNetwork = errors.New("network request failed")

// RequestError is a backend rejection. Message is meant to be shown verbatim.
type RequestError struct {
	StatusCode int
	Message    string
	Errors     json.RawMessage
}

func (e *RequestError) Error() string { return e.Message }

// IsStatus reports whether err is a RequestError with the given status code.
func IsStatus(err error, code int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == code
}

// Envelope is the uniform response wrapper of the backend.
type Envelope[T any] struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       T               `json:"data"`
	Errors     json.RawMessage `json:"errors,omitempty"`
	StatusCode int             `json:"status_code,omitempty"`
}

// Page is the paginated list payload nested in an envelope.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Result is a decoded response: the payload and the backend's message.
type Result[T any] struct {
	Data    T
	Message string
}

// errorMessage picks the first human readable message of an error body,
// falling back to "HTTP <status>".
func errorMessage(status int, body []byte) (string, json.RawMessage) {
	var probe struct {
		Message json.RawMessage `json:"message"`
		Detail  json.RawMessage `json:"detail"`
		Error   json.RawMessage `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &probe); err == nil {
		for _, raw := range []json.RawMessage{probe.Message, probe.Detail, probe.Error} {
			var s string
			if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && s != "" {
				return s, probe.Errors
			}
		}
		return fmt.Sprintf("HTTP %d", status), probe.Errors
	}
	return fmt.Sprintf("HTTP %d", status), nil
}

// decode unwraps an envelope into T. Bodies without a "success" key are
// decoded directly as T.
func decode[T any](status int, body []byte) (Result[T], error) {
	var res Result[T]
	body = bytes.TrimSpace(body)
	if len(body) == 0 || status == http.StatusNoContent {
		return res, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err == nil {
		if _, ok := keys["success"]; ok {
			var env Envelope[T]
			if err := json.Unmarshal(body, &env); err != nil {
				return res, fmt.Errorf("%w: decode envelope: %v", ErrNetwork, err)
			}
			if !env.Success {
				msg := env.Message
				if msg == "" {
					msg = "Request failed"
				}
				return res, &RequestError{StatusCode: status, Message: msg, Errors: env.Errors}
			}
			res.Data = env.Data
			res.Message = env.Message
			return res, nil
		}
	}

	if err := json.Unmarshal(body, &res.Data); err != nil {
		return res, fmt.Errorf("%w: decode body: %v", ErrNetwork, err)
	}
	return res, nil
}
