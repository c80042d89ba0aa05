package http

import (
	"strconv"
	"strings"
	"time"
)

// Response is the normalized result of a request. A successful response
// carries Content and Location. A failed one carries StatusText,
// ErrorMessage, ErrorDetails and ModelState. The two sets are never mixed.
type Response[T any] struct {
	StatusCode   int
	StatusText   string
	ErrorMessage string
	ErrorDetails []string
	ModelState   map[string][]string
	Location     string
	Content      *T

	// Headers holds the response headers with lower-cased names.
	Headers   map[string]string
	Duration  time.Duration
	RequestID string
}

func newResponse[T any](statusCode int) *Response[T] {
	return &Response[T]{
		StatusCode:   statusCode,
		ErrorDetails: []string{},
		ModelState:   map[string][]string{},
		Headers:      map[string]string{},
	}
}

// Failed reports whether the response came from the failure branch.
func (r *Response[T]) Failed() bool {
	return r.StatusText != "" || r.ErrorMessage != ""
}

func (r *Response[T]) Header(key string) string {
	if v, ok := r.Headers[strings.ToLower(key)]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response[T]) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response[T]) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response[T]) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response[T]) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

// ResponseError is the error returned alongside a failed Response.
type ResponseError struct {
	StatusCode int
	StatusText string
	Message    string
}

func (e *ResponseError) Error() string {
	msg := "request failed"
	if e.StatusCode > 0 {
		msg += " with status " + strconv.Itoa(e.StatusCode)
		if e.StatusText != "" {
			msg += " " + e.StatusText
		}
	} else if e.StatusText != "" {
		msg += ": " + e.StatusText
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *ResponseError) Unwrap() error {
	return ErrRequestFailed
}
