package http

import (
	"context"
	"errors"
	"sync"
)

// ErrRequestFailed is wrapped by every error returned from a failed request.
var ErrRequestFailed = errors.New("request failed")

// progressBuffer bounds the Progress channel. Updates beyond it are dropped.
const progressBuffer = 16

// Future is the pending result of a request. It resolves exactly once, either
// on the success branch (nil error) or on the failure branch (*ResponseError).
// Progress updates always come before the resolution.
type Future[T any] struct {
	done       chan struct{}
	progress   chan float64
	onProgress ProgressFunc

	mu     sync.Mutex
	closed bool
	resp   *Response[T]
	err    error
}

func newFuture[T any](onProgress ProgressFunc) *Future[T] {
	return &Future[T]{
		done:       make(chan struct{}),
		progress:   make(chan float64, progressBuffer),
		onProgress: onProgress,
	}
}

// Await blocks until the request resolves or ctx is done. A failed request
// returns both the populated response and a *ResponseError. When ctx ends
// first, Await returns ctx.Err() and the request keeps running.
func (f *Future[T]) Await(ctx context.Context) (*Response[T], error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed once the request has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Progress delivers progress fractions and is closed on resolution. Sends
// never block the request, so a slow reader may miss intermediate values.
func (f *Future[T]) Progress() <-chan float64 {
	return f.progress
}

func (f *Future[T]) notify(fraction float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if f.onProgress != nil {
		f.onProgress(fraction)
	}
	select {
	case f.progress <- fraction:
	default:
	}
}

func (f *Future[T]) resolve(resp *Response[T]) {
	f.settle(resp, nil)
}

func (f *Future[T]) reject(resp *Response[T]) {
	f.settle(resp, &ResponseError{
		StatusCode: resp.StatusCode,
		StatusText: resp.StatusText,
		Message:    resp.ErrorMessage,
	})
}

func (f *Future[T]) settle(resp *Response[T], err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.resp = resp
	f.err = err
	close(f.progress)
	close(f.done)
}
