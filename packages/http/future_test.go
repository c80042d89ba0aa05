package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_ResolvesOnce(t *testing.T) {
	f := newFuture[int](nil)
	f.notify(0.5)

	first := newResponse[int](200)
	f.resolve(first)
	f.reject(newResponse[int](500))
	f.notify(0.9)

	resp, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, resp)

	var got []float64
	for p := range f.Progress() {
		got = append(got, p)
	}
	assert.Equal(t, []float64{0.5}, got)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestFuture_Reject(t *testing.T) {
	f := newFuture[int](nil)
	resp := newResponse[int](404)
	resp.StatusText = "Not Found"
	resp.ErrorMessage = "missing"
	f.reject(resp)

	got, err := f.Await(context.Background())
	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "request failed with status 404 Not Found: missing", respErr.Error())
	assert.Same(t, resp, got)
}

func TestFuture_AwaitContext(t *testing.T) {
	f := newFuture[int](nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	resp, err := f.Await(ctx)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFuture_ProgressNeverBlocks(t *testing.T) {
	f := newFuture[int](nil)
	for i := 0; i < progressBuffer*4; i++ {
		f.notify(float64(i))
	}
	f.resolve(newResponse[int](200))

	n := 0
	for range f.Progress() {
		n++
	}
	assert.Equal(t, progressBuffer, n)
}
