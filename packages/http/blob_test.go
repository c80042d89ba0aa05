package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadBlob(t *testing.T) {
	payload := bytes.Repeat([]byte("z"), 64*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/container/file.bin", r.URL.Path)
		assert.Equal(t, "sv=1&sig=abc", r.URL.RawQuery)
		assert.Equal(t, "2014-02-14", r.Header.Get("x-ms-version"))
		assert.Equal(t, "BlockBlob", r.Header.Get("x-ms-blob-type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		date, err := time.Parse(http.TimeFormat, r.Header.Get("x-ms-date"))
		assert.NoError(t, err)
		assert.WithinDuration(t, time.Now(), date, time.Minute)
		assert.True(t, strings.HasSuffix(r.Header.Get("x-ms-date"), "GMT"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, body)
		w.Header().Set("Location", "/container/file.bin")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`ignored`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURI("http://unused.test"), WithDefaultHeader("Authorization", "Bearer t"))

	var last float64
	f := client.UploadBlob(context.Background(), server.URL+"/container/file.bin?sv=1&sig=abc",
		bytes.NewReader(payload), int64(len(payload)), WithProgress(func(p float64) { last = p }))
	resp, err := f.Await(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "/container/file.bin", resp.Location)
	assert.Nil(t, resp.Content)
	assert.Equal(t, 1.0, last)
}

func TestUploadBlob_Failure(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{
		StatusCode: 403,
		StatusText: "Forbidden",
		Body:       []byte(`{"message":"signature expired","errorDetails":["se"],"modelState":{"a":["b"]}}`),
	}}
	client := NewClient(WithTransport(tr))

	resp, err := client.UploadBlob(context.Background(), "https://blob.test/c/f", strings.NewReader("data"), 4).
		Await(context.Background())

	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, "Forbidden", resp.StatusText)
	assert.Equal(t, "signature expired", resp.ErrorMessage)
	assert.Equal(t, []string{"se"}, resp.ErrorDetails)
	assert.Empty(t, resp.ModelState)

	assert.True(t, tr.req.TrackUpload)
	assert.Equal(t, "https://blob.test/c/f", tr.req.URL)
	assert.Equal(t, "data", string(tr.body))
	assert.NotContains(t, tr.req.Headers, "Accept")
}

func TestUploadBlob_NilReader(t *testing.T) {
	client := NewClient(WithTransport(&recordingTransport{}))

	resp, err := client.UploadBlob(context.Background(), "https://blob.test/c/f", nil, 0).Await(context.Background())

	require.Error(t, err)
	assert.Equal(t, 0, resp.StatusCode)
	assert.Equal(t, "error", resp.StatusText)
}
