package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/abdul-hamid-achik/hitclient/packages/uri"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID int `json:"id"`
}

// recordingTransport captures the prepared request and replies with a canned response.
type recordingTransport struct {
	mu      sync.Mutex
	req     *TransportRequest
	body    []byte
	reply   *TransportResponse
	err     error
	reports []float64
}

func (r *recordingTransport) Send(ctx context.Context, req *TransportRequest, progress ProgressFunc) (*TransportResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.req = req
	if req.Body != nil {
		r.body, _ = io.ReadAll(req.Body)
	}
	for _, f := range r.reports {
		progress(f)
	}
	return r.reply, r.err
}

func TestRequest_JSONPayload(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{StatusCode: 204}}
	client := NewClient(WithBaseURI("http://api.test"), WithTransport(tr))

	_, err := Post[struct{}](context.Background(), client, "widgets", nil, map[string]int{"a": 1}, JSON).
		Await(context.Background())

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(tr.body))
	assert.Equal(t, "application/json; charset=UTF-8", tr.req.Headers["Content-Type"])
	assert.Equal(t, "application/json", tr.req.Headers["Accept"])
	assert.Equal(t, int64(7), tr.req.ContentLength)
	assert.False(t, tr.req.TrackUpload)
}

func TestRequest_ReusedParamsAndBody(t *testing.T) {
	var (
		mu     sync.Mutex
		urls   = make(map[string]bool)
		bodies = make(map[string]bool)
	)
	tr := TransportFunc(func(ctx context.Context, req *TransportRequest, progress ProgressFunc) (*TransportResponse, error) {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		urls[req.URL] = true
		bodies[string(data)] = true
		mu.Unlock()
		return &TransportResponse{StatusCode: 204}, nil
	})
	client := NewClient(WithBaseURI("http://api.test"), WithTransport(tr))
	ctx := context.Background()

	params := uri.Params{}
	body := map[string]any{}
	futures := make([]*Future[[]byte], 0, 50)
	for i := 0; i < 50; i++ {
		params["id"] = i
		body["n"] = i
		futures = append(futures, client.Do(ctx, http.MethodPut, "widgets/{id}", params, body, JSON))
	}
	for _, f := range futures {
		_, err := f.Await(ctx)
		require.NoError(t, err)
	}

	assert.Len(t, urls, 50)
	assert.Len(t, bodies, 50)
	assert.True(t, urls["http://api.test/widgets/0"])
	assert.True(t, urls["http://api.test/widgets/49"])
	assert.True(t, bodies[`{"n":49}`])
}

func TestRequest_FailureBody(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{
		StatusCode: 400,
		StatusText: "Bad Request",
		Body:       []byte(`{"errorMessage":"bad input","errorDetails":["x"],"modelState":{"a":["required"]}}`),
	}}
	client := NewClient(WithBaseURI("http://api.test"), WithTransport(tr))

	resp, err := Put[widget](context.Background(), client, "widgets/{id}", uri.Params{"id": 7}, widget{ID: 7}, JSON).
		Await(context.Background())

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, 400, respErr.StatusCode)
	assert.Equal(t, "bad input", respErr.Message)

	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Bad Request", resp.StatusText)
	assert.Equal(t, "bad input", resp.ErrorMessage)
	assert.Equal(t, []string{"x"}, resp.ErrorDetails)
	assert.Equal(t, map[string][]string{"a": {"required"}}, resp.ModelState)
	assert.Nil(t, resp.Content)
	assert.Empty(t, resp.Location)
	assert.True(t, resp.Failed())
}

func TestRequest_SuccessWithLocation(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{
		StatusCode: 201,
		StatusText: "Created",
		Headers:    map[string]string{"location": "/widgets/7"},
		Body:       []byte(`{"id":7}`),
	}}
	client := NewClient(WithBaseURI("http://api.test"), WithTransport(tr))

	resp, err := Post[widget](context.Background(), client, "widgets", nil, widget{}, JSON).Await(context.Background())

	require.NoError(t, err)
	require.NotNil(t, resp.Content)
	assert.Equal(t, widget{ID: 7}, *resp.Content)
	assert.Equal(t, "/widgets/7", resp.Location)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Empty(t, resp.StatusText)
	assert.Empty(t, resp.ErrorMessage)
	assert.Empty(t, resp.ErrorDetails)
	assert.Empty(t, resp.ModelState)
	assert.False(t, resp.Failed())
}

func TestRequest_ErrorMessagePriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"errorMessage wins", `{"errorMessage":"a","message":"b"}`, "a"},
		{"message fallback", `{"errorMessage":"","message":"b"}`, "b"},
		{"raw json text", `{"other":1}`, `{"other":1}`},
		{"raw text", `Service Unavailable`, `Service Unavailable`},
		{"empty body", ``, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &recordingTransport{reply: &TransportResponse{StatusCode: 503, Body: []byte(tt.body)}}
			client := NewClient(WithTransport(tr))

			resp, err := Get[widget](context.Background(), client, "x", nil).Await(context.Background())

			require.Error(t, err)
			assert.Equal(t, tt.want, resp.ErrorMessage)
			assert.Equal(t, "Service Unavailable", resp.StatusText)
		})
	}
}

func TestRequest_GetSendsNoBodyOrContentType(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{StatusCode: 200, Body: []byte(`[]`)}}
	client := NewClient(WithBaseURI("http://api.test"), WithTransport(tr))

	resp, err := Get[[]widget](context.Background(), client, "/widgets/{id}", uri.Params{"id": 42, "verbose": true}).
		Await(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "http://api.test/widgets/42?verbose=true", tr.req.URL)
	assert.Equal(t, http.MethodGet, tr.req.Method)
	assert.Nil(t, tr.req.Body)
	assert.NotContains(t, tr.req.Headers, "Content-Type")
	require.NotNil(t, resp.Content)
	assert.Empty(t, *resp.Content)
}

func TestRequest_DeleteWithoutBody(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{StatusCode: 204}}
	client := NewClient(WithTransport(tr))

	resp, err := Delete[struct{}](context.Background(), client, "widgets/{id}", uri.Params{"id": "a b"}).
		Await(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/widgets/a%20b", tr.req.URL)
	assert.Equal(t, http.MethodDelete, tr.req.Method)
	assert.Nil(t, resp.Content)
}

func TestRequest_FormPayload(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{StatusCode: 204}}
	client := NewClient(WithTransport(tr))

	_, err := Patch[struct{}](context.Background(), client, "w", nil,
		map[string]any{"name": "a b", "tags": []string{"x", "y"}}, URLFormEncoded).
		Await(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "name=a+b&tags%5B%5D=x&tags%5B%5D=y", string(tr.body))
	assert.Equal(t, "application/x-www-form-urlencoded; charset=UTF-8", tr.req.Headers["Content-Type"])
}

func TestRequest_MissingPlaceholderFails(t *testing.T) {
	tr := &recordingTransport{}
	client := NewClient(WithTransport(tr))

	resp, err := Get[widget](context.Background(), client, "widgets/{id}", nil).Await(context.Background())

	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 0, resp.StatusCode)
	assert.Equal(t, "error", resp.StatusText)
	assert.Contains(t, resp.ErrorMessage, "id")
	assert.Nil(t, tr.req, "transport must not be called")
}

func TestRequest_UnsupportedBlobBody(t *testing.T) {
	tr := &recordingTransport{}
	client := NewClient(WithTransport(tr))

	resp, err := Post[struct{}](context.Background(), client, "b", nil, 42, Blob).Await(context.Background())

	require.Error(t, err)
	assert.Equal(t, "error", resp.StatusText)
	assert.Contains(t, resp.ErrorMessage, "unsupported request body")
	assert.Nil(t, tr.req)
}

func TestRequest_NetworkError(t *testing.T) {
	tr := &recordingTransport{err: errors.New("dial tcp: connection refused")}
	client := NewClient(WithTransport(tr))

	resp, err := Get[widget](context.Background(), client, "x", nil).Await(context.Background())

	require.Error(t, err)
	assert.Equal(t, 0, resp.StatusCode)
	assert.Equal(t, "error", resp.StatusText)
	assert.Equal(t, "dial tcp: connection refused", resp.ErrorMessage)
	assert.Empty(t, resp.ModelState)
	assert.NotNil(t, resp.ErrorDetails)
}

func TestRequest_NonJSONSuccessBodyFails(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{StatusCode: 200, Body: []byte(`<html>`)}}
	client := NewClient(WithTransport(tr))

	resp, err := Get[widget](context.Background(), client, "x", nil).Await(context.Background())

	require.Error(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.StatusText)
	assert.Equal(t, "<html>", resp.ErrorMessage)
	assert.Nil(t, resp.Content)
}

func TestRequest_RawBytesPassThrough(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{StatusCode: 200, Body: []byte(`not json`)}}
	client := NewClient(WithTransport(tr))

	resp, err := client.Do(context.Background(), http.MethodGet, "x", nil, nil, JSON).Await(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "not json", string(*resp.Content))
}

func TestRequest_Progress(t *testing.T) {
	tr := &recordingTransport{
		reply:   &TransportResponse{StatusCode: 204},
		reports: []float64{0.25, 0.5, 1},
	}
	client := NewClient(WithTransport(tr))

	var seen []float64
	f := Get[struct{}](context.Background(), client, "x", nil, WithProgress(func(p float64) {
		seen = append(seen, p)
	}))
	_, err := f.Await(context.Background())
	require.NoError(t, err)

	var streamed []float64
	for p := range f.Progress() {
		streamed = append(streamed, p)
	}
	assert.Equal(t, []float64{0.25, 0.5, 1}, seen)
	assert.Equal(t, []float64{0.25, 0.5, 1}, streamed)
}

func TestRequest_CallHeaderAndRequestID(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{StatusCode: 204}}
	client := NewClient(WithTransport(tr), WithRequestIDHeader("X-Request-Id"))

	resp, err := Get[struct{}](context.Background(), client, "x", nil, WithHeader("X-Trace", "t1")).
		Await(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "t1", tr.req.Headers["X-Trace"])
	assert.Equal(t, resp.RequestID, tr.req.Headers["X-Request-Id"])
	assert.NotContains(t, client.Headers(), "X-Trace")
}

func TestRequest_RateLimitWaitCancelled(t *testing.T) {
	tr := &recordingTransport{reply: &TransportResponse{StatusCode: 204}}
	client := NewClient(WithTransport(tr), WithRateLimit(0.001, 1))

	_, err := Get[struct{}](context.Background(), client, "x", nil).Await(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := Get[struct{}](ctx, client, "x", nil).Await(context.Background())

	require.Error(t, err)
	assert.Equal(t, "error", resp.StatusText)
	assert.Contains(t, resp.ErrorMessage, "rate limiter")
}

func TestRequest_OverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"id":7}`, string(body))
		w.Header().Set("Location", "/widgets/7")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	for _, name := range []string{"net", "resty"} {
		t.Run(name, func(t *testing.T) {
			tr, err := NewTransport(name, DefaultTransportSettings())
			require.NoError(t, err)
			client := NewClient(WithBaseURI(server.URL+"/"), WithTransport(tr))

			resp, err := Post[widget](context.Background(), client, "/widgets", nil, widget{ID: 7}, JSON).
				Await(context.Background())

			require.NoError(t, err)
			assert.Equal(t, 201, resp.StatusCode)
			assert.Equal(t, "/widgets/7", resp.Location)
			assert.Equal(t, widget{ID: 7}, *resp.Content)
		})
	}
}

func TestRequest_ServerErrorOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid","modelState":{"name":["too short","taken"]}}`))
	}))
	defer server.Close()

	for _, name := range []string{"net", "resty"} {
		t.Run(name, func(t *testing.T) {
			tr, err := NewTransport(name, DefaultTransportSettings())
			require.NoError(t, err)
			client := NewClient(WithBaseURI(server.URL), WithTransport(tr))

			resp, err := Get[widget](context.Background(), client, "w", nil).Await(context.Background())

			require.Error(t, err)
			assert.Equal(t, 422, resp.StatusCode)
			assert.Equal(t, "Unprocessable Entity", resp.StatusText)
			assert.Equal(t, "invalid", resp.ErrorMessage)
			assert.Equal(t, []string{"too short", "taken"}, resp.ModelState["name"])
		})
	}
}
