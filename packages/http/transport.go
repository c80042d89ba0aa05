package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// ProgressFunc receives a progress fraction between 0 and 1, or -1 when the
// total length is unknown.
type ProgressFunc func(fraction float64)

// TransportRequest is a fully prepared request. The body is already encoded
// and must be sent as-is.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    io.Reader
	// ContentLength is the body length, or -1 if unknown.
	ContentLength int64
	// TrackUpload selects upload progress instead of download progress.
	TrackUpload bool
}

// TransportResponse is the raw outcome of a request that reached the server.
type TransportResponse struct {
	StatusCode int
	StatusText string
	// Headers holds the response headers with lower-cased names.
	Headers map[string]string
	Body    []byte
}

// Transport performs the network I/O for a Client. Send returns an error only
// when no HTTP response was obtained. Non-2xx responses are not errors.
type Transport interface {
	Send(ctx context.Context, req *TransportRequest, progress ProgressFunc) (*TransportResponse, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *TransportRequest, progress ProgressFunc) (*TransportResponse, error)

func (f TransportFunc) Send(ctx context.Context, req *TransportRequest, progress ProgressFunc) (*TransportResponse, error) {
	return f(ctx, req, progress)
}

// progressReader reports the fraction of total read so far.
type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	report ProgressFunc
	mu     sync.Mutex
}

func newProgressReader(r io.Reader, total int64, report ProgressFunc) io.Reader {
	if report == nil {
		return r
	}
	return &progressReader{r: r, total: total, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.loaded += int64(n)
		loaded := p.loaded
		p.mu.Unlock()
		p.report(fraction(loaded, p.total))
	}
	return n, err
}

func fraction(loaded, total int64) float64 {
	if total <= 0 {
		return -1
	}
	return float64(loaded) / float64(total)
}

// reasonPhrase returns the reason phrase of a status line such as "404 Not Found".
func reasonPhrase(code int, status string) string {
	if phrase := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code))); phrase != "" {
		return phrase
	}
	return http.StatusText(code)
}

func lowerHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k := range h {
		headers[strings.ToLower(k)] = h.Get(k)
	}
	return headers
}
