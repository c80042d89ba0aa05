package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"time"
)

// TransportSettings configure the built-in transports.
type TransportSettings struct {
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	ValidateSSL     bool
	ProxyURL        string
}

func DefaultTransportSettings() TransportSettings {
	return TransportSettings{
		Timeout:         DefaultTimeout,
		FollowRedirects: true,
		MaxRedirects:    DefaultMaxRedirects,
		ValidateSSL:     true,
	}
}

// NetTransport sends requests with net/http.
type NetTransport struct {
	httpClient *http.Client
}

func NewNetTransport(settings TransportSettings) *NetTransport {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	// Configure TLS verification
	if !settings.ValidateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	// Configure proxy if specified
	if settings.ProxyURL != "" {
		proxyURL, err := neturl.Parse(settings.ProxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &NetTransport{
		httpClient: &http.Client{
			Transport:     transport,
			Timeout:       settings.Timeout,
			CheckRedirect: redirectPolicy(settings),
		},
	}
}

// NewNetTransportWithClient wraps an existing http.Client.
func NewNetTransportWithClient(client *http.Client) *NetTransport {
	return &NetTransport{httpClient: client}
}

func redirectPolicy(settings TransportSettings) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !settings.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= settings.MaxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

func (t *NetTransport) Send(ctx context.Context, req *TransportRequest, progress ProgressFunc) (*TransportResponse, error) {
	var body io.Reader
	if req.Body != nil {
		body = req.Body
		if req.TrackUpload {
			body = newProgressReader(req.Body, req.ContentLength, progress)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if req.Body != nil && req.ContentLength >= 0 {
		httpReq.ContentLength = req.ContentLength
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	var respBody io.Reader = resp.Body
	if !req.TrackUpload {
		respBody = newProgressReader(resp.Body, resp.ContentLength, progress)
	}
	data, err := io.ReadAll(respBody)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &TransportResponse{
		StatusCode: resp.StatusCode,
		StatusText: reasonPhrase(resp.StatusCode, resp.Status),
		Headers:    lowerHeaders(resp.Header),
		Body:       data,
	}, nil
}
