package http

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/hitclient/packages/core/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second

	acceptHeader = "Accept"
	acceptJSON   = "application/json"
)

// Client dispatches requests relative to a base URI with a fixed set of
// headers. It is safe for concurrent use. BaseURI and headers may be changed
// between calls; each call works on a snapshot taken when it starts.
type Client struct {
	mu      sync.RWMutex
	baseURI string
	headers map[string]string

	transport       Transport
	settings        TransportSettings
	logger          *zap.Logger
	limiter         *rate.Limiter
	requestIDHeader string

	baseURISet   bool
	extraHeaders map[string]string
}

type ClientOption func(*Client)

// NewClient creates a client. The base URI and headers default to the
// registry values (see SetDefaultBaseURI), and Accept: application/json is
// always added.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		settings:     DefaultTransportSettings(),
		logger:       zap.NewNop(),
		extraHeaders: make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	if !c.baseURISet {
		c.baseURI = DefaultBaseURI()
	}
	if c.headers == nil {
		c.headers = DefaultHeaders()
	}
	for k, v := range c.extraHeaders {
		setHeader(c.headers, k, v)
	}
	c.extraHeaders = nil
	setHeader(c.headers, acceptHeader, acceptJSON)

	if c.transport == nil {
		c.transport = NewNetTransport(c.settings)
	}

	return c
}

// NewClientFromConfig builds a client from a loaded configuration.
func NewClientFromConfig(cfg *config.Config, log *zap.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	settings := TransportSettings{
		Timeout:         time.Duration(cfg.Timeout) * time.Millisecond,
		FollowRedirects: cfg.GetFollowRedirects(),
		MaxRedirects:    cfg.MaxRedirects,
		ValidateSSL:     cfg.GetValidateSSL(),
		ProxyURL:        cfg.Proxy,
	}
	transport, err := NewTransport(cfg.Transport, settings)
	if err != nil {
		return nil, err
	}

	opts := []ClientOption{
		WithTransport(transport),
		WithLogger(log),
	}
	if cfg.BaseURI != "" {
		opts = append(opts, WithBaseURI(cfg.BaseURI))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, WithDefaultHeaders(cfg.Headers))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	if cfg.RequestIDHeader != "" {
		opts = append(opts, WithRequestIDHeader(cfg.RequestIDHeader))
	}

	return NewClient(opts...), nil
}

// NewTransport returns the transport registered under name: "net", "resty",
// or "xhr" in browser builds.
func NewTransport(name string, settings TransportSettings) (Transport, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "net":
		return NewNetTransport(settings), nil
	case "resty":
		return NewRestyTransport(settings), nil
	}
	if t, ok := platformTransport(name, settings); ok {
		return t, nil
	}
	return nil, fmt.Errorf("unsupported transport %q", name)
}

// WithBaseURI sets the base URI that relative paths are joined to.
func WithBaseURI(baseURI string) ClientOption {
	return func(c *Client) {
		c.baseURI = baseURI
		c.baseURISet = true
	}
}

// WithHeaders replaces the registry headers with headers.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = copyHeaders(headers)
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.extraHeaders[key] = value
	}
}

// WithDefaultHeaders adds headers on top of the registry headers
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.extraHeaders[k] = v
		}
	}
}

// WithTransport replaces the default net/http transport.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.settings.Timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.settings.FollowRedirects = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.settings.MaxRedirects = max
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.settings.ValidateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.settings.ProxyURL = proxyURL
	}
}

// WithRateLimit paces dispatch to rps requests per second with the given
// burst. Calls wait for a slot; nothing is retried.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRequestIDHeader sends each call's request ID in the named header.
func WithRequestIDHeader(name string) ClientOption {
	return func(c *Client) {
		c.requestIDHeader = name
	}
}

// BaseURI returns the current base URI.
func (c *Client) BaseURI() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURI
}

// SetBaseURI changes the base URI for calls started afterwards.
func (c *Client) SetBaseURI(baseURI string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURI = baseURI
}

// Headers returns a copy of the headers sent with each request.
func (c *Client) Headers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyHeaders(c.headers)
}

// SetHeader changes a header for calls started afterwards.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	setHeader(c.headers, key, value)
}

// DeleteHeader removes a header for calls started afterwards.
func (c *Client) DeleteHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	deleteHeader(c.headers, key)
}

func (c *Client) snapshot() (string, map[string]string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURI, copyHeaders(c.headers)
}
