// Package mock provides a mock HTTP API server that serves canned responses
// from a route table with {name} path templates.
package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RouteSpec is one entry of a route file.
type RouteSpec struct {
	Name        string            `yaml:"name,omitempty" json:"name,omitempty"`
	Method      string            `yaml:"method" json:"method"`
	Path        string            `yaml:"path" json:"path"`
	Status      int               `yaml:"status,omitempty" json:"status,omitempty"`
	ContentType string            `yaml:"contentType,omitempty" json:"contentType,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Body        string            `yaml:"body,omitempty" json:"body,omitempty"`
	Echo        bool              `yaml:"echo,omitempty" json:"echo,omitempty"`
}

// RouteFile is the document format read by LoadFile.
type RouteFile struct {
	Routes []RouteSpec `yaml:"routes" json:"routes"`
}

// Server is a mock HTTP server
type Server struct {
	router *Router
	port   int
	delay  time.Duration
	logger *zap.Logger
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithLogger logs each handled request at debug level
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new mock server
func NewServer(opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		port:   3000,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadFile loads routes from a YAML or JSON route file
func (s *Server) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := s.LoadBytes(data); err != nil {
		return fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return nil
}

// LoadBytes loads routes from a YAML or JSON document
func (s *Server) LoadBytes(data []byte) error {
	var file RouteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	for i, spec := range file.Routes {
		if err := s.AddRoute(spec); err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}
	}
	return nil
}

// LoadFiles loads routes from multiple route files
func (s *Server) LoadFiles(paths []string) error {
	for _, path := range paths {
		if err := s.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}

// AddRoute registers a route. Routes match in the order they were added.
func (s *Server) AddRoute(spec RouteSpec) error {
	if spec.Path == "" {
		return errors.New("path is required")
	}
	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}
	status := spec.Status
	if status == 0 {
		status = http.StatusOK
	}
	contentType := spec.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	headers := make(map[string]string, len(spec.Headers))
	for k, v := range spec.Headers {
		headers[k] = v
	}

	s.router.AddRoute(&Route{
		Method:      method,
		PathPattern: extractPathPattern(spec.Path),
		Name:        spec.Name,
		Response: &MockResponse{
			StatusCode:  status,
			ContentType: contentType,
			Headers:     headers,
			Body:        spec.Body,
			Echo:        spec.Echo,
		},
	})
	return nil
}

func extractPathPattern(rawURL string) string {
	// Remove scheme and host
	if idx := strings.Index(rawURL, "://"); idx != -1 {
		rawURL = rawURL[idx+3:]
		if idx := strings.Index(rawURL, "/"); idx != -1 {
			rawURL = rawURL[idx:]
		} else {
			rawURL = "/"
		}
	}

	// Remove query string
	if idx := strings.Index(rawURL, "?"); idx != -1 {
		rawURL = rawURL[:idx]
	}

	return normalizePath(rawURL)
}

// Handler returns the server's request handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	return mux
}

// Start starts the mock server
func (s *Server) Start() error {
	return s.StartWithContext(context.Background())
}

// StartWithContext starts the server with context for graceful shutdown
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("mock server starting",
		zap.String("addr", "http://localhost"+server.Addr),
		zap.Int("routes", len(s.router.Routes())),
	)
	for _, route := range s.router.Routes() {
		s.logger.Debug("route",
			zap.String("method", route.Method),
			zap.String("path", route.PathPattern),
			zap.Int("status", route.Response.StatusCode),
		)
	}

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve serves on an existing listener until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// Apply delay if configured
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	// Find matching route
	route, params := s.router.Match(r.Method, r.URL.EscapedPath())

	if route == nil {
		s.logger.Debug("no route",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessage":"no route for ` + r.Method + ` ` + r.URL.Path + `"}`))
		return
	}

	// Build response
	resp := route.Response

	// Set headers
	for key, value := range resp.Headers {
		w.Header().Set(key, resolveParams(value, params))
	}

	var body []byte
	if resp.Echo {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		body = data
		w.Header().Set("Content-Type", r.Header.Get("Content-Type"))
	} else {
		w.Header().Set("Content-Type", resp.ContentType)
		// Resolve body with params
		body = []byte(resolveParams(resp.Body, params))
	}

	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(body)

	s.logger.Debug("handled request",
		zap.String("route", route.Name),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
}

// resolveParams replaces {name} in s with the decoded path parameter.
func resolveParams(s string, params map[string]string) string {
	result := s
	for key, value := range params {
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
		result = strings.ReplaceAll(result, "{"+key+"}", value)
	}
	return result
}

// GetRoutes returns all registered routes
func (s *Server) GetRoutes() []*Route {
	return s.router.Routes()
}
