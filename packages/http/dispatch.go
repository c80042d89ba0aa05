package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abdul-hamid-achik/hitclient/packages/uri"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusTextNetwork is the status text of a call that never got a response.
const statusTextNetwork = "error"

type callOptions struct {
	onProgress ProgressFunc
	headers    map[string]string
}

// CallOption customizes a single call.
type CallOption func(*callOptions)

// WithProgress registers fn to receive progress fractions. It runs on the
// request goroutine, before the call resolves.
func WithProgress(fn ProgressFunc) CallOption {
	return func(o *callOptions) {
		o.onProgress = fn
	}
}

// WithHeader sets a header for this call only.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// Request issues method against relativePath resolved with params. The
// returned Future resolves with Content decoded from the JSON response body,
// or with the raw body when T is []byte.
func Request[T any](ctx context.Context, c *Client, method, relativePath string, params uri.Params, body any, ct ContentType, opts ...CallOption) *Future[T] {
	o := &callOptions{}
	for _, opt := range opts {
		opt(o)
	}

	f := newFuture[T](o.onProgress)
	req, err := c.prepareRequest(method, relativePath, params, body, ct, o)

	go c.dispatch(ctx, f.notify, func(tr *TransportResponse, err error, elapsed time.Duration, requestID string) {
		resp, ok := mapResponse[T](tr, err, true)
		resp.Duration = elapsed
		resp.RequestID = requestID
		if ok {
			f.resolve(resp)
		} else {
			f.reject(resp)
		}
	}, req, err)

	return f
}

// prepareRequest builds the URI and encodes the body on the caller's
// goroutine. params and body are not read after it returns.
func (c *Client) prepareRequest(method, relativePath string, params uri.Params, body any, ct ContentType, o *callOptions) (*TransportRequest, error) {
	baseURI, headers := c.snapshot()
	target, err := uri.Build(baseURI, relativePath, params)
	if err != nil {
		return nil, err
	}
	reader, length, err := EncodeBody(body, ct)
	if err != nil {
		return nil, err
	}
	for k, v := range o.headers {
		setHeader(headers, k, v)
	}
	if reader != nil || (method != http.MethodGet && method != http.MethodDelete) {
		setHeader(headers, "Content-Type", ct.MimeType())
	}
	if reader == nil {
		length = 0
	}
	return &TransportRequest{
		Method:        method,
		URL:           target,
		Headers:       headers,
		Body:          reader,
		ContentLength: length,
	}, nil
}

func Get[T any](ctx context.Context, c *Client, relativePath string, params uri.Params, opts ...CallOption) *Future[T] {
	return Request[T](ctx, c, http.MethodGet, relativePath, params, nil, JSON, opts...)
}

func Delete[T any](ctx context.Context, c *Client, relativePath string, params uri.Params, opts ...CallOption) *Future[T] {
	return Request[T](ctx, c, http.MethodDelete, relativePath, params, nil, JSON, opts...)
}

func Put[T any](ctx context.Context, c *Client, relativePath string, params uri.Params, body any, ct ContentType, opts ...CallOption) *Future[T] {
	return Request[T](ctx, c, http.MethodPut, relativePath, params, body, ct, opts...)
}

func Post[T any](ctx context.Context, c *Client, relativePath string, params uri.Params, body any, ct ContentType, opts ...CallOption) *Future[T] {
	return Request[T](ctx, c, http.MethodPost, relativePath, params, body, ct, opts...)
}

func Patch[T any](ctx context.Context, c *Client, relativePath string, params uri.Params, body any, ct ContentType, opts ...CallOption) *Future[T] {
	return Request[T](ctx, c, http.MethodPatch, relativePath, params, body, ct, opts...)
}

// Do is Request with the raw response body as Content.
func (c *Client) Do(ctx context.Context, method, relativePath string, params uri.Params, body any, ct ContentType, opts ...CallOption) *Future[[]byte] {
	return Request[[]byte](ctx, c, method, relativePath, params, body, ct, opts...)
}

type settleFunc func(tr *TransportResponse, err error, elapsed time.Duration, requestID string)

// dispatch sends one prepared request, then hands the outcome to settle. A
// non-nil prepErr settles the call without sending anything. It runs on its
// own goroutine and never panics on request errors.
func (c *Client) dispatch(ctx context.Context, progress ProgressFunc, settle settleFunc, req *TransportRequest, prepErr error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := c.logger.With(zap.String("request_id", requestID))

	if prepErr != nil {
		log.Debug("request not sent", zap.Error(prepErr))
		settle(nil, prepErr, time.Since(start), requestID)
		return
	}
	if c.requestIDHeader != "" {
		setHeader(req.Headers, c.requestIDHeader, requestID)
	}

	log.Debug("dispatching request",
		zap.String("method", req.Method),
		zap.String("uri", req.URL),
		zap.String("content_type", req.Headers["Content-Type"]),
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			log.Debug("rate limiter wait aborted", zap.Error(err))
			settle(nil, fmt.Errorf("waiting for rate limiter: %w", err), time.Since(start), requestID)
			return
		}
	}

	tr, err := c.transport.Send(ctx, req, progress)
	elapsed := time.Since(start)
	if err != nil {
		log.Debug("request failed", zap.Error(err), zap.Duration("duration", elapsed))
	} else {
		log.Debug("request completed",
			zap.Int("status", tr.StatusCode),
			zap.Duration("duration", elapsed),
			zap.Bool("success", isSuccess(tr.StatusCode)),
		)
	}
	settle(tr, err, elapsed, requestID)
}

// mapResponse turns a transport outcome into a Response. The boolean reports
// whether the success branch was taken. decode controls whether a successful
// body is decoded into Content.
func mapResponse[T any](tr *TransportResponse, err error, decode bool) (*Response[T], bool) {
	if err != nil || tr == nil {
		resp := newResponse[T](0)
		resp.StatusText = statusTextNetwork
		if err != nil {
			resp.ErrorMessage = err.Error()
		}
		return resp, false
	}

	resp := newResponse[T](tr.StatusCode)
	if tr.Headers != nil {
		resp.Headers = tr.Headers
	}

	if !isSuccess(tr.StatusCode) {
		fillFailure(resp, tr, true)
		return resp, false
	}

	resp.Location = resp.Header("Location")
	if !decode {
		return resp, true
	}

	content, err := decodeContent[T](tr.Body)
	if err != nil {
		resp.Location = ""
		resp.StatusText = statusTextOrDefault(tr)
		resp.ErrorMessage = string(tr.Body)
		if resp.ErrorMessage == "" {
			resp.ErrorMessage = err.Error()
		}
		return resp, false
	}
	resp.Content = content
	return resp, true
}

func fillFailure[T any](resp *Response[T], tr *TransportResponse, withModelState bool) {
	resp.StatusText = statusTextOrDefault(tr)
	eb := DecodeErrorBody(tr.Body)
	resp.ErrorMessage = eb.Message
	resp.ErrorDetails = eb.Details
	if withModelState {
		resp.ModelState = eb.ModelState
	}
}

func statusTextOrDefault(tr *TransportResponse) string {
	if tr.StatusText != "" {
		return tr.StatusText
	}
	if text := http.StatusText(tr.StatusCode); text != "" {
		return text
	}
	return statusTextNetwork
}

func decodeContent[T any](body []byte) (*T, error) {
	if raw, ok := any(&body).(*T); ok {
		if len(body) == 0 {
			return nil, nil
		}
		return raw, nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	content := new(T)
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(content); err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decoding response body: trailing data")
	}
	return content, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
