package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"
)

// RestyTransport sends requests with a resty client. Responses are read
// unparsed so the body can be streamed through the progress reader.
type RestyTransport struct {
	client *resty.Client
}

func NewRestyTransport(settings TransportSettings) *RestyTransport {
	c := resty.New()
	c.SetTimeout(settings.Timeout)
	c.SetRedirectPolicy(resty.RedirectPolicyFunc(redirectPolicy(settings)))
	if !settings.ValidateSSL {
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if settings.ProxyURL != "" {
		c.SetProxy(settings.ProxyURL)
	}
	return &RestyTransport{client: c}
}

// NewRestyTransportWithClient wraps an existing resty client.
func NewRestyTransportWithClient(client *resty.Client) *RestyTransport {
	return &RestyTransport{client: client}
}

func (t *RestyTransport) Send(ctx context.Context, req *TransportRequest, progress ProgressFunc) (*TransportResponse, error) {
	r := t.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		body := req.Body
		if req.TrackUpload {
			body = newProgressReader(req.Body, req.ContentLength, progress)
		}
		r.SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		if resp != nil && resp.RawBody() != nil {
			resp.RawBody().Close()
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}
	raw := resp.RawBody()
	if raw == nil {
		return nil, fmt.Errorf("executing request: no response")
	}
	defer raw.Close()

	var respBody io.Reader = raw
	if !req.TrackUpload {
		respBody = newProgressReader(raw, resp.RawResponse.ContentLength, progress)
	}
	data, err := io.ReadAll(respBody)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &TransportResponse{
		StatusCode: resp.StatusCode(),
		StatusText: reasonPhrase(resp.StatusCode(), resp.Status()),
		Headers:    lowerHeaders(resp.Header()),
		Body:       data,
	}, nil
}
