package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Headers required by the blob store for a block blob PUT.
const (
	headerBlobDate    = "x-ms-date"
	headerBlobVersion = "x-ms-version"
	headerBlobType    = "x-ms-blob-type"

	blobAPIVersion = "2014-02-14"
	blobTypeBlock  = "BlockBlob"
)

var errNilBlob = errors.New("blob reader is nil")

// UploadBlob PUTs file to signedURI as a block blob. The URI is used as-is and
// carries its own authorization, so the client's base URI and headers are not
// applied. size is the body length, or -1 if unknown; it drives upload progress.
// A successful upload resolves with Location set and no Content.
func (c *Client) UploadBlob(ctx context.Context, signedURI string, file io.Reader, size int64, opts ...CallOption) *Future[struct{}] {
	o := &callOptions{}
	for _, opt := range opts {
		opt(o)
	}

	f := newFuture[struct{}](o.onProgress)
	req, err := prepareBlobRequest(signedURI, file, size, o)

	go c.dispatch(ctx, f.notify, func(tr *TransportResponse, err error, elapsed time.Duration, requestID string) {
		resp, ok := mapBlobResponse(tr, err)
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

func prepareBlobRequest(signedURI string, file io.Reader, size int64, o *callOptions) (*TransportRequest, error) {
	if file == nil {
		return nil, errNilBlob
	}
	headers := map[string]string{
		headerBlobDate:    time.Now().UTC().Format(http.TimeFormat),
		headerBlobVersion: blobAPIVersion,
		headerBlobType:    blobTypeBlock,
	}
	for k, v := range o.headers {
		setHeader(headers, k, v)
	}
	return &TransportRequest{
		Method:        http.MethodPut,
		URL:           signedURI,
		Headers:       headers,
		Body:          file,
		ContentLength: size,
		TrackUpload:   true,
	}, nil
}

func mapBlobResponse(tr *TransportResponse, err error) (*Response[struct{}], bool) {
	if err != nil || tr == nil {
		return mapResponse[struct{}](tr, err, false)
	}

	resp := newResponse[struct{}](tr.StatusCode)
	if tr.Headers != nil {
		resp.Headers = tr.Headers
	}
	if !isSuccess(tr.StatusCode) {
		fillFailure(resp, tr, false)
		return resp, false
	}
	resp.Location = resp.Header("Location")
	return resp, true
}
