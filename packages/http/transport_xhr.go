//go:build js && wasm

package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall/js"
	"time"
)

// XHRTransport sends requests with the browser's XMLHttpRequest. Bodies are
// buffered, not streamed.
type XHRTransport struct {
	// Timeout is the amount of time a request can take before being considered timed out.
	Timeout time.Duration
}

func NewXHRTransport(settings TransportSettings) *XHRTransport {
	return &XHRTransport{Timeout: settings.Timeout}
}

func (t *XHRTransport) Send(ctx context.Context, req *TransportRequest, progress ProgressFunc) (*TransportResponse, error) {
	xhr := js.Global().Get("XMLHttpRequest").New()
	xhr.Call("open", req.Method, req.URL)
	xhr.Set("timeout", t.Timeout.Milliseconds())
	xhr.Set("responseType", "arraybuffer")
	for k, v := range req.Headers {
		xhr.Call("setRequestHeader", k, v)
	}

	responseC := make(chan *TransportResponse, 1)
	errC := make(chan error, 1)
	eventHandler := js.FuncOf(func(this js.Value, args []js.Value) any {
		handleXHREvent(xhr, args[0], responseC, errC)
		return nil
	})
	defer eventHandler.Release()
	for _, event := range []string{"load", "error", "timeout", "abort"} {
		xhr.Call("addEventListener", event, eventHandler)
	}

	progressHandler := js.FuncOf(func(this js.Value, args []js.Value) any {
		if progress == nil {
			return nil
		}
		event := args[0]
		if !event.Get("lengthComputable").Bool() {
			progress(-1)
			return nil
		}
		progress(fraction(int64(event.Get("loaded").Float()), int64(event.Get("total").Float())))
		return nil
	})
	defer progressHandler.Release()
	if req.TrackUpload {
		xhr.Get("upload").Call("addEventListener", "progress", progressHandler)
	} else {
		xhr.Call("addEventListener", "progress", progressHandler)
	}

	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("getting request body: %w", err)
		}
		body := js.Global().Get("Uint8Array").New(len(data))
		js.CopyBytesToJS(body, data)
		xhr.Call("send", body)
	} else {
		xhr.Call("send")
	}

	select {
	case resp := <-responseC:
		return resp, nil
	case err := <-errC:
		return nil, err
	case <-ctx.Done():
		xhr.Call("abort")
		return nil, ctx.Err()
	}
}

// handleXHREvent handles a terminal event for the XHR.
func handleXHREvent(xhr, event js.Value, responseC chan<- *TransportResponse, errC chan<- error) {
	eventType := event.Get("type").String()
	if eventType != "load" {
		select {
		case errC <- errors.New("received event type: " + eventType):
		default:
		}
		return
	}

	code := xhr.Get("status").Int()
	var body []byte
	if buf := xhr.Get("response"); !buf.IsNull() && !buf.IsUndefined() {
		arr := js.Global().Get("Uint8Array").New(buf)
		body = make([]byte, arr.Get("length").Int())
		js.CopyBytesToGo(body, arr)
	}
	select {
	case responseC <- &TransportResponse{
		StatusCode: code,
		StatusText: reasonPhrase(code, xhr.Get("statusText").String()),
		Headers:    parseRawHeaders(xhr.Call("getAllResponseHeaders").String()),
		Body:       body,
	}:
	default:
	}
}

// parseRawHeaders parses the CRLF separated output of getAllResponseHeaders.
func parseRawHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(raw, "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return headers
}

func platformTransport(name string, settings TransportSettings) (Transport, bool) {
	if name != "xhr" {
		return nil, false
	}
	return NewXHRTransport(settings), true
}
