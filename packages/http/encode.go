package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrUnsupportedBody is returned when a body cannot be encoded with the
// requested ContentType.
var ErrUnsupportedBody = errors.New("unsupported request body")

// EncodeBody converts body to the wire format selected by ct. It returns the
// payload reader and its length, or -1 if the length is unknown. A nil body
// yields a nil reader and a zero length.
func EncodeBody(body any, ct ContentType) (io.Reader, int64, error) {
	if body == nil {
		return nil, 0, nil
	}

	switch ct {
	case JSON:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode json body: %w", err)
		}
		return bytes.NewReader(data), int64(len(data)), nil
	case URLFormEncoded:
		form, err := FormEncode(body)
		if err != nil {
			return nil, 0, err
		}
		return strings.NewReader(form), int64(len(form)), nil
	case Blob:
		return blobReader(body)
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownContentType, int(ct))
	}
}

func blobReader(body any) (io.Reader, int64, error) {
	switch b := body.(type) {
	case []byte:
		return bytes.NewReader(b), int64(len(b)), nil
	case string:
		return strings.NewReader(b), int64(len(b)), nil
	case interface{ Len() int }:
		r, ok := body.(io.Reader)
		if !ok {
			break
		}
		return r, int64(b.Len()), nil
	case *os.File:
		info, err := b.Stat()
		if err != nil {
			return b, -1, nil
		}
		return b, info.Size(), nil
	case io.Reader:
		return b, -1, nil
	}
	return nil, 0, fmt.Errorf("%w: blob body must be []byte, string or io.Reader, got %T", ErrUnsupportedBody, body)
}
