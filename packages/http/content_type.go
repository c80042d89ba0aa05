package http

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownContentType is returned for a ContentType outside the enumeration.
var ErrUnknownContentType = errors.New("unknown content type")

// ContentType selects the wire format of the request body and the MIME type
// sent with it.
type ContentType int

const (
	// JSON encodes the body with encoding/json.
	JSON ContentType = iota
	// URLFormEncoded encodes the body as application/x-www-form-urlencoded.
	URLFormEncoded
	// Blob passes raw bytes through unchanged.
	Blob
)

// MimeType returns the Content-Type header value for ct.
func (ct ContentType) MimeType() string {
	switch ct {
	case URLFormEncoded:
		return "application/x-www-form-urlencoded; charset=UTF-8"
	case Blob:
		return "application/octet-stream; charset=UTF-8"
	default:
		return "application/json; charset=UTF-8"
	}
}

func (ct ContentType) String() string {
	switch ct {
	case JSON:
		return "json"
	case URLFormEncoded:
		return "form"
	case Blob:
		return "blob"
	default:
		return fmt.Sprintf("ContentType(%d)", int(ct))
	}
}

// ParseContentType maps a name ("json", "form", "blob") to a ContentType.
// The empty string maps to JSON.
func ParseContentType(name string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON, nil
	case "form", "urlencoded", "x-www-form-urlencoded":
		return URLFormEncoded, nil
	case "blob", "binary", "octet-stream":
		return Blob, nil
	default:
		return JSON, fmt.Errorf("%w: %q", ErrUnknownContentType, name)
	}
}
