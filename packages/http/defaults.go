package http

import (
	"strings"
	"sync"
)

// The default registry supplies the base URI and headers of clients that are
// constructed without their own. It is meant to be configured once during
// setup. Changing it while requests are in flight is not supported; clients
// copy the values at construction and never see later changes.
var defaults = struct {
	sync.RWMutex
	baseURI string
	headers map[string]string
}{
	headers: make(map[string]string),
}

// SetDefaultBaseURI sets the base URI used by clients created without WithBaseURI.
func SetDefaultBaseURI(baseURI string) {
	defaults.Lock()
	defer defaults.Unlock()
	defaults.baseURI = baseURI
}

// SetDefaultHeaders replaces the headers used by clients created without WithHeaders.
func SetDefaultHeaders(headers map[string]string) {
	defaults.Lock()
	defer defaults.Unlock()
	defaults.headers = copyHeaders(headers)
}

// SetDefaultHeader adds one header to the default registry.
func SetDefaultHeader(key, value string) {
	defaults.Lock()
	defer defaults.Unlock()
	setHeader(defaults.headers, key, value)
}

// DefaultBaseURI returns the registry base URI.
func DefaultBaseURI() string {
	defaults.RLock()
	defer defaults.RUnlock()
	return defaults.baseURI
}

// DefaultHeaders returns a copy of the registry headers.
func DefaultHeaders() map[string]string {
	defaults.RLock()
	defer defaults.RUnlock()
	return copyHeaders(defaults.headers)
}

// ResetDefaults clears the registry.
func ResetDefaults() {
	defaults.Lock()
	defer defaults.Unlock()
	defaults.baseURI = ""
	defaults.headers = make(map[string]string)
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// setHeader sets key in h, replacing any entry whose name differs only in case.
func setHeader(h map[string]string, key, value string) {
	deleteHeader(h, key)
	h[key] = value
}

func deleteHeader(h map[string]string, key string) {
	for k := range h {
		if strings.EqualFold(k, key) {
			delete(h, k)
		}
	}
}
