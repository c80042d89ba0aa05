//go:build !(js && wasm)

package http

// platformTransport resolves transports that only exist on some platforms.
func platformTransport(name string, settings TransportSettings) (Transport, bool) {
	return nil, false
}
