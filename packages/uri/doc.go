// Package uri builds request URIs from a base address, a relative path
// template and a parameter bag.
//
// Path templates use single-brace placeholders:
//
//	uri.Build("https://api.example.com", "/widgets/{id}", uri.Params{"id": 42, "verbose": true})
//	// https://api.example.com/widgets/42?verbose=true
//
// Parameters consumed by a placeholder are not repeated in the query string.
// Every other non-nil parameter becomes a query parameter, emitted in key order.
// A placeholder with no matching parameter is an error.
package uri
