// Package http dispatches HTTP requests relative to a base URI and normalizes
// every outcome into a Response.
//
// It wraps a pluggable Transport with additional features:
//   - URI building from {name} path templates and a parameter bag
//   - JSON, form and blob body encoding selected by ContentType
//   - Futures with a progress channel instead of callbacks
//   - Error body extraction (errorMessage, errorDetails, modelState)
//   - Direct block blob uploads to signed URIs
//
// Calls never return errors synchronously. Each one resolves its Future on
// either the success branch or the failure branch.
package http
