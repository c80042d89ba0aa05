package output

import (
	"github.com/abdul-hamid-achik/hitclient/packages/http"
)

// Result is one completed call as shown to the user.
type Result struct {
	Method   string
	URL      string
	Response *http.Response[[]byte]
	// Err is set when the call took the failure branch or never resolved.
	Err error
}

// Failed reports whether the call took the failure branch.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Formatter renders results.
type Formatter interface {
	FormatResult(result *Result)
	FormatError(err error)
	FormatHeader(version string)
}

// New returns the formatter registered under name ("console" or "json").
func New(name string, console []ConsoleOption, json []JSONOption) Formatter {
	if name == "json" {
		return NewJSONFormatter(json...)
	}
	return NewConsoleFormatter(console...)
}
