package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/tidwall/gjson"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Method   string        `json:"method"`
	URL      string        `json:"url"`
	Success  bool          `json:"success"`
	Response *JSONResponse `json:"response,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// JSONResponse represents a normalized response
type JSONResponse struct {
	StatusCode   int                 `json:"statusCode"`
	StatusText   string              `json:"statusText,omitempty"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	ErrorDetails []string            `json:"errorDetails,omitempty"`
	ModelState   map[string][]string `json:"modelState,omitempty"`
	Location     string              `json:"location,omitempty"`
	Content      json.RawMessage     `json:"content,omitempty"`
	Headers      map[string]string   `json:"headers,omitempty"`
	Duration     float64             `json:"duration"`
	RequestID    string              `json:"requestId,omitempty"`
}

// JSONFormatter formats results as JSON, one document per result
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *Result) {
	out := JSONOutput{
		Method:  result.Method,
		URL:     result.URL,
		Success: !result.Failed(),
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}

	if resp := result.Response; resp != nil {
		jr := &JSONResponse{
			StatusCode:   resp.StatusCode,
			StatusText:   resp.StatusText,
			ErrorMessage: resp.ErrorMessage,
			ErrorDetails: resp.ErrorDetails,
			ModelState:   resp.ModelState,
			Location:     resp.Location,
			Headers:      resp.Headers,
			Duration:     float64(resp.DurationMs()),
			RequestID:    resp.RequestID,
		}
		if resp.Content != nil && len(*resp.Content) > 0 {
			jr.Content = rawContent(*resp.Content)
		}
		out.Response = jr
	}

	f.encode(out)
}

// rawContent embeds JSON bodies as-is and quotes anything else.
func rawContent(body []byte) json.RawMessage {
	if gjson.ValidBytes(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(JSONOutput{Error: err.Error()})
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}
