package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/hitclient/packages/http"
	"github.com/abdul-hamid-achik/hitclient/packages/output"
	"github.com/abdul-hamid-achik/hitclient/packages/uri"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// requestOptions are the per-request flags shared by request and the verb commands.
type requestOptions struct {
	params      []string
	data        string
	dataFile    string
	contentType string
	headers     []string
	progress    bool
}

func (r *requestOptions) bind(flags *pflag.FlagSet, withBody bool) {
	flags.StringArrayVarP(&r.params, "param", "p", nil, "Parameter name=value for {name} placeholders or the query string (repeatable)")
	flags.StringArrayVar(&r.headers, "with-header", nil, `Header "Name: value" for this request only (repeatable)`)
	flags.BoolVar(&r.progress, "progress", false, "Print download progress to stderr")
	if withBody {
		flags.StringVarP(&r.data, "data", "d", "", "Request body")
		flags.StringVar(&r.dataFile, "data-file", "", "Read the request body from a file")
		flags.StringVarP(&r.contentType, "content-type", "t", "json", "Body encoding: json, form or blob")
	}
}

var requestLong = `Send one request. The path may contain {name} placeholders that are
filled from --param values; remaining parameters become the query string.

Examples:
  hitclient request GET /widgets/{id} -p id=42 -p verbose=true
  hitclient request POST widgets -d '{"name":"sprocket"}'
  hitclient request PUT widgets/{id} -p id=7 -t form -d 'name=a b&tags[]=x'`

func newRequestCmd(o *rootOptions) *cobra.Command {
	ro := &requestOptions{}
	cmd := &cobra.Command{
		Use:   "request <method> <path>",
		Short: "Send a request with any method",
		Long:  requestLong,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, o, ro, strings.ToUpper(args[0]), args[1])
		},
	}
	ro.bind(cmd.Flags(), true)
	return cmd
}

func newVerbCmd(o *rootOptions, method string) *cobra.Command {
	ro := &requestOptions{}
	withBody := method != "GET" && method != "DELETE"
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " <path>",
		Short: "Send a " + method + " request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, o, ro, method, args[0])
		},
	}
	ro.bind(cmd.Flags(), withBody)
	return cmd
}

func runRequest(cmd *cobra.Command, o *rootOptions, ro *requestOptions, method, path string) error {
	if err := o.setup(cmd); err != nil {
		return err
	}

	params, err := parseParams(ro.params)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}
	ct, err := http.ParseContentType(ro.contentType)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}
	body, closeBody, err := ro.body(ct)
	if err != nil {
		return &exitError{code: ExitUsageError, err: err}
	}
	defer closeBody()

	client, err := o.client()
	if err != nil {
		return err
	}

	var callOpts []http.CallOption
	if len(ro.headers) > 0 {
		headers, err := parseHeaders(ro.headers)
		if err != nil {
			return &exitError{code: ExitUsageError, err: err}
		}
		for k, v := range headers {
			callOpts = append(callOpts, http.WithHeader(k, v))
		}
	}
	if ro.progress {
		callOpts = append(callOpts, http.WithProgress(progressPrinter(cmd)))
	}

	ctx := cmd.Context()
	resp, err := client.Do(ctx, method, path, params, body, ct, callOpts...).Await(ctx)

	target, buildErr := uri.Build(client.BaseURI(), path, params)
	if buildErr != nil {
		target = path
	}
	o.formatter(cmd.OutOrStdout()).FormatResult(&output.Result{
		Method:   method,
		URL:      target,
		Response: resp,
		Err:      err,
	})

	return exitFor(resp, err)
}

// body returns the request body for ct, or nil when no data was given.
func (r *requestOptions) body(ct http.ContentType) (any, func(), error) {
	noop := func() {}
	if r.data != "" && r.dataFile != "" {
		return nil, noop, fmt.Errorf("--data and --data-file are mutually exclusive")
	}

	if ct == http.Blob && r.dataFile != "" {
		f, err := os.Open(r.dataFile)
		if err != nil {
			return nil, noop, err
		}
		return f, func() { f.Close() }, nil
	}

	raw := []byte(r.data)
	if r.dataFile != "" {
		data, err := os.ReadFile(r.dataFile)
		if err != nil {
			return nil, noop, err
		}
		raw = data
	}
	if len(raw) == 0 {
		return nil, noop, nil
	}

	switch ct {
	case http.JSON:
		if !json.Valid(raw) {
			return nil, noop, fmt.Errorf("request body is not valid JSON")
		}
		return json.RawMessage(raw), noop, nil
	case http.URLFormEncoded:
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err == nil {
			return fields, noop, nil
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, noop, fmt.Errorf("form body must be a JSON object or a query string: %w", err)
		}
		return values, noop, nil
	default:
		return raw, noop, nil
	}
}

// parseParams turns name=value pairs into a parameter bag. A value given
// more than once becomes a list.
func parseParams(pairs []string) (uri.Params, error) {
	params := uri.Params{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q (want name=value)", pair)
		}
		switch existing := params[name].(type) {
		case nil:
			params[name] = value
		case string:
			params[name] = []string{existing, value}
		case []string:
			params[name] = append(existing, value)
		}
	}
	return params, nil
}

// parseHeaders accepts "Name: value" or "Name=value".
func parseHeaders(lines []string) (map[string]string, error) {
	headers := make(map[string]string, len(lines))
	for _, line := range lines {
		idx := strings.IndexAny(line, ":=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", line)
		}
		headers[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+1:])
	}
	return headers, nil
}

func progressPrinter(cmd *cobra.Command) http.ProgressFunc {
	return func(fraction float64) {
		if fraction < 0 {
			fmt.Fprint(cmd.ErrOrStderr(), ".")
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "\r%3.0f%%", fraction*100)
		if fraction >= 1 {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	}
}

// exitFor maps a call outcome to an exit code. The outcome has already been printed.
func exitFor[T any](resp *http.Response[T], err error) error {
	if err == nil {
		return nil
	}
	if resp == nil || resp.StatusCode == 0 {
		return &exitError{code: ExitNetworkError}
	}
	return &exitError{code: ExitRequestFailure}
}
