package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"
)

// formatBody pretty-prints JSON bodies and truncates anything longer than maxLen.
func formatBody(body []byte, maxLen int) string {
	var str string
	if gjson.ValidBytes(body) {
		str = gjson.GetBytes(body, "@pretty").Raw
	} else {
		str = string(body)
	}
	str = strings.TrimRight(str, "\n")
	if maxLen > 0 && len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
	maxBody int
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:  os.Stdout,
		maxBody: 4096,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithMaxBody truncates printed bodies to n bytes; 0 prints everything.
func WithMaxBody(n int) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.maxBody = n
	}
}

func (f *ConsoleFormatter) FormatResult(result *Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold(result.Method), result.URL)

	resp := result.Response
	if resp == nil {
		if result.Err != nil {
			fmt.Fprintf(f.writer, "  %s %v\n", red("x"), result.Err)
		}
		return
	}

	if !result.Failed() {
		fmt.Fprintf(f.writer, "  %s %d %s\n", green("✓"), resp.StatusCode, cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
		if resp.Location != "" {
			fmt.Fprintf(f.writer, "    Location: %s\n", resp.Location)
		}
	} else {
		fmt.Fprintf(f.writer, "  %s %d %s %s\n", red("✗"), resp.StatusCode, red(resp.StatusText), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
		if resp.ErrorMessage != "" {
			fmt.Fprintf(f.writer, "    %s %s\n", red("→"), formatBody([]byte(resp.ErrorMessage), f.maxBody))
		}
		for _, d := range resp.ErrorDetails {
			fmt.Fprintf(f.writer, "      - %s\n", d)
		}
		for _, field := range sortedKeys(resp.ModelState) {
			fmt.Fprintf(f.writer, "      %s: %s\n", yellow(field), strings.Join(resp.ModelState[field], "; "))
		}
	}

	if f.verbose {
		if resp.RequestID != "" {
			fmt.Fprintf(f.writer, "    Request-ID: %s\n", resp.RequestID)
		}
		for _, name := range sortedKeys(resp.Headers) {
			fmt.Fprintf(f.writer, "    %s: %s\n", name, resp.Headers[name])
		}
	}

	if resp.Content != nil && len(*resp.Content) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", formatBody(*resp.Content, f.maxBody))
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	if !f.verbose {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitclient"), version)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
