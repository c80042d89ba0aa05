package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitclient/packages/core/config"
	"github.com/abdul-hamid-achik/hitclient/packages/http"
	"github.com/abdul-hamid-achik/hitclient/packages/logger"
	"github.com/abdul-hamid-achik/hitclient/packages/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// rootOptions holds the persistent flags and the configuration resolved from them.
type rootOptions struct {
	configFile      string
	envFile         string
	baseURI         string
	headers         []string
	timeout         time.Duration
	transport       string
	logLevel        string
	outputFormat    string
	proxy           string
	requestIDHeader string
	rateLimit       float64
	insecure        bool
	noFollow        bool
	noColor         bool
	verbose         bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "hitclient",
		Short: "Call HTTP APIs from path templates. Get normalized responses.",
		Long: `hitclient builds request URIs from a base URI, a path template with
{name} placeholders and a set of parameters, sends one request and prints
a normalized response: status, location and content on success; status
text, error message, details and model state on failure.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "Config file (default: search .hitclient.yaml, hitclient.json, ...)")
	flags.StringVar(&o.envFile, "env-file", "", "Dotenv file with HITCLIENT_* variables (default: .env if present)")
	flags.StringVarP(&o.baseURI, "base-uri", "b", "", "Base URI that relative paths are joined to")
	flags.StringArrayVarP(&o.headers, "header", "H", nil, `Default header "Name: value" (repeatable)`)
	flags.DurationVar(&o.timeout, "timeout", 0, "Request timeout (e.g. 500ms, 10s)")
	flags.StringVar(&o.transport, "transport", "", "Transport: net, resty or xhr")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVarP(&o.outputFormat, "output", "o", "console", "Output format: console or json")
	flags.StringVar(&o.proxy, "proxy", "", "Proxy URL")
	flags.StringVar(&o.requestIDHeader, "request-id-header", "", "Send the per-call request ID in this header")
	flags.Float64Var(&o.rateLimit, "rate-limit", 0, "Client-side requests per second (0 disables)")
	flags.BoolVarP(&o.insecure, "insecure", "k", false, "Skip TLS certificate verification")
	flags.BoolVar(&o.noFollow, "no-follow", false, "Do not follow redirects")
	flags.BoolVar(&o.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Show response headers and request IDs")

	for _, method := range []string{"GET", "DELETE", "POST", "PUT", "PATCH"} {
		cmd.AddCommand(newVerbCmd(o, method))
	}
	cmd.AddCommand(
		newRequestCmd(o),
		newUploadCmd(o),
		newURICmd(o),
		newMockCmd(o),
		newInitCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
	registerFlagCompletions(cmd)

	return cmd
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitUsageError
}

// setup resolves the effective configuration (defaults, file, environment,
// flags) and builds the logger. It runs once per command.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if o.cfg != nil {
		return nil
	}

	cfg, err := config.Load(o.configFile, o.envFile)
	if err != nil {
		return &exitError{code: ExitConfigError, err: fmt.Errorf("loading config: %w", err)}
	}

	flags := cmd.Flags()
	if flags.Changed("base-uri") {
		cfg.BaseURI = o.baseURI
	}
	if len(o.headers) > 0 {
		headers, err := parseHeaders(o.headers)
		if err != nil {
			return &exitError{code: ExitUsageError, err: err}
		}
		cfg = cfg.Merge(&config.Config{Headers: headers})
	}
	if flags.Changed("timeout") {
		cfg.Timeout = int(o.timeout.Milliseconds())
	}
	if flags.Changed("transport") {
		cfg.Transport = o.transport
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("proxy") {
		cfg.Proxy = o.proxy
	}
	if flags.Changed("request-id-header") {
		cfg.RequestIDHeader = o.requestIDHeader
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = o.rateLimit
	}
	if o.insecure {
		cfg.ValidateSSL = config.BoolPtr(false)
	}
	if o.noFollow {
		cfg.FollowRedirects = config.BoolPtr(false)
	}
	if o.noColor {
		cfg.NoColor = config.BoolPtr(true)
	}

	log, err := logger.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	o.cfg = cfg
	o.log = log
	return nil
}

func (o *rootOptions) client() (*http.Client, error) {
	client, err := http.NewClientFromConfig(o.cfg, o.log)
	if err != nil {
		return nil, &exitError{code: ExitConfigError, err: err}
	}
	return client, nil
}

func (o *rootOptions) formatter(w io.Writer) output.Formatter {
	return output.New(strings.ToLower(o.outputFormat),
		[]output.ConsoleOption{
			output.WithWriter(w),
			output.WithVerbose(o.verbose),
			output.WithNoColor(o.cfg != nil && o.cfg.GetNoColor()),
		},
		[]output.JSONOption{output.JSONWithWriter(w)},
	)
}
