package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitclient/packages/mock"
	"github.com/spf13/cobra"
)

func newMockCmd(o *rootOptions) *cobra.Command {
	var (
		port  int
		delay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mock <file|directory>...",
		Short: "Start a mock API server from route files",
		Long: `Start an HTTP mock server that answers with the canned responses
defined in YAML or JSON route files.

The mock server:
- Matches routes by method and path template (e.g., /widgets/{id})
- Substitutes {name} path values into response bodies and headers
- Can echo request bodies back (echo: true)
- Can add artificial delays to simulate network latency

Examples:
  hitclient mock routes.yaml
  hitclient mock routes.yaml --port 3000 --delay 100ms
  hitclient mock ./mocks/ --log-level debug`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setup(cmd); err != nil {
				return err
			}

			files, err := collectFiles(args)
			if err != nil {
				return &exitError{code: ExitUsageError, err: err}
			}
			if len(files) == 0 {
				return &exitError{code: ExitUsageError, err: fmt.Errorf("no .yaml, .yml or .json route files found")}
			}

			server := mock.NewServer(
				mock.WithPort(port),
				mock.WithDelay(delay),
				mock.WithLogger(o.log),
			)
			if err := server.LoadFiles(files); err != nil {
				return &exitError{code: ExitConfigError, err: fmt.Errorf("failed to load files: %w", err)}
			}

			routes := server.GetRoutes()
			if len(routes) == 0 {
				return &exitError{code: ExitConfigError, err: fmt.Errorf("no routes found in the provided files")}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d routes from %d files\n", len(routes), len(files))
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://localhost:%d\n", port)

			// Setup graceful shutdown
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.StartWithContext(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 3000, "Port to run the mock server on")
	cmd.Flags().DurationVar(&delay, "delay", 0, "Delay to add to all responses (e.g., 100ms, 1s)")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isRouteFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			if isRouteFile(arg) {
				files = append(files, arg)
			}
		}
	}

	return files, nil
}

func isRouteFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
