package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/hitclient/packages/core/config"
	"github.com/abdul-hamid-achik/hitclient/packages/mock"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new hitclient project",
		Long: `Initialize a new hitclient project in the current directory.

This creates:
  - .hitclient.yaml   - Configuration file
  - mock.yaml         - Example mock routes

Examples:
  hitclient init
  hitclient init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			return initProject(cmd, cwd, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	return cmd
}

func initProject(cmd *cobra.Command, dir string, force bool) error {
	configFile := filepath.Join(dir, ".hitclient.yaml")
	mockFile := filepath.Join(dir, "mock.yaml")

	if !force {
		for _, f := range []string{configFile, mockFile} {
			if _, err := os.Stat(f); err == nil {
				return &exitError{code: ExitUsageError, err: fmt.Errorf("file already exists: %s (use --force to overwrite)", f)}
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.BaseURI = "http://localhost:3000"
	cfg.Headers = map[string]string{
		"User-Agent": "hitclient/" + version,
	}
	cfg.RequestIDHeader = "X-Request-Id"
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	routes := mock.RouteFile{
		Routes: []mock.RouteSpec{
			{
				Name:   "get-widget",
				Method: "GET",
				Path:   "/widgets/{id}",
				Body:   `{"id": {id}, "name": "sprocket"}`,
			},
			{
				Name:    "create-widget",
				Method:  "POST",
				Path:    "/widgets",
				Status:  201,
				Headers: map[string]string{"Location": "/widgets/7"},
				Body:    `{"id": 7, "name": "sprocket"}`,
			},
			{
				Name:   "update-widget-invalid",
				Method: "PUT",
				Path:   "/widgets/{id}",
				Status: 400,
				Body:   `{"errorMessage": "bad input", "errorDetails": ["name is required"], "modelState": {"name": ["required"]}}`,
			},
		},
	}
	routesYAML, err := yaml.Marshal(routes)
	if err != nil {
		return err
	}
	if err := os.WriteFile(mockFile, routesYAML, 0644); err != nil {
		return fmt.Errorf("failed to create mock file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", mockFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nTry it:\n  hitclient mock mock.yaml &\n  hitclient get /widgets/{id} -p id=42\n")
	return nil
}
