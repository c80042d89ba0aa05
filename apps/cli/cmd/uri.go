package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitclient/packages/uri"
	"github.com/spf13/cobra"
)

func newURICmd(o *rootOptions) *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "uri <path>",
		Short: "Print the URI a request would be sent to",
		Long: `Resolve a path template against the base URI without sending anything.

Examples:
  hitclient uri /widgets/{id} -b http://api.test -p id=42 -p verbose=true
  # http://api.test/widgets/42?verbose=true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setup(cmd); err != nil {
				return err
			}
			bag, err := parseParams(params)
			if err != nil {
				return &exitError{code: ExitUsageError, err: err}
			}
			target, err := uri.Build(o.cfg.BaseURI, args[0], bag)
			if err != nil {
				return &exitError{code: ExitUsageError, err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Parameter name=value (repeatable)")
	return cmd
}
