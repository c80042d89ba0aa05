package cmd

import (
	"io"
	"sort"

	"github.com/spf13/cobra"
)

type completionGenerator func(root *cobra.Command, w io.Writer, descriptions bool) error

var completionGenerators = map[string]completionGenerator{
	"bash": func(root *cobra.Command, w io.Writer, descriptions bool) error {
		return root.GenBashCompletionV2(w, descriptions)
	},
	"zsh": func(root *cobra.Command, w io.Writer, descriptions bool) error {
		if descriptions {
			return root.GenZshCompletion(w)
		}
		return root.GenZshCompletionNoDesc(w)
	},
	"fish": func(root *cobra.Command, w io.Writer, descriptions bool) error {
		return root.GenFishCompletion(w, descriptions)
	},
	"powershell": func(root *cobra.Command, w io.Writer, descriptions bool) error {
		if descriptions {
			return root.GenPowerShellCompletionWithDesc(w)
		}
		return root.GenPowerShellCompletion(w)
	},
}

// flagValues lists the accepted values of enum-like flags.
var flagValues = map[string][]string{
	"transport":    {"net", "resty", "xhr"},
	"output":       {"console", "json"},
	"log-level":    {"debug", "info", "warn", "error"},
	"content-type": {"json", "form", "blob"},
}

func newCompletionCmd() *cobra.Command {
	var noDescriptions bool

	shells := make([]string, 0, len(completionGenerators))
	for shell := range completionGenerators {
		shells = append(shells, shell)
	}
	sort.Strings(shells)

	cmd := &cobra.Command{
		Use:   "completion [bash|fish|powershell|zsh]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for hitclient.

Besides commands and flags, the script completes the values of --transport,
--output, --log-level and --content-type.

  $ source <(hitclient completion bash)
  $ hitclient completion zsh > "${fpath[1]}/_hitclient"
  $ hitclient completion fish | source
  PS> hitclient completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionGenerators[args[0]](cmd.Root(), cmd.OutOrStdout(), !noDescriptions)
		},
	}
	cmd.Flags().BoolVar(&noDescriptions, "no-descriptions", false, "Omit completion descriptions")

	return cmd
}

// registerFlagCompletions attaches value completions to the enum-like flags
// defined on cmd and its subcommands.
func registerFlagCompletions(cmd *cobra.Command) {
	for name, values := range flagValues {
		if cmd.PersistentFlags().Lookup(name) == nil && cmd.LocalNonPersistentFlags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
	for _, sub := range cmd.Commands() {
		registerFlagCompletions(sub)
	}
}
