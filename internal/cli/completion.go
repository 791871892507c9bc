package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttrow/pkg/core/scale"
)

// chartExtensions are the file types offered when completing a chart argument.
var chartExtensions = []string{"json", "yaml", "yml", "toml", "csv"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ganttrow.

Besides commands and flags, the scripts complete chart arguments to
.json, .yaml, .toml and .csv files, and the values of --unit (day, week,
month, year) and --precision (full, half, quarter).

To load completions:

Bash:
  $ source <(ganttrow completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ ganttrow completion bash > /etc/bash_completion.d/ganttrow
  # macOS:
  $ ganttrow completion bash > $(brew --prefix)/etc/bash_completion.d/ganttrow

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ ganttrow completion zsh > "${fpath[1]}/_ganttrow"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ ganttrow completion fish | source

  # To load completions for each session, execute once:
  $ ganttrow completion fish > ~/.config/fish/completions/ganttrow.fish

PowerShell:
  PS> ganttrow completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> ganttrow completion powershell > ganttrow.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeChartFiles restricts chart argument completion to importable files.
func completeChartFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return chartExtensions, cobra.ShellCompDirectiveFilterFileExt
}

func completeUnits(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, u := range scale.Units {
		if strings.HasPrefix(string(u), toComplete) {
			out = append(out, string(u))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completePrecisions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, p := range scale.Precisions {
		if strings.HasPrefix(string(p), toComplete) {
			out = append(out, string(p))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// registerScaleCompletion completes the --unit and --precision flags of cmd.
func registerScaleCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("unit", completeUnits)
	_ = cmd.RegisterFlagCompletionFunc("precision", completePrecisions)
}
