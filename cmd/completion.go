package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xrsl/endeavor/pkg/ai"
	"github.com/xrsl/endeavor/pkg/search"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for endeavor. Agent flags complete to
the agents this machine can use.

To load completions:

Bash:
  $ source <(endeavor completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ endeavor completion bash > /etc/bash_completion.d/endeavor
  # macOS:
  $ endeavor completion bash > $(brew --prefix)/etc/bash_completion.d/endeavor

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ endeavor completion zsh > "${fpath[1]}/_endeavor"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ endeavor completion fish | source

  # To load completions for each session, execute once:
  $ endeavor completion fish > ~/.config/fish/completions/endeavor.fish

PowerShell:
  PS> endeavor completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> endeavor completion powershell > endeavor.ps1
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

func init() {
	rootCmd.AddCommand(completionCmd)
}

// registerFlagCompletions wires value completion for the global flags. It
// runs after the flags are defined.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("agent", completeAgents)
	_ = rootCmd.RegisterFlagCompletionFunc("research-agent", completeResearchAgents)
}

func completeAgents(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return withPrefix(ai.SupportedAgents(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeResearchAgents(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	agents := make([]string, 0, len(search.SupportedAgents))
	for _, m := range search.SupportedAgents {
		agents = append(agents, "search:"+m)
	}
	return withPrefix(agents, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func withPrefix(values []string, prefix string) []string {
	var out []string
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}
