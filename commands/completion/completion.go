package completion

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for testpki.

To load completions:

Bash:

  $ source <(testpki completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ testpki completion bash > /etc/bash_completion.d/testpki
  # macOS:
  $ testpki completion bash > $(brew --prefix)/etc/bash_completion.d/testpki

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ testpki completion zsh > "${fpath[1]}/_testpki"

  # You will need to start a new shell for this setup to take effect.

Fish:

  $ testpki completion fish | source

  # To load completions for each session, execute once:
  $ testpki completion fish > ~/.config/fish/completions/testpki.fish

PowerShell:

  PS> testpki completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> testpki completion powershell > testpki.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletion(out)
			}
			return errors.Errorf("unsupported shell %q", args[0])
		},
	}

	return cmd
}
