// Package completion provides shell completion generation commands.
package completion

import (
	"io"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	load    string
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name:    "bash",
		load:    "source <(md2conf completion bash)",
		install: "md2conf completion bash | sudo tee /etc/bash_completion.d/md2conf > /dev/null",
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenBashCompletionV2(w, true)
		},
	},
	{
		name: "zsh",
		load: "source <(md2conf completion zsh)",
		install: `mkdir -p ~/.zsh/completions
  md2conf completion zsh > ~/.zsh/completions/_md2conf
  # then add fpath=(~/.zsh/completions $fpath) to ~/.zshrc`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenZshCompletion(w)
		},
	},
	{
		name:    "fish",
		load:    "md2conf completion fish | source",
		install: "md2conf completion fish > ~/.config/fish/completions/md2conf.fish",
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenFishCompletion(w, true)
		},
	},
	{
		name:    "powershell",
		load:    "md2conf completion powershell | Out-String | Invoke-Expression",
		install: "md2conf completion powershell >> $PROFILE",
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		},
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for md2conf.

These scripts enable tab-completion for commands, flags, and markdown files.
See each sub-command's help for installation instructions.`,
	}

	for _, sh := range shells {
		cmd.AddCommand(newCmdShell(sh))
	}

	return cmd
}

func newCmdShell(sh shell) *cobra.Command {
	return &cobra.Command{
		Use:   sh.name,
		Short: "Generate " + sh.name + " completion script",
		Long:  "Generate " + sh.name + " completion script for md2conf.",
		Example: "  # Load in current session\n  " + sh.load +
			"\n\n  # Install permanently\n  " + sh.install,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sh.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
