package configcmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/md2conf/internal/config"
)

// NewCmdClear creates the config clear command.
func NewCmdClear() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored configuration",
		Long:  `Delete the md2conf configuration file. Environment variables will still be used if set.`,
		Example: `  # Clear config
  md2conf config clear`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runClear(cmd.OutOrStdout(), configPath(cmd), noColor)
		},
	}

	return cmd
}

func runClear(out io.Writer, path string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	err := os.Remove(path)
	missing := errors.Is(err, fs.ErrNotExist)
	if err != nil && !missing {
		return fmt.Errorf("failed to remove config file: %w", err)
	}

	green := color.New(color.FgGreen)
	dim := color.New(color.Faint)

	if missing {
		_, _ = green.Fprintln(out, "✓ No config file to remove")
	} else {
		_, _ = green.Fprintf(out, "✓ Configuration cleared from %s\n", path)
	}

	var active []string
	for _, name := range config.EnvVars() {
		if os.Getenv(name) != "" {
			active = append(active, name)
		}
	}
	if len(active) > 0 {
		_, _ = dim.Fprintf(out, "\nNote: Environment variables will still be used: %s\n", strings.Join(active, ", "))
	}

	return nil
}
