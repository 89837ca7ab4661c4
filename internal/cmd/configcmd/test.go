package configcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/md2conf/api"
	"github.com/open-cli-collective/md2conf/internal/cmd/cmdutil"
	"github.com/open-cli-collective/md2conf/internal/config"
)

// NewCmdTest creates the config test command.
func NewCmdTest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test connectivity with configured credentials",
		Long:  `Test that md2conf can connect to your Confluence instance with the current configuration.`,
		Example: `  # Test connection
  md2conf config test`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			cfg, err := cmdutil.LoadConfig(configPath(cmd), config.Overrides{})
			if err != nil {
				return err
			}
			return runTest(cmd.Context(), cmd.OutOrStdout(), noColor, cfg)
		},
	}

	return cmd
}

func runTest(ctx context.Context, out io.Writer, noColor bool, cfg *config.Config) error {
	if noColor {
		color.NoColor = true
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Fprintf(out, "Testing connection to %s...\n", cfg.BaseURL())

	client := cmdutil.NewClient(cfg, nil, api.WithRetryPolicy(api.NoRetry()))
	if err := cmdutil.VerifyConnection(ctx, client); err != nil {
		_, _ = red.Fprintln(out, "✗ Connection failed:", err)
		fmt.Fprintln(out, "\nCheck your settings with: md2conf config show")
		fmt.Fprintln(out, "Reconfigure with: md2conf init")
		return err
	}

	_, _ = green.Fprintln(out, "✓ Authentication successful")
	_, _ = green.Fprintln(out, "✓ API access verified")
	if cfg.AccessToken != "" {
		fmt.Fprintln(out, "\nAuthenticated with a personal access token")
	} else {
		fmt.Fprintf(out, "\nAuthenticated as: %s\n", cfg.Username)
	}

	return nil
}
