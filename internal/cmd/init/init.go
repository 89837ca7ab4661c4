// Package init provides the init command for md2conf.
package init

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/md2conf/internal/cmd/cmdutil"
	"github.com/open-cli-collective/md2conf/internal/config"
)

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	var (
		org      string
		username string
		noVerify bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize md2conf configuration",
		Long: `Initialize md2conf with your Confluence credentials.

This command will guide you through setting up your Confluence organisation,
username, and API key. The configuration will be saved to
~/.config/md2conf/config.yml.

The organisation may be an Atlassian Cloud site name (mycompany), a host
name (wiki.example.com) or a full base URL.

To generate an API key:
  1. Go to https://id.atlassian.com/manage-profile/security/api-tokens
  2. Click "Create API token"
  3. Copy the token (it won't be shown again)`,
		Example: `  # Interactive setup
  md2conf init

  # Pre-populate the organisation
  md2conf init --org mycompany`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), org, username, noVerify)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "Confluence organisation name, host or base URL")
	cmd.Flags().StringVar(&username, "username", "", "Your Atlassian account email")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip connection verification")

	return cmd
}

func required(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func runInit(ctx context.Context, out io.Writer, prefillOrg, prefillUsername string, noVerify bool) error {
	configPath := config.DefaultConfigPath()

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Fprintln(out, "Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{Org: prefillOrg, Username: prefillUsername}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Organisation").
				Description("Atlassian Cloud site name, host name or base URL").
				Placeholder("mycompany").
				Value(&cfg.Org).
				Validate(required("organisation")),

			huh.NewInput().
				Title("Username").
				Description("Your Atlassian account email").
				Placeholder("you@example.com").
				Value(&cfg.Username).
				Validate(required("username")),

			huh.NewInput().
				Title("API Key").
				Description("Generate at: id.atlassian.com/manage-profile/security/api-tokens").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.APIKey).
				Validate(required("API key")),

			huh.NewInput().
				Title("Default Space (optional)").
				Description("Space to publish to when none is given; defaults to your personal space").
				Placeholder("MYSPACE").
				Value(&cfg.DefaultSpace),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	var verify func(context.Context, *config.Config) error
	if !noVerify {
		verify = verifyConnection
	}
	return saveConfig(ctx, out, cfg, configPath, verify)
}

// saveConfig validates cfg, checks the connection when verify is set and
// writes the file.
func saveConfig(ctx context.Context, out io.Writer, cfg *config.Config, path string, verify func(context.Context, *config.Config) error) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if verify != nil {
		fmt.Fprint(out, "Verifying connection... ")
		if err := verify(ctx, cfg); err != nil {
			fmt.Fprintln(out, "failed!")
			return fmt.Errorf("connection verification failed: %w", err)
		}
		fmt.Fprintln(out, "success!")
	}

	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nConfiguration saved to %s\n", path)
	fmt.Fprintln(out, "\nYou're all set! Try running:")
	fmt.Fprintln(out, "  md2conf README.md --simulate")
	fmt.Fprintln(out, "  md2conf README.md <SPACE_KEY>")

	return nil
}

func verifyConnection(ctx context.Context, cfg *config.Config) error {
	return cmdutil.VerifyConnection(ctx, cmdutil.NewClient(cfg, nil))
}
