package configcmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/md2conf/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current md2conf configuration with credential source indicators.`,
		Example: `  # Show current config
  md2conf config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			return runShow(cmd.OutOrStdout(), configPath(cmd), noColor)
		},
	}

	return cmd
}

// mask hides all but the first and last four characters of a secret.
func mask(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// source names where value came from: the first environment variable
// holding it, the config file, or "-" when neither does.
func source(value, fileValue string, envVars []string) string {
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" && v == value {
			return name
		}
	}
	if fileValue != "" && fileValue == value {
		return "config"
	}
	return "-"
}

func runShow(out io.Writer, path string, noColor bool) error {
	if noColor {
		color.NoColor = true
	}

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(path)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	// Load full config with env overrides
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue string, secret bool, envVars []string) {
		_, _ = bold.Fprintf(out, "%-14s", label+":")
		if value == "" {
			_, _ = dim.Fprintln(out, "-")
			return
		}
		display := value
		if secret {
			display = mask(value)
		}
		fmt.Fprint(out, display)
		_, _ = dim.Fprintf(out, "  (source: %s)\n", source(value, fileValue, envVars))
	}

	printField("Org", cfg.Org, fileCfg.Org, false, config.EnvOrg)
	printField("Username", cfg.Username, fileCfg.Username, false, config.EnvUsername)
	printField("API Key", cfg.APIKey, fileCfg.APIKey, true, config.EnvAPIKey)
	printField("Access Token", cfg.AccessToken, fileCfg.AccessToken, true, config.EnvAccessToken)
	printField("Space", cfg.DefaultSpace, fileCfg.DefaultSpace, false, config.EnvSpace)

	_, _ = bold.Fprintf(out, "%-14s", "No SSL:")
	fmt.Fprintln(out, strconv.FormatBool(cfg.NoSSL))
	_, _ = bold.Fprintf(out, "%-14s", "Base URL:")
	if url := cfg.BaseURL(); url != "" {
		fmt.Fprintln(out, url)
	} else {
		_, _ = dim.Fprintln(out, "-")
	}

	fmt.Fprintln(out)
	_, _ = dim.Fprintf(out, "Config file: %s\n", path)
	if fileErr != nil {
		_, _ = dim.Fprintln(out, "(file not found)")
	}

	return nil
}
