// Package root provides the root command for the md2conf CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/md2conf/internal/cmd/completion"
	"github.com/open-cli-collective/md2conf/internal/cmd/configcmd"
	initcmd "github.com/open-cli-collective/md2conf/internal/cmd/init"
	"github.com/open-cli-collective/md2conf/internal/cmd/viewcmd"
	"github.com/open-cli-collective/md2conf/internal/version"
)

// NewCmdRoot creates the root command for md2conf. Run with a markdown file
// it publishes that file.
func NewCmdRoot() *cobra.Command {
	opts := &publishOptions{}

	cmd := &cobra.Command{
		Use:   "md2conf <markdown-file> [space-key]",
		Short: "Publish markdown files as Atlassian Confluence pages",
		Long: `md2conf converts a markdown file to Confluence storage format and
creates or updates the page with the same title in a space.

The page title is the first line of the file unless --title or a front
matter "title" is given. Local images are uploaded as attachments and
links between headings are rewritten to Confluence anchors.

Get started by running: md2conf init`,
		Example: `  # Publish to the default space
  md2conf README.md

  # Publish under a parent page with a table of contents
  md2conf docs/setup.md DEV --ancestor "Team Docs" --contents

  # Print the converted page without touching Confluence
  md2conf README.md DEV --simulate

  # Delete the page
  md2conf README.md DEV --delete`,
		Args: cobra.RangeArgs(1, 2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return []string{"md", "markdown"}, cobra.ShellCompDirectiveFilterFileExt
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.file = args[0]
			if len(args) > 1 {
				opts.spaceKey = args[1]
			}
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			return runPublish(cmd.Context(), opts, nil)
		},
	}

	// Global flags
	cmd.PersistentFlags().String("config", "", "config file (default: ~/.config/md2conf/config.yml)")
	cmd.PersistentFlags().String("output", "table", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVarP(&opts.logLevel, "loglevel", "l", "info", "log level: debug, info, warn, error")

	f := cmd.Flags()
	f.StringVarP(&opts.overrides.Username, "username", "u", "", "Confluence username (default: $CONFLUENCE_USERNAME)")
	f.StringVarP(&opts.overrides.APIKey, "apikey", "p", "", "Confluence API key (default: $CONFLUENCE_API_KEY)")
	f.StringVar(&opts.overrides.AccessToken, "pat", "", "personal access token, used instead of username and API key")
	f.StringVarP(&opts.overrides.Org, "orgname", "o", "", "Confluence organisation name, host or base URL (default: $CONFLUENCE_ORGNAME)")
	f.BoolVarP(&opts.overrides.NoSSL, "nossl", "n", false, "use http instead of https")

	f.StringVarP(&opts.ancestor, "ancestor", "a", "", "title of the parent page")
	f.StringArrayVarP(&opts.attachments, "attachment", "t", nil, "file to attach, relative to the markdown file (repeatable)")
	f.BoolVarP(&opts.contents, "contents", "c", false, "add a table of contents at the top of the page")
	f.BoolVarP(&opts.delete, "delete", "d", false, "delete the page instead of publishing it")
	f.BoolVarP(&opts.simulate, "simulate", "s", false, "print the converted page without contacting Confluence")
	f.BoolVarP(&opts.web, "web", "w", false, "open the page in a browser after publishing")
	f.StringVar(&opts.source, "markdownsrc", string(defaultSource), "markdown dialect for heading anchors: default, bitbucket")
	f.IntVar(&opts.markupVersion, "markup-version", 1, "Confluence markup version for anchors: 1 or 2")
	f.StringArrayVar(&opts.labels, "label", nil, "label to add to the page (repeatable)")
	f.StringArrayVar(&opts.properties, "property", nil, "content property as key=value (repeatable)")
	f.StringArrayVar(&opts.details, "detail", nil, "page details row as key=value (repeatable)")
	f.BoolVar(&opts.hideDetails, "hide-details", false, "hide the page details table")
	f.StringArrayVar(&opts.pageMaps, "pages-map", nil, "resolve links under a base URL to a local directory, as base=dir (repeatable)")
	f.StringVar(&opts.title, "title", "", "page title, overriding front matter and the first line")
	f.BoolVar(&opts.removeEmojis, "remove-emojis", false, "strip emojis from the page")
	f.BoolVar(&opts.removeEmojis, "remove-emojies", false, "strip emojis from the page")
	_ = f.MarkHidden("remove-emojies")

	// Set version template
	cmd.SetVersionTemplate("md2conf version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	// Subcommands
	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(viewcmd.NewCmdView())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
