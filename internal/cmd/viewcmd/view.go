// Package viewcmd provides the view command, which shows a published page as
// markdown.
package viewcmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/md2conf/api"
	"github.com/open-cli-collective/md2conf/internal/cmd/cmdutil"
	"github.com/open-cli-collective/md2conf/internal/config"
	"github.com/open-cli-collective/md2conf/internal/view"
	"github.com/open-cli-collective/md2conf/pkg/md"
)

type viewOptions struct {
	space       string
	raw         bool
	web         bool
	showMacros  bool
	contentOnly bool
	configPath  string
	output      string
	noColor     bool
	out         io.Writer

	openBrowser func(string) error
}

// NewCmdView creates the view command.
func NewCmdView() *cobra.Command {
	opts := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "view <title>",
		Short: "View a published page",
		Long: `Fetch a page by title and print it as markdown.

Code blocks, callouts and anchor links produced by md2conf are converted
back to their markdown form. Use --raw to see the storage format instead.`,
		Example: `  # View a page in the default space
  md2conf view "Release Notes"

  # View raw storage format
  md2conf view "Release Notes" --space DEV --raw

  # Open in browser
  md2conf view "Release Notes" --web`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.out = cmd.OutOrStdout()
			return runView(cmd.Context(), args[0], opts, nil)
		},
	}

	cmd.Flags().StringVar(&opts.space, "space", "", "Space key (default: configured default space)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Show raw Confluence storage format")
	cmd.Flags().BoolVarP(&opts.web, "web", "w", false, "Open in browser instead of displaying")
	cmd.Flags().BoolVar(&opts.showMacros, "show-macros", false, "Show Confluence macro placeholders (e.g., [TOC]) instead of stripping them")
	cmd.Flags().BoolVar(&opts.contentOnly, "content-only", false, "Print only the page content")

	return cmd
}

func runView(ctx context.Context, title string, opts *viewOptions, client *api.Client) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	// Create API client if not provided (allows injection for testing)
	spaceKey := opts.space
	if client == nil {
		cfg, err := cmdutil.LoadConfig(opts.configPath, config.Overrides{})
		if err != nil {
			return err
		}
		spaceKey = cfg.SpaceKey(spaceKey)
		client = cmdutil.NewClient(cfg, nil)
	}
	if spaceKey == "" {
		return fmt.Errorf("no space given: use --space or set a default space")
	}

	spaceID, err := client.SpaceID(ctx, spaceKey)
	if err != nil {
		return fmt.Errorf("failed to resolve space %s: %w", spaceKey, err)
	}
	ref, found, err := client.FindPage(ctx, spaceID, title)
	if err != nil {
		return fmt.Errorf("failed to find page: %w", err)
	}
	if !found {
		return fmt.Errorf("page %q not found in space %s", title, spaceKey)
	}

	if opts.web {
		open := opts.openBrowser
		if open == nil {
			open = cmdutil.OpenBrowser
		}
		return open(ref.Link)
	}

	page, err := client.GetPage(ctx, ref.ID, &api.GetPageOptions{BodyFormat: "storage"})
	if err != nil {
		return fmt.Errorf("failed to get page: %w", err)
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	if opts.out != nil {
		renderer.SetWriter(opts.out)
	}

	if opts.output == string(view.FormatJSON) {
		return renderer.RenderJSON(page)
	}

	if !opts.contentOnly {
		renderer.RenderKeyValue("Title", page.Title)
		renderer.RenderKeyValue("ID", page.ID)
		if page.Version != nil {
			renderer.RenderKeyValue("Version", strconv.Itoa(page.Version.Number))
		}
		renderer.RenderKeyValue("URL", ref.Link)
		renderer.RenderText("")
	}

	if page.Body == nil || page.Body.Storage == nil || page.Body.Storage.Value == "" {
		renderer.RenderText("(No content)")
		return nil
	}

	content := page.Body.Storage.Value
	if opts.raw {
		renderer.RenderText(content)
		return nil
	}

	markdown, err := md.FromConfluenceStorageWithOptions(content, md.ConvertOptions{ShowMacros: opts.showMacros})
	if err != nil {
		// Fall back to raw content if conversion fails
		renderer.RenderText("(Failed to convert to markdown, showing raw HTML)")
		renderer.RenderText("")
		renderer.RenderText(content)
		return nil
	}
	renderer.RenderText(markdown)
	return nil
}
