package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/open-cli-collective/md2conf/api"
	"github.com/open-cli-collective/md2conf/internal/cmd/cmdutil"
	"github.com/open-cli-collective/md2conf/internal/config"
	"github.com/open-cli-collective/md2conf/internal/publish"
	"github.com/open-cli-collective/md2conf/internal/view"
	"github.com/open-cli-collective/md2conf/pkg/md"
)

const defaultSource = md.SourceDefault

var errNoSpace = errors.New("no space key given and no default space or username configured")

type publishOptions struct {
	file     string
	spaceKey string

	configPath string
	overrides  config.Overrides
	logLevel   string
	output     string
	noColor    bool

	ancestor      string
	attachments   []string
	contents      bool
	delete        bool
	simulate      bool
	web           bool
	source        string
	markupVersion int
	labels        []string
	properties    []string
	details       []string
	hideDetails   bool
	pageMaps      []string
	title         string
	removeEmojis  bool

	stdout io.Writer
	stderr io.Writer

	// openBrowser replaces cmdutil.OpenBrowser in tests.
	openBrowser func(string) error
}

// runPublish converts and publishes opts.file. A nil client is built from
// the resolved configuration.
func runPublish(ctx context.Context, opts *publishOptions, client *api.Client) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if opts.markupVersion != 1 && opts.markupVersion != 2 {
		return fmt.Errorf("invalid markup version %d: must be 1 or 2", opts.markupVersion)
	}

	source := md.Source(strings.ToLower(opts.source))
	if !md.KnownSource(source) {
		return fmt.Errorf("invalid markdown source %q: must be default or bitbucket", opts.source)
	}

	logger, err := cmdutil.NewLogger(opts.stderr, opts.logLevel)
	if err != nil {
		return err
	}

	properties, err := parseProperties(opts.properties)
	if err != nil {
		return err
	}
	details, err := parseDetails(opts.details)
	if err != nil {
		return err
	}
	mappings, err := parsePageMappings(opts.pageMaps)
	if err != nil {
		return err
	}

	spaceKey := opts.spaceKey
	if client == nil {
		cfg, err := cmdutil.LoadConfig(opts.configPath, opts.overrides)
		if err != nil {
			return err
		}
		spaceKey = cfg.SpaceKey(spaceKey)
		client = cmdutil.NewClient(cfg, logger)
	}
	if spaceKey == "" {
		return errNoSpace
	}

	logger.Info("publishing markdown file", "file", opts.file, "space", spaceKey)

	result, err := publish.New(client, logger).Run(ctx, publish.Options{
		File:         opts.file,
		SpaceKey:     spaceKey,
		Title:        opts.title,
		Ancestor:     opts.ancestor,
		Attachments:  opts.attachments,
		Contents:     opts.contents,
		Delete:       opts.delete,
		Simulate:     opts.simulate,
		Source:       source,
		Version:      opts.markupVersion,
		Labels:       opts.labels,
		Properties:   properties,
		Details:      details,
		HideDetails:  opts.hideDetails,
		PageMappings: mappings,
		RemoveEmojis: opts.removeEmojis,
	})
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	if opts.stdout != nil {
		renderer.SetWriter(opts.stdout)
	}
	if err := renderResult(renderer, opts, result); err != nil {
		return err
	}

	if opts.web && result.URL != "" {
		open := opts.openBrowser
		if open == nil {
			open = cmdutil.OpenBrowser
		}
		if err := open(result.URL); err != nil {
			logger.Warn("could not open browser", "url", result.URL, "error", err)
		}
	}
	return nil
}

func renderResult(r *view.Renderer, opts *publishOptions, result *publish.Result) error {
	if opts.simulate {
		if r.Format() == view.FormatJSON {
			return r.RenderJSON(map[string]string{"title": result.Title, "storage": result.Storage})
		}
		r.RenderText(result.Storage)
		return nil
	}

	if r.Format() == view.FormatJSON {
		return r.RenderJSON(result)
	}

	switch {
	case opts.delete && !result.Deleted:
		r.Warning("Page not found, nothing deleted")
		return nil
	case result.Deleted:
		r.Success(fmt.Sprintf("Deleted page %q (%s)", result.Title, result.PageID))
		return nil
	}

	if r.Format() == view.FormatTable {
		verb := "Updated"
		if result.Created {
			verb = "Created"
		}
		r.Success(fmt.Sprintf("%s page %q", verb, result.Title))
	}
	r.RenderTable(
		[]string{"ID", "TITLE", "VERSION", "URL"},
		[][]string{{result.PageID, result.Title, strconv.Itoa(result.Version), result.URL}},
	)
	return nil
}

// splitPair splits a key=value flag value.
func splitPair(flag, s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid --%s %q: expected key=value", flag, s)
	}
	return key, strings.TrimSpace(value), nil
}

func parseProperties(values []string) ([]publish.Property, error) {
	var props []publish.Property
	for _, v := range values {
		key, value, err := splitPair("property", v)
		if err != nil {
			return nil, err
		}
		props = append(props, publish.Property{Key: key, Value: value})
	}
	return props, nil
}

func parseDetails(values []string) ([]md.Detail, error) {
	var details []md.Detail
	for _, v := range values {
		key, value, err := splitPair("detail", v)
		if err != nil {
			return nil, err
		}
		details = append(details, md.Detail{Key: key, Value: value})
	}
	return details, nil
}

func parsePageMappings(values []string) ([]md.PageMapping, error) {
	var mappings []md.PageMapping
	for _, v := range values {
		m, err := md.ParsePageMapping(v)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}
