// Package publish converts a markdown document and publishes it as a
// Confluence page.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/open-cli-collective/md2conf/api"
	"github.com/open-cli-collective/md2conf/pkg/md"
)

// Client is the subset of the Confluence API the publisher uses.
type Client interface {
	BaseURL() string
	SpaceID(ctx context.Context, key string) (string, error)
	FindPage(ctx context.Context, spaceID, title string) (api.PageRef, bool, error)
	CreatePage(ctx context.Context, req *api.CreatePageRequest) (api.PageRef, error)
	UpdatePage(ctx context.Context, pageID string, req *api.UpdatePageRequest) (api.PageRef, error)
	DeletePage(ctx context.Context, pageID string) error
	FindAttachment(ctx context.Context, pageID, filename string) (api.Attachment, bool, error)
	UploadAttachment(ctx context.Context, pageID, filename string, content io.Reader, comment string) (*api.Attachment, error)
	ReplaceAttachment(ctx context.Context, pageID, attachmentID, filename string, content io.Reader, comment string) (*api.Attachment, error)
	ListPageProperties(ctx context.Context, pageID string) ([]api.ContentProperty, error)
	CreatePageProperty(ctx context.Context, pageID, key string, value any) (*api.ContentProperty, error)
	UpdatePageProperty(ctx context.Context, pageID string, prop api.ContentProperty, version int) (*api.ContentProperty, error)
	ListPageLabels(ctx context.Context, pageID string) ([]api.Label, error)
	AddLabels(ctx context.Context, pageID string, names []string) error
}

// Property is a content property to set on the page.
type Property struct {
	Key   string
	Value string
}

// Options describes one publish run.
type Options struct {
	File     string
	SpaceKey string
	// Title overrides the front matter title and the document's first line.
	Title    string
	Ancestor string
	// Attachments are paths relative to the markdown file.
	Attachments []string
	Contents    bool
	Delete      bool
	Simulate    bool
	// Source selects the anchor dialect. Local anchors are left alone when
	// it is not a known dialect.
	Source       md.Source
	Version      int
	Labels       []string
	Properties   []Property
	Details      []md.Detail
	HideDetails  bool
	PageMappings []md.PageMapping
	RemoveEmojis bool
}

// Result reports the outcome of a run.
type Result struct {
	PageID  string `json:"id,omitempty"`
	Title   string `json:"title"`
	Version int    `json:"version,omitempty"`
	URL     string `json:"url,omitempty"`
	Created bool   `json:"created"`
	Deleted bool   `json:"deleted"`
	// Storage is the converted page body. In simulate mode it is the output
	// of the conversion passes only.
	Storage string `json:"-"`
}

// Publisher runs the conversion and talks to Confluence.
type Publisher struct {
	client Client
	logger *slog.Logger
}

// New creates a Publisher. A nil logger discards log output.
func New(client Client, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{client: client, logger: logger}
}

// document is a markdown file prepared for publishing.
type document struct {
	dir        string
	title      string
	storage    string
	labels     []string
	properties []Property
}

// Run converts opts.File and creates, updates or deletes its page.
func (p *Publisher) Run(ctx context.Context, opts Options) (*Result, error) {
	doc, err := p.prepare(opts)
	if err != nil {
		return nil, err
	}

	if opts.Simulate {
		p.logger.Info("simulate mode is active, stopping before publishing")
		return &Result{Title: doc.title, Storage: doc.storage}, nil
	}

	spaceID, err := p.client.SpaceID(ctx, opts.SpaceKey)
	if err != nil {
		return nil, fmt.Errorf("resolve space %s: %w", opts.SpaceKey, err)
	}

	p.logger.Info("checking if page exists", "title", doc.title)
	page, found, err := p.client.FindPage(ctx, spaceID, doc.title)
	if err != nil {
		return nil, fmt.Errorf("look up page %q: %w", doc.title, err)
	}

	if opts.Delete {
		return p.delete(ctx, page, found)
	}

	parentID, err := p.parentID(ctx, spaceID, opts.Ancestor)
	if err != nil {
		return nil, err
	}

	created := false
	if !found {
		page, err = p.client.CreatePage(ctx, &api.CreatePageRequest{
			SpaceID:  spaceID,
			Status:   "current",
			Title:    doc.title,
			ParentID: parentID,
			Body:     api.StorageBody(doc.storage),
		})
		if err != nil {
			return nil, fmt.Errorf("create page %q: %w", doc.title, err)
		}
		created = true
	}

	if err := p.uploadAttachments(ctx, page.ID, doc.dir, opts.Attachments); err != nil {
		return nil, err
	}

	storage, err := p.finalize(ctx, doc, page, spaceID, opts)
	if err != nil {
		return nil, err
	}

	updated, err := p.client.UpdatePage(ctx, page.ID, &api.UpdatePageRequest{
		ID:       page.ID,
		Status:   "current",
		Title:    doc.title,
		ParentID: parentID,
		Body:     api.StorageBody(storage),
		Version:  &api.Version{Number: page.Version + 1, MinorEdit: true},
	})
	if err != nil {
		return nil, fmt.Errorf("update page %q: %w", doc.title, err)
	}

	properties := append([]Property{{Key: "editor", Value: "v" + strconv.Itoa(opts.Version)}}, doc.properties...)
	if err := p.syncProperties(ctx, page.ID, properties); err != nil {
		return nil, err
	}
	if err := p.syncLabels(ctx, page.ID, doc.labels); err != nil {
		return nil, err
	}

	link := updated.Link
	if link == "" {
		link = page.Link
	}
	p.logger.Info("markdown converter completed successfully", "url", link)

	return &Result{
		PageID:  page.ID,
		Title:   doc.title,
		Version: updated.Version,
		URL:     link,
		Created: created,
		Storage: storage,
	}, nil
}

// prepare reads and converts the markdown file. It makes no network calls.
func (p *Publisher) prepare(opts Options) (*document, error) {
	source, err := os.ReadFile(opts.File)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, opts.File)
		}
		return nil, fmt.Errorf("read markdown file: %w", err)
	}
	p.logger.Info("converting markdown", "file", opts.File, "space", opts.SpaceKey)

	meta, body, err := md.SplitFrontMatter(source)
	if err != nil {
		return nil, err
	}

	title, stripTitle := opts.Title, false
	switch {
	case title != "":
	case meta.Title != "":
		title = meta.Title
	default:
		title, stripTitle = md.FirstLineTitle(body), true
	}
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingTitle, opts.File)
	}
	p.logger.Info("resolved page title", "title", title)

	storage, err := md.ToConfluenceStorage(body, md.Options{
		StripTitle:   stripTitle,
		Details:      opts.Details,
		HideDetails:  opts.HideDetails,
		RemoveEmojis: opts.RemoveEmojis,
		AddContents:  opts.Contents,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("converted storage", "html", storage)

	return &document{
		dir:        filepath.Dir(opts.File),
		title:      title,
		storage:    storage,
		labels:     mergeLabels(opts.Labels, meta.Labels),
		properties: mergeProperties(opts.Properties, meta),
	}, nil
}

func (p *Publisher) delete(ctx context.Context, page api.PageRef, found bool) (*Result, error) {
	if !found {
		p.logger.Warn("page does not exist, nothing to delete")
		return &Result{}, nil
	}
	if err := p.client.DeletePage(ctx, page.ID); err != nil {
		return nil, fmt.Errorf("delete page %s: %w", page.ID, err)
	}
	p.logger.Info("page deleted", "id", page.ID)
	return &Result{PageID: page.ID, Title: page.Title, Deleted: true}, nil
}

func (p *Publisher) parentID(ctx context.Context, spaceID, ancestor string) (string, error) {
	if ancestor == "" {
		return "", nil
	}
	parent, found, err := p.client.FindPage(ctx, spaceID, ancestor)
	if err != nil {
		return "", fmt.Errorf("look up parent page %q: %w", ancestor, err)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrParentNotFound, ancestor)
	}
	return parent.ID, nil
}

// finalize runs the passes that need the published page: images, local
// anchors and links to other documents.
func (p *Publisher) finalize(ctx context.Context, doc *document, page api.PageRef, spaceID string, opts Options) (string, error) {
	storage, err := md.RewriteImages(doc.storage, p.imageUploader(ctx, page.ID, doc.dir))
	if err != nil {
		return "", err
	}

	if md.KnownSource(opts.Source) {
		storage, err = md.ResolveLocalAnchors(storage, md.AnchorOptions{
			Source:  opts.Source,
			Version: opts.Version,
			PageURL: md.PageURL(p.client.BaseURL(), opts.SpaceKey, page.ID, doc.title),
		})
		if err != nil {
			return "", err
		}
	} else {
		p.logger.Warn("unknown markdown source, local references are not resolved", "source", opts.Source)
	}

	if len(opts.PageMappings) == 0 {
		p.logger.Warn("no page mappings configured, links to other documents are not resolved")
		return storage, nil
	}
	return md.ResolvePageLinks(ctx, storage, opts.PageMappings, p.linkResolver(spaceID))
}

func (p *Publisher) imageUploader(ctx context.Context, pageID, dir string) md.ImageUploader {
	return func(src, alt string) (string, error) {
		rel := src
		if unescaped, err := url.PathUnescape(src); err == nil {
			rel = unescaped
		}
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, rel)
		}

		if _, err := os.Stat(path); err != nil {
			p.logger.Warn("image not found, reference left unchanged", "src", src)
			return "", nil
		}
		if err := p.attach(ctx, pageID, path, alt); err != nil {
			return "", err
		}
		return downloadPath(p.client.BaseURL(), pageID, filepath.Base(path)), nil
	}
}

// downloadPath is the site-relative URL of a page attachment.
func downloadPath(baseURL, pageID, filename string) string {
	prefix := ""
	if strings.HasSuffix(strings.TrimSuffix(baseURL, "/"), "/wiki") {
		prefix = "/wiki"
	}
	return fmt.Sprintf("%s/download/attachments/%s/%s", prefix, pageID, url.PathEscape(filename))
}

func (p *Publisher) uploadAttachments(ctx context.Context, pageID, dir string, paths []string) error {
	for _, rel := range paths {
		if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") {
			p.logger.Info("skipping remote attachment", "path", rel)
			continue
		}

		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, rel)
		}
		if _, err := os.Stat(path); err != nil {
			p.logger.Warn("attachment not found, skipping", "path", path)
			continue
		}

		if err := p.attach(ctx, pageID, path, ""); err != nil {
			return err
		}
	}
	return nil
}

// attach uploads the file at path, replacing an attachment of the same name.
func (p *Publisher) attach(ctx context.Context, pageID, path, comment string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	name := filepath.Base(path)
	existing, found, err := p.client.FindAttachment(ctx, pageID, name)
	if err != nil {
		return fmt.Errorf("look up attachment %s: %w", name, err)
	}

	if found {
		_, err = p.client.ReplaceAttachment(ctx, pageID, existing.ID, name, f, comment)
	} else {
		_, err = p.client.UploadAttachment(ctx, pageID, name, f, comment)
	}
	if err != nil {
		return fmt.Errorf("upload attachment %s: %w", name, err)
	}

	p.logger.Info("attachment uploaded", "file", name, "replaced", found)
	return nil
}

func (p *Publisher) linkResolver(spaceID string) md.PageResolver {
	return func(ctx context.Context, path string) (string, bool, error) {
		source, err := os.ReadFile(path)
		if err != nil {
			p.logger.Error("linked markdown file not found, link left unchanged", "path", path)
			return "", false, nil
		}

		title, err := md.DocumentTitle(source)
		if err != nil {
			return "", false, err
		}

		ref, found, err := p.client.FindPage(ctx, spaceID, title)
		if err != nil {
			return "", false, err
		}
		if !found {
			return "", false, fmt.Errorf("%w: %q (%s)", ErrLinkedPageNotFound, title, path)
		}
		return ref.Link, true, nil
	}
}

// syncProperties creates missing properties and updates those whose value
// differs.
func (p *Publisher) syncProperties(ctx context.Context, pageID string, props []Property) error {
	existing, err := p.client.ListPageProperties(ctx, pageID)
	if err != nil {
		return fmt.Errorf("list page properties: %w", err)
	}

	byKey := make(map[string]api.ContentProperty, len(existing))
	for _, prop := range existing {
		byKey[prop.Key] = prop
	}

	for _, want := range props {
		have, ok := byKey[want.Key]
		if !ok {
			if _, err := p.client.CreatePageProperty(ctx, pageID, want.Key, want.Value); err != nil {
				return fmt.Errorf("create property %s: %w", want.Key, err)
			}
			p.logger.Info("property created", "key", want.Key)
			continue
		}

		if fmt.Sprint(have.Value) == want.Value {
			continue
		}

		version := 1
		if have.Version != nil {
			version = have.Version.Number + 1
		}
		have.Value = want.Value
		if _, err := p.client.UpdatePageProperty(ctx, pageID, have, version); err != nil {
			return fmt.Errorf("update property %s: %w", want.Key, err)
		}
		p.logger.Info("property updated", "key", want.Key, "version", version)
	}
	return nil
}

func (p *Publisher) syncLabels(ctx context.Context, pageID string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	existing, err := p.client.ListPageLabels(ctx, pageID)
	if err != nil {
		return fmt.Errorf("list page labels: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, l := range existing {
		have[l.Name] = true
	}

	var missing []string
	for _, l := range labels {
		if !have[l] {
			missing = append(missing, l)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if err := p.client.AddLabels(ctx, pageID, missing); err != nil {
		return fmt.Errorf("add labels: %w", err)
	}
	p.logger.Info("labels added", "labels", strings.Join(missing, ","))
	return nil
}

// mergeLabels returns the flag labels followed by front matter labels not
// already present.
func mergeLabels(flags, meta []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range [][]string{flags, meta} {
		for _, l := range group {
			l = strings.TrimSpace(l)
			if l == "" || seen[l] {
				continue
			}
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}

// mergeProperties returns the flag properties followed by front matter
// properties whose key was not given on the command line.
func mergeProperties(flags []Property, meta md.FrontMatter) []Property {
	out := append([]Property(nil), flags...)
	seen := make(map[string]bool, len(flags))
	for _, prop := range flags {
		seen[prop.Key] = true
	}
	for _, key := range meta.PropertyKeys() {
		if !seen[key] {
			out = append(out, Property{Key: key, Value: meta.Properties[key]})
		}
	}
	return out
}
