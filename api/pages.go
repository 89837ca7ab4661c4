package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ListPagesOptions contains options for listing pages.
type ListPagesOptions struct {
	Limit      int
	Status     string // current, archived, draft
	Title      string // exact title match
	BodyFormat string // storage, view
}

// GetPageOptions contains options for getting a page.
type GetPageOptions struct {
	BodyFormat string // storage, view
}

// ListPages returns a list of pages in a space.
func (c *Client) ListPages(ctx context.Context, spaceID string, opts *ListPagesOptions) (*PaginatedResponse[Page], error) {
	params := url.Values{}
	params.Set("limit", "25")

	if opts != nil {
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Status != "" {
			params.Set("status", opts.Status)
		}
		if opts.Title != "" {
			params.Set("title", opts.Title)
		}
		if opts.BodyFormat != "" {
			params.Set("body-format", opts.BodyFormat)
		}
	}

	path := fmt.Sprintf("/api/v2/spaces/%s/pages?%s", spaceID, params.Encode())
	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var result PaginatedResponse[Page]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse pages response: %w", err)
	}

	return &result, nil
}

// FindPage looks up a page by exact title within a space. The boolean result
// is false when no such page exists.
func (c *Client) FindPage(ctx context.Context, spaceID, title string) (PageRef, bool, error) {
	c.logger.Info("retrieving page information", "title", title)

	result, err := c.ListPages(ctx, spaceID, &ListPagesOptions{
		Title:  title,
		Status: "current",
		Limit:  1,
	})
	if err != nil {
		if IsNotFound(err) {
			return PageRef{}, false, nil
		}
		return PageRef{}, false, err
	}

	if len(result.Results) == 0 {
		return PageRef{}, false, nil
	}

	return c.ref(&result.Results[0]), true, nil
}

// ref builds a PageRef with an absolute web link.
func (c *Client) ref(page *Page) PageRef {
	ref := PageRef{
		ID:      page.ID,
		Title:   page.Title,
		SpaceID: page.SpaceID,
	}
	if page.Version != nil {
		ref.Version = page.Version.Number
	}
	if page.Links.WebUI != "" {
		ref.Link = c.baseURL + page.Links.WebUI
	}
	return ref
}

// GetPage returns a single page by ID.
func (c *Client) GetPage(ctx context.Context, pageID string, opts *GetPageOptions) (*Page, error) {
	params := url.Values{}
	if opts != nil && opts.BodyFormat != "" {
		params.Set("body-format", opts.BodyFormat)
	}

	path := fmt.Sprintf("/api/v2/pages/%s", pageID)
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse page response: %w", err)
	}

	return &page, nil
}

// CreatePage creates a new page.
func (c *Client) CreatePage(ctx context.Context, req *CreatePageRequest) (PageRef, error) {
	c.logger.Info("creating page", "title", req.Title)

	body, err := c.Post(ctx, "/api/v2/pages", req)
	if err != nil {
		return PageRef{}, err
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return PageRef{}, fmt.Errorf("failed to parse create page response: %w", err)
	}

	ref := c.ref(&page)
	c.logger.Info("page created", "space_id", ref.SpaceID, "id", ref.ID, "url", ref.Link)
	return ref, nil
}

// UpdatePage updates an existing page. The caller supplies the version number
// the page will have after the update.
func (c *Client) UpdatePage(ctx context.Context, pageID string, req *UpdatePageRequest) (PageRef, error) {
	c.logger.Info("updating page", "id", pageID, "version", versionNumber(req.Version))

	path := fmt.Sprintf("/api/v2/pages/%s", pageID)
	body, err := c.Put(ctx, path, req)
	if err != nil {
		return PageRef{}, err
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return PageRef{}, fmt.Errorf("failed to parse update page response: %w", err)
	}

	ref := c.ref(&page)
	c.logger.Info("page updated", "id", ref.ID, "url", ref.Link)
	return ref, nil
}

// DeletePage deletes a page.
func (c *Client) DeletePage(ctx context.Context, pageID string) error {
	c.logger.Info("deleting page", "id", pageID)

	path := fmt.Sprintf("/api/v2/pages/%s", pageID)
	_, err := c.Delete(ctx, path)
	return err
}

func versionNumber(v *Version) int {
	if v == nil {
		return 0
	}
	return v.Number
}
