package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// ListPageProperties returns the content properties of a page.
func (c *Client) ListPageProperties(ctx context.Context, pageID string) ([]ContentProperty, error) {
	path := fmt.Sprintf("/api/v2/pages/%s/properties?limit=250", pageID)
	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var result PaginatedResponse[ContentProperty]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse properties response: %w", err)
	}

	return result.Results, nil
}

// CreatePageProperty adds a new content property to a page.
func (c *Client) CreatePageProperty(ctx context.Context, pageID, key string, value any) (*ContentProperty, error) {
	c.logger.Info("creating page property", "id", pageID, "key", key)

	path := fmt.Sprintf("/api/v2/pages/%s/properties", pageID)
	body, err := c.Post(ctx, path, &ContentProperty{Key: key, Value: value})
	if err != nil {
		return nil, err
	}

	var prop ContentProperty
	if err := json.Unmarshal(body, &prop); err != nil {
		return nil, fmt.Errorf("failed to parse property response: %w", err)
	}
	return &prop, nil
}

// UpdatePageProperty replaces the value of an existing content property.
// version is the number the property will have after the update.
func (c *Client) UpdatePageProperty(ctx context.Context, pageID string, prop ContentProperty, version int) (*ContentProperty, error) {
	c.logger.Info("updating page property", "id", pageID, "key", prop.Key, "version", version)

	path := fmt.Sprintf("/api/v2/pages/%s/properties/%s", pageID, prop.ID)
	req := &ContentProperty{
		Key:     prop.Key,
		Value:   prop.Value,
		Version: &Version{Number: version},
	}
	body, err := c.Put(ctx, path, req)
	if err != nil {
		return nil, err
	}

	var updated ContentProperty
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("failed to parse property response: %w", err)
	}
	return &updated, nil
}
