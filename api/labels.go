package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// ListPageLabels returns the labels attached to a page.
func (c *Client) ListPageLabels(ctx context.Context, pageID string) ([]Label, error) {
	path := fmt.Sprintf("/api/v2/pages/%s/labels?limit=250", pageID)
	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var result PaginatedResponse[Label]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse labels response: %w", err)
	}

	return result.Results, nil
}

// AddLabels attaches global labels to a page.
// Note: This uses the v1 API as v2 has no label write endpoint.
func (c *Client) AddLabels(ctx context.Context, pageID string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	c.logger.Info("adding labels", "id", pageID, "labels", names)

	labels := make([]Label, 0, len(names))
	for _, name := range names {
		labels = append(labels, Label{Prefix: "global", Name: name})
	}

	path := fmt.Sprintf("/rest/api/content/%s/label", pageID)
	_, err := c.Post(ctx, path, labels)
	return err
}
