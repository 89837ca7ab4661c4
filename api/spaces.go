package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListSpacesOptions contains options for listing spaces.
type ListSpacesOptions struct {
	Limit int
	Keys  []string // Filter by space keys
}

// ListSpaces returns a list of spaces.
func (c *Client) ListSpaces(ctx context.Context, opts *ListSpacesOptions) (*PaginatedResponse[Space], error) {
	params := url.Values{}
	params.Set("limit", "25")

	if opts != nil {
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		for _, key := range opts.Keys {
			params.Add("keys", key)
		}
	}

	path := "/api/v2/spaces?" + params.Encode()
	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var result PaginatedResponse[Space]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse spaces response: %w", err)
	}

	return &result, nil
}

// GetSpaceByKey returns a space by its key.
func (c *Client) GetSpaceByKey(ctx context.Context, key string) (*Space, error) {
	opts := &ListSpacesOptions{
		Keys:  []string{key},
		Limit: 1,
	}
	result, err := c.ListSpaces(ctx, opts)
	if err != nil {
		return nil, err
	}

	if len(result.Results) == 0 {
		return nil, &ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("Space with key '%s' not found", key),
		}
	}

	return &result.Results[0], nil
}

// SpaceID resolves a space key to its numeric ID. Results are cached for the
// lifetime of the client.
func (c *Client) SpaceID(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	id, ok := c.spaceIDs[key]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	space, err := c.GetSpaceByKey(ctx, key)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.spaceIDs[key] = space.ID
	c.mu.Unlock()

	return space.ID, nil
}
