// Package api provides the Confluence Cloud REST API client used to publish
// converted pages.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PaginatedResponse wraps paginated API responses.
type PaginatedResponse[T any] struct {
	Results []T   `json:"results"`
	Links   Links `json:"_links,omitempty"`
}

// Links contains pagination and navigation links.
type Links struct {
	Next   string `json:"next,omitempty"`
	Base   string `json:"base,omitempty"`
	WebUI  string `json:"webui,omitempty"`
	EditUI string `json:"editui,omitempty"`
}

// HasMore returns true if there are more results available.
func (p *PaginatedResponse[T]) HasMore() bool {
	return p.Links.Next != ""
}

// Space represents a Confluence space.
type Space struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Links  Links  `json:"_links,omitempty"`
}

// Page represents a Confluence page.
type Page struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Title     string   `json:"title"`
	SpaceID   string   `json:"spaceId"`
	ParentID  string   `json:"parentId,omitempty"`
	AuthorID  string   `json:"authorId,omitempty"`
	CreatedAt Time     `json:"createdAt,omitempty"`
	Version   *Version `json:"version,omitempty"`
	Body      *Body    `json:"body,omitempty"`
	Links     Links    `json:"_links,omitempty"`
}

// PageRef identifies a published page.
type PageRef struct {
	ID      string
	Title   string
	Version int
	SpaceID string
	Link    string
}

// Version contains page version information.
type Version struct {
	Number    int    `json:"number"`
	Message   string `json:"message,omitempty"`
	MinorEdit bool   `json:"minorEdit,omitempty"`
	CreatedAt Time   `json:"createdAt,omitempty"`
}

// Body contains page content in various representations.
type Body struct {
	Storage *BodyRepresentation `json:"storage,omitempty"`
	View    *BodyRepresentation `json:"view,omitempty"`
}

// BodyRepresentation holds content in a specific format.
type BodyRepresentation struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// StorageBody wraps storage-format markup for create and update requests.
func StorageBody(value string) *Body {
	return &Body{
		Storage: &BodyRepresentation{
			Representation: "storage",
			Value:          value,
		},
	}
}

// Attachment represents a file attachment.
type Attachment struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Title     string   `json:"title"`
	MediaType string   `json:"mediaType"`
	Comment   string   `json:"comment,omitempty"`
	FileSize  int64    `json:"fileSize"`
	Version   *Version `json:"version,omitempty"`
	Links     Links    `json:"_links,omitempty"`
}

// ContentProperty is a keyed, versioned metadata value attached to a page.
type ContentProperty struct {
	ID      string   `json:"id,omitempty"`
	Key     string   `json:"key"`
	Value   any      `json:"value"`
	Version *Version `json:"version,omitempty"`
}

// Label is a page label.
type Label struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Prefix string `json:"prefix,omitempty"`
}

// Time is a wrapper around time.Time for custom JSON parsing.
type Time struct {
	time.Time
}

// UnmarshalJSON parses Confluence's ISO 8601 date format.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)

	if s == "null" || s == `""` || s == "" {
		return nil
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse("2006-01-02T15:04:05.000Z", s)
		if err != nil {
			return err
		}
	}

	t.Time = parsed
	return nil
}

// MarshalJSON formats time in ISO 8601 format.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// CreatePageRequest is the request body for creating a page.
type CreatePageRequest struct {
	SpaceID  string `json:"spaceId"`
	Status   string `json:"status,omitempty"`
	Title    string `json:"title"`
	ParentID string `json:"parentId,omitempty"`
	Body     *Body  `json:"body"`
}

// UpdatePageRequest is the request body for updating a page.
type UpdatePageRequest struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Title    string   `json:"title"`
	SpaceID  string   `json:"spaceId,omitempty"`
	ParentID string   `json:"parentId,omitempty"`
	Body     *Body    `json:"body"`
	Version  *Version `json:"version"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
}

func (e *ErrorResponse) Error() string {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return e.Message
}

// newErrorResponse builds an ErrorResponse from a failed response body. Bodies
// that are not JSON are kept verbatim in the message.
func newErrorResponse(status int, body []byte) *ErrorResponse {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || (errResp.Message == "" && len(errResp.Errors) == 0) {
		errResp = ErrorResponse{
			Message: fmt.Sprintf("API error (status %d): %s", status, string(body)),
		}
	}
	errResp.StatusCode = status
	return &errResp
}

// IsNotFound reports whether err is a 404 API error.
func IsNotFound(err error) bool {
	var apiErr *ErrorResponse
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
