package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
)

// ListAttachmentsOptions contains options for listing attachments.
type ListAttachmentsOptions struct {
	Limit    int
	Filename string
}

// ListAttachments returns attachments for a page.
func (c *Client) ListAttachments(ctx context.Context, pageID string, opts *ListAttachmentsOptions) (*PaginatedResponse[Attachment], error) {
	params := url.Values{}
	params.Set("limit", "25")

	if opts != nil {
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Filename != "" {
			params.Set("filename", opts.Filename)
		}
	}

	path := fmt.Sprintf("/api/v2/pages/%s/attachments?%s", pageID, params.Encode())
	body, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	var result PaginatedResponse[Attachment]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse attachments response: %w", err)
	}

	return &result, nil
}

// FindAttachment looks up a page attachment by filename. The boolean result is
// false when the page has no attachment with that name.
func (c *Client) FindAttachment(ctx context.Context, pageID, filename string) (Attachment, bool, error) {
	result, err := c.ListAttachments(ctx, pageID, &ListAttachmentsOptions{Filename: filename, Limit: 1})
	if err != nil {
		return Attachment{}, false, err
	}
	if len(result.Results) == 0 {
		return Attachment{}, false, nil
	}
	return result.Results[0], true, nil
}

// UploadAttachment uploads a file as a new attachment to a page.
// Note: This uses the v1 API as v2 doesn't support uploads yet.
func (c *Client) UploadAttachment(ctx context.Context, pageID, filename string, content io.Reader, comment string) (*Attachment, error) {
	path := fmt.Sprintf("/rest/api/content/%s/child/attachment", pageID)
	return c.upload(ctx, path, filename, content, comment)
}

// ReplaceAttachment uploads new data for an existing attachment.
func (c *Client) ReplaceAttachment(ctx context.Context, pageID, attachmentID, filename string, content io.Reader, comment string) (*Attachment, error) {
	path := fmt.Sprintf("/rest/api/content/%s/child/attachment/%s/data", pageID, attachmentID)
	return c.upload(ctx, path, filename, content, comment)
}

func (c *Client) upload(ctx context.Context, path, filename string, content io.Reader, comment string) (*Attachment, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}

	if comment != "" {
		if err := writer.WriteField("comment", comment); err != nil {
			return nil, fmt.Errorf("failed to write comment field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}

	c.authorize(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "nocheck") // Required for XSRF protection

	c.logger.Info("uploading attachment", "filename", filename)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, newErrorResponse(resp.StatusCode, respBody)
	}

	// Creating returns a result list, replacing data returns the attachment itself.
	var result struct {
		Results []Attachment `json:"results"`
		Attachment
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}

	if len(result.Results) > 0 {
		return &result.Results[0], nil
	}
	if result.ID != "" {
		return &result.Attachment, nil
	}

	return nil, fmt.Errorf("no attachment returned from upload")
}
