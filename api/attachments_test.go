package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListAttachments(t *testing.T) {
	testData := loadTestData(t, "attachments.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/pages/98765/attachments", r.URL.Path)
		assert.Equal(t, "GET", r.Method)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(testData)
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	result, err := client.ListAttachments(context.Background(), "98765", nil)

	require.NoError(t, err)
	assert.Len(t, result.Results, 2)

	att := result.Results[0]
	assert.Equal(t, "att111", att.ID)
	assert.Equal(t, "screenshot.png", att.Title)
	assert.Equal(t, "image/png", att.MediaType)
	assert.Equal(t, int64(245678), att.FileSize)
}

func TestClient_ListAttachments_WithOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "diagram.png", r.URL.Query().Get("filename"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	opts := &ListAttachmentsOptions{
		Limit:    50,
		Filename: "diagram.png",
	}
	_, err := client.ListAttachments(context.Background(), "98765", opts)
	require.NoError(t, err)
}

func TestClient_FindAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filename") == "screenshot.png" {
			_, _ = w.Write([]byte(`{"results": [{"id": "att111", "title": "screenshot.png"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")

	att, found, err := client.FindAttachment(context.Background(), "98765", "screenshot.png")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "att111", att.ID)

	_, found, err = client.FindAttachment(context.Background(), "98765", "other.png")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_UploadAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/content/98765/child/attachment", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "nocheck", r.Header.Get("X-Atlassian-Token"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()

		assert.Equal(t, "diagram.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "PNGDATA", string(data))
		assert.Equal(t, "Architecture", r.FormValue("comment"))

		_, _ = w.Write([]byte(`{"results": [{"id": "att200", "title": "diagram.png"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	att, err := client.UploadAttachment(context.Background(), "98765", "diagram.png", strings.NewReader("PNGDATA"), "Architecture")

	require.NoError(t, err)
	assert.Equal(t, "att200", att.ID)
	assert.Equal(t, "diagram.png", att.Title)
}

func TestClient_ReplaceAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/content/98765/child/attachment/att111/data", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		_, _ = w.Write([]byte(`{"id": "att111", "title": "screenshot.png"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	att, err := client.ReplaceAttachment(context.Background(), "98765", "att111", "screenshot.png", strings.NewReader("x"), "")

	require.NoError(t, err)
	assert.Equal(t, "att111", att.ID)
}

func TestClient_UploadAttachment_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte(`{"message": "File too large"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	_, err := client.UploadAttachment(context.Background(), "98765", "big.bin", strings.NewReader("x"), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "File too large")
}

func TestClient_UploadAttachment_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	_, err := client.UploadAttachment(context.Background(), "98765", "a.txt", strings.NewReader("x"), "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no attachment returned")
}
