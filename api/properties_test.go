package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListPageProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/pages/98765/properties", r.URL.Path)
		assert.Equal(t, "250", r.URL.Query().Get("limit"))

		_, _ = w.Write([]byte(`{"results": [
			{"id": "p1", "key": "editor", "value": "v2", "version": {"number": 3}},
			{"id": "p2", "key": "content-appearance-published", "value": "full-width", "version": {"number": 1}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	props, err := client.ListPageProperties(context.Background(), "98765")

	require.NoError(t, err)
	require.Len(t, props, 2)
	assert.Equal(t, "editor", props[0].Key)
	assert.Equal(t, "v2", props[0].Value)
	assert.Equal(t, 3, props[0].Version.Number)
}

func TestClient_CreatePageProperty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/pages/98765/properties", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"key": "editor", "value": "v1"}`, string(body))

		_, _ = w.Write([]byte(`{"id": "p1", "key": "editor", "value": "v1", "version": {"number": 1}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	prop, err := client.CreatePageProperty(context.Background(), "98765", "editor", "v1")

	require.NoError(t, err)
	assert.Equal(t, "p1", prop.ID)
	assert.Equal(t, 1, prop.Version.Number)
}

func TestClient_UpdatePageProperty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/pages/98765/properties/p1", r.URL.Path)
		assert.Equal(t, "PUT", r.Method)

		var req ContentProperty
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "editor", req.Key)
		assert.Equal(t, "v2", req.Value)
		require.NotNil(t, req.Version)
		assert.Equal(t, 4, req.Version.Number)

		_, _ = w.Write([]byte(`{"id": "p1", "key": "editor", "value": "v2", "version": {"number": 4}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "token")
	prop, err := client.UpdatePageProperty(context.Background(), "98765",
		ContentProperty{ID: "p1", Key: "editor", Value: "v2"}, 4)

	require.NoError(t, err)
	assert.Equal(t, 4, prop.Version.Number)
}
