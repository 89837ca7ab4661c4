package cmdutil

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/md2conf/api"
	"github.com/open-cli-collective/md2conf/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"Warning", slog.LevelWarn, false},
		{"warn", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "file", "README.md")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "file=README.md")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "loud")
	assert.Error(t, err)
}

func TestNewClient_Auth(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want func(t *testing.T, r *http.Request)
	}{
		{
			name: "basic auth",
			cfg:  config.Config{Username: "ada@example.com", APIKey: "key"},
			want: func(t *testing.T, r *http.Request) {
				user, pass, ok := r.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "ada@example.com", user)
				assert.Equal(t, "key", pass)
			},
		},
		{
			name: "access token wins",
			cfg:  config.Config{Username: "ada@example.com", APIKey: "key", AccessToken: "pat"},
			want: func(t *testing.T, r *http.Request) {
				assert.Equal(t, "Bearer pat", r.Header.Get("Authorization"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.want(t, r)
				_, _ = w.Write([]byte(`{"results":[]}`))
			}))
			defer server.Close()

			cfg := tt.cfg
			cfg.Org = server.URL
			client := NewClient(&cfg, nil)

			assert.Equal(t, server.URL, client.BaseURL())
			require.NoError(t, VerifyConnection(context.Background(), client))
		})
	}
}

func TestVerifyConnection_Status(t *testing.T) {
	tests := []struct {
		status  int
		wantErr string
	}{
		{http.StatusUnauthorized, "authentication failed"},
		{http.StatusForbidden, "access denied"},
		{http.StatusBadRequest, "unexpected status code: 400"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v2/spaces", r.URL.Path)
				assert.Equal(t, "1", r.URL.Query().Get("limit"))
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := api.NewClient(server.URL, "ada@example.com", "key", api.WithRetryPolicy(api.NoRetry()))
			err := VerifyConnection(context.Background(), client)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	for _, name := range config.EnvVars() {
		t.Setenv(name, "")
	}
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, (&config.Config{Org: "acme", Username: "ada", APIKey: "key"}).Save(path))

	cfg, err := LoadConfig(path, config.Overrides{Org: "other"})
	require.NoError(t, err)
	assert.Equal(t, "https://other.atlassian.net/wiki", cfg.BaseURL())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yml"), config.Overrides{})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "md2conf init")
}
