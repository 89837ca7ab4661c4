// Package cmdutil holds helpers shared by the md2conf commands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"strings"

	"github.com/open-cli-collective/md2conf/api"
	"github.com/open-cli-collective/md2conf/internal/config"
)

// ParseLogLevel maps a --loglevel value to a slog level. Matching is case
// insensitive; "warning" is accepted as an alias of "warn".
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// NewClient builds an API client for cfg. A personal access token takes
// precedence over username and API key.
func NewClient(cfg *config.Config, logger *slog.Logger, opts ...api.Option) *api.Client {
	if logger != nil {
		opts = append(opts, api.WithLogger(logger))
	}
	if cfg.AccessToken != "" {
		opts = append(opts, api.WithBearerToken(cfg.AccessToken))
	}
	return api.NewClient(cfg.BaseURL(), cfg.Username, cfg.APIKey, opts...)
}

// LoadConfig resolves the configuration from the file at path (or the
// default location when empty) and the environment.
func LoadConfig(path string, overrides config.Overrides) (*config.Config, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Resolve(path, overrides)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'md2conf init' to configure)", err)
	}
	return cfg, nil
}

// VerifyConnection lists a single space to check that the credentials are
// accepted.
func VerifyConnection(ctx context.Context, client *api.Client) error {
	_, err := client.ListSpaces(ctx, &api.ListSpacesOptions{Limit: 1})
	if err == nil {
		return nil
	}

	var apiErr *api.ErrorResponse
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("authentication failed - check your username and API key")
		case http.StatusForbidden:
			return fmt.Errorf("access denied - check your permissions")
		}
		return fmt.Errorf("unexpected status code: %d", apiErr.StatusCode)
	}
	return err
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
