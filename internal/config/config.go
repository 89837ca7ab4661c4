// Package config provides configuration management for md2conf.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the md2conf configuration.
type Config struct {
	// Org is either a Confluence Cloud organisation name, a host name, or a
	// full base URL.
	Org          string `yaml:"org"`
	Username     string `yaml:"username"`
	APIKey       string `yaml:"api_key,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"`
	DefaultSpace string `yaml:"default_space,omitempty"`
	NoSSL        bool   `yaml:"no_ssl,omitempty"`
}

// Environment variables read by LoadFromEnv. Each setting lists its primary
// variable first.
var (
	EnvOrg         = []string{"CONFLUENCE_ORGNAME", "ATLASSIAN_URL"}
	EnvUsername    = []string{"CONFLUENCE_USERNAME", "ATLASSIAN_EMAIL"}
	EnvAPIKey      = []string{"CONFLUENCE_API_KEY", "ATLASSIAN_API_TOKEN"}
	EnvAccessToken = []string{"CONFLUENCE_PERSONAL_ACCESS_TOKEN"}
	EnvSpace       = []string{"CONFLUENCE_DEFAULT_SPACE"}
)

// EnvVars returns every environment variable md2conf reads.
func EnvVars() []string {
	var all []string
	for _, group := range [][]string{EnvOrg, EnvUsername, EnvAPIKey, EnvAccessToken, EnvSpace} {
		all = append(all, group...)
	}
	return all
}

// Validate checks that an organisation and a usable set of credentials are
// present.
func (c *Config) Validate() error {
	if c.AccessToken == "" && (c.Username == "" || c.APIKey == "") {
		return ErrMissingCredentials
	}
	if c.Org == "" {
		return ErrMissingOrg
	}
	return nil
}

// BaseURL derives the Confluence base URL from the organisation. A bare name
// maps to its Atlassian Cloud site, a host name is used as is, and a value
// that already carries a scheme is kept verbatim. NoSSL downgrades the scheme
// to http.
func (c *Config) BaseURL() string {
	org := strings.TrimSuffix(strings.TrimSpace(c.Org), "/")
	if org == "" {
		return ""
	}

	var url string
	switch {
	case strings.Contains(org, "://"):
		url = org
	case strings.Contains(org, "."):
		url = "https://" + org
	default:
		url = "https://" + org + ".atlassian.net/wiki"
	}

	if c.NoSSL {
		url = strings.Replace(url, "https://", "http://", 1)
	}
	return url
}

// SpaceKey returns the space to publish to: the explicit key when given,
// then the configured default, then the user's personal space.
func (c *Config) SpaceKey(explicit string) string {
	switch {
	case explicit != "":
		return explicit
	case c.DefaultSpace != "":
		return c.DefaultSpace
	case c.Username != "":
		return "~" + c.Username
	}
	return ""
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
// Precedence: CONFLUENCE_* → ATLASSIAN_* → existing config value
func (c *Config) LoadFromEnv() {
	setFromEnv(&c.Org, EnvOrg)
	setFromEnv(&c.Username, EnvUsername)
	setFromEnv(&c.APIKey, EnvAPIKey)
	setFromEnv(&c.AccessToken, EnvAccessToken)
	setFromEnv(&c.DefaultSpace, EnvSpace)
}

func setFromEnv(dst *string, names []string) {
	if v := LookupEnv(names...); v != "" {
		*dst = v
	}
}

// LookupEnv returns the first non-empty value among the named variables.
func LookupEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Overrides holds values given on the command line. Empty fields leave the
// loaded configuration untouched.
type Overrides struct {
	Org         string
	Username    string
	APIKey      string
	AccessToken string
	NoSSL       bool
}

// Apply copies the non-empty overrides into c.
func (o Overrides) Apply(c *Config) {
	for _, f := range []struct {
		dst *string
		v   string
	}{
		{&c.Org, o.Org},
		{&c.Username, o.Username},
		{&c.APIKey, o.APIKey},
		{&c.AccessToken, o.AccessToken},
	} {
		if f.v != "" {
			*f.dst = f.v
		}
	}
	if o.NoSSL {
		c.NoSSL = true
	}
}

// Resolve builds the effective configuration: the file at path, then the
// environment, then the command line overrides. The result is validated.
func Resolve(path string, overrides Overrides) (*Config, error) {
	cfg, err := LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	overrides.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "md2conf", "config.yml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".md2conf", "config.yml")
	}

	return filepath.Join(home, ".config", "md2conf", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with restricted permissions (user read/write only)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment
// variables. A missing file is not an error; a malformed one is.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	cfg.LoadFromEnv()
	return cfg, nil
}
