package config

import "errors"

var (
	// ErrMissingCredentials is returned when neither a username and API key
	// nor a personal access token is configured.
	ErrMissingCredentials = errors.New("missing credentials: set a username and API key, or a personal access token")
	// ErrMissingOrg is returned when no organisation is configured.
	ErrMissingOrg = errors.New("missing organisation: set --orgname or CONFLUENCE_ORGNAME")
)
