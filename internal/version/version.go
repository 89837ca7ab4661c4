// Package version provides build-time version information for md2conf.
package version

// These variables are set at build time via ldflags, e.g.
// -X github.com/open-cli-collective/md2conf/internal/version.Version=v1.2.0
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
