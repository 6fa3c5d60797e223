// Package version carries build-time version information.
package version

// Overridden at build time via -ldflags.
var (
	// Version is the semantic version.
	Version = "0.1.0"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"

	// GitCommit is the short commit hash the binary was built from.
	GitCommit = "unknown"
)
