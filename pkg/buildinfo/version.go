// Package buildinfo provides build-time version information.
//
// Release builds set the variables via ldflags:
//
//	go build -ldflags "-X github.com/sebastiansztangierski/ancestral-scribe/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/sebastiansztangierski/ancestral-scribe/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/sebastiansztangierski/ancestral-scribe/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with plain "go install" fall back to the module version
// and VCS stamp the toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

func init() {
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFrom(bi)
	}
}

// fillFrom copies embedded build information into variables still at their
// defaults. Values set via ldflags win.
func fillFrom(bi *debug.BuildInfo) {
	if v := bi.Main.Version; Version == "dev" && v != "" && v != "(devel)" {
		Version = v
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none":
			Commit = s.Value[:min(len(s.Value), 12)]
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// CacheScope returns the key prefix that separates cache entries written by
// different builds. Development builds include the commit.
func CacheScope() string {
	if Version == "dev" {
		return fmt.Sprintf("dev-%s:", Commit)
	}
	return Version + ":"
}
