package version

import "fmt"

var (
	// Version is the current version of CloudSweep
	Version = "0.3.0"

	// GitCommit is the git commit hash, injected at build time
	GitCommit string

	// BuildTime is the build timestamp, injected at build time
	BuildTime string

	// GoVersion is the Go runtime version, injected at build time
	GoVersion string
)

// String returns the full version string
func String() string {
	if GitCommit == "" || BuildTime == "" {
		return Version
	}
	commit := GitCommit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	s := fmt.Sprintf("%s (commit: %s, built: %s", Version, commit, BuildTime)
	if GoVersion != "" {
		s += ", " + GoVersion
	}
	return s + ")"
}

// ShortString returns just the version number
func ShortString() string {
	return Version
}
