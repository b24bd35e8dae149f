// Package version describes the running purestream build.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X .../pkg/version.Version=v0.4.0 ...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Build is a snapshot of the build variables plus the derived release channel.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Channel   string `json:"channel"`
	GoVersion string `json:"go_version"`
}

// Current returns the running build.
func Current() Build {
	return Build{
		Version:   Version,
		Commit:    ShortCommit(),
		Date:      BuildDate,
		Channel:   Channel(),
		GoVersion: runtime.Version(),
	}
}

// String renders e.g. "purestream v0.4.0 (1a2b3c4, stable) built 2025-01-02 with go1.25.3".
func (b Build) String() string {
	return fmt.Sprintf("purestream %s (%s, %s) built %s with %s",
		b.Version, b.Commit, b.Channel, b.Date, b.GoVersion)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// ShortCommit returns the first seven characters of Commit.
func ShortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
