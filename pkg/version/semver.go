package version

import (
	"sync"

	"github.com/Masterminds/semver/v3"
)

var (
	parseOnce     sync.Once
	parsedVersion *semver.Version
)

// resetParsedVersion clears the cached parsed version for testing.
func resetParsedVersion() {
	parseOnce = sync.Once{}
	parsedVersion = nil
}

// Parsed returns the parsed semantic version, or nil if unparseable.
func Parsed() *semver.Version {
	parseOnce.Do(func() {
		if v, err := semver.NewVersion(Version); err == nil {
			parsedVersion = v
		}
	})
	return parsedVersion
}

// IsPrerelease returns true if the current version is a pre-release.
// Returns false for unparseable versions (like "dev").
func IsPrerelease() bool {
	v := Parsed()
	return v != nil && v.Prerelease() != ""
}

// IsDevBuild returns true if this is a development build (no valid semver).
func IsDevBuild() bool {
	return Parsed() == nil
}

// Channel classifies the build as "dev", "prerelease" or "stable".
func Channel() string {
	switch {
	case IsDevBuild():
		return "dev"
	case IsPrerelease():
		return "prerelease"
	default:
		return "stable"
	}
}
