// Package version carries the build version stamped at link time.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

const devVersion = "dev"

// Version is set with -ldflags "-X github.com/applytrack/applytrack/internal/shared/version.Version=1.4.0".
var Version = devVersion

// Normalize ensures version string has "v" prefix for semver compatibility.
// Examples: "1.2.3" -> "v1.2.3", "v1.2.3" -> "v1.2.3"
func Normalize(version string) string {
	if version == "" {
		return ""
	}
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// Current returns the normalized build version, or "dev" for unstamped and
// non-semver builds.
func Current() string {
	v := Normalize(Version)
	if !semver.IsValid(v) {
		return devVersion
	}
	return semver.Canonical(v)
}

// IsRelease reports whether the binary carries a release version, i.e. a
// valid semver without a prerelease suffix.
func IsRelease() bool {
	v := Current()
	return v != devVersion && semver.Prerelease(v) == ""
}
