// Package version reports the build version stamped in with -ldflags.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Set with -ldflags "-X github.com/orris-inc/poolkeeper/internal/shared/version.Version=1.2.3".
var (
	Version = "dev"
	Commit  = ""
)

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

// IsRelease reports whether v is a valid semver release without a prerelease tag.
func IsRelease(v string) bool {
	n := Normalize(v)
	return semver.IsValid(n) && semver.Prerelease(n) == ""
}

// String is the human readable build version, e.g. "v1.2.3 (abc1234)".
func String() string {
	v := Version
	if semver.IsValid(Normalize(v)) {
		v = semver.Canonical(Normalize(v))
	}
	if Commit != "" {
		return v + " (" + Commit + ")"
	}
	return v
}
