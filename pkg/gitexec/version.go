package gitexec

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/warptools/fwsetup/fsapi"
)

// MinimumVersion is the oldest git release that supports every invocation issued during setup.
const MinimumVersion = "2.11.0"

// ParseVersion extracts the "major.minor.patch" part of `git --version` output,
// e.g. "git version 2.39.2.windows.1" yields "2.39.2".
//
// Errors:
//
//   - fwsetup-error-git-version -- when the output does not look like a git version line
func ParseVersion(output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) < 3 {
		return "", fsapi.ErrorGitVersion(output, "expected at least three words")
	}
	parts := strings.Split(fields[2], ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	version := strings.Join(parts, ".")
	if _, err := semver.StrictNewVersion(normalize(version)); err != nil {
		return "", fsapi.ErrorGitVersion(output, err.Error())
	}
	return version, nil
}

// normalize pads a version to three components so that "2.40" compares as "2.40.0".
func normalize(v string) string {
	for n := strings.Count(v, "."); n < 2; n++ {
		v += ".0"
	}
	return v
}

// CompareVersions compares two dotted versions numerically, component by component.
// The result is negative if a is older than b, zero if equal, and positive if newer.
//
// Errors:
//
//   - fwsetup-error-git-version -- when either version is not numeric
func CompareVersions(a, b string) (int, error) {
	va, err := semver.StrictNewVersion(normalize(a))
	if err != nil {
		return 0, fsapi.ErrorGitVersion(a, err.Error())
	}
	vb, err := semver.StrictNewVersion(normalize(b))
	if err != nil {
		return 0, fsapi.ErrorGitVersion(b, err.Error())
	}
	return va.Compare(vb), nil
}

// CheckMinimum verifies that version is not older than MinimumVersion.
//
// Errors:
//
//   - fwsetup-error-git-version -- when version is not numeric
//   - fwsetup-error-git-too-old -- when version is older than MinimumVersion
func CheckMinimum(version string) error {
	cmp, err := CompareVersions(version, MinimumVersion)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return fsapi.ErrorGitTooOld(version, MinimumVersion)
	}
	return nil
}
