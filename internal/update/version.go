// SPDX-License-Identifier: MPL-2.0

package update

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion indicates a version string is not valid semver.
var ErrInvalidVersion = errors.New("invalid semantic version")

// normalizeVersion ensures the version string has a "v" prefix as
// required by the semver package, and validates that the result is a
// well-formed semantic version.
func normalizeVersion(v string) (string, error) {
	norm := v
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return norm, nil
}

// updateAvailable reports whether remote is strictly newer than
// current. A version that does not normalize on either side means no
// update — a malformed manifest must never push a release.
func updateAvailable(current, remote string) bool {
	cur, err := normalizeVersion(current)
	if err != nil {
		return false
	}
	rem, err := normalizeVersion(remote)
	if err != nil {
		return false
	}
	return semver.Compare(cur, rem) < 0
}
