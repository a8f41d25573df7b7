// SPDX-License-Identifier: MPL-2.0

package python

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrUnparseableVersion indicates the interpreter's reported version is
// not a valid semantic version.
var ErrUnparseableVersion = errors.New("unparseable python version")

type (
	// Version is a parsed interpreter version.
	Version struct {
		Major int
		Minor int
		Patch int
	}

	// Floor is the minimum acceptable interpreter version for a profile.
	// Major must match exactly; Minor is a lower bound.
	Floor struct {
		Major int
		Minor int
	}

	// UnparseableVersionError is returned when `python --version` output
	// cannot be parsed. It wraps ErrUnparseableVersion for errors.Is()
	// compatibility.
	UnparseableVersionError struct {
		Output string
	}
)

// ParseVersion parses `python --version` output such as "Python 3.11.2"
// (or a bare "3.11.2") into a Version. Parsing is strict: anything
// x/mod/semver rejects — including CPython pre-release spellings like
// "3.13.0rc1" — is an error, so callers route to provisioning instead
// of acting on a half-parsed number.
func ParseVersion(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimPrefix(s, "Python"))
	if s == "" {
		return Version{}, &UnparseableVersionError{Output: raw}
	}

	norm := s
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		return Version{}, &UnparseableVersionError{Output: raw}
	}

	canon := semver.Canonical(norm)
	if pre := semver.Prerelease(canon); pre != "" {
		canon = strings.TrimSuffix(canon, pre)
	}

	parts := strings.Split(strings.TrimPrefix(canon, "v"), ".")
	if len(parts) != 3 {
		return Version{}, &UnparseableVersionError{Output: raw}
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, &UnparseableVersionError{Output: raw}
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Meets reports whether the version satisfies the floor: the major
// version must match the floor exactly and the minor version must be at
// least the floor's. 3.12 satisfies a 3.11 floor; 4.0 does not.
func (v Version) Meets(f Floor) bool {
	return v.Major == f.Major && v.Minor >= f.Minor
}

// String returns the version in dotted form, e.g. "3.11.2".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// String returns the floor in the major.minor form used for log output
// and for uv's --python selector, e.g. "3.11".
func (f Floor) String() string {
	return fmt.Sprintf("%d.%d", f.Major, f.Minor)
}

// Error implements the error interface for UnparseableVersionError.
func (e *UnparseableVersionError) Error() string {
	return fmt.Sprintf("unparseable python version %q", e.Output)
}

// Unwrap returns ErrUnparseableVersion for errors.Is() compatibility.
func (e *UnparseableVersionError) Unwrap() error { return ErrUnparseableVersion }
