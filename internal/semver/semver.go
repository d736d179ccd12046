/*
Package semver provides the three-part version model used by verbump.
*/
package semver

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrFormat is the sentinel wrapped by every FormatError
var ErrFormat = errors.New("malformed version")

// ErrOverflow is returned when a bump would exceed the largest component value
var ErrOverflow = errors.New("version component overflow")

// FormatError reports a version string that is not strictly MAJOR.MINOR.PATCH
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed version %q: %s", e.Input, e.Reason)
}

// Unwrap allows errors.Is(err, ErrFormat)
func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// Version is an immutable (major, minor, patch) triple
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a dotted numeric string such as "1.2.3"
func Parse(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, &FormatError{Input: s, Reason: fmt.Sprintf("expected 3 components, got %d", len(parts))}
	}

	var nums [3]int
	for i, part := range parts {
		if part == "" {
			return Version{}, &FormatError{Input: s, Reason: fmt.Sprintf("component %d is empty", i+1)}
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return Version{}, &FormatError{Input: s, Reason: fmt.Sprintf("component %q is not numeric", part)}
			}
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, &FormatError{Input: s, Reason: err.Error()}
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is like Parse but panics on error
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1. The first differing component decides.
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return cmpInt(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpInt(a.Minor, b.Minor)
	default:
		return cmpInt(a.Patch, b.Patch)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Compare compares v with other
func (v Version) Compare(other Version) int {
	return Compare(v, other)
}

// Less reports whether v orders before other
func (v Version) Less(other Version) bool {
	return Compare(v, other) < 0
}

// Bump returns the next version for the given kind. It fails with ErrOverflow
// when the bumped component is already math.MaxInt.
func (v Version) Bump(kind Kind) (Version, error) {
	var next Version
	var part int
	switch kind {
	case Major:
		part, next = v.Major, Version{Major: v.Major + 1}
	case Minor:
		part, next = v.Minor, Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		part, next = v.Patch, Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
	if part == math.MaxInt {
		return Version{}, fmt.Errorf("%s bump of %s: %w", kind, v, ErrOverflow)
	}
	return next, nil
}

// MustBump is like Bump but panics on overflow
func (v Version) MustBump(kind Kind) Version {
	next, err := v.Bump(kind)
	if err != nil {
		panic(err)
	}
	return next
}

// String renders the version as "major.minor.patch"
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// MarshalText implements encoding.TextMarshaler
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
