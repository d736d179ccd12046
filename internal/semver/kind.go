package semver

import (
	"fmt"
	"strings"
)

// Kind selects which component a bump increments
type Kind int

const (
	Patch Kind = iota
	Minor
	Major
)

// Kinds lists every bump kind in menu order
var Kinds = []Kind{Minor, Major, Patch}

func (k Kind) String() string {
	switch k {
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses "patch", "minor" or "major"
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	default:
		return Patch, fmt.Errorf("unknown bump kind %q (use patch, minor or major)", s)
	}
}
