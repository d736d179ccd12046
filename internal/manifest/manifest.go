/*
Package manifest reads and rewrites the version declaration of a project manifest
such as Cargo.toml.

The declaration is the first line of the form

	version = "X.Y.Z"

with a case-insensitive key. Every other line is passed through unchanged.
*/
package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/oarkflow/verbump/internal/semver"
)

// ErrVersionNotFound is returned when no version declaration exists
var ErrVersionNotFound = errors.New("version declaration not found")

var declRe = regexp.MustCompile(`(?i)^version\s*=\s*"([^"]*)"`)

// declaration locates the first version line. It returns the line index and the
// byte offsets of the quoted value inside that line.
func declaration(lines []string) (idx, start, end int, err error) {
	for i, line := range lines {
		m := declRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		return i, m[2], m[3], nil
	}
	return -1, 0, 0, ErrVersionNotFound
}

// ReadCurrent returns the version declared in document
func ReadCurrent(document string) (semver.Version, error) {
	lines := strings.Split(document, "\n")
	idx, start, end, err := declaration(lines)
	if err != nil {
		return semver.Version{}, err
	}
	return semver.Parse(lines[idx][start:end])
}

// WriteNew returns document with the declared version replaced by v.
// A declaration whose current value is not a strict version is an error rather
// than a silent no-op.
func WriteNew(document string, v semver.Version) (string, error) {
	lines := strings.Split(document, "\n")
	idx, start, end, err := declaration(lines)
	if err != nil {
		return "", err
	}
	if _, err := semver.Parse(lines[idx][start:end]); err != nil {
		return "", err
	}

	line := lines[idx]
	lines[idx] = line[:start] + v.String() + line[end:]
	return strings.Join(lines, "\n"), nil
}

// Store persists the version in a manifest file
type Store struct {
	Path string
}

// NewStore creates a store for the manifest at path
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Current reads the declared version from the manifest file
func (s *Store) Current() (semver.Version, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return semver.Version{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	v, err := ReadCurrent(string(data))
	if err != nil {
		return semver.Version{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return v, nil
}

// Write rewrites the manifest file with v
func (s *Store) Write(v semver.Version) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return fmt.Errorf("failed to stat manifest: %w", err)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	updated, err := WriteNew(string(data), v)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Path, err)
	}

	if err := os.WriteFile(s.Path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
