/*
Package artifact records the files a release run produces: one binary and one
archive per target, plus the checksum file covering the archives.
*/
package artifact

import (
	"slices"
	"sync"
)

// Type is the kind of file an artifact is
type Type string

const (
	Binary   Type = "binary"
	Archive  Type = "archive"
	Checksum Type = "checksum"
)

// Artifact is a produced file
type Artifact struct {
	Name string
	Path string
	Type Type

	// Target names the release target (linux, win64, ...); empty for checksums
	Target string
	OS     string
	Arch   string
}

// Manager collects artifacts in the order they are produced.
// It is safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	items []Artifact
}

// NewManager returns an empty manager
func NewManager() *Manager {
	return &Manager{}
}

// Add records a
func (m *Manager) Add(a Artifact) {
	m.mu.Lock()
	m.items = append(m.items, a)
	m.mu.Unlock()
}

// List returns a copy of every artifact
func (m *Manager) List() []Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

// Filter returns the artifacts matched by every predicate
func (m *Manager) Filter(preds ...Predicate) []Artifact {
	return slices.DeleteFunc(m.List(), func(a Artifact) bool {
		return slices.ContainsFunc(preds, func(p Predicate) bool { return !p(a) })
	})
}

// Predicate selects artifacts
type Predicate func(Artifact) bool

// ByType matches artifacts of type t
func ByType(t Type) Predicate {
	return func(a Artifact) bool { return a.Type == t }
}

// ByTarget matches artifacts built for the named target
func ByTarget(name string) Predicate {
	return func(a Artifact) bool { return a.Target == name }
}
