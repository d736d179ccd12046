package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	m := NewManager()
	m.Add(Artifact{Name: "enforcer", Type: Binary, Target: "linux"})
	m.Add(Artifact{Name: "enforcer@1.0.0-linux.tgz", Type: Archive, Target: "linux"})
	m.Add(Artifact{Name: "enforcer.exe", Type: Binary, Target: "win64"})
	m.Add(Artifact{Name: "checksums.txt", Type: Checksum})

	assert.Len(t, m.List(), 4)
	assert.Len(t, m.Filter(), 4)

	bins := m.Filter(ByType(Binary))
	assert.Equal(t, []string{"enforcer", "enforcer.exe"}, names(bins))

	linux := m.Filter(ByType(Binary), ByTarget("linux"))
	assert.Equal(t, []string{"enforcer"}, names(linux))

	assert.Empty(t, m.Filter(ByTarget("darwin")))
}

func TestListIsACopy(t *testing.T) {
	m := NewManager()
	m.Add(Artifact{Name: "a"})
	list := m.List()
	list[0].Name = "changed"
	assert.Equal(t, "a", m.List()[0].Name)
}

func names(arts []Artifact) []string {
	var out []string
	for _, a := range arts {
		out = append(out, a.Name)
	}
	return out
}
