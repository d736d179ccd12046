package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/verbump/internal/semver"
)

const cargoToml = `[package]
name = "enforcer"
version = "1.2.3"
authors = ["someone"]

[dependencies.glob]
version = "0.2.11"
`

func TestReadCurrent(t *testing.T) {
	v, err := ReadCurrent(cargoToml)
	require.NoError(t, err)
	assert.Equal(t, semver.Version{Major: 1, Minor: 2, Patch: 3}, v)
}

func TestReadCurrentCaseInsensitiveKey(t *testing.T) {
	v, err := ReadCurrent("Version = \"0.4.0\"\n")
	require.NoError(t, err)
	assert.Equal(t, "0.4.0", v.String())
}

func TestReadCurrentMissing(t *testing.T) {
	_, err := ReadCurrent("[package]\nname = \"x\"\n")
	assert.ErrorIs(t, err, ErrVersionNotFound)

	// indented keys belong to nested tables and are not the declaration
	_, err = ReadCurrent("[package]\n  version = \"1.0.0\"\n")
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestReadCurrentMalformed(t *testing.T) {
	_, err := ReadCurrent("version = \"1.2\"\n")
	assert.ErrorIs(t, err, semver.ErrFormat)
}

func TestWriteNew(t *testing.T) {
	out, err := WriteNew(cargoToml, semver.MustParse("1.3.0"))
	require.NoError(t, err)

	want := `[package]
name = "enforcer"
version = "1.3.0"
authors = ["someone"]

[dependencies.glob]
version = "0.2.11"
`
	assert.Equal(t, want, out)
}

func TestWriteNewKeepsLineShape(t *testing.T) {
	doc := "VERSION  =  \"2.0.0\"   # pinned\r\nname = \"x\"\r\n"
	out, err := WriteNew(doc, semver.MustParse("2.0.1"))
	require.NoError(t, err)
	assert.Equal(t, "VERSION  =  \"2.0.1\"   # pinned\r\nname = \"x\"\r\n", out)
}

func TestWriteNewFailsLoudly(t *testing.T) {
	_, err := WriteNew("version = \"1.2.x\"\n", semver.MustParse("1.3.0"))
	require.Error(t, err)
	var fe *semver.FormatError
	assert.True(t, errors.As(err, &fe))

	_, err = WriteNew("name = \"x\"\n", semver.MustParse("1.3.0"))
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	require.NoError(t, os.WriteFile(path, []byte(cargoToml), 0o600))

	store := NewStore(path)
	cur, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", cur.String())

	require.NoError(t, store.Write(cur.MustBump(semver.Minor)))

	next, err := store.Current()
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", next.String())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `version = "1.3.0"`)
	assert.Contains(t, string(data), `version = "0.2.11"`)
}

func TestStoreMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.toml"))
	_, err := store.Current()
	assert.Error(t, err)
	assert.Error(t, store.Write(semver.Version{}))
}
