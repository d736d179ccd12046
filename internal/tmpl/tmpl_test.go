package tmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/semver"
)

func newContext() *Context {
	return New(&config.Config{ProjectName: "enforcer", Binary: "enforcer", Dist: "dist"})
}

func TestApplyBump(t *testing.T) {
	ctx := newContext().WithBump(semver.MustParse("1.2.3"), semver.MustParse("1.3.0"))

	msg, err := ctx.Apply("[](chore): version bump from {{ .Current }} => {{ .Next }}")
	require.NoError(t, err)
	assert.Equal(t, "[](chore): version bump from 1.2.3 => 1.3.0", msg)

	tag, err := ctx.Apply("{{ .Version }}")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", tag)
}

func TestApplyTarget(t *testing.T) {
	ctx := newContext().
		WithVersion(semver.MustParse("0.4.1")).
		WithTarget(config.Target{Name: "win64", OS: "windows", Arch: "amd64", Triple: "x86_64-pc-windows-gnu"})

	name, err := ctx.Apply("{{ .Binary }}@{{ .Version }}-{{ .Target }}")
	require.NoError(t, err)
	assert.Equal(t, "enforcer@0.4.1-win64", name)

	bin, err := ctx.Apply("target/{{ .Triple }}/release/{{ .Binary }}{{ .Ext }}")
	require.NoError(t, err)
	assert.Equal(t, "target/x86_64-pc-windows-gnu/release/enforcer.exe", bin)
}

func TestDerivedContextsAreIndependent(t *testing.T) {
	base := newContext()
	_ = base.WithVersion(semver.MustParse("9.9.9"))

	_, err := base.Apply("{{ .Version }}")
	assert.Error(t, err, "base context has no version")
}

func TestApplyErrors(t *testing.T) {
	ctx := newContext()
	_, err := ctx.Apply("{{ .Binary")
	assert.Error(t, err)

	_, err = ctx.Apply("{{ .Unknown }}")
	assert.Error(t, err)
}

func TestFuncs(t *testing.T) {
	ctx := newContext()
	ctx.Set("Name", "My Tool")

	out, err := ctx.Apply(`{{ replace (lower .Name) " " "-" }}`)
	require.NoError(t, err)
	assert.Equal(t, "my-tool", out)
	assert.Equal(t, "My Tool", ctx.Get("Name"))
	assert.Equal(t, "", ctx.Get("Timestamp"))

	t.Setenv("VERBUMP_TMPL_TEST", "")
	out, err = ctx.Apply(`{{ env "VERBUMP_TMPL_TEST" | default "none" }}`)
	require.NoError(t, err)
	assert.Equal(t, "none", out)
}

func TestHostDefaults(t *testing.T) {
	ctx := newContext()
	out, err := ctx.Apply("{{ .Os }}/{{ .Arch }}")
	require.NoError(t, err)
	assert.NotEqual(t, "/", out)
	assert.Equal(t, ctx.Get("Os"), ctx.Get("Target"))
}
