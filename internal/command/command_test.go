package command

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner() (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	return &Runner{Stdout: &out, Stderr: &out}, &out
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Spec
	}{
		{"cargo test -q", Spec{Name: "cargo", Args: []string{"test", "-q"}}},
		{"  go   build  ", Spec{Name: "go", Args: []string{"build"}}},
		{"make test && make lint", Spec{Name: "make test && make lint", Shell: true}},
		{"echo $HOME", Spec{Name: "echo $HOME", Shell: true}},
		{"", Spec{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.line), tt.line)
	}
}

func TestSpecString(t *testing.T) {
	assert.Equal(t, "git push origin v1.0.0", Spec{Name: "git", Args: []string{"push", "origin", "v1.0.0"}}.String())
	assert.Equal(t, "true", Spec{Name: "true"}.String())
}

func TestRunCaptures(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
	r, streamed := newTestRunner()

	out, err := r.Run(context.Background(), Spec{Name: "echo hello", Shell: true})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
	assert.Empty(t, streamed.String())
}

func TestRunStreams(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
	r, streamed := newTestRunner()

	out, err := r.Run(context.Background(), Spec{Name: "echo streamed", Shell: true, Stream: true})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "streamed\n", streamed.String())
}

func TestRunEnvAndDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
	dir := t.TempDir()
	r, _ := newTestRunner()

	out, err := r.Run(context.Background(), Spec{Name: "echo $VERBUMP_TEST_VALUE; pwd", Shell: true, Dir: dir, Env: []string{"VERBUMP_TEST_VALUE=42"}})
	require.NoError(t, err)
	assert.Contains(t, out, "42\n")
	assert.Contains(t, out, dir)
}

func TestRunFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
	r, _ := newTestRunner()

	_, err := r.Run(context.Background(), Spec{Name: "echo broken; exit 3", Shell: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProcess))

	var pe *ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.ExitCode)
	assert.Contains(t, pe.Output, "broken")
	assert.Contains(t, err.Error(), "exit code 3")
}

func TestRunMissingExecutable(t *testing.T) {
	r, _ := newTestRunner()
	_, err := r.Run(context.Background(), Spec{Name: "verbump-definitely-not-installed"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcess)
}

func TestRunEmpty(t *testing.T) {
	r, _ := newTestRunner()
	out, err := r.Run(context.Background(), Spec{})
	require.NoError(t, err)
	assert.Empty(t, out)
}
