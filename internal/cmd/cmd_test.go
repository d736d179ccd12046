package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/verbump/internal/changelog"
	"github.com/oarkflow/verbump/internal/history"
	"github.com/oarkflow/verbump/internal/prompt"
	"github.com/oarkflow/verbump/internal/semver"
)

func init() {
	color.NoColor = true
}

func TestFormatError(t *testing.T) {
	err := &changelog.AnchorNotFoundError{Document: "README.md"}
	out := formatError(errors.Join(errors.New("release failed"), err))

	assert.Contains(t, out, "Error: release failed")
	assert.Contains(t, out, "To fix this:")
	assert.Contains(t, out, `• add a line containing exactly "# Changelog"`)

	plain := formatError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", plain)
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, nil)
	assert.Equal(t, "No releases recorded\n", buf.String())

	buf.Reset()
	renderHistory(&buf, []history.Run{
		{Kind: "minor", From: "1.2.3", To: "1.3.0", Tag: "1.3.0", Commit: "0123456789", Status: history.StatusSuccess, CreatedAt: time.Now()},
		{Kind: "patch", Status: history.StatusFailed, FailedStep: "RunTests", CreatedAt: time.Now()},
	})
	out := buf.String()
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "0123456")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "failed (RunTests)")
}

// execute runs the root command with args and returns its stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { workDir, cfgFile = "", "" })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func commitAll(t *testing.T, repo *git.Repository, message string, when time.Time) {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: when}
	_, err = wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestBumpEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test command uses true")
	}
	t.Chdir(t.TempDir())

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("Cargo.toml", "[package]\nname = \"enforcer\"\nversion = \"1.2.3\"\n")
	write("README.md", "# enforcer\n\n# Changelog\n")
	write(".verbump.yaml", "binary: enforcer\ntest:\n  command: \"true\"\ngit:\n  author_name: Release Bot\n  author_email: bot@example.com\n")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	commitAll(t, repo, "Initial release", base)
	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.2.3", head.Hash(), nil)
	require.NoError(t, err)

	write("src.rs", "fn main() {}\n")
	commitAll(t, repo, "Add feature X", base.Add(time.Minute))

	out, err := execute(t, "-C", dir, "bump", "minor")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1.2.3 => 1.3.0 (tag 1.3.0)")
	assert.Contains(t, out, "git reset --hard HEAD~1 && git tag -d 1.3.0")

	data, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `version = "1.3.0"`)

	data, err = os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Changelog\n\n### [1.3.0] - ")
	assert.Contains(t, string(data), "  * Add feature X")

	tag, err := repo.Tag("1.3.0")
	require.NoError(t, err)
	c, err := repo.CommitObject(tag.Hash())
	require.NoError(t, err)
	assert.Equal(t, "[](chore): version bump from 1.2.3 => 1.3.0", c.Message)
	assert.Equal(t, "Release Bot", c.Author.Name)

	out, err = execute(t, "-C", dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "1.3.0")
	assert.Contains(t, out, "success")
}

func TestReleaseAbortedIsNotAnError(t *testing.T) {
	t.Cleanup(func() { choose = chooseKind })
	choose = func() (semver.Kind, error) { return 0, prompt.ErrAborted }

	out, err := execute(t, "release")
	require.NoError(t, err)
	assert.Contains(t, out, "ok...maybe later")
}

func TestBumpRejectsUnknownKind(t *testing.T) {
	_, err := execute(t, "bump", "huge")
	assert.Error(t, err)
}

func TestInitAndCheck(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created .verbump.yaml")
	assert.FileExists(t, filepath.Join(dir, ".verbump.yaml"))

	_, err = execute(t, "init")
	assert.ErrorContains(t, err, "already exists")

	out, err = execute(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration is valid")
	assert.Contains(t, out, "binary: enforcer")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "verbump ")
}
