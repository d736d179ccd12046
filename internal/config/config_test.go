package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(dir), cfg.ProjectName)
	assert.Equal(t, cfg.ProjectName, cfg.Binary)
	assert.Equal(t, "target/release", cfg.Dist)
	assert.Equal(t, "Cargo.toml", cfg.Manifest.File)
	assert.Equal(t, "README.md", cfg.Changelog.File)
	assert.Equal(t, "01/02/2006", cfg.Changelog.DateFormat)
	assert.Equal(t, "origin", cfg.Git.Remote)
	assert.Equal(t, "v{{ .Version }}", cfg.Git.PreviousTag)
	assert.Equal(t, "{{ .Version }}", cfg.Git.Tag)
	assert.Equal(t, "rust", cfg.Build.Builder)
	assert.Equal(t, []Target{{Name: runtime.GOOS, OS: runtime.GOOS, Arch: runtime.GOARCH}}, cfg.Build.Targets)
	assert.Equal(t, "sha256", cfg.Checksum.Algorithm)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
project_name: enforcer
binary: enforcer
dist: target/release
changelog:
  file: CHANGELOG.md
build:
  builder: go
  targets:
    - name: linux
      os: linux
      arch: amd64
    - os: darwin
      arch: arm64
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "enforcer", cfg.ProjectName)
	assert.Equal(t, "target/release", cfg.Dist)
	assert.Equal(t, "CHANGELOG.md", cfg.Changelog.File)
	assert.Equal(t, "01/02/2006", cfg.Changelog.DateFormat, "defaults fill unset nested keys")
	assert.Equal(t, "go", cfg.Build.Builder)
	require.Len(t, cfg.Build.Targets, 2)
	assert.Equal(t, Target{Name: "darwin", OS: "darwin", Arch: "arm64"}, cfg.Build.Targets[1])
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "c.yaml", "binary: tool\ngit:\n  remote: upstream\n")

	t.Setenv("VERBUMP_GIT__REMOTE", "fork")
	t.Setenv("VERBUMP_CHECKSUM__DISABLE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fork", cfg.Git.Remote)
	assert.True(t, cfg.Checksum.Disable)
	assert.Equal(t, "tool", cfg.Binary)
}

func TestLoadIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "targets.yaml", `
build:
  env:
    - RUSTFLAGS=-Cstrip=symbols
  targets:
    - name: win64
      os: windows
      arch: amd64
      triple: x86_64-pc-windows-gnu
archive:
  install_dir: /opt/bin
`)
	path := writeFile(t, dir, "main.yaml", `
binary: enforcer
includes:
  - targets.yaml
build:
  env:
    - CARGO_TERM_COLOR=never
  targets:
    - name: linux
      os: linux
      arch: amd64
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"CARGO_TERM_COLOR=never", "RUSTFLAGS=-Cstrip=symbols"}, cfg.Build.Env)
	require.Len(t, cfg.Build.Targets, 2)
	assert.Equal(t, "win64", cfg.Build.Targets[1].Name)
	assert.Equal(t, "/opt/bin", cfg.Archive.InstallDir)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		dir := t.TempDir()
		cfg, err := Load(writeFile(t, dir, "c.yaml", "binary: x\n"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no binary", func(c *Config) { c.Binary = "" }},
		{"no manifest", func(c *Config) { c.Manifest.File = "" }},
		{"bad builder", func(c *Config) { c.Build.Builder = "make" }},
		{"command builder without command", func(c *Config) { c.Build.Builder = "command" }},
		{"bad archive format", func(c *Config) { c.Archive.Format = "rar" }},
		{"bad checksum", func(c *Config) { c.Checksum.Algorithm = "crc32" }},
		{"broken template", func(c *Config) { c.Git.Tag = "{{ .Version" }},
		{"empty tag template", func(c *Config) { c.Git.Tag = "" }},
		{"duplicate targets", func(c *Config) {
			c.Build.Targets = []Target{{Name: "linux"}, {Name: "linux"}}
		}},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultTemplateLoads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultFile, DefaultTemplate())

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "enforcer", cfg.Binary)
	assert.Len(t, cfg.Build.Targets, 3)
	assert.Equal(t, "cargo test -q", cfg.Test.Command)
	assert.Equal(t, Defaults()["dist"], cfg.Dist)
}

func TestYAML(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeFile(t, dir, "c.yaml", "binary: x\n"))
	require.NoError(t, err)

	out, err := cfg.YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &back))
	assert.Equal(t, cfg.Git, back.Git)
	assert.Equal(t, cfg.Build.Targets, back.Build.Targets)
}
