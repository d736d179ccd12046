/*
Package config provides configuration loading and validation for verbump.

Values are layered: built-in defaults, then the YAML config file, then
VERBUMP_* environment variables (a double underscore separates nesting levels,
so VERBUMP_GIT__REMOTE sets git.remote). Files listed under includes are merged
into the result.
*/
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	"dario.cat/mergo"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	goyaml "gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when none is given
const DefaultFile = ".verbump.yaml"

// EnvPrefix prefixes environment overrides
const EnvPrefix = "VERBUMP_"

// Config represents the complete verbump configuration
type Config struct {
	// ProjectName is the name of the project
	ProjectName string `koanf:"project_name" yaml:"project_name"`

	// Binary is the executable the project builds
	Binary string `koanf:"binary" yaml:"binary"`

	// Dist is the output directory for archives
	Dist string `koanf:"dist" yaml:"dist"`

	// Include other configuration files
	Includes []string `koanf:"includes" yaml:"includes,omitempty"`

	// Manifest holding the version declaration
	Manifest Manifest `koanf:"manifest" yaml:"manifest"`

	// Changelog document settings
	Changelog Changelog `koanf:"changelog" yaml:"changelog"`

	// Git settings
	Git Git `koanf:"git" yaml:"git"`

	// Test collaborator
	Test Test `koanf:"test" yaml:"test"`

	// Build collaborator
	Build Build `koanf:"build" yaml:"build"`

	// Archive packaging
	Archive Archive `koanf:"archive" yaml:"archive"`

	// Checksum file
	Checksum Checksum `koanf:"checksum" yaml:"checksum"`

	// History store
	History History `koanf:"history" yaml:"history"`
}

// Manifest configures the VersionStore
type Manifest struct {
	File string `koanf:"file" yaml:"file"`
}

// Changelog configures the changelog document
type Changelog struct {
	File       string `koanf:"file" yaml:"file"`
	DateFormat string `koanf:"date_format" yaml:"date_format"`
}

// Git contains git-related configuration
type Git struct {
	// Remote to push to
	Remote string `koanf:"remote" yaml:"remote"`

	// PreviousTag names the tag that must exist for the current version
	PreviousTag string `koanf:"previous_tag" yaml:"previous_tag"`

	// Tag names the tag created for the next version
	Tag string `koanf:"tag" yaml:"tag"`

	// CommitMessage for the version bump commit
	CommitMessage string `koanf:"commit_message" yaml:"commit_message"`

	AuthorName  string `koanf:"author_name" yaml:"author_name,omitempty"`
	AuthorEmail string `koanf:"author_email" yaml:"author_email,omitempty"`
}

// Test configures the test collaborator
type Test struct {
	// Command overrides the builder's default test command
	Command string `koanf:"command" yaml:"command,omitempty"`
}

// Build configures the build collaborator
type Build struct {
	// Builder to use (rust, go, command)
	Builder string `koanf:"builder" yaml:"builder"`

	// Command is the build command template for the command builder
	Command string `koanf:"command" yaml:"command,omitempty"`

	// Output is the binary path template for the command builder
	Output string `koanf:"output" yaml:"output,omitempty"`

	// Main package for the go builder
	Main string `koanf:"main" yaml:"main,omitempty"`

	// Env for the build environment
	Env []string `koanf:"env" yaml:"env,omitempty"`

	// Targets to build for release
	Targets []Target `koanf:"targets" yaml:"targets,omitempty"`
}

// Target is one release platform
type Target struct {
	// Name is the archive suffix (linux, darwin, win64, ...)
	Name string `koanf:"name" yaml:"name"`

	OS   string `koanf:"os" yaml:"os,omitempty"`
	Arch string `koanf:"arch" yaml:"arch,omitempty"`

	// Triple is the rust target triple for cross builds
	Triple string `koanf:"triple" yaml:"triple,omitempty"`
}

// Archive configures release archives
type Archive struct {
	Format       string `koanf:"format" yaml:"format"`
	NameTemplate string `koanf:"name_template" yaml:"name_template"`

	// InstallDir receives a copy of the host binary
	InstallDir string `koanf:"install_dir" yaml:"install_dir,omitempty"`
}

// Checksum configures the checksum file
type Checksum struct {
	Algorithm    string `koanf:"algorithm" yaml:"algorithm"`
	NameTemplate string `koanf:"name_template" yaml:"name_template"`
	Disable      bool   `koanf:"disable" yaml:"disable,omitempty"`
}

// History configures the release history store
type History struct {
	// Path defaults to .git/verbump/history.db in the repository
	Path    string `koanf:"path" yaml:"path"`
	Disable bool   `koanf:"disable" yaml:"disable,omitempty"`
}

// Defaults returns the built-in values as koanf keys
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"dist":                   "target/release",
		"manifest.file":          "Cargo.toml",
		"changelog.file":         "README.md",
		"changelog.date_format":  "01/02/2006",
		"git.remote":             "origin",
		"git.previous_tag":       "v{{ .Version }}",
		"git.tag":                "{{ .Version }}",
		"git.commit_message":     "[](chore): version bump from {{ .Current }} => {{ .Next }}",
		"build.builder":          "rust",
		"archive.format":         "tgz",
		"archive.name_template":  "{{ .Binary }}@{{ .Version }}-{{ .Target }}",
		"checksum.algorithm":     "sha256",
		"checksum.name_template": "checksums.txt",
	}
}

// Load loads configuration from path. An empty path uses DefaultFile when it exists.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		path = ""
	}

	k := koanf.New(".")
	for key, value := range Defaults() {
		k.Set(key, value)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if path != "" {
		if err := cfg.mergeIncludes(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	cfg.setDefaults()
	return &cfg, nil
}

// envKey maps VERBUMP_GIT__REMOTE to git.remote
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// mergeIncludes merges included files; values already set win, lists are appended
func (c *Config) mergeIncludes(baseDir string) error {
	for _, include := range c.Includes {
		includePath := include
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, include)
		}

		// Support glob patterns
		matches, err := filepath.Glob(includePath)
		if err != nil {
			return fmt.Errorf("invalid include pattern %s: %w", include, err)
		}

		for _, match := range matches {
			data, err := os.ReadFile(match)
			if err != nil {
				return fmt.Errorf("failed to load include %s: %w", match, err)
			}
			var includeCfg Config
			if err := goyaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &includeCfg); err != nil {
				return fmt.Errorf("failed to parse include %s: %w", match, err)
			}
			if err := mergo.Merge(c, includeCfg, mergo.WithAppendSlice); err != nil {
				return fmt.Errorf("failed to merge include %s: %w", match, err)
			}
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.ProjectName == "" {
		if cwd, err := os.Getwd(); err == nil {
			c.ProjectName = filepath.Base(cwd)
		}
	}
	if c.Binary == "" {
		c.Binary = c.ProjectName
	}
	if len(c.Build.Targets) == 0 {
		c.Build.Targets = []Target{HostTarget()}
	}
	for i, t := range c.Build.Targets {
		if t.OS == "" {
			c.Build.Targets[i].OS = runtime.GOOS
		}
		if t.Arch == "" {
			c.Build.Targets[i].Arch = runtime.GOARCH
		}
		if t.Name == "" {
			c.Build.Targets[i].Name = c.Build.Targets[i].OS
		}
	}
}

// HostTarget returns the target for the running platform
func HostTarget() Target {
	return Target{Name: runtime.GOOS, OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Binary == "" {
		return fmt.Errorf("binary is required")
	}
	if c.Manifest.File == "" {
		return fmt.Errorf("manifest.file is required")
	}
	if c.Changelog.File == "" {
		return fmt.Errorf("changelog.file is required")
	}

	switch c.Build.Builder {
	case "rust", "go":
	case "command":
		if c.Build.Command == "" || c.Build.Output == "" {
			return fmt.Errorf("build.command and build.output are required for the command builder")
		}
	default:
		return fmt.Errorf("unsupported builder: %s", c.Build.Builder)
	}

	switch c.Archive.Format {
	case "tgz", "tar.gz", "zip":
	default:
		return fmt.Errorf("unsupported archive format: %s", c.Archive.Format)
	}

	switch c.Checksum.Algorithm {
	case "sha256", "sha512", "blake2b":
	default:
		return fmt.Errorf("unsupported checksum algorithm: %s", c.Checksum.Algorithm)
	}

	names := make(map[string]bool)
	for _, t := range c.Build.Targets {
		if names[t.Name] {
			return fmt.Errorf("duplicate target name: %s", t.Name)
		}
		names[t.Name] = true
	}

	return c.validateTemplates()
}

// validateTemplates validates all template strings in the configuration
func (c *Config) validateTemplates() error {
	templates := map[string]string{
		"git.previous_tag":       c.Git.PreviousTag,
		"git.tag":                c.Git.Tag,
		"git.commit_message":     c.Git.CommitMessage,
		"archive.name_template":  c.Archive.NameTemplate,
		"checksum.name_template": c.Checksum.NameTemplate,
		"build.command":          c.Build.Command,
		"build.output":           c.Build.Output,
	}
	for name, tmpl := range templates {
		if _, err := template.New(name).Parse(tmpl); err != nil {
			return fmt.Errorf("invalid template in %s: %w", name, err)
		}
	}
	for _, required := range []string{"git.previous_tag", "git.tag", "git.commit_message", "archive.name_template"} {
		if strings.TrimSpace(templates[required]) == "" {
			return fmt.Errorf("%s must not be empty", required)
		}
	}
	return nil
}

// YAML renders the effective configuration
func (c *Config) YAML() (string, error) {
	var buf bytes.Buffer
	enc := goyaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DefaultTemplate returns the default configuration template
func DefaultTemplate() string {
	return `# verbump configuration file

project_name: enforcer
binary: enforcer

# Output directory for release archives
dist: target/release

# File holding the version = "X.Y.Z" declaration
manifest:
  file: Cargo.toml

# Document containing the "# Changelog" heading
changelog:
  file: README.md
  date_format: "01/02/2006"

git:
  remote: origin
  # Tag that must exist for the current version
  previous_tag: "v{{ .Version }}"
  # Tag created for the new version
  tag: "{{ .Version }}"
  commit_message: "[](chore): version bump from {{ .Current }} => {{ .Next }}"

test:
  command: cargo test -q

build:
  builder: rust
  targets:
    - name: linux
      os: linux
      arch: amd64
    - name: win64
      os: windows
      arch: amd64
      triple: x86_64-pc-windows-gnu
    - name: win32
      os: windows
      arch: "386"
      triple: i686-pc-windows-gnu

archive:
  format: tgz
  name_template: "{{ .Binary }}@{{ .Version }}-{{ .Target }}"
  install_dir: ~/bin

checksum:
  algorithm: sha256
  name_template: checksums.txt

# Release runs are recorded in .git/verbump/history.db unless a path is set
history:
  disable: false
`
}
