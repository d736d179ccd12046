/*
Package builder runs the project's test suite and release builds.

The rust builder drives cargo, the go builder drives the go toolchain and the
command builder runs user supplied command templates.
*/
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/verbump/internal/artifact"
	"github.com/oarkflow/verbump/internal/command"
	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/tmpl"
)

// Builder interface for language-specific builders
type Builder interface {
	// Supports returns true if this builder handles the builder type
	Supports(builder string) bool

	// Test runs the project's test suite
	Test(ctx context.Context) error

	// Build produces a release binary for target
	Build(ctx context.Context, target config.Target, tmplCtx *tmpl.Context) (artifact.Artifact, error)
}

// Options holds what every builder needs
type Options struct {
	// Dir is the project root
	Dir string

	// Binary is the executable name without extension
	Binary string

	// Dist receives binaries built by the go builder
	Dist string

	// Build settings
	Build config.Build

	// TestCommand overrides the builder's test command
	TestCommand string

	// Runner executes the toolchain
	Runner *command.Runner
}

// FromConfig derives builder options from the configuration
func FromConfig(cfg *config.Config, dir string, runner *command.Runner) Options {
	dist := cfg.Dist
	if dist != "" && !filepath.IsAbs(dist) {
		dist = filepath.Join(dir, dist)
	}
	return Options{
		Dir:         dir,
		Binary:      cfg.Binary,
		Dist:        dist,
		Build:       cfg.Build,
		TestCommand: cfg.Test.Command,
		Runner:      runner,
	}
}

// New returns the builder selected by opts.Build.Builder
func New(opts Options) (Builder, error) {
	if opts.Runner == nil {
		opts.Runner = command.NewRunner()
	}
	builders := []Builder{
		&RustBuilder{opts: opts},
		&GoBuilder{opts: opts},
		&CommandBuilder{opts: opts},
	}
	for _, b := range builders {
		if b.Supports(opts.Build.Builder) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("unsupported builder: %s", opts.Build.Builder)
}

// runTests runs the override when set, otherwise the builder's default command.
// Output streams so failures are visible in full.
func runTests(ctx context.Context, opts Options, def command.Spec) error {
	spec := def
	if opts.TestCommand != "" {
		spec = command.Parse(opts.TestCommand)
	}
	spec.Dir = opts.Dir
	spec.Stream = true

	log.Info("Running tests", "cmd", spec.String())
	if _, err := opts.Runner.Run(ctx, spec); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	return nil
}

// buildEnv expands the configured environment entries
func buildEnv(opts Options, tmplCtx *tmpl.Context, extra ...string) ([]string, error) {
	env := make([]string, 0, len(opts.Build.Env)+len(extra))
	for _, e := range opts.Build.Env {
		expanded, err := tmplCtx.Apply(e)
		if err != nil {
			return nil, fmt.Errorf("failed to expand env %s: %w", e, err)
		}
		env = append(env, expanded)
	}
	return append(env, extra...), nil
}

// binaryName returns the executable file name for target
func binaryName(name string, target config.Target) string {
	if target.OS == "windows" {
		return name + ".exe"
	}
	return name
}

func binaryArtifact(path string, target config.Target) (artifact.Artifact, error) {
	if _, err := os.Stat(path); err != nil {
		return artifact.Artifact{}, fmt.Errorf("build output not found: %w", err)
	}
	return artifact.Artifact{
		Name:   filepath.Base(path),
		Path:   path,
		Type:   artifact.Binary,
		Target: target.Name,
		OS:     target.OS,
		Arch:   target.Arch,
	}, nil
}
