package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/verbump/internal/artifact"
	"github.com/oarkflow/verbump/internal/command"
	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/tmpl"
)

// CommandBuilder runs a templated build command and picks up a templated output path
type CommandBuilder struct {
	opts Options
}

// Supports returns true for command
func (b *CommandBuilder) Supports(builder string) bool {
	return builder == "command"
}

// Test runs test.command; there is no default suite
func (b *CommandBuilder) Test(ctx context.Context) error {
	if b.opts.TestCommand == "" {
		log.Warn("No test command configured")
		return nil
	}
	return runTests(ctx, b.opts, command.Spec{})
}

// Build runs build.command with the target in scope
func (b *CommandBuilder) Build(ctx context.Context, target config.Target, tmplCtx *tmpl.Context) (artifact.Artifact, error) {
	line, err := tmplCtx.Apply(b.opts.Build.Command)
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("failed to apply build command template: %w", err)
	}
	output, err := tmplCtx.Apply(b.opts.Build.Output)
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("failed to apply build output template: %w", err)
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(b.opts.Dir, output)
	}

	env, err := buildEnv(b.opts, tmplCtx)
	if err != nil {
		return artifact.Artifact{}, err
	}

	spec := command.Parse(line)
	spec.Dir = b.opts.Dir
	spec.Env = env
	log.Info("Building", "target", target.Name, "cmd", line)
	if _, err := b.opts.Runner.Run(ctx, spec); err != nil {
		return artifact.Artifact{}, fmt.Errorf("build for %s failed: %w", target.Name, err)
	}
	return binaryArtifact(output, target)
}
