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

// GoBuilder builds Go binaries
type GoBuilder struct {
	opts Options
}

// Supports returns true for go
func (b *GoBuilder) Supports(builder string) bool {
	return builder == "go"
}

// Test runs go test ./...
func (b *GoBuilder) Test(ctx context.Context) error {
	return runTests(ctx, b.opts, command.Spec{Name: "go", Args: []string{"test", "./..."}})
}

// Build cross compiles into dist/<target>/
func (b *GoBuilder) Build(ctx context.Context, target config.Target, tmplCtx *tmpl.Context) (artifact.Artifact, error) {
	env, err := buildEnv(b.opts, tmplCtx, "GOOS="+target.OS, "GOARCH="+target.Arch)
	if err != nil {
		return artifact.Artifact{}, err
	}

	output := filepath.Join(b.opts.Dist, target.Name, binaryName(b.opts.Binary, target))
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return artifact.Artifact{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	spec := command.Spec{Name: "go", Args: goArgs(output, b.opts.Build.Main), Dir: b.opts.Dir, Env: env}
	log.Info("Building", "target", target.Name, "os", target.OS, "arch", target.Arch)
	if _, err := b.opts.Runner.Run(ctx, spec); err != nil {
		return artifact.Artifact{}, fmt.Errorf("go build for %s failed: %w", target.Name, err)
	}
	return binaryArtifact(output, target)
}

func goArgs(output, main string) []string {
	if main == "" {
		main = "."
	}
	return []string{"build", "-trimpath", "-o", output, main}
}
