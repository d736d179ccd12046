package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/verbump/internal/artifact"
	"github.com/oarkflow/verbump/internal/command"
	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/tmpl"
)

// RustBuilder builds Rust binaries with cargo
type RustBuilder struct {
	opts Options
}

// Supports returns true for rust and cargo
func (b *RustBuilder) Supports(builder string) bool {
	return builder == "rust" || builder == "cargo"
}

// Test runs cargo test
func (b *RustBuilder) Test(ctx context.Context) error {
	return runTests(ctx, b.opts, command.Spec{Name: "cargo", Args: []string{"test"}})
}

// Build runs cargo build --release for target
func (b *RustBuilder) Build(ctx context.Context, target config.Target, tmplCtx *tmpl.Context) (artifact.Artifact, error) {
	triple := rustTriple(target)
	env, err := buildEnv(b.opts, tmplCtx)
	if err != nil {
		return artifact.Artifact{}, err
	}

	spec := command.Spec{Name: "cargo", Args: cargoArgs(triple), Dir: b.opts.Dir, Env: env}
	log.Info("Building", "target", target.Name, "triple", triple)
	if _, err := b.opts.Runner.Run(ctx, spec); err != nil {
		return artifact.Artifact{}, fmt.Errorf("cargo build for %s failed: %w", target.Name, err)
	}

	return binaryArtifact(cargoOutput(b.opts.Dir, triple, binaryName(b.opts.Binary, target)), target)
}

func cargoArgs(triple string) []string {
	args := []string{"build", "--release"}
	if triple != "" {
		args = append(args, "--target", triple)
	}
	return args
}

// cargoOutput is where cargo leaves the binary; host builds skip the triple directory
func cargoOutput(dir, triple, name string) string {
	if triple == "" {
		return filepath.Join(dir, "target", "release", name)
	}
	return filepath.Join(dir, "target", triple, "release", name)
}

// rustTriple returns the cargo target triple, empty for the host platform
func rustTriple(target config.Target) string {
	if target.Triple != "" {
		return target.Triple
	}
	if target.OS == runtime.GOOS && target.Arch == runtime.GOARCH {
		return ""
	}

	targets := map[string]map[string]string{
		"linux": {
			"amd64": "x86_64-unknown-linux-gnu",
			"arm64": "aarch64-unknown-linux-gnu",
			"arm":   "armv7-unknown-linux-gnueabihf",
			"386":   "i686-unknown-linux-gnu",
		},
		"darwin": {
			"amd64": "x86_64-apple-darwin",
			"arm64": "aarch64-apple-darwin",
		},
		"windows": {
			"amd64": "x86_64-pc-windows-gnu",
			"386":   "i686-pc-windows-gnu",
		},
	}
	if osTargets, ok := targets[target.OS]; ok {
		return osTargets[target.Arch]
	}
	return ""
}
