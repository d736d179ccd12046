package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/verbump/internal/archive"
	"github.com/oarkflow/verbump/internal/artifact"
	"github.com/oarkflow/verbump/internal/checksum"
	"github.com/oarkflow/verbump/internal/semver"
)

// build compiles every target, archives each binary, writes checksums and
// installs the host binary. A failing target does not stop the others.
func (p *Pipeline) build(ctx context.Context, version semver.Version) error {
	base := p.templateCtx.WithVersion(version)
	creator := archive.NewCreator(p.config.Archive, p.distDir)
	installDir := p.config.Archive.InstallDir

	var errs []error
	installed := false
	for _, target := range p.config.Build.Targets {
		tctx := base.WithTarget(target)

		bin, err := p.builder.Build(ctx, target, tctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.artifacts.Add(bin)

		a, err := creator.Create(bin, tctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to archive %s: %w", target.Name, err))
			continue
		}
		p.artifacts.Add(*a)
		log.Info("Archived", "target", target.Name, "archive", a.Name)

		if installDir != "" && !installed && target.OS == runtime.GOOS && target.Arch == runtime.GOARCH {
			if _, err := archive.Install(bin, installDir); err != nil {
				errs = append(errs, err)
			} else {
				installed = true
			}
		}
	}

	if len(p.artifacts.Filter(artifact.ByType(artifact.Archive))) > 0 {
		gen := checksum.NewGenerator(p.config.Checksum, p.distDir, p.artifacts, base)
		if err := gen.Run(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
