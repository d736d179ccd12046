package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/oarkflow/verbump/internal/builder"
	"github.com/oarkflow/verbump/internal/command"
	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/git"
	"github.com/oarkflow/verbump/internal/history"
	"github.com/oarkflow/verbump/internal/pipeline"
)

// app wires the configuration to the pipeline collaborators
type app struct {
	cfg      *config.Config
	repo     *git.Repository
	history  *history.Store
	pipeline *pipeline.Pipeline
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newApp loads the configuration and opens the repository. withHistory opens
// the history store; it is only needed by commands that record or list runs.
// out receives the pipeline's summary lines.
func newApp(out io.Writer, withHistory bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	runner := command.NewRunner()
	repo, err := git.Open("", git.Options{
		AuthorName:  cfg.Git.AuthorName,
		AuthorEmail: cfg.Git.AuthorEmail,
		Runner:      runner,
	})
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	b, err := builder.New(builder.FromConfig(cfg, cwd, runner))
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, repo: repo}
	deps := pipeline.Deps{VCS: repo, Builder: b, Out: out}

	if withHistory && !cfg.History.Disable {
		store, err := history.Open(historyPath(cfg, repo))
		if err != nil {
			log.Warn("Release history unavailable", "error", err)
		} else {
			a.history = store
			deps.Recorder = store
		}
	}

	a.pipeline = pipeline.New(cfg, cwd, deps)
	return a, nil
}

func historyPath(cfg *config.Config, repo *git.Repository) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return filepath.Join(repo.Root(), ".git", "verbump", "history.db")
}

func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Debug("Failed to close history", "error", err)
		}
	}
}
