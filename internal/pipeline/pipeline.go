/*
Package pipeline provides the release pipeline orchestration for verbump.

A release runs a fixed sequence of steps:

	RunTests → AssertPriorTag → GenerateChangelog → PersistVersion → Build → CommitAndTag

Any step failing stops the run, except Build whose failure is reported and the
bump is still committed and tagged. A bare bump skips Build.
*/
package pipeline

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/oarkflow/verbump/internal/artifact"
	"github.com/oarkflow/verbump/internal/changelog"
	"github.com/oarkflow/verbump/internal/config"
	"github.com/oarkflow/verbump/internal/history"
	"github.com/oarkflow/verbump/internal/manifest"
	"github.com/oarkflow/verbump/internal/semver"
	"github.com/oarkflow/verbump/internal/tmpl"
)

const tracerName = "github.com/oarkflow/verbump/internal/pipeline"

// VCS is the version-control collaborator
type VCS interface {
	LogMessages(ctx context.Context, from, to string) (iter.Seq[string], error)
	TagExists(ctx context.Context, name string) (bool, error)
	StageAll(ctx context.Context, exclude ...string) error
	Commit(ctx context.Context, message string) (string, error)
	CreateTag(ctx context.Context, name string) error
	Branch() (string, error)
	Push(ctx context.Context, remote string, refs ...string) error
}

// Builder runs the test suite and release builds
type Builder interface {
	Test(ctx context.Context) error
	Build(ctx context.Context, target config.Target, tmplCtx *tmpl.Context) (artifact.Artifact, error)
}

// Recorder stores finished runs
type Recorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Deps are the collaborators a pipeline drives
type Deps struct {
	VCS     VCS
	Builder Builder

	// Recorder is optional
	Recorder Recorder

	// Out receives the undo hint; defaults to stdout
	Out io.Writer

	// Now stamps changelog entries; defaults to time.Now
	Now func() time.Time
}

// Options selects what a run does
type Options struct {
	Kind semver.Kind

	// SkipBuild performs a bare bump
	SkipBuild bool
}

// Result describes a run
type Result struct {
	Kind    semver.Kind
	Current semver.Version
	Next    semver.Version

	// Tag created for Next
	Tag string

	// Commit hash of the bump commit
	Commit string

	Entry changelog.Entry

	// Steps that ran, in order
	Steps []Step

	// FailedStep is StepNone on success
	FailedStep Step

	// BuildErr is the non-fatal Build failure
	BuildErr error

	// Artifacts produced by Build
	Artifacts []artifact.Artifact
}

// Pipeline orchestrates the release process
type Pipeline struct {
	config      *config.Config
	vcs         VCS
	builder     Builder
	recorder    Recorder
	manifest    *manifest.Store
	changelog   *changelog.Document
	templateCtx *tmpl.Context
	artifacts   *artifact.Manager
	distDir     string
	out         io.Writer
	now         func() time.Time
	tracer      trace.Tracer
}

// New creates a pipeline for the project rooted at dir
func New(cfg *config.Config, dir string, deps Deps) *Pipeline {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Pipeline{
		config:      cfg,
		vcs:         deps.VCS,
		builder:     deps.Builder,
		recorder:    deps.Recorder,
		manifest:    manifest.NewStore(resolve(dir, cfg.Manifest.File)),
		changelog:   changelog.NewDocument(resolve(dir, cfg.Changelog.File)),
		templateCtx: tmpl.New(cfg),
		artifacts:   artifact.NewManager(),
		distDir:     resolve(dir, cfg.Dist),
		out:         deps.Out,
		now:         deps.Now,
		tracer:      otel.Tracer(tracerName),
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Run executes the release steps for opts.Kind
func (p *Pipeline) Run(ctx context.Context, opts Options) (res *Result, err error) {
	ctx, span := p.tracer.Start(ctx, "release", trace.WithAttributes(
		attribute.String("kind", opts.Kind.String()),
		attribute.Bool("skip_build", opts.SkipBuild),
	))
	defer func() {
		endSpan(span, err)
		p.record(ctx, res, err)
	}()

	res = &Result{Kind: opts.Kind}
	log.Info("Starting release", "project", p.config.ProjectName, "kind", opts.Kind)

	if err := p.step(ctx, res, StepRunTests, p.builder.Test); err != nil {
		return res, err
	}

	var previousTag string
	if err := p.step(ctx, res, StepAssertPriorTag, func(ctx context.Context) error {
		current, tag, err := p.priorRelease(ctx)
		if err != nil {
			return err
		}
		res.Current = current
		if res.Next, err = current.Bump(opts.Kind); err != nil {
			return err
		}
		previousTag = tag
		log.Info("Bumping version", "from", res.Current, "to", res.Next)
		return nil
	}); err != nil {
		return res, err
	}

	if err := p.step(ctx, res, StepGenerateChangelog, func(ctx context.Context) error {
		entry, err := p.entry(ctx, previousTag, res.Next)
		if err != nil {
			return err
		}
		if err := p.changelog.Insert(entry); err != nil {
			return err
		}
		res.Entry = entry
		log.Info("Updated changelog", "file", p.changelog.Path, "lines", len(entry.Lines()))
		return nil
	}); err != nil {
		return res, err
	}

	if err := p.step(ctx, res, StepPersistVersion, func(ctx context.Context) error {
		return p.manifest.Write(res.Next)
	}); err != nil {
		return res, err
	}

	if !opts.SkipBuild {
		// Build failures are reported, never fatal
		_ = p.step(ctx, res, StepBuild, func(ctx context.Context) error {
			if err := p.build(ctx, res.Next); err != nil {
				res.BuildErr = err
				log.Error("Build failed, continuing with commit and tag", "error", err)
				span := trace.SpanFromContext(ctx)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			res.Artifacts = p.artifacts.List()
			return nil
		})
	}

	if err := p.step(ctx, res, StepCommitAndTag, func(ctx context.Context) error {
		return p.commitAndTag(ctx, res)
	}); err != nil {
		return res, err
	}

	log.Info("Release complete", "version", res.Next, "tag", res.Tag)
	return res, nil
}

// step runs fn in its own span and tracks progress on res
func (p *Pipeline) step(ctx context.Context, res *Result, s Step, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, s.String())
	log.Debug("Running step", "step", s)

	res.Steps = append(res.Steps, s)
	err := fn(ctx)
	endSpan(span, err)
	if err != nil {
		res.FailedStep = s
		return &StepError{Step: s, Err: err}
	}
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// priorRelease reads the current version and checks its tag exists
func (p *Pipeline) priorRelease(ctx context.Context) (semver.Version, string, error) {
	current, err := p.manifest.Current()
	if err != nil {
		return semver.Version{}, "", err
	}

	tag, err := p.templateCtx.WithVersion(current).Apply(p.config.Git.PreviousTag)
	if err != nil {
		return semver.Version{}, "", fmt.Errorf("failed to apply previous tag template: %w", err)
	}

	exists, err := p.vcs.TagExists(ctx, tag)
	if err != nil {
		return semver.Version{}, "", err
	}
	if !exists {
		return semver.Version{}, "", &MissingTagError{Tag: tag, Version: current}
	}
	return current, tag, nil
}

// entry builds the changelog entry for next from the commits since previousTag
func (p *Pipeline) entry(ctx context.Context, previousTag string, next semver.Version) (changelog.Entry, error) {
	messages, err := changelog.Collect(ctx, p.vcs, previousTag, "HEAD")
	if err != nil {
		return changelog.Entry{}, fmt.Errorf("failed to collect commit messages: %w", err)
	}
	date := changelog.FormatDate(p.now(), p.config.Changelog.DateFormat)
	return changelog.BuildEntry(next, messages, date), nil
}

func (p *Pipeline) commitAndTag(ctx context.Context, res *Result) error {
	bump := p.templateCtx.WithBump(res.Current, res.Next)
	message, err := bump.Apply(p.config.Git.CommitMessage)
	if err != nil {
		return fmt.Errorf("failed to apply commit message template: %w", err)
	}
	tag, err := bump.Apply(p.config.Git.Tag)
	if err != nil {
		return fmt.Errorf("failed to apply tag template: %w", err)
	}

	if err := p.vcs.StageAll(ctx, p.distDir); err != nil {
		return err
	}
	hash, err := p.vcs.Commit(ctx, message)
	if err != nil {
		return err
	}
	res.Commit = hash

	if err := p.vcs.CreateTag(ctx, tag); err != nil {
		return err
	}
	res.Tag = tag

	hint := UndoHint(tag)
	log.Info("Committed and tagged", "commit", shortHash(hash), "tag", tag)
	log.Info("To undo", "cmd", hint)
	fmt.Fprintf(p.out, "Tagged %s. To undo: %s\n", tag, hint)
	return nil
}

// UndoHint is the command that reverts a bump commit and its tag
func UndoHint(tag string) string {
	return fmt.Sprintf("git reset --hard HEAD~1 && git tag -d %s", tag)
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// Package builds and archives the current version without bumping it
func (p *Pipeline) Package(ctx context.Context) (arts []artifact.Artifact, err error) {
	ctx, span := p.tracer.Start(ctx, StepBuild.String())
	defer func() { endSpan(span, err) }()

	current, err := p.manifest.Current()
	if err != nil {
		return nil, err
	}
	log.Info("Building release", "version", current)
	if err := p.build(ctx, current); err != nil {
		return p.artifacts.List(), err
	}
	return p.artifacts.List(), nil
}

// Push pushes the current branch and the tag of the current version
func (p *Pipeline) Push(ctx context.Context) (err error) {
	ctx, span := p.tracer.Start(ctx, "push")
	defer func() { endSpan(span, err) }()

	current, err := p.manifest.Current()
	if err != nil {
		return err
	}
	tag, err := p.templateCtx.WithVersion(current).Apply(p.config.Git.PreviousTag)
	if err != nil {
		return fmt.Errorf("failed to apply previous tag template: %w", err)
	}
	exists, err := p.vcs.TagExists(ctx, tag)
	if err != nil {
		return err
	}
	if !exists {
		return &MissingTagError{Tag: tag, Version: current}
	}

	branch, err := p.vcs.Branch()
	if err != nil {
		return err
	}
	if branch == "" {
		return fmt.Errorf("cannot push from a detached HEAD")
	}

	remote := p.config.Git.Remote
	log.Info("Pushing", "remote", remote, "branch", branch, "tag", tag)
	if err := p.vcs.Push(ctx, remote, branch); err != nil {
		return err
	}
	return p.vcs.Push(ctx, remote, tag)
}

// Preview computes the next version and its changelog entry without writing anything
func (p *Pipeline) Preview(ctx context.Context, kind semver.Kind) (*Result, error) {
	current, previousTag, err := p.priorRelease(ctx)
	if err != nil {
		return nil, err
	}
	next, err := current.Bump(kind)
	if err != nil {
		return nil, err
	}
	entry, err := p.entry(ctx, previousTag, next)
	if err != nil {
		return nil, err
	}

	tag, err := p.templateCtx.WithBump(current, next).Apply(p.config.Git.Tag)
	if err != nil {
		return nil, fmt.Errorf("failed to apply tag template: %w", err)
	}
	return &Result{Kind: kind, Current: current, Next: next, Tag: tag, Entry: entry}, nil
}

// Test runs the test collaborator on its own
func (p *Pipeline) Test(ctx context.Context) (err error) {
	ctx, span := p.tracer.Start(ctx, StepRunTests.String())
	defer func() { endSpan(span, err) }()
	return p.builder.Test(ctx)
}

// record appends the finished run to the history; failures only warn
func (p *Pipeline) record(ctx context.Context, res *Result, runErr error) {
	if p.recorder == nil || res == nil {
		return
	}

	run := history.Run{
		Kind:   res.Kind.String(),
		From:   versionOrEmpty(res.Current, res.FailedStep, StepAssertPriorTag),
		To:     versionOrEmpty(res.Next, res.FailedStep, StepAssertPriorTag),
		Tag:    res.Tag,
		Commit: res.Commit,
		Status: history.StatusSuccess,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.FailedStep = res.FailedStep.String()
		run.Error = runErr.Error()
	}
	if res.BuildErr != nil {
		run.BuildError = res.BuildErr.Error()
	}

	if _, err := p.recorder.Record(ctx, run); err != nil {
		log.Warn("Failed to record release history", "error", err)
	}
}

// versionOrEmpty hides versions that were never determined
func versionOrEmpty(v semver.Version, failed, determinedBy Step) string {
	if failed != StepNone && failed <= determinedBy {
		return ""
	}
	return v.String()
}
