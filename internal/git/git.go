/*
Package git provides the version-control operations verbump needs.

Local operations (log, tags, staging, commits) use go-git so no git binary is
required for them. Pushing shells out to git so the user's credential helpers and
SSH agent are honoured.
*/
package git

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/oarkflow/verbump/internal/command"
)

// Options configures a Repository
type Options struct {
	// AuthorName and AuthorEmail override the git config identity for commits
	AuthorName  string
	AuthorEmail string

	// Runner executes git for pushes
	Runner *command.Runner

	// Now stamps commit signatures
	Now func() time.Time
}

// Repository wraps a git working tree
type Repository struct {
	repo    *git.Repository
	root    string
	options Options
}

// Open opens the repository containing dir
func Open(dir string, opts Options) (*Repository, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	if opts.Runner == nil {
		opts.Runner = command.NewRunner()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	root := wt.Filesystem.Root()
	log.Debug("Opened repository", "root", root)
	return &Repository{repo: repo, root: root, options: opts}, nil
}

// Root returns the worktree root directory
func (r *Repository) Root() string {
	return r.root
}

// resolve turns a tag, branch or revision into a commit hash, peeling annotated tags
func (r *Repository) resolve(rev string) (plumbing.Hash, error) {
	if ref, err := r.repo.Tag(rev); err == nil {
		if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
			c, err := tagObj.Commit()
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("tag %s does not point to a commit: %w", rev, err)
			}
			return c.Hash, nil
		}
		return ref.Hash(), nil
	}

	h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return *h, nil
}

// reachable collects every commit reachable from h
func (r *Repository) reachable(h plumbing.Hash) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	it, err := r.repo.Log(&git.LogOptions{From: h})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	err = it.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	return seen, err
}

// LogMessages returns the message lines of every commit reachable from to but not
// from from, newest first, as `git log --format=%B from..to` would. An empty from
// means the whole history. The walk completes before returning, so a missing or
// corrupt object is reported here rather than truncating the sequence. The
// sequence can be ranged over once.
func (r *Repository) LogMessages(ctx context.Context, from, to string) (iter.Seq[string], error) {
	if to == "" {
		to = "HEAD"
	}
	toHash, err := r.resolve(to)
	if err != nil {
		return nil, err
	}

	exclude := map[plumbing.Hash]bool{}
	if from != "" {
		fromHash, err := r.resolve(from)
		if err != nil {
			return nil, err
		}
		if exclude, err = r.reachable(fromHash); err != nil {
			return nil, fmt.Errorf("failed to walk history from %s: %w", from, err)
		}
	}

	commits, err := r.repo.Log(&git.LogOptions{From: toHash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer commits.Close()

	var lines []string
	err = commits.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !exclude[c.Hash] {
			lines = append(lines, strings.Split(strings.TrimRight(c.Message, "\n"), "\n")...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read log %s..%s: %w", from, to, err)
	}
	log.Debug("Read git log", "from", from, "to", to, "lines", len(lines))

	consumed := false
	return func(yield func(string) bool) {
		if consumed {
			return
		}
		consumed = true
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}, nil
}

// TagExists reports whether a tag with the given name exists
func (r *Repository) TagExists(ctx context.Context, name string) (bool, error) {
	_, err := r.repo.Tag(name)
	if errors.Is(err, git.ErrTagNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up tag %s: %w", name, err)
	}
	return true, nil
}

// StageAll stages every change in the worktree, like `git add -A`. Paths under
// any of the exclude directories (absolute or relative to the root) are left
// unstaged.
func (r *Repository) StageAll(ctx context.Context, exclude ...string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	if len(exclude) == 0 {
		if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
			return fmt.Errorf("failed to stage changes: %w", err)
		}
		return nil
	}

	prefixes := r.relativePrefixes(exclude)
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	for path, st := range status {
		if st.Worktree == git.Unmodified {
			continue
		}
		if slices.ContainsFunc(prefixes, func(p string) bool { return path == p || strings.HasPrefix(path, p+"/") }) {
			log.Debug("Not staging", "path", path)
			continue
		}
		if st.Worktree == git.Deleted {
			_, err = wt.Remove(path)
		} else {
			_, err = wt.Add(path)
		}
		if err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
	}
	return nil
}

// relativePrefixes turns dirs into slash separated paths relative to the root,
// dropping any that lie outside the worktree
func (r *Repository) relativePrefixes(dirs []string) []string {
	var out []string
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if filepath.IsAbs(d) {
			rel, err := filepath.Rel(r.root, d)
			if err != nil {
				continue
			}
			d = rel
		}
		d = filepath.ToSlash(filepath.Clean(d))
		if d == "." || d == ".." || strings.HasPrefix(d, "../") {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Commit records the staged changes and returns the new commit hash
func (r *Repository) Commit(ctx context.Context, message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}

	opts := &git.CommitOptions{}
	if r.options.AuthorName != "" {
		sig := &object.Signature{
			Name:  r.options.AuthorName,
			Email: r.options.AuthorEmail,
			When:  r.options.Now(),
		}
		opts.Author = sig
		opts.Committer = sig
	}

	h, err := wt.Commit(message, opts)
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	log.Debug("Created commit", "hash", h.String())
	return h.String(), nil
}

// CreateTag creates a lightweight tag at HEAD
func (r *Repository) CreateTag(ctx context.Context, name string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD reference: %w", err)
	}
	if _, err := r.repo.CreateTag(name, head.Hash(), nil); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	log.Debug("Created tag", "name", name, "commit", head.Hash().String())
	return nil
}

// Branch returns the current branch name, or "" on a detached HEAD
func (r *Repository) Branch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// Push pushes refs to remote. With no refs the current branch is pushed.
func (r *Repository) Push(ctx context.Context, remote string, refs ...string) error {
	args := append([]string{"push", remote}, refs...)
	_, err := r.options.Runner.Run(ctx, command.Spec{Name: "git", Args: args, Dir: r.root, Stream: true})
	return err
}
