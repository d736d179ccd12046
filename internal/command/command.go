// Package command runs the external processes verbump drives: test suites, builds
// and git pushes. Calls block until the process exits; there is no timeout.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

// ErrProcess is the sentinel wrapped by every ProcessError
var ErrProcess = errors.New("external process failed")

// ProcessError reports a command that could not start or exited non-zero
type ProcessError struct {
	Cmd      string
	ExitCode int
	Output   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("command %q failed", e.Cmd)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + lastLines(out, 20)
	}
	return msg
}

// Unwrap allows errors.Is(err, ErrProcess)
func (e *ProcessError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProcess}
	}
	return []error{ErrProcess, e.Err}
}

func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

// Spec describes one process invocation
type Spec struct {
	// Name is the executable, or the whole command line when Shell is set
	Name string

	// Args are passed to Name
	Args []string

	// Dir is the working directory
	Dir string

	// Env is appended to the current environment
	Env []string

	// Shell runs Name through the user's shell
	Shell bool

	// Stream sends output to the terminal instead of capturing it
	Stream bool
}

// String returns the command line
func (s Spec) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	return s.Name + " " + strings.Join(s.Args, " ")
}

// Parse splits a command line into a Spec. Lines using shell syntax run through the shell.
func Parse(line string) Spec {
	line = strings.TrimSpace(line)
	if strings.ContainsAny(line, "|&;<>()$`'\"*?") {
		return Spec{Name: line, Shell: true}
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Spec{}
	}
	return Spec{Name: parts[0], Args: parts[1:]}
}

// Runner executes processes
type Runner struct {
	// Stdout and Stderr receive streamed output
	Stdout io.Writer
	Stderr io.Writer

	// Spinner shows progress for captured commands on a terminal
	Spinner bool
}

// NewRunner creates a runner writing to the process's stdout and stderr
func NewRunner() *Runner {
	return &Runner{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Spinner: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Run executes spec and returns its combined output when captured
func (r *Runner) Run(ctx context.Context, spec Spec) (string, error) {
	if spec.Name == "" {
		return "", nil
	}

	c := r.command(ctx, spec)
	log.Debug("Running command", "cmd", spec.String(), "dir", spec.Dir)

	var buf bytes.Buffer
	if spec.Stream {
		c.Stdout = r.Stdout
		c.Stderr = r.Stderr
	} else {
		c.Stdout = &buf
		c.Stderr = &buf
		if r.Spinner {
			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(r.Stderr))
			s.Suffix = " " + spec.String()
			s.Start()
			defer s.Stop()
		}
	}

	if err := c.Run(); err != nil {
		pe := &ProcessError{Cmd: spec.String(), Output: buf.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			pe.ExitCode = exitErr.ExitCode()
		}
		return buf.String(), pe
	}

	return buf.String(), nil
}

func (r *Runner) command(ctx context.Context, spec Spec) *exec.Cmd {
	var c *exec.Cmd
	if spec.Shell {
		line := spec.String()
		if runtime.GOOS == "windows" {
			c = exec.CommandContext(ctx, "cmd", "/C", line)
		} else {
			shellPath := os.Getenv("SHELL")
			if shellPath == "" {
				shellPath = "/bin/sh"
			}
			c = exec.CommandContext(ctx, shellPath, "-c", line)
		}
	} else {
		c = exec.CommandContext(ctx, spec.Name, spec.Args...)
	}
	c.Dir = spec.Dir
	c.Env = append(os.Environ(), spec.Env...)
	return c
}
