/*
Package changelog provides changelog generation for verbump.

An entry is built from the commit messages since the previous release and spliced
into the changelog document directly below its "# Changelog" heading, so the most
recent release is always listed first.
*/
package changelog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/oarkflow/verbump/internal/semver"
)

// Heading is the anchor line new entries are inserted below
const Heading = "# Changelog"

// DefaultDateFormat renders dates as mm/dd/yyyy
const DefaultDateFormat = "01/02/2006"

// ErrAnchorNotFound is returned when the document has no changelog heading
var ErrAnchorNotFound = errors.New("changelog heading not found")

// AnchorNotFoundError names the document that lacks the heading
type AnchorNotFoundError struct {
	Document string
}

func (e *AnchorNotFoundError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("no %q line found", Heading)
	}
	return fmt.Sprintf("no %q line found in %s", Heading, e.Document)
}

// Unwrap allows errors.Is(err, ErrAnchorNotFound)
func (e *AnchorNotFoundError) Unwrap() error {
	return ErrAnchorNotFound
}

// Remediation tells the operator how to fix the document
func (e *AnchorNotFoundError) Remediation() []string {
	return []string{fmt.Sprintf("add a line containing exactly %q to the changelog document", Heading)}
}

// LogSource retrieves commit messages for the range (from, to]
type LogSource interface {
	LogMessages(ctx context.Context, from, to string) (iter.Seq[string], error)
}

// Collect returns the raw message lines between fromTag (exclusive) and toRef
// (inclusive). The sequence can be ranged over once.
func Collect(ctx context.Context, src LogSource, fromTag, toRef string) (iter.Seq[string], error) {
	lines, err := src.LogMessages(ctx, fromTag, toRef)
	if err != nil {
		return nil, fmt.Errorf("failed to get commits: %w", err)
	}
	return lines, nil
}

// Entry is one rendered release section. It cannot be changed once built.
type Entry struct {
	version string
	date    string
	lines   []string
}

// BuildEntry drops blank messages and renders the rest as bullets
func BuildEntry(version semver.Version, messages iter.Seq[string], date string) Entry {
	e := Entry{version: version.String(), date: date}
	if messages == nil {
		return e
	}
	for msg := range messages {
		msg = strings.TrimRight(msg, " \t\r")
		if strings.TrimSpace(msg) == "" {
			continue
		}
		e.lines = append(e.lines, msg)
	}
	return e
}

// FormatDate renders t with layout, falling back to DefaultDateFormat
func FormatDate(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultDateFormat
	}
	return t.Format(layout)
}

// Version returns the entry's version label
func (e Entry) Version() string { return e.version }

// Date returns the entry's date stamp
func (e Entry) Date() string { return e.date }

// Lines returns a copy of the entry's messages
func (e Entry) Lines() []string {
	out := make([]string, len(e.lines))
	copy(out, e.lines)
	return out
}

// Header returns the "### [version] - date" line
func (e Entry) Header() string {
	return fmt.Sprintf("### [%s] - %s", e.version, e.date)
}

// String renders the header followed by one bullet per message
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Header())
	for _, line := range e.lines {
		b.WriteString("\n  * ")
		b.WriteString(line)
	}
	return b.String()
}

// Splice inserts entry directly below the first heading line of document
func Splice(document string, entry Entry) (string, error) {
	lines := strings.Split(document, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, " \t\r") != Heading {
			continue
		}
		eol := line[len(strings.TrimRight(line, "\r")):]
		lines[i] = Heading + eol + "\n" + eol + "\n" + strings.ReplaceAll(entry.String(), "\n", eol+"\n") + eol
		return strings.Join(lines, "\n"), nil
	}
	return "", &AnchorNotFoundError{}
}

// Document is a changelog file on disk
type Document struct {
	Path string
}

// NewDocument creates a document for path
func NewDocument(path string) *Document {
	return &Document{Path: path}
}

// Insert splices entry into the file
func (d *Document) Insert(entry Entry) error {
	info, err := os.Stat(d.Path)
	if err != nil {
		return fmt.Errorf("failed to stat changelog: %w", err)
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return fmt.Errorf("failed to read changelog: %w", err)
	}

	updated, err := Splice(string(data), entry)
	if err != nil {
		var anchorErr *AnchorNotFoundError
		if errors.As(err, &anchorErr) {
			anchorErr.Document = d.Path
		}
		return err
	}

	if err := os.WriteFile(d.Path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write changelog: %w", err)
	}
	return nil
}
