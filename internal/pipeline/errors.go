package pipeline

import (
	"errors"
	"fmt"

	"github.com/oarkflow/verbump/internal/semver"
)

// ErrMissingTag is returned when the current version was never tagged
var ErrMissingTag = errors.New("tag for current version not found")

// MissingTagError names the tag the current version should have
type MissingTagError struct {
	Tag     string
	Version semver.Version
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("tag %q for current version %s not found", e.Tag, e.Version)
}

// Unwrap allows errors.Is(err, ErrMissingTag)
func (e *MissingTagError) Unwrap() error {
	return ErrMissingTag
}

// Remediation tells the operator how to restore the tag
func (e *MissingTagError) Remediation() []string {
	return []string{
		fmt.Sprintf("tag the commit that released %s: git tag %s <commit>", e.Version, e.Tag),
		"or correct the version declared in the manifest",
	}
}

// StepError reports which step stopped a run
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
