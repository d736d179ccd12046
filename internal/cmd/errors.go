package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg   = color.New(color.FgRed).SprintFunc()
	fixLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	bullet     = color.New(color.FgGreen).SprintFunc()
)

// remediator is implemented by errors that know how they can be fixed
type remediator interface {
	Remediation() []string
}

// formatError renders err with the remediation steps of the first error in
// its chain that has any
func formatError(err error) string {
	var sb strings.Builder
	sb.WriteString(errorLabel("Error"))
	sb.WriteString(": ")
	sb.WriteString(errorMsg(err.Error()))
	sb.WriteString("\n")

	var r remediator
	if errors.As(err, &r) {
		if steps := r.Remediation(); len(steps) > 0 {
			sb.WriteString("\n")
			sb.WriteString(fixLabel("To fix this:"))
			sb.WriteString("\n")
			for _, step := range steps {
				sb.WriteString("  ")
				sb.WriteString(bullet("•"))
				sb.WriteString(" ")
				sb.WriteString(step)
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

func printError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprint(w, formatError(err))
}
