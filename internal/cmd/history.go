package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/oarkflow/verbump/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded release runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.history == nil {
			return fmt.Errorf("release history is disabled")
		}
		runs, err := a.history.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		renderHistory(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failedStyle = cellStyle.Foreground(lipgloss.Color("9"))
)

func renderHistory(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No releases recorded")
		return
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := string(r.Status)
		if r.FailedStep != "" {
			status += " (" + r.FailedStep + ")"
		} else if r.BuildError != "" {
			status += " (build failed)"
		}
		rows = append(rows, []string{
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Kind,
			r.From,
			r.To,
			r.Tag,
			shortCommit(r.Commit),
			status,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DATE", "KIND", "FROM", "TO", "TAG", "COMMIT", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(runs) && runs[row].Status == history.StatusFailed {
				return failedStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func shortCommit(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
