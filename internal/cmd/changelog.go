package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/verbump/internal/semver"
)

var changelogFormat string

var changelogCmd = &cobra.Command{
	Use:   "changelog [patch|minor|major]",
	Short: "Preview the next changelog entry",
	Long: `Preview the changelog entry the next release would write, built from the
commits since the tag of the current version. Nothing is written.

The bump kind defaults to minor.`,
	ValidArgs: kindArgs,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := semver.Minor
		if len(args) == 1 {
			var err error
			if kind, err = semver.ParseKind(args[0]); err != nil {
				return err
			}
		}

		a, err := newApp(cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.pipeline.Preview(cmd.Context(), kind)
		if err != nil {
			return fmt.Errorf("failed to generate changelog: %w", err)
		}
		out, err := res.Entry.Format(changelogFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	changelogCmd.Flags().StringVarP(&changelogFormat, "format", "f", "markdown", "output format (markdown, json, yaml)")
}
