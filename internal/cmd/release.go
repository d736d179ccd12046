package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oarkflow/verbump/internal/artifact"
	"github.com/oarkflow/verbump/internal/manifest"
	"github.com/oarkflow/verbump/internal/pipeline"
	"github.com/oarkflow/verbump/internal/prompt"
	"github.com/oarkflow/verbump/internal/semver"
)

var kindArgs = []string{"patch", "minor", "major"}

var bumpCmd = &cobra.Command{
	Use:   "bump {patch|minor|major}",
	Short: "Bump the version without building",
	Long: `Bump the version without building release archives.

This runs the tests, checks the current version is tagged, writes the
changelog entry and the new version, then commits and tags the bump.`,
	ValidArgs: kindArgs,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := semver.ParseKind(args[0])
		if err != nil {
			return err
		}
		return runRelease(cmd, pipeline.Options{Kind: kind, SkipBuild: true})
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release [patch|minor|major]",
	Short: "Create a full release",
	Long: `Create a full release by running every step:

  - Run the tests
  - Check the tag of the current version exists
  - Write the changelog entry for the next version
  - Write the next version to the manifest
  - Build release archives (failures are reported, not fatal)
  - Commit and tag the bump

Without an argument the bump kind is chosen interactively.`,
	ValidArgs: kindArgs,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind semver.Kind
		var err error
		if len(args) == 1 {
			kind, err = semver.ParseKind(args[0])
		} else {
			kind, err = choose()
		}
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "ok...maybe later")
			return nil
		}
		if err != nil {
			return err
		}
		return runRelease(cmd, pipeline.Options{Kind: kind})
	},
}

// choose picks the bump kind when none is given
var choose = chooseKind

// chooseKind asks on the terminal which bump to perform
func chooseKind() (semver.Kind, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return 0, fmt.Errorf("a bump kind (patch, minor or major) is required when not running in a terminal")
	}
	cfg, err := loadConfig()
	if err != nil {
		return 0, err
	}
	current, err := manifest.NewStore(cfg.Manifest.File).Current()
	if err != nil {
		return 0, err
	}
	return prompt.Choose(current, os.Stdin, os.Stderr)
}

func runRelease(cmd *cobra.Command, opts pipeline.Options) error {
	a, err := newApp(cmd.OutOrStdout(), true)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.pipeline.Run(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("release failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ %s => %s (tag %s)\n", res.Current, res.Next, res.Tag)
	for _, art := range res.Artifacts {
		if art.Type != artifact.Binary {
			fmt.Fprintf(out, "  %s\n", art.Path)
		}
	}
	if res.BuildErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: build failed: %v\n", res.BuildErr)
	}
	return nil
}

var buildReleaseCmd = &cobra.Command{
	Use:   "build-release",
	Short: "Build release archives for the current version",
	Long: `Build the configured targets for the current version and package each
binary into an archive, without bumping the version.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		arts, err := a.pipeline.Package(cmd.Context())
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		for _, art := range arts {
			if art.Type != artifact.Binary {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", art.Path)
			}
		}
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the branch and the release tag",
	Long:  `Push the current branch and the tag of the current version to the configured remote.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.pipeline.Push(cmd.Context())
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the test suite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.pipeline.Test(cmd.Context())
	},
}
