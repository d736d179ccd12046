/*
Package cmd provides the CLI commands for verbump.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	workDir string
	verbose bool
	debug   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "verbump",
	Short: "Version bump and release tool",
	Long: `verbump bumps the semantic version of a project, writes a changelog entry
from the commits since the last release, commits and tags the bump, and
builds release archives.

Example:
  verbump release minor     # Test, bump, changelog, build, commit and tag
  verbump bump patch        # Same without the build
  verbump build-release     # Build archives for the current version
  verbump push              # Push the branch and the release tag
  verbump changelog         # Preview the next changelog entry`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if workDir == "" {
			return nil
		}
		if err := os.Chdir(workDir); err != nil {
			return fmt.Errorf("failed to change directory: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Failures are printed to stderr with any remediation the error carries.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .verbump.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", "run as if started in this directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")

	// Add subcommands
	rootCmd.AddCommand(bumpCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(buildReleaseCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func initConfig() {
	if debug {
		log.SetLevel(log.DebugLevel)
	} else if verbose {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}
