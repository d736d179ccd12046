/*
Package verbump is a release tool for compiled-binary projects.

A release bumps the semantic version declared in the project manifest, adds a
changelog entry built from the commits since the previous release, builds and
archives the release binaries, then commits and tags the bump.

# Configuration

verbump reads .verbump.yaml from the working directory. Every setting has a
default, so a Rust project with a Cargo.toml and a README.md holding a
"# Changelog" heading needs no configuration file at all. Settings can also be
given as VERBUMP_* environment variables.

# Usage

	verbump release minor     # Test, bump, changelog, build, commit and tag
	verbump bump patch        # Same without the build
	verbump build-release     # Build archives for the current version
	verbump push              # Push the branch and the release tag
	verbump changelog         # Preview the next changelog entry
	verbump history           # List recorded release runs
*/
package verbump

// Version is the current version of verbump, overridable with
// -ldflags "-X github.com/oarkflow/verbump.Version=..."
var Version = "0.1.0"

// BuildDate is set at build time
var BuildDate string

// GitCommit is set at build time
var GitCommit string
