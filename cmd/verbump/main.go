/*
Package main provides the CLI entry point for verbump.
*/
package main

import (
	"os"

	"github.com/oarkflow/verbump/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
