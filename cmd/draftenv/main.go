// Package main provides the entry point for the draftenv CLI.
package main

import (
	"os"

	"github.com/lemberg/draftenv/cmd/draftenv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
