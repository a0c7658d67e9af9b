// Package main provides the entry point for the filedex CLI.
package main

import (
	"os"

	"github.com/filedex/filedex/cmd/filedex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
