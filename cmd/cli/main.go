// Package main is the entry point for the building-cost CLI.
package main

import (
	"os"

	"building-cost/cmd/cli/cmd"
	"building-cost/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
