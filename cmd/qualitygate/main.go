// Package main is the entry point for the qualitygate CLI.
package main

import (
	"os"

	"github.com/VillageChief/codescan-sfdx/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
