// Package main is the entry point for the grok CLI.
package main

import (
	"os"

	"github.com/hutchisr/grok/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
