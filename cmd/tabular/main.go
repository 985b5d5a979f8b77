// Package main provides the tabular command.
package main

import (
	"os"

	"github.com/vogtb/go-tabular/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
