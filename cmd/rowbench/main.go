// Package main provides the rowbench CLI.
package main

import (
	"os"

	"github.com/rowbench/rowbench/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
