// Package main provides the dashgen CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/dashgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
