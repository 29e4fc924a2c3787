// Package main provides the cubeql command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/grafana/grafana-cube-datasource/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
