// Package main is the entry point for the histmcp CLI and MCP server.
package main

import (
	"os"

	"github.com/runger/histmcp/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
