// Package main is the entry point for the netwatchctl admin tool.
package main

import (
	"os"

	"github.com/good-yellow-bee/netwatch/cmd/netwatchctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
