// Package main provides the entry point for the deckforge CLI.
package main

import (
	"os"

	"github.com/deckforge/deckforge/cmd/deckforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
