// Package main is the entry point for the nekretnine CLI.
package main

import (
	"os"

	"github.com/nyka2002/nekretnine-search/cmd/nekretnine/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
