// Package main provides the entry point for the efl CLI.
package main

import (
	"os"

	"github.com/endfield-mods/efl/cmd/efl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
