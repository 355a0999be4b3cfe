// Package main is the entry point for the globfind CLI.
package main

import (
	"github.com/justrnr500/globfind/internal/cmd"
)

func main() {
	cmd.Execute()
}
