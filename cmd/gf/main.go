// Package main is the entry point for the gf CLI (alias for globfind).
package main

import (
	"github.com/justrnr500/globfind/internal/cmd"
)

func main() {
	cmd.Execute()
}
