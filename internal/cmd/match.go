package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justrnr500/globfind/internal/glob"
)

var matchCmd = &cobra.Command{
	Use:   "match <pattern> <path>...",
	Short: "Test paths against a pattern without touching the filesystem",
	Long: `Report whether each path matches pattern, using the same rules as search.

Useful for checking an --exclude pattern before running a search. A
trailing slash on a path does not change the result.

Examples:
  globfind match '**/__init__.py' src/filesystem/__init__.py __init__.py
  globfind match '**/.venv' .venv/ sub/.venv`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	if err := glob.Validate(pattern); err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, p := range args[1:] {
		matched, err := glob.Match(pattern, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%v\n", p, pattern, matched)
	}
	return w.Flush()
}
