package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded searches",
	Long: `List searches recorded in this project, newest first.

Examples:
  globfind history
  globfind history --limit 5
  globfind history --json
  globfind history rebuild`,
	RunE: runHistory,
}

var historyRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the history cache from history.jsonl",
	Args:  cobra.NoArgs,
	RunE:  runHistoryRebuild,
}

var (
	historyJSON  bool
	historyLimit int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyRebuildCmd)
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, _, err := getStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"runs":  runs,
			"count": len(runs),
		})
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No searches recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tPATTERN\tMATCHES\tSKIPPED\tEXCLUDES\tROOT")
	fmt.Fprintln(w, "───────\t───────\t───────\t───────\t────────\t────")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Pattern, r.Matches, r.Skipped,
			truncate(strings.Join(r.Excludes, ","), 40), r.Root)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d run(s)\n", len(runs))
	return nil
}

func runHistoryRebuild(cmd *cobra.Command, args []string) error {
	store, _, err := getStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Rebuild()
	if err != nil {
		return fmt.Errorf("rebuild history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Rebuilt history cache (%d runs)\n", n)
	return nil
}

// truncate truncates a string to max runes with ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
