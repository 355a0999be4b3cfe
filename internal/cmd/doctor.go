package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justrnr500/globfind/internal/config"
	"github.com/justrnr500/globfind/internal/glob"
	"github.com/justrnr500/globfind/internal/history"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check project health",
	Long: `Run health checks on the globfind project.

Checks:
  - JSONL/SQLite history in sync (run counts and IDs match)
  - Config validity (config.yaml parses)
  - Pattern validity (every configured exclude and profile pattern compiles)`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var doctorJSON bool

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name   string   `json:"name"`
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	store, paths, err := getStore()
	if err != nil {
		return err
	}
	defer store.Close()

	checks := []CheckResult{
		checkHistorySync(store),
	}
	cfg, cfgCheck := checkConfigValidity(paths.Config)
	checks = append(checks, cfgCheck)
	if cfg != nil {
		checks = append(checks, checkPatterns(cfg))
	}

	out := cmd.OutOrStdout()
	if doctorJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(checks)
	}

	allPassed := true
	for _, c := range checks {
		if c.Passed {
			fmt.Fprintf(out, "✓ %s\n", c.Name)
			continue
		}
		allPassed = false
		fmt.Fprintf(out, "✗ %s\n", c.Name)
		for _, issue := range c.Issues {
			fmt.Fprintf(out, "    %s\n", issue)
		}
	}

	if !allPassed {
		return fmt.Errorf("some checks failed")
	}
	return nil
}

func checkHistorySync(store *history.Store) CheckResult {
	name := "JSONL/SQLite history in sync"

	logged, err := store.JSONL().ReadAll()
	if err != nil {
		return CheckResult{Name: name, Issues: []string{fmt.Sprintf("read JSONL: %v", err)}}
	}

	cached, err := store.DB().List(0)
	if err != nil {
		return CheckResult{Name: name, Issues: []string{fmt.Sprintf("list DB: %v", err)}}
	}

	if len(logged) != len(cached) {
		return CheckResult{
			Name:   name,
			Issues: []string{fmt.Sprintf("count mismatch: JSONL=%d, SQLite=%d (run 'globfind history rebuild')", len(logged), len(cached))},
		}
	}

	ids := make(map[string]bool, len(logged))
	for _, r := range logged {
		ids[r.ID] = true
	}
	var missing []string
	for _, r := range cached {
		if !ids[r.ID] {
			missing = append(missing, r.ID)
		}
	}
	if len(missing) > 0 {
		return CheckResult{
			Name:   name,
			Issues: []string{fmt.Sprintf("in SQLite but not JSONL: %v", missing)},
		}
	}

	return CheckResult{Name: fmt.Sprintf("%s (%d runs)", name, len(cached)), Passed: true}
}

func checkConfigValidity(path string) (*config.Config, CheckResult) {
	name := "Config valid"
	cfg, err := config.Load(path)
	if err != nil {
		return nil, CheckResult{Name: name, Issues: []string{err.Error()}}
	}
	return cfg, CheckResult{Name: name, Passed: true}
}

func checkPatterns(cfg *config.Config) CheckResult {
	name := "Patterns valid"
	var issues []string

	for _, p := range cfg.Search.Excludes {
		if err := glob.Validate(p); err != nil {
			issues = append(issues, fmt.Sprintf("search.excludes: %v", err))
		}
	}
	for profName, prof := range cfg.Profiles {
		for _, p := range append([]string{prof.Pattern}, prof.Excludes...) {
			if err := glob.Validate(p); err != nil {
				issues = append(issues, fmt.Sprintf("profiles.%s: %v", profName, err))
			}
		}
	}

	return CheckResult{Name: name, Passed: len(issues) == 0, Issues: issues}
}
