package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/justrnr500/globfind/internal/config"
	"github.com/justrnr500/globfind/internal/history"
	"github.com/justrnr500/globfind/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [pattern] [root]",
	Short: "Search a directory tree by glob",
	Long: `Search root (default ".") for entries whose root-relative path matches
pattern, printing one path per line in depth-first, pre-order.

Inside a project (see 'globfind init'), excludes from the project config
are applied first, then any profile excludes, then --exclude flags. Outside
a project only --exclude flags and GLOBFIND_EXCLUDES apply. An excluded
directory is never read.

With --profile the pattern comes from the named profile and the only
argument is the optional root.

Examples:
  globfind search '**/*.py'
  globfind search '**/*' ~/src/servers -x .git -x '**/node_modules'
  globfind search '**/.venv' --json
  globfind search --profile python src
  globfind search '**/*.go' --gitignore --skipped`,
	Aliases: []string{"s", "find"},
	Args:    cobra.MaximumNArgs(2),
	RunE:    runSearch,
}

var (
	searchExcludes  []string
	searchGitignore bool
	searchProfile   string
	searchJSON      bool
	searchSkipped   bool
	searchNoHistory bool
)

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringArrayVarP(&searchExcludes, "exclude", "x", nil, "Exclude pattern (repeatable)")
	searchCmd.Flags().BoolVar(&searchGitignore, "gitignore", false, "Prune .git and entries ignored by <root>/.gitignore")
	searchCmd.Flags().StringVarP(&searchProfile, "profile", "p", "", "Use a named profile from config")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
	searchCmd.Flags().BoolVar(&searchSkipped, "skipped", false, "Report unreadable entries on stderr")
	searchCmd.Flags().BoolVar(&searchNoHistory, "no-history", false, "Do not record this search")
}

func runSearch(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	if err := configureLogger(cmd, proj.Config); err != nil {
		return err
	}

	q, err := buildQuery(proj.Config, searchProfile, args, searchExcludes)
	if err != nil {
		return err
	}
	q.Gitignore = q.Gitignore || searchGitignore

	startedAt := time.Now()
	s := search.New(search.WithLogger(logger))
	res, err := s.Run(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if proj.Paths != nil && proj.Config.History.Enabled && !searchNoHistory {
		recordRun(proj.Paths, q, res, startedAt)
	}

	if searchSkipped {
		for _, sk := range res.Skipped {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", sk)
		}
	}

	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), q, res)
	}
	writeText(cmd.OutOrStdout(), res)
	return nil
}

// buildQuery resolves the pattern, root and exclude list for a search.
func buildQuery(cfg *config.Config, profile string, args, flagExcludes []string) (search.Query, error) {
	q := search.Query{Root: ".", Gitignore: cfg.Search.Gitignore}
	q.Excludes = append(q.Excludes, cfg.Search.Excludes...)

	if profile != "" {
		p, err := cfg.Profile(profile)
		if err != nil {
			return search.Query{}, err
		}
		if len(args) > 1 {
			return search.Query{}, fmt.Errorf("with --profile, only a root may be given")
		}
		q.Pattern = p.Pattern
		q.Excludes = append(q.Excludes, p.Excludes...)
		if len(args) == 1 {
			q.Root = args[0]
		}
	} else {
		if len(args) == 0 {
			return search.Query{}, fmt.Errorf("a pattern is required (or use --profile)")
		}
		q.Pattern = args[0]
		if len(args) == 2 {
			q.Root = args[1]
		}
	}

	q.Excludes = append(q.Excludes, flagExcludes...)
	return q, nil
}

func recordRun(paths *config.Paths, q search.Query, res *search.Result, startedAt time.Time) {
	store, err := history.NewStore(paths.DB, paths.JSONL)
	if err != nil {
		level.Warn(logger).Log("msg", "could not open history", "err", err)
		return
	}
	defer store.Close()

	run := &history.Run{
		Root:      res.Root,
		Pattern:   q.Pattern,
		Excludes:  q.Excludes,
		Gitignore: q.Gitignore,
		Matches:   len(res.Matches),
		Skipped:   len(res.Skipped),
		Duration:  res.Stats.Duration,
		StartedAt: startedAt,
	}
	if err := store.Record(run); err != nil {
		level.Warn(logger).Log("msg", "could not record search", "err", err)
	}
}

type skippedJSON struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func writeJSON(w io.Writer, q search.Query, res *search.Result) error {
	skipped := make([]skippedJSON, 0, len(res.Skipped))
	for _, sk := range res.Skipped {
		skipped = append(skipped, skippedJSON{Path: sk.Path, Error: sk.Err.Error()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"root":     res.Root,
		"pattern":  q.Pattern,
		"excludes": q.Excludes,
		"matches":  res.Matches,
		"skipped":  skipped,
		"count":    len(res.Matches),
	})
}

func writeText(w io.Writer, res *search.Result) {
	for _, m := range res.Matches {
		fmt.Fprintln(w, m)
	}
}
