// Package cmd provides the CLI commands for globfind.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"

	"github.com/justrnr500/globfind/internal/config"
	"github.com/justrnr500/globfind/internal/logging"
)

// Version information set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	logLevel  string
	logFormat string

	// logger is set up in PersistentPreRunE; commands may rely on it being non-nil.
	logger log.Logger = log.NewNopLogger()
)

var rootCmd = &cobra.Command{
	Use:   "globfind",
	Short: "Find files by glob, pruning excluded trees",
	Long: `Globfind walks a directory tree and prints every entry whose path,
relative to the search root, matches a glob pattern.

Patterns support *, **, ?, [...] and {a,b}. Hidden entries are matched
like any other, so **/.venv finds virtualenvs at any depth. Entries that
match an --exclude pattern are pruned: they are not reported and their
subtrees are never read.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogger(cmd, nil)
	},
}

// configureLogger builds the logger from, in order of precedence, the
// command-line flags, GLOBFIND_LOG_LEVEL, and the project config.
func configureLogger(cmd *cobra.Command, cfg *config.Config) error {
	lvl, format := logLevel, logFormat
	if lvl == "" {
		lvl = os.Getenv(config.EnvLogLevel)
	}
	if cfg != nil {
		if lvl == "" {
			lvl = cfg.Log.Level
		}
		if !cmd.Flags().Changed("log-format") && cfg.Log.Format != "" {
			format = cfg.Log.Format
		}
	}

	l, err := logging.New(cmd.ErrOrStderr(), format, lvl)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{printf "globfind %s\ncommit: %s\nbuilt: %s\n" .Version "` + Commit + `" "` + BuildDate + `"}}`)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatLogfmt, "Log format: logfmt or json")
}
