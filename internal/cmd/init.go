package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justrnr500/globfind/internal/config"
	"github.com/justrnr500/globfind/internal/history"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a globfind project",
	Long: `Initialize a globfind project in the current directory.

This creates a .globfind/ directory with:
  - config.yaml    Default excludes, profiles and history settings
  - history.jsonl  Recorded searches (git-tracked)
  - history.db     SQLite cache (gitignored)
  - .gitignore     Ignores the database file`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initQuiet bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initQuiet, "quiet", "q", false, "Suppress output")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	out := cmd.OutOrStdout()
	say := func(a ...interface{}) {
		if !initQuiet {
			fmt.Fprintln(out, a...)
		}
	}

	if config.Exists(cwd) {
		say("Already initialized in", filepath.Join(cwd, config.DirName))
		return nil
	}

	paths := config.ResolvePaths(cwd)
	if err := os.MkdirAll(paths.Root, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", paths.Root, err)
	}
	say("✓ Created", paths.Root)

	if err := config.Default().Save(paths.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	say("✓ Created", config.ConfigFile)

	db, err := history.OpenDB(paths.DB)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	db.Close()
	say("✓ Initialized SQLite database")

	if err := os.WriteFile(paths.JSONL, []byte{}, 0644); err != nil {
		return fmt.Errorf("create jsonl file: %w", err)
	}
	say("✓ Created", config.JSONLFile)

	gitignore := `# globfind - SQLite database (local cache, rebuilt from jsonl)
history.db
history.db-shm
history.db-wal
`
	if err := os.WriteFile(filepath.Join(paths.Root, config.GitIgnoreFile), []byte(gitignore), 0644); err != nil {
		return fmt.Errorf("create gitignore: %w", err)
	}
	say("✓ Created .gitignore")

	// .env may hold GLOBFIND_* overrides that are local to a machine
	ensureGitignoreEntry(filepath.Join(cwd, ".gitignore"), config.EnvFile)

	say("\nReady. Try:")
	say("  globfind search '**/*.go'")
	return nil
}

// ensureGitignoreEntry ensures that the given entry exists in the gitignore file
// at path. If the file does not exist, it is created. If the entry already
// exists (compared after trimming whitespace), no changes are made.
func ensureGitignoreEntry(path, entry string) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	os.WriteFile(path, []byte(content), 0644)
}
