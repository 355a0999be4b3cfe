package cmd

import (
	"fmt"
	"os"

	"github.com/go-kit/log/level"

	"github.com/justrnr500/globfind/internal/config"
	"github.com/justrnr500/globfind/internal/history"
)

// project is the resolved globfind project for the working directory.
// Paths is nil when no .globfind directory was found; Config then holds
// defaults with no excludes and history disabled, so a search outside a
// project sees exactly the excludes given on the command line.
type project struct {
	Config *config.Config
	Paths  *config.Paths
}

// loadProject finds the project root, loads its .env and config, and
// overlays environment variables.
func loadProject() (*project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	p := &project{}
	root, err := config.FindRoot(cwd)
	if err != nil {
		level.Debug(logger).Log("msg", "no project found, using defaults", "cwd", cwd)
		p.Config = config.Default()
		p.Config.Search.Excludes = nil
		p.Config.History.Enabled = false
	} else {
		if err := config.LoadEnv(root); err != nil {
			level.Warn(logger).Log("msg", "could not load env file", "err", err)
		}
		p.Paths = config.ResolvePaths(root)
		cfg, err := config.Load(p.Paths.Config)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		p.Config = cfg
	}

	if err := p.Config.ApplyEnv(); err != nil {
		return nil, err
	}
	return p, nil
}

// getStore opens the history store for the current project.
func getStore() (*history.Store, *config.Paths, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}

	root, err := config.FindRoot(cwd)
	if err != nil {
		return nil, nil, fmt.Errorf("not in a globfind project: run 'globfind init' first")
	}

	paths := config.ResolvePaths(root)
	store, err := history.NewStore(paths.DB, paths.JSONL)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	return store, paths, nil
}
