// Package cmd wires the docscore CLI: score, batch, serve, mcp, and
// version subcommands over one shared config and engine setup.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docscore/docscore/internal/cache"
	"github.com/docscore/docscore/internal/config"
	"github.com/docscore/docscore/internal/engine"
	"github.com/docscore/docscore/internal/ui"
)

var (
	// Global flags
	verbose bool
	format  string
	cfgPath string
	offline bool
	noCache bool
)

// Loaded once in the persistent pre-run; shared by all subcommands.
var (
	cfg   *config.Config
	appUI *ui.UI
)

var RootCmd = &cobra.Command{
	Use:   "docscore",
	Short: "Score documentation pages for AI-friendliness",
	Long: `docscore analyzes a documentation page and scores how well an AI
agent could follow it: structure, outcome clarity, terminology
consistency, permission context, and reliance on text over
screenshots.

Rule-based checks always run. When an Anthropic API key is configured,
a semantic pass scores the criteria that need reading comprehension;
without one those categories are estimated from heuristics and
excluded from the composite score.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	RootCmd.PersistentFlags().StringVarP(&format, "format", "f", "terminal", "Output format (terminal, json, markdown, csv)")
	RootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	RootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Skip the semantic pass (heuristic estimates only)")
	RootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Bypass the result cache")
}

func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if offline {
		cfg.Semantic.APIKey = ""
	}
	appUI = ui.New(os.Stdout, os.Stderr, format)
	return nil
}

// GetUI returns the UI configured for this invocation.
func GetUI() *ui.UI {
	return appUI
}

// newEngine assembles the engine with its cache. The returned cleanup
// closes the cache store when one was opened.
func newEngine(progress func(engine.ProgressEvent)) (*engine.Engine, func(), error) {
	cleanup := func() {}

	var c *cache.Cache
	if !noCache {
		var store cache.Store
		if cfg.Cache.Path != "" {
			sqlStore, err := cache.NewSQLiteStore(cfg.Cache.Path)
			if err != nil {
				return nil, nil, fmt.Errorf("opening cache: %w", err)
			}
			store = sqlStore
			cleanup = func() { _ = sqlStore.Close() }
		} else {
			store = cache.NewMemoryStore()
		}
		c = cache.New(store, cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}

	eng := engine.New(engine.Options{
		Config:   cfg,
		Cache:    c,
		Progress: progress,
	})
	return eng, cleanup, nil
}
