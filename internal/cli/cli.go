// Package cli implements the ancestral-scribe command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/buildinfo"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/cache"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/collapse"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/config"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "ancestral-scribe"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline, cache
// and server hooks are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
}

// Config returns the loaded configuration, loading it on first use.
func (c *CLI) Config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Ancestral Scribe lays out and explores family trees",
		Long:         `Ancestral Scribe computes generation-row layouts for family trees, renders them to SVG, JSON and Graphviz, remembers which branches you collapsed, and lets you pan around a tree in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.Config(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.collapseCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backends
// =============================================================================

// newRunner creates a pipeline runner whose cache entries are scoped to
// this build.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	cc := cfg.CacheConfig()
	if noCache {
		cc.Backend = cache.BackendNone
	}
	store, err := cache.Open(ctx, cc)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", cc.Backend, "err", err)
		store = cache.NewNullCache()
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.CacheScope())
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.TTL = cc.TTL
	return runner, nil
}

// openStore opens the configured collapse-state store.
func (c *CLI) openStore(ctx context.Context) (collapse.Store, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	store, err := collapse.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s collapse store: %w", backendName(cfg.Store.Backend), err)
	}
	return store, nil
}

func backendName(b string) string {
	if b == "" {
		return collapse.BackendFile
	}
	return b
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions builds pipeline options for a tree file from the
// configured layout geometry.
func (c *CLI) pipelineOptions(source string) pipeline.Options {
	opts := pipeline.Options{Source: source, Logger: c.Logger}
	if c.cfg != nil {
		opts.Layout = c.cfg.LayoutOptions()
	}
	opts.SetLayoutDefaults()
	return opts
}
