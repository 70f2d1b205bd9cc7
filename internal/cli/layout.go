package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/collapse"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/pipeline"
)

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		compact   bool
		collapsed []string
		positions string
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json]",
		Short: "Compute the layout of a family tree",
		Long: `Compute the layout of a family tree.

The layout command reads a tree (JSON or YAML) and writes a scene document:
every visible person's position, the couples with their visible children, the
connector primitives and the bounding box. The scene is the same document
'render -f json' produces.

Persons collapsed earlier with 'collapse' or the viewer stay collapsed unless
--collapsed is given. --positions pins persons to hand-placed coordinates
read from a JSON object such as {"eddard": {"x": 400, "y": 250}}.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions(args[0])
			if cmd.Flags().Changed("compact") {
				opts.Layout.Compact = compact
			}
			o, err := readPositions(positions)
			if err != nil {
				return err
			}
			opts.Overrides = o
			return c.runLayout(cmd.Context(), opts, collapseFlag(cmd, collapsed), output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&compact, "compact", false, "shift generation rows left to close gaps")
	cmd.Flags().StringSliceVar(&collapsed, "collapsed", nil, "collapsed person ids (default: stored state)")
	cmd.Flags().StringVar(&positions, "positions", "", "JSON file of manual person positions")

	return cmd
}

// runLayout loads the tree, computes the layout, and writes the scene.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, collapsed *[]string, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Loading tree...")
	spinner.Start()

	if err := c.prepare(ctx, runner, &opts, collapsed); err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	opts.Formats = []string{pipeline.FormatJSON}
	spinner.SetMessage(fmt.Sprintf("Computing layout for %d persons...", len(opts.Tree.Persons)))

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = basePath(opts.Source) + ".layout.json"
	}
	if err := os.WriteFile(outputPath, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.VisibleCount, result.Stats.PersonCount, result.Stats.CoupleCount, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", appName+" render "+opts.Source)

	return nil
}

// prepare loads the tree named by opts.Source into opts.Tree and resolves
// the collapsed set: explicit ids when given, the stored state otherwise.
func (c *CLI) prepare(ctx context.Context, runner *pipeline.Runner, opts *pipeline.Options, collapsed *[]string) error {
	t, err := runner.Load(ctx, *opts)
	if err != nil {
		return err
	}
	opts.Tree = t

	if collapsed != nil {
		opts.Collapsed = collapse.Normalize(*collapsed)
		return nil
	}
	opts.Collapsed = c.storedCollapsed(ctx, t)
	return nil
}

// storedCollapsed returns the persisted collapse set for t. Store failures
// are logged and treated as nothing collapsed.
func (c *CLI) storedCollapsed(ctx context.Context, t *family.Tree) []string {
	store, err := c.openStore(ctx)
	if err != nil {
		c.Logger.Warn("collapse state unavailable", "err", err)
		return nil
	}
	defer store.Close()

	treeID := family.Identity(t)
	ids, err := collapse.Load(ctx, store, treeID)
	if err != nil {
		c.Logger.Warn("collapse state unavailable", "tree", treeID, "err", err)
		return nil
	}
	if len(ids) > 0 {
		c.Logger.Debug("using stored collapse state", "tree", treeID, "collapsed", len(ids))
	}
	return ids
}

// readPositions loads manual position overrides from path. An empty path
// means none.
func readPositions(path string) (layout.Overrides, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "positions file %s", path)
		}
		return nil, fmt.Errorf("open positions: %w", err)
	}
	defer f.Close()
	o, err := layout.ReadOverrides(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "positions file %s", path)
	}
	return o, nil
}

// collapseFlag returns the --collapsed ids when the flag was given.
func collapseFlag(cmd *cobra.Command, ids []string) *[]string {
	if !cmd.Flags().Changed("collapsed") {
		return nil
	}
	return &ids
}

// basePath strips the tree file extension.
func basePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input))
}
