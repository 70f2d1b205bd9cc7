package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/pipeline"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/watch"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file (single format) or base path (several)
	formats   []string // svg, json, dot, graph, minimap
	selected  string   // person highlighted in the SVG
	noSpecial bool     // omit special-relation curves
	detailed  bool     // titles and years in Graphviz labels
	collapsed *[]string
	positions string // JSON file of manual positions
	noCache   bool
	watch     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		collapsed  []string
		opts       renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Render a family tree to SVG, JSON or Graphviz",
		Long: `Render a family tree.

Formats:
  svg      generation-row tree with connectors (default)
  json     scene document for web front-ends
  dot      Graphviz source
  graph    Graphviz-positioned SVG
  minimap  overview snapshot

With --watch the tree file is re-rendered every time it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = pipeline.ParseFormats(formatsStr)
			if len(opts.formats) == 0 {
				opts.formats = []string{pipeline.FormatSVG}
			}
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			opts.collapsed = collapseFlag(cmd, collapsed)
			if opts.watch {
				return c.watchRender(cmd.Context(), args[0], &opts)
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, graph, minimap (comma-separated)")
	cmd.Flags().StringVar(&opts.selected, "selected", "", "highlight this person id")
	cmd.Flags().BoolVar(&opts.noSpecial, "no-special", false, "omit special relations")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show titles and years in Graphviz labels")
	cmd.Flags().StringSliceVar(&collapsed, "collapsed", nil, "collapsed person ids (default: stored state)")
	cmd.Flags().StringVar(&opts.positions, "positions", "", "JSON file of manual person positions")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when the tree file changes")

	return cmd
}

// runRender renders input once and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, ro *renderOpts) error {
	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.pipelineOptions(input)
	opts.Formats = ro.formats
	opts.Selected = ro.selected
	opts.NoSpecial = ro.noSpecial
	opts.Detailed = ro.detailed
	if opts.Overrides, err = readPositions(ro.positions); err != nil {
		return err
	}
	if err := c.prepare(ctx, runner, &opts, ro.collapsed); err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	paths := outputPaths(ro.output, input, ro.formats)
	for _, format := range ro.formats {
		if err := writeOutput(paths[format], result.Artifacts[format]); err != nil {
			return err
		}
	}
	prog.done("Rendered "+filepath.Base(input), "formats", len(ro.formats))

	printSuccess("Render complete")
	for _, format := range ro.formats {
		printFile(paths[format])
	}
	printStats(result.Stats.VisibleCount, result.Stats.PersonCount, result.Stats.CoupleCount, result.CacheInfo.RenderHit)
	return nil
}

// watchRender renders input, then again after every change, until ctx is
// cancelled. Render failures while watching are reported and skipped.
func (c *CLI) watchRender(ctx context.Context, input string, ro *renderOpts) error {
	if err := c.runRender(ctx, input, ro); err != nil {
		return err
	}

	w, err := watch.New(input,
		watch.WithOnChange(func() {
			printInfo("%s changed", input)
			if err := c.runRender(ctx, input, ro); err != nil {
				printError("%v", err)
			}
		}),
		watch.WithOnError(func(err error) {
			if errors.Is(err, watch.ErrFileRemoved) {
				printWarning("%s was removed; waiting for it to come back", input)
				return
			}
			loggerFromContext(ctx).Error("watch failed", "err", err)
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	printInfo("Watching %s (ctrl+c to stop)", w.Path())
	<-ctx.Done()
	return nil
}

// extensionOrder lists formats longest extension first so that
// "tree.graph.svg" is not mistaken for an svg output.
var extensionOrder = []string{
	pipeline.FormatGraph,
	pipeline.FormatMinimap,
	pipeline.FormatSVG,
	pipeline.FormatJSON,
	pipeline.FormatDOT,
}

// outputPaths maps each format to its output file. A single format with an
// explicit output uses it verbatim; otherwise output (or the input) is a
// base path and each format appends its extension.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}

	base := basePath(input)
	if output != "" {
		base = output
		for _, f := range extensionOrder {
			if trimmed, ok := strings.CutSuffix(output, pipeline.Extension(f)); ok {
				base = trimmed
				break
			}
		}
	}
	for _, f := range formats {
		paths[f] = base + pipeline.Extension(f)
	}
	return paths
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
