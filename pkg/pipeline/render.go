package pipeline

import (
	"context"
	"fmt"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/overview"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/render/connector"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/render/nodelink"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/render/sink"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/visibility"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, t *family.Tree, f *visibility.Filter, l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var connOpts []connector.Option
	if opts.NoSpecial {
		connOpts = append(connOpts, connector.WithoutSpecialRelations())
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l,
				sink.WithTree(t),
				sink.WithMarks(f),
				sink.WithSelected(opts.Selected),
				sink.WithConnectorOptions(connOpts...),
			)
		case FormatJSON:
			data, err = sink.RenderJSON(l,
				sink.WithJSONTree(t),
				sink.WithJSONTreeID(family.Identity(t)),
				sink.WithJSONCollapsed(f.Collapsed(), f),
				sink.WithJSONSelected(opts.Selected),
				sink.WithJSONConnectorOptions(connOpts...),
			)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(t, f.VisibleIDs(), nodeOptions(opts)))
		case FormatGraph:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(t, f.VisibleIDs(), nodeOptions(opts)))
		case FormatMinimap:
			data = overview.RenderSVG(l, overview.WithMarks(f))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func nodeOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, Special: !opts.NoSpecial}
}
