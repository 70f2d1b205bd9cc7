package pipeline

import (
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/visibility"
)

// GenerateLayout applies the collapsed set, lays out the visible persons and
// merges any manual position overrides.
func GenerateLayout(t *family.Tree, opts Options) (*visibility.Filter, *layout.Layout) {
	ix := index.FromTree(t)
	f := visibility.New(ix, opts.Collapsed)
	l := layout.ComputeIndexed(ix, f.VisibleIDs(), layoutOptions(opts)...)
	return f, applyOverrides(l, opts)
}

func applyOverrides(l *layout.Layout, opts Options) *layout.Layout {
	if len(opts.Overrides) == 0 {
		return l
	}
	return l.WithOverrides(opts.Overrides)
}

func layoutOptions(opts Options) []layout.Option {
	lo := opts.Layout
	lo.SetDefaults()
	return []layout.Option{layout.WithOptions(lo)}
}
