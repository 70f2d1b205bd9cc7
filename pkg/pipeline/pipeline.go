// Package pipeline runs the load → visibility → layout → render pipeline
// shared by the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a tree file (JSON or YAML) or accept an in-memory tree
//  2. Layout: apply the collapsed set and compute positions
//  3. Render: produce artifacts (SVG, JSON scene, DOT, Graphviz SVG, minimap)
//
// Layout and render results are cached through [cache.Cache], keyed by the
// tree's content hash, the collapsed set and the options that affect output.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:    "stark.json",
//	    Collapsed: []string{"eddard"},
//	    Formats:   []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/cache"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/visibility"
)

// Format constants for output formats.
const (
	FormatSVG     = "svg"     // full tree, generation rows
	FormatJSON    = "json"    // scene document for web front-ends
	FormatDOT     = "dot"     // Graphviz source
	FormatGraph   = "graph"   // Graphviz-positioned SVG
	FormatMinimap = "minimap" // overview snapshot SVG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:     true,
	FormatJSON:    true,
	FormatDOT:     true,
	FormatGraph:   true,
	FormatMinimap: true,
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	switch format {
	case FormatJSON:
		return ".json"
	case FormatDOT:
		return ".dot"
	case FormatGraph:
		return ".graph.svg"
	case FormatMinimap:
		return ".minimap.svg"
	default:
		return ".svg"
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source string       `json:"source,omitempty"`
	Tree   *family.Tree `json:"tree,omitempty"`

	// Layout options
	Collapsed []string       `json:"collapsed,omitempty"`
	Layout    layout.Options `json:"layout"`
	// Overrides are manual positions merged over the computed layout
	// before connectors and sinks run. Cached layouts never include them.
	Overrides layout.Overrides `json:"overrides,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Selected  string   `json:"selected,omitempty"`
	NoSpecial bool     `json:"no_special,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Tree      *family.Tree
	TreeID    string // family.Identity of Tree
	TreeHash  string // content hash used in cache keys
	Filter    *visibility.Filter
	Layout    *layout.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PersonCount  int
	VisibleCount int
	CoupleCount  int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all requested artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, json, dot, graph, minimap)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a tree source is present.
func (o *Options) ValidateForLoad() error {
	if o.Tree == nil && o.Source == "" {
		return fmt.Errorf("tree or source is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults fills zero layout geometry with the defaults.
func (o *Options) SetLayoutDefaults() {
	o.Layout.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults selects SVG when no format is given.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
}

// ValidateForRender validates formats after applying defaults.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Collapsed: o.Collapsed,
		Options:   o.Layout,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Selected:  o.Selected,
		NoSpecial: o.NoSpecial,
		Detailed:  o.Detailed,
		Overrides: overridesKey(o.Overrides),
	}
}

// overridesKey keeps artifact keys unchanged when nothing was moved.
func overridesKey(o layout.Overrides) any {
	if len(o) == 0 {
		return nil
	}
	return o
}
