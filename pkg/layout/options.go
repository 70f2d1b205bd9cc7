package layout

// Options holds the layout geometry. All spacings are in world units.
type Options struct {
	NodeWidth         float64 `json:"node_width" toml:"node_width"`
	NodeHeight        float64 `json:"node_height" toml:"node_height"`
	CoupleSpacing     float64 `json:"couple_spacing" toml:"couple_spacing"`
	SiblingSpacing    float64 `json:"sibling_spacing" toml:"sibling_spacing"`
	GenerationSpacing float64 `json:"generation_spacing" toml:"generation_spacing"`
	ComponentGap      float64 `json:"component_gap" toml:"component_gap"`
	Compact           bool    `json:"compact" toml:"compact"`
}

// DefaultOptions returns the standard geometry with compaction disabled.
func DefaultOptions() Options {
	return Options{
		NodeWidth:         NodeWidth,
		NodeHeight:        NodeHeight,
		CoupleSpacing:     CoupleSpacing,
		SiblingSpacing:    SiblingSpacing,
		GenerationSpacing: GenerationSpacing,
		ComponentGap:      ComponentGap,
	}
}

// SetDefaults fills zero or negative fields with the standard geometry.
func (o *Options) SetDefaults() {
	d := DefaultOptions()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.CoupleSpacing <= 0 {
		o.CoupleSpacing = d.CoupleSpacing
	}
	if o.SiblingSpacing <= 0 {
		o.SiblingSpacing = d.SiblingSpacing
	}
	if o.GenerationSpacing <= 0 {
		o.GenerationSpacing = d.GenerationSpacing
	}
	if o.ComponentGap <= 0 {
		o.ComponentGap = d.ComponentGap
	}
	// Partners must not overlap each other.
	if o.CoupleSpacing < o.NodeWidth {
		o.CoupleSpacing = o.NodeWidth
	}
}

// Option configures a layout computation.
type Option func(*Options)

// WithOptions replaces the whole geometry.
func WithOptions(opts Options) Option { return func(o *Options) { *o = opts } }

// WithNodeSize sets the fixed node box.
func WithNodeSize(w, h float64) Option {
	return func(o *Options) { o.NodeWidth, o.NodeHeight = w, h }
}

// WithCoupleSpacing sets the distance between partners' anchors.
func WithCoupleSpacing(s float64) Option { return func(o *Options) { o.CoupleSpacing = s } }

// WithSiblingSpacing sets the gap between adjacent sibling subtrees.
func WithSiblingSpacing(s float64) Option { return func(o *Options) { o.SiblingSpacing = s } }

// WithGenerationSpacing sets the vertical distance between rows.
func WithGenerationSpacing(s float64) Option { return func(o *Options) { o.GenerationSpacing = s } }

// WithComponentGap sets the gap between disconnected families.
func WithComponentGap(g float64) Option { return func(o *Options) { o.ComponentGap = g } }

// WithCompaction enables the row compaction pass.
func WithCompaction() Option { return func(o *Options) { o.Compact = true } }

func newOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.SetDefaults()
	return o
}
