package cache

import (
	"slices"
	"strings"
)

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs give equal keys, and any option that changes the output must
// change the key.
type Keyer interface {
	// LayoutKey identifies a layout of the tree with content hash treeHash.
	LayoutKey(treeHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendering of the layout with hash layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the inputs besides the tree that shape a layout.
type LayoutKeyOpts struct {
	Collapsed []string `json:"collapsed"`
	Options   any      `json:"options"`
}

// ArtifactKeyOpts holds the render options that shape an artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Selected  string `json:"selected,omitempty"`
	NoSpecial bool   `json:"no_special,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Overrides any    `json:"overrides,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>". The collapsed set is order-insensitive.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	opts.Collapsed = sortedCopy(opts.Collapsed)
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+strings.ToLower(opts.Format), layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}

func sortedCopy(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}
