package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/layout"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/render/connector"
)

// Scene is the JSON document written by RenderJSON.
type Scene struct {
	TreeID     string                `json:"tree_id,omitempty"`
	HouseName  string                `json:"house_name,omitempty"`
	NodeWidth  float64               `json:"node_width"`
	NodeHeight float64               `json:"node_height"`
	Bounds     layout.Bounds         `json:"bounds"`
	Persons    []ScenePerson         `json:"persons"`
	Couples    []layout.Couple       `json:"couples"`
	Connectors []connector.Primitive `json:"connectors"`
	Collapsed  []string              `json:"collapsed,omitempty"`
	Selected   string                `json:"selected,omitempty"`
}

// ScenePerson is a placed person with display data.
type ScenePerson struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Title       string  `json:"title,omitempty"`
	Generation  int     `json:"generation"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Unknown     bool    `json:"is_unknown,omitempty"`
	Collapsed   bool    `json:"collapsed,omitempty"`
	Descendants int     `json:"hidden_descendants,omitempty"`
}

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	tree      *family.Tree
	treeID    string
	marks     Marks
	collapsed []string
	selected  string
	connOpts  []connector.Option
}

// WithJSONTree attaches person details and special relations.
func WithJSONTree(t *family.Tree) JSONOption { return func(r *jsonRenderer) { r.tree = t } }

// WithJSONTreeID records the tree identity.
func WithJSONTreeID(id string) JSONOption { return func(r *jsonRenderer) { r.treeID = id } }

// WithJSONCollapsed records the collapsed set and marks collapsed persons.
func WithJSONCollapsed(ids []string, m Marks) JSONOption {
	return func(r *jsonRenderer) { r.collapsed = ids; r.marks = m }
}

// WithJSONSelected records the selection and includes its special relations.
func WithJSONSelected(id string) JSONOption { return func(r *jsonRenderer) { r.selected = id } }

// WithJSONConnectorOptions forwards options to connector.Build.
func WithJSONConnectorOptions(opts ...connector.Option) JSONOption {
	return func(r *jsonRenderer) { r.connOpts = append(r.connOpts, opts...) }
}

// BuildScene assembles the serializable scene for l.
func BuildScene(l *layout.Layout, opts ...JSONOption) Scene {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var relations []family.SpecialRelation
	s := Scene{
		TreeID:     r.treeID,
		NodeWidth:  l.NodeWidth,
		NodeHeight: l.NodeHeight,
		Bounds:     l.Bounds,
		Persons:    make([]ScenePerson, 0, len(l.Order)),
		Couples:    l.Couples,
		Collapsed:  r.collapsed,
		Selected:   r.selected,
	}
	if s.Couples == nil {
		s.Couples = []layout.Couple{}
	}
	if r.tree != nil {
		s.HouseName = r.tree.HouseName
		relations = r.tree.SpecialRelations
	}

	for _, id := range l.Order {
		pos := l.Positions[id]
		sp := ScenePerson{ID: id, X: pos.X, Y: pos.Y}
		if r.tree != nil {
			if p, ok := r.tree.Person(id); ok {
				sp.Name, sp.Title = p.Name, p.Title
				sp.Generation, sp.Unknown = p.Generation, p.IsUnknown
			}
		}
		if r.marks != nil && r.marks.IsCollapsed(id) {
			sp.Collapsed = true
			sp.Descendants = r.marks.DescendantCount(id)
		}
		s.Persons = append(s.Persons, sp)
	}

	s.Connectors = connector.Build(l, relations, r.selected, r.connOpts...)
	if s.Connectors == nil {
		s.Connectors = []connector.Primitive{}
	}
	return s
}

// RenderJSON returns the indented JSON encoding of BuildScene(l, opts...).
func RenderJSON(l *layout.Layout, opts ...JSONOption) ([]byte, error) {
	data, err := json.MarshalIndent(BuildScene(l, opts...), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

// ReadJSON decodes a scene written by RenderJSON.
func ReadJSON(r io.Reader) (Scene, error) {
	var s Scene
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	return s, nil
}

// Layout rebuilds a layout from the scene's positions. Centers are derived
// from the recorded node size.
func (s Scene) Layout() *layout.Layout {
	l := &layout.Layout{
		Positions:  make(map[string]layout.Position, len(s.Persons)),
		Order:      make([]string, 0, len(s.Persons)),
		Couples:    s.Couples,
		Bounds:     s.Bounds,
		NodeWidth:  s.NodeWidth,
		NodeHeight: s.NodeHeight,
	}
	for _, p := range s.Persons {
		l.Positions[p.ID] = layout.Position{
			X: p.X, Y: p.Y,
			CenterX: p.X + s.NodeWidth/2,
			CenterY: p.Y + s.NodeHeight/2,
		}
		l.Order = append(l.Order, p.ID)
	}
	return l
}
