package family

import "slices"

// Relation types for family edges.
const (
	RelationSpouse      = "spouse"
	RelationParentChild = "parent_child"
)

// Special relation types rendered as dashed overlays.
const (
	SpecialRival      = "rival"
	SpecialMentor     = "mentor"
	SpecialSwornEnemy = "sworn_enemy"
	SpecialLover      = "lover"
	SpecialOathBound  = "oath_bound"
	SpecialBetrayer   = "betrayer"
)

// SpecialTypes lists the known special relation types in palette order.
var SpecialTypes = []string{
	SpecialRival,
	SpecialMentor,
	SpecialSwornEnemy,
	SpecialLover,
	SpecialOathBound,
	SpecialBetrayer,
}

// Tree is a complete family tree as produced by the generator or an import.
type Tree struct {
	HouseName        string            `json:"house_name" yaml:"house_name"`
	HouseMotto       string            `json:"house_motto,omitempty" yaml:"house_motto,omitempty"`
	HouseCrest       string            `json:"house_crest,omitempty" yaml:"house_crest,omitempty"`
	ShareID          string            `json:"share_id,omitempty" yaml:"share_id,omitempty"`
	Persons          []Person          `json:"persons" yaml:"persons"`
	FamilyEdges      []Edge            `json:"family_edges" yaml:"family_edges"`
	SpecialRelations []SpecialRelation `json:"special_relations,omitempty" yaml:"special_relations,omitempty"`
	TimelineEvents   []Event           `json:"timeline_events,omitempty" yaml:"timeline_events,omitempty"`
}

// Person is a single individual. Only ID and Generation matter to layout;
// the remaining fields are display data.
type Person struct {
	ID         string `json:"id" yaml:"id"`
	Generation int    `json:"generation" yaml:"generation"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Title      string `json:"title,omitempty" yaml:"title,omitempty"`
	Gender     string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Portrait   string `json:"portrait,omitempty" yaml:"portrait,omitempty"`
	BirthYear  string `json:"birth_year,omitempty" yaml:"birth_year,omitempty"`
	DeathYear  string `json:"death_year,omitempty" yaml:"death_year,omitempty"`
	Biography  string `json:"biography,omitempty" yaml:"biography,omitempty"`
	IsUnknown  bool   `json:"is_unknown,omitempty" yaml:"is_unknown,omitempty"`
}

// Edge is a structural family edge.
type Edge struct {
	From     string `json:"from_id" yaml:"from_id"`
	To       string `json:"to_id" yaml:"to_id"`
	Relation string `json:"relation_type" yaml:"relation_type"`
}

// IsSpouse reports whether e links two partners.
func (e Edge) IsSpouse() bool { return e.Relation == RelationSpouse }

// IsParentChild reports whether e links a parent to a child.
func (e Edge) IsParentChild() bool { return e.Relation == RelationParentChild }

// SpecialRelation is a decorative edge between two persons.
type SpecialRelation struct {
	From     string `json:"from_id" yaml:"from_id"`
	To       string `json:"to_id" yaml:"to_id"`
	Relation string `json:"relation_type" yaml:"relation_type"`
}

// Touches reports whether the relation has id at either end.
func (r SpecialRelation) Touches(id string) bool {
	return id != "" && (r.From == id || r.To == id)
}

// Person returns the person with the given id.
func (t *Tree) Person(id string) (Person, bool) {
	for _, p := range t.Persons {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}

// PersonIDs returns all person ids in input order.
func (t *Tree) PersonIDs() []string {
	ids := make([]string, len(t.Persons))
	for i, p := range t.Persons {
		ids[i] = p.ID
	}
	return ids
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	c := *t
	c.Persons = slices.Clone(t.Persons)
	c.FamilyEdges = slices.Clone(t.FamilyEdges)
	c.SpecialRelations = slices.Clone(t.SpecialRelations)
	c.TimelineEvents = slices.Clone(t.TimelineEvents)
	return &c
}
