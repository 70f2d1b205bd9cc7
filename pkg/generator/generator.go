// Package generator builds structurally plausible random family trees.
//
// Generation is seeded and deterministic: the same [Config] always yields
// the same tree, including person ids. Display content is deliberately
// plain ("Person 7"); the generator exists to exercise layout, not to
// write fiction.
//
// Shape: a founder couple at generation 0. Every couple of generation g
// gets at least one child at g+1. Children that will have descendants get a
// married-in spouse of the same generation, who becomes the other parent of
// the next couple. A share of persons receive a decorative special relation.
package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
)

// Defaults used when Config fields are zero.
const (
	DefaultGenerations   = 4
	DefaultAvgChildren   = 2.0
	DefaultUnknownChance = 0.1
	SpecialRelationShare = 0.15
)

// idSpace namespaces generated person ids.
var idSpace = uuid.MustParse("6f1c1d8e-2a47-4b8e-9a59-3f0c5c4e7a10")

// Config controls tree generation.
type Config struct {
	HouseName     string  `json:"house_name"`
	HouseMotto    string  `json:"house_motto,omitempty"`
	HouseCrest    string  `json:"house_crest,omitempty"`
	Generations   int     `json:"generations"`
	AvgChildren   float64 `json:"avg_children"`
	UnknownChance float64 `json:"unknown_chance"`
	Seed          uint64  `json:"seed"`
	// MaxPersons stops adding children once reached. Zero means no limit.
	MaxPersons int `json:"max_persons,omitempty"`
	// NoUnknowns disables the unknown-person roll.
	NoUnknowns bool `json:"-"`
}

// SetDefaults fills zero fields with defaults.
func (c *Config) SetDefaults() {
	if c.Generations <= 0 {
		c.Generations = DefaultGenerations
	}
	if c.AvgChildren <= 0 {
		c.AvgChildren = DefaultAvgChildren
	}
	if c.UnknownChance == 0 && !c.NoUnknowns {
		c.UnknownChance = DefaultUnknownChance
	}
	if c.NoUnknowns {
		c.UnknownChance = 0
	}
	if c.HouseName == "" {
		c.HouseName = "Unnamed"
	}
}

type couple struct{ a, b family.Person }

type builder struct {
	cfg  Config
	rng  *rand.Rand
	tree *family.Tree
	n    int
}

// Generate returns a new tree for cfg.
func Generate(cfg Config) *family.Tree {
	cfg.SetDefaults()
	b := &builder{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		tree: &family.Tree{
			HouseName:   cfg.HouseName,
			HouseMotto:  cfg.HouseMotto,
			HouseCrest:  cfg.HouseCrest,
			ShareID:     uuid.NewSHA1(idSpace, fmt.Appendf(nil, "share/%d/%s", cfg.Seed, cfg.HouseName)).String(),
			Persons:     []family.Person{},
			FamilyEdges: []family.Edge{},
		},
	}

	founder := b.person(0, "")
	spouse := b.person(0, opposite(founder.Gender))
	b.marry(founder, spouse)
	current := []couple{{founder, spouse}}

	for gen := 1; gen < cfg.Generations; gen++ {
		var next []couple
		for _, c := range current {
			kids := max(1, int(b.rng.Float64()*cfg.AvgChildren*2)+1)
			for range kids {
				if b.full() {
					break
				}
				child := b.person(gen, "")
				b.parent(c.a, child)
				b.parent(c.b, child)
				if gen < cfg.Generations-1 && !b.full() {
					partner := b.person(gen, opposite(child.Gender))
					b.marry(child, partner)
					next = append(next, couple{child, partner})
				}
			}
		}
		current = next
	}

	b.specialRelations()
	return b.tree
}

func (b *builder) full() bool {
	return b.cfg.MaxPersons > 0 && len(b.tree.Persons) >= b.cfg.MaxPersons
}

func (b *builder) person(gen int, gender string) family.Person {
	b.n++
	if gender == "" {
		gender = "male"
		if b.rng.Float64() > 0.5 {
			gender = "female"
		}
	}
	birth := 1200 + gen*25 + b.rng.IntN(10)
	p := family.Person{
		ID:         uuid.NewSHA1(idSpace, fmt.Appendf(nil, "%d/%s/%d", b.cfg.Seed, b.cfg.HouseName, b.n)).String(),
		Generation: gen,
		Gender:     gender,
		Name:       fmt.Sprintf("Person %d", b.n),
		Title:      fmt.Sprintf("Person %d of House %s", b.n, b.cfg.HouseName),
		BirthYear:  fmt.Sprint(birth),
	}
	if gen < 2 || b.rng.Float64() > 0.7 {
		p.DeathYear = fmt.Sprint(birth + 40 + b.rng.IntN(40))
	}
	if b.rng.Float64() < b.cfg.UnknownChance {
		p.IsUnknown = true
		p.Name = "Unknown"
		p.Title = "???"
	}
	b.tree.Persons = append(b.tree.Persons, p)
	return p
}

func (b *builder) marry(a, s family.Person) {
	b.tree.FamilyEdges = append(b.tree.FamilyEdges, family.Edge{From: a.ID, To: s.ID, Relation: family.RelationSpouse})
}

func (b *builder) parent(p, c family.Person) {
	b.tree.FamilyEdges = append(b.tree.FamilyEdges, family.Edge{From: p.ID, To: c.ID, Relation: family.RelationParentChild})
}

func (b *builder) specialRelations() {
	persons := b.tree.Persons
	if len(persons) < 2 {
		return
	}
	n := int(float64(len(persons)) * SpecialRelationShare)
	for range n {
		i := b.rng.IntN(len(persons))
		j := b.rng.IntN(len(persons) - 1)
		if j >= i {
			j++
		}
		from, to := persons[i], persons[j]
		b.tree.SpecialRelations = append(b.tree.SpecialRelations, family.SpecialRelation{
			From:     from.ID,
			To:       to.ID,
			Relation: family.SpecialTypes[b.rng.IntN(len(family.SpecialTypes))],
		})
	}
}

func opposite(gender string) string {
	if gender == "male" {
		return "female"
	}
	return "male"
}
