package generator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/family"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/index"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{HouseName: "Stark", Seed: 42}
	a := Generate(cfg)
	b := Generate(cfg)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Generate() not deterministic (-first +second):\n%s", diff)
	}

	c := Generate(Config{HouseName: "Stark", Seed: 43})
	if cmp.Equal(a.PersonIDs(), c.PersonIDs()) {
		t.Error("different seeds produced identical ids")
	}
}

func TestGenerateShape(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		tree := Generate(Config{HouseName: "Test", Generations: 4, AvgChildren: 1.5, Seed: seed})
		if err := family.Validate(tree); err != nil {
			t.Fatalf("seed %d: Validate() error: %v", seed, err)
		}
		if len(family.Dangling(tree)) != 0 {
			t.Fatalf("seed %d: dangling edges", seed)
		}

		ix := index.FromTree(tree)
		founders := ix.ByGeneration(0)
		if len(founders) != 2 {
			t.Fatalf("seed %d: %d founders, want 2", seed, len(founders))
		}
		if s, ok := ix.SpouseOf(founders[0]); !ok || s != founders[1] {
			t.Errorf("seed %d: founders are not married", seed)
		}

		for _, p := range tree.Persons {
			parents := ix.Parents(p.ID)
			switch {
			case p.Generation == 0:
				if len(parents) != 0 {
					t.Errorf("seed %d: founder %s has parents", seed, p.ID)
				}
			case len(parents) == 2:
				for _, par := range parents {
					if g, _ := ix.Generation(par); g != p.Generation-1 {
						t.Errorf("seed %d: parent generation %d for child generation %d", seed, g, p.Generation)
					}
				}
			case len(parents) == 0:
				// Married-in partner of a blood child.
				s, ok := ix.SpouseOf(p.ID)
				if !ok || len(ix.Parents(s)) != 2 {
					t.Errorf("seed %d: orphan %s is not a married-in spouse", seed, p.ID)
				}
			default:
				t.Errorf("seed %d: %s has %d parents", seed, p.ID, len(parents))
			}
		}

		for _, r := range tree.SpecialRelations {
			if r.From == r.To {
				t.Errorf("seed %d: self special relation", seed)
			}
		}
		if want := int(float64(len(tree.Persons)) * SpecialRelationShare); len(tree.SpecialRelations) != want {
			t.Errorf("seed %d: %d special relations, want %d", seed, len(tree.SpecialRelations), want)
		}
	}
}

func TestGenerateLastGenerationUnmarried(t *testing.T) {
	tree := Generate(Config{Generations: 3, Seed: 7})
	ix := index.FromTree(tree)
	for _, id := range ix.ByGeneration(2) {
		if _, ok := ix.SpouseOf(id); ok {
			t.Errorf("leaf generation person %s has a spouse", id)
		}
	}
}

func TestGenerateMaxPersons(t *testing.T) {
	tree := Generate(Config{Generations: 8, AvgChildren: 4, MaxPersons: 50, Seed: 1})
	if n := len(tree.Persons); n > 50 {
		t.Errorf("len(Persons) = %d, want <= 50", n)
	}
}

func TestGenerateNoUnknowns(t *testing.T) {
	tree := Generate(Config{Generations: 5, NoUnknowns: true, Seed: 3})
	for _, p := range tree.Persons {
		if p.IsUnknown {
			t.Fatalf("unknown person %s generated with NoUnknowns", p.ID)
		}
	}
}
