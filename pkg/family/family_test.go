package family

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
)

const sampleJSON = `{
  "house_name": "Stark",
  "house_motto": "Winter is coming",
  "persons": [
    {"id": "a", "generation": 0, "name": "Rickard"},
    {"id": "b", "generation": 0, "name": "Lyarra"},
    {"id": "c", "generation": 1, "name": "Eddard", "title": "Lord Eddard"}
  ],
  "family_edges": [
    {"from_id": "a", "to_id": "b", "relation_type": "spouse"},
    {"from_id": "a", "to_id": "c", "relation_type": "parent_child"},
    {"from_id": "b", "to_id": "c", "relation_type": "parent_child"}
  ],
  "special_relations": [
    {"from_id": "c", "to_id": "a", "relation_type": "mentor"}
  ],
  "timeline_events": [
    {"year": 300, "title": "Coronation"},
    {"year": 12, "era": "b.c.", "title": "Landing"},
    {"year": 250, "title": "War"}
  ]
}`

func TestReadJSON(t *testing.T) {
	tree, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if tree.HouseName != "Stark" {
		t.Errorf("HouseName = %q, want %q", tree.HouseName, "Stark")
	}
	if len(tree.Persons) != 3 {
		t.Fatalf("len(Persons) = %d, want 3", len(tree.Persons))
	}
	if !tree.FamilyEdges[0].IsSpouse() || !tree.FamilyEdges[1].IsParentChild() {
		t.Errorf("edge relations decoded incorrectly: %+v", tree.FamilyEdges)
	}
	if p, ok := tree.Person("c"); !ok || p.Generation != 1 || p.Title != "Lord Eddard" {
		t.Errorf("Person(c) = %+v, %v", p, ok)
	}
	if !tree.SpecialRelations[0].Touches("a") || tree.SpecialRelations[0].Touches("b") {
		t.Error("Touches() mismatch")
	}
}

func TestReadJSONMalformed(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"persons": [`))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	tree, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteYAML(tree, &buf); err != nil {
		t.Fatalf("WriteYAML() error: %v", err)
	}
	got, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("ReadYAML() error: %v", err)
	}
	if diff := cmp.Diff(tree, got); diff != "" {
		t.Errorf("yaml round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "tree.json")
	if err := os.WriteFile(jsonPath, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	tree, err := ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile(json) error: %v", err)
	}

	yamlPath := filepath.Join(dir, "tree.yml")
	if err := WriteFile(tree, yamlPath); err != nil {
		t.Fatalf("WriteFile(yaml) error: %v", err)
	}
	fromYAML, err := ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("ReadFile(yaml) error: %v", err)
	}
	if diff := cmp.Diff(tree, fromYAML); diff != "" {
		t.Errorf("ReadFile(yaml) mismatch (-want +got):\n%s", diff)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		tree    *Tree
		wantErr bool
	}{
		{
			name: "valid",
			tree: &Tree{Persons: []Person{{ID: "a"}, {ID: "b", Generation: 1}}},
		},
		{
			name:    "nil",
			tree:    nil,
			wantErr: true,
		},
		{
			name:    "empty id",
			tree:    &Tree{Persons: []Person{{ID: ""}}},
			wantErr: true,
		},
		{
			name:    "duplicate id",
			tree:    &Tree{Persons: []Person{{ID: "a"}, {ID: "a"}}},
			wantErr: true,
		},
		{
			name:    "negative generation",
			tree:    &Tree{Persons: []Person{{ID: "a", Generation: -1}}},
			wantErr: true,
		},
		{
			name: "unknown relation",
			tree: &Tree{
				Persons:     []Person{{ID: "a"}, {ID: "b"}},
				FamilyEdges: []Edge{{From: "a", To: "b", Relation: "cousin"}},
			},
			wantErr: true,
		},
		{
			name: "dangling edge is allowed",
			tree: &Tree{
				Persons:     []Person{{ID: "a"}},
				FamilyEdges: []Edge{{From: "a", To: "ghost", Relation: RelationParentChild}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.tree)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidTree) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidTree)
			}
		})
	}
}

func TestDangling(t *testing.T) {
	tree := &Tree{
		Persons: []Person{{ID: "a"}, {ID: "b"}},
		FamilyEdges: []Edge{
			{From: "a", To: "b", Relation: RelationSpouse},
			{From: "a", To: "ghost", Relation: RelationParentChild},
			{From: "b", To: "b", Relation: RelationSpouse},
		},
	}
	got := Dangling(tree)
	want := []Edge{tree.FamilyEdges[1], tree.FamilyEdges[2]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dangling() mismatch (-want +got):\n%s", diff)
	}
}

func TestSortedEvents(t *testing.T) {
	tree, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, e := range tree.SortedEvents() {
		titles = append(titles, e.Title)
	}
	want := []string{"Coronation", "War", "Landing"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("SortedEvents() mismatch (-want +got):\n%s", diff)
	}
	if tree.TimelineEvents[0].Title != "Coronation" || tree.TimelineEvents[1].Title != "Landing" {
		t.Error("SortedEvents() mutated the tree")
	}
}

func TestIdentity(t *testing.T) {
	a := &Tree{HouseName: "Stark", Persons: []Person{{ID: "a"}}}
	b := a.Clone()
	if Identity(a) != Identity(b) {
		t.Error("Identity() differs for equal trees")
	}
	if !strings.HasPrefix(Identity(a), "tree-") {
		t.Errorf("Identity() = %q, want tree- prefix", Identity(a))
	}
	if err := errors.ValidateTreeID(Identity(a)); err != nil {
		t.Errorf("Identity() is not a valid tree id: %v", err)
	}

	b.Persons = append(b.Persons, Person{ID: "b"})
	if Identity(a) == Identity(b) {
		t.Error("Identity() equal for different trees")
	}

	b.ShareID = "abc123"
	if got := Identity(b); got != "abc123" {
		t.Errorf("Identity() = %q, want share id", got)
	}
}
