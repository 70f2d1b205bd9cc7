package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/pipeline"
	"github.com/sebastiansztangierski/ancestral-scribe/pkg/render/sink"
)

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		input   string
		formats []string
		want    map[string]string
	}{
		{
			name:    "default next to input",
			input:   "trees/stark.json",
			formats: []string{pipeline.FormatSVG},
			want:    map[string]string{"svg": "trees/stark.svg"},
		},
		{
			name:    "single explicit output",
			output:  "out/anything.png",
			input:   "stark.json",
			formats: []string{pipeline.FormatSVG},
			want:    map[string]string{"svg": "out/anything.png"},
		},
		{
			name:    "several formats from input",
			input:   "stark.yaml",
			formats: []string{pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatDOT},
			want:    map[string]string{"svg": "stark.svg", "json": "stark.json", "dot": "stark.dot"},
		},
		{
			name:    "output extension stripped",
			output:  "out/north.svg",
			input:   "stark.json",
			formats: []string{pipeline.FormatSVG, pipeline.FormatMinimap},
			want:    map[string]string{"svg": "out/north.svg", "minimap": "out/north.minimap.svg"},
		},
		{
			name:    "compound extension stripped whole",
			output:  "out/north.graph.svg",
			input:   "stark.json",
			formats: []string{pipeline.FormatGraph, pipeline.FormatSVG},
			want:    map[string]string{"graph": "out/north.graph.svg", "svg": "out/north.svg"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, tt.input, tt.formats)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outputPaths() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtensionOrderCoversFormats(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range extensionOrder {
		seen[f] = true
	}
	for f := range pipeline.ValidFormats {
		if !seen[f] {
			t.Errorf("extensionOrder is missing %q", f)
		}
	}
	// A longer extension that ends with a shorter one must come first.
	for i, a := range extensionOrder {
		for _, b := range extensionOrder[i+1:] {
			if strings.HasSuffix(pipeline.Extension(b), pipeline.Extension(a)) {
				t.Errorf("%q (%s) precedes %q (%s)", a, pipeline.Extension(a), b, pipeline.Extension(b))
			}
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := map[string]string{
		"stark.json":       "stark",
		"trees/stark.yaml": "trees/stark",
		"noext":            "noext",
		"a.b/tree.v2.json": "a.b/tree.v2",
	}
	for in, want := range tests {
		if got := basePath(in); got != want {
			t.Errorf("basePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteOutputCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "tree.svg")
	if err := writeOutput(path, []byte("<svg/>")); err != nil {
		t.Fatalf("writeOutput() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("file = %q, want <svg/>", data)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	treePath := writeStark(t, dir)
	base := filepath.Join(dir, "out", "stark")

	err := execute(t, "render", treePath, "-f", "svg,dot,minimap", "-o", base, "--selected", "eddard", "--collapsed", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatDOT, pipeline.FormatMinimap} {
		path := base + pipeline.Extension(f)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("%s not written: %v", f, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	dir := isolate(t)
	treePath := writeStark(t, dir)
	if err := execute(t, "render", treePath, "-f", "pdf"); err == nil {
		t.Error("render -f pdf should fail")
	}
}

func TestLayoutCommandPositions(t *testing.T) {
	dir := isolate(t)
	treePath := writeStark(t, dir)
	positions := filepath.Join(dir, "positions.json")
	if err := os.WriteFile(positions, []byte(`{"benjen": {"x": 1200, "y": 250}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "scene.json")

	if err := execute(t, "layout", treePath, "-o", out, "--positions", positions, "--no-cache"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	scene, err := sink.ReadJSON(f)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := scene.Layout().Position("benjen")
	if !ok || p.X != 1200 || p.Y != 250 {
		t.Errorf("benjen = %+v, %v, want pinned at (1200,250)", p, ok)
	}
}

func TestReadPositions(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		wantCode errors.Code
	}{
		{"none", "", ""},
		{"missing", filepath.Join(dir, "nope.json"), errors.ErrCodeFileNotFound},
		{"malformed", bad, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := readPositions(tt.path)
			if tt.wantCode == "" {
				if err != nil || o != nil {
					t.Errorf("readPositions() = %v, %v, want nil, nil", o, err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("readPositions() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}
