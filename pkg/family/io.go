package family

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
)

// ReadJSON decodes a JSON family tree from r.
//
// The input must be an object with "persons" and "family_edges" arrays:
//
//	{
//	  "house_name": "Stark",
//	  "persons": [{"id": "a", "generation": 0}, {"id": "b", "generation": 0}],
//	  "family_edges": [{"from_id": "a", "to_id": "b", "relation_type": "spouse"}]
//	}
//
// Decode failures are returned as INVALID_FORMAT errors. ReadJSON does not
// call [Validate] and does not close r.
func ReadJSON(r io.Reader) (*Tree, error) {
	var t Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json tree")
	}
	return &t, nil
}

// ReadYAML decodes a YAML family tree from r using the same field names as
// [ReadJSON].
func ReadYAML(r io.Reader) (*Tree, error) {
	var t Tree
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml tree")
	}
	return &t, nil
}

// ReadFile reads and validates a tree file. Files ending in .yaml or .yml
// are decoded as YAML, everything else as JSON.
func ReadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	var t *Tree
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err = ReadYAML(f)
	default:
		t, err = ReadJSON(f)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteJSON encodes t as indented JSON.
func WriteJSON(t *Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// WriteYAML encodes t as YAML.
func WriteYAML(t *Tree, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile writes t to path, choosing the encoding by extension.
func WriteFile(t *Tree, path string) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = WriteYAML(t, &buf)
	default:
		err = WriteJSON(t, &buf)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", path)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Identity returns the key collapse state is persisted under: the share id
// when present, otherwise a content hash of the persons and edges.
func Identity(t *Tree) string {
	if t.ShareID != "" {
		return t.ShareID
	}
	h := sha256.New()
	h.Write([]byte(t.HouseName))
	for _, p := range t.Persons {
		h.Write([]byte{0})
		h.Write([]byte(p.ID))
	}
	for _, e := range t.FamilyEdges {
		h.Write([]byte{1})
		h.Write([]byte(e.From + "\x00" + e.To + "\x00" + e.Relation))
	}
	return "tree-" + hex.EncodeToString(h.Sum(nil))[:16]
}
