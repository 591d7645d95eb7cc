package canon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

type vector struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
}

func loadVectors(t *testing.T) (string, []vector) {
	t.Helper()
	root := filepath.Join("..", "testdata", "conformance")
	b, err := os.ReadFile(filepath.Join(root, "vectors.json"))
	if err != nil {
		t.Fatalf("read vectors: %v", err)
	}
	var manifest struct {
		Vectors []vector `json:"vectors"`
	}
	if err := json.Unmarshal(b, &manifest); err != nil {
		t.Fatalf("decode vectors: %v", err)
	}
	if len(manifest.Vectors) == 0 {
		t.Fatalf("no vectors")
	}
	return root, manifest.Vectors
}

func TestConformanceVectors_RawCanonicalBytes(t *testing.T) {
	root, vectors := loadVectors(t)
	checked := 0
	for _, v := range vectors {
		if v.Kind != "raw" {
			// Self-hash stripping is covered by the commit package.
			continue
		}
		in, err := os.ReadFile(filepath.Join(root, v.Input))
		if err != nil {
			t.Fatalf("%s: read input: %v", v.Name, err)
		}
		record, err := DecodeJSON(in)
		if err != nil {
			t.Fatalf("%s: DecodeJSON: %v", v.Name, err)
		}
		got, err := Canonicalize(record)
		if err != nil {
			t.Fatalf("%s: Canonicalize: %v", v.Name, err)
		}
		if string(got) != v.Canonical {
			t.Fatalf("%s: canonical mismatch\ngot  %s\nwant %s", v.Name, got, v.Canonical)
		}
		checked++
	}
	if checked == 0 {
		t.Fatalf("no raw vectors checked")
	}
}
