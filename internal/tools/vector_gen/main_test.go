package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const manifestPath = "../../../testdata/conformance/vectors.json"

func TestOutOfDate_CommittedManifestIsCurrent(t *testing.T) {
	stale, err := outOfDate(manifestPath)
	if err != nil {
		t.Fatalf("outOfDate: %v", err)
	}
	if stale {
		t.Fatalf("%s does not match recomputed vectors", manifestPath)
	}
}

func TestOutOfDate_DetectsDrift(t *testing.T) {
	src, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	m, err := readManifest(manifestPath)
	if err != nil {
		t.Fatalf("readManifest: %v", err)
	}

	dir := t.TempDir()
	for _, v := range m.Vectors {
		in, err := os.ReadFile(filepath.Join(filepath.Dir(manifestPath), v.Input))
		if err != nil {
			t.Fatalf("read %s: %v", v.Input, err)
		}
		if err := os.WriteFile(filepath.Join(dir, v.Input), in, 0o644); err != nil {
			t.Fatalf("write %s: %v", v.Input, err)
		}
	}
	drifted := strings.Replace(string(src), m.Vectors[0].SHA256, "0x"+strings.Repeat("0", 64), 1)
	path := filepath.Join(dir, "vectors.json")
	if err := os.WriteFile(path, []byte(drifted), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	stale, err := outOfDate(path)
	if err != nil {
		t.Fatalf("outOfDate: %v", err)
	}
	if !stale {
		t.Fatalf("expected a changed digest to be reported")
	}
}
