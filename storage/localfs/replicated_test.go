package localfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wiimdy/openfunderse/digest"
	"github.com/wiimdy/openfunderse/storage"
	"github.com/wiimdy/openfunderse/storage/testkit"
)

func TestReplicated_Conformance(t *testing.T) {
	testkit.RunCASConformance(t, digest.Keccak256, func(t *testing.T) storage.CAS {
		t.Helper()
		cas, err := Open(digest.Keccak256, t.TempDir(), t.TempDir())
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		return cas
	})
}

func TestReplicated_WritesEveryCopy(t *testing.T) {
	primary, replica := t.TempDir(), t.TempDir()
	cas, err := Open(digest.SHA256, primary, replica)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id, err := cas.Put([]byte(`{"a":"1","b":"x"}`))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	for _, dir := range []string{primary, replica} {
		if _, err := os.Stat(filepath.Join(dir, id.String()[:2], id.String())); err != nil {
			t.Fatalf("copy missing in %s: %v", dir, err)
		}
	}

	// Reads fall back to the replica when the primary lost its copy.
	path := filepath.Join(primary, id.String()[:2], id.String())
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	got, err := cas.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"a":"1","b":"x"}` {
		t.Fatalf("unexpected bytes %q", got)
	}
}

func TestReplicated_CorruptPrimaryStopsRead(t *testing.T) {
	primary, replica := t.TempDir(), t.TempDir()
	cas, err := Open(digest.SHA256, primary, replica)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id, err := cas.Put([]byte("original"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	path := filepath.Join(primary, id.String()[:2], id.String())
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatalf("Chmod failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := cas.Get(id); err != storage.ErrCIDMismatch {
		t.Fatalf("expected ErrCIDMismatch, got %v", err)
	}
}

func TestOpen_RequiresDirectory(t *testing.T) {
	if _, err := Open(digest.SHA256); err == nil {
		t.Fatal("expected error without directories")
	}
}
