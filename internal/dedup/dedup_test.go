package dedup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloaded_uids.json")
	reg := NewRegistry(path)

	seen, err := reg.Contains("100")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("empty registry must contain nothing")
	}

	if err := reg.Add("100"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Add("101"); err != nil {
		t.Fatal(err)
	}
	// Re-adding is a no-op.
	if err := reg.Add("100"); err != nil {
		t.Fatal(err)
	}

	seen, err = reg.Contains("100")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Fatal("registry lost an id")
	}
	all, err := reg.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0] != "100" || all[1] != "101" {
		t.Fatalf("all = %v", all)
	}
}

func TestRegistryToleratesNumericUids(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloaded_uids.json")
	if err := os.WriteFile(path, []byte("[100, 101]"), 0o644); err != nil {
		t.Fatal(err)
	}
	reg := NewRegistry(path)
	seen, err := reg.Contains("101")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Fatal("numeric uid not recognized")
	}
}
