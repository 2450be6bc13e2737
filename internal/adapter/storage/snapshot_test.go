package storage

import (
	"os"
	"path/filepath"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	snaps, err := NewFileSnapshotter(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSnapshotter: %v", err)
	}

	in := payload{Name: "cart-storage", Count: 3}
	if err := snaps.Save("cart-storage", in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var out payload
	ok, err := snaps.Load("cart-storage", &out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("expected snapshot to exist")
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestLoadMissingKey(t *testing.T) {
	snaps, err := NewFileSnapshotter(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSnapshotter: %v", err)
	}

	var out payload
	ok, err := snaps.Load("user-storage", &out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("expected no snapshot")
	}
}

func TestSaveOverwrites(t *testing.T) {
	snaps, err := NewFileSnapshotter(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSnapshotter: %v", err)
	}

	snaps.Save("cart-storage", payload{Name: "old", Count: 1})
	snaps.Save("cart-storage", payload{Name: "new", Count: 2})

	var out payload
	if _, err := snaps.Load("cart-storage", &out); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Name != "new" || out.Count != 2 {
		t.Fatalf("expected latest snapshot, got %+v", out)
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	snaps, err := NewFileSnapshotter(dir)
	if err != nil {
		t.Fatalf("NewFileSnapshotter: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "cart-storage.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var out payload
	if _, err := snaps.Load("cart-storage", &out); err == nil {
		t.Fatal("expected parse error")
	}
}
