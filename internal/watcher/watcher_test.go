package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScanReportsNewAndChangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.mdot")
	if err := os.WriteFile(path, []byte("unit U { }"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	w := New(dir, []string{".mdot"}, 10*time.Millisecond)
	changed, err := w.Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(changed) != 1 || changed[0] != path {
		t.Fatalf("expected initial scan to report %s, got %v", path, changed)
	}

	changed, err = w.Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("expected no changes on unmodified rescan, got %v", changed)
	}

	later := time.Now().Add(time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	changed, err = w.Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(changed) != 1 {
		t.Fatalf("expected touched file to be reported changed, got %v", changed)
	}
}

func TestScanIgnoresNonScriptExtensions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	w := New(dir, []string{".mdot"}, 10*time.Millisecond)
	changed, err := w.Scan()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("expected non-script files to be ignored, got %v", changed)
	}
}
