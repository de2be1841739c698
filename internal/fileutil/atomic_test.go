package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "snapshot.json")
	testData := []byte(`{"ok":true}`)

	if err := WriteFileAtomic(testFile, testData, 0o600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("content mismatch: got %q, want %q", data, testData)
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions mismatch: got %o, want %o", info.Mode().Perm(), 0o600)
	}

	// no temp files left behind
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "snapshot.json" {
			t.Errorf("unexpected file in directory: %s", entry.Name())
		}
	}
}

func TestWriteFileAtomicOverwrite(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "snapshot.json")

	if err := WriteFileAtomic(testFile, []byte("initial"), 0o644); err != nil {
		t.Fatalf("initial write failed: %v", err)
	}

	newData := []byte("updated content")
	if err := WriteFileAtomic(testFile, newData, 0o644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != string(newData) {
		t.Errorf("content mismatch: got %q, want %q", data, newData)
	}
}

func TestWriteFileAtomicInvalidDir(t *testing.T) {
	t.Parallel()

	if err := WriteFileAtomic("/nonexistent/dir/snapshot.json", []byte("data"), 0o644); err == nil {
		t.Error("expected error when writing to non-existent directory")
	}
}
