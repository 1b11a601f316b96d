package localstate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDir_Override(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "home")
	t.Setenv(envHome, tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir error: %v", err)
	}
	if dir != tmp {
		t.Fatalf("expected dir %s, got %s", tmp, dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("dir not created: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(envHome, tmp)

	p, err := DefaultPath(BackendSQLite)
	if err != nil {
		t.Fatalf("DefaultPath error: %v", err)
	}
	if expected := filepath.Join(tmp, dbFilename); p != expected {
		t.Fatalf("expected path %s, got %s", expected, p)
	}
	p, _ = DefaultPath(BackendFile)
	if expected := filepath.Join(tmp, jsonFilename); p != expected {
		t.Fatalf("expected path %s, got %s", expected, p)
	}
}
