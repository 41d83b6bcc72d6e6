package seedfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "seed.yaml")

	yamlContent := `---
owners:
  - owner: user-1
    bookmarks:
      - url: https://go.dev
        title: The Go Programming Language
      - url: https://news.ycombinator.com
`

	err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644)
	if err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(config.Owners) != 1 {
		t.Fatalf("Load() owners = %d, want 1", len(config.Owners))
	}
	if len(config.Owners[0].Bookmarks) != 2 {
		t.Fatalf("Load() bookmarks = %d, want 2", len(config.Owners[0].Bookmarks))
	}
	if config.Owners[0].Owner != "user-1" {
		t.Errorf("Load() owner = %q, want %q", config.Owners[0].Owner, "user-1")
	}
}

func TestLoaderLoadMissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := loader.Load(); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}
