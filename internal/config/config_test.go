package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CHUNK_SIZE", "RAG_MIN_SCORE", "ROUTER_POLICY", "MEMORY_WINDOW"} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap != 50 {
		t.Fatalf("unexpected chunking defaults: %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.MaxResults != 2 || cfg.MinScore != 0.5 {
		t.Fatalf("unexpected retrieval defaults: %d/%v", cfg.MaxResults, cfg.MinScore)
	}
	if cfg.MemoryWindow != 10 {
		t.Fatalf("unexpected memory window: %d", cfg.MemoryWindow)
	}
	if cfg.RouterPolicy != "all" {
		t.Fatalf("unexpected router policy: %q", cfg.RouterPolicy)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "200")
	t.Setenv("RAG_MIN_SCORE", "0.75")
	t.Setenv("ROUTER_POLICY", "classify")
	t.Setenv("ROUTER_FAIL_CLOSED", "true")

	cfg := Load()
	if cfg.ChunkSize != 200 {
		t.Fatalf("chunk size override ignored: %d", cfg.ChunkSize)
	}
	if cfg.MinScore != 0.75 {
		t.Fatalf("min score override ignored: %v", cfg.MinScore)
	}
	if cfg.RouterPolicy != "classify" || !cfg.RouterFailClosed {
		t.Fatalf("router overrides ignored: %q failClosed=%v", cfg.RouterPolicy, cfg.RouterFailClosed)
	}
}

func TestLoadMalformedIntFallsBack(t *testing.T) {
	t.Setenv("MEMORY_WINDOW", "not-a-number")

	cfg := Load()
	if cfg.MemoryWindow != 10 {
		t.Fatalf("expected fallback memory window, got %d", cfg.MemoryWindow)
	}
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - name: novel
    path: docs/novel.txt
    description: a science fiction novel about deep space exploration
  - name: report
    path: docs/report.pdf
    description: the 2025 annual financial report
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatalf("load sources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name != "novel" || sources[1].Path != "docs/report.pdf" {
		t.Fatalf("unexpected sources: %+v", sources)
	}
}

func TestLoadSourcesRejectsMissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := "sources:\n  - path: docs/a.txt\n    description: missing name\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadSources(path); err == nil {
		t.Fatal("expected error for source without name")
	}
}
