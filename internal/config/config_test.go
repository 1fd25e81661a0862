package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rbfmt/internal/format"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".rbfmt.toml"), "[format]\nline_width = 80\n")
	deep := filepath.Join(root, "app", "models")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Discover(deep)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Root != root {
		t.Fatalf("root = %q, want %q", cfg.Root, root)
	}
	if got := cfg.Options().MaxWidth; got != 80 {
		t.Fatalf("MaxWidth = %d, want 80", got)
	}
}

func TestDiscoverDefaults(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(format.DefaultOptions(), cfg.Options()); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".rbfmt.yml")
	writeFile(t, path, `format:
  line_width: 120
  indent_width: 4
  block:
    max_inline_width: 40
  chain:
    min_calls: 4
exclude:
  - vendor/
  - "*.generated.rb"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := format.DefaultOptions()
	want.MaxWidth = 120
	want.IndentWidth = 4
	want.Block.MaxInlineWidth = 40
	want.Chain.MinCalls = 4
	if diff := cmp.Diff(want, cfg.Options()); diff != "" {
		t.Fatalf("options (-want +got):\n%s", diff)
	}
	root := filepath.Dir(path)
	if !cfg.Excluded(filepath.Join(root, "vendor", "gem", "a.rb")) {
		t.Error("vendor file not excluded")
	}
	if !cfg.Excluded(filepath.Join(root, "lib", "x.generated.rb")) {
		t.Error("generated file not excluded")
	}
	if cfg.Excluded(filepath.Join(root, "lib", "x.rb")) {
		t.Error("regular file excluded")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, ".rbfmt.toml")
	writeFile(t, tomlPath, "[format]\nline_widht = 80\n")
	if _, err := Load(tomlPath); err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Fatalf("want unknown keys error, got %v", err)
	}

	yamlPath := filepath.Join(dir, ".rbfmt.yaml")
	writeFile(t, yamlPath, "format:\n  line_widht: 80\n")
	if _, err := Load(yamlPath); err == nil {
		t.Fatal("want error for unknown yaml key")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".rbfmt.toml")
	writeFile(t, path, "[format]\nindent_width = 12\n")
	if _, err := Load(path); err == nil {
		t.Fatal("want error for indent_width 12")
	}
}
