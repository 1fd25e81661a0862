package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rbfmt/internal/diag"
	"rbfmt/internal/source"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestIsRubyFile(t *testing.T) {
	tests := map[string]bool{
		"app/models/user.rb": true,
		"lib/tasks/db.rake":  true,
		"rbfmt.gemspec":      true,
		"config.ru":          true,
		"Rakefile":           true,
		"sub/Gemfile":        true,
		"Gemfile.lock":       false,
		"README.md":          false,
		"script.py":          false,
	}
	for name, want := range tests {
		if got := IsRubyFile(name); got != want {
			t.Errorf("IsRubyFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCollectSkipsIgnoredFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, ".gitignore"), "vendor\n")
	writeTestFile(t, filepath.Join(root, ".rbfmt.yml"), "exclude:\n  - \"*.generated.rb\"\n")
	writeTestFile(t, filepath.Join(root, "app", "a.rb"), "a\n")
	writeTestFile(t, filepath.Join(root, "app", "b.generated.rb"), "b\n")
	writeTestFile(t, filepath.Join(root, "vendor", "gem.rb"), "c\n")
	writeTestFile(t, filepath.Join(root, ".git", "hooks.rb"), "d\n")
	writeTestFile(t, filepath.Join(root, "notes.txt"), "e\n")
	writeTestFile(t, filepath.Join(root, "Rakefile"), "f\n")

	files, err := collectSourceFiles(context.Background(), []string{root}, newConfigCache(nil))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Rakefile", "app/a.rb"}
	if diff := cmp.Diff(want, relPaths(t, root, files)); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectKeepsExplicitFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "script")
	writeTestFile(t, path, "puts 1\n")

	files, err := collectSourceFiles(context.Background(), []string{path, path}, newConfigCache(nil))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{path}, files); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatPathsWrites(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.rb")
	writeTestFile(t, path, "foo(a,b)\n")
	clean := filepath.Join(root, "b.rb")
	writeTestFile(t, clean, "bar\n")

	_, results, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if !results[0].Changed || results[1].Changed {
		t.Fatalf("unexpected changed flags: %v %v", results[0].Changed, results[1].Changed)
	}
	if got := readFile(t, path); got != "foo(a, b)\n" {
		t.Fatalf("file not rewritten: %q", got)
	}
}

func TestFormatPathsCheckLeavesFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.rb")
	writeTestFile(t, path, "foo(a,b)\n")

	files, results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Check: true})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Changed {
		t.Fatal("check must report the file as changed")
	}
	if got := readFile(t, path); got != "foo(a,b)\n" {
		t.Fatalf("check mode wrote the file: %q", got)
	}

	bag := Diagnose(files, results, true, false)
	if bag.Len() != 1 || bag.Items()[0].Code != diag.FmtNotFormatted {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestFormatPathsDiff(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.rb")
	writeTestFile(t, path, "x = 1\nfoo(a,b)\n")

	_, results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Diff: true})
	if err != nil {
		t.Fatal(err)
	}
	want := "--- " + path + "\n+++ " + path + " (formatted)\n" +
		"@@ -1,2 +1,2 @@\n" +
		" x = 1\n" +
		"-foo(a,b)\n" +
		"+foo(a, b)\n"
	if diff := cmp.Diff(want, results[0].Diff); diff != "" {
		t.Fatalf("diff mismatch (-want +got):\n%s", diff)
	}
	if got := readFile(t, path); got != "x = 1\nfoo(a,b)\n" {
		t.Fatalf("diff mode wrote the file: %q", got)
	}
}

func TestFormatPathsParseErrorKeepsFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "broken.rb")
	src := "def foo(\n"
	writeTestFile(t, path, src)

	files, results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Err == nil {
		t.Fatal("expected a parse error")
	}
	if got := readFile(t, path); got != src {
		t.Fatalf("broken file was modified: %q", got)
	}
	bag := Diagnose(files, results, false, false)
	if !bag.HasErrors() || bag.Items()[0].Code != diag.SynParseError {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestFormatPathsNoFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "README.md"), "# hi\n")

	_, _, err := FormatPaths(context.Background(), []string{root}, FormatOptions{})
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("want ErrNoFiles, got %v", err)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func TestFormatPathsReportsProgress(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "a.rb"), "foo(a,b)\n")
	writeTestFile(t, filepath.Join(root, "b.rb"), "bar\n")

	sink := &recordingSink{}
	_, _, err := FormatPaths(context.Background(), []string{root}, FormatOptions{Check: true, Progress: sink})
	if err != nil {
		t.Fatal(err)
	}
	final := make(map[string]Status)
	for _, evt := range sink.events {
		final[filepath.Base(evt.File)] = evt.Status
	}
	want := map[string]Status{"a.rb": StatusDone, "b.rb": StatusSkipped}
	if diff := cmp.Diff(want, final); diff != "" {
		t.Fatalf("final statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatSourceUsesWidth(t *testing.T) {
	files := source.NewFileSet()
	res := FormatSource(context.Background(), files, "<stdin>", []byte("[1111111111, 2222222222, 3333333333]\n"), FormatOptions{Width: 20})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	want := "[\n  1111111111,\n  2222222222,\n  3333333333,\n]\n"
	if diff := cmp.Diff(want, string(res.Formatted)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestUnifiedDiffSeparatesDistantHunks(t *testing.T) {
	var before, after strings.Builder
	for i := range 20 {
		line := "line\n"
		before.WriteString(line)
		if i == 0 || i == 19 {
			line = "changed\n"
		}
		after.WriteString(line)
	}
	out := UnifiedDiff("f.rb", []byte(before.String()), []byte(after.String()))
	if got := strings.Count(out, "@@ -"); got != 2 {
		t.Fatalf("want 2 hunks, got %d:\n%s", got, out)
	}
	if UnifiedDiff("f.rb", []byte("a\n"), []byte("a\n")) != "" {
		t.Fatal("identical input must produce no diff")
	}
}
