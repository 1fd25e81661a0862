package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddKeepsEveryVersion(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.Add("app.rb", []byte("puts 1"), 0)
	id2 := fs.Add("./app.rb", []byte("puts 2"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("ids = %d, %d; want 0, 1", id1, id2)
	}
	if got := string(fs.Get(id1).Content); got != "puts 1" {
		t.Errorf("first version = %q", got)
	}
	if p := fs.Get(id2).Path; p != "app.rb" {
		t.Errorf("path not normalized: %q", p)
	}
	if fs.Get(FileID(42)) != nil {
		t.Error("Expected nil for unknown FileID")
	}
}

// TestAddVirtualLineIdx проверяет правильность построения LineIdx для AddVirtual
func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.rb", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3} // позиции символов \n
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

func TestResolvePositions(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("pos.rb", []byte("foo\nbar baz\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{3, LineCol{Line: 1, Col: 4}}, // the newline itself
		{4, LineCol{Line: 2, Col: 1}},
		{8, LineCol{Line: 2, Col: 5}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: want %+v, got %+v", tt.off, tt.want, start)
		}
	}
}

func TestLines(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("lines.rb", []byte("first\nsecond\nthird")))

	tests := []struct {
		n    uint32
		text string
		span Span
	}{
		{1, "first", Span{File: f.ID, Start: 0, End: 5}},
		{2, "second", Span{File: f.ID, Start: 6, End: 12}},
		{3, "third", Span{File: f.ID, Start: 13, End: 18}},
		{0, "", Span{File: f.ID, Start: 18, End: 18}},
		{9, "", Span{File: f.ID, Start: 18, End: 18}},
	}
	for _, tt := range tests {
		if got := f.Line(tt.n); got != tt.text {
			t.Errorf("Line(%d) = %q, want %q", tt.n, got, tt.text)
		}
		if got := f.LineSpan(tt.n); got != tt.span {
			t.Errorf("LineSpan(%d) = %v, want %v", tt.n, got, tt.span)
		}
	}
}

func TestDisplay(t *testing.T) {
	tmp := t.TempDir()
	base := filepath.Join(tmp, "base")
	inside := &File{Path: filepath.ToSlash(filepath.Join(base, "lib", "a.rb"))}
	outside := &File{Path: filepath.ToSlash(filepath.Join(tmp, "other", "b.rb"))}

	if got := inside.Display(PathRelative, base); got != "lib/a.rb" {
		t.Errorf("relative inside base = %q", got)
	}
	if got := outside.Display(PathRelative, base); got != outside.Path {
		t.Errorf("relative outside base = %q, want absolute %q", got, outside.Path)
	}
	if got := inside.Display(PathBase, ""); got != "a.rb" {
		t.Errorf("base name = %q", got)
	}
	short := &File{Path: "lib/a.rb"}
	if got := short.Display(PathAuto, ""); got != "lib/a.rb" {
		t.Errorf("auto keeps relative paths, got %q", got)
	}
}

func TestLoadNormalizesAndRestores(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.rb")
	raw := []byte("\xEF\xBB\xBFa = 1\r\nb = 2\r\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a = 1\nb = 2\n" {
		t.Fatalf("unexpected normalized content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got := Restore(f.Content, f.Flags); string(got) != string(raw) {
		t.Fatalf("Restore mismatch:\nwant %q\ngot  %q", raw, got)
	}
}
