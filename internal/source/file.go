package source

import (
	"os"
	"path/filepath"
)

type (
	// FileID indexes a File inside its FileSet.
	FileID uint32
	// FileFlags records what loading changed about the bytes on disk.
	FileFlags uint8
)

const (
	FileVirtual        FileFlags = 1 << iota // stdin, editor buffer, formatter output
	FileHadBOM                               // UTF-8 BOM stripped
	FileNormalizedCRLF                       // CRLF rewritten to LF
)

// File is one normalized Ruby source with its line index.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineIdx holds the offset of every '\n'.
	LineIdx []uint32
	Flags   FileFlags
}

// LineCol is a 1-based position; Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

// Position converts a byte offset into a line and column.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// LineSpan covers line n (1-based) without its newline. Lines past the end
// give an empty span at the end of the file.
func (f *File) LineSpan(n uint32) Span {
	size := uint32(len(f.Content)) // #nosec G115 -- bounded by FileSet.Add
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return Span{File: f.ID, Start: size, End: size}
	}
	var start uint32
	if n >= 2 {
		start = f.LineIdx[n-2] + 1
	}
	end := size
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	return Span{File: f.ID, Start: min(start, end), End: end}
}

// Line returns the text of line n (1-based), "" when there is none.
func (f *File) Line(n uint32) string {
	return string(f.LineSpan(n).Bytes(f.Content))
}

// PathMode selects how Display shows a path.
type PathMode uint8

const (
	// PathAuto keeps short or relative paths and cuts long absolute ones to
	// the base name.
	PathAuto PathMode = iota
	PathAbsolute
	PathRelative
	PathBase
)

// Display renders the file path for diagnostics. Relative paths are taken
// against baseDir, or the working directory when it is empty.
func (f *File) Display(mode PathMode, baseDir string) string {
	switch mode {
	case PathAbsolute:
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case PathRelative:
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case PathBase:
		return filepath.Base(f.Path)
	default:
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
