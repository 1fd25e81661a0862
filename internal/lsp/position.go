package lsp

import (
	"strings"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"

	"rbfmt/internal/source"
)

// LSP columns count UTF-16 code units; the formatter works in bytes.

func utf16Width(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// utf16Len counts code units of s; each invalid byte counts as one.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Width(r)
	}
	return n
}

func toUint32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		if n < 0 {
			return 0
		}
		return ^uint32(0)
	}
	return v
}

// offsetForPosition maps an editor position to a byte offset in text.
// Positions past the end of a line clamp to the line end, positions inside
// a surrogate pair to the start of the rune.
func offsetForPosition(text string, pos protocol.Position) int {
	start := 0
	for range pos.Line {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			return len(text)
		}
		start += nl + 1
	}
	want := int(pos.Character)
	units := 0
	for i, r := range text[start:] {
		if r == '\n' || units >= want {
			return start + i
		}
		units += utf16Width(r)
		if units > want {
			return start + i
		}
	}
	return len(text)
}

// applyChanges replays didChange events in order. A change without a range
// replaces the whole document.
func applyChanges(text string, changes []contentChange) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := offsetForPosition(text, change.Range.Start)
		end := max(offsetForPosition(text, change.Range.End), start)
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// endPosition is the position just past the last character of text.
func endPosition(text string) protocol.Position {
	lastLine := text[strings.LastIndexByte(text, '\n')+1:]
	return protocol.Position{
		Line:      toUint32(strings.Count(text, "\n")),
		Character: toUint32(utf16Len(lastLine)),
	}
}

func positionInFile(file *source.File, off uint32) protocol.Position {
	off = min(off, toUint32(len(file.Content)))
	pos := file.Position(off)
	lineStart := off - (pos.Col - 1)
	return protocol.Position{
		Line:      pos.Line - 1,
		Character: toUint32(utf16Len(string(file.Content[lineStart:off]))),
	}
}

// rangeForSpan converts a byte span of file into an editor range.
func rangeForSpan(file *source.File, span source.Span) protocol.Range {
	if file == nil {
		return protocol.Range{}
	}
	return protocol.Range{Start: positionInFile(file, span.Start), End: positionInFile(file, span.End)}
}
