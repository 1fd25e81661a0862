package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

// ContainsOffset reports whether off is inside [Start, End).
func (s Span) ContainsOffset(off uint32) bool {
	return s.Start <= off && off < s.End
}

// Before reports whether s ends at or before other starts.
func (s Span) Before(other Span) bool {
	return s.End <= other.Start
}

// Bytes slices the span out of content, clamping to its bounds.
func (s Span) Bytes(content []byte) []byte {
	n := uint32(len(content)) // #nosec G115 -- file sizes are bounded by FileSet.Add
	start, end := min(s.Start, n), min(s.End, n)
	if start > end {
		start = end
	}
	return content[start:end]
}
