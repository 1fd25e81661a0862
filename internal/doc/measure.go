package doc

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Width is the display width of s in terminal cells.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// FlatWidth measures d printed flat. ok is false when d cannot be flat
// because it contains a forced break or a group forced broken.
func FlatWidth(d Doc) (width int, ok bool) {
	w := 0
	ok = flatWidth(d, &w)
	return w, ok
}

func flatWidth(d Doc, w *int) bool {
	switch d := d.(type) {
	case Text:
		*w += Width(string(d))
	case Raw:
		*w += Width(string(d))
	case Concat:
		for _, p := range d {
			if !flatWidth(p, w) {
				return false
			}
		}
	case Indent:
		return flatWidth(d.Contents, w)
	case *Group:
		if d.Break {
			return false
		}
		return flatWidth(d.Contents, w)
	case IfBreak:
		return flatWidth(d.Flat, w)
	case Line:
		switch d.Kind {
		case LineSpace:
			*w++
		case LineHard, LineLiteral:
			return false
		}
	case BreakParent, Leading:
		return false
	}
	return true
}

// Overflows returns the 1-based numbers of lines in out wider than width.
func Overflows(out []byte, width int) []int {
	var lines []int
	for i, l := range strings.Split(string(out), "\n") {
		if Width(l) > width {
			lines = append(lines, i+1)
		}
	}
	return lines
}
