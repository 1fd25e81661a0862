package driver

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// UnifiedDiff renders the change from before to after as a unified diff
// with three lines of context. It returns "" when nothing changed.
func UnifiedDiff(path string, before, after []byte) string {
	if string(before) == string(after) {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var all []diffLine
	for _, d := range diffs {
		for _, l := range splitLines(d.Text) {
			all = append(all, diffLine{op: d.Type, text: l})
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s (formatted)\n", path, path)
	for start := 0; start < len(all); {
		first := nextChange(all, start)
		if first < 0 {
			break
		}
		lo := max(first-diffContext, start)
		hi := hunkEnd(all, first)
		writeHunk(&sb, all, lo, hi)
		start = hi
	}
	return sb.String()
}

// splitLines keeps the newline on every line but the last one when the text
// does not end with a newline.
func splitLines(s string) []string {
	var out []string
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			out = append(out, s)
			break
		}
		out = append(out, s[:i+1])
		s = s[i+1:]
	}
	return out
}

func nextChange(all []diffLine, from int) int {
	for i := from; i < len(all); i++ {
		if all[i].op != diffmatchpatch.DiffEqual {
			return i
		}
	}
	return -1
}

// hunkEnd extends a hunk past its changes until more than two context
// windows of unchanged lines separate it from the next change.
func hunkEnd(all []diffLine, first int) int {
	last := first
	for i := first; i < len(all) && i-last <= 2*diffContext; i++ {
		if all[i].op != diffmatchpatch.DiffEqual {
			last = i
		}
	}
	return min(last+1+diffContext, len(all))
}

func writeHunk(sb *strings.Builder, all []diffLine, lo, hi int) {
	oldStart, newStart := 1, 1
	for _, l := range all[:lo] {
		if l.op != diffmatchpatch.DiffInsert {
			oldStart++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}
	oldLen, newLen := 0, 0
	for _, l := range all[lo:hi] {
		if l.op != diffmatchpatch.DiffInsert {
			oldLen++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newLen++
		}
	}
	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", oldStart, oldLen, newStart, newLen)
	for _, l := range all[lo:hi] {
		prefix := " "
		switch l.op {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		sb.WriteString(prefix)
		sb.WriteString(l.text)
		if !strings.HasSuffix(l.text, "\n") {
			sb.WriteString("\n\\ No newline at end of file\n")
		}
	}
}
