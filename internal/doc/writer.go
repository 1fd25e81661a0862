package doc

import (
	"bytes"
	"strings"
)

// writer accumulates output. Indentation is written lazily when the first
// text of a line arrives, so empty lines never carry trailing spaces.
type writer struct {
	buf         []byte
	indentWidth int
	// pending is the indentation level owed to the current line.
	pending     int
	atLineStart bool
	// keep is the length of buf that trimming must not cross: raw source
	// text keeps its trailing whitespace.
	keep int
	// col is the display column after the last write.
	col int
}

func newWriter(sizeHint, indentWidth int) *writer {
	return &writer{
		buf:         make([]byte, 0, sizeHint),
		indentWidth: indentWidth,
		atLineStart: true,
	}
}

func (w *writer) writeIndent() {
	if !w.atLineStart {
		return
	}
	n := w.pending * w.indentWidth
	w.buf = append(w.buf, strings.Repeat(" ", n)...)
	w.col = n
	w.atLineStart = false
}

func (w *writer) text(s string, raw bool) {
	if s == "" {
		return
	}
	w.writeIndent()
	w.buf = append(w.buf, s...)
	w.col += Width(s)
	if raw {
		w.keep = len(w.buf)
	}
}

// newline ends the current line; the next one is owed level indentation.
func (w *writer) newline(level int) {
	w.trim()
	w.buf = append(w.buf, '\n')
	w.pending = level
	w.atLineStart = true
	w.col = level * w.indentWidth
}

// outdent cancels the indentation owed to a line nothing was written to.
func (w *writer) outdent() {
	if w.atLineStart {
		w.pending = 0
		w.col = 0
	}
}

func (w *writer) trim() {
	end := len(bytes.TrimRight(w.buf[w.keep:], " \t")) + w.keep
	w.buf = w.buf[:end]
}
