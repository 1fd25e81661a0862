package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rbfmt/internal/diag"
	"rbfmt/internal/source"
)

type palette struct {
	err, warn, info, code, path, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		code:   color.New(color.Faint),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Диагностики на весь файл (пустой span в начале) печатаются без позиции.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		header := pal.path.Sprint(location(d.Primary, f, fs, opts.PathMode))
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			header,
			pal.severity(d.Severity).Sprint(d.Severity.String()),
			pal.code.Sprint(d.Code.ID()),
			d.Message)
		if f != nil && !wholeFile(d.Primary) {
			snippet(w, f, d.Primary, opts.Context, pal)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			fmt.Fprintf(w, "  %s %s: %s\n", pal.note.Sprint("note:"), location(n.Span, nf, fs, opts.PathMode), n.Msg)
		}
	}
}

func wholeFile(sp source.Span) bool {
	return sp.Start == 0 && sp.End == 0
}

// location renders path[:line:col] for sp.
func location(sp source.Span, f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	path := displayPath(f, fs, mode)
	if wholeFile(sp) {
		return path
	}
	pos := f.Position(sp.Start)
	return fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
}

func displayPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if mode == PathModeRelative {
		return f.Display(mode, fs.BaseDir())
	}
	return f.Display(mode, "")
}

// snippet prints the primary line with context lines around it and marks
// the span on the primary line.
func snippet(w io.Writer, f *source.File, sp source.Span, context int8, pal palette) {
	start, end := f.Position(sp.Start), f.Position(sp.End)
	ctx := uint32(max(context, 0)) // #nosec G115 -- non-negative int8
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	gutterWidth := len(fmt.Sprint(last))

	for n := first; n <= last; n++ {
		if int(n) > len(f.LineIdx)+1 {
			break
		}
		text := f.Line(n)
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, n), text)
		if n != start.Line {
			continue
		}
		from := int(start.Col) - 1
		to := len(text)
		if end.Line == start.Line {
			to = int(end.Col) - 1
		}
		from = min(max(from, 0), len(text))
		to = min(max(to, from+1), max(len(text), from+1))
		marker := "^"
		if to-from > 1 {
			marker += strings.Repeat("~", runewidth.StringWidth(text[from+1:min(to, len(text))]))
		}
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), pad(text[:from]), pal.caret.Sprint(marker))
	}
}

// pad returns whitespace as wide as prefix, keeping its tabs.
func pad(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}
