package meaning

import (
	"fmt"
	"io"
	"strings"
)

// DumpOptions configures Dump.
type DumpOptions struct {
	// Spans appends [start-end) byte ranges to every node line.
	Spans bool
}

type dumper struct {
	w    io.Writer
	opts DumpOptions
	err  error
}

// Dump writes an indented text rendering of n.
func Dump(w io.Writer, n *Node, opts DumpOptions) error {
	d := &dumper{w: w, opts: opts}
	d.node("", n, 0)
	return d.err
}

func (d *dumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *dumper) node(label string, n *Node, depth int) {
	pad := strings.Repeat("  ", depth)
	d.printf("%s%s%s", pad, label, n.Kind)
	if n.IsAtom() {
		d.printf(" %q", n.AtomText())
	}
	if d.opts.Spans {
		d.printf(" [%d-%d)", n.Span.Start, n.Span.End)
	}
	d.printf("\n")
	if n.IsAtom() {
		return
	}
	for _, f := range n.Fields {
		d.field(f, depth+1)
	}
}

func (d *dumper) field(f Field, depth int) {
	pad := strings.Repeat("  ", depth)
	switch f.Value.Kind {
	case ValueText:
		d.printf("%s%s: %q\n", pad, f.Name, f.Value.Text)
	case ValueNode:
		d.node(f.Name+": ", f.Value.Node, depth)
	case ValueList:
		d.printf("%s%s:\n", pad, f.Name)
		for _, c := range f.Value.List {
			d.node("- ", c, depth+1)
		}
	default:
		d.printf("%s%s: <none>\n", pad, f.Name)
	}
}
