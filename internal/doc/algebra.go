package doc

import "strings"

// Doc is any document node.
type Doc interface {
	isDoc()
}

// Text is generated text. It never contains a newline.
type Text string

// Raw is text copied from the source. Trailing whitespace in it survives
// line breaks.
type Raw string

// Concat prints its parts in order.
type Concat []Doc

// Indent prints Contents one indentation level deeper. Only line breaks
// inside Contents are affected.
type Indent struct {
	Contents Doc
}

// LineKind selects how a Line prints in flat mode and whether it indents.
type LineKind uint8

const (
	// LineSpace is a space when flat, a newline when broken.
	LineSpace LineKind = iota
	// LineSoft is nothing when flat, a newline when broken.
	LineSoft
	// LineHard always breaks and forces enclosing groups to break.
	LineHard
	// LineLiteral always breaks and starts the next line at column 0.
	LineLiteral
)

// Line is a possible line break.
type Line struct {
	Kind LineKind
}

var (
	SpaceLine   Doc = Line{Kind: LineSpace}
	SoftLine    Doc = Line{Kind: LineSoft}
	HardLine    Doc = Line{Kind: LineHard}
	LiteralLine Doc = Line{Kind: LineLiteral}
)

// GroupID names a group so IfBreak can test it from outside.
type GroupID int

// Group is printed flat when it fits, broken otherwise.
type Group struct {
	ID       GroupID
	Contents Doc
	// Break forces broken mode. Set by layout or by break propagation.
	Break bool
	// NoBreak keeps the contents flat even when they do not fit; hard
	// lines inside still break.
	NoBreak bool
}

// IfBreak picks Broken or Flat depending on the mode of group GroupID, or
// of the enclosing group when GroupID is zero.
type IfBreak struct {
	Broken  Doc
	Flat    Doc
	GroupID GroupID
}

// LineSuffix is printed just before the next newline. It does not count
// towards the width of the line.
type LineSuffix struct {
	Contents Doc
}

// BreakParent forces every enclosing group to break.
type BreakParent struct{}

// Deferred is printed after the next newline, indented relative to the
// line that queued it. Heredoc bodies use it.
type Deferred struct {
	Contents Doc
}

// Leading puts Lines, which must end with a hard line, in front of
// Contents. At the start of a line both print at the current indentation;
// in the middle of a line they move to the next line, one level deeper.
// Comments placed before an inline operand use it.
type Leading struct {
	Lines    Doc
	Contents Doc
}

// Outdent drops the indentation of the current line when nothing has been
// written to it yet. =begin comments use it to start at column 0.
type Outdent struct{}

func (Text) isDoc()        {}
func (Raw) isDoc()         {}
func (Concat) isDoc()      {}
func (Indent) isDoc()      {}
func (Line) isDoc()        {}
func (*Group) isDoc()      {}
func (IfBreak) isDoc()     {}
func (LineSuffix) isDoc()  {}
func (BreakParent) isDoc() {}
func (Deferred) isDoc()    {}
func (Leading) isDoc()     {}
func (Outdent) isDoc()     {}

// Cat builds a Concat, skipping nil parts.
func Cat(parts ...Doc) Doc {
	out := make(Concat, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Nest is shorthand for Indent.
func Nest(parts ...Doc) Doc {
	return Indent{Contents: Cat(parts...)}
}

// G groups parts.
func G(parts ...Doc) *Group {
	return &Group{Contents: Cat(parts...)}
}

// Broken groups parts and forces them broken.
func Broken(parts ...Doc) *Group {
	return &Group{Contents: Cat(parts...), Break: true}
}

// Join puts sep between docs.
func Join(sep Doc, docs []Doc) Doc {
	out := make(Concat, 0, 2*len(docs))
	for i, d := range docs {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, d)
	}
	return out
}

// RawLines turns multi-line source text into Raw pieces separated by
// literal line breaks, so the printer never indents inside it.
func RawLines(s string) Doc {
	if !strings.Contains(s, "\n") {
		return Raw(s)
	}
	parts := strings.Split(s, "\n")
	out := make(Concat, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, LiteralLine)
		}
		if p != "" {
			out = append(out, Raw(p))
		}
	}
	return out
}

// IDs hands out group ids. The zero value is ready to use.
type IDs struct {
	next GroupID
}

// New returns a fresh id.
func (g *IDs) New() GroupID {
	g.next++
	return g.next
}
