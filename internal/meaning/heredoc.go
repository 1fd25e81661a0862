package meaning

import (
	"bytes"
	"slices"
	"strings"

	"rbfmt/internal/source"
	"rbfmt/internal/syntax"
)

// heredocOpening turns `<<~ID` into a heredoc node. The body field is
// filled when the matching heredoc_body extra shows up later in the walk.
func (s *buildState) heredocOpening(cn syntax.Node) (*Node, source.Span, error) {
	text := cn.Text(s.src)
	kind := KindPlainHeredoc
	switch {
	case strings.HasPrefix(text, "<<~"):
		kind = KindSquigglyHeredoc
	case strings.HasPrefix(text, "<<-"):
		kind = KindDashHeredoc
	}
	sp := s.span(cn.Start(), cn.End())
	n := &Node{
		Kind: kind,
		Fields: []Field{
			{Name: FieldOpening, Value: Value{Kind: ValueText, Text: text}},
			{Name: FieldBody},
		},
		Span: sp,
	}
	s.pending = append(s.pending, n)
	s.heredocs = append(s.heredocs, n)
	return n, sp, nil
}

// pairBody attaches a heredoc_body extra to the oldest opening still
// waiting at the same nesting depth: an opening written inside another
// heredoc's body takes a body from inside that body too.
func (s *buildState) pairBody(cn syntax.Node) error {
	if len(s.pending) == 0 {
		return s.violation(cn, "", "heredoc body without opening")
	}
	start := s.contentStart(cn)
	depth := s.enclosing(start)
	pick := 0
	for i, h := range s.pending {
		if s.enclosing(h.Span.Start) == depth {
			pick = i
			break
		}
	}
	h := s.pending[pick]
	s.pending = slices.Delete(s.pending, pick, pick+1)
	s.bodies = append(s.bodies, s.span(start, cn.End()))
	body, err := s.heredocBody(cn)
	if err != nil {
		return err
	}
	h.Fields[1].Value = Value{Kind: ValueNode, Node: body}
	return nil
}

// enclosing returns the index of the innermost known body holding off, or
// -1 at the top level.
func (s *buildState) enclosing(off uint32) int {
	found := -1
	for i, b := range s.bodies {
		if b.ContainsOffset(off) && (found < 0 || b.Start >= s.bodies[found].Start) {
			found = i
		}
	}
	return found
}

// contentStart is where a body's text begins: the line after its opening.
func (s *buildState) contentStart(cn syntax.Node) uint32 {
	start := cn.Start()
	if start > 0 && s.src[start-1] != '\n' {
		if i := bytes.IndexByte(s.src[start:cn.End()], '\n'); i >= 0 {
			start += uint32(i) + 1 // #nosec G115 -- bounded by cn.End()
		}
	}
	return start
}

// heredocBody builds the body node: literal segments between the direct
// interpolations, plus the terminator word. Content runs from the first
// line after the opening line to the start of the terminator line.
func (s *buildState) heredocBody(cn syntax.Node) (*Node, error) {
	start := s.contentStart(cn)
	opened := len(s.heredocs)

	var end syntax.Node
	for i := cn.ChildCount() - 1; i >= 0; i-- {
		if c := cn.Child(i); c.Kind() == syntax.KindHeredocEnd {
			end = c
			break
		}
	}
	if end.IsNull() {
		return nil, s.violation(cn, FieldTerm, "heredoc body without terminator")
	}
	termLine := uint32(bytes.LastIndexByte(s.src[:end.Start()], '\n') + 1) // #nosec G115 -- offsets fit the file
	termLine = max(termLine, start)
	terminator := strings.TrimLeft(string(s.src[termLine:end.End()]), " \t")

	kind := KindHeredocBody
	var parts []*Node
	cursor := start
	literal := func(upTo uint32) {
		if upTo > cursor {
			sp := s.span(cursor, upTo)
			parts = append(parts, atom(KindHeredocContent, string(s.src[cursor:upTo]), sp))
		}
	}
	for i := 0; i < cn.ChildCount(); i++ {
		c := cn.Child(i)
		switch c.Kind() {
		case KindInterpolation.String():
			literal(c.Start())
			in, _, err := s.convert(c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, in)
			cursor = c.End()
		case syntax.KindHeredocBody:
			// a nested body sitting in our literal text: only a byte copy
			// of the whole body keeps both intact
			kind = KindOpaqueHeredocBody
			if err := s.pairBody(c); err != nil {
				return nil, err
			}
		case syntax.KindComment:
			s.comments = append(s.comments, s.span(c.Start(), c.End()))
		}
	}
	literal(termLine)
	if len(s.heredocs) > opened {
		// a heredoc opened in an interpolation keeps its body inside ours;
		// the text stays byte for byte
		kind = KindOpaqueHeredocBody
	}

	n := &Node{Kind: kind, Span: s.span(start, end.End())}
	if len(parts) > 0 {
		n.Fields = append(n.Fields, Field{Name: FieldParts, Value: Value{Kind: ValueList, List: parts}})
	}
	n.Fields = append(n.Fields, Field{Name: FieldTerm, Value: Value{Kind: ValueText, Text: terminator}})
	return n, nil
}

// LinePart is a piece of one heredoc line: literal text without newlines or
// an interpolation kept whole.
type LinePart struct {
	Text   string
	Interp *Node
}

// Line is one body line, without its newline.
type Line struct {
	Parts []LinePart
}

// Lines splits a heredoc body into lines. Interpolations are atomic, so a
// multi-line interpolation stays inside the line where it starts.
func Lines(body *Node) []Line {
	var (
		out []Line
		cur Line
	)
	for _, p := range body.List(FieldParts) {
		if p.Kind != KindHeredocContent {
			cur.Parts = append(cur.Parts, LinePart{Interp: p})
			continue
		}
		text := p.AtomText()
		for {
			i := strings.IndexByte(text, '\n')
			if i < 0 {
				break
			}
			if i > 0 {
				cur.Parts = append(cur.Parts, LinePart{Text: text[:i]})
			}
			out = append(out, cur)
			cur = Line{}
			text = text[i+1:]
		}
		if text != "" {
			cur.Parts = append(cur.Parts, LinePart{Text: text})
		}
	}
	if len(cur.Parts) > 0 {
		out = append(out, cur)
	}
	return out
}

// Blank reports whether the line holds only spaces and tabs.
func (l Line) Blank() bool {
	for _, p := range l.Parts {
		if p.Interp != nil || strings.Trim(p.Text, " \t") != "" {
			return false
		}
	}
	return true
}

// Indent returns the width of the leading whitespace and whether it holds a
// tab.
func (l Line) Indent() (int, bool) {
	width, tab := 0, false
	for _, p := range l.Parts {
		if p.Interp != nil {
			return width, tab
		}
		for i := 0; i < len(p.Text); i++ {
			switch p.Text[i] {
			case ' ':
				width++
			case '\t':
				width++
				tab = true
			default:
				return width, tab
			}
		}
	}
	return width, tab
}

// TrimIndent drops n leading whitespace bytes.
func (l Line) TrimIndent(n int) Line {
	var out Line
	for _, p := range l.Parts {
		if n > 0 && p.Interp == nil {
			k := min(n, len(p.Text))
			n -= k
			if rest := p.Text[k:]; rest != "" {
				out.Parts = append(out.Parts, LinePart{Text: rest})
			}
			continue
		}
		n = 0
		out.Parts = append(out.Parts, p)
	}
	return out
}

// SquigglyIndent returns the indentation Ruby strips from a `<<~` body: the
// smallest indent among lines that are not blank. ok is false when the body
// cannot be re-indented safely: a tab in the indentation, a line
// continuation, a multi-line interpolation, or no content lines at all.
func SquigglyIndent(body *Node, src []byte) (width int, ok bool) {
	for _, part := range body.List(FieldParts) {
		if part.Kind == KindHeredocContent {
			if strings.Contains(part.AtomText(), "\\\n") {
				return 0, false
			}
			continue
		}
		if bytes.IndexByte(part.Span.Bytes(src), '\n') >= 0 {
			return 0, false
		}
	}
	width = -1
	for _, l := range Lines(body) {
		w, tab := l.Indent()
		if tab {
			return 0, false
		}
		if l.Blank() {
			continue
		}
		if width < 0 || w < width {
			width = w
		}
	}
	if width < 0 {
		return 0, false
	}
	return width, true
}
