package trivia

import (
	"bytes"
	"slices"
	"sort"

	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
)

type attacher struct {
	src        []byte
	lineStarts []uint32
	bodies     []source.Span
	ann        *Annotations
}

// Attach places every comment of t and records blank lines before nodes.
//
// The main pass walks the tree in source order with a cursor over the
// sorted comments. Comments inside heredoc bodies (in interpolations) are
// placed by a separate pass over each body, innermost body first wins.
func Attach(t *meaning.Tree) *Annotations {
	a := &attacher{
		src:        t.Source,
		lineStarts: lineStarts(t.Source),
		ann: &Annotations{
			Comments: make([]Comment, len(t.Comments)),
			Owners:   make([]*meaning.Node, len(t.Comments)),
			byNode:   make(map[*meaning.Node]*Trivia),
		},
	}
	bodies := make([]*meaning.Node, 0, len(t.Heredocs))
	for _, h := range t.Heredocs {
		if body := h.Child(meaning.FieldBody); body != nil {
			bodies = append(bodies, body)
			a.bodies = append(a.bodies, body.Span)
		}
	}

	// owner body per comment: -1 for the main pass
	groups := make(map[int][]int)
	for i, sp := range t.Comments {
		text := string(sp.Bytes(t.Source))
		a.ann.Comments[i] = Comment{
			Index:            i,
			Span:             sp,
			Text:             string(bytes.TrimRight([]byte(text), " \t\r\n")),
			BlankLinesBefore: a.blankBefore(sp.Start),
			Block:            bytes.HasPrefix([]byte(text), []byte("=begin")),
		}
		owner := -1
		for j, b := range a.bodies {
			if b.ContainsOffset(sp.Start) && (owner < 0 || a.bodies[owner].Contains(b)) {
				owner = j
			}
		}
		groups[owner] = append(groups[owner], i)
	}

	(&pass{a: a, comments: groups[-1]}).run(t.Root, uint32(len(t.Source))) // #nosec G115 -- file size bounded by FileSet
	for j, body := range bodies {
		(&pass{a: a, comments: groups[j]}).run(body, body.Span.End)
	}
	return a.ann
}

type pass struct {
	a         *attacher
	comments  []int
	i         int
	candidate *meaning.Node
}

// run places the comments of one range. The root takes no leading
// comments: whatever precedes its first child leads that child.
func (p *pass) run(root *meaning.Node, end uint32) {
	p.children(root)
	p.flushInside(end, root)
	// whatever is left sits past the end of the range
	for ; p.i < len(p.comments); p.i++ {
		idx := p.comments[p.i]
		if p.candidate != nil && p.sameLine(idx, p.candidate) {
			p.a.ann.place(idx, p.candidate, Trailing)
			continue
		}
		p.a.ann.place(idx, root, Floating)
	}
}

func (p *pass) visit(n *meaning.Node) {
	p.enter(n)
	p.children(n)
	p.flushInside(n.Span.End, n)
	p.candidate = n
}

func (p *pass) enter(n *meaning.Node) {
	for p.i < len(p.comments) {
		idx := p.comments[p.i]
		if p.a.ann.Comments[idx].Span.Start >= n.Span.Start {
			break
		}
		if p.candidate != nil && p.sameLine(idx, p.candidate) {
			p.a.ann.place(idx, p.candidate, Trailing)
		} else {
			p.a.ann.place(idx, n, Leading)
		}
		p.i++
	}
	p.candidate = nil
	if blank := p.a.blankBefore(n.Span.Start); blank > 0 {
		p.a.ann.at(n).BlankLinesBefore = blank
	}
}

func (p *pass) flushInside(end uint32, n *meaning.Node) {
	for p.i < len(p.comments) {
		idx := p.comments[p.i]
		if p.a.ann.Comments[idx].Span.Start >= end {
			break
		}
		if p.candidate != nil && p.sameLine(idx, p.candidate) {
			p.a.ann.place(idx, p.candidate, Trailing)
		} else {
			p.a.ann.place(idx, n, Floating)
		}
		p.i++
	}
}

func (p *pass) children(n *meaning.Node) {
	if meaning.IsHeredoc(n) {
		// bodies get their own pass
		return
	}
	for _, c := range Children(n) {
		p.visit(c)
	}
}

func (p *pass) sameLine(idx int, n *meaning.Node) bool {
	end := n.Span.End
	if end > n.Span.Start {
		end--
	}
	return p.a.line(p.a.ann.Comments[idx].Span.Start) == p.a.line(end)
}

// Children returns the node children of n in source order.
func Children(n *meaning.Node) []*meaning.Node {
	var out []*meaning.Node
	for _, f := range n.Fields {
		switch f.Value.Kind {
		case meaning.ValueNode:
			out = append(out, f.Value.Node)
		case meaning.ValueList:
			out = append(out, f.Value.List...)
		}
	}
	slices.SortStableFunc(out, func(x, y *meaning.Node) int {
		return int(x.Span.Start) - int(y.Span.Start)
	})
	return out
}

func lineStarts(src []byte) []uint32 {
	starts := []uint32{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, uint32(i+1)) // #nosec G115 -- file size bounded by FileSet
		}
	}
	return starts
}

// line returns the 0-based line of off.
func (a *attacher) line(off uint32) int {
	return sort.Search(len(a.lineStarts), func(i int) bool { return a.lineStarts[i] > off }) - 1
}

func (a *attacher) inBody(off uint32) bool {
	for _, b := range a.bodies {
		if b.ContainsOffset(off) {
			return true
		}
	}
	return false
}

// blankBefore reports whether a blank line directly precedes the line of
// off, provided off is the first non-space byte of its line. Lines inside
// heredoc bodies are text, never blank lines.
func (a *attacher) blankBefore(off uint32) int {
	if int(off) > len(a.src) {
		return 0
	}
	ls := a.lineStarts[a.line(off)]
	if !isSpace(a.src[ls:off]) || ls == 0 {
		return 0
	}
	prevStart := a.lineStarts[a.line(ls-1)]
	if a.inBody(prevStart) {
		return 0
	}
	if isSpace(a.src[prevStart : ls-1]) {
		return 1
	}
	return 0
}

func isSpace(b []byte) bool {
	return len(bytes.Trim(b, " \t\r")) == 0
}
