package trivia

import (
	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
)

type Placement uint8

const (
	Leading Placement = iota + 1
	Trailing
	Floating
)

func (p Placement) String() string {
	switch p {
	case Leading:
		return "leading"
	case Trailing:
		return "trailing"
	case Floating:
		return "floating"
	}
	return "unplaced"
}

// Comment is one source comment.
type Comment struct {
	Index int // position in Annotations.Comments
	Span  source.Span
	Text  string
	// BlankLinesBefore is 1 when at least one blank line separates the
	// comment from whatever precedes it.
	BlankLinesBefore int
	Placement        Placement
	// Block marks =begin/=end comments, which must start at column 0.
	Block bool
}

// Trivia is everything attached to one node.
type Trivia struct {
	Leading  []Comment
	Trailing []Comment
	Floating []Comment
	// BlankLinesBefore is 1 when a blank line directly precedes the node's
	// first token (after its leading comments).
	BlankLinesBefore int
}

// Annotations maps nodes to their trivia. Nodes are keyed by identity.
type Annotations struct {
	// Comments lists every comment in source order.
	Comments []Comment
	// Owners[i] is the node Comments[i] is attached to.
	Owners []*meaning.Node
	byNode map[*meaning.Node]*Trivia
}

// Of returns the trivia of n, or nil when nothing is attached.
func (a *Annotations) Of(n *meaning.Node) *Trivia {
	if a == nil {
		return nil
	}
	return a.byNode[n]
}

// BlankBefore is the blank-line count before n, capped at one.
func (a *Annotations) BlankBefore(n *meaning.Node) int {
	if tv := a.Of(n); tv != nil {
		if len(tv.Leading) > 0 {
			return tv.Leading[0].BlankLinesBefore
		}
		return tv.BlankLinesBefore
	}
	return 0
}

func (a *Annotations) at(n *meaning.Node) *Trivia {
	tv, ok := a.byNode[n]
	if !ok {
		tv = &Trivia{}
		a.byNode[n] = tv
	}
	return tv
}

func (a *Annotations) place(idx int, n *meaning.Node, p Placement) {
	c := a.Comments[idx]
	c.Placement = p
	a.Comments[idx] = c
	a.Owners[idx] = n
	tv := a.at(n)
	switch p {
	case Leading:
		tv.Leading = append(tv.Leading, c)
	case Trailing:
		tv.Trailing = append(tv.Trailing, c)
	case Floating:
		tv.Floating = append(tv.Floating, c)
	}
}
