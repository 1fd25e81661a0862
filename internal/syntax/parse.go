package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

// Tree is one parsed Ruby file.
type Tree struct {
	ts     *sitter.Tree
	source []byte
}

// ParseError reports source that tree-sitter could not parse cleanly.
type ParseError struct {
	Offset  uint32
	End     uint32
	Line    uint32 // 1-based
	Column  uint32 // 1-based
	Missing bool
	Kind    string // kind of the missing node, when Missing
}

func (e *ParseError) Error() string {
	if e.Missing {
		return fmt.Sprintf("parse error at %d:%d: missing %s", e.Line, e.Column, e.Kind)
	}
	return fmt.Sprintf("parse error at %d:%d: unexpected input", e.Line, e.Column)
}

// ErrEmptyTree is returned when tree-sitter produced no root node.
var ErrEmptyTree = errors.New("syntax: empty tree")

// Parse parses src as Ruby. The returned tree must be closed by the caller.
// A tree containing ERROR or MISSING nodes is closed and reported as
// *ParseError.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(ruby.GetLanguage())

	ts, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: %w", err)
	}
	if ts == nil || ts.RootNode() == nil {
		return nil, ErrEmptyTree
	}
	t := &Tree{ts: ts, source: src}
	if perr := t.firstError(); perr != nil {
		t.Close()
		return nil, perr
	}
	return t, nil
}

// Close releases the tree-sitter arena.
func (t *Tree) Close() {
	if t != nil && t.ts != nil {
		t.ts.Close()
		t.ts = nil
	}
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte { return t.source }

// Root returns the program node.
func (t *Tree) Root() Node { return Node{n: t.ts.RootNode()} }

func (t *Tree) firstError() *ParseError {
	root := t.ts.RootNode()
	if !root.HasError() {
		return nil
	}
	var found *sitter.Node
	var walk func(n *sitter.Node) bool
	walk = func(n *sitter.Node) bool {
		if n.IsMissing() || n.Type() == "ERROR" {
			found = n
			return true
		}
		if !n.HasError() {
			return false
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if walk(n.Child(i)) {
				return true
			}
		}
		return false
	}
	if !walk(root) {
		found = root
	}
	pt := found.StartPoint()
	return &ParseError{
		Offset:  found.StartByte(),
		End:     found.EndByte(),
		Line:    pt.Row + 1,
		Column:  pt.Column + 1,
		Missing: found.IsMissing(),
		Kind:    found.Type(),
	}
}

// Comments returns every comment extra in document order.
func (t *Tree) Comments() []Node {
	var out []Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == KindComment {
			out = append(out, Node{n: n})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(t.ts.RootNode())
	return out
}
