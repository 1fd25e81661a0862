package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Kinds the adapter itself cares about. Everything else is interpreted by
// the meaning table.
const (
	KindComment     = "comment"
	KindHeredocBody = "heredoc_body"
	KindHeredocEnd  = "heredoc_end"
)

// Node is a borrowed view of a concrete node. The zero Node is null.
type Node struct {
	n *sitter.Node
}

// IsNull reports whether the node is absent.
func (n Node) IsNull() bool { return n.n == nil }

// Kind is the grammar symbol name, e.g. "call" or "(" for anonymous tokens.
func (n Node) Kind() string { return n.n.Type() }

// IsNamed reports whether the node is a named grammar rule (not a bare token).
func (n Node) IsNamed() bool { return n.n.IsNamed() }

// IsExtra reports whether the node is an extra the grammar allows anywhere:
// comments and heredoc bodies.
func (n Node) IsExtra() bool {
	switch n.Kind() {
	case KindComment, KindHeredocBody:
		return true
	}
	return false
}

// Start is the byte offset of the first byte.
func (n Node) Start() uint32 { return n.n.StartByte() }

// End is the byte offset one past the last byte.
func (n Node) End() uint32 { return n.n.EndByte() }

// Row is the 0-based line of the first byte.
func (n Node) Row() uint32 { return n.n.StartPoint().Row }

// ChildCount counts named and anonymous children.
func (n Node) ChildCount() int { return int(n.n.ChildCount()) }

// Child returns the i-th child, named or anonymous.
func (n Node) Child(i int) Node { return Node{n: n.n.Child(i)} }

// FieldName returns the grammar field the i-th child is bound to, or "".
func (n Node) FieldName(i int) string { return n.n.FieldNameForChild(i) }

// Text returns the node's bytes in src.
func (n Node) Text(src []byte) string {
	return string(src[n.Start():n.End()])
}
