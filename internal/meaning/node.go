package meaning

import (
	"rbfmt/internal/source"
)

// Kind tags a semantic node. Most kinds are tree-sitter grammar symbols;
// refined kinds are listed in kinds.go.
type Kind string

func (k Kind) String() string { return string(k) }

// ValueKind discriminates Value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueNode
	ValueList
	ValueText
)

func (k ValueKind) String() string {
	switch k {
	case ValueNone:
		return "none"
	case ValueNode:
		return "node"
	case ValueList:
		return "list"
	case ValueText:
		return "text"
	}
	return "invalid"
}

// Value is a field payload.
type Value struct {
	Kind ValueKind
	Node *Node
	List []*Node
	Text string
}

// Field is one named slot of a node. Fields keep the order declared in the
// dispatch table, not source order.
type Field struct {
	Name  string
	Value Value
}

// Node is a semantic tree node.
type Node struct {
	Kind   Kind
	Fields []Field
	Span   source.Span
}

// Field names shared between the table and the layout code.
const (
	FieldChildren = "children"
	FieldValue    = "value"
	FieldOpening  = "opening"
	FieldBody     = "body"
	FieldParts    = "parts"
	FieldTerm     = "terminator"
)

// Get returns the value stored under name.
func (n *Node) Get(name string) (Value, bool) {
	if n == nil {
		return Value{}, false
	}
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			return n.Fields[i].Value, true
		}
	}
	return Value{}, false
}

// Child returns the node stored under name, or nil.
func (n *Node) Child(name string) *Node {
	v, ok := n.Get(name)
	if !ok || v.Kind != ValueNode {
		return nil
	}
	return v.Node
}

// List returns the nodes stored under name. A single node is returned as a
// one-element list.
func (n *Node) List(name string) []*Node {
	v, ok := n.Get(name)
	if !ok {
		return nil
	}
	switch v.Kind {
	case ValueList:
		return v.List
	case ValueNode:
		return []*Node{v.Node}
	}
	return nil
}

// Text returns the raw text stored under name.
func (n *Node) Text(name string) string {
	v, ok := n.Get(name)
	if !ok || v.Kind != ValueText {
		return ""
	}
	return v.Text
}

// Children is shorthand for the unfielded named children.
func (n *Node) Children() []*Node {
	return n.List(FieldChildren)
}

// IsAtom reports whether n is a leaf carrying only its raw text.
func (n *Node) IsAtom() bool {
	return n != nil && len(n.Fields) == 1 && n.Fields[0].Name == FieldValue && n.Fields[0].Value.Kind == ValueText
}

// AtomText returns the raw text of an atom.
func (n *Node) AtomText() string {
	if !n.IsAtom() {
		return ""
	}
	return n.Fields[0].Value.Text
}

// Is reports whether n has one of the kinds.
func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in field order. Returning false from fn
// skips the subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, f := range n.Fields {
		switch f.Value.Kind {
		case ValueNode:
			Walk(f.Value.Node, fn)
		case ValueList:
			for _, c := range f.Value.List {
				Walk(c, fn)
			}
		}
	}
}

// Tree is the result of one Build call.
type Tree struct {
	Root     *Node
	Source   []byte
	File     source.FileID
	Comments []source.Span
	// Heredocs lists heredoc nodes in the order their openings appear.
	Heredocs []*Node
}
