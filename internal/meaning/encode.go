package meaning

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// canonicalKinds folds kinds the formatter is allowed to swap into one
// another. `{ }` and `do end` blocks differ only in their delimiters.
var canonicalKinds = map[Kind]Kind{
	KindDoBlock:   KindBlock,
	KindBlockBody: KindBodyStatement,
}

// Encode returns the canonical msgpack form of t: spans are dropped, block
// delimiters are folded, and `<<~` bodies are compared after Ruby strips
// their common indentation. Two sources mean the same program exactly when
// their encodings are equal.
func Encode(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	e := &encoder{enc: msgpack.NewEncoder(&buf), src: t.Source}
	if err := e.node(t.Root); err != nil {
		return nil, fmt.Errorf("meaning: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Equal reports whether a and b encode identically.
func Equal(a, b *Tree) (bool, error) {
	ea, err := Encode(a)
	if err != nil {
		return false, err
	}
	eb, err := Encode(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ea, eb), nil
}

type encoder struct {
	enc *msgpack.Encoder
	src []byte
	// squiggly is the indent to strip from the body being encoded, or -1.
	squiggly int
}

func (e *encoder) node(n *Node) error {
	kind := n.Kind
	if k, ok := canonicalKinds[kind]; ok {
		kind = k
	}
	if err := e.enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := e.enc.EncodeString(string(kind)); err != nil {
		return err
	}
	if n.Is(KindHeredocBody, KindOpaqueHeredocBody) {
		return e.body(n)
	}
	if err := e.enc.EncodeArrayLen(len(n.Fields)); err != nil {
		return err
	}
	for _, f := range n.Fields {
		if err := e.enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := e.enc.EncodeString(f.Name); err != nil {
			return err
		}
		if err := e.value(n, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) value(owner *Node, v Value) error {
	switch v.Kind {
	case ValueText:
		return e.enc.EncodeString(v.Text)
	case ValueNode:
		if owner.Kind == KindSquigglyHeredoc {
			e.squiggly = -1
			if w, ok := SquigglyIndent(v.Node, e.src); ok {
				e.squiggly = w
			}
		}
		return e.node(v.Node)
	case ValueList:
		if err := e.enc.EncodeArrayLen(len(v.List)); err != nil {
			return err
		}
		for _, c := range v.List {
			if err := e.node(c); err != nil {
				return err
			}
		}
		return nil
	}
	return e.enc.EncodeNil()
}

// body encodes a heredoc body line by line so segment boundaries do not
// matter, only the text Ruby ends up with.
func (e *encoder) body(n *Node) error {
	strip := e.squiggly
	e.squiggly = 0
	lines := Lines(n)
	if err := e.enc.EncodeArrayLen(len(lines) + 1); err != nil {
		return err
	}
	for _, l := range lines {
		if strip > 0 {
			l = l.TrimIndent(strip)
		}
		if err := e.enc.EncodeArrayLen(len(l.Parts)); err != nil {
			return err
		}
		for _, p := range l.Parts {
			var err error
			if p.Interp != nil {
				err = e.node(p.Interp)
			} else {
				err = e.enc.EncodeString(p.Text)
			}
			if err != nil {
				return err
			}
		}
	}
	return e.enc.EncodeString(n.Text(FieldTerm))
}
