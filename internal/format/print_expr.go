package format

import (
	"strings"

	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
)

// hangingRight lists right-hand sides that read best starting on the
// assignment line and breaking inside themselves.
var hangingRight = map[meaning.Kind]bool{
	meaning.KindArray:                   true,
	meaning.KindHash:                    true,
	meaning.KindCall:                    true,
	meaning.KindElementReference:        true,
	meaning.KindLambda:                  true,
	meaning.KindIf:                      true,
	meaning.KindUnless:                  true,
	meaning.KindCase:                    true,
	meaning.KindCaseMatch:               true,
	meaning.KindBegin:                   true,
	meaning.KindWhile:                   true,
	meaning.KindUntil:                   true,
	meaning.KindSquigglyHeredoc:         true,
	meaning.KindDashHeredoc:             true,
	meaning.KindPlainHeredoc:            true,
	meaning.KindStringArray:             true,
	meaning.KindSymbolArray:             true,
	meaning.KindParenthesizedStatements: true,
	meaning.KindRightAssignmentList:     true,
}

func (p *printer) assignment(n *meaning.Node, op string) doc.Doc {
	left := p.node(n.Child("left"))
	right := n.Child("right")
	if hangingRight[right.Kind] {
		return doc.Cat(left, p.after(" "+op, n.Child("left").Span.End, right))
	}
	return doc.G(left, doc.Text(" "+op), doc.Nest(doc.SpaceLine, p.node(right)))
}

// assignmentList lowers `a, (b, *c), = ...` sides. A trailing comma on the
// left side turns it into destructuring, so it is kept.
func (p *printer) assignmentList(n *meaning.Node) doc.Doc {
	items := n.Children()
	if n.Kind == meaning.KindRightAssignmentList {
		return commaList(p.nodes(items))
	}
	out := doc.Join(doc.Text(", "), p.nodes(items))
	if p.hasTrailingComma(n, items) {
		return doc.Cat(out, doc.Text(","))
	}
	return out
}

// binary flattens a left-leaning run of one operator and breaks after each
// operator.
func (p *printer) binary(n *meaning.Node) doc.Doc {
	op := n.Text("operator")
	operands := []*meaning.Node{n.Child("right")}
	cur := n.Child("left")
	for cur.Kind == meaning.KindBinary && cur.Text("operator") == op && p.ann.Of(cur) == nil {
		operands = append(operands, cur.Child("right"))
		cur = cur.Child("left")
	}
	rest := make([]doc.Doc, 0, 3*len(operands))
	for i := len(operands) - 1; i >= 0; i-- {
		rest = append(rest, doc.Text(" "+op), doc.SpaceLine, p.node(operands[i]))
	}
	return doc.G(p.node(cur), doc.Nest(rest...))
}

func (p *printer) unary(n *meaning.Node) doc.Doc {
	op := n.Text("operator")
	operand := n.Child("operand")
	switch n.Kind {
	case meaning.KindNot:
		return doc.Cat(doc.Text("not "), p.node(operand))
	case meaning.KindDefined:
		if operand.Kind == meaning.KindParenthesizedStatements {
			return doc.Cat(doc.Text(op), p.node(operand))
		}
		return doc.Cat(doc.Text(op+" "), p.node(operand))
	}
	// `- 1` is a method call on a literal, `-1` is the literal itself
	if operand.Is("integer", "float", "rational", "complex") {
		return doc.Cat(doc.Text(op+" "), p.node(operand))
	}
	return doc.Cat(doc.Text(op), p.node(operand))
}

// ---- collections ----

func (p *printer) array(n *meaning.Node) doc.Doc {
	items := n.Children()
	if len(items) == 0 {
		return p.emptyDelimited(n, "[", "]")
	}
	return p.delimited(n, "[", "]", items, trailingComma(items), false)
}

func (p *printer) hash(n *meaning.Node) doc.Doc {
	items := n.Children()
	if len(items) == 0 {
		return p.emptyDelimited(n, "{", "}")
	}
	return p.delimited(n, "{", "}", items, trailingComma(items), true)
}

// pair keeps the source separator: `key => value` or `key: value`.
func (p *printer) pair(n *meaning.Node) doc.Doc {
	key, value := n.Child("key"), n.Child(meaning.FieldValue)
	if value != nil && strings.Contains(p.between(key.Span.End, value.Span.Start), "=>") {
		return doc.Cat(p.node(key), p.after(" =>", key.Span.End, value))
	}
	return p.keyed(key, value)
}

// keyed lowers `key:` and `key: value` forms of pairs and keyword patterns.
func (p *printer) keyed(key, value *meaning.Node) doc.Doc {
	k := doc.Cat(p.node(key), doc.Text(":"))
	if value == nil {
		return k
	}
	return doc.Cat(k, p.after("", key.Span.End, value))
}
