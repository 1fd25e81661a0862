package format

import (
	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
)

// thenBody lowers the consequence of if/elsif/when/in.
func (p *printer) thenBody(then *meaning.Node) doc.Doc {
	if then == nil {
		return nil
	}
	return indented(p.region(then, then.Children()))
}

func (p *printer) ifStmt(n *meaning.Node) doc.Doc {
	parts := []doc.Doc{
		doc.Text(string(n.Kind) + " "),
		p.node(n.Child("condition")),
		p.thenBody(n.Child("consequence")),
	}
	for alt := n.Child("alternative"); alt != nil; {
		parts = append(parts, p.clauseLead(alt), doc.HardLine)
		if alt.Kind != meaning.KindElsif {
			parts = append(parts, p.clause(alt))
			break
		}
		parts = append(parts,
			doc.Text("elsif "),
			p.node(alt.Child("condition")),
			p.thenBody(alt.Child("consequence")),
			p.trailing(alt),
		)
		alt = alt.Child("alternative")
	}
	parts = append(parts, doc.Nest(p.floatingLines(n, true)), doc.HardLine, doc.Text("end"))
	return doc.Cat(parts...)
}

var modifierKeyword = map[meaning.Kind]string{
	meaning.KindIfModifier:     " if",
	meaning.KindUnlessModifier: " unless",
	meaning.KindWhileModifier:  " while",
	meaning.KindUntilModifier:  " until",
	meaning.KindRescueModifier: " rescue",
}

// modifier keeps `body if cond` on one line with its body unless a
// comment follows the keyword.
func (p *printer) modifier(n *meaning.Node) doc.Doc {
	right := n.Child("condition")
	if n.Kind == meaning.KindRescueModifier {
		right = n.Child("handler")
	}
	body := n.Child(meaning.FieldBody)
	return doc.Cat(p.node(body), p.after(modifierKeyword[n.Kind], body.Span.End, right))
}

func (p *printer) ternary(n *meaning.Node) doc.Doc {
	return doc.G(
		p.node(n.Child("condition")),
		doc.Text(" ?"),
		doc.Nest(
			doc.SpaceLine,
			p.node(n.Child("consequence")),
			doc.Text(" :"),
			doc.SpaceLine,
			p.node(n.Child("alternative")),
		),
	)
}

func (p *printer) loop(n *meaning.Node) doc.Doc {
	return doc.Cat(
		doc.Text(string(n.Kind)+" "),
		p.node(n.Child("condition")),
		p.loopBody(n),
		doc.HardLine,
		doc.Text("end"),
	)
}

func (p *printer) forLoop(n *meaning.Node) doc.Doc {
	value := n.Child("value")
	var in doc.Doc
	if value != nil {
		in = p.decorate(value, p.hang(value, first(value.Children())))
	}
	return doc.Cat(
		doc.Text("for "),
		p.node(n.Child("pattern")),
		doc.Text(" in"),
		in,
		p.loopBody(n),
		doc.HardLine,
		doc.Text("end"),
	)
}

func (p *printer) loopBody(n *meaning.Node) doc.Doc {
	var region doc.Doc
	if body := n.Child(meaning.FieldBody); body != nil {
		region = p.region(body, body.Children())
	}
	return doc.Cat(indented(region), doc.Nest(p.floatingLines(n, region != nil)))
}

func (p *printer) caseStmt(n *meaning.Node) doc.Doc {
	parts := []doc.Doc{doc.Text("case")}
	if v := n.Child(meaning.FieldValue); v != nil {
		parts = append(parts, doc.Text(" "), p.node(v))
	}
	for _, c := range n.Children() {
		parts = append(parts, p.clauseLead(c), doc.HardLine)
		if c.Kind != meaning.KindWhen {
			parts = append(parts, p.clause(c))
			continue
		}
		parts = append(parts,
			doc.Text("when "),
			commaList(p.nodes(c.List("pattern"))),
			p.thenBody(c.Child(meaning.FieldBody)),
			p.trailing(c),
		)
	}
	parts = append(parts, doc.Nest(p.floatingLines(n, true)), doc.HardLine, doc.Text("end"))
	return doc.Cat(parts...)
}

func (p *printer) caseMatch(n *meaning.Node) doc.Doc {
	parts := []doc.Doc{doc.Text("case")}
	if v := n.Child(meaning.FieldValue); v != nil {
		parts = append(parts, doc.Text(" "), p.node(v))
	}
	clauses := append(append([]*meaning.Node(nil), n.List("clauses")...), n.Children()...)
	if e := n.Child("else"); e != nil {
		clauses = append(clauses, e)
	}
	for _, c := range clauses {
		parts = append(parts, p.clauseLead(c), doc.HardLine)
		if c.Kind != meaning.KindInClause {
			parts = append(parts, p.clause(c))
			continue
		}
		parts = append(parts, doc.Text("in "), p.node(c.Child("pattern")))
		if g := c.Child("guard"); g != nil {
			parts = append(parts, doc.Text(" "), p.node(g))
		}
		parts = append(parts, p.thenBody(c.Child(meaning.FieldBody)), p.trailing(c))
	}
	parts = append(parts, doc.Nest(p.floatingLines(n, true)), doc.HardLine, doc.Text("end"))
	return doc.Cat(parts...)
}
