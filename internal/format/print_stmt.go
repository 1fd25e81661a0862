package format

import (
	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
)

func isClause(n *meaning.Node) bool {
	return n.Is(meaning.KindRescue, meaning.KindElse, meaning.KindEnsure)
}

// bodyOf returns the statement container of a definition and its items.
// Older grammar shapes hang the statements directly off the definition.
func bodyOf(n *meaning.Node) (*meaning.Node, []*meaning.Node) {
	if b := n.Child(meaning.FieldBody); b != nil {
		return b, b.Children()
	}
	return nil, n.Children()
}

// clausedBody lowers everything between a header line and its closing
// "end": statements, then rescue/else/ensure clauses at the header's
// indentation, then the owner's floating comments.
func (p *printer) clausedBody(owner, box *meaning.Node, items []*meaning.Node) doc.Doc {
	var stmts, clauses []*meaning.Node
	for _, c := range items {
		if isClause(c) {
			clauses = append(clauses, c)
			continue
		}
		stmts = append(stmts, c)
	}
	region := p.region(box, stmts)
	parts := []doc.Doc{indented(region)}
	for _, c := range clauses {
		parts = append(parts, p.clauseLead(c), doc.HardLine, p.clause(c))
	}
	if fl := p.floatingLines(owner, region != nil || len(clauses) > 0); fl != nil {
		parts = append(parts, doc.Nest(fl))
	}
	return doc.Cat(parts...)
}

func (p *printer) clause(c *meaning.Node) doc.Doc {
	switch c.Kind {
	case meaning.KindRescue:
		head := []doc.Doc{doc.Text("rescue")}
		if ex := c.Child("exceptions"); ex != nil {
			head = append(head, doc.Text(" "), p.decorate(ex, commaList(p.nodes(ex.Children()))))
		}
		if v := c.Child("variable"); v != nil {
			head = append(head, doc.Text(" =>"), p.decorate(v, p.hang(v, first(v.Children()))))
		}
		var body doc.Doc
		if b := c.Child(meaning.FieldBody); b != nil {
			body = indented(p.region(b, b.Children()))
		}
		return doc.Cat(doc.Cat(head...), body, p.trailing(c))
	case meaning.KindElse:
		return doc.Cat(doc.Text("else"), indented(p.region(c, c.Children())))
	case meaning.KindEnsure:
		return doc.Cat(doc.Text("ensure"), indented(p.region(c, c.Children())))
	}
	return p.verbatim(c)
}

func (p *printer) beginBlock(n *meaning.Node) doc.Doc {
	return doc.Cat(doc.Text("begin"), p.clausedBody(n, nil, n.Children()), doc.HardLine, doc.Text("end"))
}

// hookBlock lowers BEGIN { } and END { }; they always span lines.
func (p *printer) hookBlock(kw string, n *meaning.Node) doc.Doc {
	region := p.region(nil, n.Children())
	fl := p.floatingLines(n, region != nil)
	if region == nil && fl == nil {
		return doc.Text(kw + " {}")
	}
	return doc.Cat(doc.Text(kw+" {"), indented(region), doc.Nest(fl), doc.HardLine, doc.Text("}"))
}

func (p *printer) parenthesized(n *meaning.Node) doc.Doc {
	items := n.Children()
	fl := p.floatingLines(n, len(items) > 0)
	switch {
	case len(items) == 0 && fl == nil:
		return doc.Text("()")
	case len(items) == 1 && fl == nil:
		return doc.Cat(doc.Text("("), p.node(items[0]), doc.Text(")"))
	}
	return doc.Cat(doc.Text("("), indented(p.region(nil, items)), doc.Nest(fl), doc.HardLine, doc.Text(")"))
}

// jump lowers return, break, next, yield, redo and retry.
func (p *printer) jump(n *meaning.Node) doc.Doc {
	kw := doc.Text(string(n.Kind))
	args := first(n.Children())
	if args == nil {
		return kw
	}
	if args.Is(meaning.KindArgumentList, meaning.KindCommandArgumentList) {
		return doc.Cat(kw, p.node(args))
	}
	return doc.Cat(kw, doc.Text(" "), p.node(args))
}

// ---- definitions ----

func (p *printer) method(n *meaning.Node) doc.Doc {
	head := []doc.Doc{doc.Text("def ")}
	if obj := n.Child("object"); obj != nil {
		head = append(head, p.node(obj), doc.Text("."))
	}
	name := n.Child("name")
	head = append(head, p.node(name))
	headEnd := name.Span.End
	if params := n.Child("parameters"); params != nil {
		head = append(head, p.node(params))
		headEnd = params.Span.End
	}
	if n.Is(meaning.KindEndlessMethod, meaning.KindEndlessSingletonMethod) {
		return doc.Cat(doc.Cat(head...), p.after(" =", headEnd, n.Child(meaning.FieldBody)))
	}
	box, items := bodyOf(n)
	return doc.Cat(doc.Cat(head...), p.clausedBody(n, box, items), doc.HardLine, doc.Text("end"))
}

func (p *printer) class(n *meaning.Node) doc.Doc {
	head := []doc.Doc{doc.Text("class "), p.node(n.Child("name"))}
	if sup := n.Child("superclass"); sup != nil {
		head = append(head, doc.Text(" <"), p.decorate(sup, p.hang(sup, first(sup.Children()))))
	}
	box, items := bodyOf(n)
	return doc.Cat(doc.Cat(head...), p.clausedBody(n, box, items), doc.HardLine, doc.Text("end"))
}

func (p *printer) module(n *meaning.Node) doc.Doc {
	box, items := bodyOf(n)
	return doc.Cat(doc.Text("module "), p.node(n.Child("name")), p.clausedBody(n, box, items), doc.HardLine, doc.Text("end"))
}

func (p *printer) singletonClass(n *meaning.Node) doc.Doc {
	box, items := bodyOf(n)
	return doc.Cat(doc.Text("class << "), p.node(n.Child("value")), p.clausedBody(n, box, items), doc.HardLine, doc.Text("end"))
}

// paramList lowers method and lambda parameters. They always get
// parentheses and never a trailing comma.
func (p *printer) paramList(n *meaning.Node) doc.Doc {
	items := n.Children()
	if len(items) == 0 {
		return p.emptyDelimited(n, "(", ")")
	}
	return doc.G(
		doc.Text("("),
		doc.Nest(doc.SoftLine, doc.Join(doc.Cat(doc.Text(","), doc.SpaceLine), p.nodes(items)), p.floatingLines(n, true)),
		doc.SoftLine,
		doc.Text(")"),
	)
}

// blockParams lowers |a, b; c|. A trailing comma in the source is kept.
func (p *printer) blockParams(n *meaning.Node) doc.Doc {
	items := n.Children()
	parts := []doc.Doc{doc.Text("|"), doc.Join(doc.Text(", "), p.nodes(items))}
	if p.hasTrailingComma(n, items) {
		parts = append(parts, doc.Text(","))
	}
	if locals := n.List("locals"); len(locals) > 0 {
		if len(items) > 0 {
			parts = append(parts, doc.Text("; "))
		} else {
			parts = append(parts, doc.Text(";"))
		}
		parts = append(parts, doc.Join(doc.Text(", "), p.nodes(locals)))
	}
	parts = append(parts, doc.Text("|"))
	return doc.Cat(parts...)
}

func (p *printer) param(n *meaning.Node) doc.Doc {
	switch n.Kind {
	case meaning.KindOptionalParameter:
		return doc.Cat(p.node(n.Child("name")), doc.Text(" = "), p.node(n.Child("value")))
	case meaning.KindKeywordParameter:
		kw := doc.Cat(p.node(n.Child("name")), doc.Text(":"))
		if v := n.Child("value"); v != nil {
			return doc.Cat(kw, doc.Text(" "), p.node(v))
		}
		return kw
	case meaning.KindSplatParameter:
		return doc.Cat(doc.Text("*"), p.node(n.Child("name")))
	case meaning.KindHashSplatParameter:
		return doc.Cat(doc.Text("**"), p.node(n.Child("name")))
	case meaning.KindBlockParameter:
		return doc.Cat(doc.Text("&"), p.node(n.Child("name")))
	case meaning.KindDestructuredParameter:
		items := n.Children()
		parts := []doc.Doc{doc.Text("("), doc.Join(doc.Text(", "), p.nodes(items))}
		if p.hasTrailingComma(n, items) {
			parts = append(parts, doc.Text(","))
		}
		return doc.Cat(append(parts, doc.Text(")"))...)
	}
	return p.verbatim(n)
}
