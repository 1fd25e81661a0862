package format

import (
	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
)

func (p *printer) call(n *meaning.Node) doc.Doc {
	if root, steps := p.chainOf(n); root != nil {
		return p.chain(root, steps)
	}
	var parts []doc.Doc
	if recv := n.Child("receiver"); recv != nil {
		parts = append(parts, p.node(recv), doc.Text(n.Text("operator")))
	}
	parts = append(parts, p.node(n.Child("method")), p.callTail(n))
	return doc.Cat(parts...)
}

// callTail lowers the arguments and block of a call.
func (p *printer) callTail(n *meaning.Node) doc.Doc {
	args := n.Child("arguments")
	blk := n.Child("block")
	if blk == nil {
		return p.node(args)
	}
	keep := p.inCommand > 0 || args.Is(meaning.KindCommandArgumentList)
	return doc.Cat(p.node(args), p.decorate(blk, p.block(blk, blk.Child("parameters"), keep)))
}

func (p *printer) arguments(n *meaning.Node) doc.Doc {
	items := n.Children()
	if n.Kind == meaning.KindCommandArgumentList {
		p.inCommand++
		defer func() { p.inCommand-- }()
		return doc.Cat(
			doc.Text(" "),
			commaList(p.nodes(items)),
		)
	}
	if len(items) == 0 {
		return p.emptyDelimited(n, "(", ")")
	}
	return p.delimited(n, "(", ")", items, trailingComma(items), false)
}

// delimited lowers a bracketed list: flat on one line, or one item per line
// with the closing bracket back at the outer indentation.
func (p *printer) delimited(owner *meaning.Node, open, close string, items []*meaning.Node, tail doc.Doc, padded bool) doc.Doc {
	line := doc.SoftLine
	if padded {
		line = doc.SpaceLine
	}
	return doc.G(
		doc.Text(open),
		doc.Nest(
			line,
			doc.Join(doc.Cat(doc.Text(","), doc.SpaceLine), p.nodes(items)),
			tail,
			p.floatingLines(owner, true),
		),
		line,
		doc.Text(close),
	)
}

// emptyDelimited lowers an empty bracket pair, which may still hold
// comments.
func (p *printer) emptyDelimited(owner *meaning.Node, open, close string) doc.Doc {
	fl := p.floatingLines(owner, false)
	if fl == nil {
		return doc.Text(open + close)
	}
	return doc.Cat(doc.Text(open), doc.Nest(fl), doc.HardLine, doc.Text(close))
}

func (p *printer) elementReference(n *meaning.Node) doc.Doc {
	items := n.Children()
	var index doc.Doc
	if len(items) == 0 {
		index = p.emptyDelimited(n, "[", "]")
	} else {
		index = p.delimited(n, "[", "]", items, nil, false)
	}
	var blk doc.Doc
	if b := n.Child("block"); b != nil {
		blk = p.decorate(b, p.block(b, b.Child("parameters"), p.inCommand > 0))
	}
	return doc.Cat(p.node(n.Child("object")), index, blk)
}

// ---- method chains ----

// chainOf splits a call with receivers into its root and the calls applied
// to it, innermost first. It returns a nil root when the chain is too short
// to be laid out one call per line.
func (p *printer) chainOf(n *meaning.Node) (*meaning.Node, []*meaning.Node) {
	var steps []*meaning.Node
	cur := n
	for cur.Kind == meaning.KindCall && cur.Child("receiver") != nil {
		steps = append(steps, cur)
		cur = cur.Child("receiver")
	}
	breaks := 0
	for _, s := range steps {
		if s.Text("operator") != "::" {
			breaks++
		}
	}
	if breaks == 0 || len(steps)+1 < p.opt.Chain.MinCalls {
		return nil, nil
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return cur, steps
}

// chain lays a call chain out flat, or with every call after the root on
// its own line. The last call hangs off the group through IfBreak so that
// trailing blocks and arguments measure against the rest of the line.
func (p *printer) chain(root *meaning.Node, steps []*meaning.Node) doc.Doc {
	id := p.ids.New()
	forced := false
	parts := []doc.Doc{p.node(root)}
	var last doc.Doc
	for i, s := range steps {
		m := s.Child("method")
		var step doc.Doc
		if lead := p.leading(m); s.Text("operator") == "::" {
			// `Foo::` may end a line; the comments go below it
			name := p.node(m)
			if lead != nil {
				name = doc.Leading{Lines: lead, Contents: name}
			}
			step = doc.Cat(doc.Text("::"), name, p.callTail(s))
		} else {
			forced = forced || lead != nil
			step = doc.Cat(lead, doc.Text(s.Text("operator")), p.node(m), p.callTail(s))
		}
		if i == len(steps)-1 {
			// the outermost call's comments are placed by node()
			last = step
			break
		}
		step = p.decorate(s, step)
		if s.Text("operator") == "::" {
			parts = append(parts, step)
			continue
		}
		parts = append(parts, doc.Nest(doc.SoftLine, step))
	}
	g := &doc.Group{ID: id, Contents: doc.Cat(parts...), Break: forced}
	if steps[len(steps)-1].Text("operator") == "::" {
		return doc.Cat(g, last)
	}
	return doc.Cat(g, doc.IfBreak{
		GroupID: id,
		Broken:  doc.Nest(doc.SoftLine, last),
		Flat:    last,
	})
}

// ---- blocks ----

// block lowers a block as { } when it fits the inline policy and as
// do ... end otherwise. keep preserves the source delimiters: inside
// argument lists without parentheses a brace block binds to a different
// call than do ... end.
func (p *printer) block(n, params *meaning.Node, keep bool) doc.Doc {
	box, items := bodyOf(n)
	var stmts, clauses []*meaning.Node
	for _, c := range items {
		if isClause(c) {
			clauses = append(clauses, c)
			continue
		}
		stmts = append(stmts, c)
	}
	var head doc.Doc
	if params != nil {
		head = doc.Cat(doc.Text(" "), p.node(params))
	}
	region := p.region(box, stmts)
	fl := p.floatingLines(n, region != nil)
	brace := len(p.src) > int(n.Span.Start) && p.src[n.Span.Start] == '{'

	if region == nil && fl == nil && len(clauses) == 0 {
		// empty block
		if keep && !brace {
			return doc.Cat(doc.Text(" do"), head, doc.HardLine, doc.Text("end"))
		}
		if head == nil {
			return doc.Text(" {}")
		}
		return doc.Cat(doc.Text(" {"), head, doc.Text(" }"))
	}

	broken := []doc.Doc{doc.Text(" do"), head, indented(region)}
	for _, c := range clauses {
		broken = append(broken, p.clauseLead(c), doc.HardLine, p.clause(c))
	}
	broken = append(broken, doc.Nest(fl), doc.HardLine, doc.Text("end"))

	if keep {
		if brace && len(clauses) == 0 {
			return doc.G(doc.Text(" {"), head, doc.Nest(doc.SpaceLine, region, fl), doc.SpaceLine, doc.Text("}"))
		}
		return doc.Cat(broken...)
	}

	flat := doc.Cat(doc.Text(" {"), head, doc.Text(" "), region, doc.Text(" }"))
	forced := len(clauses) > 0 || fl != nil || len(stmts) > p.opt.Block.MaxInlineStatements
	if !forced {
		w, ok := doc.FlatWidth(flat)
		forced = !ok || w > p.opt.Block.MaxInlineWidth
	}
	return &doc.Group{
		Contents: doc.IfBreak{Broken: doc.Cat(broken...), Flat: flat},
		Break:    forced,
	}
}

// lambda always writes ->(params) and lays its body out like a block.
func (p *printer) lambda(n *meaning.Node) doc.Doc {
	var params doc.Doc
	if ps := n.Child("parameters"); ps != nil {
		params = p.node(ps)
	}
	body := n.Child(meaning.FieldBody)
	if body == nil {
		return doc.Cat(doc.Text("->"), params)
	}
	return doc.Cat(doc.Text("->"), params, p.decorate(body, p.block(body, nil, p.inCommand > 0)))
}
