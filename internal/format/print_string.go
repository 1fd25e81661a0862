package format

import (
	"bytes"
	"strings"

	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
)

// interpolated copies a string-like literal from the source and lowers only
// the code inside #{...}.
func (p *printer) interpolated(n *meaning.Node) doc.Doc {
	var parts []doc.Doc
	cursor := n.Span.Start
	for _, c := range n.Children() {
		if c.Kind != meaning.KindInterpolation {
			continue
		}
		parts = append(parts, doc.RawLines(p.between(cursor, c.Span.Start)), p.node(c))
		cursor = c.Span.End
	}
	if len(parts) == 0 {
		p.consumeComments(n.Span)
		return doc.RawLines(p.text(n.Span))
	}
	parts = append(parts, doc.RawLines(p.between(cursor, n.Span.End)))
	return doc.Cat(parts...)
}

// interpolation never breaks a single expression; several statements go on
// lines of their own.
func (p *printer) interpolation(n *meaning.Node) doc.Doc {
	stmts := n.Children()
	fl := p.floatingLines(n, len(stmts) > 0)
	switch {
	case len(stmts) == 0 && fl == nil:
		return doc.Text("#{}")
	case len(stmts) == 1 && fl == nil:
		return doc.Cat(doc.Text("#{"), &doc.Group{Contents: p.node(stmts[0]), NoBreak: true}, doc.Text("}"))
	}
	return doc.Cat(doc.Text("#{"), indented(p.region(nil, stmts)), doc.Nest(fl), doc.HardLine, doc.Text("}"))
}

// ---- heredocs ----

// heredoc prints the opening in place and queues the body for the line
// after it.
func (p *printer) heredoc(n *meaning.Node) doc.Doc {
	p.heredocs[n] = true
	opening := doc.Raw(n.Text(meaning.FieldOpening))
	body := n.Child(meaning.FieldBody)
	if body == nil {
		return opening
	}
	return doc.Cat(opening, doc.Deferred{Contents: p.heredocBody(n, body)})
}

func (p *printer) heredocBody(h, body *meaning.Node) doc.Doc {
	if h.Kind == meaning.KindSquigglyHeredoc && body.Kind == meaning.KindHeredocBody {
		if width, ok := meaning.SquigglyIndent(body, p.src); ok {
			return p.squigglyBody(body, width)
		}
	}
	return p.rawHeredocBody(h, body)
}

// squigglyBody re-indents a <<~ body one level below the opening line.
// Ruby strips the common indentation, so the value does not change.
func (p *printer) squigglyBody(body *meaning.Node, width int) doc.Doc {
	var lines []doc.Doc
	for _, l := range meaning.Lines(body) {
		lines = append(lines, doc.HardLine)
		for _, part := range l.TrimIndent(width).Parts {
			if part.Interp != nil {
				lines = append(lines, p.node(part.Interp))
				continue
			}
			lines = append(lines, doc.Raw(part.Text))
		}
	}
	return doc.Cat(doc.Nest(lines...), doc.HardLine, doc.Text(body.Text(meaning.FieldTerm)))
}

// rawHeredocBody copies the body byte for byte. Only the terminator of
// <<- and <<~ heredocs moves with the opening line.
func (p *printer) rawHeredocBody(h, body *meaning.Node) doc.Doc {
	p.heredocs[h] = true
	p.consumeComments(body.Span)
	p.consumeHeredocs(body.Span)

	text := body.Span.Bytes(p.src)
	termLine := bytes.LastIndexByte(text, '\n') + 1
	var parts []doc.Doc
	if content := string(text[:termLine]); content != "" {
		for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
			parts = append(parts, doc.LiteralLine)
			if line != "" {
				parts = append(parts, doc.Raw(line))
			}
		}
	}
	if h.Kind == meaning.KindPlainHeredoc {
		parts = append(parts, doc.LiteralLine, doc.Raw(string(text[termLine:])))
	} else {
		parts = append(parts, doc.HardLine, doc.Text(body.Text(meaning.FieldTerm)))
	}
	return doc.Cat(parts...)
}
