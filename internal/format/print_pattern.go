package format

import (
	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
)

// patternOpen returns the bracket an array, find or hash pattern was
// written with: "[", "(", "{" or "" for a bare pattern.
func (p *printer) patternOpen(n *meaning.Node) byte {
	start := int(n.Span.Start)
	if class := n.Child("class"); class != nil {
		start = int(class.Span.End)
	}
	for i := start; i < int(n.Span.End) && i < len(p.src); i++ {
		switch c := p.src[i]; c {
		case ' ', '\t':
			continue
		case '[', '(', '{':
			return c
		default:
			return 0
		}
	}
	return 0
}

var closing = map[byte]string{'[': "]", '(': ")", '{': "}"}

func (p *printer) arrayPattern(n *meaning.Node) doc.Doc {
	return p.bracketPattern(n, false)
}

func (p *printer) hashPattern(n *meaning.Node) doc.Doc {
	return p.bracketPattern(n, true)
}

// bracketPattern keeps the brackets and any trailing comma of the source:
// `in [a,]` and `in a,` differ from `in [a]` and `in a`.
func (p *printer) bracketPattern(n *meaning.Node, hash bool) doc.Doc {
	items := n.Children()
	var class doc.Doc
	if c := n.Child("class"); c != nil {
		class = p.node(c)
	}
	docs := p.nodes(items)
	var tail doc.Doc
	if p.hasTrailingComma(n, items) {
		tail = doc.Text(",")
	}
	open := p.patternOpen(n)
	if open == 0 {
		return doc.Cat(class, doc.Join(doc.Text(", "), docs), tail)
	}
	if len(items) == 0 {
		return doc.Cat(class, p.emptyDelimited(n, string(open), closing[open]))
	}
	line := doc.SoftLine
	if hash && open == '{' {
		line = doc.SpaceLine
	}
	return doc.Cat(class, doc.G(
		doc.Text(string(open)),
		doc.Nest(line, doc.Join(doc.Cat(doc.Text(","), doc.SpaceLine), docs), tail, p.floatingLines(n, true)),
		line,
		doc.Text(closing[open]),
	))
}
