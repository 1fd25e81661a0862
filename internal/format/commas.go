package format

import (
	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
)

// Trailing comma rules:
//   - broken argument lists, array literals and hash literals get a trailing
//     comma; flat ones never do;
//   - no comma after a block argument (&blk) or argument forwarding (...);
//   - argument lists without parentheses never get one;
//   - parameter lists, element references and patterns never gain one,
//     but a comma already present in block parameters, destructuring and
//     patterns is kept.

// commaList joins items that continue a keyword line (`when a, b`,
// `rescue A, B`): flat, or one per line indented below the keyword.
func commaList(items []doc.Doc) doc.Doc {
	return doc.G(doc.Nest(doc.Join(doc.Cat(doc.Text(","), doc.SpaceLine), items)))
}

// trailingComma is the separator appended after the last item of a
// delimited list: "," when the enclosing group breaks, nothing otherwise.
func trailingComma(items []*meaning.Node) doc.Doc {
	if !trailingCommaAllowed(items) {
		return nil
	}
	return doc.IfBreak{Broken: doc.Text(",")}
}

func trailingCommaAllowed(items []*meaning.Node) bool {
	if len(items) == 0 {
		return false
	}
	last := items[len(items)-1]
	return !last.Is(meaning.KindBlockArgument, meaning.KindForwardArgument)
}

// hasTrailingComma reports whether a ',' follows the last item of list in
// the source before anything else but whitespace.
func (p *printer) hasTrailingComma(list *meaning.Node, items []*meaning.Node) bool {
	if len(items) == 0 {
		return false
	}
	return commaAfter(p.src, int(items[len(items)-1].Span.End), int(list.Span.End))
}

func commaAfter(buf []byte, start, end int) bool {
	end = min(end, len(buf))
	for i := start; i < end; i++ {
		switch buf[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case ',':
			return true
		}
		return false
	}
	return false
}
