package diagfmt

import (
	"fmt"
	"io"

	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
	"rbfmt/internal/trivia"
)

// MeaningNodeOutput is the JSON shape of one meaning node.
type MeaningNodeOutput struct {
	Kind     string              `json:"kind"`
	Span     source.Span         `json:"span"`
	Text     string              `json:"text,omitempty"`
	Fields   []MeaningFieldJSON  `json:"fields,omitempty"`
	Comments []MeaningCommentOut `json:"comments,omitempty"`
}

// MeaningFieldJSON keeps field order, which is part of the tree's meaning.
type MeaningFieldJSON struct {
	Name string              `json:"name"`
	Text *string             `json:"text,omitempty"`
	Node *MeaningNodeOutput  `json:"node,omitempty"`
	List []MeaningNodeOutput `json:"list,omitempty"`
}

// MeaningCommentOut is a comment attached to a node.
type MeaningCommentOut struct {
	Placement string `json:"placement"`
	Text      string `json:"text"`
}

// FormatMeaningPretty prints the tree with one node per line. Attached
// comments are listed under their owner; ann may be nil.
func FormatMeaningPretty(w io.Writer, tree *meaning.Tree, ann *trivia.Annotations, fs *source.FileSet) error {
	p := &meaningPrinter{w: w, fs: fs, ann: ann}
	header := "File"
	if fs != nil {
		if f := fs.Get(tree.File); f != nil {
			header = f.Display(source.PathAuto, "")
		}
	}
	p.printf("%s (comments: %d, heredocs: %d)\n", header, len(tree.Comments), len(tree.Heredocs))
	p.node("└─ ", "   ", "", tree.Root)
	return p.err
}

type meaningPrinter struct {
	w   io.Writer
	fs  *source.FileSet
	ann *trivia.Annotations
	err error
}

func (p *meaningPrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *meaningPrinter) node(branch, prefix, label string, n *meaning.Node) {
	p.printf("%s%s%s (span: %s)", branch, label, n.Kind, formatSpan(n.Span, p.fs))
	if n.IsAtom() {
		p.printf(" %q\n", n.AtomText())
	} else {
		p.printf("\n")
	}

	type entry struct {
		label string
		text  *string
		node  *meaning.Node
	}
	var entries []entry
	if tv := p.ann.Of(n); tv != nil {
		for _, group := range [][]trivia.Comment{tv.Leading, tv.Trailing, tv.Floating} {
			for _, c := range group {
				text := c.Text
				entries = append(entries, entry{label: c.Placement.String() + " comment: ", text: &text})
			}
		}
	}
	if !n.IsAtom() {
		for _, f := range n.Fields {
			switch f.Value.Kind {
			case meaning.ValueText:
				text := f.Value.Text
				entries = append(entries, entry{label: f.Name + ": ", text: &text})
			case meaning.ValueNode:
				entries = append(entries, entry{label: f.Name + ": ", node: f.Value.Node})
			case meaning.ValueList:
				for i, c := range f.Value.List {
					entries = append(entries, entry{label: fmt.Sprintf("%s[%d]: ", f.Name, i), node: c})
				}
			}
		}
	}

	for i, e := range entries {
		b, next := "├─ ", "│  "
		if i == len(entries)-1 {
			b, next = "└─ ", "   "
		}
		if e.node != nil {
			p.node(prefix+b, prefix+next, e.label, e.node)
			continue
		}
		p.printf("%s%s%s%q\n", prefix, b, e.label, *e.text)
	}
}

// FormatMeaningJSON writes the tree as JSON.
func FormatMeaningJSON(w io.Writer, tree *meaning.Tree, ann *trivia.Annotations) error {
	return encode(w, meaningJSON(tree.Root, ann))
}

func meaningJSON(n *meaning.Node, ann *trivia.Annotations) MeaningNodeOutput {
	out := MeaningNodeOutput{Kind: string(n.Kind), Span: n.Span}
	if tv := ann.Of(n); tv != nil {
		for _, group := range [][]trivia.Comment{tv.Leading, tv.Trailing, tv.Floating} {
			for _, c := range group {
				out.Comments = append(out.Comments, MeaningCommentOut{Placement: c.Placement.String(), Text: c.Text})
			}
		}
	}
	if n.IsAtom() {
		out.Text = n.AtomText()
		return out
	}
	for _, f := range n.Fields {
		fj := MeaningFieldJSON{Name: f.Name}
		switch f.Value.Kind {
		case meaning.ValueText:
			text := f.Value.Text
			fj.Text = &text
		case meaning.ValueNode:
			child := meaningJSON(f.Value.Node, ann)
			fj.Node = &child
		case meaning.ValueList:
			fj.List = make([]MeaningNodeOutput, 0, len(f.Value.List))
			for _, c := range f.Value.List {
				fj.List = append(fj.List, meaningJSON(c, ann))
			}
		}
		out.Fields = append(out.Fields, fj)
	}
	return out
}

// formatSpan formats a source.Span into a string.
// If fs is non-nil, it resolves the span to start and end positions and returns "startLine:startCol-endLine:endCol".
// If fs is nil, it returns "span(start-end)".
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil && fs.Get(span.File) != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}
