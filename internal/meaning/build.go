package meaning

import (
	"fmt"
	"slices"
	"sync"

	"rbfmt/internal/source"
	"rbfmt/internal/syntax"
)

// ContractViolation reports a concrete node the dispatch table does not
// describe. It means the grammar and the table disagree, never that the
// input is bad Ruby.
type ContractViolation struct {
	Kind   string
	Field  string
	Offset uint32
	Reason string
}

func (e *ContractViolation) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("meaning: %s.%s at %d: %s", e.Kind, e.Field, e.Offset, e.Reason)
	}
	return fmt.Sprintf("meaning: %s at %d: %s", e.Kind, e.Offset, e.Reason)
}

// Builder converts concrete trees into meaning trees. A Builder is
// stateless and safe for concurrent use.
type Builder struct{}

// NewBuilder validates the dispatch tables and returns a builder.
func NewBuilder() (*Builder, error) {
	if err := ValidateTable(); err != nil {
		return nil, err
	}
	return &Builder{}, nil
}

var (
	defaultOnce    sync.Once
	defaultBuilder *Builder
	defaultErr     error
)

// Default returns the shared builder, validating the tables once.
func Default() (*Builder, error) {
	defaultOnce.Do(func() {
		defaultBuilder, defaultErr = NewBuilder()
	})
	return defaultBuilder, defaultErr
}

// Build converts t. The concrete tree stays owned by the caller and may be
// closed once Build returns; the result holds no references into it.
func (b *Builder) Build(t *syntax.Tree, file source.FileID) (*Tree, error) {
	st := &buildState{src: t.Source(), file: file}
	root, _, err := st.convert(t.Root())
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, &ContractViolation{Kind: t.Root().Kind(), Reason: "root dropped"}
	}
	for _, h := range st.pending {
		// an opening inside another body is carried by that body's bytes
		if st.enclosing(h.Span.Start) >= 0 {
			continue
		}
		return nil, &ContractViolation{Kind: string(h.Kind), Offset: h.Span.Start, Reason: "heredoc opening without body"}
	}
	slices.SortFunc(st.comments, func(a, b source.Span) int {
		return int(a.Start) - int(b.Start)
	})
	return &Tree{
		Root:     root,
		Source:   st.src,
		File:     file,
		Comments: st.comments,
		Heredocs: st.heredocs,
	}, nil
}

type buildState struct {
	src      []byte
	file     source.FileID
	comments []source.Span
	// pending heredoc openings waiting for their bodies, oldest first.
	pending  []*Node
	heredocs []*Node
	// bodies are the ranges of heredoc bodies seen so far, including the
	// one being built.
	bodies []source.Span
}

func (s *buildState) span(start, end uint32) source.Span {
	return source.Span{File: s.file, Start: start, End: end}
}

func (s *buildState) violation(cn syntax.Node, field, reason string) error {
	return &ContractViolation{Kind: cn.Kind(), Field: field, Offset: cn.Start(), Reason: reason}
}

// extra handles a comment or heredoc body found anywhere in the tree.
func (s *buildState) extra(cn syntax.Node) error {
	if cn.Kind() == syntax.KindComment {
		s.comments = append(s.comments, s.span(cn.Start(), cn.End()))
		return nil
	}
	return s.pairBody(cn)
}

func atom(kind Kind, text string, sp source.Span) *Node {
	return &Node{
		Kind:   kind,
		Fields: []Field{{Name: FieldValue, Value: Value{Kind: ValueText, Text: text}}},
		Span:   sp,
	}
}

// collected holds field values while the children of one node are scanned.
type collected struct {
	nodes map[string][]*Node
	texts map[string]string
}

// convert returns the semantic node for cn (nil when dropped) and cn's code
// span, which excludes extras.
func (s *buildState) convert(cn syntax.Node) (*Node, source.Span, error) {
	kind := Kind(cn.Kind())
	switch kind {
	case KindHeredocBeginning:
		return s.heredocOpening(cn)
	case KindIdentifier:
		if isNumberedParam(cn.Text(s.src)) {
			sp := s.span(cn.Start(), cn.End())
			return atom(KindNumberedParameter, cn.Text(s.src), sp), sp, nil
		}
	}

	rule, ok := LookupRule(kind)
	if !ok {
		return nil, source.Span{}, s.violation(cn, "", "unknown kind")
	}

	var (
		codeStart, codeEnd uint32
		haveCode           bool
		firstToken         string
		endless            bool
		vals               = collected{nodes: map[string][]*Node{}, texts: map[string]string{}}
	)
	cover := func(sp source.Span) {
		if !haveCode {
			codeStart, codeEnd, haveCode = sp.Start, sp.End, true
			return
		}
		codeStart = min(codeStart, sp.Start)
		codeEnd = max(codeEnd, sp.End)
	}

	for i := 0; i < cn.ChildCount(); i++ {
		c := cn.Child(i)
		if c.IsNull() {
			continue
		}
		if c.IsExtra() {
			if err := s.extra(c); err != nil {
				return nil, source.Span{}, err
			}
			continue
		}
		fname := cn.FieldName(i)
		if firstToken == "" {
			firstToken = c.Kind()
			if c.IsNamed() {
				firstToken = "\x00"
			}
		}
		if !c.IsNamed() && fname == "" {
			// keywords and delimiters carry no meaning
			if c.Kind() == "=" {
				endless = true
			}
			cover(s.span(c.Start(), c.End()))
			continue
		}
		if rule.Leaf {
			return nil, source.Span{}, s.violation(c, "", "named child under leaf kind "+string(kind))
		}
		if fname == "" {
			fname = FieldChildren
		}
		fr, declared := rule.field(fname)
		if !declared {
			return nil, source.Span{}, s.violation(cn, fname, "undeclared field")
		}
		switch fr.Shape {
		case ShapeSpan, ShapeOptionalSpan:
			if _, dup := vals.texts[fname]; dup {
				return nil, source.Span{}, s.violation(cn, fname, "span field repeated")
			}
			vals.texts[fname] = c.Text(s.src)
			cover(s.span(c.Start(), c.End()))
			continue
		}
		var (
			child *Node
			csp   source.Span
			err   error
		)
		if c.IsNamed() {
			child, csp, err = s.convert(c)
			if err != nil {
				return nil, source.Span{}, err
			}
		} else {
			csp = s.span(c.Start(), c.End())
			child = atom(KindToken, c.Text(s.src), csp)
		}
		cover(csp)
		if child == nil {
			continue
		}
		if fr.Shape != ShapeChildList && len(vals.nodes[fname]) > 0 {
			return nil, source.Span{}, s.violation(cn, fname, "single field repeated")
		}
		vals.nodes[fname] = append(vals.nodes[fname], child)
	}

	if !haveCode {
		codeStart, codeEnd = cn.Start(), cn.End()
	}
	sp := s.span(codeStart, codeEnd)
	if rule.Drop {
		return nil, sp, nil
	}
	if rule.Leaf {
		return atom(kind, string(s.src[codeStart:codeEnd]), sp), sp, nil
	}

	n := &Node{Kind: refineKind(kind, firstToken, endless, vals), Span: sp}
	for _, fr := range rule.Fields {
		switch fr.Shape {
		case ShapeSpan, ShapeOptionalSpan:
			text, ok := vals.texts[fr.Name]
			if !ok {
				if fr.Shape == ShapeSpan {
					return nil, source.Span{}, s.violation(cn, fr.Name, "missing required span")
				}
				continue
			}
			n.Fields = append(n.Fields, Field{Name: fr.Name, Value: Value{Kind: ValueText, Text: text}})
			continue
		}
		nodes := vals.nodes[fr.Name]
		if action, ok := LookupException(kind, fr.Name); ok {
			switch action {
			case ActionDrop:
				continue
			case ActionDropIfEmpty:
				if len(nodes) == 1 && len(nodes[0].Fields) == 0 {
					continue
				}
			}
		}
		switch {
		case len(nodes) == 0:
			if fr.Shape == ShapeChild {
				return nil, source.Span{}, s.violation(cn, fr.Name, "missing required child")
			}
		case fr.Shape == ShapeChildList:
			n.Fields = append(n.Fields, Field{Name: fr.Name, Value: Value{Kind: ValueList, List: nodes}})
		default:
			n.Fields = append(n.Fields, Field{Name: fr.Name, Value: Value{Kind: ValueNode, Node: nodes[0]}})
		}
	}
	if n.Kind == KindAssignment {
		n = s.notEqualCall(n)
	}
	return n, sp, nil
}

// notEqualCall undoes a misparse: tree-sitter reads `a.!=(b)` as the
// assignment `a.! = (b)`. With no space between `!` and `=` it is a call
// of the != method.
func (s *buildState) notEqualCall(n *Node) *Node {
	left, right := n.Child("left"), n.Child("right")
	if !left.Is(KindCall) || left.Child("receiver") == nil || right == nil {
		return n
	}
	method := left.Child("method")
	if method.AtomText() != "!" || left.Child("arguments") != nil || left.Child("block") != nil {
		return n
	}
	if end := int(method.Span.End); end >= len(s.src) || s.src[end] != '=' {
		return n
	}
	args := &Node{Kind: KindCommandArgumentList, Span: right.Span, Fields: []Field{
		{Name: FieldChildren, Value: Value{Kind: ValueList, List: []*Node{right}}},
	}}
	if right.Kind == KindParenthesizedStatements && len(right.Children()) == 1 {
		args = &Node{Kind: KindArgumentList, Span: right.Span, Fields: []Field{
			{Name: FieldChildren, Value: Value{Kind: ValueList, List: right.Children()}},
		}}
	}
	name := s.span(method.Span.Start, method.Span.End+1)
	return &Node{Kind: KindCall, Span: n.Span, Fields: []Field{
		{Name: "receiver", Value: Value{Kind: ValueNode, Node: left.Child("receiver")}},
		{Name: "operator", Value: Value{Kind: ValueText, Text: left.Text("operator")}},
		{Name: "method", Value: Value{Kind: ValueNode, Node: atom(method.Kind, "!=", name)}},
		{Name: "arguments", Value: Value{Kind: ValueNode, Node: args}},
	}}
}

// refineKind applies the flag checks that change how a construct is laid
// out without changing its grammar symbol.
func refineKind(kind Kind, firstToken string, endless bool, vals collected) Kind {
	switch kind {
	case KindMethod:
		if endless {
			return KindEndlessMethod
		}
	case KindSingletonMethod:
		if endless {
			return KindEndlessSingletonMethod
		}
	case KindArgumentList:
		if firstToken != "(" {
			return KindCommandArgumentList
		}
	case KindUnary:
		switch vals.texts["operator"] {
		case "not":
			return KindNot
		case "defined?":
			return KindDefined
		}
	}
	return kind
}

func isNumberedParam(text string) bool {
	return len(text) == 2 && text[0] == '_' && text[1] >= '1' && text[1] <= '9'
}
