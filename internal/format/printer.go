package format

import (
	"bytes"
	"strings"

	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
	"rbfmt/internal/trivia"
)

type printer struct {
	src  []byte
	tree *meaning.Tree
	ann  *trivia.Annotations
	opt  Options
	ids  doc.IDs
	// used[i] is set once comment i has been placed in the document.
	used []bool
	// heredocs holds heredoc nodes whose bodies have been placed.
	heredocs map[*meaning.Node]bool
	// inCommand counts enclosing argument lists written without
	// parentheses; block delimiters cannot be swapped inside them.
	inCommand int
}

func newPrinter(tree *meaning.Tree, ann *trivia.Annotations, opt Options) *printer {
	return &printer{
		src:      tree.Source,
		tree:     tree,
		ann:      ann,
		opt:      opt,
		used:     make([]bool, len(ann.Comments)),
		heredocs: make(map[*meaning.Node]bool, len(tree.Heredocs)),
	}
}

// checkConsumed fails when a comment or heredoc body never reached the
// document.
func (p *printer) checkConsumed() error {
	for i, ok := range p.used {
		if !ok {
			c := p.ann.Comments[i]
			return &LostError{Err: ErrCommentLost, Offset: c.Span.Start, Text: c.Text}
		}
	}
	for _, h := range p.tree.Heredocs {
		if !p.heredocs[h] {
			return &LostError{Err: ErrContentLost, Offset: h.Span.Start, Text: h.Text(meaning.FieldOpening)}
		}
	}
	return nil
}

func (p *printer) text(sp source.Span) string {
	return string(sp.Bytes(p.src))
}

// between returns the source text from a to b.
func (p *printer) between(a, b uint32) string {
	if a >= b {
		return ""
	}
	return string(p.src[a:b])
}

// node lowers n together with the comments attached to it.
func (p *printer) node(n *meaning.Node) doc.Doc {
	if n == nil {
		return nil
	}
	return p.decorate(n, p.lower(n))
}

func (p *printer) nodes(ns []*meaning.Node) []doc.Doc {
	out := make([]doc.Doc, 0, len(ns))
	for _, n := range ns {
		out = append(out, p.node(n))
	}
	return out
}

func (p *printer) lower(n *meaning.Node) doc.Doc {
	switch n.Kind {
	// statements and bodies
	case meaning.KindBegin:
		return p.beginBlock(n)
	case meaning.KindBeginBlock:
		return p.hookBlock("BEGIN", n)
	case meaning.KindEndBlock:
		return p.hookBlock("END", n)
	case meaning.KindParenthesizedStatements:
		return p.parenthesized(n)
	case meaning.KindReturn, meaning.KindBreak, meaning.KindNext, meaning.KindYield,
		meaning.KindRedo, meaning.KindRetry:
		return p.jump(n)
	case meaning.KindAlias:
		return doc.Cat(doc.Text("alias "), p.node(n.Child("name")), doc.Text(" "), p.node(n.Child("alias")))
	case meaning.KindUndef:
		return doc.Cat(doc.Text("undef "), commaList(p.nodes(n.Children())))

	// definitions
	case meaning.KindMethod, meaning.KindSingletonMethod,
		meaning.KindEndlessMethod, meaning.KindEndlessSingletonMethod:
		return p.method(n)
	case meaning.KindClass:
		return p.class(n)
	case meaning.KindModule:
		return p.module(n)
	case meaning.KindSingletonClass:
		return p.singletonClass(n)
	case meaning.KindMethodParameters, meaning.KindLambdaParameters:
		return p.paramList(n)
	case meaning.KindBlockParameters:
		return p.blockParams(n)
	case meaning.KindOptionalParameter, meaning.KindKeywordParameter,
		meaning.KindSplatParameter, meaning.KindHashSplatParameter,
		meaning.KindBlockParameter, meaning.KindDestructuredParameter:
		return p.param(n)
	case meaning.KindSetter:
		return doc.Cat(p.node(n.Child("name")), doc.Text("="))

	// control flow
	case meaning.KindIf, meaning.KindUnless:
		return p.ifStmt(n)
	case meaning.KindIfModifier, meaning.KindUnlessModifier,
		meaning.KindWhileModifier, meaning.KindUntilModifier, meaning.KindRescueModifier:
		return p.modifier(n)
	case meaning.KindConditional:
		return p.ternary(n)
	case meaning.KindWhile, meaning.KindUntil:
		return p.loop(n)
	case meaning.KindFor:
		return p.forLoop(n)
	case meaning.KindCase:
		return p.caseStmt(n)
	case meaning.KindCaseMatch:
		return p.caseMatch(n)

	// calls
	case meaning.KindCall:
		return p.call(n)
	case meaning.KindArgumentList, meaning.KindCommandArgumentList:
		return p.arguments(n)
	case meaning.KindElementReference:
		return p.elementReference(n)
	case meaning.KindBlock, meaning.KindDoBlock:
		return p.block(n, n.Child("parameters"), p.inCommand > 0)
	case meaning.KindLambda:
		return p.lambda(n)
	case meaning.KindSplatArgument:
		return p.prefixed("*", n)
	case meaning.KindHashSplatArgument:
		return p.prefixed("**", n)
	case meaning.KindBlockArgument:
		return p.prefixed("&", n)
	case meaning.KindScopeResolution:
		return doc.Cat(p.node(n.Child("scope")), doc.Text("::"), p.node(n.Child("name")))

	// expressions
	case meaning.KindAssignment:
		return p.assignment(n, "=")
	case meaning.KindOperatorAssignment:
		return p.assignment(n, n.Text("operator"))
	case meaning.KindLeftAssignmentList, meaning.KindRightAssignmentList:
		return p.assignmentList(n)
	case meaning.KindDestructuredLeft:
		return doc.Cat(doc.Text("("), p.assignmentList(n), doc.Text(")"))
	case meaning.KindRestAssignment:
		return p.prefixed("*", n)
	case meaning.KindBinary:
		return p.binary(n)
	case meaning.KindUnary, meaning.KindNot, meaning.KindDefined:
		return p.unary(n)
	case meaning.KindRange:
		return doc.Cat(p.node(n.Child("begin")), doc.Text(n.Text("operator")), p.node(n.Child("end")))
	case meaning.KindPattern:
		return p.node(first(n.Children()))

	// collections
	case meaning.KindArray:
		return p.array(n)
	case meaning.KindHash:
		return p.hash(n)
	case meaning.KindPair:
		return p.pair(n)

	// literals
	case meaning.KindString, meaning.KindSubshell, meaning.KindRegex, meaning.KindDelimitedSymbol:
		return p.interpolated(n)
	case meaning.KindInterpolation:
		return p.interpolation(n)
	case meaning.KindSquigglyHeredoc, meaning.KindDashHeredoc, meaning.KindPlainHeredoc:
		return p.heredoc(n)

	// patterns
	case meaning.KindArrayPattern, meaning.KindFindPattern:
		return p.arrayPattern(n)
	case meaning.KindHashPattern:
		return p.hashPattern(n)
	case meaning.KindKeywordPattern:
		return p.keyed(n.Child("key"), n.Child("value"))
	case meaning.KindAlternativePattern:
		return doc.Join(doc.Text(" | "), p.nodes(n.List("alternatives")))
	case meaning.KindAsPattern:
		return doc.Cat(p.node(n.Child("value")), doc.Text(" => "), p.node(n.Child("name")))
	case meaning.KindVariableReferencePattern:
		return doc.Cat(doc.Text("^"), p.node(n.Child("name")))
	case meaning.KindExpressionReference:
		return doc.Cat(doc.Text("^("), p.node(n.Child("value")), doc.Text(")"))
	case meaning.KindParenthesizedPattern:
		return doc.Cat(doc.Text("("), p.node(first(n.Children())), doc.Text(")"))
	case meaning.KindMatchPattern:
		return p.infix(n.Child("value"), " =>", n.Child("pattern"))
	case meaning.KindTestPattern:
		return p.infix(n.Child("value"), " in", n.Child("pattern"))
	case meaning.KindIfGuard:
		return doc.Cat(doc.Text("if "), p.node(n.Child("condition")))
	case meaning.KindUnlessGuard:
		return doc.Cat(doc.Text("unless "), p.node(n.Child("condition")))
	}
	if n.IsAtom() {
		return doc.RawLines(n.AtomText())
	}
	return p.verbatim(n)
}

func first(ns []*meaning.Node) *meaning.Node {
	if len(ns) == 0 {
		return nil
	}
	return ns[0]
}

func (p *printer) infix(left *meaning.Node, op string, right *meaning.Node) doc.Doc {
	return doc.Cat(p.node(left), p.after(op, left.Span.End, right))
}

func (p *printer) prefixed(op string, n *meaning.Node) doc.Doc {
	return doc.Cat(doc.Text(op), p.node(first(n.Children())))
}

// ---- comments ----

func (p *printer) comment(c trivia.Comment) doc.Doc {
	p.used[c.Index] = true
	if c.Block {
		return doc.Cat(doc.Outdent{}, doc.RawLines(c.Text))
	}
	return doc.Text(c.Text)
}

// decorate wraps d with the comments of n that nobody placed yet.
func (p *printer) decorate(n *meaning.Node, d doc.Doc) doc.Doc {
	if p.ann.Of(n) == nil {
		return d
	}
	if lead := p.leading(n); lead != nil {
		d = doc.Leading{Lines: lead, Contents: d}
	}
	return doc.Cat(d, p.trailing(n))
}

// after lowers n behind op on the same line. When the source had a comment
// between them n moves to an indented line of its own, so no code joins the
// comment's line.
func (p *printer) after(op string, from uint32, n *meaning.Node) doc.Doc {
	if n == nil {
		return doc.Text(op)
	}
	if p.commentIn(from, n.Span.Start) {
		return doc.Cat(doc.Text(op), doc.Nest(doc.HardLine, p.node(n)))
	}
	return doc.Cat(doc.Text(op+" "), p.node(n))
}

// hang lowers the operand of a wrapper that starts with its operator
// (`=> e`, `< Base`): a space, or a line of its own after a comment.
func (p *printer) hang(wrapper, n *meaning.Node) doc.Doc {
	return p.after("", wrapper.Span.Start, n)
}

// commentIn reports whether a comment starts in [from, to).
func (p *printer) commentIn(from, to uint32) bool {
	for _, c := range p.ann.Comments {
		if c.Span.Start >= from && c.Span.Start < to {
			return true
		}
	}
	return false
}

// leading renders leading comments, each on its own line before n.
func (p *printer) leading(n *meaning.Node) doc.Doc {
	tv := p.ann.Of(n)
	if tv == nil {
		return nil
	}
	var parts []doc.Doc
	for _, c := range tv.Leading {
		if p.used[c.Index] {
			continue
		}
		if len(parts) > 0 && c.BlankLinesBefore > 0 {
			parts = append(parts, doc.HardLine)
		}
		parts = append(parts, p.comment(c), doc.HardLine)
	}
	if len(parts) > 0 && tv.BlankLinesBefore > 0 {
		parts = append(parts, doc.HardLine)
	}
	if len(parts) == 0 {
		return nil
	}
	return doc.Cat(parts...)
}

// trailing renders trailing comments, and floating ones no container took,
// after the end of the current line.
func (p *printer) trailing(n *meaning.Node) doc.Doc {
	tv := p.ann.Of(n)
	if tv == nil {
		return nil
	}
	var parts []doc.Doc
	add := func(c trivia.Comment) {
		if p.used[c.Index] {
			return
		}
		switch {
		case c.Block:
			parts = append(parts, doc.HardLine)
		case len(parts) == 0:
			parts = append(parts, doc.Text(" "))
		default:
			parts = append(parts, doc.HardLine)
		}
		parts = append(parts, p.comment(c))
	}
	for _, c := range tv.Trailing {
		add(c)
	}
	for _, c := range tv.Floating {
		add(c)
	}
	if len(parts) == 0 {
		return nil
	}
	return doc.Cat(doc.LineSuffix{Contents: doc.Cat(parts...)}, doc.BreakParent{})
}

// floatingLines renders n's floating comments one per line, each after a
// line break. after tells whether something precedes them in the same
// container, so blank lines before the first one count.
func (p *printer) floatingLines(n *meaning.Node, after bool) doc.Doc {
	tv := p.ann.Of(n)
	if tv == nil {
		return nil
	}
	var parts []doc.Doc
	for _, c := range tv.Floating {
		if p.used[c.Index] {
			continue
		}
		if (after || len(parts) > 0) && c.BlankLinesBefore > 0 {
			parts = append(parts, doc.HardLine)
		}
		parts = append(parts, doc.HardLine, p.comment(c))
	}
	if len(parts) == 0 {
		return nil
	}
	return doc.Cat(parts...)
}

// clauseLead renders the leading comments of a clause keyword (else, when,
// rescue, ...) at the indentation of the body above it.
func (p *printer) clauseLead(n *meaning.Node) doc.Doc {
	tv := p.ann.Of(n)
	if tv == nil {
		return nil
	}
	var parts []doc.Doc
	for i, c := range tv.Leading {
		if p.used[c.Index] {
			continue
		}
		if i > 0 && c.BlankLinesBefore > 0 {
			parts = append(parts, doc.HardLine)
		}
		parts = append(parts, doc.HardLine, p.comment(c))
	}
	if len(parts) == 0 {
		return nil
	}
	return doc.Nest(parts...)
}

// ---- statements ----

func (p *printer) stmts(ns []*meaning.Node) doc.Doc {
	parts := make([]doc.Doc, 0, 3*len(ns))
	for i, n := range ns {
		if i > 0 {
			parts = append(parts, doc.HardLine)
			if p.ann.BlankBefore(n) > 0 {
				parts = append(parts, doc.HardLine)
			}
		}
		parts = append(parts, p.node(n))
	}
	return doc.Cat(parts...)
}

// region lowers the statements of a body container (then, else, do,
// body_statement) with the container's own comments. It returns nil for an
// empty region. box may be nil when statements hang directly off the owner.
func (p *printer) region(box *meaning.Node, ns []*meaning.Node) doc.Doc {
	var lead, fl, trail doc.Doc
	if box != nil {
		lead = p.leading(box)
		fl = p.floatingLines(box, len(ns) > 0)
		trail = p.trailing(box)
	}
	if lead == nil && fl == nil && trail == nil && len(ns) == 0 {
		return nil
	}
	if len(ns) == 0 {
		// a region never opens with a line break of its own
		return doc.Cat(lead, dropFirstLine(fl), trail)
	}
	return doc.Cat(lead, p.stmts(ns), fl, trail)
}

// indented places a region one level deeper on the following lines.
func indented(region doc.Doc) doc.Doc {
	if region == nil {
		return nil
	}
	return doc.Nest(doc.HardLine, region)
}

// program lowers the whole file.
func (p *printer) program(root *meaning.Node) doc.Doc {
	var (
		ns  []*meaning.Node
		end *meaning.Node
	)
	for _, c := range root.Children() {
		if c.Kind == meaning.KindUninterpreted {
			end = c
			continue
		}
		ns = append(ns, c)
	}
	parts := []doc.Doc{p.stmts(ns)}
	fl := p.floatingLines(root, len(ns) > 0)
	if len(ns) == 0 && fl != nil {
		// no line break before the first comment of the file
		fl = dropFirstLine(fl)
	}
	parts = append(parts, fl)
	if end == nil {
		parts = append(parts, doc.HardLine)
		return doc.Cat(parts...)
	}
	idx := bytes.LastIndex(p.src[:end.Span.Start], []byte("__END__"))
	if idx < 0 {
		return doc.Cat(append(parts, doc.HardLine, p.verbatim(end))...)
	}
	if len(ns) > 0 || fl != nil {
		parts = append(parts, doc.HardLine)
		if blankLineBefore(p.src, idx) {
			parts = append(parts, doc.HardLine)
		}
	}
	parts = append(parts, doc.Outdent{}, doc.RawLines(string(p.src[idx:])))
	return doc.Cat(parts...)
}

func dropFirstLine(d doc.Doc) doc.Doc {
	c, ok := d.(doc.Concat)
	if !ok {
		return d
	}
	for i, part := range c {
		if part == doc.HardLine {
			return append(append(doc.Concat{}, c[:i]...), c[i+1:]...)
		}
	}
	return d
}

// blankLineBefore reports whether the line above off is empty.
func blankLineBefore(src []byte, off int) bool {
	ls := bytes.LastIndexByte(src[:off], '\n')
	if ls <= 0 {
		return false
	}
	prev := bytes.LastIndexByte(src[:ls], '\n') + 1
	return strings.TrimSpace(string(src[prev:ls])) == ""
}

// ---- verbatim ----

// verbatim copies n from the source. Comments inside it are copied with it;
// heredoc bodies that start after it are queued after the line.
func (p *printer) verbatim(n *meaning.Node) doc.Doc {
	return p.verbatimSpan(n.Span)
}

func (p *printer) verbatimSpan(sp source.Span) doc.Doc {
	p.consumeComments(sp)
	parts := []doc.Doc{doc.RawLines(p.text(sp))}
	for _, h := range p.tree.Heredocs {
		if p.heredocs[h] || !sp.ContainsOffset(h.Span.Start) {
			continue
		}
		p.heredocs[h] = true
		body := h.Child(meaning.FieldBody)
		if body == nil || sp.Contains(body.Span) {
			continue
		}
		parts = append(parts, doc.Deferred{Contents: p.rawHeredocBody(h, body)})
	}
	return doc.Cat(parts...)
}

func (p *printer) consumeComments(sp source.Span) {
	for i, c := range p.ann.Comments {
		if sp.Contains(c.Span) {
			p.used[i] = true
		}
	}
}

// consumeHeredocs marks every heredoc opened inside sp as placed. Used when
// sp is copied with its bodies.
func (p *printer) consumeHeredocs(sp source.Span) {
	for _, h := range p.tree.Heredocs {
		if sp.ContainsOffset(h.Span.Start) {
			p.heredocs[h] = true
		}
	}
}
