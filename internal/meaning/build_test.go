package meaning

import (
	"context"
	"strings"
	"testing"

	"rbfmt/internal/syntax"
)

func buildSource(t *testing.T, src string) *Tree {
	t.Helper()
	st, err := syntax.Parse(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	defer st.Close()
	b, err := Default()
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	tree, err := b.Build(st, 1)
	if err != nil {
		t.Fatalf("build %q: %v", src, err)
	}
	return tree
}

func firstStmt(t *testing.T, tree *Tree) *Node {
	t.Helper()
	stmts := tree.Root.Children()
	if len(stmts) == 0 {
		t.Fatalf("program has no statements")
	}
	return stmts[0]
}

func TestValidateTable(t *testing.T) {
	if err := ValidateTable(); err != nil {
		t.Fatalf("ValidateTable: %v", err)
	}
}

func TestBuildCall(t *testing.T) {
	tree := buildSource(t, "foo(1, 2)\n")
	call := firstStmt(t, tree)
	if call.Kind != KindCall {
		t.Fatalf("kind = %s, want call", call.Kind)
	}
	if got := call.Child("method").AtomText(); got != "foo" {
		t.Fatalf("method = %q", got)
	}
	args := call.Child("arguments")
	if args == nil || args.Kind != KindArgumentList {
		t.Fatalf("arguments = %+v", args)
	}
	if n := len(args.Children()); n != 2 {
		t.Fatalf("argument count = %d, want 2", n)
	}
	if call.Span.Start != 0 || call.Span.End != 9 {
		t.Fatalf("call span = %v", call.Span)
	}
}

func TestBuildRefinedKinds(t *testing.T) {
	cases := []struct {
		src  string
		find Kind
	}{
		{"puts 1, 2\n", KindCommandArgumentList},
		{"def foo = 1\n", KindEndlessMethod},
		{"def self.foo = 1\n", KindEndlessSingletonMethod},
		{"not x\n", KindNot},
		{"defined?(x)\n", KindDefined},
		{"[1].map { _1 + 1 }\n", KindNumberedParameter},
		{"x = <<~A\n  a\nA\n", KindSquigglyHeredoc},
		{"x = <<-A\n  a\n  A\n", KindDashHeredoc},
		{"x = <<A\na\nA\n", KindPlainHeredoc},
	}
	for _, tc := range cases {
		tree := buildSource(t, tc.src)
		found := false
		Walk(tree.Root, func(n *Node) bool {
			found = found || n.Kind == tc.find
			return !found
		})
		if !found {
			var sb strings.Builder
			_ = Dump(&sb, tree.Root, DumpOptions{})
			t.Errorf("%q: no %s node in\n%s", tc.src, tc.find, sb.String())
		}
	}
}

func TestEmptyParametersDropped(t *testing.T) {
	tree := buildSource(t, "def foo()\nend\n")
	def := firstStmt(t, tree)
	if _, ok := def.Get("parameters"); ok {
		t.Fatalf("empty parameter list kept")
	}
	tree = buildSource(t, "def foo(a)\nend\n")
	if firstStmt(t, tree).Child("parameters") == nil {
		t.Fatalf("non-empty parameter list dropped")
	}
}

func TestBuildCollectsComments(t *testing.T) {
	src := "# a\nfoo # b\n# c\n"
	tree := buildSource(t, src)
	if len(tree.Comments) != 3 {
		t.Fatalf("comments = %d, want 3", len(tree.Comments))
	}
	for i, want := range []string{"# a", "# b", "# c"} {
		if got := string(tree.Comments[i].Bytes(tree.Source)); got != want {
			t.Errorf("comment %d = %q, want %q", i, got, want)
		}
	}
}

func TestHeredocPairing(t *testing.T) {
	src := "foo(<<~A, <<-B)\n  one\n    two\nA\n  three\n  B\n"
	tree := buildSource(t, src)
	if len(tree.Heredocs) != 2 {
		t.Fatalf("heredocs = %d, want 2", len(tree.Heredocs))
	}
	a, b := tree.Heredocs[0], tree.Heredocs[1]
	if a.Kind != KindSquigglyHeredoc || b.Kind != KindDashHeredoc {
		t.Fatalf("kinds = %s, %s", a.Kind, b.Kind)
	}
	body := a.Child(FieldBody)
	if body == nil {
		t.Fatalf("first heredoc has no body")
	}
	if got := body.Text(FieldTerm); got != "A" {
		t.Fatalf("terminator = %q", got)
	}
	parts := body.List(FieldParts)
	if len(parts) != 1 || parts[0].AtomText() != "  one\n    two\n" {
		t.Fatalf("parts = %+v", parts)
	}
	if got := b.Child(FieldBody).List(FieldParts)[0].AtomText(); got != "  three\n" {
		t.Fatalf("second body = %q", got)
	}
	if w, ok := SquigglyIndent(body, tree.Source); !ok || w != 2 {
		t.Fatalf("SquigglyIndent = %d, %v", w, ok)
	}

	call := firstStmt(t, tree)
	if end := call.Span.End; end != uint32(strings.Index(src, "\n")) {
		t.Fatalf("call span runs into heredoc bodies: %v", call.Span)
	}
}

func TestHeredocInterpolationParts(t *testing.T) {
	tree := buildSource(t, "x = <<~A\n  a #{b} c\n  d\nA\n")
	body := tree.Heredocs[0].Child(FieldBody)
	parts := body.List(FieldParts)
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	if parts[1].Kind != KindInterpolation {
		t.Fatalf("middle part = %s", parts[1].Kind)
	}
	lines := Lines(body)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if got := lines[1].Parts[0].Text; got != "  d" {
		t.Fatalf("second line = %q", got)
	}
}

func TestNotEqualMethodCall(t *testing.T) {
	call := firstStmt(t, buildSource(t, "a.!=(b)\n"))
	if call.Kind != KindCall {
		t.Fatalf("kind = %s, want call", call.Kind)
	}
	if got := call.Child("method").AtomText(); got != "!=" {
		t.Fatalf("method = %q", got)
	}
	args := call.Child("arguments")
	if args.Kind != KindArgumentList || len(args.Children()) != 1 {
		t.Fatalf("arguments = %+v", args)
	}
}

func TestNestedHeredocBodies(t *testing.T) {
	src := "a = <<~H1\n  #{<<~H2}\n    x\n  H2\nH1\nb = <<~H1\n  #{<<~H2}\n    y\n  H2\nH1\n"
	tree := buildSource(t, src)
	if len(tree.Heredocs) != 4 {
		t.Fatalf("heredocs = %d, want 4", len(tree.Heredocs))
	}
	for _, i := range []int{0, 2} {
		body := tree.Heredocs[i].Child(FieldBody)
		if body == nil {
			t.Fatalf("heredoc %d has no body", i)
		}
		if body.Kind != KindOpaqueHeredocBody {
			t.Fatalf("outer body %d kind = %s, want opaque", i, body.Kind)
		}
		if got := body.Text(FieldTerm); got != "H1" {
			t.Fatalf("outer terminator %d = %q", i, got)
		}
	}
}
