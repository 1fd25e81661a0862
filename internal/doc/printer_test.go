package doc

import (
	"testing"
)

func render(d Doc, width int) string {
	return string(Print(d, Options{Width: width, IndentWidth: 2}))
}

func callDoc() Doc {
	return G(
		Text("foo("),
		Nest(SoftLine, Text("a,"), SpaceLine, Text("b")),
		SoftLine,
		Text(")"),
	)
}

func TestGroupFitsOrBreaks(t *testing.T) {
	if got := render(callDoc(), 80); got != "foo(a, b)" {
		t.Fatalf("flat = %q", got)
	}
	if got := render(callDoc(), 5); got != "foo(\n  a,\n  b\n)" {
		t.Fatalf("broken = %q", got)
	}
}

func TestRestOfLineCountsTowardsFit(t *testing.T) {
	// "foo(a, b)" is 9 wide but the text after it ends the line at 12
	d := Cat(callDoc(), Text(".x!"))
	if got := render(d, 10); got != "foo(\n  a,\n  b\n).x!" {
		t.Fatalf("got %q", got)
	}
}

func TestHardLineForcesBreak(t *testing.T) {
	d := G(Text("["), Nest(SoftLine, Text("1"), HardLine, Text("2")), SoftLine, Text("]"))
	if got := render(d, 80); got != "[\n  1\n  2\n]" {
		t.Fatalf("got %q", got)
	}
}

func TestLineSuffixBeforeNewline(t *testing.T) {
	d := Cat(Text("a"), LineSuffix{Contents: Text(" # c")}, Text(","), HardLine, Text("b"))
	if got := render(d, 80); got != "a, # c\nb" {
		t.Fatalf("got %q", got)
	}
}

func TestLineSuffixBreaksGroupWithBreakParent(t *testing.T) {
	d := G(Text("f("), Nest(SoftLine, Text("a"), LineSuffix{Contents: Text(" # c")}, BreakParent{}), SoftLine, Text(")"))
	if got := render(d, 80); got != "f(\n  a # c\n)" {
		t.Fatalf("got %q", got)
	}
}

func TestDeferredAfterLine(t *testing.T) {
	body := Deferred{Contents: Cat(Nest(HardLine, Text("body")), HardLine, Text("A"))}
	d := Cat(
		Text("def f"),
		Nest(HardLine, Text("x = <<~A"), body, Text(".strip")),
		HardLine, Text("end"), HardLine,
	)
	want := "def f\n  x = <<~A.strip\n    body\n  A\nend\n"
	if got := render(d, 80); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDeferredAfterSuffix(t *testing.T) {
	d := Cat(
		Text("x(<<~A)"),
		Deferred{Contents: Cat(LiteralLine, Raw("raw  "), LiteralLine, Text("A"))},
		LineSuffix{Contents: Text(" # note")},
		HardLine, Text("y"),
	)
	want := "x(<<~A) # note\nraw  \nA\ny"
	if got := render(d, 80); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTrimsGeneratedTrailingSpace(t *testing.T) {
	if got := render(Cat(Text("a "), HardLine, Text("b")), 80); got != "a\nb" {
		t.Fatalf("got %q", got)
	}
	if got := render(Cat(Raw("a "), HardLine, Text("b")), 80); got != "a \nb" {
		t.Fatalf("raw trimmed: %q", got)
	}
}

func TestEmptyLinesCarryNoIndent(t *testing.T) {
	d := Cat(Text("x"), Nest(HardLine, HardLine, Text("y")))
	if got := render(d, 80); got != "x\n\n  y" {
		t.Fatalf("got %q", got)
	}
}

func TestOutdent(t *testing.T) {
	d := Cat(Text("a"), Nest(HardLine, Outdent{}, Raw("=begin"), LiteralLine, Raw("=end"), HardLine, Text("b")))
	if got := render(d, 80); got != "a\n=begin\n=end\n  b" {
		t.Fatalf("got %q", got)
	}
}

func TestIfBreakFollowsNamedGroup(t *testing.T) {
	var ids IDs
	id := ids.New()
	g := &Group{ID: id, Contents: Cat(Text("["), Nest(SoftLine, Text("aaaa,"), SpaceLine, Text("bbbb")), IfBreak{Broken: Text(","), GroupID: id}, SoftLine, Text("]"))}
	if got := render(g, 80); got != "[aaaa, bbbb]" {
		t.Fatalf("flat = %q", got)
	}
	g = &Group{ID: id, Contents: g.Contents}
	if got := render(g, 8); got != "[\n  aaaa,\n  bbbb,\n]" {
		t.Fatalf("broken = %q", got)
	}
}

func TestHardLineInBrokenBranchKeepsGroupFlat(t *testing.T) {
	block := func() Doc {
		return &Group{Contents: IfBreak{
			Broken: Cat(Text(" do"), Nest(HardLine, Text("x")), HardLine, Text("end")),
			Flat:   Text(" { x }"),
		}}
	}
	d := G(Text("foo("), Nest(SoftLine, Text("a,"), SpaceLine, Text("b"), block()), SoftLine, Text(")"))
	if got := render(d, 80); got != "foo(a, b { x })" {
		t.Fatalf("flat = %q", got)
	}
	if got := render(Cat(Text("each"), block()), 6); got != "each do\n  x\nend" {
		t.Fatalf("broken = %q", got)
	}
}

func TestLeadingAtLineStartAndInline(t *testing.T) {
	lead := Cat(Text("# c"), HardLine)
	d := Cat(Text("a"), HardLine, Leading{Lines: lead, Contents: Text("b")})
	if got := render(d, 80); got != "a\n# c\nb" {
		t.Fatalf("line start = %q", got)
	}
	d = Cat(Text("x = "), Leading{Lines: lead, Contents: Text("b")}, HardLine, Text("y"))
	if got := render(d, 80); got != "x =\n  # c\n  b\ny" {
		t.Fatalf("inline = %q", got)
	}
}

func TestNoBreakGroupStaysFlat(t *testing.T) {
	d := Cat(Text("\"#{"), &Group{NoBreak: true, Contents: callDoc()}, Text("}\""))
	if got := render(d, 4); got != "\"#{foo(a, b)}\"" {
		t.Fatalf("got %q", got)
	}
}

func TestFlatWidth(t *testing.T) {
	if w, ok := FlatWidth(callDoc()); !ok || w != 9 {
		t.Fatalf("FlatWidth = %d, %v", w, ok)
	}
	if _, ok := FlatWidth(Cat(Text("a"), HardLine)); ok {
		t.Fatalf("hard line measured as flat")
	}
}

func TestRawLines(t *testing.T) {
	d := Cat(Text("x = "), Nest(RawLines("\"a\n  b\"")))
	if got := render(d, 80); got != "x = \"a\n  b\"" {
		t.Fatalf("got %q", got)
	}
}

func TestOverflows(t *testing.T) {
	got := Overflows([]byte("short\nthis line is long\nok\n"), 10)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("Overflows = %v", got)
	}
}
