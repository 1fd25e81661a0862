package meaning

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"rbfmt/internal/source"
)

func textBody(src string) (*Node, []byte) {
	sp := source.Span{Start: 0, End: uint32(len(src))}
	body := &Node{
		Kind: KindHeredocBody,
		Fields: []Field{
			{Name: FieldParts, Value: Value{Kind: ValueList, List: []*Node{atom(KindHeredocContent, src, sp)}}},
			{Name: FieldTerm, Value: Value{Kind: ValueText, Text: "EOS"}},
		},
		Span: sp,
	}
	return body, []byte(src)
}

func lineTexts(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		s := ""
		for _, p := range l.Parts {
			s += p.Text
		}
		out = append(out, s)
	}
	return out
}

func TestLinesAndTrimIndent(t *testing.T) {
	body, _ := textBody("    a\n\n      b\n  \n")
	lines := Lines(body)
	want := []string{"    a", "", "      b", "  "}
	if diff := cmp.Diff(want, lineTexts(lines)); diff != "" {
		t.Fatalf("Lines mismatch (-want +got):\n%s", diff)
	}
	trimmed := make([]Line, 0, len(lines))
	for _, l := range lines {
		trimmed = append(trimmed, l.TrimIndent(4))
	}
	want = []string{"a", "", "  b", ""}
	if diff := cmp.Diff(want, lineTexts(trimmed)); diff != "" {
		t.Fatalf("TrimIndent mismatch (-want +got):\n%s", diff)
	}
}

func TestSquigglyIndent(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		width int
		ok    bool
	}{
		{"spaces", "    a\n      b\n", 4, true},
		{"blank lines ignored", "    a\n\n  \n    b\n", 4, true},
		{"tab suppresses", "\ta\n    b\n", 0, false},
		{"tab in blank line suppresses", "  a\n\t\n", 0, false},
		{"only blank lines", "\n  \n", 0, false},
		{"line continuation", "  a \\\n  b\n", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, src := textBody(tc.body)
			w, ok := SquigglyIndent(body, src)
			if w != tc.width || ok != tc.ok {
				t.Fatalf("SquigglyIndent = (%d, %v), want (%d, %v)", w, ok, tc.width, tc.ok)
			}
		})
	}
}
