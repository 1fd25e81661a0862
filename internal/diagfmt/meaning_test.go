package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
)

func atomNode(kind meaning.Kind, text string, start, end uint32) *meaning.Node {
	return &meaning.Node{
		Kind:   kind,
		Fields: []meaning.Field{{Name: meaning.FieldValue, Value: meaning.Value{Kind: meaning.ValueText, Text: text}}},
		Span:   source.Span{File: 1, Start: start, End: end},
	}
}

// sampleTree is the meaning of "foo(a)".
func sampleTree() *meaning.Tree {
	args := &meaning.Node{
		Kind: "argument_list",
		Fields: []meaning.Field{{Name: meaning.FieldChildren, Value: meaning.Value{
			Kind: meaning.ValueList,
			List: []*meaning.Node{atomNode("identifier", "a", 4, 5)},
		}}},
		Span: source.Span{File: 1, Start: 3, End: 6},
	}
	call := &meaning.Node{
		Kind: "call",
		Fields: []meaning.Field{
			{Name: "method", Value: meaning.Value{Kind: meaning.ValueNode, Node: atomNode("identifier", "foo", 0, 3)}},
			{Name: "arguments", Value: meaning.Value{Kind: meaning.ValueNode, Node: args}},
		},
		Span: source.Span{File: 1, Start: 0, End: 6},
	}
	root := &meaning.Node{
		Kind: meaning.KindProgram,
		Fields: []meaning.Field{{Name: meaning.FieldChildren, Value: meaning.Value{
			Kind: meaning.ValueList,
			List: []*meaning.Node{call},
		}}},
		Span: source.Span{File: 1, Start: 0, End: 6},
	}
	return &meaning.Tree{Root: root, Source: []byte("foo(a)"), File: 1}
}

func TestFormatMeaningPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatMeaningPretty(&buf, sampleTree(), nil, nil); err != nil {
		t.Fatal(err)
	}
	want := "File (comments: 0, heredocs: 0)\n" +
		"└─ program (span: span(0-6))\n" +
		"   └─ children[0]: call (span: span(0-6))\n" +
		"      ├─ method: identifier (span: span(0-3)) \"foo\"\n" +
		"      └─ arguments: argument_list (span: span(3-6))\n" +
		"         └─ children[0]: identifier (span: span(4-5)) \"a\"\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("pretty mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatMeaningJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatMeaningJSON(&buf, sampleTree(), nil); err != nil {
		t.Fatal(err)
	}
	var out MeaningNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Kind != "program" || len(out.Fields) != 1 || len(out.Fields[0].List) != 1 {
		t.Fatalf("unexpected root: %+v", out)
	}
	call := out.Fields[0].List[0]
	names := make([]string, 0, len(call.Fields))
	for _, f := range call.Fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"method", "arguments"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if got := call.Fields[0].Node.Text; got != "foo" {
		t.Fatalf("method text = %q", got)
	}
}

func TestFormatMeaningGraph(t *testing.T) {
	var buf bytes.Buffer
	if err := FormatMeaningGraph(&buf, sampleTree()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if !strings.Contains(lines[0], "program") {
		t.Fatalf("root must be on the first line:\n%s", buf.String())
	}
	for _, want := range []string{`identifier "foo"`, `identifier "a"`, "argument_list", "/", "\\"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("graph lacks %q:\n%s", want, buf.String())
		}
	}
	for _, l := range lines {
		if strings.HasSuffix(l, " ") {
			t.Errorf("trailing space in %q", l)
		}
	}
}
