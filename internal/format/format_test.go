package format

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func formatString(t *testing.T, src string, width int) string {
	t.Helper()
	opts := DefaultOptions()
	opts.MaxWidth = width
	opts.Verify = true
	res, err := Format([]byte(src), opts)
	if err != nil {
		t.Fatalf("Format(%q): %v", src, err)
	}
	return string(res.Output)
}

func TestFormat(t *testing.T) {
	cases := []struct {
		name  string
		width int
		src   string
		want  string
	}{
		{
			name:  "spacing",
			width: 100,
			src:   "foo(a,b)\n",
			want:  "foo(a, b)\n",
		},
		{
			name:  "broken array gets trailing comma",
			width: 20,
			src:   "[1111111111, 2222222222, 3333333333]\n",
			want:  "[\n  1111111111,\n  2222222222,\n  3333333333,\n]\n",
		},
		{
			name:  "command arguments never get trailing comma",
			width: 20,
			src:   "puts 1111111111, 2222222222\n",
			want:  "puts 1111111111,\n  2222222222\n",
		},
		{
			name:  "comment inside argument list forces break",
			width: 100,
			src:   "foo(a, # c\n  b)\n",
			want:  "foo(\n  a, # c\n  b,\n)\n",
		},
		{
			name:  "blank lines collapse",
			width: 100,
			src:   "a\n\n\n\nb\n",
			want:  "a\n\nb\n",
		},
		{
			name:  "comment only file",
			width: 100,
			src:   "# hello\n",
			want:  "# hello\n",
		},
		{
			name:  "short do block becomes braces",
			width: 100,
			src:   "items.each do |x|\n  puts x\nend\n",
			want:  "items.each { |x| puts x }\n",
		},
		{
			name:  "multi statement brace block becomes do",
			width: 100,
			src:   "items.each { |x| a; b }\n",
			want:  "items.each do |x|\n  a\n  b\nend\n",
		},
		{
			name:  "do block of command call is kept",
			width: 100,
			src:   "foo a do\n  x\nend\n",
			want:  "foo a do\n  x\nend\n",
		},
		{
			name:  "squiggly heredoc is re-indented",
			width: 100,
			src:   "x = <<~EOS\n      hello\n        world\n    EOS\n",
			want:  "x = <<~EOS\n  hello\n    world\nEOS\n",
		},
		{
			name:  "tab indented heredoc is copied",
			width: 100,
			src:   "x = <<~EOS\n\thello\nEOS\n",
			want:  "x = <<~EOS\n\thello\nEOS\n",
		},
		{
			name:  "brace block in argument list",
			width: 100,
			src:   "foo(a, ->(x) { x })\n",
			want:  "foo(a, ->(x) { x })\n",
		},
		{
			name:  "brace blocks in a fitting chain",
			width: 100,
			src:   "[1, 2, 3].map { |x| x * 2 }.select { |x| x > 2 }\n",
			want:  "[1, 2, 3].map { |x| x * 2 }.select { |x| x > 2 }\n",
		},
		{
			name:  "heredoc opened inside a heredoc interpolation",
			width: 100,
			src:   "a = <<~H1\n  #{<<~H2}\n    x\n  H2\nH1\n",
			want:  "a = <<~H1\n  #{<<~H2}\n    x\n  H2\nH1\n",
		},
		{
			name:  "comment after endless def operator",
			width: 100,
			src:   "def foo(a) = # 1\n  a\n",
			want:  "def foo(a) = # 1\n  a\n",
		},
		{
			name:  "comment after rescue modifier",
			width: 100,
			src:   "@foo rescue # a\n  nil\n",
			want:  "@foo rescue # a\n  nil\n",
		},
		{
			name:  "leading comment of superclass",
			width: 100,
			src:   "class Foo <\n  # bar\n  Bar\n  1\nend\n",
			want:  "class Foo <\n  # bar\n  Bar\n  1\nend\n",
		},
		{
			name:  "comment between pair key and value",
			width: 100,
			src:   "x = { a: # c\n  1 }\n",
			want:  "x = {\n  a: # c\n    1,\n}\n",
		},
		{
			name:  "trailing comment of rescued exception",
			width: 100,
			src:   "begin\n  1\nrescue foo # foo\n  2\nend\n",
			want:  "begin\n  1\nrescue foo # foo\n  2\nend\n",
		},
		{
			name:  "leading comment stays above rewrapped argument",
			width: 100,
			src:   "foo(a,\n  # c\n  b)\n",
			want:  "foo(\n  a,\n  # c\n  b,\n)\n",
		},
		{
			name:  "no trailing comma after rest parameter",
			width: 20,
			src:   "def foo(aaaaaaaaaa, *rest)\nend\n",
			want:  "def foo(\n  aaaaaaaaaa,\n  *rest\n)\nend\n",
		},
		{
			name:  "no trailing comma after forwarded arguments",
			width: 20,
			src:   "def foo(...)\n  bar(aaaaaaaaaa, ...)\nend\n",
			want:  "def foo(...)\n  bar(\n    aaaaaaaaaa,\n    ...\n  )\nend\n",
		},
		{
			name:  "not-equal method call",
			width: 100,
			src:   "a.!=(b)\n",
			want:  "a.!=(b)\n",
		},
		{
			name:  "data after __END__ is untouched",
			width: 100,
			src:   "puts 1\n__END__\n  raw   data\n",
			want:  "puts 1\n__END__\n  raw   data\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := formatString(t, tc.src, tc.width)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChainBreaksByWidth(t *testing.T) {
	src := "foo.bar(1).baz(2).qux(3)\n"
	if got := formatString(t, src, 120); got != src {
		t.Fatalf("wide chain changed: %q", got)
	}
	want := "foo\n  .bar(1)\n  .baz(2)\n  .qux(3)\n"
	if diff := cmp.Diff(want, formatString(t, src, 15)); diff != "" {
		t.Fatalf("narrow chain (-want +got):\n%s", diff)
	}
}

func TestIdempotent(t *testing.T) {
	srcs := []string{
		"foo(a, # c\n  b)\n",
		"x = <<~EOS\n      hello\n    EOS\n",
		"items.each { |x| a; b }\n",
		"class Foo < Bar\n  # doc\n  def initialize(a, b = 1, *rest, k:, **opts, &blk)\n    @a = a\n  end\n\n\n  def call = @a\nend\n",
		"case x\nwhen 1, 2 then :small\nelse\n  :big\nend\n",
		"begin\n  work\nrescue Foo, Bar => e\n  retry\nensure\n  done\nend\n",
		"a = <<~H1\n  #{<<~H2}\n    x\n  H2\nH1\nb = <<~H1\n  #{<<~H2}\n    y\n  H2\nH1\n",
		"x = { a: # c\n  1 }\n",
		"@foo rescue # a\n  # b\n  nil\n",
	}
	for _, src := range srcs {
		once := formatString(t, src, 40)
		twice := formatString(t, once, 40)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("not idempotent for %q (-first +second):\n%s", src, diff)
		}
	}
}

func TestFormatUnchanged(t *testing.T) {
	src := "def foo(a, b)\n  a + b\nend\n"
	res, err := Format([]byte(src), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed {
		t.Fatalf("formatted source reported as changed: %q", res.Output)
	}
}

func TestFormatEmpty(t *testing.T) {
	res, err := Format(nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Output) != 0 || res.Changed {
		t.Fatalf("empty input gave %q (changed=%v)", res.Output, res.Changed)
	}
}

func TestParseErrorKeepsSource(t *testing.T) {
	_, err := Format([]byte("def foo(\n"), DefaultOptions())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("want *ParseError, got %v", err)
	}
	if perr.Line < 1 {
		t.Fatalf("parse error without position: %+v", perr)
	}
}

func TestOverflowIsReported(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxWidth = 10
	res, err := Format([]byte("x = \"a very long string literal\"\n"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2}, res.Overflows); diff != "" {
		t.Fatalf("overflows (-want +got):\n%s", diff)
	}
}

func TestVerifyDetectsChange(t *testing.T) {
	err := Verify(t.Context(), []byte("foo(1)\n"), []byte("foo(2)\n"))
	if !errors.Is(err, ErrVerify) {
		t.Fatalf("want ErrVerify, got %v", err)
	}
}

func TestCRLFRestored(t *testing.T) {
	got := formatString(t, "foo(a,b)\r\n", 100)
	if got != "foo(a, b)\r\n" {
		t.Fatalf("got %q", got)
	}
}

// Every file under testdata is already formatted: formatting it again must
// verify and change nothing.
func TestFixturesAreFixedPoints(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.rb"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			got := formatString(t, string(src), 100)
			if diff := cmp.Diff(string(src), got); diff != "" {
				t.Fatalf("fixture changed (-want +got):\n%s", diff)
			}
		})
	}
}
