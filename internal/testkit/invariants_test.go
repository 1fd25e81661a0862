package testkit

import (
	"context"
	"testing"

	"rbfmt/internal/format"
	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
)

var corpus = []string{
	"foo(a, # c\n  b)\n",
	"x = <<~EOS\n      hello\n    EOS\n",
	"items.each { |x| a; b }\n",
	"class Foo < Bar\n  # doc\n  def initialize(a, b = 1, *rest, k:, **opts, &blk)\n    @a = a\n  end\n\n\n  def call = @a\nend\n",
	"case x\nwhen 1, 2 then :small\nelse\n  :big\nend\n",
	"begin\n  work\nrescue Foo, Bar => e\n  retry\nensure\n  done\nend\n",
	"[1111111111, 2222222222, 3333333333]\n",
	"# leading\nputs 1 # trailing\n\n\n\n# floating\n",
}

func TestCorpusInvariants(t *testing.T) {
	opts := format.DefaultOptions()
	opts.MaxWidth = 40
	for _, src := range corpus {
		if err := CheckPipeline(t.Context(), []byte(src), opts); err != nil {
			t.Errorf("%q: %v", src, err)
		}
	}
}

func TestSpanInvariantsCatchEscapedChild(t *testing.T) {
	tree, err := Build(context.Background(), []byte("foo(a, b)\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckSpanInvariants(tree); err != nil {
		t.Fatalf("fresh tree must pass: %v", err)
	}

	var leaf *meaning.Node
	meaning.Walk(tree.Root, func(n *meaning.Node) bool {
		if n.IsAtom() && leaf == nil {
			leaf = n
		}
		return true
	})
	if leaf == nil {
		t.Fatal("no atom in tree")
	}
	leaf.Span = source.Span{File: tree.File, Start: 0, End: uint32(len(tree.Source))}
	leaf.Span.End++
	if err := CheckSpanInvariants(tree); err == nil {
		t.Fatal("span past the end of the source must fail")
	}
}

func TestCommentsPreservedDetectsLoss(t *testing.T) {
	ctx := t.Context()
	if err := CheckCommentsPreserved(ctx, []byte("a # one\n"), []byte("a # one\n")); err != nil {
		t.Fatalf("same comments must pass: %v", err)
	}
	if err := CheckCommentsPreserved(ctx, []byte("a # one\n"), []byte("a\n")); err == nil {
		t.Fatal("missing comment must fail")
	}
}
