// Package testkit holds pipeline invariants shared by package tests.
package testkit

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"rbfmt/internal/format"
	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
	"rbfmt/internal/syntax"
)

// Build parses src and returns its meaning tree.
func Build(ctx context.Context, src []byte) (*meaning.Tree, error) {
	content, _ := source.Normalize(src)
	st, err := syntax.Parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	b, err := meaning.Default()
	if err != nil {
		return nil, err
	}
	return b.Build(st, 1)
}

// CheckSpanInvariants runs a minimal set of span invariants on a meaning tree:
// 1) every span belongs to the tree's file and lies within the source
// 2) every child span is contained in its parent span
// 3) heredoc bodies are exempt from 2): they live on the lines after their
// opening and are only checked against the source bounds
func CheckSpanInvariants(tree *meaning.Tree) error {
	if tree == nil || tree.Root == nil {
		return fmt.Errorf("nil tree")
	}
	size, err := safecast.Conv[uint32](len(tree.Source))
	if err != nil {
		return fmt.Errorf("len source overflow: %w", err)
	}
	var check func(n, parent *meaning.Node) error
	check = func(n, parent *meaning.Node) error {
		sp := n.Span
		if sp.File != tree.File {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", n.Kind, sp.File, tree.File)
		}
		if sp.Start > sp.End || sp.End > size {
			return fmt.Errorf("%s span %v outside source of %d bytes", n.Kind, sp, size)
		}
		if parent != nil && !meaning.IsHeredoc(parent) && !parent.Span.Contains(sp) {
			return fmt.Errorf("%s span %v is outside parent %s span %v", n.Kind, sp, parent.Kind, parent.Span)
		}
		for _, f := range n.Fields {
			for _, c := range fieldNodes(f.Value) {
				if err := check(c, n); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return check(tree.Root, nil)
}

func fieldNodes(v meaning.Value) []*meaning.Node {
	switch v.Kind {
	case meaning.ValueNode:
		if v.Node != nil {
			return []*meaning.Node{v.Node}
		}
	case meaning.ValueList:
		return v.List
	}
	return nil
}

// CheckIdempotent formats src twice and requires the second pass to change
// nothing.
func CheckIdempotent(ctx context.Context, src []byte, opts format.Options) error {
	first, err := format.FormatContext(ctx, src, opts)
	if err != nil {
		return fmt.Errorf("first pass: %w", err)
	}
	second, err := format.FormatContext(ctx, first.Output, opts)
	if err != nil {
		return fmt.Errorf("second pass: %w", err)
	}
	if !bytes.Equal(first.Output, second.Output) {
		return fmt.Errorf("not idempotent:\nfirst:\n%s\nsecond:\n%s", first.Output, second.Output)
	}
	return nil
}

// CheckCommentsPreserved requires out to carry the comments of orig, in the
// same order and with the same text up to trailing whitespace.
func CheckCommentsPreserved(ctx context.Context, orig, out []byte) error {
	before, err := Build(ctx, orig)
	if err != nil {
		return fmt.Errorf("original: %w", err)
	}
	after, err := Build(ctx, out)
	if err != nil {
		return fmt.Errorf("formatted: %w", err)
	}
	a, b := commentTexts(before), commentTexts(after)
	if !slices.Equal(a, b) {
		return fmt.Errorf("comments differ:\nbefore: %q\nafter:  %q", a, b)
	}
	return nil
}

func commentTexts(t *meaning.Tree) []string {
	out := make([]string, 0, len(t.Comments))
	for _, c := range t.Comments {
		out = append(out, strings.TrimRight(string(c.Bytes(t.Source)), " \t\r\n"))
	}
	return out
}

// CheckPipeline runs every invariant on src: span invariants of the input
// tree, meaning-preserving output, comment preservation and idempotence.
func CheckPipeline(ctx context.Context, src []byte, opts format.Options) error {
	tree, err := Build(ctx, src)
	if err != nil {
		return err
	}
	if err := CheckSpanInvariants(tree); err != nil {
		return err
	}
	opts.Verify = true
	res, err := format.FormatContext(ctx, src, opts)
	if err != nil {
		return err
	}
	if err := CheckCommentsPreserved(ctx, src, res.Output); err != nil {
		return err
	}
	return CheckIdempotent(ctx, res.Output, opts)
}
