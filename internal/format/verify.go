package format

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
)

// Verify reparses out and checks that it means what orig means and carries
// the same comments in the same order.
func Verify(ctx context.Context, orig, out []byte) error {
	content, _ := source.Normalize(orig)
	tree, err := buildMeaning(ctx, content, 1)
	if err != nil {
		return fmt.Errorf("format: verify: original: %w", err)
	}
	formatted, _ := source.Normalize(out)
	return verifyAgainst(ctx, tree, formatted)
}

func verifyAgainst(ctx context.Context, tree *meaning.Tree, out []byte) error {
	again, err := buildMeaning(ctx, out, 2)
	if err != nil {
		return fmt.Errorf("%w: reparse: %w", ErrVerify, err)
	}
	same, err := meaning.Equal(tree, again)
	if err != nil {
		return err
	}
	if !same {
		return fmt.Errorf("%w: meaning trees differ", ErrVerify)
	}
	if !slices.Equal(commentTexts(tree), commentTexts(again)) {
		return fmt.Errorf("%w: comments differ", ErrVerify)
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
