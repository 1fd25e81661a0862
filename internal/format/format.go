package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"rbfmt/internal/doc"
	"rbfmt/internal/meaning"
	"rbfmt/internal/source"
	"rbfmt/internal/syntax"
	"rbfmt/internal/trace"
	"rbfmt/internal/trivia"
)

// Result is the output of one Format call.
type Result struct {
	Output []byte
	// Changed is false when Output equals the input byte for byte.
	Changed bool
	// Overflows lists 1-based output lines wider than MaxWidth. Width is a
	// soft limit, so these are reported, not failed.
	Overflows []int
}

// Format formats one Ruby source file.
func Format(src []byte, opts Options) (Result, error) {
	return FormatContext(context.Background(), src, opts)
}

// FormatContext is Format with tracing taken from ctx. On any error the
// caller must keep the original bytes: no partial output is produced.
func FormatContext(ctx context.Context, src []byte, opts Options) (Result, error) {
	opts = opts.WithDefaults()
	content, flags := source.Normalize(src)

	tree, err := buildMeaning(ctx, content, 1)
	if err != nil {
		return Result{}, err
	}

	_, attach := trace.Start(ctx, trace.ScopePhase, "trivia")
	ann := trivia.Attach(tree)
	attach.End("")

	_, lower := trace.Start(ctx, trace.ScopePhase, "lower")
	p := newPrinter(tree, ann, opts)
	d := p.program(tree.Root)
	err = p.checkConsumed()
	lower.End("")
	if err != nil {
		return Result{}, err
	}

	_, printing := trace.Start(ctx, trace.ScopePhase, "print")
	out := doc.Print(d, doc.Options{Width: opts.MaxWidth, IndentWidth: opts.IndentWidth})
	printing.End("")
	if len(tree.Root.Children()) == 0 && len(tree.Comments) == 0 {
		out = nil
	}

	if opts.Verify {
		_, verify := trace.Start(ctx, trace.ScopePhase, "verify")
		err = verifyAgainst(ctx, tree, out)
		verify.End("")
		if err != nil {
			return Result{}, err
		}
	}

	overflows := doc.Overflows(out, opts.MaxWidth)
	out = source.Restore(out, flags)
	return Result{
		Output:    out,
		Changed:   !bytes.Equal(out, src),
		Overflows: overflows,
	}, nil
}

// buildMeaning parses content and builds its meaning tree.
func buildMeaning(ctx context.Context, content []byte, file source.FileID) (*meaning.Tree, error) {
	_, parse := trace.Start(ctx, trace.ScopePhase, "parse")
	st, err := syntax.Parse(ctx, content)
	parse.End("")
	if err != nil {
		var perr *syntax.ParseError
		if errors.As(err, &perr) {
			msg := "unexpected input"
			if perr.Missing {
				msg = "missing " + perr.Kind
			}
			return nil, &ParseError{Offset: perr.Offset, Line: perr.Line, Column: perr.Column, Msg: msg}
		}
		return nil, fmt.Errorf("format: parse: %w", err)
	}
	defer st.Close()

	_, build := trace.Start(ctx, trace.ScopePhase, "meaning")
	defer build.End("")
	b, err := meaning.Default()
	if err != nil {
		return nil, err
	}
	return b.Build(st, file)
}
