package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"rbfmt/internal/format"
	"rbfmt/internal/testkit"
)

// formatTimeout is the maximum time allowed for formatting a single input.
// Longer runs point to a loop in the document builder or the printer.
const formatTimeout = 5 * time.Second

// FuzzFormatStable checks that whatever formats successfully reparses to the
// same meaning, keeps its comments and formats to itself.
func FuzzFormatStable(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		ctx := context.Background()
		opts := format.DefaultOptions()
		opts.MaxWidth = 40
		opts.Verify = true

		res, err := format.FormatContext(ctx, input, opts)
		switch {
		case errors.Is(err, format.ErrVerify):
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		case err != nil:
			// ошибки разбора и контракта допустимы, но без частичного вывода
			if res.Output != nil {
				t.Fatalf("error %v came with output", err)
			}
			return
		}
		if err := testkit.CheckCommentsPreserved(ctx, input, res.Output); err != nil {
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		}
		if err := testkit.CheckIdempotent(ctx, res.Output, opts); err != nil {
			t.Fatalf("%v\ninput: %q", err, truncateForLog(input, 200))
		}
	})
}

// FuzzFormatNoHang tests that formatting finishes on any input.
func FuzzFormatNoHang(f *testing.F) {
	addCorpusSeeds(f)
	for _, s := range edgeSeeds {
		f.Add([]byte(s))
	}

	// глубокая вложенность и длинные цепочки
	f.Add([]byte("a(b(c(d(e(f(g(h(i(j(k(l(m(n(o(p))))))))))))))))\n"))
	f.Add([]byte("a.b.c.d.e.f.g.h.i.j.k.l.m.n.o.p.q.r.s.t.u.v.w.x.y.z\n"))
	f.Add([]byte("[[[[[[[[[[[[[[[[1]]]]]]]]]]]]]]]]\n"))
	f.Add([]byte("x = <<~A + <<~B\n  a\nA\n  b\nB\n"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		ctx, cancel := context.WithTimeout(context.Background(), formatTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = format.FormatContext(ctx, input, format.DefaultOptions())
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("format hang detected: took longer than %v\ninput (%d bytes): %q",
				formatTimeout, len(input), truncateForLog(input, 200))
		}
	})
}
