package diag

import (
	"testing"

	"rbfmt/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	b := NewBag(2)
	if !b.Add(New(SevWarning, FmtLayoutOverflow, source.Span{}, "long line")) {
		t.Fatal("first add must succeed")
	}
	if b.HasErrors() {
		t.Fatal("warnings are not errors")
	}
	b.Add(NewError(SynParseError, source.Span{Start: 4, End: 5}, "unexpected token"))
	if b.Add(NewError(SynParseError, source.Span{}, "dropped")) {
		t.Fatal("bag must respect its limit")
	}
	if !b.HasErrors() || b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("unexpected bag state: len=%d errors=%v dropped=%d", b.Len(), b.HasErrors(), b.Dropped())
	}

	other := NewBag(1)
	other.Add(New(SevInfo, ObsTimings, source.Span{}, "timings"))
	other.Add(New(SevInfo, ObsTimings, source.Span{}, "lost"))
	b.Merge(other)
	if b.Len() != 3 || b.Dropped() != 2 {
		t.Fatalf("after merge: len=%d dropped=%d", b.Len(), b.Dropped())
	}
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := New(SevWarning, FmtNotFormatted, source.Span{}, "x").WithNote(source.Span{}, "one")
	a := base.WithNote(source.Span{}, "a")
	b := base.WithNote(source.Span{}, "b")
	if a.Notes[1].Msg != "a" || b.Notes[1].Msg != "b" || len(base.Notes) != 1 {
		t.Fatalf("notes alias: a=%v b=%v base=%v", a.Notes, b.Notes, base.Notes)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(FmtVerifyFailed, source.Span{File: 1, Start: 3}, "b"))
	b.Add(NewError(SynParseError, source.Span{File: 0, Start: 9}, "a"))
	b.Add(NewError(SynParseError, source.Span{File: 0, Start: 9}, "a again"))
	b.Sort()
	b.Dedup()

	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items after dedup, got %d", len(items))
	}
	if items[0].Primary.File != 0 || items[1].Code != FmtVerifyFailed {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		SynParseError:        "SYN2001",
		FmtContractViolation: "FMT3001",
		IOWriteFileError:     "IO4002",
		CfgParseError:        "CFG5001",
		UnknownCode:          "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d: want %s, got %s", code, want, got)
		}
	}
}
