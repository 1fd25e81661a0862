package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "disjoint spans",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 30, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "nested span",
			a:        Span{File: 1, Start: 10, End: 40},
			b:        Span{File: 1, Start: 15, End: 20},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "different files keep receiver",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 2, Start: 0, End: 50},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanContains(t *testing.T) {
	outer := Span{File: 1, Start: 5, End: 15}
	if !outer.Contains(Span{File: 1, Start: 5, End: 15}) {
		t.Error("span must contain itself")
	}
	if outer.Contains(Span{File: 1, Start: 4, End: 6}) {
		t.Error("overlapping span is not contained")
	}
	if !outer.ContainsOffset(14) || outer.ContainsOffset(15) {
		t.Error("ContainsOffset must treat End as exclusive")
	}
	if !outer.Before(Span{File: 1, Start: 15, End: 16}) {
		t.Error("adjacent span must be Before")
	}
}

func TestSpanBytesClamps(t *testing.T) {
	content := []byte("hello")
	if got := string(Span{Start: 1, End: 3}.Bytes(content)); got != "el" {
		t.Errorf("got %q", got)
	}
	if got := string(Span{Start: 3, End: 99}.Bytes(content)); got != "lo" {
		t.Errorf("got %q", got)
	}
	if got := (Span{Start: 10, End: 12}).Bytes(content); len(got) != 0 {
		t.Errorf("expected empty slice, got %q", got)
	}
}
