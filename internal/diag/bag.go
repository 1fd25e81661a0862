package diag

import (
	"cmp"
	"math"
	"slices"

	"fortio.org/safecast"

	"rbfmt/internal/source"
)

// Bag collects diagnostics up to a limit and counts what did not fit.
type Bag struct {
	items   []Diagnostic
	max     uint16
	dropped int
}

func NewBag(maxItems int) *Bag {
	capped, err := safecast.Conv[uint16](maxItems)
	if err != nil {
		capped = math.MaxUint16
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(int(capped), 64)),
		max:   capped,
	}
}

// Add возвращает false, если лимит исчерпан; такая диагностика учитывается
// в Dropped.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped is the number of diagnostics rejected by Add.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

func (b *Bag) Len() int { return len(b.items) }

// Items shares the bag's backing array; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Merge appends everything from other, raising the limit when needed.
func (b *Bag) Merge(other *Bag) {
	if total, err := safecast.Conv[uint16](len(b.items) + len(other.items)); err == nil && total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort orders by file, start, end, then errors first, then code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup keeps the first diagnostic per code and primary span.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		span source.Span
	}
	seen := make(map[key]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := key{d.Code, d.Primary}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
