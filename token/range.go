// Package token defines the lexical vocabulary shared by the lexer and the
// parser: byte-offset ranges, token kinds, and bitset-based token sets.
package token

import "fmt"

// Range is a half-open-by-convention pair of byte offsets into a UTF-8
// source buffer: [Start, End). Start <= End always holds. Every AST node
// carries exactly one Range covering its full textual extent, including
// any surrounding punctuation that belongs to it syntactically.
//
// Line/column derivation is deliberately not part of this type: a renderer
// re-derives line/column from the source buffer when a diagnostic needs to
// be displayed, so ranges never go stale under that translation.
type Range struct {
	Start int
	End   int
}

// NewRange builds a Range, panicking if start > end since that would
// violate the invariant every consumer of a Range relies on.
func NewRange(start, end int) Range {
	if start > end {
		panic(fmt.Sprintf("token: invalid range [%d, %d)", start, end))
	}
	return Range{Start: start, End: end}
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers zero bytes.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Cover returns the smallest range that contains both r and other.
func (r Range) Cover(other Range) Range {
	start := r.Start
	if other.Start < start {
		start = other.Start
	}
	end := r.End
	if other.End > end {
		end = other.End
	}
	return Range{Start: start, End: end}
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// AtEnd returns the zero-width range located at r's end offset, used to
// anchor diagnostics for "missing token" errors at the point they were
// expected.
func (r Range) AtEnd() Range {
	return Range{Start: r.End, End: r.End}
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}
