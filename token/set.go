package token

import "github.com/bits-and-blooms/bitset"

// Set is a bit-set of token Kinds used for fast "is the current token
// one of these" membership checks and for defining FOLLOW-like recovery
// sets, backed by github.com/bits-and-blooms/bitset.
type Set struct {
	bits *bitset.BitSet
}

// NewSet builds a Set containing exactly the given kinds.
func NewSet(kinds ...Kind) Set {
	s := Set{bits: bitset.New(uint(kindEnd))}
	for _, k := range kinds {
		s.bits.Set(uint(k))
	}
	return s
}

// Contains reports whether k is a member of the set.
func (s Set) Contains(k Kind) bool {
	if s.bits == nil {
		return false
	}
	return s.bits.Test(uint(k))
}

// Union returns a new set containing the members of both sets, leaving
// both inputs unmodified.
func (s Set) Union(other Set) Set {
	out := Set{bits: bitset.New(uint(kindEnd))}
	if s.bits != nil {
		out.bits.InPlaceUnion(s.bits)
	}
	if other.bits != nil {
		out.bits.InPlaceUnion(other.bits)
	}
	return out
}

// With returns a copy of s with the given kinds additionally set.
func (s Set) With(kinds ...Kind) Set {
	return s.Union(NewSet(kinds...))
}

// Predefined recovery/lookahead sets.
var (
	// CompoundStatementStarters omits `match`: it is a soft keyword
	// lexed as NAME, so the statement dispatcher recognizes it by the
	// NAME's literal text rather than by Kind membership.
	CompoundStatementStarters = NewSet(
		IF, FOR, WHILE, DEF, CLASS, TRY, WITH, AT, ASYNC,
	)

	SimpleStatementStarters = NewSet(
		ASSERT, BREAK, CONTINUE, DEL, GLOBAL, IMPORT, FROM, NONLOCAL,
		PASS, RAISE, RETURN, YIELD,
	)

	ExpressionStarters = NewSet(
		NAME, NUMBER, STRING, FSTRING_START, LPAR, LSQB, LBRACE,
		PLUS, MINUS, TILDE, NOT, LAMBDA, AWAIT, YIELD, ELLIPSIS,
		TRUE, FALSE, NONE, STAR, DOUBLESTAR,
	)

	AugAssignOperators = NewSet(
		PLUSEQUAL, MINEQUAL, STAREQUAL, SLASHEQUAL, DOUBLESLASHEQUAL,
		PERCENTEQUAL, AMPEREQUAL, VBAREQUAL, CIRCUMFLEXEQUAL, LSHIFTEQUAL,
		RSHIFTEQUAL, DOUBLESTAREQUAL, ATEQUAL,
	)
)

// StatementStarters is the union of simple and compound starters.
var StatementStarters = CompoundStatementStarters.Union(SimpleStatementStarters)
