package ast

import "github.com/Tangerg/pyflow/token"

// FStringPart is one part of a (possibly implicitly concatenated)
// f-string value: either a plain string literal run or a formatted
// string.
type FStringPart interface {
	Range() token.Range
	fstringPart()
}

func (*StringLiteral) fstringPart()  {}
func (*FormattedValue) fstringPart() {}

// ConversionKind is the `!s`/`!r`/`!a` conversion flag on an f-string
// expression element; ConversionNone means no `!` was present.
type ConversionKind byte

const (
	ConversionNone ConversionKind = 0
	ConversionStr  ConversionKind = 's'
	ConversionRepr ConversionKind = 'r'
	ConversionASCII ConversionKind = 'a'
)

// FStringElement is one element inside a formatted string: a literal
// text run, or an `{expr[!conv][:format_spec]}` expression element.
type FStringElement interface {
	Range() token.Range
	fstringElement()
}

func (*FStringLiteralElement) fstringElement()    {}
func (*FStringExpressionElement) fstringElement() {}

type FStringLiteralElement struct {
	Rng   token.Range
	Value string
}

func (e *FStringLiteralElement) Range() token.Range { return e.Rng }

// FStringExpressionElement is `{expr[!conv][:format_spec]}`. FormatSpec
// recurses into f-string element parsing, so it is itself
// an *FStringValue (typically a single *FormattedValue part).
type FStringExpressionElement struct {
	Rng        token.Range
	Expr       Expr
	Conversion ConversionKind
	FormatSpec *FStringValue // nil if no `:format_spec`
}

func (e *FStringExpressionElement) Range() token.Range { return e.Rng }

// FormattedValue is one `f"..."`/`f'...'` literal: a sequence of literal
// runs and expression elements.
type FormattedValue struct {
	Rng      token.Range
	Flags    StringFlags
	Elements []FStringElement
}

func (f *FormattedValue) Range() token.Range { return f.Rng }

// FStringValue is the value of an FStringExpr: either a single part or a
// concatenation of two-or-more parts.
type FStringValue struct {
	Rng   token.Range
	Parts []FStringPart
}

func (v *FStringValue) Range() token.Range { return v.Rng }

// IsConcatenated reports whether this value combines more than one part.
func (v *FStringValue) IsConcatenated() bool {
	return len(v.Parts) > 1
}

// Iter returns every top-level part in source order.
func (v *FStringValue) Iter() []FStringPart {
	return v.Parts
}

// LiteralParts returns only the plain-string-literal parts.
func (v *FStringValue) LiteralParts() []*StringLiteral {
	var out []*StringLiteral
	for _, p := range v.Parts {
		if lit, ok := p.(*StringLiteral); ok {
			out = append(out, lit)
		}
	}
	return out
}

// FStringParts returns only the formatted-string parts.
func (v *FStringValue) FStringParts() []*FormattedValue {
	var out []*FormattedValue
	for _, p := range v.Parts {
		if fv, ok := p.(*FormattedValue); ok {
			out = append(out, fv)
		}
	}
	return out
}

// FlattenedElements returns every expression/literal element across all
// formatted-string parts, flattened in source order; plain string-
// literal parts contribute no elements.
func (v *FStringValue) FlattenedElements() []FStringElement {
	var out []FStringElement
	for _, fv := range v.FStringParts() {
		out = append(out, fv.Elements...)
	}
	return out
}
