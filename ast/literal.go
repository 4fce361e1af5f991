package ast

import "strings"

// QuoteStyle distinguishes the two quote characters the target language
// accepts for string-like literals.
type QuoteStyle int

const (
	SingleQuote QuoteStyle = iota
	DoubleQuote
)

func (q QuoteStyle) char() byte {
	if q == DoubleQuote {
		return '"'
	}
	return '\''
}

// PrefixKind categorizes a string/bytes/f-string literal's source prefix.
// Unicode and raw-lower/raw-upper are mutually exclusive
// with Bytes/BytesRaw/Format/FormatRaw at construction time; StringFlags
// does not re-validate this, the parser does before building the flags.
type PrefixKind int

const (
	PrefixNone PrefixKind = iota
	PrefixUnicode
	PrefixRawLower
	PrefixRawUpper
	PrefixBytes
	PrefixBytesRaw
	PrefixFormat
	PrefixFormatRaw
)

// StringFlags is the compact flag set every string/bytes/f-string node
// carries: quote style, triple-quoting, prefix category, and a validity
// bit for literals the parser accepted syntactically but flagged as
// semantically malformed (e.g. an unterminated escape).
type StringFlags struct {
	Quote        QuoteStyle
	TripleQuoted bool
	Prefix       PrefixKind
	Valid        bool
}

// IsRaw reports whether escape processing is disabled for this literal.
func (f StringFlags) IsRaw() bool {
	return f.Prefix == PrefixRawLower || f.Prefix == PrefixRawUpper || f.Prefix == PrefixBytesRaw || f.Prefix == PrefixFormatRaw
}

// IsBytes reports whether this literal is a bytes literal.
func (f StringFlags) IsBytes() bool {
	return f.Prefix == PrefixBytes || f.Prefix == PrefixBytesRaw
}

// IsFString reports whether this literal introduces a formatted string.
func (f StringFlags) IsFString() bool {
	return f.Prefix == PrefixFormat || f.Prefix == PrefixFormatRaw
}

// QuoteStr returns the literal quote character(s) as they appear in
// source: one character normally, three when triple-quoted.
func (f StringFlags) QuoteStr() string {
	q := string(f.Quote.char())
	if f.TripleQuoted {
		return strings.Repeat(q, 3)
	}
	return q
}

// prefixStr returns the source spelling of the prefix, empty for none.
func (f StringFlags) prefixStr() string {
	switch f.Prefix {
	case PrefixUnicode:
		return "u"
	case PrefixRawLower:
		return "r"
	case PrefixRawUpper:
		return "R"
	case PrefixBytes:
		return "b"
	case PrefixBytesRaw:
		return "rb"
	case PrefixFormat:
		return "f"
	case PrefixFormatRaw:
		return "rf"
	default:
		return ""
	}
}

// OpenerLen returns the number of source bytes occupied by the opening
// delimiter (prefix + quote run).
func (f StringFlags) OpenerLen() int {
	return len(f.prefixStr()) + len(f.QuoteStr())
}

// CloserLen returns the number of source bytes occupied by the closing
// quote run (the prefix never repeats at the close).
func (f StringFlags) CloserLen() int {
	return len(f.QuoteStr())
}

// FormatContents wraps body between this literal's opener and closer,
// reproducing the literal's original source spelling given its decoded
// body text.
func (f StringFlags) FormatContents(body string) string {
	var b strings.Builder
	b.WriteString(f.prefixStr())
	b.WriteString(f.QuoteStr())
	b.WriteString(body)
	b.WriteString(f.QuoteStr())
	return b.String()
}
