// Package lexer provides the reference tokenizer the parser is tested
// and driven against. Tokenization is explicitly out of scope for this
// repository's core; this
// package exists only so `cmd/pyflow` and the parser's own test suite
// have a real token source to run against, not as a production
// dependency of the parser itself — the parser only ever depends on the
// small `TokenStream` interface it declares.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Tangerg/pyflow/token"
)

// Lexer turns one source buffer into the full token sequence up front.
// Indentation-sensitive languages don't lend themselves to a lazy
// streaming tokenizer once INDENT/DEDENT bookkeeping is involved, so we
// tokenize eagerly into a slice and hand the parser a cursor over it
// (Stream) — this is also what lets Stream answer src_text(range)
// without re-scanning.
type Lexer struct {
	src        string
	pos        int
	parenDepth int
	indents    []int
	atLineHead bool
	errs       []error
	tokens     []token.Token
}

// New creates a Lexer over src, ready to Tokenize.
func New(src string) *Lexer {
	return &Lexer{src: src, indents: []int{0}, atLineHead: true}
}

// Tokenize runs the full lexical pass and returns every token, including
// a trailing EOF. Malformed input never aborts tokenization: lexical
// errors are recorded as ERROR tokens carrying the message as payload,
// mirroring the parser's own panic-free contract.
func Tokenize(src string) []token.Token {
	l := New(src)
	l.run()
	return l.tokens
}

func (l *Lexer) run() {
	for {
		if l.atLineHead && l.parenDepth == 0 {
			if !l.handleIndentation() {
				continue
			}
		}
		if !l.skipTrivia() {
			break
		}
		if l.atLineHead && l.parenDepth == 0 {
			// A NEWLINE was just emitted: measure the next line's
			// indentation before scanning any of its tokens.
			continue
		}
		if l.pos >= len(l.src) {
			break
		}
		l.scanOne()
	}
	l.finish()
}

func (l *Lexer) finish() {
	if l.parenDepth == 0 && len(l.tokens) > 0 {
		last := l.tokens[len(l.tokens)-1].Kind
		if last != token.NEWLINE {
			l.emit(token.NEWLINE, token.NewRange(l.pos, l.pos), nil)
		}
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(token.DEDENT, token.NewRange(l.pos, l.pos), nil)
	}
	l.emit(token.EOF, token.NewRange(l.pos, l.pos), nil)
}

// handleIndentation measures leading whitespace of a new logical line,
// emits INDENT/DEDENT as needed, and reports whether scanning should
// continue on this same iteration (false means the line was blank/
// comment-only and the caller should loop back to try the next line).
func (l *Lexer) handleIndentation() bool {
	start := l.pos
	width := 0
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ':
			width++
			l.pos++
			continue
		case '\t':
			width += 8 - (width % 8)
			l.pos++
			continue
		}
		break
	}
	if l.pos >= len(l.src) {
		l.atLineHead = false
		return false
	}
	switch l.src[l.pos] {
	case '\n', '\r':
		l.consumeNewlineChar()
		return false
	case '#':
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.pos++
		}
		return false
	}
	l.atLineHead = false
	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		l.emit(token.INDENT, token.NewRange(start, l.pos), nil)
	case width < top:
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			l.emit(token.DEDENT, token.NewRange(l.pos, l.pos), nil)
		}
		if l.indents[len(l.indents)-1] != width {
			l.errs = append(l.errs, fmt.Errorf("lexer: unindent does not match any outer indentation level at %d", l.pos))
			l.indents = append(l.indents, width)
		}
	}
	return true
}

func (l *Lexer) consumeNewlineChar() {
	if l.pos < len(l.src) && l.src[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '\n' {
		l.pos++
	}
}

// skipTrivia consumes spaces/tabs/comments/line-continuations and
// emits NEWLINE tokens for logical-line ends outside brackets. Returns
// false once EOF is reached with nothing left to scan.
func (l *Lexer) skipTrivia() bool {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t':
			l.pos++
		case c == '\\' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == '\n' || l.src[l.pos+1] == '\r'):
			l.pos++
			l.consumeNewlineChar()
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '\n' || c == '\r':
			start := l.pos
			l.consumeNewlineChar()
			if l.parenDepth > 0 {
				continue
			}
			l.emit(token.NEWLINE, token.NewRange(start, l.pos), nil)
			l.atLineHead = true
			return true
		default:
			return true
		}
	}
	return false
}

func (l *Lexer) emit(kind token.Kind, r token.Range, payload any) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Range: r, Payload: payload})
}

func (l *Lexer) peekByte(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) scanOne() {
	start := l.pos
	c := l.src[l.pos]

	switch {
	case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
		l.scanNameOrPrefixedLiteral(start)
		return
	case c >= '0' && c <= '9':
		l.scanNumber(start)
		return
	case c == '\'' || c == '"':
		l.scanString(start, "")
		return
	}
	l.scanOperator(start)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// scanNameOrPrefixedLiteral scans an identifier, then reinterprets it as
// a string/bytes/f-string prefix if immediately followed by a quote.
func (l *Lexer) scanNameOrPrefixedLiteral(start int) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentCont(r) {
			break
		}
		l.pos += size
	}
	name := l.src[start:l.pos]
	if (l.pos < len(l.src)) && (l.src[l.pos] == '\'' || l.src[l.pos] == '"') && isStringPrefix(name) {
		l.scanString(start, name)
		return
	}
	kind := token.KeywordOrName(name)
	if kind == token.NAME {
		l.emit(token.NAME, token.NewRange(start, l.pos), token.NamePayload{Name: name})
		return
	}
	l.emit(kind, token.NewRange(start, l.pos), nil)
}

func isStringPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "r", "u", "b", "f", "rb", "br", "rf", "fr":
		return true
	}
	return false
}

func prefixKind(raw string) token.StringPrefix {
	lower := strings.ToLower(raw)
	hasR := strings.Contains(lower, "r")
	hasB := strings.Contains(lower, "b")
	hasF := strings.Contains(lower, "f")
	upperR := strings.Contains(raw, "R")
	switch {
	case hasB && hasR:
		return token.PrefixBytesRaw
	case hasB:
		return token.PrefixBytes
	case hasF && hasR:
		return token.PrefixFormatRaw
	case hasF:
		return token.PrefixFormat
	case hasR && upperR:
		return token.PrefixRawUpper
	case hasR:
		return token.PrefixRawLower
	case lower == "u":
		return token.PrefixUnicode
	default:
		return token.PrefixNone
	}
}

// scanString scans a string/bytes/f-string literal whose prefix (if any)
// spans [start, quoteStart) and whose quote character begins at the
// lexer's current position.
func (l *Lexer) scanString(start int, prefix string) {
	quote := l.src[l.pos]
	triple := l.peekByte(1) == quote && l.peekByte(2) == quote
	qlen := 1
	if triple {
		qlen = 3
	}
	l.pos += qlen

	raw := prefixKind(prefix)
	isRaw := raw == token.PrefixRawLower || raw == token.PrefixRawUpper || raw == token.PrefixBytesRaw || raw == token.PrefixFormatRaw
	isFString := raw == token.PrefixFormat || raw == token.PrefixFormatRaw

	bodyStart := l.pos
	valid := true
	depth := 0
loop:
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && !triple:
			l.pos += 2
		case c == '\\' && triple:
			l.pos += 2
		case isFString && c == '{' && l.peekByte(1) == '{':
			l.pos += 2
		case isFString && c == '}' && l.peekByte(1) == '}':
			l.pos += 2
		case isFString && c == '{':
			depth++
			l.pos++
		case isFString && c == '}' && depth > 0:
			depth--
			l.pos++
		case c == quote && depth == 0:
			if !triple {
				break loop
			}
			if l.peekByte(1) == quote && l.peekByte(2) == quote {
				break loop
			}
			l.pos++
		case (c == '\n' || c == '\r') && !triple:
			valid = false
			break loop
		default:
			l.pos++
		}
	}
	bodyEnd := l.pos
	if l.pos < len(l.src) && l.src[l.pos] == quote {
		l.pos += qlen
	} else {
		valid = false
	}

	rawBody := l.src[bodyStart:bodyEnd]
	payload := token.StringPayload{
		Prefix:       raw,
		Quote:        quote,
		TripleQuoted: triple,
		Valid:        valid,
		IsFString:    isFString,
		RawBody:      rawBody,
	}
	if !isFString {
		if isRaw {
			payload.Value = rawBody
		} else {
			payload.Value = decodeEscapes(rawBody)
		}
	}
	l.emit(token.STRING, token.NewRange(start, l.pos), payload)
}

// DecodeEscapes processes the common backslash escapes; anything it
// doesn't recognize passes through verbatim rather than erroring, since
// exact escape-table fidelity is outside this reference lexer's remit.
// The parser reuses it when decoding literal runs inside f-strings.
func DecodeEscapes(s string) string {
	return decodeEscapes(s)
}

func decodeEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case '0':
			b.WriteByte(0)
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\n':
			// backslash-newline inside a string is a line continuation: elided.
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func (l *Lexer) scanNumber(start int) {
	isFloat := false
	isComplex := false
	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) && strings.ContainsRune("xXoObB", rune(l.src[l.pos+1])) {
		l.pos += 2
		for l.pos < len(l.src) && (isHexDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
		l.emit(token.NUMBER, token.NewRange(start, l.pos), token.NumberPayload{Literal: l.src[start:l.pos]})
		return
	}
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		save := l.pos
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			isFloat = true
			for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
				l.pos++
			}
		} else {
			l.pos = save
		}
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'j' || l.src[l.pos] == 'J') {
		isComplex = true
		l.pos++
	}
	l.emit(token.NUMBER, token.NewRange(start, l.pos), token.NumberPayload{
		IsFloat: isFloat, IsComplex: isComplex, Literal: l.src[start:l.pos],
	})
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }

// operators3, operators2 are tried before single-char operators so the
// longest match wins (e.g. "**=" before "**" before "*").
var operators3 = []struct {
	s string
	k token.Kind
}{
	{"**=", token.DOUBLESTAREQUAL}, {"//=", token.DOUBLESLASHEQUAL},
	{"<<=", token.LSHIFTEQUAL}, {">>=", token.RSHIFTEQUAL}, {"...", token.ELLIPSIS},
}

var operators2 = []struct {
	s string
	k token.Kind
}{
	{"**", token.DOUBLESTAR}, {"//", token.DOUBLESLASH}, {"<<", token.LSHIFT}, {">>", token.RSHIFT},
	{"<=", token.LESSEQUAL}, {">=", token.GREATEREQUAL}, {"==", token.EQEQUAL}, {"!=", token.NOTEQUAL},
	{"->", token.RARROW}, {":=", token.COLONEQUAL},
	{"+=", token.PLUSEQUAL}, {"-=", token.MINEQUAL}, {"*=", token.STAREQUAL}, {"/=", token.SLASHEQUAL},
	{"%=", token.PERCENTEQUAL}, {"&=", token.AMPEREQUAL}, {"|=", token.VBAREQUAL}, {"^=", token.CIRCUMFLEXEQUAL},
	{"@=", token.ATEQUAL},
}

var operators1 = map[byte]token.Kind{
	'(': token.LPAR, ')': token.RPAR, '[': token.LSQB, ']': token.RSQB,
	'{': token.LBRACE, '}': token.RBRACE, ':': token.COLON, ',': token.COMMA,
	';': token.SEMI, '+': token.PLUS, '-': token.MINUS, '*': token.STAR,
	'/': token.SLASH, '%': token.PERCENT, '@': token.AT, '&': token.AMPER,
	'|': token.VBAR, '^': token.CIRCUMFLEX, '~': token.TILDE, '.': token.DOT,
	'=': token.EQUAL, '<': token.LESS, '>': token.GREATER, '?': token.QUESTION,
}

func (l *Lexer) scanOperator(start int) {
	rest := l.src[l.pos:]
	for _, op := range operators3 {
		if strings.HasPrefix(rest, op.s) {
			l.pos += len(op.s)
			l.emit(op.k, token.NewRange(start, l.pos), nil)
			if op.k == token.LPAR || op.k == token.LSQB || op.k == token.LBRACE {
				l.parenDepth++
			}
			return
		}
	}
	for _, op := range operators2 {
		if strings.HasPrefix(rest, op.s) {
			l.pos += len(op.s)
			l.emit(op.k, token.NewRange(start, l.pos), nil)
			return
		}
	}
	c := l.src[l.pos]
	if k, ok := operators1[c]; ok {
		l.pos++
		l.emit(k, token.NewRange(start, l.pos), nil)
		switch k {
		case token.LPAR, token.LSQB, token.LBRACE:
			l.parenDepth++
		case token.RPAR, token.RSQB, token.RBRACE:
			if l.parenDepth > 0 {
				l.parenDepth--
			}
		}
		return
	}
	l.pos++
	l.emit(token.ERROR, token.NewRange(start, l.pos), fmt.Sprintf("unexpected character %q", c))
}
