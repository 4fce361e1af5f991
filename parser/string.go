package parser

import (
	"strings"

	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/lexer"
	"github.com/Tangerg/pyflow/token"
)

// parseStringLike consumes one run of adjacent STRING tokens (implicit
// concatenation) and builds the appropriate literal node: a plain
// string, a bytes literal, or an f-string value combining literal and
// formatted parts.
func (p *parser) parseStringLike() ast.Expr {
	start := p.curRange()
	var toks []token.Token
	for p.at(token.STRING) {
		toks = append(toks, p.bump())
	}
	full := p.lastRange(start)

	anyFString := false
	anyBytes := false
	anyPlain := false
	for _, t := range toks {
		payload, _ := t.Payload.(token.StringPayload)
		switch {
		case payload.IsFString:
			anyFString = true
		case payload.Prefix == token.PrefixBytes || payload.Prefix == token.PrefixBytesRaw:
			anyBytes = true
		default:
			anyPlain = true
		}
	}
	if anyBytes && (anyPlain || anyFString) {
		p.errorf(full, diag.Other, "cannot mix bytes and non-bytes literals in implicit concatenation")
	}

	if anyFString {
		return p.buildFString(toks, full)
	}
	if anyBytes && !anyPlain {
		return p.buildBytes(toks, full)
	}
	return p.buildString(toks, full)
}

func flagsFromPayload(payload token.StringPayload) ast.StringFlags {
	flags := ast.StringFlags{
		TripleQuoted: payload.TripleQuoted,
		Valid:        payload.Valid,
	}
	if payload.Quote == '"' {
		flags.Quote = ast.DoubleQuote
	} else {
		flags.Quote = ast.SingleQuote
	}
	switch payload.Prefix {
	case token.PrefixUnicode:
		flags.Prefix = ast.PrefixUnicode
	case token.PrefixRawLower:
		flags.Prefix = ast.PrefixRawLower
	case token.PrefixRawUpper:
		flags.Prefix = ast.PrefixRawUpper
	case token.PrefixBytes:
		flags.Prefix = ast.PrefixBytes
	case token.PrefixBytesRaw:
		flags.Prefix = ast.PrefixBytesRaw
	case token.PrefixFormat:
		flags.Prefix = ast.PrefixFormat
	case token.PrefixFormatRaw:
		flags.Prefix = ast.PrefixFormatRaw
	default:
		flags.Prefix = ast.PrefixNone
	}
	return flags
}

func (p *parser) buildString(toks []token.Token, full token.Range) ast.Expr {
	s := ast.Alloc[ast.StringLiteral](p.arena)
	s.Rng = full
	var b strings.Builder
	for i, t := range toks {
		payload, _ := t.Payload.(token.StringPayload)
		if i == 0 {
			s.Flags = flagsFromPayload(payload)
		}
		b.WriteString(payload.Value)
	}
	s.Value = b.String()
	return s
}

func (p *parser) buildBytes(toks []token.Token, full token.Range) ast.Expr {
	s := ast.Alloc[ast.BytesLiteral](p.arena)
	s.Rng = full
	var b []byte
	for i, t := range toks {
		payload, _ := t.Payload.(token.StringPayload)
		if i == 0 {
			s.Flags = flagsFromPayload(payload)
		}
		b = append(b, payload.Value...)
	}
	s.Value = b
	return s
}

// buildFString assembles an FStringExpr whose value is a single part or
// a concatenation of >= 2 parts, each a plain literal or a formatted
// string.
func (p *parser) buildFString(toks []token.Token, full token.Range) ast.Expr {
	value := ast.Alloc[ast.FStringValue](p.arena)
	value.Rng = full
	for _, t := range toks {
		payload, _ := t.Payload.(token.StringPayload)
		flags := flagsFromPayload(payload)
		if !payload.IsFString {
			lit := ast.Alloc[ast.StringLiteral](p.arena)
			lit.Rng = t.Range
			lit.Flags = flags
			lit.Value = payload.Value
			value.Parts = append(value.Parts, lit)
			continue
		}
		fv := ast.Alloc[ast.FormattedValue](p.arena)
		fv.Rng = t.Range
		fv.Flags = flags
		fv.Elements = p.parseFStringBody(payload.RawBody, t.Range.Start+flags.OpenerLen(), flags)
		value.Parts = append(value.Parts, fv)
	}
	e := ast.Alloc[ast.FStringExpr](p.arena)
	e.Rng = full
	e.Value = value
	return e
}

// parseFStringBody scans the raw text between an f-string's quotes and
// produces its element sequence: literal runs and
// `{expr[!conv][:format_spec]}` expression elements, format specs
// recursing into element parsing.
func (p *parser) parseFStringBody(body string, base int, flags ast.StringFlags) []ast.FStringElement {
	var elems []ast.FStringElement
	var lit strings.Builder
	litStart := 0

	flushLiteral := func(end int) {
		if lit.Len() == 0 && litStart == end {
			return
		}
		text := lit.String()
		if !flags.IsRaw() {
			text = lexer.DecodeEscapes(text)
		}
		elems = append(elems, &ast.FStringLiteralElement{
			Rng:   token.NewRange(base+litStart, base+end),
			Value: text,
		})
		lit.Reset()
	}

	i := 0
	for i < len(body) {
		c := body[i]
		switch {
		case c == '{' && i+1 < len(body) && body[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(body) && body[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			flushLiteral(i)
			next := p.parseFStringExprElement(body, i, base, flags, &elems)
			i = next
			litStart = i
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flushLiteral(len(body))
	return elems
}

// parseFStringExprElement parses one `{...}` replacement field starting
// at the `{` at index open, appending the element and returning the
// index just past the closing `}`.
func (p *parser) parseFStringExprElement(body string, open, base int, flags ast.StringFlags, elems *[]ast.FStringElement) int {
	exprStart := open + 1
	i := exprStart
	depth := 0
	exprEnd := -1
	convAt := -1
	specAt := -1

scan:
	for i < len(body) {
		c := body[i]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			if depth == 0 {
				exprEnd = i
				break scan
			}
			depth--
		case '\'', '"':
			i = skipStringInField(body, i)
			continue
		case '!':
			if depth == 0 && i+1 < len(body) && body[i+1] != '=' {
				convAt = i
				exprEnd = i
				i = p.scanFieldTail(body, i, &specAt)
				break scan
			}
		case ':':
			if depth == 0 {
				specAt = i
				exprEnd = i
				i = scanToFieldClose(body, i+1)
				break scan
			}
		}
		i++
	}
	if exprEnd < 0 {
		p.errorf(token.NewRange(base+open, base+len(body)), diag.Other,
			"unterminated expression in f-string")
		exprEnd = len(body)
		i = len(body)
	}

	elem := &ast.FStringExpressionElement{}
	exprText := body[exprStart:exprEnd]
	if strings.TrimSpace(exprText) == "" {
		p.errorf(token.NewRange(base+open, base+exprEnd+1), diag.ExpectedExpression,
			"f-string expression cannot be empty")
		elem.Expr = p.errorExprAt(token.NewRange(base+exprStart, base+exprEnd), "empty f-string expression")
	} else {
		elem.Expr = p.parseSubExpression(exprText, base+exprStart)
	}

	if convAt >= 0 && convAt+1 < len(body) {
		switch body[convAt+1] {
		case 's':
			elem.Conversion = ast.ConversionStr
		case 'r':
			elem.Conversion = ast.ConversionRepr
		case 'a':
			elem.Conversion = ast.ConversionASCII
		default:
			p.errorf(token.NewRange(base+convAt, base+convAt+2), diag.Other,
				"f-string conversion must be 's', 'r', or 'a'")
		}
	}

	closeAt := i
	if specAt >= 0 {
		specEnd := closeAt
		if specEnd > len(body) {
			specEnd = len(body)
		}
		specText := body[specAt+1 : specEnd]
		fv := ast.Alloc[ast.FormattedValue](p.arena)
		fv.Rng = token.NewRange(base+specAt+1, base+specEnd)
		fv.Flags = flags
		fv.Elements = p.parseFStringBody(specText, base+specAt+1, flags)
		spec := ast.Alloc[ast.FStringValue](p.arena)
		spec.Rng = fv.Rng
		spec.Parts = []ast.FStringPart{fv}
		elem.FormatSpec = spec
	}

	end := closeAt
	if end < len(body) && body[end] == '}' {
		end++
	}
	elem.Rng = token.NewRange(base+open, base+end)
	*elems = append(*elems, elem)
	return end
}

// scanFieldTail advances from a `!conv` marker to the field's closing
// brace, noting a `:format_spec` if one follows the conversion.
func (p *parser) scanFieldTail(body string, bang int, specAt *int) int {
	i := bang + 2 // skip !x
	if i < len(body) && body[i] == ':' {
		*specAt = i
		return scanToFieldClose(body, i+1)
	}
	return i
}

// scanToFieldClose advances to the `}` that closes the current field,
// honoring one level of nested `{...}` replacement inside format specs.
func scanToFieldClose(body string, from int) int {
	depth := 0
	for i := from; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return len(body)
}

// skipStringInField skips a quoted string inside a replacement field,
// returning the index just past its closing quote.
func skipStringInField(body string, at int) int {
	quote := body[at]
	i := at + 1
	for i < len(body) {
		switch body[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return i
}

// parseSubExpression parses a source fragment (an f-string replacement
// expression) in expression mode, shifting every resulting range by
// base so diagnostics and node ranges land in file coordinates.
func (p *parser) parseSubExpression(fragment string, base int) ast.Expr {
	sub := &parser{
		ts:    newShiftedStream(fragment, base),
		arena: p.arena,
		diags: p.diags,
		mode:  p.mode,
	}
	return sub.parseExprOrTuple(defaultExprCtx())
}

// shiftedStream re-bases a fragment's token stream into the coordinates
// of the enclosing file, so nodes parsed out of an f-string replacement
// field carry ranges that point into the original buffer.
type shiftedStream struct {
	inner *lexer.Stream
	base  int
}

func newShiftedStream(fragment string, base int) *shiftedStream {
	return &shiftedStream{inner: lexer.NewStream(fragment), base: base}
}

func (s *shiftedStream) shift(r token.Range) token.Range {
	return token.Range{Start: r.Start + s.base, End: r.End + s.base}
}

func (s *shiftedStream) CurrentKind() token.Kind    { return s.inner.CurrentKind() }
func (s *shiftedStream) CurrentRange() token.Range  { return s.shift(s.inner.CurrentRange()) }
func (s *shiftedStream) CurrentPayload() any        { return s.inner.CurrentPayload() }
func (s *shiftedStream) Peek() token.Kind           { return s.inner.Peek() }
func (s *shiftedStream) PeekRange() token.Range     { return s.shift(s.inner.PeekRange()) }
func (s *shiftedStream) At(k token.Kind) bool       { return s.inner.At(k) }
func (s *shiftedStream) AtAny(set token.Set) bool   { return s.inner.AtAny(set) }
func (s *shiftedStream) LastRange() token.Range     { return s.shift(s.inner.LastRange()) }
func (s *shiftedStream) Mark() int                  { return s.inner.Mark() }
func (s *shiftedStream) Reset(mark int)             { s.inner.Reset(mark) }
func (s *shiftedStream) Len() int                   { return s.base + s.inner.Len() }

func (s *shiftedStream) Bump() token.Token {
	t := s.inner.Bump()
	t.Range = s.shift(t.Range)
	return t
}

func (s *shiftedStream) SrcText(r token.Range) string {
	return s.inner.SrcText(token.Range{Start: r.Start - s.base, End: r.End - s.base})
}
