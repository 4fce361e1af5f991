package parser

import (
	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/token"
)

// tryParseMatch promotes a leading NAME "match" into a match statement
// iff the token shape supports that reading. On any
// mismatch the cursor and diagnostics are restored and the caller
// re-reads `match` as an ordinary name.
func (p *parser) tryParseMatch() (ast.Stmt, bool) {
	mark := p.ts.Mark()
	dmark := p.diags.Len()
	start := p.curRange()
	p.bump() // `match` name

	if !p.atAny(token.ExpressionStarters) {
		p.ts.Reset(mark)
		p.diags.Truncate(dmark)
		return nil, false
	}
	// `match (...)` could still be a call of a function named match; the
	// subject parse plus the trailing-colon check below disambiguates.
	subjectCtx := ExpressionContext{AllowStarred: true, AllowYield: false, AllowIn: true, AllowNamed: true}
	subject := p.parseExprOrTuple(subjectCtx)
	if !p.at(token.COLON) {
		p.ts.Reset(mark)
		p.diags.Truncate(dmark)
		return nil, false
	}
	p.bump() // :

	s := ast.Alloc[ast.Match](p.arena)
	s.Subject = subject
	s.Cases = p.parseCaseBlock()

	for i, c := range s.Cases {
		if i < len(s.Cases)-1 && ast.IsIrrefutable(c.Pattern) {
			// Accepted and flagged; rejection is the semantic layer's
			// job.
			p.errorf(c.Pattern.Range(), diag.IrrefutablePatternNotLast,
				"an irrefutable case pattern must be the last case")
		}
	}
	s.Rng = p.lastRange(start)
	return s, true
}

// parseCaseBlock parses the indented block of `case` clauses that forms
// a match statement's body.
func (p *parser) parseCaseBlock() []*ast.MatchCase {
	var cases []*ast.MatchCase
	if _, ok := p.expect(token.NEWLINE); !ok {
		return cases
	}
	if _, ok := p.expect(token.INDENT); !ok {
		return cases
	}
	pr := newProgress(p)
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		if name, ok := p.curName(); !ok || name != "case" {
			p.errorf(p.curRange(), diag.ExpectedToken, "expected 'case' clause, got %s", p.cur())
			p.skipToRecover(caseRecoverySet)
			p.eat(token.NEWLINE)
			if !pr.advancing(p) {
				break
			}
			continue
		}
		cases = append(cases, p.parseMatchCase())
		if !pr.advancing(p) {
			break
		}
	}
	p.expect(token.DEDENT)
	if len(cases) == 0 {
		p.errorf(p.curRange(), diag.ExpectedToken, "match statement must have at least one case clause")
	}
	return cases
}

var caseRecoverySet = token.NewSet(token.NEWLINE, token.DEDENT)

func (p *parser) parseMatchCase() *ast.MatchCase {
	p.bump() // `case` name
	c := &ast.MatchCase{}
	c.Pattern = p.parseCasePatterns()
	if p.eat(token.IF) {
		// Guards admit walrus bindings.
		c.Guard = p.parseExpr(defaultExprCtx())
	}
	p.expect(token.COLON)
	c.Body = p.parseBody("case")
	return c
}

// parseCasePatterns parses the patterns of one case clause: a single
// pattern, or a comma-separated open sequence pattern.
func (p *parser) parseCasePatterns() ast.Pattern {
	start := p.curRange()
	first := p.parseAsPattern()
	if !p.at(token.COMMA) {
		return first
	}
	seq := ast.Alloc[ast.MatchSequence](p.arena)
	seq.Patterns = []ast.Pattern{first}
	pr := newProgress(p)
	for p.eat(token.COMMA) {
		if p.at(token.COLON) || p.at(token.IF) {
			break
		}
		seq.Patterns = append(seq.Patterns, p.parseAsPattern())
		if !pr.advancing(p) {
			break
		}
	}
	seq.Rng = p.lastRange(start)
	return seq
}

// parseAsPattern parses `or_pattern ['as' capture]`.
func (p *parser) parseAsPattern() ast.Pattern {
	start := p.curRange()
	pat := p.parseOrPattern()
	if p.eat(token.AS) {
		as := ast.Alloc[ast.MatchAs](p.arena)
		as.Pattern = pat
		if name, ok := p.curName(); ok {
			p.bump()
			as.Name = name
		} else {
			p.errorf(p.curRange(), diag.ExpectedToken, "expected capture name after 'as', got %s", p.cur())
		}
		as.Rng = p.lastRange(start)
		return as
	}
	return pat
}

// parseOrPattern parses `closed_pattern ('|' closed_pattern)*`.
func (p *parser) parseOrPattern() ast.Pattern {
	start := p.curRange()
	first := p.parseClosedPattern()
	if !p.at(token.VBAR) {
		return first
	}
	or := ast.Alloc[ast.MatchOr](p.arena)
	or.Patterns = []ast.Pattern{first}
	pr := newProgress(p)
	for p.eat(token.VBAR) {
		or.Patterns = append(or.Patterns, p.parseClosedPattern())
		if !pr.advancing(p) {
			break
		}
	}
	or.Rng = p.lastRange(start)
	return or
}

// parseClosedPattern parses one non-compound pattern alternative.
func (p *parser) parseClosedPattern() ast.Pattern {
	start := p.curRange()
	switch p.cur() {
	case token.NONE, token.TRUE, token.FALSE:
		val := p.parseAtom(defaultExprCtx())
		s := ast.Alloc[ast.MatchSingleton](p.arena)
		s.Value = val
		s.Rng = val.Range()
		return s
	case token.NUMBER, token.STRING, token.MINUS:
		return p.parseValuePattern(start)
	case token.NAME:
		return p.parseNameOrClassPattern(start)
	case token.LSQB:
		p.bump()
		seq := ast.Alloc[ast.MatchSequence](p.arena)
		seq.Patterns = p.parseSequencePatternElements(token.RSQB)
		p.expect(token.RSQB)
		seq.Rng = p.lastRange(start)
		return seq
	case token.LPAR:
		return p.parseParenPattern(start)
	case token.LBRACE:
		return p.parseMappingPattern(start)
	case token.STAR:
		p.bump()
		st := ast.Alloc[ast.MatchStar](p.arena)
		if name, ok := p.curName(); ok {
			p.bump()
			if name != "_" {
				st.Name = name
			}
		} else {
			p.errorf(p.curRange(), diag.ExpectedToken, "expected name after '*' in pattern, got %s", p.cur())
		}
		st.Rng = p.lastRange(start)
		return st
	default:
		p.errorf(start, diag.ExpectedExpression, "expected a pattern, got %s", p.cur())
		// An empty MatchAs is the least-wrong placeholder: it keeps the
		// case clause well-formed for downstream traversal.
		as := ast.Alloc[ast.MatchAs](p.arena)
		as.Rng = start.AtEnd()
		return as
	}
}

// parseValuePattern parses a literal value pattern, including negative
// numbers and complex sums like `-1+2j`.
func (p *parser) parseValuePattern(start token.Range) ast.Pattern {
	expr := p.parseBinary(bpAdd, ExpressionContext{AllowIn: true})
	v := ast.Alloc[ast.MatchValue](p.arena)
	v.Value = expr
	v.Rng = p.lastRange(start)
	return v
}

// parseNameOrClassPattern handles the NAME-led pattern family: bare
// capture, wildcard `_`, dotted value pattern, and class pattern.
func (p *parser) parseNameOrClassPattern(start token.Range) ast.Pattern {
	name, _ := p.curName()
	p.bump()

	if !p.at(token.DOT) && !p.at(token.LPAR) {
		as := ast.Alloc[ast.MatchAs](p.arena)
		if name != "_" {
			as.Name = name
		}
		as.Rng = start
		return as
	}

	// Build the dotted value: name(.attr)*
	var value ast.Expr
	n := ast.Alloc[ast.Name](p.arena)
	n.Rng = start
	n.Id = name
	n.Valid = true
	value = n
	for p.eat(token.DOT) {
		a := ast.Alloc[ast.Attribute](p.arena)
		a.Value = value
		if attr, ok := p.curName(); ok {
			p.bump()
			a.Attr = attr
		} else {
			p.errorf(p.curRange(), diag.ExpectedToken, "expected attribute name after '.', got %s", p.cur())
		}
		a.Rng = p.lastRange(start)
		value = a
	}

	if !p.at(token.LPAR) {
		v := ast.Alloc[ast.MatchValue](p.arena)
		v.Value = value
		v.Rng = p.lastRange(start)
		return v
	}
	return p.parseClassPattern(value, start)
}

// parseClassPattern parses `Cls(pos_patterns, kw=pattern,...)`.
func (p *parser) parseClassPattern(cls ast.Expr, start token.Range) ast.Pattern {
	p.bump() // (
	c := ast.Alloc[ast.MatchClass](p.arena)
	c.Cls = cls
	seenKeyword := false
	pr := newProgress(p)
	for !p.at(token.RPAR) && !p.at(token.EOF) {
		if name, ok := p.curName(); ok && p.ts.Peek() == token.EQUAL {
			p.bump() // name
			p.bump() // =
			c.KeywordNames = append(c.KeywordNames, name)
			c.KeywordPatterns = append(c.KeywordPatterns, p.parseAsPattern())
			seenKeyword = true
		} else {
			pat := p.parseAsPattern()
			if seenKeyword {
				p.errorf(pat.Range(), diag.Other, "positional pattern follows keyword pattern")
			}
			c.Patterns = append(c.Patterns, pat)
		}
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	p.expect(token.RPAR)
	c.Rng = p.lastRange(start)
	return c
}

// parseParenPattern parses `(...)` in pattern position: a group (the
// inner pattern) or a sequence pattern if a comma appears.
func (p *parser) parseParenPattern(start token.Range) ast.Pattern {
	p.bump() // (
	if p.at(token.RPAR) {
		p.bump()
		seq := ast.Alloc[ast.MatchSequence](p.arena)
		seq.Rng = p.lastRange(start)
		return seq
	}
	first := p.parseAsPattern()
	if p.at(token.COMMA) {
		seq := ast.Alloc[ast.MatchSequence](p.arena)
		seq.Patterns = []ast.Pattern{first}
		pr := newProgress(p)
		for p.eat(token.COMMA) {
			if p.at(token.RPAR) {
				break
			}
			seq.Patterns = append(seq.Patterns, p.parseAsPattern())
			if !pr.advancing(p) {
				break
			}
		}
		p.expect(token.RPAR)
		seq.Rng = p.lastRange(start)
		return seq
	}
	p.expect(token.RPAR)
	return first
}

// parseSequencePatternElements parses the comma-separated elements of a
// bracketed sequence pattern up to term.
func (p *parser) parseSequencePatternElements(term token.Kind) []ast.Pattern {
	var out []ast.Pattern
	pr := newProgress(p)
	for !p.at(term) && !p.at(token.EOF) {
		out = append(out, p.parseAsPattern())
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	return out
}

// parseMappingPattern parses `{key: pattern, **rest}`.
func (p *parser) parseMappingPattern(start token.Range) ast.Pattern {
	p.bump() // {
	m := ast.Alloc[ast.MatchMapping](p.arena)
	pr := newProgress(p)
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.eat(token.DOUBLESTAR) {
			rest := ast.Alloc[ast.Name](p.arena)
			rest.Rng = p.curRange()
			if name, ok := p.curName(); ok {
				p.bump()
				rest.Id = name
				rest.Valid = true
			} else {
				p.errorf(p.curRange(), diag.ExpectedToken, "expected name after '**' in mapping pattern, got %s", p.cur())
			}
			m.Rest = rest
		} else {
			key := p.parseBinary(bpAdd, ExpressionContext{AllowIn: true})
			m.Keys = append(m.Keys, key)
			p.expect(token.COLON)
			m.Patterns = append(m.Patterns, p.parseAsPattern())
		}
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	p.expect(token.RBRACE)
	m.Rng = p.lastRange(start)
	return m
}
