package parser

import (
	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/token"
)

// stmtExprCtx is the context the statement dispatcher parses its leading
// expression-list with:
// starred and yield are legal at statement level, `in` is not excluded.
func stmtExprCtx() ExpressionContext {
	return ExpressionContext{AllowStarred: true, AllowYield: true, AllowIn: true, AllowNamed: true}
}

// Binding powers for the Pratt climb. Comparison operators
// all share cmpBP and are folded into one Compare chain rather than
// nesting; or/and flatten into BoolOp chains.
const (
	bpOr      = 1
	bpAnd     = 2
	bpNot     = 3
	bpCmp     = 4
	bpBitOr   = 5
	bpBitXor  = 6
	bpBitAnd  = 7
	bpShift   = 8
	bpAdd     = 9
	bpMul     = 10
	bpUnary   = 11
	bpPower   = 12
)

var binaryBP = map[token.Kind]int{
	token.VBAR:        bpBitOr,
	token.CIRCUMFLEX:  bpBitXor,
	token.AMPER:       bpBitAnd,
	token.LSHIFT:      bpShift,
	token.RSHIFT:      bpShift,
	token.PLUS:        bpAdd,
	token.MINUS:       bpAdd,
	token.STAR:        bpMul,
	token.SLASH:       bpMul,
	token.DOUBLESLASH: bpMul,
	token.PERCENT:     bpMul,
	token.AT:          bpMul,
}

var compareOps = map[token.Kind]bool{
	token.EQEQUAL: true, token.NOTEQUAL: true,
	token.LESS: true, token.LESSEQUAL: true,
	token.GREATER: true, token.GREATEREQUAL: true,
	token.IN: true, token.IS: true,
}

// parseExprOrTuple parses one expression, then widens it into an
// unparenthesized tuple if a comma follows.
func (p *parser) parseExprOrTuple(ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	first := p.parseExpr(ctx)
	if !p.at(token.COMMA) {
		return first
	}
	elts := []ast.Expr{first}
	trailing := false
	pr := newProgress(p)
	for p.eat(token.COMMA) {
		if !p.atAny(token.ExpressionStarters) {
			trailing = true
			break
		}
		elts = append(elts, p.parseExpr(ctx))
		if !pr.advancing(p) {
			break
		}
	}
	t := ast.Alloc[ast.TupleExpr](p.arena)
	t.Elts = elts
	t.Parenthesized = false
	t.HasTrailingComma = trailing
	t.Rng = p.lastRange(start)
	return t
}

// parseExpr parses one full expression: starred / yield / lambda
// prefixes, the binary climb, the conditional (`a if b else c`), and a
// trailing walrus binding.
func (p *parser) parseExpr(ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	switch p.cur() {
	case token.STAR:
		return p.parseStarred(ctx)
	case token.YIELD:
		return p.parseYield(ctx)
	case token.LAMBDA:
		return p.parseLambda()
	}
	e := p.parseBinary(bpOr, ctx)
	if p.at(token.IF) {
		// Conditional expression: e if test else orelse.
		p.bump()
		cond := ast.Alloc[ast.IfExp](p.arena)
		cond.Body = e
		cond.Test = p.parseBinary(bpOr, ctx)
		if _, ok := p.expect(token.ELSE); ok {
			cond.Orelse = p.parseExpr(ctx)
		} else {
			cond.Orelse = p.errorExprAt(p.curRange(), "missing else clause in conditional expression")
		}
		cond.Rng = p.lastRange(start)
		e = cond
	}
	if p.at(token.COLONEQUAL) {
		e = p.parseNamed(e, ctx, start)
	}
	return e
}

func (p *parser) parseNamed(target ast.Expr, ctx ExpressionContext, start token.Range) ast.Expr {
	opRange := p.curRange()
	p.bump() // :=
	if !ctx.AllowNamed {
		p.errorf(opRange, diag.UnparenthesizedNamedExpression,
			"named expression is not allowed in this position")
	}
	n := ast.Alloc[ast.NamedExpr](p.arena)
	if name, ok := target.(*ast.Name); ok {
		n.Target = name
	} else {
		p.errorf(target.Range(), diag.InvalidAssignmentTarget,
			"named expression target must be a plain name")
		invalid := ast.Alloc[ast.Name](p.arena)
		invalid.Rng = target.Range()
		n.Target = invalid
	}
	inner := ctx
	inner.AllowNamed = false
	n.Value = p.parseExpr(inner)
	n.Rng = p.lastRange(start)
	return n
}

func (p *parser) parseStarred(ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	p.bump() // *
	if !ctx.AllowStarred {
		p.errorf(start, diag.InvalidStarredExpressionUsage,
			"starred expression is not allowed in this position")
	}
	s := ast.Alloc[ast.Starred](p.arena)
	inner := ctx
	inner.AllowStarred = false
	s.Value = p.parseBinary(bpBitOr, inner)
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseYield(ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	p.bump() // yield
	if !ctx.AllowYield {
		p.errorf(start, diag.InvalidYieldExpressionUsage,
			"yield expression is not allowed in this position")
	}
	if p.eat(token.FROM) {
		y := ast.Alloc[ast.YieldFrom](p.arena)
		inner := ctx
		inner.AllowYield = false
		inner.AllowStarred = false
		y.Value = p.parseExpr(inner)
		y.Rng = p.lastRange(start)
		return y
	}
	y := ast.Alloc[ast.Yield](p.arena)
	if p.atAny(token.ExpressionStarters) && !p.at(token.DOUBLESTAR) {
		inner := ctx
		inner.AllowYield = false
		inner.AllowStarred = true
		y.Value = p.parseExprOrTuple(inner)
	}
	y.Rng = p.lastRange(start)
	return y
}

func (p *parser) parseLambda() ast.Expr {
	start := p.curRange()
	p.bump() // lambda
	l := ast.Alloc[ast.Lambda](p.arena)
	if !p.at(token.COLON) {
		l.Params = p.parseParameters(lambdaParams)
	}
	p.expect(token.COLON)
	l.Body = p.parseExpr(defaultExprCtx())
	l.Rng = p.lastRange(start)
	return l
}

// parseBinary is the precedence climb. minBP is the lowest binding
// power this call may consume; or/and flatten into BoolOp chains and
// the whole comparison tier folds into one Compare node.
func (p *parser) parseBinary(minBP int, ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	left := p.parseUnary(ctx)
	for {
		kind := p.cur()
		switch {
		case (kind == token.OR || kind == token.AND):
			bp := bpAnd
			if kind == token.OR {
				bp = bpOr
			}
			if bp < minBP {
				return left
			}
			b := ast.Alloc[ast.BoolOp](p.arena)
			if kind == token.OR {
				b.Op = ast.BoolOr
			} else {
				b.Op = ast.BoolAnd
			}
			b.Values = []ast.Expr{left}
			for p.eat(kind) {
				b.Values = append(b.Values, p.parseBinary(bp+1, ctx))
			}
			b.Rng = p.lastRange(start)
			left = b
		case p.atCompareOp(ctx):
			if bpCmp < minBP {
				return left
			}
			c := ast.Alloc[ast.Compare](p.arena)
			c.Left = left
			for p.atCompareOp(ctx) {
				c.Ops = append(c.Ops, p.bumpCompareOp())
				c.Comparators = append(c.Comparators, p.parseBinary(bpCmp+1, ctx))
			}
			c.Rng = p.lastRange(start)
			left = c
		default:
			bp, ok := binaryBP[kind]
			if !ok || bp < minBP {
				return left
			}
			op := p.bump().Kind
			b := ast.Alloc[ast.BinOp](p.arena)
			b.Left = left
			b.Op = op
			b.Right = p.parseBinary(bp+1, ctx)
			b.Rng = p.lastRange(start)
			left = b
		}
	}
}

// atCompareOp reports whether the cursor sits on a comparison operator,
// honoring the `in`-exclusion used while parsing `for... in...` heads
// and recognizing the two-token forms.
func (p *parser) atCompareOp(ctx ExpressionContext) bool {
	switch p.cur() {
	case token.IN:
		return ctx.AllowIn
	case token.NOT:
		return p.ts.Peek() == token.IN && ctx.AllowIn
	case token.IS:
		return true
	case token.EQEQUAL, token.NOTEQUAL, token.LESS, token.LESSEQUAL, token.GREATER, token.GREATEREQUAL:
		return true
	default:
		return false
	}
}

// bumpCompareOp consumes one comparison operator, fusing `not in` and
// `is not` into their synthesized kinds.
func (p *parser) bumpCompareOp() token.Kind {
	switch p.cur() {
	case token.NOT:
		p.bump()
		p.expect(token.IN)
		return token.NOTIN
	case token.IS:
		p.bump()
		if p.eat(token.NOT) {
			return token.ISNOT
		}
		return token.IS
	default:
		return p.bump().Kind
	}
}

// parseUnary handles prefix operators and the right-associative power
// tier, then defers to postfix/atom parsing.
func (p *parser) parseUnary(ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	switch p.cur() {
	case token.NOT:
		if p.ts.Peek() == token.IN {
			// `not in` belongs to the comparison tier; an atom is missing.
			break
		}
		p.bump()
		u := ast.Alloc[ast.UnaryOp](p.arena)
		u.Op = token.NOT
		u.Operand = p.parseBinary(bpNot, ctx)
		u.Rng = p.lastRange(start)
		return u
	case token.PLUS, token.MINUS, token.TILDE:
		op := p.bump().Kind
		u := ast.Alloc[ast.UnaryOp](p.arena)
		u.Op = op
		u.Operand = p.parseUnary(ctx)
		u.Rng = p.lastRange(start)
		return u
	case token.AWAIT:
		p.bump()
		a := ast.Alloc[ast.Await](p.arena)
		a.Value = p.parseUnary(ctx)
		a.Rng = p.lastRange(start)
		return a
	case token.LAMBDA:
		return p.parseLambda()
	}
	left := p.parsePostfix(ctx)
	if p.at(token.DOUBLESTAR) {
		p.bump()
		b := ast.Alloc[ast.BinOp](p.arena)
		b.Left = left
		b.Op = token.DOUBLESTAR
		b.Right = p.parseUnary(ctx) // right-associative
		b.Rng = p.lastRange(start)
		return b
	}
	return left
}

// parsePostfix parses an atom followed by any number of call, subscript,
// and attribute trailers.
func (p *parser) parsePostfix(ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	e := p.parseAtom(ctx)
	pr := newProgress(p)
	for {
		switch p.cur() {
		case token.LPAR:
			e = p.parseCall(e, start)
		case token.LSQB:
			e = p.parseSubscript(e, start)
		case token.DOT:
			p.bump()
			a := ast.Alloc[ast.Attribute](p.arena)
			a.Value = e
			if name, ok := p.curName(); ok {
				p.bump()
				a.Attr = name
			} else {
				p.errorf(p.curRange(), diag.ExpectedToken, "expected attribute name after '.', got %s", p.cur())
			}
			a.Rng = p.lastRange(start)
			e = a
		default:
			return e
		}
		if !pr.advancing(p) {
			return e
		}
	}
}

func (p *parser) parseCall(fn ast.Expr, start token.Range) ast.Expr {
	p.bump() // (
	c := ast.Alloc[ast.Call](p.arena)
	c.Func = fn
	p.parseArguments(c)
	p.expect(token.RPAR)
	c.Rng = p.lastRange(start)
	return c
}

// parseArguments parses a call's argument list, splitting positional and
// keyword arguments. A bare generator expression is accepted as an
// argument without checking that it is the sole one; `*args` is a
// Starred positional, `**kwargs` a
// Keyword with an empty name.
func (p *parser) parseArguments(c *ast.Call) {
	argCtx := ExpressionContext{AllowStarred: false, AllowYield: false, AllowIn: true, AllowNamed: true}
	seenKeyword := false
	pr := newProgress(p)
	for !p.at(token.RPAR) && !p.at(token.EOF) {
		argStart := p.curRange()
		switch {
		case p.at(token.STAR):
			p.bump()
			s := ast.Alloc[ast.Starred](p.arena)
			s.Value = p.parseExpr(argCtx)
			s.Rng = p.lastRange(argStart)
			c.Args = append(c.Args, s)
		case p.at(token.DOUBLESTAR):
			p.bump()
			kw := &ast.Keyword{}
			kw.Value = p.parseExpr(argCtx)
			kw.Rng = argStart.Cover(p.ts.LastRange())
			c.Keywords = append(c.Keywords, kw)
			seenKeyword = true
		default:
			if name, ok := p.curName(); ok && p.ts.Peek() == token.EQUAL {
				p.bump() // name
				p.bump() // =
				kw := &ast.Keyword{Name: name}
				kw.Value = p.parseExpr(argCtx)
				kw.Rng = argStart.Cover(p.ts.LastRange())
				c.Keywords = append(c.Keywords, kw)
				seenKeyword = true
				break
			}
			e := p.parseExpr(argCtx)
			if p.atComprehensionFor() {
				e = p.parseComprehensionFrom(e, argStart, genExpKind)
			} else if seenKeyword {
				p.errorf(e.Range(), diag.Other, "positional argument follows keyword argument")
			}
			c.Args = append(c.Args, e)
		}
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
}

func (p *parser) parseSubscript(value ast.Expr, start token.Range) ast.Expr {
	p.bump() // [
	s := ast.Alloc[ast.Subscript](p.arena)
	s.Value = value
	s.Index = p.parseSliceList()
	p.expect(token.RSQB)
	s.Rng = p.lastRange(start)
	return s
}

// parseSliceList parses the bracketed index: one slice/expression, or a
// comma-separated tuple of them.
func (p *parser) parseSliceList() ast.Expr {
	start := p.curRange()
	first := p.parseSliceItem()
	if !p.at(token.COMMA) {
		return first
	}
	elts := []ast.Expr{first}
	trailing := false
	pr := newProgress(p)
	for p.eat(token.COMMA) {
		if p.at(token.RSQB) {
			trailing = true
			break
		}
		elts = append(elts, p.parseSliceItem())
		if !pr.advancing(p) {
			break
		}
	}
	t := ast.Alloc[ast.TupleExpr](p.arena)
	t.Elts = elts
	t.HasTrailingComma = trailing
	t.Rng = p.lastRange(start)
	return t
}

func (p *parser) parseSliceItem() ast.Expr {
	start := p.curRange()
	sliceCtx := ExpressionContext{AllowStarred: true, AllowYield: false, AllowIn: true, AllowNamed: true}
	var lower ast.Expr
	if !p.at(token.COLON) {
		lower = p.parseExpr(sliceCtx)
		if !p.at(token.COLON) {
			return lower
		}
	}
	p.bump() // :
	sl := ast.Alloc[ast.SliceExpr](p.arena)
	sl.Lower = lower
	if !p.at(token.COLON) && !p.at(token.COMMA) && !p.at(token.RSQB) && !p.at(token.EOF) {
		sl.Upper = p.parseExpr(sliceCtx)
	}
	if p.eat(token.COLON) {
		if !p.at(token.COMMA) && !p.at(token.RSQB) && !p.at(token.EOF) {
			sl.Step = p.parseExpr(sliceCtx)
		}
	}
	sl.Rng = p.lastRange(start)
	return sl
}

// parseAtom parses the leaf grammar: names, literals, and the three
// bracketed display forms.
func (p *parser) parseAtom(ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	switch p.cur() {
	case token.NAME:
		name, _ := p.curName()
		p.bump()
		n := ast.Alloc[ast.Name](p.arena)
		n.Rng = start
		n.Id = name
		n.Valid = name != ""
		return n
	case token.NUMBER:
		t := p.bump()
		payload, _ := t.Payload.(token.NumberPayload)
		n := ast.Alloc[ast.NumberLiteral](p.arena)
		n.Rng = start
		n.Literal = payload.Literal
		switch {
		case payload.IsComplex:
			n.Kind = ast.NumberComplex
		case payload.IsFloat:
			n.Kind = ast.NumberFloat
		default:
			n.Kind = ast.NumberInt
		}
		return n
	case token.STRING:
		return p.parseStringLike()
	case token.TRUE, token.FALSE:
		t := p.bump()
		b := ast.Alloc[ast.BooleanLiteral](p.arena)
		b.Rng = start
		b.Value = t.Kind == token.TRUE
		return b
	case token.NONE:
		p.bump()
		n := ast.Alloc[ast.NoneLiteral](p.arena)
		n.Rng = start
		return n
	case token.ELLIPSIS:
		p.bump()
		e := ast.Alloc[ast.EllipsisLiteral](p.arena)
		e.Rng = start
		return e
	case token.LPAR:
		return p.parseParenthesized(ctx)
	case token.LSQB:
		return p.parseListDisplay()
	case token.LBRACE:
		return p.parseBraceDisplay()
	case token.IPYNB_ESCAPE_COMMAND:
		t := p.bump()
		payload, _ := t.Payload.(token.EscapeCommandPayload)
		if p.mode != InteractiveNotebook {
			p.errorf(start, diag.UnexpectedIPythonEscapeCommand,
				"IPython escape commands are only allowed in notebook mode")
		}
		e := ast.Alloc[ast.IPyEscapeCommandExpr](p.arena)
		e.Rng = start
		e.Kind = payload.Sigil
		e.Body = payload.Body
		return e
	default:
		p.errorf(start, diag.ExpectedExpression, "expected an expression, got %s", p.cur())
		return p.errorExprAt(start, "expected an expression")
	}
}

// parseParenthesized handles the four outcomes of `(` in expression
// position: parenthesized expression, parenthesized tuple,
// generator expression, or the empty tuple.
func (p *parser) parseParenthesized(ctx ExpressionContext) ast.Expr {
	start := p.curRange()
	p.bump() // (
	if p.at(token.RPAR) {
		p.bump()
		t := ast.Alloc[ast.TupleExpr](p.arena)
		t.Rng = p.lastRange(start)
		t.Parenthesized = true
		return t
	}
	inner := ExpressionContext{AllowStarred: true, AllowYield: true, AllowIn: true, AllowNamed: true}
	first := p.parseExpr(inner)
	switch {
	case p.atComprehensionFor():
		g := p.parseComprehensionFrom(first, start, genExpKind)
		p.expect(token.RPAR)
		if gen, ok := g.(*ast.GeneratorExp); ok {
			gen.Rng = p.lastRange(start)
		}
		return g
	case p.at(token.COMMA):
		elts := []ast.Expr{first}
		trailing := false
		pr := newProgress(p)
		for p.eat(token.COMMA) {
			if p.at(token.RPAR) {
				trailing = true
				break
			}
			elts = append(elts, p.parseExpr(inner))
			if !pr.advancing(p) {
				break
			}
		}
		p.expect(token.RPAR)
		t := ast.Alloc[ast.TupleExpr](p.arena)
		t.Elts = elts
		t.Parenthesized = true
		t.HasTrailingComma = trailing
		t.Rng = p.lastRange(start)
		return t
	default:
		p.expect(token.RPAR)
		// A parenthesized non-tuple expression is returned as is: its
		// range is the inner expression's own and excludes the parens,
		// which only a tuple or generator range covers (handled above).
		return first
	}
}

func (p *parser) parseListDisplay() ast.Expr {
	start := p.curRange()
	p.bump() // [
	if p.at(token.RSQB) {
		p.bump()
		l := ast.Alloc[ast.ListExpr](p.arena)
		l.Rng = p.lastRange(start)
		return l
	}
	eltCtx := ExpressionContext{AllowStarred: true, AllowYield: false, AllowIn: true, AllowNamed: true}
	first := p.parseExpr(eltCtx)
	if p.atComprehensionFor() {
		if _, ok := first.(*ast.Starred); ok {
			p.errorf(first.Range(), diag.IterableUnpackingInComprehension,
				"iterable unpacking cannot be used in a comprehension")
		}
		comp := ast.Alloc[ast.ListComp](p.arena)
		comp.Elt = first
		comp.Gens = p.parseComprehensions()
		p.expect(token.RSQB)
		comp.Rng = p.lastRange(start)
		return comp
	}
	l := ast.Alloc[ast.ListExpr](p.arena)
	l.Elts = []ast.Expr{first}
	pr := newProgress(p)
	for p.eat(token.COMMA) {
		if p.at(token.RSQB) {
			break
		}
		l.Elts = append(l.Elts, p.parseExpr(eltCtx))
		if !pr.advancing(p) {
			break
		}
	}
	p.expect(token.RSQB)
	l.Rng = p.lastRange(start)
	return l
}

// parseBraceDisplay parses `{...}`: dict display, set display, dict
// comprehension, or set comprehension.
func (p *parser) parseBraceDisplay() ast.Expr {
	start := p.curRange()
	p.bump() // {
	if p.at(token.RBRACE) {
		p.bump()
		d := ast.Alloc[ast.DictExpr](p.arena)
		d.Rng = p.lastRange(start)
		return d
	}
	eltCtx := ExpressionContext{AllowStarred: true, AllowYield: false, AllowIn: true, AllowNamed: true}
	if p.at(token.DOUBLESTAR) {
		return p.parseDictRest(start, nil, nil, eltCtx)
	}
	first := p.parseExpr(eltCtx)
	if p.at(token.COLON) {
		p.bump()
		value := p.parseExpr(eltCtx)
		if p.atComprehensionFor() {
			comp := ast.Alloc[ast.DictComp](p.arena)
			comp.Key = first
			comp.Value = value
			comp.Gens = p.parseComprehensions()
			p.expect(token.RBRACE)
			comp.Rng = p.lastRange(start)
			return comp
		}
		return p.parseDictRest(start, []ast.Expr{first}, []ast.Expr{value}, eltCtx)
	}
	if p.atComprehensionFor() {
		if _, ok := first.(*ast.Starred); ok {
			p.errorf(first.Range(), diag.IterableUnpackingInComprehension,
				"iterable unpacking cannot be used in a comprehension")
		}
		comp := ast.Alloc[ast.SetComp](p.arena)
		comp.Elt = first
		comp.Gens = p.parseComprehensions()
		p.expect(token.RBRACE)
		comp.Rng = p.lastRange(start)
		return comp
	}
	s := ast.Alloc[ast.SetExpr](p.arena)
	s.Elts = []ast.Expr{first}
	pr := newProgress(p)
	for p.eat(token.COMMA) {
		if p.at(token.RBRACE) {
			break
		}
		s.Elts = append(s.Elts, p.parseExpr(eltCtx))
		if !pr.advancing(p) {
			break
		}
	}
	p.expect(token.RBRACE)
	s.Rng = p.lastRange(start)
	return s
}

// parseDictRest continues a dict display after its first entry (or from
// a leading `**splat`). A nil key marks a splat entry.
func (p *parser) parseDictRest(start token.Range, keys, values []ast.Expr, eltCtx ExpressionContext) ast.Expr {
	d := ast.Alloc[ast.DictExpr](p.arena)
	d.Keys = keys
	d.Values = values
	pr := newProgress(p)
	for {
		if p.at(token.DOUBLESTAR) {
			p.bump()
			d.Keys = append(d.Keys, nil)
			d.Values = append(d.Values, p.parseBinary(bpBitOr, eltCtx))
		}
		if !p.eat(token.COMMA) {
			break
		}
		if p.at(token.RBRACE) {
			break
		}
		if p.at(token.DOUBLESTAR) {
			continue
		}
		key := p.parseExpr(eltCtx)
		p.expect(token.COLON)
		value := p.parseExpr(eltCtx)
		d.Keys = append(d.Keys, key)
		d.Values = append(d.Values, value)
		if !pr.advancing(p) {
			break
		}
	}
	p.expect(token.RBRACE)
	d.Rng = p.lastRange(start)
	return d
}

// --- comprehensions ---

// atComprehensionFor reports whether a comprehension clause begins at
// the cursor: `for` or `async for`.
func (p *parser) atComprehensionFor() bool {
	return p.at(token.FOR) || (p.at(token.ASYNC) && p.ts.Peek() == token.FOR)
}

type comprehensionKind int

const genExpKind comprehensionKind = iota

// parseComprehensionFrom wraps an already-parsed element into a
// generator expression whose clauses start at the cursor.
func (p *parser) parseComprehensionFrom(elt ast.Expr, start token.Range, _ comprehensionKind) ast.Expr {
	if _, ok := elt.(*ast.Starred); ok {
		p.errorf(elt.Range(), diag.IterableUnpackingInComprehension,
			"iterable unpacking cannot be used in a comprehension")
	}
	g := ast.Alloc[ast.GeneratorExp](p.arena)
	g.Elt = elt
	g.Gens = p.parseComprehensions()
	g.Rng = p.lastRange(start)
	return g
}

// parseComprehensions parses one-or-more generator clauses: the first is
// mandatory at the call site, subsequent ones optional.
func (p *parser) parseComprehensions() []*ast.Comprehension {
	var out []*ast.Comprehension
	pr := newProgress(p)
	for p.atComprehensionFor() {
		gen := &ast.Comprehension{}
		if p.eat(token.ASYNC) {
			gen.IsAsync = true
		}
		p.expect(token.FOR)
		gen.Target = p.parseComprehensionTarget()
		p.expect(token.IN)
		// The iterable excludes conditional expressions' `if` ambiguity
		// by parsing at the or-tier; an `if` that follows starts a
		// filter clause, not a conditional.
		gen.Iter = p.parseBinary(bpOr, ExpressionContext{AllowIn: true, AllowNamed: false})
		for p.at(token.IF) {
			p.bump()
			gen.Ifs = append(gen.Ifs, p.parseBinary(bpOr, ExpressionContext{AllowIn: true, AllowNamed: true}))
		}
		out = append(out, gen)
		if !pr.advancing(p) {
			break
		}
	}
	return out
}

// parseComprehensionTarget parses the `for <target>` of a generator
// clause with `in` excluded so the clause's own `in` is not swallowed
// by a nested comparison.
func (p *parser) parseComprehensionTarget() ast.Expr {
	ctx := ExpressionContext{AllowStarred: true, AllowYield: false, AllowIn: false, AllowNamed: false}
	start := p.curRange()
	first := p.parseBinary(bpOr, ctx)
	var target ast.Expr = first
	if p.at(token.COMMA) {
		elts := []ast.Expr{first}
		trailing := false
		pr := newProgress(p)
		for p.eat(token.COMMA) {
			if p.at(token.IN) || !p.atAny(token.ExpressionStarters) {
				trailing = true
				break
			}
			elts = append(elts, p.parseBinary(bpOr, ctx))
			if !pr.advancing(p) {
				break
			}
		}
		t := ast.Alloc[ast.TupleExpr](p.arena)
		t.Elts = elts
		t.HasTrailingComma = trailing
		t.Rng = p.lastRange(start)
		target = t
	}
	p.validateAssignTarget(target, diag.InvalidAssignmentTarget)
	return target
}
