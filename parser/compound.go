package parser

import (
	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/token"
)

// parseBody parses a clause body after its header's `:`:
// either a newline followed by an indented block, or a simple-statement
// sequence on the same line.
func (p *parser) parseBody(clause string) []ast.Stmt {
	if p.at(token.NEWLINE) {
		nl := p.bump()
		if p.eat(token.INDENT) {
			body := p.parseStatements(func() bool { return p.at(token.DEDENT) })
			p.expect(token.DEDENT)
			if len(body) == 0 {
				p.errorf(p.bodyAnchor(nl.Range), diag.ExpectedToken,
					"expected at least one statement in %s body", clause)
			}
			return body
		}
		p.errorf(p.bodyAnchor(nl.Range), diag.ExpectedToken,
			"expected an indented block after %s", clause)
		return nil
	}
	return p.parseSimpleStatementLine()
}

// bodyAnchor picks the diagnostic anchor for a missing block: the
// newline range if non-empty, else the next token.
func (p *parser) bodyAnchor(nl token.Range) token.Range {
	if !nl.IsEmpty() {
		return nl
	}
	return p.curRange()
}

// --- if / while ---

func (p *parser) parseIf() ast.Stmt {
	start := p.curRange()
	p.bump() // if or elif
	s := ast.Alloc[ast.If](p.arena)
	s.Test = p.parseExpr(defaultExprCtx())
	p.expect(token.COLON)
	s.Body = p.parseBody("if")
	switch {
	case p.at(token.ELIF):
		// An elif link nests as a single-statement else body; a
		// misspelled `elf` is not auto-corrected — it falls out of this
		// chain and block parsing surfaces the mismatch.
		s.Orelse = []ast.Stmt{p.parseIf()}
	case p.at(token.ELSE):
		p.bump()
		p.expect(token.COLON)
		s.Orelse = p.parseBody("else")
	}
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.curRange()
	p.bump()
	s := ast.Alloc[ast.While](p.arena)
	s.Test = p.parseExpr(defaultExprCtx())
	p.expect(token.COLON)
	s.Body = p.parseBody("while")
	if p.eat(token.ELSE) {
		p.expect(token.COLON)
		s.Orelse = p.parseBody("else")
	}
	s.Rng = p.lastRange(start)
	return s
}

// --- for ---

func (p *parser) parseFor(isAsync bool) ast.Stmt {
	return p.parseForFrom(isAsync, p.curRange())
}

func (p *parser) parseForAsync(start token.Range) ast.Stmt {
	return p.parseForFrom(true, start)
}

// parseForFrom parses `for target in iter: body [else: orelse]`. The
// target is parsed with `in` excluded from binary expressions so the
// head's own `in` is not swallowed, then reinterpreted as
// an assignment target and validated.
func (p *parser) parseForFrom(isAsync bool, start token.Range) ast.Stmt {
	p.bump() // for
	s := ast.Alloc[ast.For](p.arena)
	s.IsAsync = isAsync
	s.Target = p.parseComprehensionTarget()
	p.expect(token.IN)
	iterCtx := ExpressionContext{AllowStarred: true, AllowYield: false, AllowIn: true, AllowNamed: true}
	s.Iter = p.parseExprOrTuple(iterCtx)
	p.expect(token.COLON)
	s.Body = p.parseBody("for")
	if p.eat(token.ELSE) {
		p.expect(token.COLON)
		s.Orelse = p.parseBody("else")
	}
	s.Rng = p.lastRange(start)
	return s
}

// --- try ---

func (p *parser) parseTry() ast.Stmt {
	start := p.curRange()
	p.bump()
	s := ast.Alloc[ast.Try](p.arena)
	p.expect(token.COLON)
	s.Body = p.parseBody("try")

	seenPlain := false
	seenStar := false
	pr := newProgress(p)
	for p.at(token.EXCEPT) {
		h := p.parseExceptHandler()
		if h.IsStar {
			seenStar = true
		} else {
			seenPlain = true
		}
		s.Handlers = append(s.Handlers, h)
		if !pr.advancing(p) {
			break
		}
	}
	if seenStar && seenPlain {
		// Localization of this diagnostic is tolerated as imperfect
		//: it anchors at the try keyword.
		p.errorf(start, diag.MixedExceptStarClauses, "cannot mix except and except* clauses")
	}
	s.IsStar = seenStar

	if p.eat(token.ELSE) {
		p.expect(token.COLON)
		s.Orelse = p.parseBody("else")
	}
	if p.eat(token.FINALLY) {
		p.expect(token.COLON)
		s.Finally = p.parseBody("finally")
	}
	if p.at(token.ELSE) && len(s.Finally) > 0 {
		p.errorf(p.curRange(), diag.Other, "else clause must precede finally clause")
		p.bump()
		p.expect(token.COLON)
		s.Orelse = p.parseBody("else")
	}
	if len(s.Handlers) == 0 && len(s.Finally) == 0 {
		p.errorf(start, diag.Other, "try statement must have at least one except or finally clause")
	}
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseExceptHandler() *ast.ExceptHandler {
	start := p.curRange()
	p.bump() // except
	h := ast.Alloc[ast.ExceptHandler](p.arena)
	h.IsStar = p.eat(token.STAR)
	if !p.at(token.COLON) {
		h.Type = p.parseExpr(defaultExprCtx())
		if p.eat(token.AS) {
			if name, ok := p.curName(); ok {
				p.bump()
				h.Name = name
			} else {
				p.errorf(p.curRange(), diag.ExpectedToken, "expected name after 'as', got %s", p.cur())
			}
		}
	}
	p.expect(token.COLON)
	h.Body = p.parseBody("except")
	h.Rng = p.lastRange(start)
	return h
}

// --- with ---

// withItemState is the explicit state machine the with-item parser runs
//: a `(` directly after `with` cannot yet be classified
// as introducing parenthesized with-items or a parenthesized expression
// serving as the first item's context expression.
type withItemState int

const (
	withRegular withItemState = iota
	withAmbiguousLparFirstItem
	withAmbiguousLparRest
)

func (p *parser) parseWith(isAsync bool) ast.Stmt {
	return p.parseWithFrom(isAsync, p.curRange())
}

func (p *parser) parseWithAsync(start token.Range) ast.Stmt {
	return p.parseWithFrom(true, start)
}

func (p *parser) parseWithFrom(isAsync bool, start token.Range) ast.Stmt {
	p.bump() // with
	s := ast.Alloc[ast.With](p.arena)
	s.IsAsync = isAsync

	state := withRegular
	if p.at(token.LPAR) {
		state = withAmbiguousLparFirstItem
	}

	if state == withAmbiguousLparFirstItem {
		mark := p.ts.Mark()
		dmark := p.diags.Len()
		items, keep := p.tryParenthesizedWithItems()
		if keep {
			s.Items = items
			state = withAmbiguousLparRest
			// Items may continue past the parenthesized group.
			if p.eat(token.COMMA) {
				s.Items = append(s.Items, p.parseWithItems()...)
			}
		} else {
			// Revise into a single parenthesized expression (possibly a
			// tuple) and continue as regular items.
			p.ts.Reset(mark)
			p.diags.Truncate(dmark)
			state = withRegular
		}
	}
	if state == withRegular {
		s.Items = p.parseWithItems()
	}

	p.expect(token.COLON)
	s.Body = p.parseBody("with")
	s.Rng = p.lastRange(start)
	return s
}

// tryParenthesizedWithItems parses under the "parenthesized with-items"
// hypothesis. It reports keep=false when the accumulated shape is
// inconsistent with that reading — no `as` clauses and no trailing
// comma — in which case the caller rewinds and re-reads the `(...)` as
// a parenthesized expression.
func (p *parser) tryParenthesizedWithItems() ([]*ast.WithItem, bool) {
	p.bump() // (
	var items []*ast.WithItem
	anyAs := false
	trailingComma := false
	sawGenerator := false

	pr := newProgress(p)
	for !p.at(token.RPAR) && !p.at(token.EOF) {
		itemStart := p.curRange()
		ctx := defaultExprCtx()
		expr := p.parseExpr(ctx)
		if p.atComprehensionFor() {
			// A bare generator is allowed only as the sole with-item.
			expr = p.parseComprehensionFrom(expr, itemStart, genExpKind)
			sawGenerator = true
		}
		item := &ast.WithItem{ContextExpr: expr}
		if p.eat(token.AS) {
			anyAs = true
			item.OptionalVars = p.parseWithTarget()
		}
		items = append(items, item)
		if !p.eat(token.COMMA) {
			break
		}
		if p.at(token.RPAR) {
			trailingComma = true
		}
		if !pr.advancing(p) {
			break
		}
	}
	if !p.eat(token.RPAR) {
		return nil, false
	}
	if sawGenerator && len(items) > 1 {
		p.errorf(items[0].ContextExpr.Range(), diag.Other,
			"a generator expression must be the sole with item when unparenthesized")
	}
	if sawGenerator && len(items) == 1 {
		return items, true
	}
	if !anyAs && !trailingComma {
		return nil, false
	}
	return items, true
}

// parseWithItems parses a regular comma-separated with-item list (the
// unambiguous state of the with-item machine).
func (p *parser) parseWithItems() []*ast.WithItem {
	var items []*ast.WithItem
	pr := newProgress(p)
	for {
		item := &ast.WithItem{ContextExpr: p.parseExpr(defaultExprCtx())}
		if p.eat(token.AS) {
			item.OptionalVars = p.parseWithTarget()
		}
		items = append(items, item)
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	return items
}

func (p *parser) parseWithTarget() ast.Expr {
	target := p.parseBinary(bpOr, ExpressionContext{AllowIn: true})
	p.validateAssignTarget(target, diag.InvalidAssignmentTarget)
	return target
}

// --- decorators, def, class ---

// parseDecorated parses a run of `@expression` lines immediately
// followed by `def`, `async def`, or `class`. Decorator expressions
// follow the full host-language grammar, not a single-name restriction.
func (p *parser) parseDecorated() ast.Stmt {
	start := p.curRange()
	var decorators []ast.Expr
	pr := newProgress(p)
	for p.at(token.AT) {
		p.bump()
		decorators = append(decorators, p.parseExpr(defaultExprCtx()))
		p.expect(token.NEWLINE)
		if !pr.advancing(p) {
			break
		}
	}
	switch {
	case p.at(token.DEF):
		s := p.parseFunctionDefFrom(decorators, false, start)
		return s
	case p.at(token.ASYNC):
		p.bump()
		if p.at(token.DEF) {
			return p.parseFunctionDefFrom(decorators, true, start)
		}
		p.errorf(p.curRange(), diag.UnexpectedTokenAfterAsync,
			"expected 'def' after 'async' in decorated statement, got %s", p.cur())
		return p.errorStmtAt(p.lastRange(start), "decorators must precede a function or class definition")
	case p.at(token.CLASS):
		return p.parseClassDefFrom(decorators, start)
	default:
		p.errorf(p.curRange(), diag.ExpectedToken,
			"expected 'def', 'async def', or 'class' after decorators, got %s", p.cur())
		return p.errorStmtAt(p.lastRange(start), "decorators must precede a function or class definition")
	}
}

func (p *parser) parseFunctionDef(decorators []ast.Expr, isAsync bool) ast.Stmt {
	return p.parseFunctionDefFrom(decorators, isAsync, p.curRange())
}

func (p *parser) parseFunctionDefAsync(decorators []ast.Expr, start token.Range) ast.Stmt {
	return p.parseFunctionDefFrom(decorators, true, start)
}

func (p *parser) parseFunctionDefFrom(decorators []ast.Expr, isAsync bool, start token.Range) ast.Stmt {
	p.bump() // def
	s := ast.Alloc[ast.FunctionDef](p.arena)
	s.Decorators = decorators
	s.IsAsync = isAsync
	s.Name = p.parseDefName()
	if p.at(token.LSQB) {
		s.TypeParams = p.parseTypeParams()
	}
	if _, ok := p.expect(token.LPAR); ok {
		s.Params = p.parseParameters(defParams)
		p.expect(token.RPAR)
	} else {
		s.Params = &ast.Parameters{}
	}
	if p.eat(token.RARROW) {
		s.Returns = p.parseExpr(defaultExprCtx())
	}
	p.expect(token.COLON)
	s.Body = p.parseBody("function")
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseClassDef(decorators []ast.Expr) ast.Stmt {
	return p.parseClassDefFrom(decorators, p.curRange())
}

func (p *parser) parseClassDefFrom(decorators []ast.Expr, start token.Range) ast.Stmt {
	p.bump() // class
	s := ast.Alloc[ast.ClassDef](p.arena)
	s.Decorators = decorators
	s.Name = p.parseDefName()
	if p.at(token.LSQB) {
		s.TypeParams = p.parseTypeParams()
	}
	if p.eat(token.LPAR) {
		c := ast.Alloc[ast.Call](p.arena)
		p.parseArguments(c)
		p.expect(token.RPAR)
		s.Bases = c.Args
		s.Keywords = c.Keywords
	}
	p.expect(token.COLON)
	s.Body = p.parseBody("class")
	s.Rng = p.lastRange(start)
	return s
}

// parseDefName reads the name of a def/class header, producing an
// invalid (empty) Name node when the header is malformed.
func (p *parser) parseDefName() *ast.Name {
	n := ast.Alloc[ast.Name](p.arena)
	n.Rng = p.curRange()
	if name, ok := p.curName(); ok {
		p.bump()
		n.Id = name
		n.Valid = true
		return n
	}
	p.errorf(p.curRange(), diag.ExpectedToken, "expected a name, got %s", p.cur())
	n.Rng = n.Rng.AtEnd()
	return n
}

// parseTypeParams parses a bracketed `[T, *Ts, **P]` type-parameter
// list.
func (p *parser) parseTypeParams() []*ast.TypeParam {
	p.bump() // [
	var out []*ast.TypeParam
	pr := newProgress(p)
	for !p.at(token.RSQB) && !p.at(token.EOF) {
		tp := &ast.TypeParam{Kind: ast.TypeParamPlain}
		start := p.curRange()
		if p.eat(token.STAR) {
			tp.Kind = ast.TypeParamVarTuple
		} else if p.eat(token.DOUBLESTAR) {
			tp.Kind = ast.TypeParamParamSpec
		}
		if name, ok := p.curName(); ok {
			p.bump()
			tp.Name = name
		} else {
			p.errorf(p.curRange(), diag.ExpectedToken, "expected type parameter name, got %s", p.cur())
			p.skipToRecover(typeParamRecoverySet)
		}
		if p.eat(token.COLON) {
			tp.Bound = p.parseExpr(defaultExprCtx())
		}
		if p.eat(token.EQUAL) {
			tp.Default = p.parseExpr(defaultExprCtx())
		}
		tp.Rng = start.Cover(p.ts.LastRange())
		out = append(out, tp)
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	p.expect(token.RSQB)
	return out
}

var typeParamRecoverySet = token.NewSet(token.COMMA, token.RSQB, token.COLON, token.EQUAL, token.NEWLINE)

// --- type alias (soft keyword `type`) ---

// tryParseTypeAlias promotes a leading NAME "type" into a type-alias
// declaration iff the following shape matches `type NAME [params] =...`;
// otherwise the cursor is restored and the caller re-reads `type` as an
// ordinary name.
func (p *parser) tryParseTypeAlias() (ast.Stmt, bool) {
	mark := p.ts.Mark()
	dmark := p.diags.Len()
	start := p.curRange()
	p.bump() // `type` name

	if _, ok := p.curName(); !ok {
		p.ts.Reset(mark)
		p.diags.Truncate(dmark)
		return nil, false
	}
	s := ast.Alloc[ast.TypeAlias](p.arena)
	s.Name = p.parseDefName()
	if p.at(token.LSQB) {
		s.TypeParams = p.parseTypeParams()
	}
	if !p.at(token.EQUAL) {
		p.ts.Reset(mark)
		p.diags.Truncate(dmark)
		return nil, false
	}
	p.bump() // =
	s.Value = p.parseExpr(defaultExprCtx())
	s.Rng = p.lastRange(start)
	p.eat(token.NEWLINE)
	return s, true
}
