package parser

import (
	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/token"
)

// parseExprOrAssignStatement implements the tail of statement dispatch
//: parse a statement-level expression list, then decide
// between plain assignment (possibly chained), annotated assignment,
// augmented assignment, the notebook help-end escape, and a bare
// expression statement.
func (p *parser) parseExprOrAssignStatement() ast.Stmt {
	start := p.curRange()
	first := p.parseExprOrTuple(stmtExprCtx())

	switch {
	case p.at(token.EQUAL):
		return p.parseAssignChain(first, start)
	case p.at(token.COLON):
		return p.parseAnnAssign(first, start)
	case p.cur().IsAugAssign():
		return p.parseAugAssign(first, start)
	case p.at(token.QUESTION) && p.mode == InteractiveNotebook:
		return p.parseHelpEndEscape(first, start)
	}
	s := ast.Alloc[ast.ExprStmt](p.arena)
	s.Value = first
	s.Rng = p.lastRange(start)
	return s
}

// parseAssignChain parses `t1 = t2 =... = value`: every expression
// left of the final `=` is a target and validated as one.
func (p *parser) parseAssignChain(first ast.Expr, start token.Range) ast.Stmt {
	exprs := []ast.Expr{first}
	pr := newProgress(p)
	for p.eat(token.EQUAL) {
		exprs = append(exprs, p.parseExprOrTuple(stmtExprCtx()))
		if !pr.advancing(p) {
			break
		}
	}
	s := ast.Alloc[ast.Assign](p.arena)
	s.Targets = exprs[:len(exprs)-1]
	s.Value = exprs[len(exprs)-1]
	for _, t := range s.Targets {
		p.validateAssignTarget(t, diag.InvalidAssignmentTarget)
	}
	s.Rng = p.lastRange(start)
	return s
}

// parseAnnAssign parses `target: annotation [= value]`. List, tuple,
// and starred targets are additionally rejected here.
func (p *parser) parseAnnAssign(target ast.Expr, start token.Range) ast.Stmt {
	p.bump() // :
	s := ast.Alloc[ast.AnnAssign](p.arena)
	s.Target = target
	s.Annotation = p.parseExpr(defaultExprCtx())
	if p.eat(token.EQUAL) {
		valueCtx := stmtExprCtx()
		s.Value = p.parseExprOrTuple(valueCtx)
	}
	switch target.(type) {
	case *ast.TupleExpr, *ast.ListExpr, *ast.Starred:
		p.errorf(target.Range(), diag.InvalidAnnotatedAssignmentTarget,
			"annotated assignment target cannot be a tuple, list, or starred expression")
	default:
		p.validateAssignTarget(target, diag.InvalidAnnotatedAssignmentTarget)
	}
	if _, ok := target.(*ast.Name); ok {
		s.Simple = true
	}
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseAugAssign(target ast.Expr, start token.Range) ast.Stmt {
	op := p.bump().Kind
	s := ast.Alloc[ast.AugAssign](p.arena)
	s.Target = target
	s.Op = op
	s.Value = p.parseExprOrTuple(stmtExprCtx())
	switch target.(type) {
	case *ast.Name, *ast.Attribute, *ast.Subscript:
		// Valid augmented-assignment targets.
	default:
		p.errorf(target.Range(), diag.InvalidAugmentedAssignmentTarget,
			"augmented assignment target must be a name, attribute, or subscript")
	}
	s.Rng = p.lastRange(start)
	return s
}

// parseHelpEndEscape handles the notebook-mode `expr?` form: the trailing `?` (or `??`) turns the line into a help
// escape-command whose body is the expression's source text.
func (p *parser) parseHelpEndEscape(expr ast.Expr, start token.Range) ast.Stmt {
	p.bump() // ?
	sigil := "?"
	if p.eat(token.QUESTION) {
		sigil = "??"
	}
	s := ast.Alloc[ast.IPyEscapeCommand](p.arena)
	s.Kind = sigil
	s.Body = p.ts.SrcText(expr.Range())
	s.Rng = p.lastRange(start)
	return s
}

// --- target validation ---

// validateAssignTarget recursively checks that e is a legal assignment
// target: names, attributes, subscripts, starred (in sequence context),
// and lists/tuples of valid targets. Anything else produces a
// diagnostic without aborting.
func (p *parser) validateAssignTarget(e ast.Expr, kind diag.ErrorKind) {
	switch n := e.(type) {
	case *ast.Name, *ast.Attribute, *ast.Subscript, *ast.ErrorExpr:
		// ErrorExpr already carries its own diagnostic.
	case *ast.Starred:
		// Reached only outside a list or tuple: sequence elements that
		// are starred are unwrapped below.
		p.errorf(e.Range(), kind, "starred assignment target must be in a list or tuple")
	case *ast.TupleExpr:
		for _, elt := range n.Elts {
			if s, ok := elt.(*ast.Starred); ok {
				elt = s.Value
			}
			p.validateAssignTarget(elt, kind)
		}
	case *ast.ListExpr:
		for _, elt := range n.Elts {
			if s, ok := elt.(*ast.Starred); ok {
				elt = s.Value
			}
			p.validateAssignTarget(elt, kind)
		}
	default:
		p.errorf(e.Range(), kind, "invalid assignment target")
	}
}

// parseTargetList parses the comma-separated target list of a delete
// statement.
func (p *parser) parseTargetList(allowStarred bool) []ast.Expr {
	ctx := ExpressionContext{AllowStarred: allowStarred, AllowIn: true}
	var out []ast.Expr
	pr := newProgress(p)
	for p.atAny(token.ExpressionStarters) {
		out = append(out, p.parseBinary(bpOr, ctx))
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	return out
}

// validateDeleteTarget checks a delete statement's target shape:
// names, attributes, subscripts, and lists/tuples thereof.
func validateDeleteTarget(p *parser, e ast.Expr) {
	switch n := e.(type) {
	case *ast.Name, *ast.Attribute, *ast.Subscript, *ast.ErrorExpr:
	case *ast.TupleExpr:
		for _, elt := range n.Elts {
			validateDeleteTarget(p, elt)
		}
	case *ast.ListExpr:
		for _, elt := range n.Elts {
			validateDeleteTarget(p, elt)
		}
	default:
		p.errorf(e.Range(), diag.InvalidDeleteTarget, "invalid delete target")
	}
}
