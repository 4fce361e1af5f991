package parser

import (
	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/token"
)

// paramsKind selects the surface grammar for a parameter list: def
// parameters accept annotations, lambda parameters do not (and end at
// `:` rather than `)`).
type paramsKind int

const (
	defParams paramsKind = iota
	lambdaParams
)

func (k paramsKind) terminator() token.Kind {
	if k == lambdaParams {
		return token.COLON
	}
	return token.RPAR
}

// parseParameters parses a full parameter list, enforcing the ordering
// and default rules with diagnostics while tolerating the
// malformed shapes for continued parsing.
func (p *parser) parseParameters(kind paramsKind) *ast.Parameters {
	params := &ast.Parameters{}
	term := kind.terminator()

	seen := map[string]bool{}
	seenSlash := false
	afterStar := false
	posDefault := false // a default was seen in the positional section
	kwDefault := false  // a default was seen in the keyword-only section

	pr := newProgress(p)
	for !p.at(term) && !p.at(token.EOF) && !p.at(token.NEWLINE) {
		switch {
		case p.at(token.SLASH):
			slashRange := p.bump().Range
			switch {
			case seenSlash:
				p.errorf(slashRange, diag.Other, "only one '/' separator is allowed")
			case len(params.PositionalOrKeyword) == 0 || afterStar:
				p.errorf(slashRange, diag.Other, "'/' must follow at least one parameter")
			default:
				// Everything accumulated so far becomes positional-only.
				for _, param := range params.PositionalOrKeyword {
					param.Kind = ast.ParamPositionalOnly
				}
				params.PositionalOnly = params.PositionalOrKeyword
				params.PositionalOrKeyword = nil
				seenSlash = true
			}
		case p.at(token.STAR):
			starRange := p.bump().Range
			switch {
			case afterStar || params.VarArg != nil:
				p.errorf(starRange, diag.Other, "only one '*' separator is allowed")
				p.skipPastParam(term)
			case p.atParamName():
				params.VarArg = p.parseOneParam(kind, ast.ParamVarArg, seen)
				afterStar = true
			default:
				params.HasBareStar = true
				afterStar = true
			}
		case p.at(token.DOUBLESTAR):
			starRange := p.bump().Range
			if params.KwArg != nil {
				p.errorf(starRange, diag.Other, "only one '**' parameter is allowed")
				p.skipPastParam(term)
				break
			}
			params.KwArg = p.parseOneParam(kind, ast.ParamKwArg, seen)
		case p.atParamName():
			sectionKind := ast.ParamPositionalOrKeyword
			if afterStar {
				sectionKind = ast.ParamKeywordOnly
			}
			param := p.parseOneParam(kind, sectionKind, seen)
			hasDefault := param.Default != nil
			if afterStar {
				// Keyword-only parameters may interleave defaults freely
				// per the target language's grammar.
				kwDefault = kwDefault || hasDefault
				params.KeywordOnly = append(params.KeywordOnly, param)
			} else {
				if !hasDefault && posDefault {
					p.errorf(paramRange(param), diag.NonDefaultParamAfterDefaultParam,
						"parameter without a default cannot follow a parameter with a default")
				}
				posDefault = posDefault || hasDefault
				params.PositionalOrKeyword = append(params.PositionalOrKeyword, param)
			}
		default:
			p.errorf(p.curRange(), diag.ExpectedToken, "expected a parameter, got %s", p.cur())
			p.skipPastParam(term)
		}
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}

	if params.HasBareStar && len(params.KeywordOnly) == 0 && params.KwArg == nil {
		p.errorf(p.curRange(), diag.ExpectedKeywordParam,
			"a bare '*' separator requires at least one keyword-only parameter")
	}
	return params
}

func (p *parser) atParamName() bool {
	_, ok := p.curName()
	return ok
}

// parseOneParam parses `name [: annotation] [= default]`, recording
// duplicate-name and variadic-default diagnostics.
func (p *parser) parseOneParam(kind paramsKind, section ast.ParamKind, seen map[string]bool) *ast.Parameter {
	param := &ast.Parameter{Kind: section}
	name := ast.Alloc[ast.Name](p.arena)
	name.Rng = p.curRange()
	if id, ok := p.curName(); ok {
		p.bump()
		name.Id = id
		name.Valid = true
		if seen[id] {
			p.errorf(name.Rng, diag.DuplicateParameter, "duplicate parameter %q", id)
		}
		seen[id] = true
	} else {
		p.errorf(p.curRange(), diag.ExpectedToken, "expected parameter name, got %s", p.cur())
	}
	param.Name = name

	if p.at(token.COLON) && kind == defParams {
		p.bump()
		param.Annotation = p.parseExpr(defaultExprCtx())
	}
	if p.at(token.EQUAL) {
		eqRange := p.curRange()
		p.bump()
		def := p.parseExpr(defaultExprCtx())
		if section == ast.ParamVarArg || section == ast.ParamKwArg {
			p.errorf(eqRange.Cover(def.Range()), diag.VarParameterWithDefault,
				"variadic parameter cannot have a default value")
		} else {
			param.Default = def
		}
	}
	return param
}

// skipPastParam recovers from a malformed parameter by skipping to the
// next comma or the list terminator.
func (p *parser) skipPastParam(term token.Kind) {
	stop := token.NewSet(token.COMMA, term, token.NEWLINE)
	p.skipToRecover(stop)
}

func paramRange(param *ast.Parameter) token.Range {
	if param.Name != nil {
		return param.Name.Rng
	}
	return token.Range{}
}
