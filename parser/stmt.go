package parser

import (
	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/token"
)

// parseStatements parses statements until stop() reports true or EOF is
// reached.
func (p *parser) parseStatements(stop func() bool) []ast.Stmt {
	var out []ast.Stmt
	pr := newProgress(p)
	for !stop() && !p.at(token.EOF) {
		out = append(out, p.parseStatement()...)
		if !pr.advancing(p) {
			p.bump()
			pr = newProgress(p)
		}
	}
	return out
}

// parseStatement dispatches at one statement position.
func (p *parser) parseStatement() []ast.Stmt {
	switch {
	case p.at(token.AT):
		return []ast.Stmt{p.parseDecorated()}
	case p.at(token.DEF):
		return []ast.Stmt{p.parseFunctionDef(nil, false)}
	case p.at(token.CLASS):
		return []ast.Stmt{p.parseClassDef(nil)}
	case p.at(token.IF):
		return []ast.Stmt{p.parseIf()}
	case p.at(token.WHILE):
		return []ast.Stmt{p.parseWhile()}
	case p.at(token.FOR):
		return []ast.Stmt{p.parseFor(false)}
	case p.at(token.TRY):
		return []ast.Stmt{p.parseTry()}
	case p.at(token.WITH):
		return []ast.Stmt{p.parseWith(false)}
	case p.at(token.ASYNC):
		return []ast.Stmt{p.parseAsync()}
	}
	if name, ok := p.curName(); ok {
		switch name {
		case "match":
			if s, ok := p.tryParseMatch(); ok {
				return []ast.Stmt{s}
			}
		case "type":
			if s, ok := p.tryParseTypeAlias(); ok {
				return []ast.Stmt{s}
			}
		}
	}
	return p.parseSimpleStatementLine()
}

// parseAsync handles the `async def`/`async for`/`async with` family.
// An `async` not followed by one of those three is an
// error recorded without aborting.
func (p *parser) parseAsync() ast.Stmt {
	start := p.curRange()
	p.bump() // async
	switch {
	case p.at(token.DEF):
		return p.parseFunctionDefAsync(nil, start)
	case p.at(token.FOR):
		return p.parseForAsync(start)
	case p.at(token.WITH):
		return p.parseWithAsync(start)
	default:
		p.errorf(start, diag.UnexpectedTokenAfterAsync, "expected 'def', 'for', or 'with' after 'async', got %s", p.cur())
		return p.errorStmtAt(start, "unexpected token after 'async'")
	}
}

// parseSimpleStatementLine parses one or more simple statements on a
// single logical line, separated by `;`, terminated by NEWLINE or EOF.
func (p *parser) parseSimpleStatementLine() []ast.Stmt {
	var out []ast.Stmt
	pr := newProgress(p)
	for {
		out = append(out, p.parseSimpleStatement())
		if p.eat(token.SEMI) {
			if p.at(token.NEWLINE) || p.at(token.EOF) {
				break
			}
		} else if p.at(token.NEWLINE) || p.at(token.EOF) {
			break
		} else {
			if p.atAny(token.CompoundStatementStarters) {
				p.errorf(p.curRange(), diag.SimpleAndCompoundStatementOnSameLine,
					"simple statement and compound statement on the same line")
			} else {
				p.errorf(p.curRange(), diag.SimpleStatementsOnSameLine,
					"simple statements must be separated by newlines or semicolons")
			}
		}
		if !pr.advancing(p) {
			break
		}
	}
	p.eat(token.NEWLINE)
	return out
}

func (p *parser) parseSimpleStatement() ast.Stmt {
	switch p.cur() {
	case token.RETURN:
		return p.parseReturn()
	case token.DEL:
		return p.parseDelete()
	case token.ASSERT:
		return p.parseAssert()
	case token.IMPORT:
		return p.parseImport()
	case token.FROM:
		return p.parseImportFrom()
	case token.GLOBAL:
		return p.parseGlobal()
	case token.NONLOCAL:
		return p.parseNonlocal()
	case token.PASS:
		r := p.bump().Range
		s := ast.Alloc[ast.Pass](p.arena)
		s.Rng = r
		return s
	case token.BREAK:
		r := p.bump().Range
		s := ast.Alloc[ast.Break](p.arena)
		s.Rng = r
		return s
	case token.CONTINUE:
		r := p.bump().Range
		s := ast.Alloc[ast.Continue](p.arena)
		s.Rng = r
		return s
	case token.RAISE:
		return p.parseRaise()
	case token.IPYNB_ESCAPE_COMMAND:
		return p.parseEscapeCommandStmt()
	}
	return p.parseExprOrAssignStatement()
}

func (p *parser) parseReturn() ast.Stmt {
	start := p.curRange()
	p.bump()
	s := ast.Alloc[ast.Return](p.arena)
	if !p.atAny(simpleStatementEndSet) {
		s.Value = p.parseExprOrTuple(defaultExprCtx())
	}
	s.Rng = p.lastRange(start)
	return s
}

// simpleStatementEndSet is the FOLLOW set that closes a bare optional-
// expression simple statement (`return`, `raise`) without consuming
// anything further.
var simpleStatementEndSet = token.NewSet(token.NEWLINE, token.SEMI, token.EOF)

func (p *parser) parseDelete() ast.Stmt {
	start := p.curRange()
	p.bump()
	s := ast.Alloc[ast.Delete](p.arena)
	s.Targets = p.parseTargetList(true)
	if len(s.Targets) == 0 {
		p.errorf(start, diag.EmptyDeleteTargets, "delete statement requires at least one target")
	}
	for _, t := range s.Targets {
		validateDeleteTarget(p, t)
	}
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseAssert() ast.Stmt {
	start := p.curRange()
	p.bump()
	s := ast.Alloc[ast.Assert](p.arena)
	s.Test = p.parseExpr(defaultExprCtx())
	if p.eat(token.COMMA) {
		s.Msg = p.parseExpr(defaultExprCtx())
	}
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseGlobal() ast.Stmt {
	start := p.curRange()
	p.bump()
	s := ast.Alloc[ast.Global](p.arena)
	s.Names = p.parseNameList()
	if len(s.Names) == 0 {
		p.errorf(start, diag.EmptyGlobalNames, "global statement requires at least one name")
	}
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseNonlocal() ast.Stmt {
	start := p.curRange()
	p.bump()
	s := ast.Alloc[ast.Nonlocal](p.arena)
	s.Names = p.parseNameList()
	if len(s.Names) == 0 {
		p.errorf(start, diag.EmptyNonlocalNames, "nonlocal statement requires at least one name")
	}
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseNameList() []string {
	var out []string
	pr := newProgress(p)
	for {
		if name, ok := p.curName(); ok {
			p.bump()
			out = append(out, name)
		} else {
			break
		}
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	return out
}

func (p *parser) parseRaise() ast.Stmt {
	start := p.curRange()
	p.bump()
	s := ast.Alloc[ast.Raise](p.arena)
	if !p.atAny(simpleStatementEndSet) {
		s.Exc = p.parseExpr(defaultExprCtx())
		if p.eat(token.FROM) {
			s.Cause = p.parseExpr(defaultExprCtx())
		}
	}
	s.Rng = p.lastRange(start)
	return s
}

func (p *parser) parseEscapeCommandStmt() ast.Stmt {
	t := p.bump()
	payload, _ := t.Payload.(token.EscapeCommandPayload)
	if p.mode != InteractiveNotebook {
		p.errorf(t.Range, diag.UnexpectedIPythonEscapeCommand, "IPython escape commands are only allowed in notebook mode")
	}
	s := ast.Alloc[ast.IPyEscapeCommand](p.arena)
	s.Rng = t.Range
	s.Kind = payload.Sigil
	s.Body = payload.Body
	return s
}

// lastRange covers start with the range of the most recently consumed
// token, giving a construct's full textual extent.
func (p *parser) lastRange(start token.Range) token.Range {
	return start.Cover(p.ts.LastRange())
}
