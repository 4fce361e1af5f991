// Package parser implements the hand-written recursive-descent parser:
// it consumes a token stream and produces a partial-but-always-usable
// ast.ModuleAST plus a list of diag.Diagnostic records. The parser never panics on malformed input and never unwinds
// via exceptions — every recovery path is an explicit branch that
// appends a diagnostic and keeps going.
package parser

import (
	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/token"
)

// TokenStream is the small surface the parser needs from a token
// source. lexer.Stream satisfies it; tests may supply a
// hand-built fake.
type TokenStream interface {
	CurrentKind() token.Kind
	CurrentRange() token.Range
	CurrentPayload() any
	Peek() token.Kind
	PeekRange() token.Range
	At(k token.Kind) bool
	AtAny(set token.Set) bool
	Bump() token.Token
	LastRange() token.Range
	SrcText(r token.Range) string
	Mark() int
	Reset(mark int)
	Len() int
}

// Mode selects the parser's entry grammar.
type Mode int

const (
	File Mode = iota
	Expression
	InteractiveNotebook
)

// ExpressionContext tracks which constructs are permitted at the current
// expression-parsing position: starred elements, yield
// expressions, the `in` keyword (excluded inside a `for... in...`
// head so the head's own `in` isn't swallowed by a nested comparison),
// and named (walrus) expressions.
type ExpressionContext struct {
	AllowStarred bool
	AllowYield   bool
	AllowIn      bool
	AllowNamed   bool
}

func defaultExprCtx() ExpressionContext {
	return ExpressionContext{AllowStarred: false, AllowYield: false, AllowIn: true, AllowNamed: true}
}

// parser holds all mutable state for one parse. It is never shared
// across files: each file is parsed independently on its own arena.
type parser struct {
	ts    TokenStream
	arena *ast.Arena
	diags *diag.Collector
	mode  Mode
}

// ParseModule is the public entry point.
func ParseModule(ts TokenStream, mode Mode) (*ast.ModuleAST, []diag.Diagnostic) {
	p := &parser{
		ts:    ts,
		arena: ast.NewArena(0),
		diags: &diag.Collector{},
		mode:  mode,
	}
	mod := ast.Alloc[ast.Module](p.arena)
	switch mode {
	case Expression:
		start := p.ts.CurrentRange().Start
		e := p.parseExprOrTuple(defaultExprCtx())
		stmt := ast.Alloc[ast.ExprStmt](p.arena)
		stmt.Rng = e.Range()
		stmt.Value = e
		mod.Body = []ast.Stmt{stmt}
		mod.Rng = token.NewRange(start, p.ts.CurrentRange().End)
	default:
		mod.Body = p.parseStatements(func() bool { return p.ts.At(token.EOF) })
		mod.Rng = token.NewRange(0, p.ts.Len())
	}
	return &ast.ModuleAST{Arena: p.arena, Module: mod}, p.diags.All()
}

// --- low-level token helpers ---

func (p *parser) at(k token.Kind) bool        { return p.ts.At(k) }
func (p *parser) atAny(set token.Set) bool    { return p.ts.AtAny(set) }
func (p *parser) cur() token.Kind             { return p.ts.CurrentKind() }
func (p *parser) curRange() token.Range       { return p.ts.CurrentRange() }
func (p *parser) curName() (string, bool) {
	if np, ok := p.ts.CurrentPayload().(token.NamePayload); ok {
		return np.Name, true
	}
	return "", false
}

// eat consumes the current token iff it matches k, reporting whether it did.
func (p *parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.ts.Bump()
		return true
	}
	return false
}

// expect consumes the current token iff it matches k; otherwise it
// emits an "expected X, got Y" diagnostic and leaves the cursor alone
// so outer recovery logic can decide what to do next.
func (p *parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.ts.Bump(), true
	}
	p.errorf(p.curRange(), diag.ExpectedToken, "expected %s, got %s", k, p.cur())
	return token.Token{}, false
}

func (p *parser) errorf(r token.Range, kind diag.ErrorKind, format string, args ...any) {
	p.diags.Addf(r, kind, format, args...)
}

// bump unconditionally advances and returns the consumed token.
func (p *parser) bump() token.Token { return p.ts.Bump() }

// progress is the forward-motion guard: a
// loop body passes the stream position observed at the top of the
// previous iteration; if the cursor hasn't moved, the loop breaks
// instead of spinning. Debug-only per spec, but cheap enough to always run.
type progress struct{ last int }

func (pr *progress) advancing(p *parser) bool {
	cur := p.ts.Mark()
	if cur == pr.last {
		return false
	}
	pr.last = cur
	return true
}

func newProgress(p *parser) *progress { return &progress{last: p.ts.Mark()} }

// errorExprAt builds an ast.ErrorExpr spanning r.
func (p *parser) errorExprAt(r token.Range, msg string) ast.Expr {
	e := ast.Alloc[ast.ErrorExpr](p.arena)
	e.Rng = r
	e.Message = msg
	return e
}

func (p *parser) errorStmtAt(r token.Range, msg string) ast.Stmt {
	s := ast.Alloc[ast.ErrorStmt](p.arena)
	s.Rng = r
	s.Message = msg
	return s
}

// skipToRecover advances the cursor until a token in stop is reached or
// EOF, used by comma-list recovery.
func (p *parser) skipToRecover(stop token.Set) {
	for !p.at(token.EOF) && !p.atAny(stop) {
		p.bump()
	}
}
