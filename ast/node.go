package ast

import "github.com/Tangerg/pyflow/token"

// Stmt, Expr, and Pattern are the three tagged sums: every
// node in one of these categories carries a Range and a private marker
// method, so only the node types declared in this package can implement
// them — callers switch on the node's concrete Go type rather than on an
// explicit tag field, which is the idiomatic Go rendering of a closed
// sum type.
type Stmt interface {
	Range() token.Range
	stmtNode()
}

type Expr interface {
	Range() token.Range
	exprNode()
}

type Pattern interface {
	Range() token.Range
	patternNode()
}

// base carries the one Range every node has. Concrete node
// types embed base and get Range() for free.
type base struct {
	Rng token.Range
}

func (b *base) Range() token.Range { return b.Rng }

// Module is the root of one parse: an ordered sequence of top-level
// statements plus the range covering the whole source buffer.
type Module struct {
	base
	Body []Stmt
}

// ModuleAST is the public result of parse_module: the arena that owns
// every node plus the root Module.
type ModuleAST struct {
	Arena  *Arena
	Module *Module
}
