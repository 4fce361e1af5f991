package parser

import (
	"strings"

	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
	"github.com/Tangerg/pyflow/token"
)

// parseImport parses `import a.b.c, x as y`.
func (p *parser) parseImport() ast.Stmt {
	start := p.curRange()
	p.bump() // import
	s := ast.Alloc[ast.Import](p.arena)
	s.Names = p.parseImportAliases(false)
	if len(s.Names) == 0 {
		p.errorf(start, diag.EmptyImportNames, "import statement requires at least one module name")
	}
	s.Rng = p.lastRange(start)
	return s
}

// parseImportFrom parses `from [.]* [module] import names` with the
// leading dots counting the relative level (`...` counts as 3) and the
// star-import aliasing rules.
func (p *parser) parseImportFrom() ast.Stmt {
	start := p.curRange()
	p.bump() // from
	s := ast.Alloc[ast.ImportFrom](p.arena)

	for {
		if p.eat(token.DOT) {
			s.Level++
			continue
		}
		if p.eat(token.ELLIPSIS) {
			s.Level += 3
			continue
		}
		break
	}
	if _, ok := p.curName(); ok {
		s.Module = p.parseDottedName()
	} else if s.Level == 0 {
		p.errorf(p.curRange(), diag.ExpectedToken, "expected module name after 'from', got %s", p.cur())
	}

	p.expect(token.IMPORT)

	parenthesized := p.eat(token.LPAR)
	s.Names = p.parseFromAliases(parenthesized)
	if parenthesized {
		p.expect(token.RPAR)
	}
	if len(s.Names) == 0 {
		p.errorf(start, diag.EmptyImportNames, "from-import statement requires at least one name")
	}

	// A star alias must be the sole alias; the AST keeps every alias
	// either way.
	if len(s.Names) > 1 {
		for _, a := range s.Names {
			if a.Name == "*" {
				p.errorf(a.Rng, diag.StarImportMustBeAlone, "star import must be the only import")
				break
			}
		}
	}
	s.Rng = p.lastRange(start)
	return s
}

// parseImportAliases parses the comma-separated alias list of a plain
// import statement: each alias is a dotted identifier, no leading dot.
func (p *parser) parseImportAliases(allowStar bool) []*ast.Alias {
	var out []*ast.Alias
	pr := newProgress(p)
	for {
		if _, ok := p.curName(); !ok {
			break
		}
		start := p.curRange()
		a := &ast.Alias{Name: p.parseDottedName()}
		if p.eat(token.AS) {
			if name, ok := p.curName(); ok {
				p.bump()
				a.AsName = name
			} else {
				p.errorf(p.curRange(), diag.ExpectedToken, "expected name after 'as', got %s", p.cur())
			}
		}
		a.Rng = start.Cover(p.ts.LastRange())
		out = append(out, a)
		if !p.eat(token.COMMA) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	return out
}

// parseFromAliases parses the name list of a from-import; trailing
// commas are allowed only in the parenthesized form.
func (p *parser) parseFromAliases(parenthesized bool) []*ast.Alias {
	var out []*ast.Alias
	pr := newProgress(p)
	for {
		start := p.curRange()
		var a *ast.Alias
		switch {
		case p.at(token.STAR):
			p.bump()
			a = &ast.Alias{Name: "*", Rng: start}
		default:
			name, ok := p.curName()
			if !ok {
				if len(out) > 0 && !parenthesized {
					p.errorf(start, diag.ExpectedToken, "trailing comma is only allowed in parenthesized from-import")
				}
				return out
			}
			p.bump()
			a = &ast.Alias{Name: name}
			if p.eat(token.AS) {
				if asName, ok := p.curName(); ok {
					p.bump()
					a.AsName = asName
				} else {
					p.errorf(p.curRange(), diag.ExpectedToken, "expected name after 'as', got %s", p.cur())
				}
			}
			a.Rng = start.Cover(p.ts.LastRange())
		}
		out = append(out, a)
		if !p.eat(token.COMMA) {
			break
		}
		if parenthesized && p.at(token.RPAR) {
			break
		}
		if !pr.advancing(p) {
			break
		}
	}
	return out
}

// parseDottedName consumes `NAME (DOT NAME)*`, reconstructing the
// dotted spelling.
func (p *parser) parseDottedName() string {
	var parts []string
	if name, ok := p.curName(); ok {
		p.bump()
		parts = append(parts, name)
	}
	for p.at(token.DOT) {
		if p.ts.Peek() != token.NAME {
			break
		}
		p.bump() // .
		name, _ := p.curName()
		p.bump()
		parts = append(parts, name)
	}
	return strings.Join(parts, ".")
}
