package ast

// ParamKind distinguishes the section a parameter belongs to, enforcing
// the ordering invariant: positional-only precede
// positional-or-keyword precede variadic-positional precede keyword-only
// precede variadic-keyword.
type ParamKind int

const (
	ParamPositionalOnly ParamKind = iota
	ParamPositionalOrKeyword
	ParamVarArg // *args
	ParamKeywordOnly
	ParamKwArg // **kwargs
)

// Parameter is one formal parameter. Default is nil unless the
// parameter has a default value; variadic parameters (VarArg/KwArg)
// never carry one.
type Parameter struct {
	Name       *Name
	Annotation Expr // nil if unannotated
	Default    Expr
	Kind       ParamKind
}

// Parameters is the full parameter list of a function/lambda.
// Sections are kept separate so the ordering invariant is structural
// rather than needing re-validation by every consumer; HasBareStar
// records whether a lone `*` separator (no following name) was present
// even when the keyword-only section it introduces is empty. A `/`
// separator is recorded only through the PositionalOnly section.
type Parameters struct {
	PositionalOnly    []*Parameter
	PositionalOrKeyword []*Parameter
	VarArg            *Parameter // nil if no *args (and no bare `*`)
	HasBareStar       bool       // a lone `*` separator with no *args name
	KeywordOnly       []*Parameter
	KwArg             *Parameter // nil if no **kwargs
}

// Iter returns every parameter across all sections in declaration order.
func (p *Parameters) Iter() []*Parameter {
	if p == nil {
		return nil
	}
	all := make([]*Parameter, 0, p.Len())
	all = append(all, p.PositionalOnly...)
	all = append(all, p.PositionalOrKeyword...)
	if p.VarArg != nil {
		all = append(all, p.VarArg)
	}
	all = append(all, p.KeywordOnly...)
	if p.KwArg != nil {
		all = append(all, p.KwArg)
	}
	return all
}

// IterNonVariadic returns every parameter except *args/**kwargs.
func (p *Parameters) IterNonVariadic() []*Parameter {
	if p == nil {
		return nil
	}
	all := make([]*Parameter, 0, len(p.PositionalOnly)+len(p.PositionalOrKeyword)+len(p.KeywordOnly))
	all = append(all, p.PositionalOnly...)
	all = append(all, p.PositionalOrKeyword...)
	all = append(all, p.KeywordOnly...)
	return all
}

// Find returns the parameter named name, or nil if none matches.
func (p *Parameters) Find(name string) *Parameter {
	for _, param := range p.Iter() {
		if param.Name != nil && param.Name.Id == name {
			return param
		}
	}
	return nil
}

// Includes reports whether a parameter named name exists.
func (p *Parameters) Includes(name string) bool {
	return p.Find(name) != nil
}

// Len reports the total parameter count across all sections.
func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	n := len(p.PositionalOnly) + len(p.PositionalOrKeyword) + len(p.KeywordOnly)
	if p.VarArg != nil {
		n++
	}
	if p.KwArg != nil {
		n++
	}
	return n
}
