package bind

import "github.com/Tangerg/pyflow/ast"

// OverloadBindings carries one binding per overload; at most one is
// the chosen overload.
type OverloadBindings struct {
	Bindings []*Binding
	// Chosen indexes the selected overload, -1 when none binds cleanly.
	Chosen int
}

// BindOverloads matches a call against an overload set. Selection rule:
// among overloads that bind without errors, prefer the first in
// declaration order with the fewest Any-typed parameter matches.
func BindOverloads(call *ast.Call, overloads []*ast.Parameters) *OverloadBindings {
	out := &OverloadBindings{Chosen: -1}
	bestScore := -1
	for i, params := range overloads {
		b := Bind(call, params)
		out.Bindings = append(out.Bindings, b)
		if len(b.Errors) > 0 {
			continue
		}
		score := anyTypedMatches(b)
		if bestScore == -1 || score < bestScore {
			bestScore = score
			out.Chosen = i
		}
	}
	return out
}

// anyTypedMatches counts bound parameters whose annotation is the
// catch-all `Any` (spelled bare or as an attribute like `typing.Any`).
func anyTypedMatches(b *Binding) int {
	n := 0
	for _, bound := range b.Bound {
		if isAnyAnnotation(bound.Param.Annotation) {
			n++
		}
	}
	return n
}

func isAnyAnnotation(e ast.Expr) bool {
	switch a := e.(type) {
	case *ast.Name:
		return a.Id == "Any"
	case *ast.Attribute:
		return a.Attr == "Any"
	default:
		return false
	}
}
