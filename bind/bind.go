// Package bind implements the call-binding subsystem: it
// maps each syntactic argument of a call to at most one formal
// parameter, with errors stored on bindings rather than raised. It
// exists to exercise the AST contracts downstream consumers rely on —
// chiefly Call.ArgsInSourceOrder and the Parameters section structure.
package bind

import (
	"fmt"

	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/token"
)

// BindingError is one argument-to-parameter mismatch, recorded on the
// binding.
type BindingError struct {
	Range   token.Range
	Message string
}

func (e BindingError) String() string {
	return fmt.Sprintf("%s: %s", e.Range, e.Message)
}

// BoundArg records one argument bound to a formal parameter.
type BoundArg struct {
	Param *ast.Parameter
	Value ast.Expr
	// Keyword is the spelled keyword for keyword arguments, empty for
	// positional bindings.
	Keyword string
}

// Binding is the result of matching one call against one parameter
// list. Each formal parameter binds multiple arguments only if
// variadic.
type Binding struct {
	Params *ast.Parameters
	Bound  []BoundArg
	Errors []BindingError
}

func (b *Binding) errorf(r token.Range, format string, args ...any) {
	b.Errors = append(b.Errors, BindingError{Range: r, Message: fmt.Sprintf(format, args...)})
}

func (b *Binding) countFor(param *ast.Parameter) int {
	n := 0
	for _, bound := range b.Bound {
		if bound.Param == param {
			n++
		}
	}
	return n
}

// Bind matches call's arguments against params.
func Bind(call *ast.Call, params *ast.Parameters) *Binding {
	b := &Binding{Params: params}

	positional := append([]*ast.Parameter{}, params.PositionalOnly...)
	positional = append(positional, params.PositionalOrKeyword...)
	nextPositional := 0

	for _, arg := range call.Args {
		if starred, ok := arg.(*ast.Starred); ok {
			// A *args splat saturates the remaining positional slots;
			// its element count is unknowable syntactically, so every
			// later positional parameter counts as possibly-bound and
			// the splat itself binds to the variadic slot if present.
			if params.VarArg != nil {
				b.Bound = append(b.Bound, BoundArg{Param: params.VarArg, Value: starred})
			}
			nextPositional = len(positional)
			continue
		}
		if nextPositional < len(positional) {
			b.Bound = append(b.Bound, BoundArg{Param: positional[nextPositional], Value: arg})
			nextPositional++
			continue
		}
		if params.VarArg != nil {
			b.Bound = append(b.Bound, BoundArg{Param: params.VarArg, Value: arg})
			continue
		}
		b.errorf(arg.Range(), "too many positional arguments: expected at most %d", len(positional))
	}

	for _, kw := range call.Keywords {
		if kw.Name == "" {
			// A **kwargs splat binds to the variadic-keyword slot.
			if params.KwArg != nil {
				b.Bound = append(b.Bound, BoundArg{Param: params.KwArg, Value: kw.Value})
			}
			continue
		}
		param := params.Find(kw.Name)
		switch {
		case param == nil:
			if params.KwArg != nil {
				b.Bound = append(b.Bound, BoundArg{Param: params.KwArg, Value: kw.Value, Keyword: kw.Name})
			} else {
				b.errorf(kw.Rng, "unexpected keyword argument %q", kw.Name)
			}
		case param.Kind == ast.ParamPositionalOnly:
			b.errorf(kw.Rng, "positional-only parameter %q cannot be passed by keyword", kw.Name)
		case b.countFor(param) > 0:
			b.errorf(kw.Rng, "multiple values for parameter %q", kw.Name)
		default:
			b.Bound = append(b.Bound, BoundArg{Param: param, Value: kw.Value, Keyword: kw.Name})
		}
	}

	hasStarSplat := false
	for _, arg := range call.Args {
		if _, ok := arg.(*ast.Starred); ok {
			hasStarSplat = true
			break
		}
	}
	hasKwSplat := false
	for _, kw := range call.Keywords {
		if kw.Name == "" {
			hasKwSplat = true
			break
		}
	}
	for _, param := range params.IterNonVariadic() {
		if param.Default != nil || b.countFor(param) > 0 {
			continue
		}
		if hasStarSplat || hasKwSplat {
			// A splat may supply it at runtime; binding stays silent.
			continue
		}
		b.errorf(call.Range(), "missing required argument %q", paramName(param))
	}
	return b
}

func paramName(param *ast.Parameter) string {
	if param.Name != nil {
		return param.Name.Id
	}
	return "?"
}
