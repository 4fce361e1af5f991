package bind_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/bind"
	"github.com/Tangerg/pyflow/lexer"
	"github.com/Tangerg/pyflow/parser"
)

// fixture parses one def and one call and returns both shapes.
func fixture(t *testing.T, src string) (*ast.Call, *ast.Parameters) {
	t.Helper()
	mod, diags := parser.ParseModule(lexer.NewStream(src), parser.File)
	require.Empty(t, diags)
	fn := mod.Module.Body[0].(*ast.FunctionDef)
	call := mod.Module.Body[1].(*ast.ExprStmt).Value.(*ast.Call)
	return call, fn.Params
}

func TestBindPositionalAndKeyword(t *testing.T) {
	call, params := fixture(t, "def f(a, b, c=0): pass\nf(1, c=2, b=3)\n")
	b := bind.Bind(call, params)
	assert.Empty(t, b.Errors)
	require.Len(t, b.Bound, 3)
	assert.Equal(t, "a", b.Bound[0].Param.Name.Id)
	assert.Equal(t, "c", b.Bound[1].Param.Name.Id)
	assert.Equal(t, "b", b.Bound[2].Param.Name.Id)
}

func TestBindErrorsAreStoredNotRaised(t *testing.T) {
	call, params := fixture(t, "def f(a): pass\nf(1, 2, x=3)\n")
	b := bind.Bind(call, params)
	require.Len(t, b.Errors, 2)
	assert.Contains(t, b.Errors[0].Message, "too many positional")
	assert.Contains(t, b.Errors[1].Message, "unexpected keyword")
}

func TestBindMissingRequired(t *testing.T) {
	call, params := fixture(t, "def f(a, b): pass\nf(1)\n")
	b := bind.Bind(call, params)
	require.Len(t, b.Errors, 1)
	assert.Contains(t, b.Errors[0].Message, `missing required argument "b"`)
}

func TestBindDuplicateValue(t *testing.T) {
	call, params := fixture(t, "def f(a): pass\nf(1, a=2)\n")
	b := bind.Bind(call, params)
	require.Len(t, b.Errors, 1)
	assert.Contains(t, b.Errors[0].Message, "multiple values")
}

func TestVariadicBindsMultipleArguments(t *testing.T) {
	call, params := fixture(t, "def f(a, *rest, **kw): pass\nf(1, 2, 3, x=4, y=5)\n")
	b := bind.Bind(call, params)
	assert.Empty(t, b.Errors)
	counts := map[string]int{}
	for _, bound := range b.Bound {
		counts[bound.Param.Name.Id]++
	}
	assert.Equal(t, 1, counts["a"], "a non-variadic parameter binds at most one argument")
	assert.Equal(t, 2, counts["rest"])
	assert.Equal(t, 2, counts["kw"])
}

func TestPositionalOnlyRejectsKeyword(t *testing.T) {
	call, params := fixture(t, "def f(a, /): pass\nf(a=1)\n")
	b := bind.Bind(call, params)
	require.NotEmpty(t, b.Errors)
	assert.Contains(t, b.Errors[0].Message, "positional-only")
}

func TestSplatSilencesMissingArguments(t *testing.T) {
	call, params := fixture(t, "def f(a, b): pass\nf(*args)\n")
	b := bind.Bind(call, params)
	assert.Empty(t, b.Errors, "a splat may supply required parameters at runtime")
}

func TestOverloadSelection(t *testing.T) {
	src := "def first(a: Any, b: Any): pass\n" +
		"def second(a: int, b: str): pass\n" +
		"def third(a): pass\n" +
		"first(1, 2)\n"
	mod, diags := parser.ParseModule(lexer.NewStream(src), parser.File)
	require.Empty(t, diags)
	var overloads []*ast.Parameters
	for _, stmt := range mod.Module.Body[:3] {
		overloads = append(overloads, stmt.(*ast.FunctionDef).Params)
	}
	call := mod.Module.Body[3].(*ast.ExprStmt).Value.(*ast.Call)

	result := bind.BindOverloads(call, overloads)
	require.Len(t, result.Bindings, 3)
	// Overloads 0 and 1 both bind cleanly; 1 wins with zero Any-typed
	// matches. Overload 2 takes too many arguments.
	assert.Equal(t, 1, result.Chosen)
	assert.NotEmpty(t, result.Bindings[2].Errors)
}

func TestOverloadNoneBinds(t *testing.T) {
	call, params := fixture(t, "def f(a): pass\nf(1, 2)\n")
	result := bind.BindOverloads(call, []*ast.Parameters{params})
	assert.Equal(t, -1, result.Chosen)
}
