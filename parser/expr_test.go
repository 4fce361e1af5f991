package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/diag"
)

func exprOf(t *testing.T, src string) ast.Expr {
	t.Helper()
	mod := parseClean(t, src)
	stmt, ok := mod.Body[0].(*ast.ExprStmt)
	require.True(t, ok, "expected expression statement for %q", src)
	return stmt.Value
}

func TestBoolOpChainsFlatten(t *testing.T) {
	e := exprOf(t, "a and b and c\n")
	b, ok := e.(*ast.BoolOp)
	require.True(t, ok)
	assert.Equal(t, ast.BoolAnd, b.Op)
	assert.Len(t, b.Values, 3)
}

func TestPowerIsRightAssociative(t *testing.T) {
	e := exprOf(t, "a ** b ** c\n")
	outer, ok := e.(*ast.BinOp)
	require.True(t, ok)
	_, leftIsName := outer.Left.(*ast.Name)
	assert.True(t, leftIsName)
	_, rightIsBin := outer.Right.(*ast.BinOp)
	assert.True(t, rightIsBin)
}

func TestUnaryMinusBindsLooserThanPower(t *testing.T) {
	e := exprOf(t, "-x ** 2\n")
	u, ok := e.(*ast.UnaryOp)
	require.True(t, ok)
	_, ok = u.Operand.(*ast.BinOp)
	assert.True(t, ok, "-x ** 2 parses as -(x ** 2)")
}

func TestNotInAndIsNot(t *testing.T) {
	e := exprOf(t, "a not in b\n")
	cmp, ok := e.(*ast.Compare)
	require.True(t, ok)
	require.Len(t, cmp.Ops, 1)
	assert.Equal(t, "not in", cmp.Ops[0].String())

	e = exprOf(t, "a is not b\n")
	cmp = e.(*ast.Compare)
	assert.Equal(t, "is not", cmp.Ops[0].String())
}

func TestConditionalExpression(t *testing.T) {
	e := exprOf(t, "a if c else b\n")
	cond, ok := e.(*ast.IfExp)
	require.True(t, ok)
	assert.NotNil(t, cond.Test)
	assert.NotNil(t, cond.Body)
	assert.NotNil(t, cond.Orelse)
}

func TestLambda(t *testing.T) {
	e := exprOf(t, "lambda a, b=1: a + b\n")
	l, ok := e.(*ast.Lambda)
	require.True(t, ok)
	require.NotNil(t, l.Params)
	assert.Equal(t, 2, l.Params.Len())
	assert.NotNil(t, l.Params.Find("b").Default)
}

func TestComprehensions(t *testing.T) {
	e := exprOf(t, "[x * 2 for x in xs if x]\n")
	lc, ok := e.(*ast.ListComp)
	require.True(t, ok)
	require.Len(t, lc.Gens, 1)
	assert.Len(t, lc.Gens[0].Ifs, 1)
	assert.False(t, lc.Gens[0].IsAsync)

	e = exprOf(t, "{k: v for k, v in items}\n")
	dc, ok := e.(*ast.DictComp)
	require.True(t, ok)
	_, ok = dc.Gens[0].Target.(*ast.TupleExpr)
	assert.True(t, ok)

	e = exprOf(t, "{x for x in xs}\n")
	_, ok = e.(*ast.SetComp)
	assert.True(t, ok)

	e = exprOf(t, "(x for x in xs)\n")
	_, ok = e.(*ast.GeneratorExp)
	assert.True(t, ok)
}

func TestAsyncComprehensionClause(t *testing.T) {
	src := "async def f():\n    return [x async for x in it]\n"
	mod := parseClean(t, src)
	fn := mod.Body[0].(*ast.FunctionDef)
	ret := fn.Body[0].(*ast.Return)
	lc := ret.Value.(*ast.ListComp)
	require.Len(t, lc.Gens, 1)
	assert.True(t, lc.Gens[0].IsAsync)
}

func TestStarredUnpackingInComprehensionFlagged(t *testing.T) {
	_, diags := parseSrc(t, "[*x for x in xs]\n")
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Kind == diag.IterableUnpackingInComprehension {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDictDisplayWithSplat(t *testing.T) {
	e := exprOf(t, "{1: 2, **rest, 3: 4}\n")
	d, ok := e.(*ast.DictExpr)
	require.True(t, ok)
	entries := d.Entries()
	require.Len(t, entries, 3)
	assert.NotNil(t, entries[0].Key)
	assert.Nil(t, entries[1].Key, "splat entry has a nil key")
	assert.NotNil(t, entries[2].Key)
}

func TestSliceForms(t *testing.T) {
	e := exprOf(t, "a[1:2:3]\n")
	sub, ok := e.(*ast.Subscript)
	require.True(t, ok)
	sl, ok := sub.Index.(*ast.SliceExpr)
	require.True(t, ok)
	assert.NotNil(t, sl.Lower)
	assert.NotNil(t, sl.Upper)
	assert.NotNil(t, sl.Step)

	e = exprOf(t, "a[::2, 1]\n")
	sub = e.(*ast.Subscript)
	tup, ok := sub.Index.(*ast.TupleExpr)
	require.True(t, ok)
	require.Len(t, tup.Elts, 2)
	_, ok = tup.Elts[0].(*ast.SliceExpr)
	assert.True(t, ok)
}

func TestYieldForms(t *testing.T) {
	src := "def f():\n    yield\n    yield 1, 2\n    yield from g()\n"
	mod := parseClean(t, src)
	fn := mod.Body[0].(*ast.FunctionDef)
	bare := fn.Body[0].(*ast.ExprStmt).Value.(*ast.Yield)
	assert.Nil(t, bare.Value)
	tup := fn.Body[1].(*ast.ExprStmt).Value.(*ast.Yield)
	_, ok := tup.Value.(*ast.TupleExpr)
	assert.True(t, ok)
	_, ok = fn.Body[2].(*ast.ExprStmt).Value.(*ast.YieldFrom)
	assert.True(t, ok)
}

func TestStringConcatenation(t *testing.T) {
	e := exprOf(t, "'a' \"b\"\n")
	lit, ok := e.(*ast.StringLiteral)
	require.True(t, ok)
	assert.Equal(t, "ab", lit.Value, "adjacent literals concatenate implicitly")
}

func TestStringLiteralFlags(t *testing.T) {
	mod := parseClean(t, "x = r'raw\\n'\ny = b\"bytes\"\nz = '''triple'''\n")
	raw := mod.Body[0].(*ast.Assign).Value.(*ast.StringLiteral)
	assert.Equal(t, ast.PrefixRawLower, raw.Flags.Prefix)
	assert.Equal(t, `raw\n`, raw.Value, "raw strings keep escapes verbatim")

	bytes := mod.Body[1].(*ast.Assign).Value.(*ast.BytesLiteral)
	assert.Equal(t, ast.PrefixBytes, bytes.Flags.Prefix)
	assert.Equal(t, []byte("bytes"), bytes.Value)

	triple := mod.Body[2].(*ast.Assign).Value.(*ast.StringLiteral)
	assert.True(t, triple.Flags.TripleQuoted)
	assert.Equal(t, "'''", triple.Flags.QuoteStr())
}

func TestFStringElements(t *testing.T) {
	mod := parseClean(t, "m = f\"a{b}c\"\n")
	f := mod.Body[0].(*ast.Assign).Value.(*ast.FStringExpr)
	require.Len(t, f.Value.Parts, 1)
	fv, ok := f.Value.Parts[0].(*ast.FormattedValue)
	require.True(t, ok)
	require.Len(t, fv.Elements, 3)

	lit, ok := fv.Elements[0].(*ast.FStringLiteralElement)
	require.True(t, ok)
	assert.Equal(t, "a", lit.Value)

	expr, ok := fv.Elements[1].(*ast.FStringExpressionElement)
	require.True(t, ok)
	name, ok := expr.Expr.(*ast.Name)
	require.True(t, ok)
	assert.Equal(t, "b", name.Id)
	assert.Equal(t, ast.ConversionNone, expr.Conversion)

	tail, ok := fv.Elements[2].(*ast.FStringLiteralElement)
	require.True(t, ok)
	assert.Equal(t, "c", tail.Value)
}

func TestFStringConversionAndFormatSpec(t *testing.T) {
	mod := parseClean(t, "m = f\"{x!r:>10}\"\n")
	f := mod.Body[0].(*ast.Assign).Value.(*ast.FStringExpr)
	fv := f.Value.Parts[0].(*ast.FormattedValue)
	require.Len(t, fv.Elements, 1)
	elem := fv.Elements[0].(*ast.FStringExpressionElement)
	assert.Equal(t, ast.ConversionRepr, elem.Conversion)
	require.NotNil(t, elem.FormatSpec)
	assert.NotEmpty(t, elem.FormatSpec.FlattenedElements())
}

func TestFStringConcatenationMixesParts(t *testing.T) {
	mod := parseClean(t, "m = 'lit' f\"{x}\"\n")
	f := mod.Body[0].(*ast.Assign).Value.(*ast.FStringExpr)
	require.True(t, f.Value.IsConcatenated())
	assert.Len(t, f.Value.LiteralParts(), 1)
	assert.Len(t, f.Value.FStringParts(), 1)
	assert.Len(t, f.Value.FlattenedElements(), 1)
}

func TestFStringRangesPointIntoSource(t *testing.T) {
	src := "m = f\"a{b}c\"\n"
	mod := parseClean(t, src)
	f := mod.Body[0].(*ast.Assign).Value.(*ast.FStringExpr)
	fv := f.Value.Parts[0].(*ast.FormattedValue)
	elem := fv.Elements[1].(*ast.FStringExpressionElement)
	name := elem.Expr.(*ast.Name)
	assert.Equal(t, "b", src[name.Range().Start:name.Range().End],
		"sub-expression ranges must land in file coordinates")
}

func TestWalrusStatement(t *testing.T) {
	e := exprOf(t, "(n := compute())\n")
	named, ok := e.(*ast.NamedExpr)
	require.True(t, ok)
	assert.Equal(t, "n", named.Target.Id)
	_, ok = named.Value.(*ast.Call)
	assert.True(t, ok)
}

func TestStarredInCallAndAssignTarget(t *testing.T) {
	e := exprOf(t, "f(*args, **kwargs)\n")
	call := e.(*ast.Call)
	require.Len(t, call.Args, 1)
	_, ok := call.Args[0].(*ast.Starred)
	assert.True(t, ok)
	require.Len(t, call.Keywords, 1)
	assert.Empty(t, call.Keywords[0].Name, "**splat keyword has an empty name")

	mod := parseClean(t, "a, *rest = xs\n")
	assign := mod.Body[0].(*ast.Assign)
	tup := assign.Targets[0].(*ast.TupleExpr)
	_, ok = tup.Elts[1].(*ast.Starred)
	assert.True(t, ok)
}

func TestAttributeChain(t *testing.T) {
	e := exprOf(t, "a.b.c(1).d\n")
	attr, ok := e.(*ast.Attribute)
	require.True(t, ok)
	assert.Equal(t, "d", attr.Attr)
	_, ok = attr.Value.(*ast.Call)
	assert.True(t, ok)
}

func TestNumberLiteralKinds(t *testing.T) {
	mod := parseClean(t, "a = 10\nb = 1.5\nc = 2j\n")
	assert.Equal(t, ast.NumberInt, mod.Body[0].(*ast.Assign).Value.(*ast.NumberLiteral).Kind)
	assert.Equal(t, ast.NumberFloat, mod.Body[1].(*ast.Assign).Value.(*ast.NumberLiteral).Kind)
	assert.Equal(t, ast.NumberComplex, mod.Body[2].(*ast.Assign).Value.(*ast.NumberLiteral).Kind)
}
