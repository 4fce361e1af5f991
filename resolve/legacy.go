package resolve

import (
	"github.com/Tangerg/pyflow/ast"
	"github.com/Tangerg/pyflow/fsabs"
	"github.com/Tangerg/pyflow/lexer"
	"github.com/Tangerg/pyflow/parser"
)

// isLegacyNamespaceInit reports whether an `__init__` file contains
// exactly the pkgutil path-extension idiom:
//
//	__path__ = pkgutil.extend_path(__path__, __name__)
//
// or its `__import__("pkgutil")` variant. Detection is syntax-only: the
// file is parsed and its top-level statements matched against the
// assignment shape; no evaluation happens. Reading the file through the
// query's recording filesystem registers the init file — and therefore
// its parsed AST — as a cache dependency.
func isLegacyNamespaceInit(fs fsabs.FS, initPath string) bool {
	content, err := fs.ReadToString(initPath)
	if err != nil {
		return false
	}
	mod, _ := parser.ParseModule(lexer.NewStream(content), parser.File)
	for _, stmt := range mod.Module.Body {
		assign, ok := stmt.(*ast.Assign)
		if !ok {
			continue
		}
		if matchesExtendPathAssign(assign) {
			return true
		}
	}
	return false
}

// matchesExtendPathAssign checks one top-level assignment for the
// `__path__ = <pkgutil>.extend_path(__path__, __name__)` shape.
func matchesExtendPathAssign(assign *ast.Assign) bool {
	if len(assign.Targets) != 1 {
		return false
	}
	target, ok := assign.Targets[0].(*ast.Name)
	if !ok || target.Id != "__path__" {
		return false
	}
	call, ok := assign.Value.(*ast.Call)
	if !ok || len(call.Args) != 2 || len(call.Keywords) != 0 {
		return false
	}
	attr, ok := call.Func.(*ast.Attribute)
	if !ok || attr.Attr != "extend_path" {
		return false
	}
	if !isPkgutilRef(attr.Value) {
		return false
	}
	first, ok := call.Args[0].(*ast.Name)
	if !ok || first.Id != "__path__" {
		return false
	}
	second, ok := call.Args[1].(*ast.Name)
	return ok && second.Id == "__name__"
}

// isPkgutilRef matches the two accepted receivers: the plain name
// `pkgutil` or the call `__import__("pkgutil")`.
func isPkgutilRef(e ast.Expr) bool {
	if name, ok := e.(*ast.Name); ok {
		return name.Id == "pkgutil"
	}
	call, ok := e.(*ast.Call)
	if !ok || len(call.Args) != 1 || len(call.Keywords) != 0 {
		return false
	}
	fn, ok := call.Func.(*ast.Name)
	if !ok || fn.Id != "__import__" {
		return false
	}
	arg, ok := call.Args[0].(*ast.StringLiteral)
	return ok && arg.Value == "pkgutil"
}
