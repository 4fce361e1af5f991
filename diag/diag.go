// Package diag defines the diagnostic records emitted by the parser and
// resolver. Diagnostics are data, never exceptions: both
// producers append to a collector and keep going.
package diag

import (
	"fmt"

	"github.com/Tangerg/pyflow/token"
)

// ErrorKind enumerates the diagnostic kinds the parser and resolver emit. The
// catch-all Other carries an arbitrary message for conditions not worth a
// dedicated kind.
type ErrorKind int

const (
	ExpectedToken ErrorKind = iota
	ExpectedExpression
	SimpleStatementsOnSameLine
	SimpleAndCompoundStatementOnSameLine
	EmptyImportNames
	EmptyDeleteTargets
	EmptyGlobalNames
	EmptyNonlocalNames
	InvalidAssignmentTarget
	InvalidAnnotatedAssignmentTarget
	InvalidAugmentedAssignmentTarget
	InvalidDeleteTarget
	NonDefaultParamAfterDefaultParam
	DuplicateParameter
	VarParameterWithDefault
	ExpectedKeywordParam
	UnparenthesizedTupleExpression
	UnparenthesizedNamedExpression
	InvalidStarredExpressionUsage
	InvalidYieldExpressionUsage
	IterableUnpackingInComprehension
	UnexpectedIPythonEscapeCommand
	UnexpectedTokenAfterAsync
	StarImportMustBeAlone
	MixedExceptStarClauses
	IrrefutablePatternNotLast
	Other
)

var errorKindNames = map[ErrorKind]string{
	ExpectedToken:                         "expected-token",
	ExpectedExpression:                    "expected-expression",
	SimpleStatementsOnSameLine:            "simple-statements-on-same-line",
	SimpleAndCompoundStatementOnSameLine:  "simple-and-compound-statement-on-same-line",
	EmptyImportNames:                      "empty-import-names",
	EmptyDeleteTargets:                    "empty-delete-targets",
	EmptyGlobalNames:                      "empty-global-names",
	EmptyNonlocalNames:                    "empty-nonlocal-names",
	InvalidAssignmentTarget:               "invalid-assignment-target",
	InvalidAnnotatedAssignmentTarget:      "invalid-annotated-assignment-target",
	InvalidAugmentedAssignmentTarget:      "invalid-augmented-assignment-target",
	InvalidDeleteTarget:                   "invalid-delete-target",
	NonDefaultParamAfterDefaultParam:      "non-default-param-after-default-param",
	DuplicateParameter:                    "duplicate-parameter",
	VarParameterWithDefault:               "var-parameter-with-default",
	ExpectedKeywordParam:                  "expected-keyword-param",
	UnparenthesizedTupleExpression:        "unparenthesized-tuple-expression",
	UnparenthesizedNamedExpression:        "unparenthesized-named-expression",
	InvalidStarredExpressionUsage:         "invalid-starred-expression-usage",
	InvalidYieldExpressionUsage:           "invalid-yield-expression-usage",
	IterableUnpackingInComprehension:      "iterable-unpacking-in-comprehension",
	UnexpectedIPythonEscapeCommand:        "unexpected-ipython-escape-command",
	UnexpectedTokenAfterAsync:             "unexpected-token-after-async",
	StarImportMustBeAlone:                 "star-import-must-be-only-import",
	MixedExceptStarClauses:                "mixed-except-star-clauses",
	IrrefutablePatternNotLast:             "irrefutable-pattern-not-last",
	Other:                                 "other-error",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "other-error"
}

// Diagnostic is one recoverable parse or resolve error: a range, a kind,
// and a human-readable message. Diagnostics never abort producers; they
// accumulate in a Collector.
type Diagnostic struct {
	Range   token.Range
	Kind    ErrorKind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.Range, d.Message, d.Kind)
}

// New builds a Diagnostic with a formatted message.
func New(r token.Range, kind ErrorKind, format string, args ...any) Diagnostic {
	return Diagnostic{Range: r, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Collector accumulates diagnostics in source order. It has no behavior
// beyond append + read: ordering is the caller's responsibility (the
// parser appends in token order, which is already source order).
type Collector struct {
	diagnostics []Diagnostic
}

// Add appends a diagnostic to the collector.
func (c *Collector) Add(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

// Addf builds and appends a diagnostic in one call.
func (c *Collector) Addf(r token.Range, kind ErrorKind, format string, args ...any) {
	c.Add(New(r, kind, format, args...))
}

// All returns the accumulated diagnostics in emission order. The caller
// must not mutate the returned slice.
func (c *Collector) All() []Diagnostic {
	return c.diagnostics
}

// Truncate discards every diagnostic at index n or beyond. The parser
// uses it together with a token-stream mark to retract diagnostics
// produced under an abandoned parse hypothesis.
func (c *Collector) Truncate(n int) {
	if n >= 0 && n < len(c.diagnostics) {
		c.diagnostics = c.diagnostics[:n]
	}
}

// Len reports how many diagnostics have been collected.
func (c *Collector) Len() int {
	return len(c.diagnostics)
}

// Empty reports whether no diagnostics were collected.
func (c *Collector) Empty() bool {
	return len(c.diagnostics) == 0
}
