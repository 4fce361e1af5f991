package token

import (
	"fmt"
	"strconv"
)

// Kind enumerates every lexical token category the parser consumes. The
// enumeration is bounded by kindBegin/kindEnd so Kind values that slip in
// from outside the package (zero value, corrupted data) fail IsValid
// rather than silently indexing out of range in the name tables.
type Kind int

const (
	kindBegin Kind = iota

	ERROR // lexical error, payload is the error message
	EOF

	// Whitespace-structural tokens. Comments are not tokens.
	NEWLINE
	INDENT
	DEDENT

	// Literals and names.
	NAME
	NUMBER
	STRING   // single- or triple-quoted string/bytes/f-string run
	FSTRING_START
	FSTRING_MIDDLE
	FSTRING_END

	// Keywords. match/case/type are soft keywords: the lexer always emits
	// NAME for them, and the parser recognizes them by the NAME's text in
	// context; they have no Kind of their own.
	FALSE
	NONE
	TRUE
	AND
	AS
	ASSERT
	ASYNC
	AWAIT
	BREAK
	CLASS
	CONTINUE
	DEF
	DEL
	ELIF
	ELSE
	EXCEPT
	FINALLY
	FOR
	FROM
	GLOBAL
	IF
	IMPORT
	IN
	IS
	LAMBDA
	NONLOCAL
	NOT
	OR
	PASS
	RAISE
	RETURN
	TRY
	WHILE
	WITH
	YIELD

	// Operators and delimiters.
	LPAR
	RPAR
	LSQB
	RSQB
	LBRACE
	RBRACE
	COLON
	COMMA
	SEMI
	PLUS
	MINUS
	STAR
	DOUBLESTAR
	SLASH
	DOUBLESLASH
	PERCENT
	AT
	AMPER
	VBAR
	CIRCUMFLEX
	TILDE
	LSHIFT
	RSHIFT
	DOT
	ELLIPSIS
	RARROW
	COLONEQUAL // walrus :=

	EQUAL
	PLUSEQUAL
	MINEQUAL
	STAREQUAL
	SLASHEQUAL
	DOUBLESLASHEQUAL
	PERCENTEQUAL
	AMPEREQUAL
	VBAREQUAL
	CIRCUMFLEXEQUAL
	LSHIFTEQUAL
	RSHIFTEQUAL
	DOUBLESTAREQUAL
	ATEQUAL

	EQEQUAL
	NOTEQUAL
	LESS
	LESSEQUAL
	GREATER
	GREATEREQUAL

	QUESTION // notebook-mode help escape `?`
	IPYNB_ESCAPE_COMMAND

	// Two-token comparison operators, synthesized by the parser (the
	// lexer emits NOT+IN / IS+NOT); they exist so a compare-chain can
	// record its operators as plain Kinds.
	NOTIN
	ISNOT

	kindEnd
)

var kindNames = [...]string{
	ERROR: "ERROR", EOF: "EOF",
	NEWLINE: "NEWLINE", INDENT: "INDENT", DEDENT: "DEDENT",
	NAME: "NAME", NUMBER: "NUMBER", STRING: "STRING",
	FSTRING_START: "FSTRING_START", FSTRING_MIDDLE: "FSTRING_MIDDLE", FSTRING_END: "FSTRING_END",
	FALSE: "False", NONE: "None", TRUE: "True",
	AND: "and", AS: "as", ASSERT: "assert", ASYNC: "async", AWAIT: "await",
	BREAK: "break", CLASS: "class", CONTINUE: "continue", DEF: "def", DEL: "del",
	ELIF: "elif", ELSE: "else", EXCEPT: "except", FINALLY: "finally", FOR: "for",
	FROM: "from", GLOBAL: "global", IF: "if", IMPORT: "import", IN: "in", IS: "is",
	LAMBDA: "lambda", NONLOCAL: "nonlocal", NOT: "not", OR: "or", PASS: "pass",
	RAISE: "raise", RETURN: "return", TRY: "try", WHILE: "while", WITH: "with", YIELD: "yield",
	LPAR: "(", RPAR: ")", LSQB: "[", RSQB: "]", LBRACE: "{", RBRACE: "}",
	COLON: ":", COMMA: ",", SEMI: ";",
	PLUS: "+", MINUS: "-", STAR: "*", DOUBLESTAR: "**", SLASH: "/", DOUBLESLASH: "//",
	PERCENT: "%", AT: "@", AMPER: "&", VBAR: "|", CIRCUMFLEX: "^", TILDE: "~",
	LSHIFT: "<<", RSHIFT: ">>", DOT: ".", ELLIPSIS: "...", RARROW: "->", COLONEQUAL: ":=",
	EQUAL: "=", PLUSEQUAL: "+=", MINEQUAL: "-=", STAREQUAL: "*=", SLASHEQUAL: "/=",
	DOUBLESLASHEQUAL: "//=", PERCENTEQUAL: "%=", AMPEREQUAL: "&=", VBAREQUAL: "|=",
	CIRCUMFLEXEQUAL: "^=", LSHIFTEQUAL: "<<=", RSHIFTEQUAL: ">>=", DOUBLESTAREQUAL: "**=",
	ATEQUAL: "@=",
	EQEQUAL: "==", NOTEQUAL: "!=", LESS: "<", LESSEQUAL: "<=", GREATER: ">", GREATEREQUAL: ">=",
	QUESTION: "?", IPYNB_ESCAPE_COMMAND: "IPYNB_ESCAPE_COMMAND",
	NOTIN: "not in", ISNOT: "is not",
}

// keywords maps reserved lowercase spellings to their Kind. Soft keywords
// (match, case, type, _) are deliberately absent: the lexer always yields
// NAME for them.
var keywords = map[string]Kind{
	"False": FALSE, "None": NONE, "True": TRUE,
	"and": AND, "as": AS, "assert": ASSERT, "async": ASYNC, "await": AWAIT,
	"break": BREAK, "class": CLASS, "continue": CONTINUE, "def": DEF, "del": DEL,
	"elif": ELIF, "else": ELSE, "except": EXCEPT, "finally": FINALLY, "for": FOR,
	"from": FROM, "global": GLOBAL, "if": IF, "import": IMPORT, "in": IN, "is": IS,
	"lambda": LAMBDA, "nonlocal": NONLOCAL, "not": NOT, "or": OR, "pass": PASS,
	"raise": RAISE, "return": RETURN, "try": TRY, "while": WHILE, "with": WITH, "yield": YIELD,
}

// augassignKinds is the set of augmented-assignment operators.
var augassignKinds = map[Kind]bool{
	PLUSEQUAL: true, MINEQUAL: true, STAREQUAL: true, SLASHEQUAL: true,
	DOUBLESLASHEQUAL: true, PERCENTEQUAL: true, AMPEREQUAL: true, VBAREQUAL: true,
	CIRCUMFLEXEQUAL: true, LSHIFTEQUAL: true, RSHIFTEQUAL: true, DOUBLESTAREQUAL: true,
	ATEQUAL: true,
}

// IsValid reports whether k is within the declared enumeration bounds.
func (k Kind) IsValid() bool {
	return k > kindBegin && k < kindEnd
}

func (k Kind) ensureValid() {
	if !k.IsValid() {
		panic("token: invalid Kind " + strconv.Itoa(int(k)))
	}
}

// Name returns the canonical spelling used in diagnostics and tests.
func (k Kind) Name() string {
	k.ensureValid()
	if name := kindNames[k]; name != "" {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) String() string {
	return k.Name()
}

// Is reports k == other; reads slightly better at call sites than ==.
func (k Kind) Is(other Kind) bool {
	return k == other
}

// IsAugAssign reports whether k is an augmented-assignment operator.
func (k Kind) IsAugAssign() bool {
	return augassignKinds[k]
}

// KeywordOrName returns the Kind a NAME-shaped identifier should carry:
// its reserved-keyword Kind if name is a hard keyword, else NAME. Soft
// keywords always resolve to NAME here; the parser recognizes them by
// their text.
func KeywordOrName(name string) Kind {
	if k, ok := keywords[name]; ok {
		return k
	}
	return NAME
}

// IsHardKeyword reports whether name is a reserved word that can never be
// used as an identifier.
func IsHardKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}
