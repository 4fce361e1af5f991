package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tangerg/pyflow/lexer"
	"github.com/Tangerg/pyflow/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeSimpleAssignment(t *testing.T) {
	tokens := lexer.Tokenize("x = 1\n")
	assert.Equal(t, []token.Kind{
		token.NAME, token.EQUAL, token.NUMBER, token.NEWLINE, token.EOF,
	}, kinds(tokens))
}

func TestIndentDedentPairing(t *testing.T) {
	src := "if a:\n    pass\nb\n"
	tokens := lexer.Tokenize(src)
	assert.Equal(t, []token.Kind{
		token.IF, token.NAME, token.COLON, token.NEWLINE,
		token.INDENT, token.PASS, token.NEWLINE, token.DEDENT,
		token.NAME, token.NEWLINE, token.EOF,
	}, kinds(tokens))
}

func TestNewlinesSuppressedInsideBrackets(t *testing.T) {
	tokens := lexer.Tokenize("f(\n    1,\n    2,\n)\n")
	for _, tok := range tokens[:len(tokens)-2] {
		assert.NotEqual(t, token.NEWLINE, tok.Kind, "no NEWLINE inside brackets")
		assert.NotEqual(t, token.INDENT, tok.Kind)
	}
}

func TestSoftKeywordsLexAsNames(t *testing.T) {
	tokens := lexer.Tokenize("match case type\n")
	for _, tok := range tokens[:3] {
		require.Equal(t, token.NAME, tok.Kind)
	}
}

func TestStringPayloads(t *testing.T) {
	tokens := lexer.Tokenize(`s = rb'\x00' + f"hi {name}"` + "\n")
	var strs []token.StringPayload
	for _, tok := range tokens {
		if tok.Kind == token.STRING {
			strs = append(strs, tok.Payload.(token.StringPayload))
		}
	}
	require.Len(t, strs, 2)
	assert.Equal(t, token.PrefixBytesRaw, strs[0].Prefix)
	assert.Equal(t, `\x00`, strs[0].Value, "raw literals keep escapes verbatim")
	assert.True(t, strs[1].IsFString)
	assert.Equal(t, "hi {name}", strs[1].RawBody)
}

func TestNumberPayloads(t *testing.T) {
	tokens := lexer.Tokenize("a = 0x1F\nb = 1_000.5\nc = 2e3j\n")
	var nums []token.NumberPayload
	for _, tok := range tokens {
		if tok.Kind == token.NUMBER {
			nums = append(nums, tok.Payload.(token.NumberPayload))
		}
	}
	require.Len(t, nums, 3)
	assert.Equal(t, "0x1F", nums[0].Literal)
	assert.True(t, nums[1].IsFloat)
	assert.True(t, nums[2].IsComplex)
}

func TestOperatorsLongestMatchWins(t *testing.T) {
	tokens := lexer.Tokenize("a **= b // c ... := ->\n")
	got := kinds(tokens)
	assert.Contains(t, got, token.DOUBLESTAREQUAL)
	assert.Contains(t, got, token.DOUBLESLASH)
	assert.Contains(t, got, token.ELLIPSIS)
	assert.Contains(t, got, token.COLONEQUAL)
	assert.Contains(t, got, token.RARROW)
}

func TestStreamCursor(t *testing.T) {
	s := lexer.NewStream("a + b\n")
	assert.Equal(t, token.NAME, s.CurrentKind())
	assert.Equal(t, token.PLUS, s.Peek())

	mark := s.Mark()
	first := s.Bump()
	assert.Equal(t, token.NAME, first.Kind)
	assert.Equal(t, first.Range, s.LastRange())

	s.Reset(mark)
	assert.Equal(t, token.NAME, s.CurrentKind())
	assert.Equal(t, "a + b", s.SrcText(token.NewRange(0, 5)))
	assert.Equal(t, 6, s.Len())
}

func TestUnterminatedStringFlagsInvalid(t *testing.T) {
	tokens := lexer.Tokenize("s = 'oops\n")
	var payload token.StringPayload
	found := false
	for _, tok := range tokens {
		if tok.Kind == token.STRING {
			payload = tok.Payload.(token.StringPayload)
			found = true
		}
	}
	require.True(t, found)
	assert.False(t, payload.Valid)
}
