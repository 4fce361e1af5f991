package lexer

import "github.com/Tangerg/pyflow/token"

// Stream adapts a pre-tokenized slice to the cursor shape the parser
// consumes: current kind/range, one-token bump, one-token
// peek, and a src_text accessor for reconstructing dotted-name
// concatenations and escape-command bodies from the original buffer.
type Stream struct {
	src    string
	tokens []token.Token
	pos    int
	last   token.Range
}

// NewStream builds a Stream over src's full token sequence.
func NewStream(src string) *Stream {
	return &Stream{src: src, tokens: Tokenize(src)}
}

// NewStreamFromTokens builds a Stream over an already-tokenized sequence,
// for callers (tests chiefly) that construct tokens directly.
func NewStreamFromTokens(src string, tokens []token.Token) *Stream {
	return &Stream{src: src, tokens: tokens}
}

func (s *Stream) tokAt(i int) token.Token {
	if i >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1] // EOF
	}
	return s.tokens[i]
}

// CurrentKind returns the kind of the token under the cursor.
func (s *Stream) CurrentKind() token.Kind { return s.tokAt(s.pos).Kind }

// CurrentRange returns the range of the token under the cursor.
func (s *Stream) CurrentRange() token.Range { return s.tokAt(s.pos).Range }

// CurrentPayload returns the payload of the token under the cursor.
func (s *Stream) CurrentPayload() any { return s.tokAt(s.pos).Payload }

// Peek returns the kind one token beyond the cursor, without consuming.
func (s *Stream) Peek() token.Kind { return s.tokAt(s.pos + 1).Kind }

// PeekRange returns the range one token beyond the cursor.
func (s *Stream) PeekRange() token.Range { return s.tokAt(s.pos + 1).Range }

// At reports whether the current token has the given kind.
func (s *Stream) At(k token.Kind) bool { return s.CurrentKind() == k }

// AtAny reports whether the current token's kind is a member of set.
func (s *Stream) AtAny(set token.Set) bool { return set.Contains(s.CurrentKind()) }

// Bump consumes the current token and returns its payload and range.
// The caller is expected to have already checked the kind.
func (s *Stream) Bump() token.Token {
	t := s.tokAt(s.pos)
	s.last = t.Range
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	return t
}

// LastRange returns the range of the most recently consumed token, used
// to compute a just-finished construct's full extent (e.g. covering a
// simple statement from its first token through its last).
func (s *Stream) LastRange() token.Range { return s.last }

// SrcText returns the raw source text covered by r.
func (s *Stream) SrcText(r token.Range) string {
	if r.Start < 0 || r.End > len(s.src) || r.Start > r.End {
		return ""
	}
	return s.src[r.Start:r.End]
}

// Mark returns an opaque cursor position for snapshot/restore during
// ambiguous-construct backtracking.
func (s *Stream) Mark() int { return s.pos }

// Reset restores the cursor to a position previously returned by Mark.
func (s *Stream) Reset(mark int) { s.pos = mark }

// Len reports the source buffer length, used to build the Module's
// full-coverage range.
func (s *Stream) Len() int { return len(s.src) }
