package lexer

import "github.com/corvidae/fluxui/internal/template/token"

// Cursor is a read cursor over a pre-lexed token slice, giving both the
// expression parser and the statement parser the same lookahead
// contract (spec.md §9 Open Question (a)): at minimum Peek(), and
// PeekN for looking further ahead without consuming.
type Cursor struct {
	tokens []token.Token
	pos    int
}

// NewCursor lexes source and returns a Cursor over its tokens, or the
// first lex error.
func NewCursor(source string) (*Cursor, error) {
	toks, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return &Cursor{tokens: toks}, nil
}

// Peek returns the current token without consuming it.
func (c *Cursor) Peek() token.Token { return c.PeekN(0) }

// PeekN returns the token n positions ahead of the cursor (0 = current).
// Past EOF it keeps returning the EOF token.
func (c *Cursor) PeekN(n int) token.Token {
	idx := c.pos + n
	if idx >= len(c.tokens) {
		return c.tokens[len(c.tokens)-1]
	}
	return c.tokens[idx]
}

// Next consumes and returns the current token.
func (c *Cursor) Next() token.Token {
	t := c.Peek()
	if c.pos < len(c.tokens)-1 {
		c.pos++
	}
	return t
}

// AtEOF reports whether the cursor is positioned at the final EOF token.
func (c *Cursor) AtEOF() bool { return c.Peek().Kind == token.EOF }
