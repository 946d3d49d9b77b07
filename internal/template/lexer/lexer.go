// Package lexer turns fluxui template source text into a token stream
// per spec.md §4.1. It runs eagerly over the whole source (no
// goroutine/channel handoff, unlike the text/template-style lexer it is
// grounded on) so that both the expression parser and the statement
// parser get the same simple one-token (and occasionally two-token)
// lookahead contract.
package lexer

import (
	"strconv"
	"strings"

	"github.com/corvidae/fluxui/internal/template/token"
	"github.com/corvidae/fluxui/pkg/perr"
)

// Lex tokenizes source in full and returns every token including a
// trailing EOF, or the first lexing error encountered.
func Lex(source string) ([]token.Token, error) {
	l := &scanner{src: source}
	var out []token.Token
	atLineStart := true
	for {
		if atLineStart {
			n, ok := l.scanIndent()
			if ok {
				out = append(out, token.Token{Kind: token.Indent, Text: strconv.Itoa(n), Pos: token.Pos(l.start)})
			}
			atLineStart = false
		}
		l.skipInlineSpace()
		if l.skipComment() {
			continue
		}
		if l.eof() {
			out = append(out, token.Token{Kind: token.EOF, Pos: token.Pos(l.pos)})
			return out, nil
		}
		c := l.peekByte()
		if c == '\n' {
			l.advance(1)
			out = append(out, token.Token{Kind: token.Newline, Pos: token.Pos(l.pos - 1)})
			atLineStart = true
			continue
		}
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
	}
}

type scanner struct {
	src   string
	pos   int
	start int
}

func (l *scanner) eof() bool { return l.pos >= len(l.src) }

func (l *scanner) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *scanner) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *scanner) advance(n int) { l.pos += n }

// scanIndent consumes leading horizontal whitespace at the start of a
// logical line and reports its width. A blank line (only whitespace
// then newline/EOF) does not emit an indent token.
func (l *scanner) scanIndent() (int, bool) {
	l.start = l.pos
	n := 0
	for !l.eof() && (l.peekByte() == ' ' || l.peekByte() == '\t') {
		n++
		l.advance(1)
	}
	if l.eof() || l.peekByte() == '\n' {
		return 0, false
	}
	return n, true
}

func (l *scanner) skipInlineSpace() {
	for !l.eof() && (l.peekByte() == ' ' || l.peekByte() == '\t') {
		l.advance(1)
	}
}

func (l *scanner) skipComment() bool {
	if l.peekByte() == '/' && l.peekAt(1) == '/' {
		for !l.eof() && l.peekByte() != '\n' {
			l.advance(1)
		}
		return true
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '|'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *scanner) scanToken() (token.Token, error) {
	start := l.pos
	c := l.peekByte()

	switch {
	case c == '"' || c == '\'':
		return l.scanString(c)
	case c == '#':
		return l.scanHex()
	case isDigit(c):
		return l.scanNumber()
	case isIdentStart(c):
		return l.scanIdent()
	}

	two := l.src[l.pos:min(l.pos+2, len(l.src))]
	switch two {
	case "==":
		l.advance(2)
		return token.Token{Kind: token.Eq, Pos: token.Pos(start)}, nil
	case "!=":
		l.advance(2)
		return token.Token{Kind: token.Neq, Pos: token.Pos(start)}, nil
	case "<=":
		l.advance(2)
		return token.Token{Kind: token.Lte, Pos: token.Pos(start)}, nil
	case ">=":
		l.advance(2)
		return token.Token{Kind: token.Gte, Pos: token.Pos(start)}, nil
	case "&&":
		l.advance(2)
		return token.Token{Kind: token.AndAnd, Pos: token.Pos(start)}, nil
	case "||":
		l.advance(2)
		return token.Token{Kind: token.OrOr, Pos: token.Pos(start)}, nil
	case "{{":
		l.advance(2)
		return token.Token{Kind: token.DoubleLBrace, Pos: token.Pos(start)}, nil
	case "}}":
		l.advance(2)
		return token.Token{Kind: token.DoubleRBrace, Pos: token.Pos(start)}, nil
	case "->":
		l.advance(2)
		return token.Token{Kind: token.Arrow, Pos: token.Pos(start)}, nil
	}

	single := map[byte]token.Kind{
		'(': token.LParen, ')': token.RParen,
		'[': token.LBracket, ']': token.RBracket,
		'{': token.LBrace, '}': token.RBrace,
		':': token.Colon, ',': token.Comma, '.': token.Dot,
		'|': token.Pipe, '?': token.Question, '!': token.Bang,
		'+': token.Plus, '-': token.Minus, '*': token.Star,
		'/': token.Slash, '%': token.Percent,
		'<': token.Lt, '>': token.Gt, '=': token.Assign,
		'@': token.ComponentMarker, '$': token.SlotMarker,
	}
	if kind, ok := single[c]; ok {
		l.advance(1)
		return token.Token{Kind: kind, Pos: token.Pos(start)}, nil
	}

	l.advance(1)
	return token.Token{}, perr.New(perr.KindLex, l.src, start, perr.ErrUnexpectedToken)
}

func (l *scanner) scanString(quote byte) (token.Token, error) {
	start := l.pos
	l.advance(1)
	var b strings.Builder
	for {
		if l.eof() {
			return token.Token{}, perr.New(perr.KindLex, l.src, start, perr.ErrUnterminatedString)
		}
		c := l.peekByte()
		if c == '\\' && l.peekAt(1) == quote {
			b.WriteByte(quote)
			l.advance(2)
			continue
		}
		if c == quote {
			l.advance(1)
			return token.Token{Kind: token.String, Text: b.String(), Pos: token.Pos(start)}, nil
		}
		b.WriteByte(c)
		l.advance(1)
	}
}

func (l *scanner) scanHex() (token.Token, error) {
	start := l.pos
	l.advance(1)
	s := l.pos
	for isHexDigit(l.peekByte()) {
		l.advance(1)
	}
	digits := l.src[s:l.pos]
	if len(digits) != 3 && len(digits) != 6 {
		return token.Token{}, perr.New(perr.KindLex, l.src, start, perr.ErrInvalidHex)
	}
	return token.Token{Kind: token.HexColor, Text: digits, Pos: token.Pos(start)}, nil
}

func (l *scanner) scanNumber() (token.Token, error) {
	start := l.pos
	s := l.pos
	for isDigit(l.peekByte()) {
		l.advance(1)
	}
	isFloat := false
	if l.peekByte() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.advance(1)
		for isDigit(l.peekByte()) {
			l.advance(1)
		}
	}
	text := l.src[s:l.pos]
	if isFloat {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return token.Token{}, perr.New(perr.KindLex, l.src, start, perr.ErrInvalidNumber)
		}
		return token.Token{Kind: token.Float, Text: text, Pos: token.Pos(start)}, nil
	}
	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return token.Token{}, perr.New(perr.KindLex, l.src, start, perr.ErrInvalidNumber)
	}
	return token.Token{Kind: token.Int, Text: text, Pos: token.Pos(start)}, nil
}

func (l *scanner) scanIdent() (token.Token, error) {
	start := l.pos
	for isIdentCont(l.peekByte()) {
		l.advance(1)
	}
	text := l.src[start:l.pos]
	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind, Text: text, Pos: token.Pos(start)}, nil
	}
	return token.Token{Kind: token.Ident, Text: text, Pos: token.Pos(start)}, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
