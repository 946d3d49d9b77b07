// Package parser implements the expression and statement grammars from
// spec.md §4.2 and §4.3: a hand-written recursive-descent parser over
// an internal/template/lexer.Cursor, emitting ast nodes into a
// pkg/blueprint/pool.ExprPool.
package parser

import (
	"fmt"
	"strconv"

	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/internal/template/lexer"
	"github.com/corvidae/fluxui/internal/template/token"
	"github.com/corvidae/fluxui/pkg/blueprint/pool"
	"github.com/corvidae/fluxui/pkg/perr"
)

// ExprParser parses expressions per the precedence table in spec.md
// §4.2 (low to high): either, ||, &&, equality, additive, multiplicative,
// unary, postfix, primary.
type ExprParser struct {
	cur    *lexer.Cursor
	exprs  *pool.ExprPool
	source string
}

// NewExprParser builds a parser over an already-positioned cursor,
// writing into exprs.
func NewExprParser(cur *lexer.Cursor, exprs *pool.ExprPool, source string) *ExprParser {
	return &ExprParser{cur: cur, exprs: exprs, source: source}
}

func (p *ExprParser) errf(pos token.Pos, err error) error {
	return perr.New(perr.KindParse, p.source, int(pos), err)
}

// Parse parses one full expression from the current cursor position,
// including the pipe-joined bitflag-set form used by attribute values
// like `sides: top | left | bottom` (spec.md §8 scenario 6).
func (p *ExprParser) Parse() (ast.Idx, error) {
	first, err := p.parseEither()
	if err != nil {
		return 0, err
	}
	if p.cur.Peek().Kind != token.Pipe {
		return first, nil
	}
	items := []ast.Idx{first}
	for p.cur.Peek().Kind == token.Pipe {
		pipePos := p.cur.Peek().Pos
		p.cur.Next()
		switch p.cur.Peek().Kind {
		case token.Newline, token.EOF, token.RBracket, token.Comma:
			return 0, p.errf(pipePos, fmt.Errorf("%w: trailing pipe", perr.ErrUnexpectedToken))
		}
		next, err := p.parseEither()
		if err != nil {
			return 0, err
		}
		items = append(items, next)
	}
	return p.exprs.Add(ast.Expr{Kind: ast.ExprBitOr, Items: items}), nil
}

// parseEither implements the right-associative `a ? b` fallback chain
// (spec.md §4.2, and SPEC_FULL.md §12 for chains of more than two arms).
func (p *ExprParser) parseEither() (ast.Idx, error) {
	lhs, err := p.parseOr()
	if err != nil {
		return 0, err
	}
	if p.cur.Peek().Kind == token.Question {
		p.cur.Next()
		rhs, err := p.parseEither()
		if err != nil {
			return 0, err
		}
		return p.exprs.Add(ast.Expr{Kind: ast.ExprEither, A: lhs, B: rhs}), nil
	}
	return lhs, nil
}

func (p *ExprParser) parseOr() (ast.Idx, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return 0, err
	}
	for p.cur.Peek().Kind == token.OrOr {
		p.cur.Next()
		rhs, err := p.parseAnd()
		if err != nil {
			return 0, err
		}
		lhs = p.exprs.Add(ast.Expr{Kind: ast.ExprLogical, A: lhs, B: rhs, Logical: ast.Or})
	}
	return lhs, nil
}

func (p *ExprParser) parseAnd() (ast.Idx, error) {
	lhs, err := p.parseEquality()
	if err != nil {
		return 0, err
	}
	for p.cur.Peek().Kind == token.AndAnd {
		p.cur.Next()
		rhs, err := p.parseEquality()
		if err != nil {
			return 0, err
		}
		lhs = p.exprs.Add(ast.Expr{Kind: ast.ExprLogical, A: lhs, B: rhs, Logical: ast.And})
	}
	return lhs, nil
}

var equalityKinds = map[token.Kind]ast.EqualityKind{
	token.Eq: ast.Eq, token.Neq: ast.Neq,
	token.Lt: ast.Lt, token.Lte: ast.Lte,
	token.Gt: ast.Gt, token.Gte: ast.Gte,
}

func (p *ExprParser) parseEquality() (ast.Idx, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return 0, err
	}
	for {
		kind, ok := equalityKinds[p.cur.Peek().Kind]
		if !ok {
			return lhs, nil
		}
		p.cur.Next()
		rhs, err := p.parseAdditive()
		if err != nil {
			return 0, err
		}
		lhs = p.exprs.Add(ast.Expr{Kind: ast.ExprEquality, A: lhs, B: rhs, Equality: kind})
	}
}

func (p *ExprParser) parseAdditive() (ast.Idx, error) {
	lhs, err := p.parseMultiplicative()
	if err != nil {
		return 0, err
	}
	for {
		var op ast.OpKind
		switch p.cur.Peek().Kind {
		case token.Plus:
			op = ast.Add
		case token.Minus:
			op = ast.Sub
		default:
			return lhs, nil
		}
		p.cur.Next()
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return 0, err
		}
		lhs = p.exprs.Add(ast.Expr{Kind: ast.ExprOp, A: lhs, B: rhs, Op: op})
	}
}

func (p *ExprParser) parseMultiplicative() (ast.Idx, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		var op ast.OpKind
		switch p.cur.Peek().Kind {
		case token.Star:
			op = ast.Mul
		case token.Slash:
			op = ast.Div
		case token.Percent:
			op = ast.Mod
		default:
			return lhs, nil
		}
		p.cur.Next()
		rhs, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		lhs = p.exprs.Add(ast.Expr{Kind: ast.ExprOp, A: lhs, B: rhs, Op: op})
	}
}

func (p *ExprParser) parseUnary() (ast.Idx, error) {
	switch p.cur.Peek().Kind {
	case token.Bang:
		p.cur.Next()
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.exprs.Add(ast.Expr{Kind: ast.ExprNot, A: operand}), nil
	case token.Minus:
		p.cur.Next()
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return p.exprs.Add(ast.Expr{Kind: ast.ExprNegative, A: operand}), nil
	default:
		return p.parsePostfix()
	}
}

func (p *ExprParser) parsePostfix() (ast.Idx, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.cur.Peek().Kind {
		case token.Dot:
			p.cur.Next()
			nameTok := p.cur.Peek()
			if nameTok.Kind != token.Ident {
				return 0, p.errf(nameTok.Pos, perr.ErrInvalidPath)
			}
			p.cur.Next()
			key := p.exprs.Add(ast.Expr{Kind: ast.ExprString, Str: nameTok.Text})
			base = p.exprs.Add(ast.Expr{Kind: ast.ExprIndex, A: base, B: key})
		case token.LBracket:
			p.cur.Next()
			keyExpr, err := p.Parse()
			if err != nil {
				return 0, err
			}
			if p.cur.Peek().Kind != token.RBracket {
				return 0, p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
			}
			p.cur.Next()
			base = p.exprs.Add(ast.Expr{Kind: ast.ExprIndex, A: base, B: keyExpr})
		default:
			return base, nil
		}
	}
}

func (p *ExprParser) parsePrimary() (ast.Idx, error) {
	t := p.cur.Peek()
	switch t.Kind {
	case token.Int:
		p.cur.Next()
		v, _ := strconv.ParseInt(t.Text, 10, 64)
		return p.exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveInt, Int: v}), nil
	case token.Float:
		p.cur.Next()
		v, _ := strconv.ParseFloat(t.Text, 64)
		return p.exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveFloat, Float: v}), nil
	case token.Bool:
		p.cur.Next()
		return p.exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveBool, Bool: t.Text == "true"}), nil
	case token.HexColor:
		p.cur.Next()
		return p.exprs.Add(ast.Expr{Kind: ast.ExprPrimitiveHex, Hex: expandHex(t.Text)}), nil
	case token.String:
		p.cur.Next()
		return p.parseTextSegmentsFrom(t.Text)
	case token.Ident:
		p.cur.Next()
		return p.exprs.Add(ast.Expr{Kind: ast.ExprIdent, Ident: t.Text}), nil
	case token.LParen:
		p.cur.Next()
		inner, err := p.Parse()
		if err != nil {
			return 0, err
		}
		if p.cur.Peek().Kind != token.RParen {
			return 0, p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
		}
		p.cur.Next()
		return inner, nil
	case token.LBrace:
		return p.parseMap()
	case token.LBracket:
		return p.parseList()
	default:
		return 0, p.errf(t.Pos, fmt.Errorf("%w: expected expression, got %s", perr.ErrUnexpectedToken, t.Kind))
	}
}

func (p *ExprParser) parseList() (ast.Idx, error) {
	p.cur.Next() // '['
	var items []ast.Idx
	for p.cur.Peek().Kind != token.RBracket {
		item, err := p.Parse()
		if err != nil {
			return 0, err
		}
		items = append(items, item)
		if p.cur.Peek().Kind == token.Comma {
			p.cur.Next()
			continue
		}
		break
	}
	if p.cur.Peek().Kind != token.RBracket {
		return 0, p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	return p.exprs.Add(ast.Expr{Kind: ast.ExprList, Items: items}), nil
}

func (p *ExprParser) parseMap() (ast.Idx, error) {
	p.cur.Next() // '{'
	var keys []string
	var vals []ast.Idx
	for p.cur.Peek().Kind != token.RBrace {
		keyTok := p.cur.Peek()
		if keyTok.Kind != token.Ident && keyTok.Kind != token.String {
			return 0, p.errf(keyTok.Pos, perr.ErrUnexpectedToken)
		}
		p.cur.Next()
		if p.cur.Peek().Kind != token.Colon {
			return 0, p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
		}
		p.cur.Next()
		val, err := p.Parse()
		if err != nil {
			return 0, err
		}
		keys = append(keys, keyTok.Text)
		vals = append(vals, val)
		if p.cur.Peek().Kind == token.Comma {
			p.cur.Next()
			continue
		}
		break
	}
	if p.cur.Peek().Kind != token.RBrace {
		return 0, p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	return p.exprs.Add(ast.Expr{Kind: ast.ExprMap, MapKeys: keys, MapVals: vals}), nil
}

// parseTextSegmentsFrom handles `{{ expr }}` interpolation embedded in a
// string literal. The lexer returns the whole quoted literal as one
// String token; this walks its text looking for `{{ … }}` spans and, if
// none are found, returns a plain ExprString. If any are found, it
// emits an ExprTextSegments node whose children alternate literal text
// and embedded expressions (spec.md §4.2 "Text segments"). The scan is
// minimal: each `{{` is closed by the next `}}`, and escaped or nested
// braces are not recognised.
func (p *ExprParser) parseTextSegmentsFrom(raw string) (ast.Idx, error) {
	segs, hasInterp, err := splitInterpolation(raw)
	if err != nil {
		return 0, err
	}
	if !hasInterp {
		return p.exprs.Add(ast.Expr{Kind: ast.ExprString, Str: raw}), nil
	}
	var items []ast.Idx
	for _, seg := range segs {
		if seg.isExpr {
			cur, err := lexer.NewCursor(seg.text)
			if err != nil {
				return 0, err
			}
			sub := NewExprParser(cur, p.exprs, seg.text)
			idx, err := sub.Parse()
			if err != nil {
				return 0, err
			}
			items = append(items, idx)
		} else {
			items = append(items, p.exprs.Add(ast.Expr{Kind: ast.ExprString, Str: seg.text}))
		}
	}
	return p.exprs.Add(ast.Expr{Kind: ast.ExprTextSegments, Items: items}), nil
}

type textSeg struct {
	text   string
	isExpr bool
}

func splitInterpolation(raw string) ([]textSeg, bool, error) {
	var segs []textSeg
	found := false
	i := 0
	for i < len(raw) {
		start := indexFrom(raw, "{{", i)
		if start == -1 {
			segs = append(segs, textSeg{text: raw[i:]})
			break
		}
		if start > i {
			segs = append(segs, textSeg{text: raw[i:start]})
		}
		end := indexFrom(raw, "}}", start+2)
		if end == -1 {
			return nil, false, perr.New(perr.KindParse, raw, start, perr.ErrUnexpectedToken)
		}
		found = true
		segs = append(segs, textSeg{text: raw[start+2 : end], isExpr: true})
		i = end + 2
	}
	return segs, found, nil
}

func indexFrom(s, sub string, from int) int {
	if from > len(s) {
		return -1
	}
	idx := -1
	for j := from; j+len(sub) <= len(s); j++ {
		if s[j:j+len(sub)] == sub {
			idx = j
			break
		}
	}
	return idx
}

// expandHex normalizes a 3-digit hex color to its 6-digit form by
// doubling each nibble (SPEC_FULL.md §12).
func expandHex(digits string) string {
	if len(digits) != 3 {
		return digits
	}
	out := make([]byte, 0, 6)
	for _, c := range []byte(digits) {
		out = append(out, c, c)
	}
	return string(out)
}
