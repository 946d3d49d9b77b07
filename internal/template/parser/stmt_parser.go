package parser

import (
	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/internal/template/lexer"
	"github.com/corvidae/fluxui/internal/template/token"
	"github.com/corvidae/fluxui/pkg/blueprint/pool"
	"github.com/corvidae/fluxui/pkg/perr"
)

// StmtParser drives the line-oriented, indentation-delimited state
// machine of spec.md §4.3, producing a flat ast.Stmt stream plus the
// expression pool those statements reference.
type StmtParser struct {
	cur    *lexer.Cursor
	exprs  *pool.ExprPool
	source string

	indents []int // open scope indents; indents[0] is the discovered base indent
	baseSet bool

	out []ast.Stmt
}

// Parse tokenizes and parses source in full, returning the flat
// statement stream (including an EOF statement) and the expression
// pool it references.
func Parse(source string) ([]ast.Stmt, *pool.ExprPool, error) {
	cur, err := lexer.NewCursor(source)
	if err != nil {
		return nil, nil, err
	}
	p := &StmtParser{cur: cur, exprs: pool.NewExprPool(), source: source}
	if err := p.run(); err != nil {
		return nil, nil, err
	}
	return p.out, p.exprs, nil
}

func (p *StmtParser) errf(pos token.Pos, err error) error {
	return perr.New(perr.KindParse, p.source, int(pos), err)
}

func (p *StmtParser) emit(s ast.Stmt) { p.out = append(p.out, s) }

func (p *StmtParser) exprParser() *ExprParser { return NewExprParser(p.cur, p.exprs, p.source) }

func (p *StmtParser) run() error {
	for {
		p.skipBlankLines()
		if p.cur.Peek().Kind == token.EOF {
			break
		}
		if err := p.handleLine(); err != nil {
			return err
		}
	}
	// indents[0] is the base indent, which never opened a scope.
	for len(p.indents) > 1 {
		p.emit(ast.Stmt{Kind: ast.StmtScopeEnd})
		p.indents = p.indents[:len(p.indents)-1]
	}
	p.emit(ast.Stmt{Kind: ast.StmtEOF})
	return nil
}

func (p *StmtParser) skipBlankLines() {
	for p.cur.Peek().Kind == token.Newline {
		p.cur.Next()
	}
}

// handleLine consumes one logical line's leading Indent token,
// adjusts the open-scope stack, and dispatches to the right statement
// handler.
func (p *StmtParser) handleLine() error {
	indentTok := p.cur.Peek()
	width := 0
	if indentTok.Kind == token.Indent {
		p.cur.Next()
		width = parseIndentWidth(indentTok.Text)
	}

	if !p.baseSet {
		p.indents = append(p.indents, width)
		p.baseSet = true
	} else {
		top := p.indents[len(p.indents)-1]
		if width > top {
			p.indents = append(p.indents, width)
			p.emit(ast.Stmt{Kind: ast.StmtScopeStart})
		} else if width < top {
			for len(p.indents) > 0 && width < p.indents[len(p.indents)-1] {
				p.indents = p.indents[:len(p.indents)-1]
				p.emit(ast.Stmt{Kind: ast.StmtScopeEnd})
			}
			if len(p.indents) == 0 || p.indents[len(p.indents)-1] != width {
				return p.errf(indentTok.Pos, perr.ErrInvalidUnindent)
			}
		}
	}

	if err := p.parseStatement(); err != nil {
		return err
	}
	return p.expectLineEnd()
}

func parseIndentWidth(text string) int {
	n := 0
	for _, c := range text {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// expectLineEnd requires the current line be finished (Newline or EOF),
// per spec.md §4.3 "trailing tokens ... are an error".
func (p *StmtParser) expectLineEnd() error {
	t := p.cur.Peek()
	if t.Kind == token.Newline {
		p.cur.Next()
		return nil
	}
	if t.Kind == token.EOF {
		return nil
	}
	return p.errf(t.Pos, perr.ErrTrailingTokens)
}

func (p *StmtParser) parseStatement() error {
	t := p.cur.Peek()
	switch t.Kind {
	case token.KwFor:
		return p.parseFor()
	case token.KwIf:
		return p.parseIf()
	case token.KwElse:
		return p.parseElse()
	case token.KwSwitch:
		return p.parseSwitch()
	case token.KwCase:
		return p.parseCase()
	case token.KwDefault:
		return p.parseDefault()
	case token.KwWith:
		return p.parseWith()
	case token.KwLet:
		return p.parseDeclaration(ast.ScopeLocal)
	case token.KwGlobal:
		return p.parseDeclaration(ast.ScopeGlobal)
	case token.ComponentMarker:
		return p.parseComponent()
	case token.SlotMarker:
		return p.parseSlot()
	case token.Ident:
		return p.parseNode()
	default:
		return p.errf(t.Pos, perr.ErrUnexpectedToken)
	}
}

func (p *StmtParser) parseFor() error {
	p.cur.Next() // for
	bindTok := p.cur.Peek()
	if bindTok.Kind != token.Ident {
		return p.errf(bindTok.Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	if p.cur.Peek().Kind != token.KwIn {
		return p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	idx, err := p.exprParser().Parse()
	if err != nil {
		return err
	}
	p.emit(ast.Stmt{Kind: ast.StmtFor, Binding: bindTok.Text, Expr: idx})
	return nil
}

func (p *StmtParser) parseIf() error {
	p.cur.Next() // if
	idx, err := p.exprParser().Parse()
	if err != nil {
		return err
	}
	p.emit(ast.Stmt{Kind: ast.StmtIf, Expr: idx})
	return nil
}

func (p *StmtParser) parseElse() error {
	p.cur.Next() // else
	if p.cur.Peek().Kind == token.KwIf {
		p.cur.Next()
		idx, err := p.exprParser().Parse()
		if err != nil {
			return err
		}
		p.emit(ast.Stmt{Kind: ast.StmtElse, Expr: idx, HasExpr: true})
		return nil
	}
	p.emit(ast.Stmt{Kind: ast.StmtElse})
	return nil
}

func (p *StmtParser) parseSwitch() error {
	p.cur.Next() // switch
	idx, err := p.exprParser().Parse()
	if err != nil {
		return err
	}
	p.emit(ast.Stmt{Kind: ast.StmtSwitch, Expr: idx})
	return nil
}

// parseCase and parseDefault support an inline single-statement body
// after the colon (spec.md §4.3): if one follows on the same line, it
// is wrapped in its own synthetic scope so the blueprint builder sees
// the same shape as an indented block.
func (p *StmtParser) parseCase() error {
	p.cur.Next() // case
	idx, err := p.exprParser().Parse()
	if err != nil {
		return err
	}
	if p.cur.Peek().Kind != token.Colon {
		return p.errf(p.cur.Peek().Pos, perr.ErrUnterminatedCase)
	}
	p.cur.Next()
	p.emit(ast.Stmt{Kind: ast.StmtCase, Expr: idx})
	return p.parseOptionalInlineBody()
}

func (p *StmtParser) parseDefault() error {
	p.cur.Next() // default
	if p.cur.Peek().Kind != token.Colon {
		return p.errf(p.cur.Peek().Pos, perr.ErrUnterminatedCase)
	}
	p.cur.Next()
	p.emit(ast.Stmt{Kind: ast.StmtDefault})
	return p.parseOptionalInlineBody()
}

func (p *StmtParser) parseOptionalInlineBody() error {
	if p.cur.Peek().Kind == token.Newline || p.cur.Peek().Kind == token.EOF {
		return nil
	}
	p.emit(ast.Stmt{Kind: ast.StmtScopeStart})
	if err := p.parseStatement(); err != nil {
		return err
	}
	p.emit(ast.Stmt{Kind: ast.StmtScopeEnd})
	return nil
}

func (p *StmtParser) parseWith() error {
	p.cur.Next() // with
	bindTok := p.cur.Peek()
	if bindTok.Kind != token.Ident {
		return p.errf(bindTok.Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	if p.cur.Peek().Kind != token.KwAs {
		return p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	idx, err := p.exprParser().Parse()
	if err != nil {
		return err
	}
	p.emit(ast.Stmt{Kind: ast.StmtWith, Binding: bindTok.Text, Expr: idx})
	return nil
}

func (p *StmtParser) parseDeclaration(scope ast.DeclScope) error {
	p.cur.Next() // let/global
	nameTok := p.cur.Peek()
	if nameTok.Kind != token.Ident {
		return p.errf(nameTok.Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	if p.cur.Peek().Kind != token.Assign {
		return p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	idx, err := p.exprParser().Parse()
	if err != nil {
		return err
	}
	p.emit(ast.Stmt{Kind: ast.StmtDeclaration, DeclName: nameTok.Text, DeclScope: scope, Expr: idx})
	return nil
}

func (p *StmtParser) parseSlot() error {
	p.cur.Next() // $
	nameTok := p.cur.Peek()
	if nameTok.Kind != token.Ident {
		return p.errf(nameTok.Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()
	p.emit(ast.Stmt{Kind: ast.StmtComponentSlot, Name: nameTok.Text})
	return nil
}

func (p *StmtParser) parseComponent() error {
	p.cur.Next() // @
	nameTok := p.cur.Peek()
	if nameTok.Kind != token.Ident {
		return p.errf(nameTok.Pos, perr.ErrUnexpectedToken)
	}
	p.cur.Next()

	var assocs []ast.Association
	if p.cur.Peek().Kind == token.LParen {
		p.cur.Next()
		seen := map[string]bool{}
		for p.cur.Peek().Kind != token.RParen {
			if p.cur.Peek().Kind == token.EOF || p.cur.Peek().Kind == token.Newline {
				return p.errf(p.cur.Peek().Pos, perr.ErrUnterminatedAssocList)
			}
			internalTok := p.cur.Peek()
			if internalTok.Kind != token.Ident {
				return p.errf(internalTok.Pos, perr.ErrUnexpectedToken)
			}
			p.cur.Next()
			if p.cur.Peek().Kind != token.Arrow {
				return p.errf(p.cur.Peek().Pos, perr.ErrUnexpectedToken)
			}
			p.cur.Next()
			externalTok := p.cur.Peek()
			if externalTok.Kind != token.Ident {
				return p.errf(externalTok.Pos, perr.ErrUnexpectedToken)
			}
			p.cur.Next()
			if seen[externalTok.Text] {
				return p.errf(externalTok.Pos, perr.ErrDuplicateAssociation)
			}
			seen[externalTok.Text] = true
			assocs = append(assocs, ast.Association{Internal: internalTok.Text, External: externalTok.Text})
			if p.cur.Peek().Kind == token.Comma {
				p.cur.Next()
				continue
			}
			break
		}
		if p.cur.Peek().Kind != token.RParen {
			return p.errf(p.cur.Peek().Pos, perr.ErrUnterminatedAssocList)
		}
		p.cur.Next()
	}

	p.emit(ast.Stmt{Kind: ast.StmtComponent, Name: nameTok.Text, Associations: assocs})
	return p.parseOptionalValue()
}

func (p *StmtParser) parseNode() error {
	nameTok := p.cur.Peek()
	p.cur.Next()
	p.emit(ast.Stmt{Kind: ast.StmtNode, Name: nameTok.Text})

	if p.cur.Peek().Kind == token.LBracket {
		if err := p.parseAttrList(); err != nil {
			return err
		}
	}
	return p.parseOptionalValue()
}

// parseAttrList parses `[key: expr, key: expr, …]`, tolerating newlines
// inside the brackets (spec.md §4.3: "the list may span multiple lines
// inside the brackets").
func (p *StmtParser) parseAttrList() error {
	p.cur.Next() // '['
	p.skipNewlinesInBrackets()
	for p.cur.Peek().Kind != token.RBracket {
		if p.cur.Peek().Kind == token.EOF {
			return p.errf(p.cur.Peek().Pos, perr.ErrUnterminatedAttrList)
		}
		keyTok := p.cur.Peek()
		if keyTok.Kind != token.Ident {
			return p.errf(keyTok.Pos, perr.ErrUnterminatedAttrList)
		}
		p.cur.Next()
		if p.cur.Peek().Kind != token.Colon {
			return p.errf(p.cur.Peek().Pos, perr.ErrUnterminatedAttrList)
		}
		p.cur.Next()
		p.skipNewlinesInBrackets()
		idx, err := p.exprParser().Parse()
		if err != nil {
			return err
		}
		p.emit(ast.Stmt{Kind: ast.StmtLoadAttribute, AttrKey: keyTok.Text, Expr: idx})
		p.skipNewlinesInBrackets()
		if p.cur.Peek().Kind == token.Comma {
			p.cur.Next()
			p.skipNewlinesInBrackets()
			continue
		}
		break
	}
	if p.cur.Peek().Kind != token.RBracket {
		return p.errf(p.cur.Peek().Pos, perr.ErrUnterminatedAttrList)
	}
	p.cur.Next()
	return nil
}

func (p *StmtParser) skipNewlinesInBrackets() {
	for p.cur.Peek().Kind == token.Newline || p.cur.Peek().Kind == token.Indent {
		p.cur.Next()
	}
}

// parseOptionalValue parses the remaining expressions on the line as a
// node's value: a single expression, or several concatenated into
// text-segments (spec.md §4.3).
func (p *StmtParser) parseOptionalValue() error {
	if p.cur.Peek().Kind == token.Newline || p.cur.Peek().Kind == token.EOF {
		return nil
	}
	var items []ast.Idx
	for p.cur.Peek().Kind != token.Newline && p.cur.Peek().Kind != token.EOF {
		idx, err := p.exprParser().Parse()
		if err != nil {
			return err
		}
		items = append(items, idx)
	}
	var value ast.Idx
	if len(items) == 1 {
		value = items[0]
	} else {
		value = p.exprs.Add(ast.Expr{Kind: ast.ExprTextSegments, Items: items})
	}
	p.emit(ast.Stmt{Kind: ast.StmtLoadValue, Expr: value})
	return nil
}
