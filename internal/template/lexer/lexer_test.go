package lexer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/internal/template/lexer"
	"github.com/corvidae/fluxui/internal/template/token"
	"github.com/corvidae/fluxui/pkg/perr"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexEmptySourceReturnsOnlyEOF(t *testing.T) {
	toks, err := lexer.Lex("")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.EOF}, kinds(toks))
}

func TestLexIdentifierAndKeywords(t *testing.T) {
	toks, err := lexer.Lex("for in if else switch case default with as let global widget")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Indent,
		token.KwFor, token.KwIn, token.KwIf, token.KwElse, token.KwSwitch,
		token.KwCase, token.KwDefault, token.KwWith, token.KwAs, token.KwLet,
		token.KwGlobal, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestLexStringLiteralUnescapesQuote(t *testing.T) {
	toks, err := lexer.Lex(`"say \"hi\""`)
	require.NoError(t, err)
	require.Equal(t, token.Indent, toks[0].Kind)
	require.Equal(t, token.String, toks[1].Kind)
	assert.Equal(t, `say "hi"`, toks[1].Text)
}

func TestLexUnterminatedStringIsLexError(t *testing.T) {
	_, err := lexer.Lex(`"unterminated`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, perr.ErrUnterminatedString))
}

func TestLexIntAndFloatLiterals(t *testing.T) {
	toks, err := lexer.Lex("42 3.14")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.Indent, toks[0].Kind)
	assert.Equal(t, token.Int, toks[1].Kind)
	assert.Equal(t, "42", toks[1].Text)
	assert.Equal(t, token.Float, toks[2].Kind)
	assert.Equal(t, "3.14", toks[2].Text)
}

func TestLexHexColorRequiresThreeOrSixDigits(t *testing.T) {
	toks, err := lexer.Lex("#fff #ff00ff")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	require.Equal(t, token.HexColor, toks[1].Kind)
	assert.Equal(t, "fff", toks[1].Text)
	assert.Equal(t, token.HexColor, toks[2].Kind)
	assert.Equal(t, "ff00ff", toks[2].Text)

	_, err = lexer.Lex("#ff")
	require.Error(t, err)
	assert.True(t, errors.Is(err, perr.ErrInvalidHex))
}

func TestLexOperatorsTwoCharBeforeOneChar(t *testing.T) {
	toks, err := lexer.Lex("== != <= >= && || -> = < >")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Indent,
		token.Eq, token.Neq, token.Lte, token.Gte, token.AndAnd, token.OrOr,
		token.Arrow, token.Assign, token.Lt, token.Gt, token.EOF,
	}, kinds(toks))
}

func TestLexMarkersAndBraces(t *testing.T) {
	toks, err := lexer.Lex("@card $slot {{ expr }}")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Indent,
		token.ComponentMarker, token.Ident, token.SlotMarker, token.Ident,
		token.DoubleLBrace, token.Ident, token.DoubleRBrace, token.EOF,
	}, kinds(toks))
}

func TestLexIndentEmittedOncePerNonBlankLine(t *testing.T) {
	toks, err := lexer.Lex("box\n  text \"a\"\n\n  text \"b\"\n")
	require.NoError(t, err)
	// A blank line between the two indented lines emits no Indent
	// token; every non-blank line does, including width 0.
	var indents []token.Token
	for _, tk := range toks {
		if tk.Kind == token.Indent {
			indents = append(indents, tk)
		}
	}
	require.Len(t, indents, 3)
	assert.Equal(t, "0", indents[0].Text)
	assert.Equal(t, "2", indents[1].Text)
	assert.Equal(t, "2", indents[2].Text)
}

func TestLexCommentIsSkipped(t *testing.T) {
	toks, err := lexer.Lex("box // a trailing comment\ntext")
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Indent, token.Ident, token.Newline, token.Indent, token.Ident, token.EOF,
	}, kinds(toks))
}

func TestLexUnexpectedCharacterIsLexError(t *testing.T) {
	_, err := lexer.Lex("box ^ text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, perr.ErrUnexpectedToken))
}

func TestLexBooleanLiteralsAreBoolKind(t *testing.T) {
	toks, err := lexer.Lex("true false")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.Indent, toks[0].Kind)
	assert.Equal(t, token.Bool, toks[1].Kind)
	assert.Equal(t, "true", toks[1].Text)
	assert.Equal(t, token.Bool, toks[2].Kind)
	assert.Equal(t, "false", toks[2].Text)
}
