package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/internal/template/parser"
	"github.com/corvidae/fluxui/pkg/perr"
)

func kindsOf(stmts []ast.Stmt) []ast.StmtKind {
	out := make([]ast.StmtKind, len(stmts))
	for i, s := range stmts {
		out[i] = s.Kind
	}
	return out
}

func TestParseSingleNodeWithStringValue(t *testing.T) {
	stmts, exprs, err := parser.Parse(`text "hello"`)
	require.NoError(t, err)
	require.Equal(t, []ast.StmtKind{ast.StmtNode, ast.StmtLoadValue, ast.StmtEOF}, kindsOf(stmts))
	assert.Equal(t, "text", stmts[0].Name)

	value := exprs.Get(stmts[1].Expr)
	assert.Equal(t, ast.ExprString, value.Kind)
	assert.Equal(t, "hello", value.Str)
}

func TestParseNestedBlockEmitsScopeStartAndEnd(t *testing.T) {
	stmts, _, err := parser.Parse("box\n  text \"hi\"\n")
	require.NoError(t, err)
	assert.Equal(t, []ast.StmtKind{
		ast.StmtNode, ast.StmtScopeStart, ast.StmtNode, ast.StmtLoadValue,
		ast.StmtScopeEnd, ast.StmtEOF,
	}, kindsOf(stmts))
}

func TestParseAttributeListWithMultipleKeys(t *testing.T) {
	stmts, exprs, err := parser.Parse(`text [color: "red", bold: true] "hi"`)
	require.NoError(t, err)
	require.Equal(t, []ast.StmtKind{
		ast.StmtNode, ast.StmtLoadAttribute, ast.StmtLoadAttribute, ast.StmtLoadValue, ast.StmtEOF,
	}, kindsOf(stmts))
	assert.Equal(t, "color", stmts[1].AttrKey)
	assert.Equal(t, "red", exprs.Get(stmts[1].Expr).Str)
	assert.Equal(t, "bold", stmts[2].AttrKey)
	assert.Equal(t, true, exprs.Get(stmts[2].Expr).Bool)
}

func TestParseAttributeListSpanningMultipleLines(t *testing.T) {
	stmts, _, err := parser.Parse("text [\n  color: \"red\",\n  bold: true\n] \"hi\"\n")
	require.NoError(t, err)
	assert.Equal(t, []ast.StmtKind{
		ast.StmtNode, ast.StmtLoadAttribute, ast.StmtLoadAttribute, ast.StmtLoadValue, ast.StmtEOF,
	}, kindsOf(stmts))
}

func TestParseForLoopBindsNameAndCollectionExpr(t *testing.T) {
	stmts, exprs, err := parser.Parse("for item in state.items\n  text item\n")
	require.NoError(t, err)
	require.Equal(t, ast.StmtFor, stmts[0].Kind)
	assert.Equal(t, "item", stmts[0].Binding)
	assert.Equal(t, ast.ExprIndex, exprs.Get(stmts[0].Expr).Kind)
}

func TestParseIfElseChain(t *testing.T) {
	stmts, _, err := parser.Parse("if state.ok\n  text \"yes\"\nelse\n  text \"no\"\n")
	require.NoError(t, err)
	assert.Contains(t, kindsOf(stmts), ast.StmtIf)
	assert.Contains(t, kindsOf(stmts), ast.StmtElse)
}

func TestParseSwitchCaseWithInlineBody(t *testing.T) {
	stmts, _, err := parser.Parse("switch state.mode\n  case 1: text \"one\"\n  default: text \"other\"\n")
	require.NoError(t, err)
	assert.Equal(t, []ast.StmtKind{
		ast.StmtSwitch,
		ast.StmtScopeStart,
		ast.StmtCase, ast.StmtScopeStart, ast.StmtNode, ast.StmtLoadValue, ast.StmtScopeEnd,
		ast.StmtDefault, ast.StmtScopeStart, ast.StmtNode, ast.StmtLoadValue, ast.StmtScopeEnd,
		ast.StmtScopeEnd,
		ast.StmtEOF,
	}, kindsOf(stmts))
}

func TestParseComponentReferenceWithAssociations(t *testing.T) {
	stmts, _, err := parser.Parse("@card(save -> onSave, cancel -> onCancel)\n")
	require.NoError(t, err)
	require.Equal(t, ast.StmtComponent, stmts[0].Kind)
	assert.Equal(t, "card", stmts[0].Name)
	require.Len(t, stmts[0].Associations, 2)
	assert.Equal(t, ast.Association{Internal: "save", External: "onSave"}, stmts[0].Associations[0])
	assert.Equal(t, ast.Association{Internal: "cancel", External: "onCancel"}, stmts[0].Associations[1])
}

func TestParseDuplicateAssociationExternalNameErrors(t *testing.T) {
	_, _, err := parser.Parse("@card(save -> onX, cancel -> onX)\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, perr.ErrDuplicateAssociation)
}

func TestParseSlotStatement(t *testing.T) {
	stmts, _, err := parser.Parse("$header\n")
	require.NoError(t, err)
	require.Equal(t, ast.StmtComponentSlot, stmts[0].Kind)
	assert.Equal(t, "header", stmts[0].Name)
}

func TestParseLetAndGlobalDeclarations(t *testing.T) {
	stmts, _, err := parser.Parse("let x = 1\nglobal y = 2\n")
	require.NoError(t, err)
	require.Equal(t, ast.StmtDeclaration, stmts[0].Kind)
	assert.Equal(t, "x", stmts[0].DeclName)
	assert.Equal(t, ast.ScopeLocal, stmts[0].DeclScope)
	require.Equal(t, ast.StmtDeclaration, stmts[1].Kind)
	assert.Equal(t, "y", stmts[1].DeclName)
	assert.Equal(t, ast.ScopeGlobal, stmts[1].DeclScope)
}

func TestParseTrailingTokensAfterStatementIsError(t *testing.T) {
	_, _, err := parser.Parse("text \"a\" garbage [")
	require.Error(t, err)
}

func TestParseMismatchedUnindentIsError(t *testing.T) {
	src := "box\n    text \"a\"\n  text \"b\"\n"
	_, _, err := parser.Parse(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, perr.ErrInvalidUnindent)
}

func TestParseUnterminatedAttributeListIsError(t *testing.T) {
	_, _, err := parser.Parse(`text [color: "red"`)
	require.Error(t, err)
	assert.ErrorIs(t, err, perr.ErrUnterminatedAttrList)
}
