package blueprint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidae/fluxui/internal/template/ast"
	"github.com/corvidae/fluxui/pkg/blueprint"
	"github.com/corvidae/fluxui/pkg/perr"
)

func TestCompileReturnsRootBlueprintTree(t *testing.T) {
	doc := blueprint.NewDocument()
	doc.RegisterInline("root", "box\n  text \"hi\"\n")
	doc.SetRoot("root")

	compiled, err := doc.Compile()
	require.NoError(t, err)
	require.Len(t, compiled.Roots, 1)
	assert.Equal(t, blueprint.KindNode, compiled.Roots[0].Kind)
	assert.Equal(t, "box", compiled.Roots[0].ElementName)
	require.Len(t, compiled.Roots[0].Children, 1)
	assert.Equal(t, "text", compiled.Roots[0].Children[0].ElementName)
}

func TestCompileCollectsGlobalDeclarationsSeparatelyFromLocals(t *testing.T) {
	doc := blueprint.NewDocument()
	doc.RegisterInline("root", "let x = 1\nglobal y = 2\ntext x\n")
	doc.SetRoot("root")

	compiled, err := doc.Compile()
	require.NoError(t, err)
	require.Len(t, compiled.Globals, 1)
	assert.Equal(t, "y", compiled.Globals[0].DeclName)
	assert.Equal(t, ast.ScopeGlobal, compiled.Globals[0].DeclScope)
}

func TestCompileUnregisteredRootNameErrors(t *testing.T) {
	doc := blueprint.NewDocument()
	doc.RegisterInline("root", "text \"hi\"\n")
	doc.SetRoot("nonexistent")

	_, err := doc.Compile()
	require.Error(t, err)
	assert.ErrorIs(t, err, perr.ErrUnresolvedComponent)
}

func TestCompileUnresolvedComponentReferenceErrors(t *testing.T) {
	doc := blueprint.NewDocument()
	doc.RegisterInline("root", "@missing\n")
	doc.SetRoot("root")

	_, err := doc.Compile()
	require.Error(t, err)
	assert.ErrorIs(t, err, perr.ErrUnresolvedComponent)
}

func TestCompileResolvesRegisteredComponentReference(t *testing.T) {
	doc := blueprint.NewDocument()
	doc.RegisterInline("card", "text \"card body\"\n")
	doc.RegisterInline("root", "@card\n")
	doc.SetRoot("root")

	compiled, err := doc.Compile()
	require.NoError(t, err)
	require.Len(t, compiled.Roots, 1)
	assert.Equal(t, blueprint.KindComponentInstance, compiled.Roots[0].Kind)
	assert.Equal(t, "card", compiled.Roots[0].ComponentName)
}

func TestCompileDetectsCyclicComponentInclude(t *testing.T) {
	doc := blueprint.NewDocument()
	doc.RegisterInline("a", "@b\n")
	doc.RegisterInline("b", "@a\n")
	doc.SetRoot("a")

	_, err := doc.Compile()
	require.Error(t, err)
	assert.ErrorIs(t, err, perr.ErrCyclicInclude)
}

func TestCompileAssignsNamedSlotChildrenToComponentInstance(t *testing.T) {
	doc := blueprint.NewDocument()
	doc.RegisterInline("card", "box\n  $header\n")
	doc.RegisterInline("root", "@card\n  $header\n    text \"title\"\n  text \"default body\"\n")
	doc.SetRoot("root")

	compiled, err := doc.Compile()
	require.NoError(t, err)
	require.Len(t, compiled.Roots, 1)
	instance := compiled.Roots[0]
	require.Contains(t, instance.Slots, "header")
	require.Len(t, instance.Slots["header"], 1)
	assert.Equal(t, "text", instance.Slots["header"][0].ElementName)
	require.Contains(t, instance.Slots, "")
	require.Len(t, instance.Slots[""], 1)
}

func TestSourcesReturnsOnlyFileBackedPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "root.flux")
	require.NoError(t, os.WriteFile(path, []byte("text \"hi\""), 0o644))

	doc := blueprint.NewDocument()
	doc.RegisterFile("root", path)
	doc.RegisterInline("inline", "text \"inline\"")

	assert.Equal(t, []string{path}, doc.Sources())
}

func TestLookupReturnsFalseBeforeCompile(t *testing.T) {
	doc := blueprint.NewDocument()
	doc.RegisterInline("root", "text \"hi\"")
	_, ok := doc.Lookup("root")
	assert.False(t, ok)
}

func TestReloadRereadsFileBackedSourceAfterEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "root.flux")
	require.NoError(t, os.WriteFile(path, []byte("text \"one\""), 0o644))

	doc := blueprint.NewDocument()
	doc.RegisterFile("root", path)
	doc.SetRoot("root")

	compiled, err := doc.Compile()
	require.NoError(t, err)
	assert.Equal(t, ast.ExprString, compiled.Exprs.Get(compiled.Roots[0].Value).Kind)
	assert.Equal(t, "one", compiled.Exprs.Get(compiled.Roots[0].Value).Str)

	require.NoError(t, os.WriteFile(path, []byte("text \"two\""), 0o644))
	compiled, err = doc.Reload()
	require.NoError(t, err)
	assert.Equal(t, "two", compiled.Exprs.Get(compiled.Roots[0].Value).Str)
}
