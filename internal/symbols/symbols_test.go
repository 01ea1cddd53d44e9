package symbols_test

import (
	"testing"

	"hql/internal/index"
	"hql/internal/parser"
	"hql/internal/symbols"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, src string) ([]parser.Node, *symbols.Table) {
	t.Helper()
	forms, err := parser.Parse(src)
	require.NoError(t, err)
	return forms, symbols.Build(forms)
}

func TestParseParams(t *testing.T) {
	forms, err := parser.Parse("(a: Int b = 1)")
	require.NoError(t, err)
	params := symbols.ParseParams(forms[0].(*parser.List))
	require.Len(t, params, 2)

	assert.Equal(t, "a", params[0].Name)
	assert.True(t, params[0].Named)
	assert.Equal(t, "Int", params[0].Type)
	assert.Nil(t, params[0].Default)

	assert.Equal(t, "b", params[1].Name)
	assert.False(t, params[1].Named)
	assert.Empty(t, params[1].Type)
	require.IsType(t, &parser.Literal{}, params[1].Default)
	assert.Equal(t, 1.0, params[1].Default.(*parser.Literal).Value)
}

func TestParseParamsTypedPositional(t *testing.T) {
	forms, err := parser.Parse("[x : Number = 0 & rest]")
	require.NoError(t, err)
	params := symbols.ParseParams(forms[0].(*parser.List))
	require.Len(t, params, 2)
	assert.Equal(t, "x", params[0].Name)
	assert.Equal(t, "Number", params[0].Type)
	assert.NotNil(t, params[0].Default)
	assert.Equal(t, "rest", params[1].Name)
	assert.True(t, params[1].Rest)
	assert.False(t, params[0].Rest)
}

func TestParamNameRangeDropsMarker(t *testing.T) {
	forms, err := parser.Parse("(count: Int)")
	require.NoError(t, err)
	p := symbols.ParseParams(forms[0].(*parser.List))[0]
	r, ok := p.NameRange()
	require.True(t, ok)
	assert.Equal(t, uint32(1), r.Start.Character)
	assert.Equal(t, uint32(6), r.End.Character)
}

func TestRedefinitionKeepsOneEntry(t *testing.T) {
	forms, table := build(t, "(def x 1) (def x 2)")
	assert.Equal(t, 1, table.Len())
	info, ok := table.Get("x")
	require.True(t, ok)
	assert.Same(t, forms[1], info.Node)
}

func TestRedefinitionDropsScopedMembers(t *testing.T) {
	forms, table := build(t, "(defn f (x) x)\n(defn f (y) y)")
	_, ok := table.Get("f.x")
	assert.False(t, ok)
	_, ok = table.Get("f.y")
	assert.True(t, ok)
	assert.Equal(t, 2, table.Len())
	assert.Empty(t, table.Unresolved(), "the superseded body is not walked")

	old := forms[0].(*parser.List).Elements[1].(*parser.Symbol)
	assert.False(t, table.IsDefinition(old))
	_, ok = table.Resolve(old)
	assert.False(t, ok)

	var visible []string
	for _, info := range table.Visible(parser.Position{Line: 1, Character: 13}) {
		visible = append(visible, info.Name)
	}
	assert.ElementsMatch(t, []string{"y", "f"}, visible)

	_, table = build(t, "(defenum E a b)\n(defenum E c)\n(def v a)")
	for _, k := range []string{"E.a", "E.b"} {
		_, ok := table.Get(k)
		assert.False(t, ok, k)
	}
	c, ok := table.Get("E.c")
	require.True(t, ok)
	assert.Equal(t, symbols.EnumValue, c.Kind)
	assert.Equal(t, 3, table.Len())
	require.Len(t, table.Unresolved(), 1)
	assert.Equal(t, "a", table.Unresolved()[0].Name)
}

func TestFunctionReferences(t *testing.T) {
	src := "(defn sq (x) (* x x))\n(sq 5)"
	forms, table := build(t, src)

	info, ok := table.Get("sq")
	require.True(t, ok)
	assert.Equal(t, symbols.Function, info.Kind)
	require.Len(t, info.References, 1)

	ix := index.Build(forms)
	sym, ok := ix.SymbolAt(parser.Position{Line: 1, Character: 2})
	require.True(t, ok)
	assert.Same(t, info.References[0], sym)

	resolved, ok := table.Resolve(sym)
	require.True(t, ok)
	assert.Same(t, info, resolved)

	param, ok := table.Get("sq.x")
	require.True(t, ok)
	assert.Equal(t, symbols.ParameterKind, param.Kind)
	assert.Len(t, param.References, 2)
	for _, ref := range param.References {
		assert.Equal(t, "x", ref.Name)
	}
}

func TestSiblingLetScopesAreDistinct(t *testing.T) {
	_, table := build(t, "(defn f (a)\n  (let (y a) y)\n  (let (y a) y))")
	var lets []string
	for _, s := range table.Scopes() {
		if s.Kind == symbols.LetScope {
			lets = append(lets, s.ID)
			require.NotNil(t, s.Parent)
			assert.Equal(t, "f", s.Parent.ID)
		}
	}
	require.Len(t, lets, 2)
	assert.NotEqual(t, lets[0], lets[1])
}

func TestScopesAt(t *testing.T) {
	_, table := build(t, "(defn f (a)\n  (let (y a)\n    y))\n(f 1)")
	assert.Equal(t, []string{"let#1", "f"}, table.ScopesAt(parser.Position{Line: 2, Character: 4}))
	assert.Equal(t, []string{"f"}, table.ScopesAt(parser.Position{Line: 1, Character: 0}))
	assert.Empty(t, table.ScopesAt(parser.Position{Line: 3, Character: 1}))

	info, ok := table.LookupAt("a", parser.Position{Line: 2, Character: 4})
	require.True(t, ok)
	assert.Equal(t, "f.a", info.Key())

	_, ok = table.LookupAt("a", parser.Position{Line: 3, Character: 1})
	assert.False(t, ok)
}

func TestLookupOrder(t *testing.T) {
	_, table := build(t, "(def a 0)\n(defn f (a) a)\n(defenum Dir up down)")

	// the bare global is tried before the function scope
	info, ok := table.Lookup("a", []string{"f"})
	require.True(t, ok)
	assert.Equal(t, "a", info.Key())

	info, ok = table.Lookup("down", nil)
	require.True(t, ok)
	assert.Equal(t, "Dir.down", info.Key())
	assert.Equal(t, symbols.EnumValue, info.Kind)
}

func TestBuiltinsAreNotReferences(t *testing.T) {
	_, table := build(t, "(def print 1)\n(print \"x\")")
	info, ok := table.Get("print")
	require.True(t, ok)
	assert.Empty(t, info.References)
	assert.Empty(t, table.Unresolved())
	assert.True(t, symbols.IsBuiltin("->"))
	assert.False(t, symbols.IsBuiltin("sq"))
}

func TestNestedDefinitionsAreScoped(t *testing.T) {
	_, table := build(t, "(defn outer (a)\n  (def inner a)\n  inner)")
	info, ok := table.Get("outer.inner")
	require.True(t, ok)
	assert.Equal(t, "outer", info.Scope)
	assert.Len(t, info.References, 1)
	_, ok = table.Get("inner")
	assert.False(t, ok)
}

func TestVisible(t *testing.T) {
	_, table := build(t, "(def g 1)\n(defn f (a b) (+ a b))\n(defenum E one)")
	var names []string
	for _, info := range table.Visible(parser.Position{Line: 1, Character: 16}) {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"a", "b", "g", "f", "E"}, names)
}

func TestNilTable(t *testing.T) {
	var table *symbols.Table
	_, ok := table.Get("x")
	assert.False(t, ok)
	_, ok = table.Lookup("x", nil)
	assert.False(t, ok)
	assert.Nil(t, table.All())
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.ScopesAt(parser.Position{}))
}

func TestSignature(t *testing.T) {
	_, table := build(t, "(defenum Color red green)\n(def n 1)")
	info, _ := table.Get("Color")
	assert.Equal(t, "Color { red green }", info.Signature())
	info, _ = table.Get("Color.red")
	assert.Equal(t, "Color.red", info.Signature())
	info, _ = table.Get("n")
	assert.Equal(t, "n", info.Signature())
}

func TestImportBindsNames(t *testing.T) {
	_, table := build(t, "(import [read write as put] from \"./io.hql\")\n(read (put 1))")
	read, ok := table.Get("read")
	require.True(t, ok)
	assert.Len(t, read.References, 1)
	put, ok := table.Get("put")
	require.True(t, ok)
	assert.Len(t, put.References, 1)
	_, ok = table.Get("write")
	assert.False(t, ok)
	assert.Empty(t, table.Unresolved())
}
