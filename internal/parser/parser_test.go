package parser_test

import (
	"errors"
	"testing"

	"hql/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(line, char uint32) parser.Position {
	return parser.Position{Line: line, Character: char}
}

func rangeOf(t *testing.T, n parser.Node) parser.Range {
	t.Helper()
	r, ok := n.Range()
	require.True(t, ok, "node %s has no range", parser.String(n))
	return r
}

func TestParseAtoms(t *testing.T) {
	forms, err := parser.Parse(`"hi\n" 42 -1.5 true false nil null x + 0x10 inf`)
	require.NoError(t, err)
	require.Len(t, forms, 11)

	lit := func(i int) *parser.Literal {
		l, ok := forms[i].(*parser.Literal)
		require.True(t, ok, "form %d is %T", i, forms[i])
		return l
	}

	assert.Equal(t, parser.StringLiteral, lit(0).Kind)
	assert.Equal(t, "hi\n", lit(0).Value)
	assert.Equal(t, 42.0, lit(1).Value)
	assert.Equal(t, -1.5, lit(2).Value)
	assert.Equal(t, true, lit(3).Value)
	assert.Equal(t, false, lit(4).Value)
	assert.Equal(t, parser.NullLiteral, lit(5).Kind)
	assert.Nil(t, lit(5).Value)
	assert.Equal(t, parser.NullLiteral, lit(6).Kind)

	assert.Equal(t, "x", forms[7].(*parser.Symbol).Name)
	assert.Equal(t, "+", forms[8].(*parser.Symbol).Name)
	assert.Equal(t, 16.0, lit(9).Value)
	assert.Equal(t, "inf", forms[10].(*parser.Symbol).Name)
}

func TestParseListRanges(t *testing.T) {
	forms, err := parser.Parse("(defn sq (x)\n  (* x x))")
	require.NoError(t, err)
	require.Len(t, forms, 1)

	list := forms[0].(*parser.List)
	assert.False(t, list.Array)
	assert.Equal(t, "defn", list.Head())
	assert.Equal(t, parser.Range{Start: pos(0, 0), End: pos(1, 10)}, rangeOf(t, list))

	name := list.Elements[1].(*parser.Symbol)
	assert.Equal(t, parser.Range{Start: pos(0, 6), End: pos(0, 8)}, rangeOf(t, name))

	body := list.Elements[3].(*parser.List)
	assert.Equal(t, parser.Range{Start: pos(1, 2), End: pos(1, 9)}, rangeOf(t, body))
}

func TestParseArrayAndBraces(t *testing.T) {
	forms, err := parser.Parse(`[1 2] {a 1}`)
	require.NoError(t, err)
	require.Len(t, forms, 2)

	assert.True(t, forms[0].(*parser.List).Array)
	assert.False(t, forms[1].(*parser.List).Array)
	assert.Equal(t, "[1 2]", parser.String(forms[0]))
	assert.Equal(t, "(a 1)", parser.String(forms[1]))
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		at   parser.Position
	}{
		{"unterminated", "(", pos(0, 0)},
		{"unexpected closer", ")", pos(0, 0)},
		{"unterminated nested reports opener", "(def x\n  (foo", pos(1, 2)},
		{"stray closer after form", "(a) )", pos(0, 4)},
		{"mismatched closer", "(a]", pos(0, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			forms, err := parser.Parse(tc.src)
			require.Error(t, err)
			assert.Nil(t, forms)

			var perr *parser.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.at, perr.Position)
			assert.NotEmpty(t, perr.Message)
		})
	}
}

func TestParseUnicodeColumns(t *testing.T) {
	// The emoji occupies two UTF-16 code units.
	forms, err := parser.Parse(`("😀" x)`)
	require.NoError(t, err)

	list := forms[0].(*parser.List)
	assert.Equal(t, parser.Range{Start: pos(0, 1), End: pos(0, 5)}, rangeOf(t, list.Elements[0]))
	assert.Equal(t, parser.Range{Start: pos(0, 6), End: pos(0, 7)}, rangeOf(t, list.Elements[1]))
}

func TestWalk(t *testing.T) {
	forms, err := parser.Parse(`(a (b c) [d])`)
	require.NoError(t, err)

	var names []string
	parser.Walk(forms, func(n parser.Node) bool {
		if s, ok := n.(*parser.Symbol); ok {
			names = append(names, s.Name)
		}
		return parser.HeadOf(n) != "b"
	})
	assert.Equal(t, []string{"a", "d"}, names)
}

func TestSyntheticNodesHaveNoRange(t *testing.T) {
	_, ok := parser.NewSymbol("x", nil).Range()
	assert.False(t, ok)
}
