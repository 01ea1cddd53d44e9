package parser_test

import (
	"testing"

	"hql/internal/parser"

	"github.com/stretchr/testify/assert"
)

func texts(tokens []parser.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	t.Run("brackets split runs", func(t *testing.T) {
		tokens := parser.Tokenize(`(foo[bar]{baz})`)
		assert.Equal(t, []string{"(", "foo", "[", "bar", "]", "{", "baz", "}", ")"}, texts(tokens))
	})

	t.Run("comments drop the rest of the line", func(t *testing.T) {
		tokens := parser.Tokenize("(a ; b c)\nd")
		assert.Equal(t, []string{"(", "a", "d"}, texts(tokens))
		assert.Equal(t, parser.Token{Text: "d", Line: 1, Column: 0}, tokens[2])
	})

	t.Run("semicolon inside string", func(t *testing.T) {
		tokens := parser.Tokenize(`(print "a;b")`)
		assert.Equal(t, []string{"(", "print", `"a;b"`, ")"}, texts(tokens))
	})

	t.Run("escaped quote keeps string open", func(t *testing.T) {
		tokens := parser.Tokenize(`"say \"hi\"" x`)
		assert.Equal(t, []string{`"say \"hi\""`, "x"}, texts(tokens))
		assert.Equal(t, 13, tokens[1].Column)
	})

	t.Run("string adjacent to symbol", func(t *testing.T) {
		tokens := parser.Tokenize(`a"b"c`)
		assert.Equal(t, []string{"a", `"b"`, "c"}, texts(tokens))
	})

	t.Run("unterminated string flushed at end of line", func(t *testing.T) {
		tokens := parser.Tokenize("\"abc\n(x)")
		assert.Equal(t, []string{`"abc`, "(", "x", ")"}, texts(tokens))
		assert.Equal(t, 1, tokens[1].Line)
	})

	t.Run("crlf counts as one line break", func(t *testing.T) {
		tokens := parser.Tokenize("a\r\nb\rc\nd")
		for i, tok := range tokens {
			assert.Equal(t, i, tok.Line, tok.Text)
			assert.Equal(t, 0, tok.Column, tok.Text)
		}
	})

	t.Run("columns count utf-16 units", func(t *testing.T) {
		tokens := parser.Tokenize("é 𝄞 z")
		assert.Equal(t, []int{0, 2, 5}, []int{tokens[0].Column, tokens[1].Column, tokens[2].Column})
		assert.Equal(t, parser.Position{Line: 0, Character: 4}, tokens[1].End())
	})
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{""}, parser.Lines(""))
	assert.Equal(t, []string{"a", ""}, parser.Lines("a\n"))
	assert.Equal(t, []string{"a", "b", "c"}, parser.Lines("a\r\nb\rc"))
}
