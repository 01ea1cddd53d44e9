package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a lexeme together with the position of its first character.
// Column counts UTF-16 code units from the start of the line.
type Token struct {
	Text   string
	Line   int
	Column int
}

// Start returns the position of the token's first character.
func (t Token) Start() Position {
	return Position{Line: uint32(t.Line), Character: uint32(t.Column)}
}

// End returns the position immediately after the token's last character.
func (t Token) End() Position {
	return Position{Line: uint32(t.Line), Character: uint32(t.Column + UTF16Len(t.Text))}
}

// IsOpen reports whether the token opens a list form.
func (t Token) IsOpen() bool {
	return t.Text == "(" || t.Text == "[" || t.Text == "{"
}

// IsClose reports whether the token closes a list form.
func (t Token) IsClose() bool {
	return t.Text == ")" || t.Text == "]" || t.Text == "}"
}

func isBracket(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '{', '}':
		return true
	}
	return false
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Units(r)
	}
	return n
}

func utf16Units(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}

// Tokenize splits source text into tokens. It never fails: unterminated
// strings are flushed at the end of their line and bracket mismatches
// are left for the parser to report.
func Tokenize(src string) []Token {
	var tokens []Token
	for line, text := range Lines(src) {
		tokens = tokenizeLine(tokens, text, line)
	}
	return tokens
}

// Lines splits src into physical lines. "\r\n", "\r" and "\n" each end
// one line.
func Lines(src string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\r':
			lines = append(lines, src[start:i])
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			start = i + 1
		case '\n':
			lines = append(lines, src[start:i])
			start = i + 1
		}
	}
	return append(lines, src[start:])
}

func tokenizeLine(tokens []Token, text string, line int) []Token {
	var (
		cur      strings.Builder
		curCol   int
		col      int
		inString bool
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, Token{Text: cur.String(), Line: line, Column: curCol})
			cur.Reset()
		}
	}
	begin := func() {
		if cur.Len() == 0 {
			curCol = col
		}
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		if inString {
			cur.WriteString(text[i : i+size])
			col += utf16Units(r)
			i += size
			switch r {
			case '\\':
				if i < len(text) {
					next, nsize := utf8.DecodeRuneInString(text[i:])
					cur.WriteString(text[i : i+nsize])
					col += utf16Units(next)
					i += nsize
				}
			case '"':
				inString = false
				flush()
			}
			continue
		}

		switch {
		case r == ';':
			flush()
			return tokens
		case r == '"':
			flush()
			begin()
			cur.WriteRune(r)
			inString = true
		case isBracket(r):
			flush()
			tokens = append(tokens, Token{Text: string(r), Line: line, Column: col})
		case unicode.IsSpace(r):
			flush()
		default:
			begin()
			cur.WriteString(text[i : i+size])
		}
		col += utf16Units(r)
		i += size
	}
	flush()
	return tokens
}
