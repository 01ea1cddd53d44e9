package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError aborts a parse. Position is the offending delimiter: the
// unexpected closer, or the opener of a list left unterminated.
type ParseError struct {
	Message  string
	Position Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Position.Line+1, e.Position.Character+1, e.Message)
}

var closerFor = map[string]string{"(": ")", "[": "]", "{": "}"}

// Parse tokenizes and parses src into its top-level forms. Parsing is all
// or nothing: on failure no forms are returned and the error is a
// *ParseError.
func Parse(src string) ([]Node, error) {
	return ParseTokens(Tokenize(src))
}

// ParseTokens parses an already tokenized source.
func ParseTokens(tokens []Token) ([]Node, error) {
	p := &parser{tokens: tokens}
	var forms []Node
	for !p.done() {
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		forms = append(forms, n)
	}
	return forms, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) expr() (Node, error) {
	tok := p.next()
	switch {
	case tok.IsOpen():
		return p.list(tok)
	case tok.IsClose():
		return nil, &ParseError{
			Message:  fmt.Sprintf("unexpected '%s'", tok.Text),
			Position: tok.Start(),
		}
	default:
		return atom(tok), nil
	}
}

func (p *parser) list(open Token) (Node, error) {
	want := closerFor[open.Text]
	var elements []Node
	for {
		if p.done() {
			return nil, &ParseError{
				Message:  fmt.Sprintf("unterminated '%s', expected '%s'", open.Text, want),
				Position: open.Start(),
			}
		}
		tok := p.tokens[p.pos]
		if tok.IsClose() {
			p.pos++
			if tok.Text != want {
				return nil, &ParseError{
					Message:  fmt.Sprintf("mismatched '%s', expected '%s'", tok.Text, want),
					Position: tok.Start(),
				}
			}
			r := Range{Start: open.Start(), End: tok.End()}
			return NewList(elements, open.Text == "[", &r), nil
		}
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		elements = append(elements, n)
	}
}

func atom(tok Token) Node {
	r := Range{Start: tok.Start(), End: tok.End()}
	text := tok.Text
	switch {
	case strings.HasPrefix(text, `"`):
		return NewLiteral(StringLiteral, unquote(text), &r)
	case text == "true" || text == "false":
		return NewLiteral(BooleanLiteral, text == "true", &r)
	case text == "nil" || text == "null":
		return NewLiteral(NullLiteral, nil, &r)
	}
	if v, ok := number(text); ok {
		return NewLiteral(NumberLiteral, v, &r)
	}
	return NewSymbol(text, &r)
}

// number accepts decimal, exponent and 0x/0o/0b integer notation. Words
// that strconv would accept, such as "inf" or "NaN", stay symbols.
func number(text string) (float64, bool) {
	digits := strings.TrimLeft(text, "+-")
	if len(text)-len(digits) > 1 {
		return 0, false
	}
	digits = strings.TrimPrefix(digits, ".")
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return 0, false
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v, true
	}
	if v, err := strconv.ParseInt(text, 0, 64); err == nil {
		return float64(v), true
	}
	return 0, false
}

// unquote strips the delimiters of a string token and resolves escapes.
// An unterminated token keeps everything after the opening quote.
func unquote(text string) string {
	body := text[1:]
	if len(body) > 0 && strings.HasSuffix(body, `"`) && !escapedAt(body, len(body)-1) {
		body = body[:len(body)-1]
	}
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

// escapedAt reports whether s[i] is preceded by an odd number of backslashes.
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}
