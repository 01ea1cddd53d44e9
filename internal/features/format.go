package features

import (
	"strings"

	"hql/internal/document"
	"hql/internal/parser"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

type FormatOptions struct {
	IndentSize   int
	InsertSpaces bool
}

// Format re-indents the document. It returns a single whole-document
// edit, or nil when nothing changes or the document does not parse.
func Format(doc *document.Document, opts FormatOptions) []protocol.TextEdit {
	if doc.ParseError() != nil {
		return nil
	}
	text := doc.Text()
	formatted := FormatText(text, opts)
	if formatted == text {
		return nil
	}
	return []protocol.TextEdit{{
		Range:   parser.Range{End: doc.PositionAt(len(text))},
		NewText: formatted,
	}}
}

// FormatText indents every line by the bracket depth at its start. A line
// that opens with closing brackets is dedented by their count. Comments,
// string contents and line terminators are kept; blank lines are emptied.
func FormatText(text string, opts FormatOptions) string {
	unit := "\t"
	if opts.InsertSpaces {
		size := opts.IndentSize
		if size <= 0 {
			size = 2
		}
		unit = strings.Repeat(" ", size)
	}

	var b strings.Builder
	b.Grow(len(text))
	depth := 0
	for rest := text; ; {
		line, eol, tail := cutLine(rest)
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed != "" {
			indent := max(depth-leadingClosers(trimmed), 0)
			b.WriteString(strings.Repeat(unit, indent))
			b.WriteString(trimmed)
		}
		b.WriteString(eol)
		depth = max(depth+bracketDelta(trimmed), 0)
		if eol == "" {
			break
		}
		rest = tail
	}
	return b.String()
}

func cutLine(s string) (line, eol, rest string) {
	i := strings.IndexAny(s, "\r\n")
	if i < 0 {
		return s, "", ""
	}
	if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
		return s[:i], "\r\n", s[i+2:]
	}
	return s[:i], s[i : i+1], s[i+1:]
}

func leadingClosers(line string) int {
	n := 0
	for n < len(line) && strings.IndexByte(")]}", line[n]) >= 0 {
		n++
	}
	return n
}

// bracketDelta is the net number of brackets a line leaves open, ignoring
// strings and comments.
func bracketDelta(line string) int {
	delta := 0
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ';':
			return delta
		case '(', '[', '{':
			delta++
		case ')', ']', '}':
			delta--
		}
	}
	return delta
}
