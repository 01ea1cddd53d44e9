package document

import (
	"sort"
	"unicode/utf8"

	"hql/internal/parser"
)

// LineIndex converts between byte offsets into a text and editor
// positions. "\r\n" counts as a single line terminator.
type LineIndex struct {
	text   string
	starts []int
}

// NewLineIndex records the start offset of every line in text.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		case '\n':
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (li *LineIndex) LineCount() int { return len(li.starts) }

// OffsetAt returns the byte offset of p. The line is clamped to the
// document and the character is clamped to the start of the next line.
func (li *LineIndex) OffsetAt(p parser.Position) int {
	line := int(p.Line)
	if line >= len(li.starts) {
		line = len(li.starts) - 1
	}
	start := li.starts[line]
	limit := len(li.text)
	if line+1 < len(li.starts) {
		limit = li.starts[line+1]
	}

	offset, units := start, 0
	for offset < limit && units < int(p.Character) {
		r, size := utf8.DecodeRuneInString(li.text[offset:])
		n := 1
		if r >= 0x10000 {
			n = 2
		}
		if units+n > int(p.Character) {
			break
		}
		units += n
		offset += size
	}
	return offset
}

// PositionAt returns the position of a byte offset, clamped to the text.
func (li *LineIndex) PositionAt(offset int) parser.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.text) {
		offset = len(li.text)
	}
	// greatest line whose start is <= offset
	line := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	start := li.starts[line]
	return parser.Position{
		Line:      uint32(line),
		Character: uint32(parser.UTF16Len(li.text[start:offset])),
	}
}
