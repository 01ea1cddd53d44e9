package parser

import (
	"strconv"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Position is a zero-based line/character pair. Character counts UTF-16
// code units, matching the editor protocol.
type Position = protocol.Position

// Range is the source extent of a node. End is the position immediately
// after the node's last character.
type Range = protocol.Range

// Node is one of *Symbol, *Literal or *List.
type Node interface {
	// Range reports the node's source extent. Synthetic nodes have none.
	Range() (Range, bool)
	node()
}

type span struct {
	rng    Range
	ranged bool
}

func (s span) Range() (Range, bool) { return s.rng, s.ranged }
func (span) node()                  {}

func spanOf(r *Range) span {
	if r == nil {
		return span{}
	}
	return span{rng: *r, ranged: true}
}

// Symbol is a bare identifier or operator.
type Symbol struct {
	span
	Name string
}

// LiteralKind tags the dynamic type of a literal value.
type LiteralKind int

const (
	StringLiteral LiteralKind = iota
	NumberLiteral
	BooleanLiteral
	NullLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case StringLiteral:
		return "string"
	case NumberLiteral:
		return "number"
	case BooleanLiteral:
		return "boolean"
	case NullLiteral:
		return "null"
	default:
		return "unknown"
	}
}

// Literal holds a string, float64, bool or nil value.
type Literal struct {
	span
	Kind  LiteralKind
	Value any
}

// List is a parenthesised form, a bracketed array literal, or a braced
// map form. Braces are not distinguished from parentheses.
type List struct {
	span
	Elements []Node
	Array    bool
}

// NewSymbol returns a symbol node. A nil range yields a synthetic node.
func NewSymbol(name string, r *Range) *Symbol {
	return &Symbol{span: spanOf(r), Name: name}
}

// NewLiteral returns a literal node. A nil range yields a synthetic node.
func NewLiteral(kind LiteralKind, value any, r *Range) *Literal {
	return &Literal{span: spanOf(r), Kind: kind, Value: value}
}

// NewList returns a list node. A nil range yields a synthetic node.
func NewList(elements []Node, array bool, r *Range) *List {
	return &List{span: spanOf(r), Elements: elements, Array: array}
}

// Head returns the name of the list's first element when it is a symbol.
func (l *List) Head() string {
	if l == nil || len(l.Elements) == 0 {
		return ""
	}
	if s, ok := l.Elements[0].(*Symbol); ok {
		return s.Name
	}
	return ""
}

// HeadOf is Head for an arbitrary node; non-lists have no head.
func HeadOf(n Node) string {
	if l, ok := n.(*List); ok {
		return l.Head()
	}
	return ""
}

// Walk visits nodes depth-first in source order. Returning false from fn
// skips the children of the visited node.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		if l, ok := n.(*List); ok {
			Walk(l.Elements, fn)
		}
	}
}

// String renders a node back to source-like text.
func String(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Symbol:
		b.WriteString(n.Name)
	case *Literal:
		switch n.Kind {
		case StringLiteral:
			b.WriteString(strconv.Quote(n.Value.(string)))
		case NumberLiteral:
			b.WriteString(strconv.FormatFloat(n.Value.(float64), 'g', -1, 64))
		case BooleanLiteral:
			b.WriteString(strconv.FormatBool(n.Value.(bool)))
		case NullLiteral:
			b.WriteString("nil")
		}
	case *List:
		open, close := byte('('), byte(')')
		if n.Array {
			open, close = '[', ']'
		}
		b.WriteByte(open)
		for i, e := range n.Elements {
			if i > 0 {
				b.WriteByte(' ')
			}
			write(b, e)
		}
		b.WriteByte(close)
	}
}
