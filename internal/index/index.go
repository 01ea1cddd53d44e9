// Package index answers positional queries over a parsed document.
package index

import "hql/internal/parser"

// Index is built once per successful parse. Nodes without a range are
// never indexed, although their children are. A nil *Index is empty.
type Index struct {
	nodes    []parser.Node
	symbols  map[string][]*parser.Symbol
	lists    []*parser.List
	literals []*parser.Literal
}

// Build walks forms and records every ranged node.
func Build(forms []parser.Node) *Index {
	ix := &Index{symbols: make(map[string][]*parser.Symbol)}
	parser.Walk(forms, func(n parser.Node) bool {
		if _, ok := n.Range(); !ok {
			return true
		}
		ix.nodes = append(ix.nodes, n)
		switch n := n.(type) {
		case *parser.Symbol:
			ix.symbols[n.Name] = append(ix.symbols[n.Name], n)
		case *parser.List:
			ix.lists = append(ix.lists, n)
		case *parser.Literal:
			ix.literals = append(ix.literals, n)
		}
		return true
	})
	return ix
}

// NodeAt returns the smallest node whose range contains pos, or nil,
// ordered by Size. On equal size the node met first in source order wins.
func (ix *Index) NodeAt(pos parser.Position) parser.Node {
	if ix == nil {
		return nil
	}
	var (
		best     parser.Node
		bestSize int
	)
	for _, n := range ix.nodes {
		r, _ := n.Range()
		if !Contains(r, pos) {
			continue
		}
		if size := Size(r); best == nil || size < bestSize {
			best, bestSize = n, size
		}
	}
	return best
}

// SymbolAt is NodeAt narrowed to symbols.
func (ix *Index) SymbolAt(pos parser.Position) (*parser.Symbol, bool) {
	s, ok := ix.NodeAt(pos).(*parser.Symbol)
	return s, ok
}

// FindNodes returns every indexed node satisfying pred, in source order.
func (ix *Index) FindNodes(pred func(parser.Node) bool) []parser.Node {
	if ix == nil {
		return nil
	}
	var out []parser.Node
	for _, n := range ix.nodes {
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

// Symbols returns every symbol node spelled name.
func (ix *Index) Symbols(name string) []*parser.Symbol {
	if ix == nil {
		return nil
	}
	return ix.symbols[name]
}

// Lists returns every list, array and map form.
func (ix *Index) Lists() []*parser.List {
	if ix == nil {
		return nil
	}
	return ix.lists
}

// Literals returns every literal node.
func (ix *Index) Literals() []*parser.Literal {
	if ix == nil {
		return nil
	}
	return ix.literals
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.nodes)
}

// Contains reports whether pos lies within r. Both endpoints are
// inclusive.
func Contains(r parser.Range, pos parser.Position) bool {
	return !before(pos, r.Start) && !before(r.End, pos)
}

// Size orders ranges for NodeAt. A multi-line range weighs 1000 per line
// spanned plus its end column; a single-line range weighs its width. A
// token wider than that weight loses to its multi-line parent.
func Size(r parser.Range) int {
	if r.Start.Line == r.End.Line {
		return int(r.End.Character) - int(r.Start.Character)
	}
	return 1000*int(r.End.Line-r.Start.Line) + int(r.End.Character)
}

func before(a, b parser.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}
