// Package features implements the editor features on top of a document's
// analysis. Every provider returns an empty result when the document does
// not parse.
package features

import (
	"hql/internal/document"
	"hql/internal/parser"
	"hql/internal/symbols"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// target is the symbol under the cursor and what it resolves to.
type target struct {
	snap *document.Snapshot
	sym  *parser.Symbol
	info *symbols.SymbolInfo
}

func targetAt(doc *document.Document, pos parser.Position) (target, bool) {
	snap := doc.Snapshot()
	if snap.Err != nil {
		return target{}, false
	}
	sym, ok := snap.Index.SymbolAt(pos)
	if !ok {
		return target{}, false
	}
	t := target{snap: snap, sym: sym}
	if info, ok := snap.Symbols.Resolve(sym); ok {
		t.info = info
	} else if !symbols.IsBuiltin(sym.Name) {
		t.info, _ = snap.Symbols.LookupAt(sym.Name, pos)
	}
	return t, true
}

func location(uri string, n parser.Node) (protocol.Location, bool) {
	r, ok := n.Range()
	if !ok {
		return protocol.Location{}, false
	}
	return protocol.Location{URI: uri, Range: r}, true
}

func definitionLocation(uri string, info *symbols.SymbolInfo) (protocol.Location, bool) {
	r, ok := info.NameRange()
	if !ok {
		return protocol.Location{}, false
	}
	return protocol.Location{URI: uri, Range: r}, true
}
