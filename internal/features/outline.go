package features

import (
	"hql/internal/document"
	"hql/internal/symbols"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SymbolKind maps a definition kind onto the editor's symbol kinds.
func SymbolKind(k symbols.Kind) protocol.SymbolKind {
	switch k {
	case symbols.Function:
		return protocol.SymbolKindFunction
	case symbols.Enum:
		return protocol.SymbolKindEnum
	case symbols.EnumValue:
		return protocol.SymbolKindEnumMember
	default:
		return protocol.SymbolKindVariable
	}
}

// DocumentSymbols lists the global definitions, with enum values nested
// under their enum.
func DocumentSymbols(doc *document.Document) []protocol.DocumentSymbol {
	snap := doc.Snapshot()
	if snap.Err != nil {
		return nil
	}
	var out []protocol.DocumentSymbol
	for _, info := range snap.Symbols.Members("") {
		ds, ok := documentSymbol(info)
		if !ok {
			continue
		}
		if info.Kind == symbols.Enum {
			for _, v := range snap.Symbols.Members(info.Name) {
				if child, ok := documentSymbol(v); ok && v.Kind == symbols.EnumValue {
					ds.Children = append(ds.Children, child)
				}
			}
		}
		out = append(out, ds)
	}
	return out
}

func documentSymbol(info *symbols.SymbolInfo) (protocol.DocumentSymbol, bool) {
	sel, ok := info.NameRange()
	if !ok {
		return protocol.DocumentSymbol{}, false
	}
	full := sel
	if r, ok := info.Node.Range(); ok {
		full = r
	}
	detail := info.Signature()
	return protocol.DocumentSymbol{
		Name:           info.Name,
		Detail:         &detail,
		Kind:           SymbolKind(info.Kind),
		Range:          full,
		SelectionRange: sel,
	}, true
}
