package features

import (
	"strings"

	"hql/internal/document"
	"hql/internal/parser"
	"hql/internal/symbols"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

func completionKind(k symbols.Kind) protocol.CompletionItemKind {
	switch k {
	case symbols.Function:
		return protocol.CompletionItemKindFunction
	case symbols.Enum:
		return protocol.CompletionItemKindEnum
	case symbols.EnumValue:
		return protocol.CompletionItemKindEnumMember
	default:
		return protocol.CompletionItemKindVariable
	}
}

// Completion offers the definitions visible at pos, enum values and the
// built-ins, filtered by the symbol prefix being typed.
func Completion(doc *document.Document, pos parser.Position) []protocol.CompletionItem {
	snap := doc.Snapshot()
	if snap.Err != nil {
		return nil
	}
	prefix := prefixAt(doc, pos)

	var items []protocol.CompletionItem
	for _, info := range snap.Symbols.Visible(pos) {
		if !strings.HasPrefix(info.Name, prefix) {
			continue
		}
		items = append(items, completionItem(info))
	}
	for _, info := range snap.Symbols.All() {
		if info.Kind != symbols.EnumValue || !strings.HasPrefix(info.Name, prefix) {
			continue
		}
		items = append(items, completionItem(info))
	}
	keyword := protocol.CompletionItemKindKeyword
	for _, name := range symbols.Builtins {
		if strings.HasPrefix(name, prefix) {
			items = append(items, protocol.CompletionItem{Label: name, Kind: &keyword})
		}
	}
	return items
}

func completionItem(info *symbols.SymbolInfo) protocol.CompletionItem {
	kind := completionKind(info.Kind)
	detail := info.Signature()
	return protocol.CompletionItem{Label: info.Name, Kind: &kind, Detail: &detail}
}

// prefixAt returns the symbol characters immediately before pos on its
// line.
func prefixAt(doc *document.Document, pos parser.Position) string {
	line := doc.TextIn(parser.Range{Start: parser.Position{Line: pos.Line}, End: pos})
	i := strings.LastIndexAny(line, " \t()[]{}\";")
	return line[i+1:]
}
