package features

import (
	"hql/internal/document"
	"hql/internal/parser"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Definition returns the defining name of the symbol under pos.
func Definition(doc *document.Document, pos parser.Position) []protocol.Location {
	t, ok := targetAt(doc, pos)
	if !ok || t.info == nil {
		return nil
	}
	loc, ok := definitionLocation(doc.URI(), t.info)
	if !ok {
		return nil
	}
	return []protocol.Location{loc}
}

// References returns every recorded reference to the symbol under pos,
// preceded by its definition when includeDeclaration is set.
func References(doc *document.Document, pos parser.Position, includeDeclaration bool) []protocol.Location {
	t, ok := targetAt(doc, pos)
	if !ok || t.info == nil {
		return nil
	}
	var locs []protocol.Location
	if includeDeclaration {
		if loc, ok := definitionLocation(doc.URI(), t.info); ok {
			locs = append(locs, loc)
		}
	}
	for _, ref := range t.info.References {
		if loc, ok := location(doc.URI(), ref); ok {
			locs = append(locs, loc)
		}
	}
	return locs
}
