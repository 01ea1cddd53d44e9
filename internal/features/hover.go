package features

import (
	"fmt"
	"strings"

	"hql/internal/document"
	"hql/internal/parser"
	"hql/internal/symbols"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Hover describes the symbol under pos.
func Hover(doc *document.Document, pos parser.Position) *protocol.Hover {
	t, ok := targetAt(doc, pos)
	if !ok {
		return nil
	}
	var b strings.Builder
	switch {
	case t.info != nil:
		fmt.Fprintf(&b, "```hql\n%s\n```\n%s", t.info.Signature(), t.info.Kind)
		if t.info.Scope != "" {
			fmt.Fprintf(&b, " in `%s`", t.info.Scope)
		}
		if n := len(t.info.References); n > 0 {
			fmt.Fprintf(&b, ", %d reference%s", n, plural(n))
		}
	case symbols.IsBuiltin(t.sym.Name):
		fmt.Fprintf(&b, "```hql\n%s\n```\nbuilt-in", t.sym.Name)
	default:
		return nil
	}
	r, _ := t.sym.Range()
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: b.String()},
		Range:    &r,
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
