package features

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hql/internal/document"
	"hql/internal/parser"
	"hql/internal/symbols"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

var (
	ErrNotRenamable = errors.New("symbol cannot be renamed")
	ErrInvalidName  = errors.New("invalid symbol name")
)

// PrepareRename returns the range of the renamable symbol under pos, or
// nil when there is none.
func PrepareRename(doc *document.Document, pos parser.Position) *protocol.Range {
	t, ok := targetAt(doc, pos)
	if !ok || t.info == nil || symbols.IsBuiltin(t.sym.Name) {
		return nil
	}
	r, ok := editRange(t.info, t.sym)
	if !ok {
		return nil
	}
	return &r
}

// Rename edits the definition and every reference of the symbol under
// pos. Built-ins and unresolved symbols are refused.
func Rename(doc *document.Document, pos parser.Position, newName string) (*protocol.WorkspaceEdit, error) {
	t, ok := targetAt(doc, pos)
	if !ok {
		return nil, nil
	}
	if t.info == nil || symbols.IsBuiltin(t.sym.Name) {
		return nil, fmt.Errorf("%w: %q", ErrNotRenamable, t.sym.Name)
	}
	if err := ValidateName(newName); err != nil {
		return nil, err
	}

	var edits []protocol.TextEdit
	if r, ok := t.info.NameRange(); ok {
		edits = append(edits, protocol.TextEdit{Range: r, NewText: newName})
	}
	for _, ref := range t.info.References {
		if r, ok := ref.Range(); ok {
			edits = append(edits, protocol.TextEdit{Range: r, NewText: newName})
		}
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{doc.URI(): edits},
	}, nil
}

// editRange is the part of sym replaced by a rename. A named parameter
// keeps its trailing ':'.
func editRange(info *symbols.SymbolInfo, sym *parser.Symbol) (parser.Range, bool) {
	if sym == info.NameNode {
		return info.NameRange()
	}
	return sym.Range()
}

// ValidateName checks that name reads back as a single, non built-in
// symbol.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n()[]{}\";") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if symbols.IsBuiltin(name) {
		return fmt.Errorf("%w: %q is built in", ErrInvalidName, name)
	}
	if _, err := strconv.ParseFloat(name, 64); err == nil {
		return fmt.Errorf("%w: %q is a number", ErrInvalidName, name)
	}
	return nil
}
