package server

import (
	"hql/internal/features"
	"hql/internal/resolver"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// maxWorkspaceSymbols caps workspace/symbol results.
const maxWorkspaceSymbols = 128

func (s *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return features.Hover(doc, params.Position), nil
}

func (s *Server) textDocumentDefinition(
	context *glsp.Context,
	params *protocol.DefinitionParams,
) (any, error) {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if locs := features.Definition(doc, params.Position); len(locs) > 0 {
		return locs, nil
	}
	return nil, nil
}

func (s *Server) textDocumentReferences(
	context *glsp.Context,
	params *protocol.ReferenceParams,
) ([]protocol.Location, error) {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return features.References(doc, params.Position, params.Context.IncludeDeclaration), nil
}

func (s *Server) textDocumentPrepareRename(
	context *glsp.Context,
	params *protocol.PrepareRenameParams,
) (any, error) {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if r := features.PrepareRename(doc, params.Position); r != nil {
		return r, nil
	}
	return nil, nil
}

func (s *Server) textDocumentRename(
	context *glsp.Context,
	params *protocol.RenameParams,
) (*protocol.WorkspaceEdit, error) {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return features.Rename(doc, params.Position, params.NewName)
}

func (s *Server) textDocumentDocumentSymbol(
	context *glsp.Context,
	params *protocol.DocumentSymbolParams,
) (any, error) {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return features.DocumentSymbols(doc), nil
}

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return features.Completion(doc, params.Position), nil
}

func (s *Server) textDocumentFormatting(
	context *glsp.Context,
	params *protocol.DocumentFormattingParams,
) ([]protocol.TextEdit, error) {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return features.Format(doc, s.formatOptions(params.Options)), nil
}

func (s *Server) workspaceSymbol(
	context *glsp.Context,
	params *protocol.WorkspaceSymbolParams,
) ([]protocol.SymbolInformation, error) {
	if s.store == nil {
		return nil, nil
	}
	defs, err := s.store.Search(params.Query, maxWorkspaceSymbols)
	if err != nil {
		return nil, err
	}

	symbols := make([]protocol.SymbolInformation, 0, len(defs))
	for _, d := range defs {
		info := protocol.SymbolInformation{
			Name: d.Name,
			Kind: features.SymbolKind(d.Kind),
			Location: protocol.Location{
				URI:   resolver.PathToURI(d.Path),
				Range: d.Range,
			},
		}
		if d.Container != "" {
			container := d.Container
			info.ContainerName = &container
		}
		symbols = append(symbols, info)
	}
	return symbols, nil
}
