package server

import (
	"errors"
	"fmt"
	"time"

	"hql/internal/analysis"
	"hql/internal/document"
	"hql/internal/manager"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	item := params.TextDocument
	doc, err := s.manager.Open(item.URI, item.Text, item.Version)
	if errors.Is(err, manager.ErrDocumentOpen) {
		// reopened without a close; the new text wins
		if err := s.manager.Release(item.URI); err != nil {
			return err
		}
		doc, err = s.manager.Open(item.URI, item.Text, item.Version)
	}
	if err != nil {
		return err
	}
	s.publishDiagnostics(context.Notify, doc, true)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	changes, err := toChanges(params.ContentChanges)
	if err != nil {
		return err
	}
	doc, applied, err := s.manager.ApplyChanges(params.TextDocument.URI, changes, params.TextDocument.Version)
	if err != nil {
		return err
	}
	if applied {
		s.publishDiagnostics(context.Notify, doc, false)
	}
	return nil
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	doc, err := s.manager.GetDocument(params.TextDocument.URI)
	if err != nil {
		return err
	}
	text := doc.Text()
	if params.Text != nil {
		text = *params.Text
	}
	if s.store == nil {
		return nil
	}
	file, err := s.resolver.Resolve(params.TextDocument.URI)
	if err != nil {
		return err
	}
	if _, err := s.index(file.AbsolutePath, text); err != nil {
		return fmt.Errorf("failed to index %s: %w", file.RelativePath, err)
	}
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	s.cancelDiagnostics(uri)
	if err := s.manager.Release(uri); err != nil {
		return err
	}
	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// publishDiagnostics sends the diagnostics of doc. Unless now is set they
// are sent once the document has been quiet for the configured delay; a
// newer change restarts the wait.
func (s *Server) publishDiagnostics(notify glsp.NotifyFunc, doc *document.Document, now bool) {
	delay := s.config.DiagnosticsDelay()
	if now || delay <= 0 {
		s.cancelDiagnostics(doc.URI())
		s.sendDiagnostics(notify, doc)
		return
	}

	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[doc.URI()]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.timersMu.Lock()
		current := s.timers[doc.URI()] == t
		if current {
			delete(s.timers, doc.URI())
		}
		s.timersMu.Unlock()
		if current {
			s.sendDiagnostics(notify, doc)
		}
	})
	s.timers[doc.URI()] = t
}

func (s *Server) sendDiagnostics(notify glsp.NotifyFunc, doc *document.Document) {
	diagnostics := analysis.Diagnose(doc.Snapshot(), s.config.MaxDiagnostics)
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
	version := protocol.UInteger(doc.Version())
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         doc.URI(),
		Version:     &version,
		Diagnostics: diagnostics,
	})
}

func (s *Server) cancelDiagnostics(uri string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[uri]; ok {
		t.Stop()
		delete(s.timers, uri)
	}
}

func (s *Server) stopTimers() {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
}
