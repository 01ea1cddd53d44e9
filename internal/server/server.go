// Package server connects the analysis of open documents to the editor
// over the language server protocol.
package server

import (
	"context"
	"sync"
	"time"

	"hql/internal/config"
	"hql/internal/manager"
	"hql/internal/resolver"
	"hql/internal/scheduler"
	"hql/internal/store"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const Name = "hql"

// Version will be set during the build process using ldflags
var Version = "(dev) v0.0.0"

var log = commonlog.GetLogger("hql.server")

type Server struct {
	handler *protocol.Handler
	base    config.Config

	config    config.Config
	resolver  *resolver.Resolver
	manager   *manager.DocumentManager
	store     *store.Store
	scheduler *scheduler.Scheduler

	// cancels the workspace scan on shutdown
	cancel context.CancelFunc

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// New returns a server whose configuration starts from base; the
// client's initializationOptions are applied on top during initialize.
func New(base config.Config) *Server {
	s := &Server{
		base:   base,
		config: base,
		timers: make(map[string]*time.Timer),
	}
	s.handler = &protocol.Handler{
		Initialize:                 s.initialize,
		Initialized:                s.initialized,
		Shutdown:                   s.shutdown,
		SetTrace:                   s.setTrace,
		TextDocumentDidOpen:        s.textDocumentDidOpen,
		TextDocumentDidChange:      s.textDocumentDidChange,
		TextDocumentDidSave:        s.textDocumentDidSave,
		TextDocumentDidClose:       s.textDocumentDidClose,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentRename:         s.textDocumentRename,
		TextDocumentPrepareRename:  s.textDocumentPrepareRename,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentFormatting:     s.textDocumentFormatting,
		WorkspaceSymbol:            s.workspaceSymbol,
	}
	return s
}

func (s *Server) Handler() *protocol.Handler { return s.handler }

// NewServer returns a protocol server ready to run over stdio.
func NewServer(base config.Config) *server.Server {
	return server.NewServer(New(base).handler, Name, false)
}
