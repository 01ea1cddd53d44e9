package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"hql/internal/document"
	"hql/internal/manager"
	"hql/internal/resolver"
	"hql/internal/scanner"
	"hql/internal/scheduler"
	"hql/internal/store"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	protocol.SetTraceValue(protocol.TraceValueOff)

	cfg, err := s.base.Merge(params.InitializationOptions)
	if err != nil {
		return nil, fmt.Errorf("invalid initializationOptions: %w", err)
	}
	s.config = cfg
	log.Infof("config: %+v", cfg)

	// Root
	root := ""
	switch {
	case params.RootURI != nil:
		root = *params.RootURI
	case len(params.WorkspaceFolders) > 0:
		root = params.WorkspaceFolders[0].URI
	case params.RootPath != nil:
		root = *params.RootPath
	}
	s.resolver, err = resolver.New(root)
	if err != nil {
		return nil, err
	}

	// Documents
	s.manager = manager.NewDocumentManager(document.Options{
		CacheCapacity: cfg.CacheCapacity,
		CacheTTL:      cfg.CacheTTL(),
	})

	// Workspace store
	if path, err := s.databasePath(); err != nil {
		log.Errorf("workspace store disabled: %s", err)
	} else if s.store, err = store.Open(path); err != nil {
		log.Errorf("workspace store disabled: %s", err)
	}

	// Background work
	s.scheduler = scheduler.NewScheduler(16)
	s.scheduler.RunScheduler()
	if ttl := cfg.CacheTTL(); ttl > 0 {
		s.scheduler.SchedulePeriodicTask(max(ttl/2, time.Second), scheduler.Task{
			Name: "sweep",
			Execute: func() error {
				if n := s.manager.Sweep(); n > 0 {
					log.Debugf("swept %d cached analyses", n)
				}
				return nil
			},
		})
	}
	if cfg.ScanWorkspace && s.store != nil && root != "" {
		ctx, cancel := contextWithCancel()
		s.cancel = cancel
		s.scheduler.ScheduleHighPriorityTask(scheduler.Task{
			Name:    "scan",
			Execute: func() error { return s.scanWorkspace(ctx) },
		})
	}

	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
	}
	capabilities.RenameProvider = &protocol.RenameOptions{PrepareProvider: &protocol.True}
	capabilities.CompletionProvider = &protocol.CompletionOptions{TriggerCharacters: []string{"(", "."}}

	version := Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Info("client initialized")
	return nil
}

func (s *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	if s.cancel != nil {
		s.cancel()
	}
	if s.scheduler != nil {
		s.scheduler.StopScheduler()
	}
	s.stopTimers()
	if s.manager != nil {
		s.manager.CloseAll()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("failed to close workspace store: %w", err)
		}
	}
	return nil
}

func contextWithCancel() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func (s *Server) databasePath() (string, error) {
	if s.config.DatabasePath != "" {
		return s.config.DatabasePath, nil
	}
	stateDir, err := getXDGStateHome(Name)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(stateDir, url.PathEscape(s.resolver.Root()))
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspace.db"), nil
}

// scanWorkspace indexes every workspace file whose content changed since
// it was last recorded and forgets recorded files that are gone.
func (s *Server) scanWorkspace(ctx context.Context) error {
	start := time.Now()
	var mu sync.Mutex
	seen := map[string]struct{}{}
	indexed := 0

	skip := func(path string, d fs.DirEntry) bool {
		return !s.config.HasExtension(path)
	}
	callback := func(path string, text []byte) error {
		mu.Lock()
		seen[path] = struct{}{}
		mu.Unlock()

		changed, err := s.index(path, string(text))
		if err != nil {
			return err
		}
		if changed {
			mu.Lock()
			indexed++
			mu.Unlock()
		}
		return nil
	}
	if err := scanner.Scan(ctx, s.resolver.Root(), skip, callback); err != nil {
		return fmt.Errorf("workspace scan failed: %w", err)
	}

	paths, err := s.store.Paths()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if _, ok := seen[path]; !ok {
			if err := s.store.Delete(path); err != nil {
				return err
			}
		}
	}
	log.Infof("scanned workspace in %s: %d files seen, %d indexed", time.Since(start), len(seen), indexed)
	return nil
}

// index records the definitions of text under path. Files whose stored
// hash matches are left alone, as are files that do not parse, so the
// last good definitions stay searchable.
func (s *Server) index(path, text string) (bool, error) {
	hash := store.Hash(text)
	old, err := s.store.Hash(path)
	switch {
	case err == nil && old == hash:
		return false, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return false, err
	}

	snap := document.Analyse(text)
	if snap.Err != nil {
		log.Debugf("not indexing %s: %s", path, snap.Err)
		return false, nil
	}
	if err := s.store.Upsert(path, hash, store.DefinitionsOf(path, snap.Symbols)); err != nil {
		return false, err
	}
	return true, nil
}
