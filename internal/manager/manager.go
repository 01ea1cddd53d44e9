package manager

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"hql/internal/document"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentOpen     = errors.New("document already open")
)

// DocumentManager tracks the document controller of each open URI.
type DocumentManager struct {
	mu   sync.Mutex
	docs map[string]*document.Document
	opts document.Options
}

// NewDocumentManager creates an initialized DocumentManager. Every
// document it opens gets its own cache built from opts.
func NewDocumentManager(opts document.Options) *DocumentManager {
	return &DocumentManager{
		docs: make(map[string]*document.Document),
		opts: opts,
	}
}

// Open starts tracking uri.
func (dm *DocumentManager) Open(uri, text string, version int32) (*document.Document, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if _, ok := dm.docs[uri]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentOpen, uri)
	}
	doc := document.New(uri, text, version, dm.opts)
	dm.docs[uri] = doc
	return doc, nil
}

// GetDocument returns the controller for uri.
func (dm *DocumentManager) GetDocument(uri string) (*document.Document, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.docs[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	return doc, nil
}

// UpdateDocument replaces the text of uri. The bool is false when the
// version was stale and nothing changed.
func (dm *DocumentManager) UpdateDocument(uri, text string, version int32) (*document.Document, bool, error) {
	doc, err := dm.GetDocument(uri)
	if err != nil {
		return nil, false, err
	}
	return doc, doc.Update(text, version), nil
}

// ApplyChanges applies incremental edits to uri.
func (dm *DocumentManager) ApplyChanges(uri string, changes []document.Change, version int32) (*document.Document, bool, error) {
	doc, err := dm.GetDocument(uri)
	if err != nil {
		return nil, false, err
	}
	return doc, doc.Apply(changes, version), nil
}

// URIs lists the open documents in sorted order.
func (dm *DocumentManager) URIs() []string {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	uris := make([]string, 0, len(dm.docs))
	for uri := range dm.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Sweep drops expired cache entries of every open document and returns
// how many were dropped.
func (dm *DocumentManager) Sweep() int {
	dm.mu.Lock()
	docs := make([]*document.Document, 0, len(dm.docs))
	for _, doc := range dm.docs {
		docs = append(docs, doc)
	}
	dm.mu.Unlock()

	n := 0
	for _, doc := range docs {
		n += doc.Sweep()
	}
	return n
}

// Release closes and forgets uri.
func (dm *DocumentManager) Release(uri string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	doc, ok := dm.docs[uri]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	doc.Close()
	delete(dm.docs, uri)
	return nil
}

// CloseAll releases every document.
func (dm *DocumentManager) CloseAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for _, doc := range dm.docs {
		doc.Close()
	}
	dm.docs = make(map[string]*document.Document)
}
