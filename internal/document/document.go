// Package document owns the text of one open document and the analysis
// derived from it.
package document

import (
	"errors"
	"sync"
	"time"

	"hql/internal/cache"
	"hql/internal/index"
	"hql/internal/parser"
	"hql/internal/symbols"

	"github.com/tliron/commonlog"
	"github.com/zeebo/xxh3"
)

var log = commonlog.GetLogger("hql.document")

// Snapshot is the result of one analysis run. Either Err is set and
// everything else is empty, or the parse succeeded and all three
// structures describe the same AST. A Snapshot is never mutated.
type Snapshot struct {
	AST     []parser.Node
	Index   *index.Index
	Symbols *symbols.Table
	Err     *parser.ParseError
}

// Analyse runs the full pipeline over text.
func Analyse(text string) *Snapshot {
	forms, err := parser.Parse(text)
	if err != nil {
		var perr *parser.ParseError
		if !errors.As(err, &perr) {
			perr = &parser.ParseError{Message: err.Error()}
		}
		return &Snapshot{Err: perr}
	}
	if forms == nil {
		forms = []parser.Node{}
	}
	return &Snapshot{
		AST:     forms,
		Index:   index.Build(forms),
		Symbols: symbols.Build(forms),
	}
}

// Change is an edit reported by the editor. A nil Range replaces the
// whole text.
type Change struct {
	Range *parser.Range
	Text  string
}

type Options struct {
	CacheCapacity int
	CacheTTL      time.Duration

	// Clock overrides time.Now for the cache.
	Clock func() time.Time
}

func DefaultOptions() Options {
	return Options{CacheCapacity: 8, CacheTTL: 10 * time.Minute}
}

// Document holds the text and version of an open document. Updates only
// record text; the analysis pipeline runs on the first query after a
// change. Results returned by queries stay valid until the next update.
type Document struct {
	mu      sync.Mutex
	uri     string
	text    string
	version int32
	dirty   bool
	lines   *LineIndex
	snap    *Snapshot
	results *cache.LRU[uint64, *Snapshot]
}

func New(uri, text string, version int32, opts Options) *Document {
	var copts []cache.Option
	if opts.Clock != nil {
		copts = append(copts, cache.WithClock(opts.Clock))
	}
	return &Document{
		uri:     uri,
		text:    text,
		version: version,
		dirty:   true,
		results: cache.New[uint64, *Snapshot](opts.CacheCapacity, opts.CacheTTL, copts...),
	}
}

func (d *Document) URI() string { return d.uri }

func (d *Document) Version() int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// Update replaces the text. It reports false, and changes nothing, when
// version is not newer than the current one.
func (d *Document) Update(text string, version int32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if version <= d.version {
		log.Debugf("%s: dropping version %d, have %d", d.uri, version, d.version)
		return false
	}
	d.setText(text, version)
	return true
}

// Apply applies edits in order, each against the text produced by the
// previous one, then records the result as version.
func (d *Document) Apply(changes []Change, version int32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if version <= d.version {
		log.Debugf("%s: dropping version %d, have %d", d.uri, version, d.version)
		return false
	}
	text := d.text
	lines := d.lineIndex()
	for _, c := range changes {
		if c.Range == nil {
			text = c.Text
		} else {
			start, end := lines.OffsetAt(c.Range.Start), lines.OffsetAt(c.Range.End)
			if end < start {
				start, end = end, start
			}
			text = text[:start] + c.Text + text[end:]
		}
		lines = NewLineIndex(text)
	}
	d.setText(text, version)
	d.lines = lines
	return true
}

func (d *Document) setText(text string, version int32) {
	d.text = text
	d.version = version
	d.dirty = true
	d.lines = nil
}

// Stale reports whether the next query will rerun the analysis.
func (d *Document) Stale() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Snapshot returns the analysis of the current text, running the
// pipeline if the text changed since the last query.
func (d *Document) Snapshot() *Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.analysis()
}

func (d *Document) analysis() *Snapshot {
	if !d.dirty && d.snap != nil {
		return d.snap
	}
	h := xxh3.HashString(d.text)
	snap, ok := d.results.Get(h)
	if !ok {
		start := time.Now()
		snap = Analyse(d.text)
		d.results.Put(h, snap)
		log.Debugf("%s: analysed version %d in %s", d.uri, d.version, time.Since(start))
	}
	d.snap = snap
	d.dirty = false
	return snap
}

// AST returns the top-level forms, or nil when the text does not parse.
// An empty or comment-only document has an empty, non-nil AST.
func (d *Document) AST() []parser.Node { return d.Snapshot().AST }

// ParseError returns the error of the last parse, if it failed.
func (d *Document) ParseError() *parser.ParseError { return d.Snapshot().Err }

func (d *Document) SymbolTable() *symbols.Table { return d.Snapshot().Symbols }

func (d *Document) Index() *index.Index { return d.Snapshot().Index }

// NodeAtPosition returns the smallest node containing pos.
func (d *Document) NodeAtPosition(pos parser.Position) parser.Node {
	return d.Snapshot().Index.NodeAt(pos)
}

func (d *Document) FindNodes(pred func(parser.Node) bool) []parser.Node {
	return d.Snapshot().Index.FindNodes(pred)
}

func (d *Document) lineIndex() *LineIndex {
	if d.lines == nil {
		d.lines = NewLineIndex(d.text)
	}
	return d.lines
}

func (d *Document) OffsetAt(pos parser.Position) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lineIndex().OffsetAt(pos)
}

func (d *Document) PositionAt(offset int) parser.Position {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lineIndex().PositionAt(offset)
}

func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// TextIn returns the text covered by r.
func (d *Document) TextIn(r parser.Range) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	lines := d.lineIndex()
	start, end := lines.OffsetAt(r.Start), lines.OffsetAt(r.End)
	if end < start {
		start, end = end, start
	}
	return d.text[start:end]
}

// Sweep drops expired cached analyses.
func (d *Document) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results.Sweep()
}

// Close releases cached analyses.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results.Purge()
	d.snap = nil
	d.dirty = true
}
