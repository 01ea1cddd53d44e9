// Package store keeps the top-level definitions of every workspace file in
// a SQLite database so workspace/symbol can answer without opening files.
package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"hql/internal/parser"
	"hql/internal/symbols"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tliron/commonlog"
	"github.com/zeebo/xxh3"
)

var log = commonlog.GetLogger("hql.store")

// Definition is one searchable definition of a file.
type Definition struct {
	Path      string
	Name      string
	Kind      symbols.Kind
	Container string // enclosing enum for enum values
	Range     parser.Range
}

type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
	now    func() time.Time
}

// Open opens (or creates) the database at path. ":memory:" gives a private
// in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and writes serial
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.setup(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}
	log.Debugf("opened workspace store %s", path)
	return s, nil
}

// Hash is the content hash recorded for a file's text.
func Hash(text string) uint64 {
	return xxh3.HashString(text)
}

// DefinitionsOf extracts the searchable definitions of a symbol table:
// every global plus the values of each enum.
func DefinitionsOf(path string, table *symbols.Table) []Definition {
	var defs []Definition
	for _, info := range table.Members("") {
		r, ok := info.NameRange()
		if !ok {
			continue
		}
		defs = append(defs, Definition{Path: path, Name: info.Name, Kind: info.Kind, Range: r})
		if info.Kind != symbols.Enum {
			continue
		}
		for _, value := range table.Members(info.Name) {
			if value.Kind != symbols.EnumValue {
				continue
			}
			if r, ok := value.NameRange(); ok {
				defs = append(defs, Definition{Path: path, Name: value.Name, Kind: value.Kind, Container: info.Name, Range: r})
			}
		}
	}
	return defs
}

// withTx runs fn in a transaction, rolling back when it fails.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Upsert replaces everything recorded for path.
func (s *Store) Upsert(path string, hash uint64, defs []Definition) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO documents (path, hash, updated) VALUES (?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, updated = excluded.updated
		`, path, int64(hash), s.now().Unix()); err != nil {
			return fmt.Errorf("failed to upsert document %s: %w", path, err)
		}

		if _, err := tx.Exec(`DELETE FROM definitions WHERE path = ?`, path); err != nil {
			return fmt.Errorf("failed to clear definitions of %s: %w", path, err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO definitions (path, name, kind, container, line, character, end_line, end_character)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, d := range defs {
			r := d.Range
			if _, err := stmt.Exec(path, d.Name, d.Kind.String(), d.Container,
				r.Start.Line, r.Start.Character, r.End.Line, r.End.Character); err != nil {
				return fmt.Errorf("failed to insert definition %s: %w", d.Name, err)
			}
		}
		return nil
	})
}

// Delete forgets path. Deleting an unknown path is not an error.
func (s *Store) Delete(path string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM definitions WHERE path = ?`, path); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path)
		return err
	})
}

// Hash returns the content hash stored for path, or ErrNotFound.
func (s *Store) Hash(path string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	var hash int64
	err := s.db.QueryRow(`SELECT hash FROM documents WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read hash of %s: %w", path, err)
	}
	return uint64(hash), nil
}

// Paths lists every recorded file.
func (s *Store) Paths() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.Query(`SELECT path FROM documents ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// Search returns definitions whose name contains the characters of query
// in order, ignoring case. Shorter names rank first. limit <= 0 means no
// limit.
func (s *Store) Search(query string, limit int) ([]Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	q := `SELECT path, name, kind, container, line, character, end_line, end_character FROM definitions`
	var args []any
	// LIKE folds case for ASCII only
	if first, _ := utf8.DecodeRuneInString(query); first != utf8.RuneError && first < utf8.RuneSelf {
		q += ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(string(first))+"%")
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search definitions: %w", err)
	}
	defer rows.Close()

	var out []Definition
	for rows.Next() {
		var d Definition
		var kind string
		if err := rows.Scan(&d.Path, &d.Name, &kind, &d.Container,
			&d.Range.Start.Line, &d.Range.Start.Character, &d.Range.End.Line, &d.Range.End.Character); err != nil {
			return nil, err
		}
		if !Matches(d.Name, query) {
			continue
		}
		d.Kind, _ = symbols.ParseKind(kind)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Name) != len(out[j].Name) {
			return len(out[i].Name) < len(out[j].Name)
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Path < out[j].Path
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Matches reports whether the runes of query appear in name in order,
// ignoring case.
func Matches(name, query string) bool {
	name = strings.ToLower(name)
	for _, r := range strings.ToLower(query) {
		i := strings.IndexRune(name, r)
		if i < 0 {
			return false
		}
		name = name[i+utf8.RuneLen(r):]
	}
	return true
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Close closes the database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
