package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in PRAGMA user_version. A database carrying a
// different version is rebuilt from scratch; its content is a cache of the
// workspace and can always be recomputed.
const SchemaVersion = 1

// setup checks the schema version and creates the tables if needed.
func (s *Store) setup() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version == SchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version != 0 {
		log.Infof("rebuilding workspace store: schema version %d, want %d", version, SchemaVersion)
		if err := dropTables(tx); err != nil {
			return err
		}
	}
	if err := createTables(tx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func createTables(tx *sql.Tx) error {
	createDocumentsTable := `
	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		hash INTEGER NOT NULL,
		updated INTEGER NOT NULL
	);
	`

	createDefinitionsTable := `
	CREATE TABLE IF NOT EXISTS definitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		container TEXT NOT NULL DEFAULT '',
		line INTEGER NOT NULL,
		character INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		end_character INTEGER NOT NULL,
		FOREIGN KEY (path) REFERENCES documents(path) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS definitions_name ON definitions(name);
	CREATE INDEX IF NOT EXISTS definitions_path ON definitions(path);
	`

	if _, err := tx.Exec(createDocumentsTable); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	if _, err := tx.Exec(createDefinitionsTable); err != nil {
		return fmt.Errorf("failed to create definitions table: %w", err)
	}
	return nil
}

func dropTables(tx *sql.Tx) error {
	for _, table := range []string{"definitions", "documents"} {
		if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", table, err)
		}
	}
	return nil
}
