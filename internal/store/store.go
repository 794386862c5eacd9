// Package store handles SQLite persistence of counter pages.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/verte-zerg/tickup/internal/model"
	"github.com/verte-zerg/tickup/internal/page"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a page name is unknown.
var ErrNotFound = errors.New("page not found")

const (
	valueAttribute = "attribute"
	valueSetting   = "setting"
)

// Store wraps SQLite access for page declarations.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS pages (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			imported_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sections (
			page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			gap INTEGER NOT NULL,
			PRIMARY KEY (page_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS counters (
			page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
			section_position INTEGER NOT NULL,
			position INTEGER NOT NULL,
			counter_id TEXT NOT NULL,
			label TEXT NOT NULL,
			classes TEXT NOT NULL,
			PRIMARY KEY (page_id, counter_id)
		);`,
		`CREATE TABLE IF NOT EXISTS counter_values (
			page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
			counter_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (page_id, counter_id, kind, name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_counters_section ON counters(page_id, section_position, position);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SavePage stores a page under name, replacing any page of the same name.
func (s *Store) SavePage(ctx context.Context, name string, p *page.Page) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM pages WHERE name = ?`, name); err != nil {
		return err
	}
	// Explicit child cleanup; foreign_keys is per-connection in SQLite.
	for _, table := range []string{"sections", "counters", "counter_values"} {
		if _, err = tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE page_id NOT IN (SELECT id FROM pages)`, table)); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO pages (name, title, imported_at) VALUES (?, ?, ?)`,
		name, p.Title, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	pageID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for si, section := range p.Sections {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO sections (page_id, position, title, gap) VALUES (?, ?, ?, ?)`,
			pageID, si, section.Title, section.Gap); err != nil {
			return err
		}
		for ci, c := range section.Counters {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO counters (page_id, section_position, position, counter_id, label, classes)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				pageID, si, ci, c.ID, c.Label, joinClasses(c.Classes)); err != nil {
				return err
			}
			if err = insertValues(ctx, tx, pageID, c.ID, valueSetting, c.Settings); err != nil {
				return err
			}
			if err = insertValues(ctx, tx, pageID, c.ID, valueAttribute, c.Attributes); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func insertValues(ctx context.Context, tx *sql.Tx, pageID int64, counterID, kind string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO counter_values (page_id, counter_id, kind, name, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, pageID, counterID, kind, name, page.Stringify(values[name])); err != nil {
			return err
		}
	}
	return nil
}

// ListPages returns stored pages ordered by name.
func (s *Store) ListPages(ctx context.Context) ([]model.PageSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT p.name, p.title, p.imported_at,
			(SELECT COUNT(*) FROM counters c WHERE c.page_id = p.id) AS counters
		FROM pages p
		ORDER BY p.name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.PageSummary
	for rows.Next() {
		var summary model.PageSummary
		var importedAt string
		if err := rows.Scan(&summary.Name, &summary.Title, &importedAt, &summary.Counters); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, importedAt)
		if err != nil {
			return nil, err
		}
		summary.ImportedAt = parsed
		result = append(result, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadPage reads the page stored under name.
func (s *Store) LoadPage(ctx context.Context, name string) (*page.Page, error) {
	var pageID int64
	p := &page.Page{}
	err := s.db.QueryRowContext(ctx, `SELECT id, title FROM pages WHERE name = ?`, name).Scan(&pageID, &p.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadSections(ctx, pageID, p); err != nil {
		return nil, err
	}
	values, err := s.loadValues(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if err := s.loadCounters(ctx, pageID, p, values); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) loadSections(ctx context.Context, pageID int64, p *page.Page) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title, gap FROM sections WHERE page_id = ? ORDER BY position ASC`, pageID)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var section page.Section
		if err := rows.Scan(&section.Title, &section.Gap); err != nil {
			return err
		}
		p.Sections = append(p.Sections, section)
	}
	return rows.Err()
}

type counterValues struct {
	settings   map[string]any
	attributes map[string]any
}

func (s *Store) loadValues(ctx context.Context, pageID int64) (map[string]*counterValues, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT counter_id, kind, name, value FROM counter_values WHERE page_id = ?`, pageID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	result := map[string]*counterValues{}
	for rows.Next() {
		var counterID, kind, name, value string
		if err := rows.Scan(&counterID, &kind, &name, &value); err != nil {
			return nil, err
		}
		entry, ok := result[counterID]
		if !ok {
			entry = &counterValues{}
			result[counterID] = entry
		}
		switch kind {
		case valueSetting:
			if entry.settings == nil {
				entry.settings = map[string]any{}
			}
			entry.settings[name] = value
		case valueAttribute:
			if entry.attributes == nil {
				entry.attributes = map[string]any{}
			}
			entry.attributes[name] = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) loadCounters(ctx context.Context, pageID int64, p *page.Page, values map[string]*counterValues) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT section_position, counter_id, label, classes FROM counters
		 WHERE page_id = ?
		 ORDER BY section_position ASC, position ASC`, pageID)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var sectionPos int
		var c page.Counter
		var classes string
		if err := rows.Scan(&sectionPos, &c.ID, &c.Label, &classes); err != nil {
			return err
		}
		if sectionPos < 0 || sectionPos >= len(p.Sections) {
			return fmt.Errorf("counter %q references missing section %d", c.ID, sectionPos)
		}
		c.Classes = splitClasses(classes)
		if v, ok := values[c.ID]; ok {
			c.Settings = v.settings
			c.Attributes = v.attributes
		}
		p.Sections[sectionPos].Counters = append(p.Sections[sectionPos].Counters, c)
	}
	return rows.Err()
}

// DeletePage removes the page stored under name.
func (s *Store) DeletePage(ctx context.Context, name string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	res, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("%w: %s", ErrNotFound, name)
		return err
	}
	for _, table := range []string{"sections", "counters", "counter_values"} {
		if _, err = tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE page_id NOT IN (SELECT id FROM pages)`, table)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
