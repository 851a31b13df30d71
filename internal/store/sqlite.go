package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cwarden/monthcal/internal/calendar"
	"github.com/cwarden/monthcal/internal/store/migrations"
)

// SQLite persists snapshots into an events table. Each Save replaces the
// table contents inside one transaction, so the database always holds a
// complete snapshot.
type SQLite struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the database at path and brings
// its schema up to date.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps the snapshot transaction simple.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := migrations.Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &SQLite{conn: conn, path: path}, nil
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Load() (*calendar.Index, error) {
	rows, err := s.conn.Query(`
		SELECT id, date_key, title, participants, description
		FROM events
		ORDER BY key_order, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	ix := calendar.NewIndex()
	n := 0
	for rows.Next() {
		var (
			key string
			ev  calendar.Event
		)
		if err := rows.Scan(&ev.ID, &key, &ev.Title, &ev.Participants, &ev.Description); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ix.Append(calendar.DateKey(key), ev)
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return ix, nil
}

func (s *SQLite) Save(index *calendar.Index) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear events: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events (id, date_key, key_order, position, title, participants, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	keyOrder := 0
	index.Each(func(key calendar.DateKey, evs []calendar.Event) bool {
		for pos, ev := range evs {
			if _, err = stmt.Exec(ev.ID, string(key), keyOrder, pos, ev.Title, ev.Participants, ev.Description); err != nil {
				return false
			}
		}
		keyOrder++
		return true
	})
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}
