package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/docbrief/internal/apperr"
	"github.com/starford/docbrief/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS files (
	path        TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	mtime       TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS changelog (
	seq     INTEGER PRIMARY KEY,
	date    TEXT NOT NULL,
	target  TEXT NOT NULL,
	message TEXT NOT NULL
);
`

// SQLiteStore keeps the manifest in a SQLite database. Changelog rows are
// only ever inserted.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperr.IO("state: open db", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, apperr.IO("state: ping db", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, apperr.IO("state: apply schema", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Load reads the full manifest.
func (s *SQLiteStore) Load() (*models.Manifest, error) {
	m := models.NewManifest()

	rows, err := s.conn.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, apperr.IO("state: load meta", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			rows.Close()
			return nil, apperr.IO("state: scan meta", err)
		}
		switch k {
		case "version":
			n, err := strconv.Atoi(v)
			if err != nil {
				rows.Close()
				return nil, apperr.IO("state: decode version", err)
			}
			m.Version = n
		case "generated_at":
			m.GeneratedAt = v
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.IO("state: load meta", err)
	}

	if err := s.loadFiles(m); err != nil {
		return nil, err
	}
	if err := s.loadChangelog(m); err != nil {
		return nil, err
	}
	m.Normalize()
	return m, nil
}

func (s *SQLiteStore) loadFiles(m *models.Manifest) error {
	rows, err := s.conn.Query(`SELECT path, fingerprint, mtime, summary FROM files`)
	if err != nil {
		return apperr.IO("state: load files", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path, fp, mtime, summary string
		if err := rows.Scan(&path, &fp, &mtime, &summary); err != nil {
			return apperr.IO("state: scan file", err)
		}
		rec := models.FileRecord{Fingerprint: fp}
		if mtime != "" {
			t, err := time.Parse(time.RFC3339Nano, mtime)
			if err != nil {
				return apperr.IO("state: decode mtime "+path, err)
			}
			rec.MTime = t
		}
		if err := json.Unmarshal([]byte(summary), &rec.Summary); err != nil {
			return apperr.IO("state: decode summary "+path, err)
		}
		m.Files[path] = rec
	}
	if err := rows.Err(); err != nil {
		return apperr.IO("state: load files", err)
	}
	return nil
}

func (s *SQLiteStore) loadChangelog(m *models.Manifest) error {
	rows, err := s.conn.Query(`SELECT date, target, message FROM changelog ORDER BY seq`)
	if err != nil {
		return apperr.IO("state: load changelog", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.ChangeEntry
		if err := rows.Scan(&e.Date, &e.Target, &e.Message); err != nil {
			return apperr.IO("state: scan changelog", err)
		}
		m.Changelog = append(m.Changelog, e)
	}
	if err := rows.Err(); err != nil {
		return apperr.IO("state: load changelog", err)
	}
	return nil
}

// Save replaces files and metadata and appends changelog entries that are
// not yet stored, all within one transaction.
func (s *SQLiteStore) Save(m *models.Manifest) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return apperr.IO("state: begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES ('version', ?), ('generated_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, strconv.Itoa(m.Version), m.GeneratedAt); err != nil {
		return apperr.IO("state: save meta", err)
	}

	if _, err := tx.Exec(`DELETE FROM files`); err != nil {
		return apperr.IO("state: clear files", err)
	}
	if len(m.Files) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO files (path, fingerprint, mtime, summary) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return apperr.IO("state: prepare file insert", err)
		}
		defer stmt.Close()
		for path, rec := range m.Files {
			summary := rec.Summary
			if summary == nil {
				summary = []string{}
			}
			summaryJSON, _ := json.Marshal(summary)
			mtime := ""
			if !rec.MTime.IsZero() {
				mtime = rec.MTime.Format(time.RFC3339Nano)
			}
			if _, err := stmt.Exec(path, rec.Fingerprint, mtime, string(summaryJSON)); err != nil {
				return apperr.IO("state: insert file "+path, err)
			}
		}
	}

	var stored int
	if err := tx.QueryRow(`SELECT count(*) FROM changelog`).Scan(&stored); err != nil {
		return apperr.IO("state: count changelog", err)
	}
	if len(m.Changelog) < stored {
		return apperr.IO("state: save changelog",
			fmt.Errorf("changelog is append-only: have %d stored rows, got %d", stored, len(m.Changelog)))
	}
	for i, e := range m.Changelog[stored:] {
		if _, err := tx.Exec(`INSERT INTO changelog (seq, date, target, message) VALUES (?, ?, ?, ?)`,
			stored+i, e.Date, e.Target, e.Message); err != nil {
			return apperr.IO("state: append changelog", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.IO("state: commit", err)
	}
	return nil
}
