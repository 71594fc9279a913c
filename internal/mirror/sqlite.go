// Package mirror keeps a best-effort local copy of the catalog in SQLite.
// It is a convenience cache only; the remote store stays authoritative.
package mirror

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/toolshelf/internal/domain"
)

// ToolsKey is the fixed slot the serialized tool list lives under.
const ToolsKey = "tools"

// Mirror is a tiny key-value table.
type Mirror struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the mirror database at path.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Mirror, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}
	// one connection: an in-memory database is private to its connection
	db.SetMaxOpenConns(1)

	m := &Mirror{db: db, now: time.Now}
	if err := m.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create mirror schema: %w", err)
	}
	return m, nil
}

func (m *Mirror) createSchema() error {
	_, err := m.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`)
	return err
}

// Close closes the database.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// Write replaces the mirrored tool list.
func (m *Mirror) Write(tools []*domain.Tool) error {
	if tools == nil {
		tools = []*domain.Tool{}
	}
	data, err := json.Marshal(tools)
	if err != nil {
		return fmt.Errorf("failed to marshal tools: %w", err)
	}

	_, err = m.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		ToolsKey, string(data), m.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write mirror: %w", err)
	}
	return nil
}

// Read returns the mirrored tool list and when it was written.
// An empty mirror yields no tools and a zero time.
func (m *Mirror) Read() ([]*domain.Tool, time.Time, error) {
	var (
		value   string
		updated int64
	)
	err := m.db.QueryRow(`SELECT value, updated_at FROM kv WHERE key = ?`, ToolsKey).Scan(&value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return []*domain.Tool{}, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read mirror: %w", err)
	}

	var tools []*domain.Tool
	if err := json.Unmarshal([]byte(value), &tools); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode mirror: %w", err)
	}
	return tools, time.Unix(updated, 0), nil
}
