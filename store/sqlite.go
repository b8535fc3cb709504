// Package store keeps manager configuration in a SQLite database.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"sizekit/manager"
)

// Memory is the database path which keeps everything in memory.
const Memory = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	base_size   REAL    NOT NULL,
	preset_name TEXT    NOT NULL DEFAULT '',
	updated_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	base_size   REAL    NOT NULL,
	preset_name TEXT    NOT NULL DEFAULT '',
	saved_at    INTEGER NOT NULL
);
`

// ErrClosed is returned by operations on closed database.
var ErrClosed = errors.New("database is closed")

// DefaultHistoryLimit is number of history rows kept by default.
const DefaultHistoryLimit = 32

// SQLite is manager.Storage backed by a single connection. Besides the
// current configuration it keeps a short history of saved ones.
type SQLite struct {
	log   *zap.Logger
	now   func() time.Time
	limit int

	mu   sync.Mutex
	conn *sqlite.Conn
}

var _ manager.Storage = (*SQLite)(nil)

// Open opens (creating if necessary) database at path. Use Memory for a
// throwaway database.
func Open(path string, log *zap.Logger) (*SQLite, error) {
	if log == nil {
		log = zap.NewNop()
	}

	flags := sqlite.OpenReadWrite | sqlite.OpenCreate
	if path == Memory {
		flags |= sqlite.OpenMemory
	} else {
		flags |= sqlite.OpenWAL
	}
	conn, err := sqlite.OpenConn(path, flags)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLite{
		log:   log.Named("store"),
		now:   time.Now,
		limit: DefaultHistoryLimit,
		conn:  conn,
	}
	s.log.Debug("Database opened", zap.String("path", path))
	return s, nil
}

// SetHistoryLimit changes number of history rows kept, values below 1 mean
// default.
func (s *SQLite) SetHistoryLimit(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = DefaultHistoryLimit
	}
	s.limit = n
}

// Load returns stored configuration.
func (s *SQLite) Load() (manager.Config, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return manager.Config{}, false, ErrClosed
	}

	var (
		cfg   manager.Config
		found bool
	)
	err := sqlitex.Execute(s.conn, `SELECT base_size, preset_name FROM settings WHERE id = 1`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			cfg.BaseSize = stmt.ColumnFloat(0)
			cfg.Preset = stmt.ColumnText(1)
			found = true
			return nil
		}})
	if err != nil {
		return manager.Config{}, false, fmt.Errorf("read settings: %w", err)
	}
	return cfg, found, nil
}

// Save stores configuration and appends it to history.
func (s *SQLite) Save(cfg manager.Config) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrClosed
	}
	defer sqlitex.Save(s.conn)(&err)

	ts := s.now().UnixMilli()
	err = sqlitex.Execute(s.conn, `INSERT INTO settings (id, base_size, preset_name, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET base_size = excluded.base_size, preset_name = excluded.preset_name, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{cfg.BaseSize, cfg.Preset, ts}})
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	err = sqlitex.Execute(s.conn, `INSERT INTO history (base_size, preset_name, saved_at) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{cfg.BaseSize, cfg.Preset, ts}})
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	err = sqlitex.Execute(s.conn, `DELETE FROM history WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)`,
		&sqlitex.ExecOptions{Args: []any{s.limit}})
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

// Entry is a history record.
type Entry struct {
	Config manager.Config
	Saved  time.Time
}

// History returns saved configurations, most recent first.
func (s *SQLite) History() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, ErrClosed
	}

	var out []Entry
	err := sqlitex.Execute(s.conn, `SELECT base_size, preset_name, saved_at FROM history ORDER BY seq DESC`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			out = append(out, Entry{
				Config: manager.Config{BaseSize: stmt.ColumnFloat(0), Preset: stmt.ColumnText(1)},
				Saved:  time.UnixMilli(stmt.ColumnInt64(2)),
			})
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}

// Close closes database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
