// Package memory persists remembered facts and the command history in a
// local SQLite database so the agent can recall context across sessions.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tarunerror/openNova/pkg/logx"
)

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	content TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS command_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	command TEXT NOT NULL,
	route TEXT NOT NULL
);
`

// Note is one remembered fact.
type Note struct {
	ID        int64
	CreatedAt time.Time
	Content   string
}

// CommandRecord is one processed command and how it was routed.
type CommandRecord struct {
	ID        int64
	CreatedAt time.Time
	Command   string
	Route     string
}

// Store is a SQLite-backed memory. Safe for concurrent use; SQLite's busy
// timeout absorbs writer contention.
type Store struct {
	db     *sql.DB
	logger *logx.Logger
}

// Open opens (creating if needed) the memory database at path.
func Open(path string, logger *logx.Logger) (*Store, error) {
	if logger == nil {
		logger = logx.NewLogger("memory")
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create memory dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply memory schema: %w", err)
	}

	logger.Debug("memory store open at %s", path)
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Remember stores one fact.
func (s *Store) Remember(ctx context.Context, content string) error {
	if content == "" {
		return fmt.Errorf("nothing to remember")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO notes (content) VALUES (?)`, content)
	if err != nil {
		return fmt.Errorf("remember: %w", err)
	}
	return nil
}

// Recall returns the newest notes whose content matches query as a
// substring, newest first. An empty query returns the newest notes.
func (s *Store) Recall(ctx context.Context, query string, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, content FROM notes
		 WHERE content LIKE ?
		 ORDER BY id DESC LIMIT ?`,
		"%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("recall: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.CreatedAt, &n.Content); err != nil {
			return nil, fmt.Errorf("recall scan: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// LogCommand appends a processed command to the history.
func (s *Store) LogCommand(ctx context.Context, command, route string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO command_log (command, route) VALUES (?, ?)`, command, route)
	if err != nil {
		return fmt.Errorf("log command: %w", err)
	}
	return nil
}

// RecentCommands returns the newest history entries, newest first.
func (s *Store) RecentCommands(ctx context.Context, limit int) ([]CommandRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, command, route FROM command_log
		 ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent commands: %w", err)
	}
	defer rows.Close()

	var recs []CommandRecord
	for rows.Next() {
		var r CommandRecord
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Command, &r.Route); err != nil {
			return nil, fmt.Errorf("recent commands scan: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
