package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hostnav/internal/modules/history/domain"
	historyout "hostnav/internal/modules/history/port/out"

	_ "modernc.org/sqlite"
)

// Fixed width keeps lexical order equal to time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteConnectionStore struct {
	db *sql.DB
}

func NewSQLiteConnectionStore(dbPath string) (*SQLiteConnectionStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &SQLiteConnectionStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

var _ historyout.ConnectionStore = (*SQLiteConnectionStore)(nil)

func (s *SQLiteConnectionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS connections (
  id TEXT PRIMARY KEY,
  node_id TEXT NOT NULL,
  title TEXT NOT NULL,
  mode TEXT NOT NULL,
  connector TEXT NOT NULL,
  started_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_connections_started_at ON connections(started_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create connections table: %w", err)
	}
	return nil
}

func (s *SQLiteConnectionStore) Save(ctx context.Context, c domain.Connection) error {
	const stmt = `
INSERT INTO connections (id, node_id, title, mode, connector, started_at)
VALUES (?, ?, ?, ?, ?, ?);
`
	if _, err := s.db.ExecContext(ctx, stmt, c.ID, c.NodeID, c.Title, c.Mode, c.Connector, c.StartedAt.UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("save connection: %w", err)
	}
	return nil
}

func (s *SQLiteConnectionStore) Recent(ctx context.Context, limit int) ([]domain.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, node_id, title, mode, connector, started_at
FROM connections
ORDER BY started_at DESC, rowid DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	defer rows.Close()

	out := []domain.Connection{}
	for rows.Next() {
		var c domain.Connection
		var startedAt string
		if err := rows.Scan(&c.ID, &c.NodeID, &c.Title, &c.Mode, &c.Connector, &startedAt); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		c.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at for %s: %w", c.ID, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}
	return out, nil
}

func (s *SQLiteConnectionStore) Close() error {
	return s.db.Close()
}
