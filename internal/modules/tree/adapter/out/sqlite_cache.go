package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"hostnav/internal/modules/tree/domain"
	treeout "hostnav/internal/modules/tree/port/out"
	"hostnav/internal/platform/clock"

	_ "modernc.org/sqlite"
)

type SQLiteNodeCache struct {
	db    *sql.DB
	clock clock.Clock
}

func NewSQLiteNodeCache(dbPath string, clk clock.Clock) (*SQLiteNodeCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	c := &SQLiteNodeCache{db: db, clock: clk}
	if err := c.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

var _ treeout.NodeCache = (*SQLiteNodeCache)(nil)

func (c *SQLiteNodeCache) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tree_cache (
  kind TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  fetched_at TEXT NOT NULL
);
`
	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create tree_cache table: %w", err)
	}
	return nil
}

func (c *SQLiteNodeCache) Load(ctx context.Context, key string) ([]domain.Descriptor, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM tree_cache WHERE kind = ?;`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load cached %s tree: %w", key, err)
	}
	nodes := []wireNode{}
	if err := json.Unmarshal([]byte(payload), &nodes); err != nil {
		return nil, false, fmt.Errorf("decode cached %s tree: %w", key, err)
	}
	return fromWire(nodes), true, nil
}

func (c *SQLiteNodeCache) Store(ctx context.Context, key string, nodes []domain.Descriptor) error {
	payload, err := json.Marshal(toWire(nodes))
	if err != nil {
		return fmt.Errorf("encode %s tree: %w", key, err)
	}
	const stmt = `
INSERT INTO tree_cache (kind, payload, fetched_at)
VALUES (?, ?, ?)
ON CONFLICT(kind) DO UPDATE SET
  payload = excluded.payload,
  fetched_at = excluded.fetched_at;
`
	if _, err := c.db.ExecContext(ctx, stmt, key, string(payload), c.clock.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("store %s tree: %w", key, err)
	}
	return nil
}

func (c *SQLiteNodeCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM tree_cache;`); err != nil {
		return fmt.Errorf("clear tree cache: %w", err)
	}
	return nil
}

func (c *SQLiteNodeCache) Close() error {
	return c.db.Close()
}
