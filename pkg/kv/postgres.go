package kv

import (
	"context"
	"embed"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrations holds the goose migrations creating the kv_items table.
// Apply them with pkg/db.Migrate(ctx, pool, kv.Migrations, "migrations", ...).
//
//go:embed migrations/*.sql
var Migrations embed.FS

// PostgresDB is the subset of *pgxpool.Pool used by the Postgres backend.
type PostgresDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a Storage backed by the kv_items table.
type Postgres struct {
	db PostgresDB
}

// NewPostgres creates a Postgres-backed storage.
func NewPostgres(db PostgresDB) *Postgres {
	return &Postgres{db: db}
}

// Get returns the value stored under key.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx, `SELECT value FROM kv_items WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Set upserts value under key.
func (p *Postgres) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := p.db.Exec(ctx, `
		INSERT INTO kv_items (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	return err
}

// Delete removes key.
func (p *Postgres) Delete(ctx context.Context, key string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM kv_items WHERE key = $1`, key)
	return err
}

// Keys lists keys starting with prefix.
func (p *Postgres) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := p.db.Query(ctx,
		`SELECT key FROM kv_items WHERE key LIKE $1 ESCAPE '\' ORDER BY key`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, err
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Purge deletes the namespaces under prefix whose newest key was written
// before before. See [Purger].
func (p *Postgres) Purge(ctx context.Context, prefix string, before time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `
		WITH items AS (
			SELECT key, updated_at,
				split_part(substr(key, char_length($1::text) + 1), ':', 1) AS ns
			FROM kv_items
			WHERE key LIKE $2 ESCAPE '\'
		), stale AS (
			SELECT ns FROM items GROUP BY ns HAVING max(updated_at) < $3
		)
		DELETE FROM kv_items k
		USING items i JOIN stale s ON s.ns = i.ns
		WHERE k.key = i.key`,
		prefix, escapeLike(prefix)+"_%", before,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Close is a no-op. The pool lifecycle belongs to the caller (pkg/db.Shutdown).
func (p *Postgres) Close() error {
	return nil
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}

var (
	_ Storage = (*Postgres)(nil)
	_ Purger  = (*Postgres)(nil)
)
