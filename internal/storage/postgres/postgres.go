package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/frenow/rocketshoes-cart/internal/storage"
	"github.com/frenow/rocketshoes-cart/pkg/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the schema migrations for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory exists
	}
	return sub
}

const (
	selectValue = `SELECT value::text FROM kv_store WHERE key = $1`
	upsertValue = `INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// Storage implements storage.Storage on the kv_store table. Values must be
// JSON documents.
type Storage struct {
	db     database.DBTX
	tracer database.QueryTracer
}

// New creates a Postgres-backed storage.
func New(db database.DBTX, tracer database.QueryTracer) *Storage {
	tracer.System = "postgresql"
	return &Storage{db: db, tracer: tracer}
}

func (s *Storage) Get(ctx context.Context, key string) (v string, err error) {
	ctx, end := s.tracer.Start(ctx, "GetValue", selectValue)
	defer func() { end(err) }()

	if err = s.db.QueryRow(ctx, selectValue, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrKeyNotFound
		}
		return "", fmt.Errorf("select kv_store %s: %w", key, err)
	}
	return v, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := s.tracer.Start(ctx, "SetValue", upsertValue)
	defer func() { end(err) }()

	if _, err = s.db.Exec(ctx, upsertValue, key, value); err != nil {
		return fmt.Errorf("upsert kv_store %s: %w", key, err)
	}
	return nil
}

// Ping is used as the readiness check.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
