package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
)

// PostgresStore keeps the whole-collection semantics of the file backend
// over a single jsonb document per collection. Each collection is one
// row; Save replaces the document in one statement.
type PostgresStore struct {
	pool   *pgxpool.Pool
	locks  *lockTable
	logger *zap.Logger
}

// NewPostgresStore establishes a connection pool and optionally ensures
// the collections table exists.
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, errors.New("POSTGRES_DSN is required for the postgres storage driver")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	store := &PostgresStore{pool: pool, locks: newLockTable(), logger: logger}
	if cfg.EnsureSchema {
		if err := store.ensureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	logger.Info("connected to postgres")
	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS collections (
            name       TEXT PRIMARY KEY,
            document   JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// Load reads the collection document into out; an absent row or corrupt
// document decodes as empty with a diagnostic.
func (s *PostgresStore) Load(ctx context.Context, collection string, out any) error {
	var document []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM collections WHERE name=$1`, collection).Scan(&document)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("read collection row",
				zap.String("collection", collection), zap.Error(err))
		}
		return json.Unmarshal([]byte("[]"), out)
	}
	if err := json.Unmarshal(document, out); err != nil {
		s.logger.Warn("corrupt collection document, treating as empty",
			zap.String("collection", collection), zap.Error(err))
		return json.Unmarshal([]byte("[]"), out)
	}
	return nil
}

// Save upserts the whole collection document in a single statement.
func (s *PostgresStore) Save(ctx context.Context, collection string, records any) error {
	document, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}
	const query = `
        INSERT INTO collections (name, document, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()`
	if _, err := s.pool.Exec(ctx, query, collection, document); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	return nil
}

// Mutate serializes a read-modify-write cycle over the named collections.
func (s *PostgresStore) Mutate(ctx context.Context, fn func(ctx context.Context) error, collections ...string) error {
	release := s.locks.acquire(collections...)
	defer release()
	return fn(ctx)
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases pool resources.
func (s *PostgresStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
