package vectorstore

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/hulo-lang/hulomind/internal/chunk"
	"github.com/hulo-lang/hulomind/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PG is the persistent store backed by PostgreSQL + pgvector. Data
// survives process restarts; concurrent reads run against MVCC snapshots,
// so ingestion never blocks search traffic.
//
// The schema fixes the vector column at 768 dimensions (see
// migrations/0001_chunks.up.sql); the configured embedder must match.
type PG struct {
	pool      *pgxpool.Pool
	dimension int
	logger    log.Logger
}

// NewPG connects to PostgreSQL, applies pending migrations and returns the
// store. Connection or migration failure surfaces as ErrStorage.
func NewPG(ctx context.Context, dsn string, dimension int, logger log.Logger) (*PG, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting: %v", ErrStorage, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrStorage, err)
	}

	if err := migrateUp(pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PG{pool: pool, dimension: dimension, logger: logger}, nil
}

// migrateUp applies embedded SQL migrations through a database/sql handle
// borrowed from the pgx pool.
func migrateUp(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("%w: migrate driver: %v", ErrStorage, err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: migration source: %v", ErrStorage, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("%w: migrate instance: %v", ErrStorage, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: applying migrations: %v", ErrStorage, err)
	}
	return nil
}

// Upsert inserts or replaces chunks by ID in a single transaction, so a
// failed ingestion batch never leaves the corpus half-replaced.
func (p *PG) Upsert(ctx context.Context, chunks []chunk.Chunk) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, c := range chunks {
		if len(c.Embedding) != p.dimension {
			return errDimension(p.dimension, len(c.Embedding))
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO chunks (id, text, title, category, language, path, heading_path, chunk_index, embed_model, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
				text = EXCLUDED.text,
				title = EXCLUDED.title,
				category = EXCLUDED.category,
				language = EXCLUDED.language,
				path = EXCLUDED.path,
				heading_path = EXCLUDED.heading_path,
				chunk_index = EXCLUDED.chunk_index,
				embed_model = EXCLUDED.embed_model,
				embedding = EXCLUDED.embedding`,
			c.ID, c.Text, c.Title, c.Category, c.Language, c.Path,
			c.HeadingPath, c.Index, c.EmbedModel, pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("%w: upsert chunk %q: %v", ErrStorage, c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	p.logger.Debug("upserted chunks", "count", len(chunks))
	return nil
}

// Search runs a cosine-similarity query. pgvector's <=> operator is cosine
// distance; similarity = 1 - distance. Ordering by distance then ID gives
// the deterministic ordering the Store contract requires.
func (p *PG) Search(ctx context.Context, vector []float32, topK int, minScore float32) ([]Hit, error) {
	if topK <= 0 {
		return nil, nil
	}
	if len(vector) != p.dimension {
		return nil, errDimension(p.dimension, len(vector))
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, text, title, category, language, path, heading_path, chunk_index, embed_model,
		       1 - (embedding <=> $1) AS similarity
		FROM chunks
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1 ASC, id ASC
		LIMIT $3`,
		pgvector.NewVector(vector), minScore, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrStorage, err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var c chunk.Chunk
		var score float64
		if err := rows.Scan(&c.ID, &c.Text, &c.Title, &c.Category, &c.Language,
			&c.Path, &c.HeadingPath, &c.Index, &c.EmbedModel, &score); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStorage, err)
		}
		if score < 0 {
			score = 0
		}
		hits = append(hits, Hit{Chunk: c, Score: float32(score)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrStorage, err)
	}
	return hits, nil
}

// DeleteAll removes every chunk. Idempotent.
func (p *PG) DeleteAll(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("%w: delete all: %v", ErrStorage, err)
	}
	return nil
}

// Count reports the number of stored chunks.
func (p *PG) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStorage, err)
	}
	return n, nil
}

// Close releases the connection pool.
func (p *PG) Close() {
	p.pool.Close()
}
