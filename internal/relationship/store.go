// Package relationship implements the durable SQL relationship store spec
// §1 and §4.G describe as an external collaborator: Reflection's
// relationships apply step is the only caller. Grounded on the teacher's
// internal/persistence/databases Postgres stores (same pgxpool-backed
// init-table-then-CRUD shape as evolving_memory_store_postgres.go and
// chat_store_postgres.go).
package relationship

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Relationship is a single upserted human/agent relationship record.
type Relationship struct {
	Name      string
	Context   string
	CreatedAt time.Time
	UpdatedAt time.Time
	TouchedAt time.Time
}

// Store is the narrow surface spec §6 assigns to the relationship store:
// put/get by name, list, and touch (bump last-interacted-at without
// changing content).
type Store interface {
	PutByName(ctx context.Context, name, relContext string) error
	GetByName(ctx context.Context, name string) (Relationship, bool, error)
	List(ctx context.Context) ([]Relationship, error)
	Touch(ctx context.Context, name string) error
	// Upsert satisfies internal/reflection.RelationshipStore's narrower
	// (ctx, name, context) surface.
	Upsert(ctx context.Context, name, relContext string) error
	Close()
}

// PostgresStore is a Store backed by a pgxpool.Pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and returns a ready store. Callers must
// call Init once before first use (mirrors the teacher's store lifecycle:
// construct, then Init, then use).
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Init ensures the relationships table exists.
func (s *PostgresStore) Init(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("relationship: postgres store requires pool")
	}
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS relationships (
    name TEXT PRIMARY KEY,
    context TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    touched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
	return err
}

func (s *PostgresStore) PutByName(ctx context.Context, name, relContext string) error {
	if s.pool == nil {
		return errors.New("relationship: postgres store requires pool")
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO relationships (name, context, created_at, updated_at, touched_at)
VALUES ($1, $2, NOW(), NOW(), NOW())
ON CONFLICT (name) DO UPDATE SET context = EXCLUDED.context, updated_at = NOW(), touched_at = NOW()
`, name, relContext)
	return err
}

func (s *PostgresStore) GetByName(ctx context.Context, name string) (Relationship, bool, error) {
	if s.pool == nil {
		return Relationship{}, false, errors.New("relationship: postgres store requires pool")
	}
	row := s.pool.QueryRow(ctx, `
SELECT name, context, created_at, updated_at, touched_at FROM relationships WHERE name = $1
`, name)
	var r Relationship
	if err := row.Scan(&r.Name, &r.Context, &r.CreatedAt, &r.UpdatedAt, &r.TouchedAt); err != nil {
		return Relationship{}, false, nil
	}
	return r, true, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Relationship, error) {
	if s.pool == nil {
		return nil, errors.New("relationship: postgres store requires pool")
	}
	rows, err := s.pool.Query(ctx, `
SELECT name, context, created_at, updated_at, touched_at FROM relationships ORDER BY touched_at DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.Name, &r.Context, &r.CreatedAt, &r.UpdatedAt, &r.TouchedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Touch(ctx context.Context, name string) error {
	if s.pool == nil {
		return errors.New("relationship: postgres store requires pool")
	}
	_, err := s.pool.Exec(ctx, `UPDATE relationships SET touched_at = NOW() WHERE name = $1`, name)
	return err
}

// Upsert satisfies internal/reflection.RelationshipStore's narrower
// (ctx, name, context) surface.
func (s *PostgresStore) Upsert(ctx context.Context, name, relContext string) error {
	return s.PutByName(ctx, name, relContext)
}
