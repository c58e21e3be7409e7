package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/session"
)

// PostgresSessionRepository mirrors session records into the portal_sessions table.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository returns a Postgres-backed session storage.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

func (r *PostgresSessionRepository) Load(ctx context.Context, key string) (session.Record, error) {
	const query = `
        SELECT token, role
        FROM portal_sessions WHERE session_key=$1`

	var rec session.Record
	var role string
	if err := r.pool.QueryRow(ctx, query, key).Scan(&rec.Token, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Record{}, session.ErrNotFound
		}
		return session.Record{}, err
	}
	rec.Role = domain.Role(role)
	return rec, nil
}

// Save upserts token and role in one statement.
func (r *PostgresSessionRepository) Save(ctx context.Context, key string, rec session.Record) error {
	const query = `
        INSERT INTO portal_sessions (session_key, token, role, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (session_key)
        DO UPDATE SET token=EXCLUDED.token, role=EXCLUDED.role, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, key, rec.Token, string(rec.Role))
	return err
}

func (r *PostgresSessionRepository) Clear(ctx context.Context, key string) error {
	const query = `DELETE FROM portal_sessions WHERE session_key=$1`
	_, err := r.pool.Exec(ctx, query, key)
	return err
}

// DeleteIdle removes records not written since before.
func (r *PostgresSessionRepository) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM portal_sessions WHERE updated_at < $1`
	cmd, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
