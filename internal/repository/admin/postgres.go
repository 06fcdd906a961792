package admin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"licensestore/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) CreateSession(ctx context.Context, s Session) error {
	const q = `
INSERT INTO admin_sessions (token, expires_at, last_active_at)
VALUES ($1, $2, $3)
`
	_, err := r.pool.Exec(ctx, q, s.Token, s.ExpiresAt, s.LastActiveAt)
	return err
}

func (r *postgresRepo) GetSession(ctx context.Context, token string) (*Session, error) {
	const q = `
SELECT token, expires_at, last_active_at, created_at
FROM admin_sessions
WHERE token = $1
`
	var s Session
	if err := r.pool.QueryRow(ctx, q, token).Scan(&s.Token, &s.ExpiresAt, &s.LastActiveAt, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) TouchSession(ctx context.Context, token string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE admin_sessions SET last_active_at = $2 WHERE token = $1`, token, at)
	return err
}

func (r *postgresRepo) DeleteSession(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_sessions WHERE token = $1`, token)
	return err
}

func (r *postgresRepo) AppendLog(ctx context.Context, action string, details map[string]interface{}) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO admin_logs (action, details) VALUES ($1, $2)`, action, details)
	return err
}

func (r *postgresRepo) ListLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
SELECT id, action, COALESCE(details, '{}'::jsonb), created_at
FROM admin_logs
ORDER BY id DESC
LIMIT $1
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *postgresRepo) ClearLogs(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_logs`)
	return err
}
