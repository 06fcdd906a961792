package customer

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"licensestore/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, c Customer) (*Customer, error) {
	const q = `
INSERT INTO customers (email, password_hash, display_name, verified, disabled)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, created_at
`
	res := c
	err := r.pool.QueryRow(ctx, q, c.Email, c.PasswordHash, c.DisplayName, c.Verified, c.Disabled).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: create email=%s error=%v", c.Email, err)
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	const q = `
SELECT id::text, email, password_hash, display_name, verified, disabled, created_at
FROM customers
WHERE email = $1
`
	var c Customer
	err := r.pool.QueryRow(ctx, q, email).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.DisplayName, &c.Verified, &c.Disabled, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Customer, error) {
	const q = `
SELECT id::text, email, password_hash, display_name, verified, disabled, created_at
FROM customers
WHERE id = $1
`
	var c Customer
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.DisplayName, &c.Verified, &c.Disabled, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
