package catalog

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
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

const productColumns = `id::text, name, description, category, price, discount_percent, stock, requires_hwid_lock, compatible_targets, badge, icon, update_cadence, created_at`

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	args := []interface{}{}
	if category != "" {
		q += ` WHERE category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY created_at, name`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("catalog repo: list category=%q error=%v", category, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("catalog repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	// id is a uuid column; compare as text so a malformed id reads as not
	// found instead of a query error.
	q := `SELECT ` + productColumns + ` FROM products WHERE id::text = $1`
	row := r.pool.QueryRow(ctx, q, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, category, price, discount_percent, stock, requires_hwid_lock, compatible_targets, badge, icon, update_cadence)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    price = EXCLUDED.price,
    discount_percent = EXCLUDED.discount_percent,
    stock = EXCLUDED.stock,
    requires_hwid_lock = EXCLUDED.requires_hwid_lock,
    compatible_targets = EXCLUDED.compatible_targets,
    badge = EXCLUDED.badge,
    icon = EXCLUDED.icon,
    update_cadence = EXCLUDED.update_cadence
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.Name,
		product.Description,
		product.Category,
		product.Price,
		product.DiscountPercent,
		product.Stock,
		product.RequiresHardwareLock,
		product.CompatibleTargets,
		product.Badge,
		product.Icon,
		product.UpdateCadence,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("catalog repo: upsert name=%q error=%v", product.Name, err)
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Price,
		&p.DiscountPercent,
		&p.Stock,
		&p.RequiresHardwareLock,
		&p.CompatibleTargets,
		&p.Badge,
		&p.Icon,
		&p.UpdateCadence,
		&p.CreatedAt,
	)
	return p, err
}
