package cart

import (
	"context"
	"errors"

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

func (r *postgresRepo) GetOrCreate(ctx context.Context, ownerID, currency string) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (owner_id, currency)
VALUES ($1, $2)
ON CONFLICT (owner_id) DO UPDATE SET owner_id = EXCLUDED.owner_id
RETURNING id::text, owner_id, currency, created_at
`
	var c domain.Cart
	if err := r.pool.QueryRow(ctx, q, ownerID, currency).Scan(&c.ID, &c.OwnerID, &c.Currency, &c.CreatedAt); err != nil {
		return nil, err
	}
	lines, err := r.lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Lines = lines
	return &c, nil
}

func (r *postgresRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Cart, error) {
	const q = `SELECT id::text, owner_id, currency, created_at FROM carts WHERE owner_id = $1`
	var c domain.Cart
	if err := r.pool.QueryRow(ctx, q, ownerID).Scan(&c.ID, &c.OwnerID, &c.Currency, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Lines = lines
	return &c, nil
}

func (r *postgresRepo) AddLine(ctx context.Context, cartID string, line domain.CartLine) error {
	// The frozen unit price of the first add wins for merged lines.
	const q = `
INSERT INTO cart_lines (cart_id, product_id, product_name, unit_price, quantity, requires_hwid_lock)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (cart_id, product_id) DO UPDATE SET
    quantity = cart_lines.quantity + EXCLUDED.quantity
`
	_, err := r.pool.Exec(ctx, q, cartID, line.ProductID, line.ProductName, line.EffectiveUnitPrice, line.Quantity, line.RequiresHardwareLock)
	return err
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	const q = `UPDATE cart_lines SET quantity = $3 WHERE cart_id = $1 AND product_id = $2`
	cmd, err := r.pool.Exec(ctx, q, cartID, productID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLineNotFound
	}
	return nil
}

func (r *postgresRepo) RemoveLine(ctx context.Context, cartID, productID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
	return err
}

func (r *postgresRepo) lines(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	const q = `
SELECT id::text, cart_id::text, product_id::text, product_name, unit_price, quantity, requires_hwid_lock, created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at, id
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.CartID, &l.ProductID, &l.ProductName, &l.EffectiveUnitPrice, &l.Quantity, &l.RequiresHardwareLock, &l.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
