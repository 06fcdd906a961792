package draft

import (
	"context"
	"errors"
	"fmt"

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

func (r *postgresRepo) Create(ctx context.Context, d domain.OrderDraft) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO order_drafts (id, owner_id, subtotal, tax, total, currency, status, payment_method, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	if _, err := tx.Exec(ctx, q, d.ID, d.OwnerID, d.Subtotal, d.Tax, d.Total, d.Currency, d.Status, d.PaymentMethod, d.CreatedAt); err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}

	const lq = `
INSERT INTO order_draft_lines (draft_id, position, product_id, product_name, unit_price, quantity, requires_hwid_lock)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	for i, l := range d.Lines {
		if _, err := tx.Exec(ctx, lq, d.ID, i, l.ProductID, l.ProductName, l.UnitPrice, l.Quantity, l.RequiresHardwareLock); err != nil {
			return fmt.Errorf("insert draft line %d: %w", i, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.OrderDraft, error) {
	const q = `
SELECT id, owner_id, subtotal, tax, total, currency, status, payment_method, capture_id, created_at
FROM order_drafts
WHERE id = $1
`
	var d domain.OrderDraft
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&d.ID, &d.OwnerID, &d.Subtotal, &d.Tax, &d.Total, &d.Currency, &d.Status, &d.PaymentMethod, &d.CaptureID, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const lq = `
SELECT product_id, product_name, unit_price, quantity, requires_hwid_lock
FROM order_draft_lines
WHERE draft_id = $1
ORDER BY position
`
	rows, err := r.pool.Query(ctx, lq, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity, &l.RequiresHardwareLock); err != nil {
			return nil, err
		}
		d.Lines = append(d.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *postgresRepo) SetMethod(ctx context.Context, id, method string) error {
	const q = `UPDATE order_drafts SET payment_method = $2 WHERE id = $1 AND status = 'pending'`
	return r.guarded(ctx, q, id, method)
}

func (r *postgresRepo) Complete(ctx context.Context, id, method, captureID string) error {
	const q = `UPDATE order_drafts SET status = 'completed', payment_method = $2, capture_id = $3 WHERE id = $1 AND status = 'pending'`
	return r.guarded(ctx, q, id, method, captureID)
}

func (r *postgresRepo) Cancel(ctx context.Context, id string) error {
	const q = `UPDATE order_drafts SET status = 'cancelled' WHERE id = $1 AND status = 'pending'`
	return r.guarded(ctx, q, id)
}

// guarded runs a status=pending conditional update and distinguishes a
// missing draft from one that already left pending.
func (r *postgresRepo) guarded(ctx context.Context, q, id string, args ...interface{}) error {
	cmd, err := r.pool.Exec(ctx, q, append([]interface{}{id}, args...)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM order_drafts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrInvalidDraftState
}
