package order

import (
	"context"
	"errors"
	"fmt"
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

func (r *postgresRepo) Append(ctx context.Context, o domain.PersistedOrder) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapWriteErr(err)
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (id, owner_id, user_id, subtotal, tax, total, currency, status, payment_method, capture_id, delivered, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	if _, err := tx.Exec(ctx, q,
		o.ID, o.OwnerID, o.UserID, o.Subtotal, o.Tax, o.Total, o.Currency,
		o.Status, o.PaymentMethod, o.CaptureID, o.Delivered, o.CreatedAt,
	); err != nil {
		r.logger.Printf("order repo: append id=%s error=%v", o.ID, err)
		return mapWriteErr(err)
	}

	const lq = `
INSERT INTO order_lines (order_id, position, product_id, product_name, unit_price, quantity, requires_hwid_lock)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	for i, l := range o.Lines {
		if _, err := tx.Exec(ctx, lq, o.ID, i, l.ProductID, l.ProductName, l.UnitPrice, l.Quantity, l.RequiresHardwareLock); err != nil {
			return mapWriteErr(fmt.Errorf("order line %d: %w", i, err))
		}
	}

	const kq = `
INSERT INTO licenses (license_key, order_id, position, product_id, product_name, hwid_locked, issued_at, expires_at, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	for i, lic := range o.Licenses {
		if _, err := tx.Exec(ctx, kq, lic.LicenseKey, o.ID, i, lic.ProductID, lic.ProductName, lic.HardwareLocked, lic.IssuedAt, lic.ExpiresAt, lic.Status); err != nil {
			return mapWriteErr(fmt.Errorf("license %d: %w", i, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return mapWriteErr(err)
	}
	r.logger.Printf("order repo: appended id=%s total=%s licenses=%d", o.ID, o.Total.StringFixed(2), len(o.Licenses))
	return nil
}

func (r *postgresRepo) FindByID(ctx context.Context, id string) (*domain.PersistedOrder, error) {
	const q = `
SELECT id, owner_id, user_id, subtotal, tax, total, currency, status, payment_method, capture_id, delivered, created_at
FROM orders
WHERE id = $1
`
	var o domain.PersistedOrder
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.OwnerID, &o.UserID, &o.Subtotal, &o.Tax, &o.Total, &o.Currency,
		&o.Status, &o.PaymentMethod, &o.CaptureID, &o.Delivered, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	if o.Lines, err = r.orderLines(ctx, id); err != nil {
		return nil, err
	}
	if o.Licenses, err = r.orderLicenses(ctx, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) All(ctx context.Context) (Iterator, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM orders ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &iterator{repo: r, ids: ids}, nil
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) KeyExists(ctx context.Context, licenseKey string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM licenses WHERE license_key = $1)`, licenseKey).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) LicenseCount(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM licenses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postgresRepo) SetLicenseStatus(ctx context.Context, licenseKey, status string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE licenses SET status = $2 WHERE license_key = $1`, licenseKey, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLicenseNotFound
	}
	return nil
}

func (r *postgresRepo) MarkDelivered(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET delivered = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepo) orderLines(ctx context.Context, id string) ([]domain.OrderLine, error) {
	const q = `
SELECT product_id, product_name, unit_price, quantity, requires_hwid_lock
FROM order_lines
WHERE order_id = $1
ORDER BY position
`
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.UnitPrice, &l.Quantity, &l.RequiresHardwareLock); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) orderLicenses(ctx context.Context, id string) ([]domain.LicenseRecord, error) {
	const q = `
SELECT license_key, product_id, product_name, hwid_locked, issued_at, expires_at, status
FROM licenses
WHERE order_id = $1
ORDER BY position
`
	rows, err := r.pool.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []domain.LicenseRecord
	for rows.Next() {
		var l domain.LicenseRecord
		if err := rows.Scan(&l.LicenseKey, &l.ProductID, &l.ProductName, &l.HardwareLocked, &l.IssuedAt, &l.ExpiresAt, &l.Status); err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, rows.Err()
}

type iterator struct {
	repo *postgresRepo
	ids  []string
	pos  int
}

func (it *iterator) Next(ctx context.Context) (*domain.PersistedOrder, bool, error) {
	if it.pos >= len(it.ids) {
		return nil, false, nil
	}
	id := it.ids[it.pos]
	it.pos++
	o, err := it.repo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (it *iterator) Close() {}

// mapWriteErr surfaces capacity failures as domain.ErrStorageFull so lost
// license keys are never silently dropped.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "53100", "53200", "53300": // disk_full, out_of_memory, too_many_connections
			return fmt.Errorf("%w: %v", domain.ErrStorageFull, err)
		case "23505":
			return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
		}
	}
	return err
}
