package order

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"licensestore/internal/domain"
	"licensestore/internal/migrate"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func testOrder(key string) domain.PersistedOrder {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return domain.PersistedOrder{
		OrderDraft: domain.OrderDraft{
			ID:      domain.NewOrderID(now),
			OwnerID: "session:integration",
			Lines: []domain.OrderLine{
				{ProductID: "p1", ProductName: "Profiler Pro", UnitPrice: decimal.RequireFromString("25.49"), Quantity: 2},
			},
			Subtotal:      decimal.RequireFromString("50.98"),
			Tax:           decimal.Zero,
			Total:         decimal.RequireFromString("50.98"),
			Currency:      "USD",
			CreatedAt:     now,
			Status:        domain.OrderCompleted,
			PaymentMethod: domain.MethodCard,
			CaptureID:     "CARD-1",
		},
		Licenses: []domain.LicenseRecord{
			{
				LicenseKey:  key,
				ProductID:   "p1",
				ProductName: "Profiler Pro",
				IssuedAt:    now,
				ExpiresAt:   now.Add(30 * 24 * time.Hour),
				Status:      domain.LicenseActive,
			},
		},
	}
}

func TestAppendAndFind(t *testing.T) {
	repo := NewPostgres(testPool(t), nil)
	ctx := context.Background()

	o := testOrder("CHT-INTG-" + domain.NewOrderID(time.Now())[4:])
	if err := repo.Append(ctx, o); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.FindByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != o.ID || got.Status != domain.OrderCompleted || len(got.Lines) != 1 || len(got.Licenses) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Total.Equal(o.Total) {
		t.Fatalf("total = %s, want %s", got.Total, o.Total)
	}

	if err := repo.Append(ctx, o); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate append err = %v, want ErrAlreadyExists", err)
	}
}

func TestFindUnknownOrder(t *testing.T) {
	repo := NewPostgres(testPool(t), nil)
	if _, err := repo.FindByID(context.Background(), "ORD-0-MISSING00"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestIterationIsInsertionOrdered(t *testing.T) {
	repo := NewPostgres(testPool(t), nil)
	ctx := context.Background()

	first := testOrder("CHT-ITER-" + domain.NewOrderID(time.Now())[4:])
	second := testOrder("CHT-ITER-" + domain.NewOrderID(time.Now().Add(time.Millisecond))[4:])
	if err := repo.Append(ctx, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := repo.Append(ctx, second); err != nil {
		t.Fatalf("append second: %v", err)
	}

	it, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	defer it.Close()

	posFirst, posSecond := -1, -1
	for i := 0; ; i++ {
		o, ok, err := it.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ok {
			break
		}
		switch o.ID {
		case first.ID:
			posFirst = i
		case second.ID:
			posSecond = i
		}
	}
	if posFirst == -1 || posSecond == -1 || posFirst > posSecond {
		t.Fatalf("iteration order wrong: first at %d, second at %d", posFirst, posSecond)
	}
}

func TestKeyExistsAndRevoke(t *testing.T) {
	repo := NewPostgres(testPool(t), nil)
	ctx := context.Background()

	key := "CHT-KEYS-" + domain.NewOrderID(time.Now())[4:]
	o := testOrder(key)
	if err := repo.Append(ctx, o); err != nil {
		t.Fatalf("append: %v", err)
	}

	exists, err := repo.KeyExists(ctx, key)
	if err != nil {
		t.Fatalf("key exists: %v", err)
	}
	if !exists {
		t.Fatal("appended key not found")
	}
	exists, err = repo.KeyExists(ctx, "CHT-0000-0000-0000-0000")
	if err != nil {
		t.Fatalf("key exists: %v", err)
	}
	if exists {
		t.Fatal("phantom key reported as existing")
	}

	if err := repo.SetLicenseStatus(ctx, key, domain.LicenseRevoked); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, err := repo.FindByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Licenses[0].Status != domain.LicenseRevoked {
		t.Fatalf("status = %s, want revoked", got.Licenses[0].Status)
	}

	if err := repo.SetLicenseStatus(ctx, "CHT-0000-0000-0000-0000", domain.LicenseRevoked); !errors.Is(err, domain.ErrLicenseNotFound) {
		t.Fatalf("err = %v, want ErrLicenseNotFound", err)
	}
}

func TestMarkDelivered(t *testing.T) {
	repo := NewPostgres(testPool(t), nil)
	ctx := context.Background()

	o := testOrder("CHT-DLVR-" + domain.NewOrderID(time.Now())[4:])
	if err := repo.Append(ctx, o); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.MarkDelivered(ctx, o.ID); err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	got, err := repo.FindByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.Delivered {
		t.Fatal("delivered flag not persisted")
	}
}
