package catalog

import (
	"context"

	"licensestore/internal/domain"
)

// Repository reads the immutable product catalog. Upsert exists only for
// seeding; nothing in the checkout path writes products.
type Repository interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	Count(ctx context.Context) (int, error)
}
