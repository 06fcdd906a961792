package cart

import (
	"context"

	"licensestore/internal/domain"
)

// Repository persists one active cart per owner. AddLine merges quantity
// into an existing line for the same product.
type Repository interface {
	GetOrCreate(ctx context.Context, ownerID, currency string) (*domain.Cart, error)
	GetByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddLine(ctx context.Context, cartID string, line domain.CartLine) error
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	RemoveLine(ctx context.Context, cartID, productID string) error
	Clear(ctx context.Context, cartID string) error
}
