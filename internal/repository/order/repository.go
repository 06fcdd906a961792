package order

import (
	"context"

	"licensestore/internal/domain"
)

// Iterator walks persisted orders oldest first. Callers must Close it.
type Iterator interface {
	Next(ctx context.Context) (*domain.PersistedOrder, bool, error)
	Close()
}

// Repository is the append-only order store. Orders are never deleted;
// the delivered flag and license statuses are the only mutable fields.
type Repository interface {
	Append(ctx context.Context, o domain.PersistedOrder) error
	FindByID(ctx context.Context, id string) (*domain.PersistedOrder, error)
	All(ctx context.Context) (Iterator, error)
	Count(ctx context.Context) (int, error)
	KeyExists(ctx context.Context, licenseKey string) (bool, error)
	LicenseCount(ctx context.Context) (int, error)
	SetLicenseStatus(ctx context.Context, licenseKey, status string) error
	MarkDelivered(ctx context.Context, id string) error
}
