package customer

import (
	"context"
	"time"
)

// Customer is a registered storefront account.
type Customer struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Verified     bool
	Disabled     bool
	CreatedAt    time.Time
}

type Repository interface {
	// Create returns domain.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, c Customer) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	Count(ctx context.Context) (int, error)
}
