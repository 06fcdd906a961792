package draft

import (
	"context"

	"licensestore/internal/domain"
)

// Repository persists in-progress order drafts. The state-changing methods
// are compare-and-set on status=pending so a draft that already completed
// or was cancelled can never transition again.
type Repository interface {
	Create(ctx context.Context, d domain.OrderDraft) error
	GetByID(ctx context.Context, id string) (*domain.OrderDraft, error)
	SetMethod(ctx context.Context, id, method string) error
	// Complete moves pending -> completed recording the capture id and
	// payment method. Returns domain.ErrInvalidDraftState when the draft
	// is no longer pending.
	Complete(ctx context.Context, id, method, captureID string) error
	// Cancel moves pending -> cancelled with the same guard.
	Cancel(ctx context.Context, id string) error
}
