package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrProductNotFound is returned when a cart operation references an
	// unknown product.
	ErrProductNotFound = errors.New("product not found")
	// ErrLineNotFound is returned when updating a cart line that does not exist.
	ErrLineNotFound = errors.New("cart line not found")

	// ErrEmptyCart rejects checkout of a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrBelowMinimum rejects orders under the configured minimum purchase.
	ErrBelowMinimum = errors.New("total below minimum purchase")
	// ErrAboveMaximum rejects orders over the configured maximum purchase.
	ErrAboveMaximum = errors.New("total above maximum purchase")
	// ErrInvalidCardDetails is returned by local card format validation.
	ErrInvalidCardDetails = errors.New("invalid card details")
	// ErrInvalidDraftState rejects submission or cancellation of a draft
	// that already left pending.
	ErrInvalidDraftState = errors.New("order draft is not pending")

	// ErrPaymentFailed covers provider declines and transport failures.
	ErrPaymentFailed = errors.New("payment failed")
	// ErrPaymentCancelled is the user-abandoned sub-case of a failed
	// payment, kept distinct so callers can present it without error styling.
	ErrPaymentCancelled = errors.New("payment cancelled")

	// ErrOrderNotFound is returned by order-status lookups.
	ErrOrderNotFound = errors.New("order not found")
	// ErrLicenseNotFound is returned when revoking an unknown license key.
	ErrLicenseNotFound = errors.New("license not found")
	// ErrStorageFull is surfaced when the persistence layer rejects a write
	// for capacity. License keys are shown once, so this must never be
	// swallowed.
	ErrStorageFull = errors.New("storage full")

	// ErrThemeNotFound rejects applying a theme outside the catalog.
	ErrThemeNotFound = errors.New("theme not found")
)
