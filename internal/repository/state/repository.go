package state

import "context"

// Repository is a string-keyed JSON key-value store holding the storefront
// side state: settings blob, active theme, and per-order license text.
type Repository interface {
	Get(ctx context.Context, key string, out interface{}) error
	Put(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
}
