// Package store provides the local per-user key/value cache.
package store

import "context"

// Keys used by the client. Values are opaque strings owned by their writers.
const (
	KeyRecentUsage   = "recent_usage"
	KeyUpgraded      = "upgraded"
	KeyTermsAccepted = "terms_accepted"
)

// Store persists small string values on the local machine.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key, value string) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Close releases underlying resources.
	Close() error
}
