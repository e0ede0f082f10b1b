package ports

import (
	"context"

	"storefront-relay/internal/domain"
)

// SettingsStore defines the key-value settings persistence.
// Keys are unprefixed; implementations apply the integration namespace.
type SettingsStore interface {
	// Get decodes the value stored under key into dst and reports whether it existed
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set stores value under key, overwriting any previous value
	Set(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// SessionStore defines the customer session persistence used for referral coupons
type SessionStore interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}

// SubscriptionSource defines access to recurring subscriptions.
// A nil SubscriptionSource means the storefront has no subscription capability.
type SubscriptionSource interface {
	SubscriptionIDsForOrder(ctx context.Context, orderID uint64) ([]string, error)
	GetSubscription(ctx context.Context, id string) (*domain.Subscription, error)
}

// SubscriptionWriter persists subscriptions synced from the storefront
type SubscriptionWriter interface {
	SaveSubscription(ctx context.Context, sub *domain.Subscription) error
}
