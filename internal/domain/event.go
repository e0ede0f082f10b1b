package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// EventType identifies the kind of shopping event a pixel reports
type EventType string

const (
	EventView   EventType = "view"
	EventSearch EventType = "search"
	EventCart   EventType = "cart"
	EventSale   EventType = "sale"
)

// Valid reports whether t is one of the known event types
func (t EventType) Valid() bool {
	switch t {
	case EventView, EventSearch, EventCart, EventSale:
		return true
	}
	return false
}

// Payload keys understood by the pixel endpoint
const (
	FieldShop         = "shop"
	FieldEvent        = "event"
	FieldVersion      = "ver"
	FieldProductID    = "product_id"
	FieldOrderID      = "order_id"
	FieldOrderAmount  = "order_amount"
	FieldCouponCode   = "coupon_code"
	FieldOrdersCount  = "orders_count"
	FieldEmailHash    = "ehash"
	FieldUserID       = "uid"
	FieldTransaction  = "trdata"
	FieldError        = "err"
	TrSearchTerm      = "search_term"
	TrConfirmedAt     = "confirmed_at"
	TrCustomerID      = "customer_id"
	TrProductsPrice   = "products_price"
	TrSubscription    = "subscription"
	TrSubscriptionFee = "subscription_fee"
)

// Fields is the flat key/value map sent with a pixel. The trdata entry holds a nested map.
type Fields map[string]any

// Has reports whether key is present with a non-nil value
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// Clone returns a copy of f. Nested maps are copied one level deep.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if nested, ok := v.(map[string]any); ok {
			cp := make(map[string]any, len(nested))
			for nk, nv := range nested {
				cp[nk] = nv
			}
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

// Transaction returns the nested trdata map, creating it when absent
func (f Fields) Transaction() map[string]any {
	if tr, ok := f[FieldTransaction].(map[string]any); ok {
		return tr
	}
	tr := make(map[string]any)
	f[FieldTransaction] = tr
	return tr
}

// TrackingEvent is one emitted pixel
type TrackingEvent struct {
	Type      EventType `json:"type"`
	Shop      string    `json:"shop"`
	Fields    Fields    `json:"fields"`
	Delivery  string    `json:"delivery"`
	Code      string    `json:"code"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Delivery sinks
const (
	DeliveryQueued   = "queued"
	DeliveryRendered = "rendered"
)

// HashEmail returns the hex SHA-256 of the normalized address
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}
