package domain

import "strings"

// StorefrontRequest is the request context the storefront engine sends with each hook call
type StorefrontRequest struct {
	Host                 string            `json:"host"`
	IsAdmin              bool              `json:"is_admin"`
	User                 *User             `json:"user,omitempty"`
	PostID               uint64            `json:"post_id,omitempty"`
	ProductID            uint64            `json:"product_id,omitempty"`
	IsSearch             bool              `json:"is_search,omitempty"`
	SearchQuery          string            `json:"search_query,omitempty"`
	Cart                 []CartLine        `json:"cart,omitempty"`
	CartCoupons          []string          `json:"cart_coupons,omitempty"`
	CartRedirectAfterAdd bool              `json:"cart_redirect_after_add,omitempty"`
	OrderID              uint64            `json:"order_id,omitempty"`
	Query                map[string]string `json:"query,omitempty"`
	SessionID            string            `json:"session_id,omitempty"`
	PixelEnabled         *bool             `json:"pixel_enabled,omitempty"`
}

// User is the signed-in shopper, if any
type User struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

// CartLine is one line in the shopper's cart
type CartLine struct {
	ProductID uint64 `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// HasCoupon reports whether code is already applied to the cart
func (r *StorefrontRequest) HasCoupon(code string) bool {
	for _, c := range r.CartCoupons {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}

// Notice severities
const (
	NoticeError = "error"
	NoticeInfo  = "info"
)

// Notice is an admin notice the host renders
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HookResponse is what a render hands back to the storefront engine
type HookResponse struct {
	Output         string          `json:"output,omitempty"`
	DeferredScript string          `json:"deferred_script,omitempty"`
	JSON           any             `json:"json,omitempty"`
	Redirect       string          `json:"redirect,omitempty"`
	Notices        []Notice        `json:"notices,omitempty"`
	ApplyCoupons   []string        `json:"apply_coupons,omitempty"`
	SessionID      string          `json:"session_id,omitempty"`
	PixelEnabled   bool            `json:"pixel_enabled"`
	LastParams     Fields          `json:"last_params,omitempty"`
	Events         []TrackingEvent `json:"events,omitempty"`
	Errors         []string        `json:"errors,omitempty"`
}

// ScriptQueue is the render-wide deferred script buffer. The latest enqueue comes first.
type ScriptQueue struct {
	code string
}

// Enqueue prepends code to the buffer
func (q *ScriptQueue) Enqueue(code string) {
	if q.code == "" {
		q.code = code
		return
	}
	q.code = code + "\n" + q.code
}

// String returns the buffered script
func (q *ScriptQueue) String() string {
	return q.code
}
