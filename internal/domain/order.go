package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a completed storefront transaction as read from the commerce backend
type Order struct {
	ID           uint64
	Total        decimal.Decimal
	Subtotal     decimal.Decimal
	CompletedAt  *time.Time
	CustomerID   uint64
	BillingEmail string
	CouponCodes  []string
	LineItems    []LineItem
}

// LineItem is one order line. ProductID is zero when the product no longer resolves.
type LineItem struct {
	ProductID uint64
	Quantity  int
}

// Customer is a registered shopper
type Customer struct {
	ID          uint64
	Email       string
	OrdersCount int
}

// Subscription is a recurring contract created by an order
type Subscription struct {
	ID        string          `json:"id"`
	OrderID   uint64          `json:"order_id"`
	SignUpFee decimal.Decimal `json:"sign_up_fee"`
}

// CustomerFacts is what the sale pixel reports about the buyer
type CustomerFacts struct {
	OrdersCount int
	Email       string
	Guest       bool
}

// SubscriptionFacts summarizes the subscriptions tied to an order
type SubscriptionFacts struct {
	Count     int
	SignUpFee decimal.Decimal
}

// OrderSnapshot is the read-only view of an order used to enrich a sale.
// Stages that did not complete are left empty and Error says where extraction stopped.
type OrderSnapshot struct {
	OrderID      uint64
	Loaded       bool
	ProductIDs   []string
	Total        decimal.Decimal
	Subtotal     decimal.Decimal
	CompletedAt  *time.Time
	CustomerID   uint64
	BillingEmail string
	CouponCodes  []string
	Customer     *CustomerFacts
	Subscription *SubscriptionFacts
	Error        *ExtractionError
}

// Failed reports whether extraction stopped early or hit a recoverable lookup error
func (s *OrderSnapshot) Failed() bool {
	return s.Error != nil
}

// Apply writes the extracted facts into a sale payload
func (s *OrderSnapshot) Apply(fields Fields) {
	if s.Loaded {
		fields[FieldProductID] = strings.Join(s.ProductIDs, ",")
		fields[FieldOrderID] = s.OrderID
		fields[FieldOrderAmount] = s.Total
		customerID := ""
		if s.CustomerID != 0 {
			customerID = strconv.FormatUint(s.CustomerID, 10)
		}
		fields[FieldTransaction] = map[string]any{
			TrConfirmedAt:   s.CompletedAt,
			TrCustomerID:    customerID,
			TrProductsPrice: s.Subtotal,
		}
	}

	if len(s.CouponCodes) > 0 {
		fields[FieldCouponCode] = strings.Join(s.CouponCodes, ",")
	}

	if s.Customer != nil {
		fields[FieldOrdersCount] = s.Customer.OrdersCount
		if email := strings.ToLower(strings.TrimSpace(s.Customer.Email)); email != "" && !fields.Has(FieldEmailHash) {
			fields[FieldEmailHash] = HashEmail(email)
		}
		if s.CustomerID != 0 && !fields.Has(FieldUserID) {
			fields[FieldUserID] = s.CustomerID
		}
	}

	if s.Subscription != nil {
		tr := fields.Transaction()
		tr[TrSubscription] = 1
		tr[TrSubscriptionFee] = s.Subscription.SignUpFee
	}

	if s.Error != nil {
		fields[FieldError] = s.Error.Fingerprint()
	}
}
