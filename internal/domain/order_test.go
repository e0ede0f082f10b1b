package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestHashEmailNormalizes(t *testing.T) {
	want := HashEmail("buyer@example.com")
	for _, in := range []string{"Buyer@Example.com", "  buyer@example.com\n", "BUYER@EXAMPLE.COM"} {
		if got := HashEmail(in); got != want {
			t.Errorf("HashEmail(%q) = %s, want %s", in, got, want)
		}
	}
	if len(want) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(want))
	}
}

func TestApplyLoadedOrder(t *testing.T) {
	completed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := &OrderSnapshot{
		OrderID:     42,
		Loaded:      true,
		ProductIDs:  []string{"7", "9"},
		Total:       decimal.RequireFromString("30.50"),
		Subtotal:    decimal.RequireFromString("25.00"),
		CompletedAt: &completed,
		CustomerID:  5,
		CouponCodes: []string{"SAVE10", "FREESHIP"},
		Customer:    &CustomerFacts{OrdersCount: 3, Email: "Buyer@Example.com"},
	}

	fields := Fields{}
	snap.Apply(fields)

	if fields[FieldProductID] != "7,9" {
		t.Errorf("product_id = %v", fields[FieldProductID])
	}
	if fields[FieldOrderID] != uint64(42) {
		t.Errorf("order_id = %v", fields[FieldOrderID])
	}
	if fields[FieldCouponCode] != "SAVE10,FREESHIP" {
		t.Errorf("coupon_code = %v", fields[FieldCouponCode])
	}
	if fields[FieldOrdersCount] != 3 {
		t.Errorf("orders_count = %v", fields[FieldOrdersCount])
	}
	if fields[FieldEmailHash] != HashEmail("buyer@example.com") {
		t.Errorf("ehash = %v", fields[FieldEmailHash])
	}
	if fields[FieldUserID] != uint64(5) {
		t.Errorf("uid = %v", fields[FieldUserID])
	}

	tr := fields.Transaction()
	if tr[TrCustomerID] != "5" {
		t.Errorf("trdata.customer_id = %v", tr[TrCustomerID])
	}
	if tr[TrConfirmedAt] != &completed {
		t.Errorf("trdata.confirmed_at = %v", tr[TrConfirmedAt])
	}
	if _, ok := fields[FieldError]; ok {
		t.Error("err must be absent on a clean extraction")
	}
}

func TestApplyOmitsCouponWhenNone(t *testing.T) {
	fields := Fields{}
	(&OrderSnapshot{OrderID: 1, Loaded: true}).Apply(fields)
	if _, ok := fields[FieldCouponCode]; ok {
		t.Error("coupon_code must be absent when the order has no coupons")
	}
	if fields.Transaction()[TrCustomerID] != "" {
		t.Error("guest order must report an empty customer_id")
	}
}

func TestApplyKeepsCallerIdentity(t *testing.T) {
	fields := Fields{FieldEmailHash: "caller-hash", FieldUserID: uint64(99)}
	snap := &OrderSnapshot{
		Loaded:     true,
		CustomerID: 5,
		Customer:   &CustomerFacts{Email: "other@example.com"},
	}
	snap.Apply(fields)

	if fields[FieldEmailHash] != "caller-hash" {
		t.Errorf("ehash overwritten: %v", fields[FieldEmailHash])
	}
	if fields[FieldUserID] != uint64(99) {
		t.Errorf("uid overwritten: %v", fields[FieldUserID])
	}
}

func TestApplySubscriptionAndFailure(t *testing.T) {
	snap := &OrderSnapshot{
		OrderID:      8,
		Loaded:       true,
		Subscription: &SubscriptionFacts{Count: 2, SignUpFee: decimal.RequireFromString("4.50")},
		Error:        &ExtractionError{Version: "1.0.8", Component: "customer", Line: 120, Cause: errors.New("boom")},
	}
	fields := Fields{}
	snap.Apply(fields)

	tr := fields.Transaction()
	if tr[TrSubscription] != 1 {
		t.Errorf("subscription = %v", tr[TrSubscription])
	}
	fee, ok := tr[TrSubscriptionFee].(decimal.Decimal)
	if !ok || !fee.Equal(decimal.RequireFromString("4.5")) {
		t.Errorf("subscription_fee = %v", tr[TrSubscriptionFee])
	}
	if _, ok := tr[TrProductsPrice]; !ok {
		t.Error("subscription facts must merge into the existing trdata")
	}
	if fields[FieldError] != "1.0.8_customer_120" {
		t.Errorf("err = %v", fields[FieldError])
	}
	if !snap.Failed() {
		t.Error("snapshot with an error must report Failed")
	}
}

func TestApplyNotLoadedOnlyWritesError(t *testing.T) {
	snap := &OrderSnapshot{
		OrderID: 8,
		Error:   &ExtractionError{Version: "1.0.8", Component: "order", Line: 10, Cause: ErrOrderNotFound},
	}
	fields := Fields{FieldOrderID: uint64(8)}
	snap.Apply(fields)

	if len(fields) != 2 {
		t.Errorf("expected only order_id and err, got %v", fields)
	}
	if !errors.Is(snap.Error, ErrOrderNotFound) {
		t.Error("extraction error must unwrap to its cause")
	}
}
