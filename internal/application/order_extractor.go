package application

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/metrics"
	"storefront-relay/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Extraction stages reported in error fingerprints
const (
	stageOrder        = "order"
	stageCustomer     = "customer"
	stageSubscription = "subscription"
	stagePanic        = "panic"
)

// OrderDataExtractor pulls purchase facts from a completed order
type OrderDataExtractor struct {
	orders        ports.OrderSource
	subscriptions ports.SubscriptionSource
	version       string
	logger        zerolog.Logger
}

// NewOrderDataExtractor creates a new extractor. subscriptions may be nil.
func NewOrderDataExtractor(
	orders ports.OrderSource,
	subscriptions ports.SubscriptionSource,
	version string,
	logger zerolog.Logger,
) *OrderDataExtractor {
	return &OrderDataExtractor{
		orders:        orders,
		subscriptions: subscriptions,
		version:       version,
		logger:        logger,
	}
}

// Extract builds the snapshot for orderID. It never fails: a failing stage
// stops extraction and is recorded in the snapshot's Error.
func (x *OrderDataExtractor) Extract(ctx context.Context, orderID uint64) (snap *domain.OrderSnapshot) {
	snap = &domain.OrderSnapshot{OrderID: orderID}

	defer func() {
		if r := recover(); r != nil {
			x.record(snap, stagePanic, panicLine(), fmt.Errorf("%v", r))
		}
		if snap.Error != nil {
			metrics.OrderExtractionFailuresTotal.WithLabelValues(snap.Error.Component).Inc()
			x.logger.Warn().
				Err(snap.Error).
				Uint64("orderId", orderID).
				Str("fingerprint", snap.Error.Fingerprint()).
				Msg("Order extraction incomplete")
		}
	}()

	order, err := x.orders.GetOrder(ctx, orderID)
	if err != nil {
		x.record(snap, stageOrder, callerLine(), fmt.Errorf("failed to get order: %w", err))
		return snap
	}
	if order == nil {
		x.record(snap, stageOrder, callerLine(), domain.ErrOrderNotFound)
		return snap
	}

	if err := x.extractOrder(order, snap); err != nil {
		return snap
	}

	snap.CouponCodes = x.ExtractCoupons(order)

	facts, err := x.ExtractCustomer(ctx, order, snap)
	if err != nil {
		return snap
	}
	snap.Customer = facts

	if sub, err := x.ExtractSubscription(ctx, order.ID); err != nil {
		x.record(snap, stageSubscription, callerLine(), err)
	} else {
		snap.Subscription = sub
	}

	return snap
}

// Enrich extracts orderID and applies the snapshot to a sale payload
func (x *OrderDataExtractor) Enrich(ctx context.Context, orderID uint64, fields domain.Fields) *domain.OrderSnapshot {
	snap := x.Extract(ctx, orderID)
	snap.Apply(fields)
	return snap
}

// extractOrder reads line items and totals. The stage is all-or-nothing.
func (x *OrderDataExtractor) extractOrder(order *domain.Order, snap *domain.OrderSnapshot) error {
	productIDs := make([]string, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		if item.ProductID == 0 {
			x.record(snap, stageOrder, callerLine(), domain.ErrProductMissing)
			return domain.ErrProductMissing
		}
		productIDs = append(productIDs, strconv.FormatUint(item.ProductID, 10))
	}

	snap.OrderID = order.ID
	snap.ProductIDs = productIDs
	snap.Total = order.Total
	snap.Subtotal = order.Subtotal
	snap.CompletedAt = order.CompletedAt
	snap.CustomerID = order.CustomerID
	snap.BillingEmail = order.BillingEmail
	snap.Loaded = true
	return nil
}

// ExtractCoupons returns the order's coupon codes, skipping blanks
func (x *OrderDataExtractor) ExtractCoupons(order *domain.Order) []string {
	var codes []string
	for _, code := range order.CouponCodes {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// ExtractCustomer resolves the buyer's order count and email.
// A failed customer lookup is recorded and the order is treated as a guest order.
func (x *OrderDataExtractor) ExtractCustomer(ctx context.Context, order *domain.Order, snap *domain.OrderSnapshot) (*domain.CustomerFacts, error) {
	var customer *domain.Customer
	if order.CustomerID != 0 {
		c, err := x.orders.GetCustomer(ctx, order.CustomerID)
		if err != nil {
			x.record(snap, stageCustomer, callerLine(), fmt.Errorf("failed to get customer: %w", err))
		} else {
			customer = c
		}
	}

	if customer != nil && customer.ID != 0 {
		email := customer.Email
		if email == "" {
			email = order.BillingEmail
		}
		return &domain.CustomerFacts{
			OrdersCount: customer.OrdersCount,
			Email:       email,
		}, nil
	}

	facts := &domain.CustomerFacts{
		Email: order.BillingEmail,
		Guest: true,
	}
	if strings.TrimSpace(order.BillingEmail) == "" {
		return facts, nil
	}

	count, err := x.orders.CountOrdersByEmail(ctx, order.BillingEmail)
	if err != nil {
		err = fmt.Errorf("failed to count orders by email: %w", err)
		x.record(snap, stageCustomer, callerLine(), err)
		return nil, err
	}
	facts.OrdersCount = count
	return facts, nil
}

// ExtractSubscription sums sign-up fees of the subscriptions created by the order.
// It returns nil when the storefront has no subscriptions or the order created none.
// Subscriptions that fail to load are skipped.
func (x *OrderDataExtractor) ExtractSubscription(ctx context.Context, orderID uint64) (*domain.SubscriptionFacts, error) {
	if x.subscriptions == nil {
		return nil, nil
	}

	ids, err := x.subscriptions.SubscriptionIDsForOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	facts := &domain.SubscriptionFacts{Count: len(ids), SignUpFee: decimal.Zero}
	for _, id := range ids {
		sub, err := x.subscriptions.GetSubscription(ctx, id)
		if err != nil || sub == nil {
			x.logger.Debug().Err(err).Str("subscriptionId", id).Msg("Skipping subscription")
			continue
		}
		facts.SignUpFee = facts.SignUpFee.Add(sub.SignUpFee)
	}
	return facts, nil
}

// record keeps the first failure of an extraction
func (x *OrderDataExtractor) record(snap *domain.OrderSnapshot, component string, line int, cause error) {
	if snap.Error != nil {
		return
	}
	snap.Error = &domain.ExtractionError{
		Version:   x.version,
		Component: component,
		Line:      line,
		Cause:     cause,
	}
}

func callerLine() int {
	_, _, line, ok := runtime.Caller(1)
	if !ok {
		return 0
	}
	return line
}

// panicLine finds the line that panicked by skipping the runtime frames above it
func panicLine() int {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	inRuntime := false
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.") {
			inRuntime = true
		} else if inRuntime {
			return frame.Line
		}
		if !more {
			return 0
		}
	}
}
