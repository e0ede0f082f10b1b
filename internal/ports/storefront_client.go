package ports

import (
	"context"

	"storefront-relay/internal/domain"
)

// OrderSource defines the order and customer lookups of the commerce backend
type OrderSource interface {
	// GetOrder returns nil, nil when the order does not exist
	GetOrder(ctx context.Context, orderID uint64) (*domain.Order, error)

	// GetCustomer returns nil, nil when the customer does not exist
	GetCustomer(ctx context.Context, customerID uint64) (*domain.Customer, error)

	// CountOrdersByEmail counts every historical order placed with the billing email
	CountOrdersByEmail(ctx context.Context, email string) (int, error)
}

// CouponValidator checks that a referral coupon exists in the storefront
type CouponValidator interface {
	ValidCoupon(ctx context.Context, code string) (bool, error)
}
