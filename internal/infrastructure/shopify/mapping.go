package shopify

import (
	"strings"

	"storefront-relay/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
)

func orderToDomain(o *goshopify.Order) *domain.Order {
	order := &domain.Order{
		ID:           o.Id,
		Total:        decimalOrZero(o.TotalPrice),
		Subtotal:     decimalOrZero(o.SubtotalPrice),
		CompletedAt:  o.ClosedAt,
		BillingEmail: o.Email,
	}
	if o.Customer != nil {
		order.CustomerID = o.Customer.Id
	}
	for _, item := range o.LineItems {
		order.LineItems = append(order.LineItems, domain.LineItem{
			ProductID: item.ProductId,
			Quantity:  item.Quantity,
		})
	}
	for _, discount := range o.DiscountCodes {
		order.CouponCodes = append(order.CouponCodes, discount.Code)
	}
	return order
}

func customerToDomain(c *goshopify.Customer) *domain.Customer {
	return &domain.Customer{
		ID:          c.Id,
		Email:       c.Email,
		OrdersCount: c.OrdersCount,
	}
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func equalEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
