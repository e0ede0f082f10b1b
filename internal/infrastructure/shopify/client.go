package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront-relay/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// orderPageLimit is the page size requested when counting orders by email
const orderPageLimit = 250

// Config holds the storefront credentials
type Config struct {
	Shop        string
	AccessToken string
	APIKey      string
	APISecret   string
	Retries     int
	HTTPClient  *http.Client
}

// Client adapts the Shopify Admin API to the relay's storefront ports
type Client struct {
	api    *goshopify.Client
	shop   string
	logger zerolog.Logger
}

// NewClient creates a new Shopify storefront adapter
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	app := goshopify.App{
		ApiKey:    cfg.APIKey,
		ApiSecret: cfg.APISecret,
	}

	var opts []goshopify.Option
	if cfg.Retries > 0 {
		opts = append(opts, goshopify.WithRetry(cfg.Retries))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, goshopify.WithHTTPClient(cfg.HTTPClient))
	}

	api, err := goshopify.NewClient(app, cfg.Shop, cfg.AccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{
		api:    api,
		shop:   cfg.Shop,
		logger: logger,
	}, nil
}

// GetOrder retrieves an order by id
func (c *Client) GetOrder(ctx context.Context, orderID uint64) (*domain.Order, error) {
	order, err := c.api.Order.Get(ctx, orderID, nil)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return orderToDomain(order), nil
}

// GetCustomer retrieves a customer by id
func (c *Client) GetCustomer(ctx context.Context, customerID uint64) (*domain.Customer, error) {
	customer, err := c.api.Customer.Get(ctx, customerID, nil)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customerToDomain(customer), nil
}

type ordersByEmailOptions struct {
	Email  string `url:"email"`
	Status string `url:"status"`
	Fields string `url:"fields"`
	Limit  int    `url:"limit"`
}

// CountOrdersByEmail counts every order placed with the billing email, following the Link pages
func (c *Client) CountOrdersByEmail(ctx context.Context, email string) (int, error) {
	opts := ordersByEmailOptions{
		Email:  email,
		Status: "any",
		Fields: "id,email",
		Limit:  orderPageLimit,
	}
	orders, err := c.api.Order.ListAll(ctx, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list orders by email: %w", err)
	}

	count := 0
	for _, order := range orders {
		if equalEmail(order.Email, email) {
			count++
		}
	}
	c.logger.Debug().Str("shop", c.shop).Int("orders", count).Msg("Counted orders by email")
	return count, nil
}

type discountLookupOptions struct {
	Code string `url:"code"`
}

type discountLookupResource struct {
	DiscountCode *goshopify.PriceRuleDiscountCode `json:"discount_code"`
}

// ValidCoupon reports whether the discount code exists in the store
func (c *Client) ValidCoupon(ctx context.Context, code string) (bool, error) {
	resource := discountLookupResource{}
	err := c.api.Get(ctx, "discount_codes/lookup.json", &resource, discountLookupOptions{Code: code})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up discount code: %w", err)
	}
	return resource.DiscountCode != nil, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Status == http.StatusNotFound
	}
	var respErrPtr *goshopify.ResponseError
	if errors.As(err, &respErrPtr) {
		return respErrPtr.Status == http.StatusNotFound
	}
	return false
}
