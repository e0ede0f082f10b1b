package hook_handlers

import (
	"context"
	"fmt"

	"storefront-relay/internal/application"

	"github.com/rs/zerolog"
)

// PixelFilterHandler applies the host's override of the pixel enabled flag
type PixelFilterHandler struct{}

// NewPixelFilterHandler creates a new pixel filter handler
func NewPixelFilterHandler() *PixelFilterHandler {
	return &PixelFilterHandler{}
}

func (h *PixelFilterHandler) Name() string { return "pixel_enabled_filter" }

// Handle runs regardless of the enabled state so the host can turn tracking on or off
func (h *PixelFilterHandler) Handle(ctx context.Context, call *application.HookCall) error {
	call.Pixel.ApplyEnabledFilter(call.Request.PixelEnabled)
	return nil
}

// ViewHandler renders the page view pixel into the page head
type ViewHandler struct{}

// NewViewHandler creates a new view pixel handler
func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

func (h *ViewHandler) Name() string { return "view_pixel" }

func (h *ViewHandler) Handle(ctx context.Context, call *application.HookCall) error {
	call.Pixel.EmitView(ctx, call.Request)
	return nil
}

// SearchHandler queues the search pixel once the query is parsed
type SearchHandler struct{}

// NewSearchHandler creates a new search pixel handler
func NewSearchHandler() *SearchHandler {
	return &SearchHandler{}
}

func (h *SearchHandler) Name() string { return "search_pixel" }

func (h *SearchHandler) Handle(ctx context.Context, call *application.HookCall) error {
	call.Pixel.EmitSearch(ctx, call.Request)
	return nil
}

// CartHandler handles cart pixels for server-side and asynchronous add to cart
type CartHandler struct {
	mode   string
	logger zerolog.Logger
}

const (
	cartQueued   = "queued"
	cartRedirect = "redirect"
	cartAjax     = "ajax"
)

// NewCartHandler queues the cart pixel on every server-side add to cart
func NewCartHandler(logger zerolog.Logger) *CartHandler {
	return &CartHandler{mode: cartQueued, logger: logger}
}

// NewCartRedirectHandler queues the cart pixel on the cart page when the store redirects there after adding
func NewCartRedirectHandler(logger zerolog.Logger) *CartHandler {
	return &CartHandler{mode: cartRedirect, logger: logger}
}

// NewAjaxCartHandler renders the cart pixel into the JSON body of an asynchronous add to cart
func NewAjaxCartHandler(logger zerolog.Logger) *CartHandler {
	return &CartHandler{mode: cartAjax, logger: logger}
}

func (h *CartHandler) Name() string { return "cart_pixel_" + h.mode }

func (h *CartHandler) Handle(ctx context.Context, call *application.HookCall) error {
	switch h.mode {
	case cartRedirect:
		if !call.Request.CartRedirectAfterAdd {
			return nil
		}
		call.Pixel.QueueCart(ctx, call.Request)
	case cartAjax:
		if tag := call.Pixel.RenderCart(ctx, call.Request); tag != "" {
			call.Response.JSON = tag
		}
	default:
		call.Pixel.QueueCart(ctx, call.Request)
	}

	h.logger.Debug().
		Str("mode", h.mode).
		Int("lines", len(call.Request.Cart)).
		Msg("Processed cart hook")
	return nil
}

// SaleHandler queues the purchase pixel. Gateway completion and payment completion
// both register one; the dedup guard lets the first of them win.
type SaleHandler struct {
	source string
	logger zerolog.Logger
}

// NewSaleHandler creates the payment completion sale handler
func NewSaleHandler(logger zerolog.Logger) *SaleHandler {
	return &SaleHandler{source: "payment", logger: logger}
}

// NewGatewaySaleHandler creates the order received (thank you page) sale handler
func NewGatewaySaleHandler(logger zerolog.Logger) *SaleHandler {
	return &SaleHandler{source: "gateway", logger: logger}
}

func (h *SaleHandler) Name() string { return "sale_pixel_" + h.source }

func (h *SaleHandler) Handle(ctx context.Context, call *application.HookCall) error {
	orderID := call.Request.OrderID
	if orderID == 0 {
		return fmt.Errorf("order_id is required for %s", h.Name())
	}

	if call.Pixel.EmitSale(ctx, orderID, call.Request.User) {
		h.logger.Info().
			Uint64("orderId", orderID).
			Str("source", h.source).
			Msg("Sale pixel queued")
	}
	return nil
}
