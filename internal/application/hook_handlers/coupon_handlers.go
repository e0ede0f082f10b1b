package hook_handlers

import (
	"context"

	"storefront-relay/internal/application"
)

// CaptureCouponHandler stores a referral coupon from the landing URL in the shopper session
type CaptureCouponHandler struct {
	coupons *application.CouponService
}

// NewCaptureCouponHandler creates a new referral coupon capture handler
func NewCaptureCouponHandler(coupons *application.CouponService) *CaptureCouponHandler {
	return &CaptureCouponHandler{coupons: coupons}
}

func (h *CaptureCouponHandler) Name() string { return "referral_coupon_capture" }

func (h *CaptureCouponHandler) Handle(ctx context.Context, call *application.HookCall) error {
	sessionID, err := h.coupons.Capture(ctx, call.Request)
	if err != nil {
		return err
	}
	if sessionID != "" {
		call.Request.SessionID = sessionID
		call.Response.SessionID = sessionID
	}
	return nil
}

// ApplyCouponHandler asks the host to apply the session referral coupon to the cart
type ApplyCouponHandler struct {
	coupons *application.CouponService
}

// NewApplyCouponHandler creates a new referral coupon apply handler
func NewApplyCouponHandler(coupons *application.CouponService) *ApplyCouponHandler {
	return &ApplyCouponHandler{coupons: coupons}
}

func (h *ApplyCouponHandler) Name() string { return "referral_coupon_apply" }

func (h *ApplyCouponHandler) Handle(ctx context.Context, call *application.HookCall) error {
	code, err := h.coupons.Apply(ctx, call.Request)
	if err != nil || code == "" {
		return err
	}
	call.Response.ApplyCoupons = append(call.Response.ApplyCoupons, code)
	call.Request.CartCoupons = append(call.Request.CartCoupons, code)
	return nil
}
