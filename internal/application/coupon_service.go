package application

import (
	"context"
	"fmt"
	"strings"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// ParamReferralCoupon is the landing URL parameter carrying a referral coupon
	ParamReferralCoupon = "sk_coupon"

	sessionCouponKey = "sk_coupon_code"
)

// CouponService carries referral coupons from the landing URL to the cart
type CouponService struct {
	sessions  ports.SessionStore
	validator ports.CouponValidator
	logger    zerolog.Logger
}

// NewCouponService creates a new referral coupon service
func NewCouponService(sessions ports.SessionStore, validator ports.CouponValidator, logger zerolog.Logger) *CouponService {
	return &CouponService{
		sessions:  sessions,
		validator: validator,
		logger:    logger,
	}
}

// Capture stores a valid referral coupon in the shopper session.
// It returns the session id used, creating one when the request has none.
func (s *CouponService) Capture(ctx context.Context, req *domain.StorefrontRequest) (string, error) {
	code := strings.TrimSpace(req.Query[ParamReferralCoupon])
	if req.IsAdmin || code == "" {
		return req.SessionID, nil
	}

	valid, err := s.validator.ValidCoupon(ctx, code)
	if err != nil {
		s.logger.Warn().Err(err).Str("coupon", code).Msg("Failed to validate referral coupon")
		return req.SessionID, nil
	}
	if !valid {
		return req.SessionID, nil
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if err := s.sessions.Set(ctx, sessionID, sessionCouponKey, code); err != nil {
		return "", fmt.Errorf("failed to store referral coupon: %w", err)
	}

	s.logger.Info().Str("sessionId", sessionID).Str("coupon", code).Msg("Referral coupon captured")
	return sessionID, nil
}

// Apply returns the session coupon to add to the cart, removing it from the session.
// It returns "" when there is nothing to apply.
func (s *CouponService) Apply(ctx context.Context, req *domain.StorefrontRequest) (string, error) {
	if req.SessionID == "" {
		return "", nil
	}

	code, found, err := s.sessions.Get(ctx, req.SessionID, sessionCouponKey)
	if err != nil {
		return "", fmt.Errorf("failed to read referral coupon: %w", err)
	}
	if !found || code == "" || req.HasCoupon(code) {
		return "", nil
	}

	if err := s.sessions.Delete(ctx, req.SessionID, sessionCouponKey); err != nil {
		return "", fmt.Errorf("failed to clear referral coupon: %w", err)
	}
	return code, nil
}
