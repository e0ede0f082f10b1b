package application

import (
	"context"
	"testing"

	"storefront-relay/internal/domain"
)

func TestCaptureStoresValidCoupon(t *testing.T) {
	sessions := newFakeSessions()
	svc := NewCouponService(sessions, &fakeValidator{valid: map[string]bool{"FRIEND10": true}}, testLogger())

	sessionID, err := svc.Capture(context.Background(), &domain.StorefrontRequest{
		Query: map[string]string{ParamReferralCoupon: " FRIEND10 "},
	})
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if sessionID == "" {
		t.Fatal("a session must be created for the coupon")
	}
	if sessions.values[sessionID][sessionCouponKey] != "FRIEND10" {
		t.Errorf("session = %v", sessions.values[sessionID])
	}
}

func TestCaptureIgnoresInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		req       *domain.StorefrontRequest
		validator *fakeValidator
	}{
		{"no coupon", &domain.StorefrontRequest{SessionID: "s1"}, &fakeValidator{}},
		{"admin", &domain.StorefrontRequest{SessionID: "s1", IsAdmin: true, Query: map[string]string{ParamReferralCoupon: "X"}}, &fakeValidator{valid: map[string]bool{"X": true}}},
		{"unknown coupon", &domain.StorefrontRequest{SessionID: "s1", Query: map[string]string{ParamReferralCoupon: "X"}}, &fakeValidator{}},
		{"validator error", &domain.StorefrontRequest{SessionID: "s1", Query: map[string]string{ParamReferralCoupon: "X"}}, &fakeValidator{err: errBackend}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := newFakeSessions()
			sessionID, err := NewCouponService(sessions, tt.validator, testLogger()).Capture(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Capture() error = %v", err)
			}
			if sessionID != "s1" {
				t.Errorf("session id = %q", sessionID)
			}
			if len(sessions.values) != 0 {
				t.Errorf("nothing must be stored, got %v", sessions.values)
			}
		})
	}
}

func TestApplyConsumesCoupon(t *testing.T) {
	sessions := newFakeSessions()
	sessions.values["s1"] = map[string]string{sessionCouponKey: "FRIEND10"}
	svc := NewCouponService(sessions, &fakeValidator{}, testLogger())
	req := &domain.StorefrontRequest{SessionID: "s1"}

	code, err := svc.Apply(context.Background(), req)
	if err != nil || code != "FRIEND10" {
		t.Fatalf("Apply() = %q, %v", code, err)
	}
	code, err = svc.Apply(context.Background(), req)
	if err != nil || code != "" {
		t.Errorf("coupon must be applied once, got %q, %v", code, err)
	}
}

func TestApplySkipsCouponAlreadyInCart(t *testing.T) {
	sessions := newFakeSessions()
	sessions.values["s1"] = map[string]string{sessionCouponKey: "FRIEND10"}
	svc := NewCouponService(sessions, &fakeValidator{}, testLogger())

	code, err := svc.Apply(context.Background(), &domain.StorefrontRequest{SessionID: "s1", CartCoupons: []string{"friend10"}})
	if err != nil || code != "" {
		t.Fatalf("Apply() = %q, %v", code, err)
	}
	if sessions.values["s1"][sessionCouponKey] != "FRIEND10" {
		t.Error("session coupon must be kept while the cart holds it")
	}
}

func TestApplySessionError(t *testing.T) {
	sessions := newFakeSessions()
	sessions.getErr = errBackend
	svc := NewCouponService(sessions, &fakeValidator{}, testLogger())

	if _, err := svc.Apply(context.Background(), &domain.StorefrontRequest{SessionID: "s1"}); err == nil {
		t.Error("expected error")
	}
	if code, err := svc.Apply(context.Background(), &domain.StorefrontRequest{}); err != nil || code != "" {
		t.Errorf("no session must be a no-op, got %q, %v", code, err)
	}
}
