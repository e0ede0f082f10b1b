package domain

import "testing"

func TestSettingsBool(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		fallback bool
		want     bool
	}{
		{"missing uses fallback", nil, true, true},
		{"bool true", true, false, true},
		{"bool false", false, true, false},
		{"yes", "yes", false, true},
		{"no", "no", true, false},
		{"numeric string", "1", false, true},
		{"int zero", 0, true, false},
		{"float one", float64(1), false, true},
		{"unknown string uses fallback", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{}
			if tt.value != nil {
				s[SettingTrackingEnabled] = tt.value
			}
			if got := s.Bool(SettingTrackingEnabled, tt.fallback); got != tt.want {
				t.Errorf("Bool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFieldsHasAndClone(t *testing.T) {
	f := Fields{"a": 1, "nil": nil, FieldTransaction: map[string]any{"x": 1}}
	if !f.Has("a") || f.Has("nil") || f.Has("missing") {
		t.Errorf("Has mismatch for %v", f)
	}

	cp := f.Clone()
	cp.Transaction()["x"] = 2
	if f.Transaction()["x"] != 1 {
		t.Error("Clone must copy the nested trdata map")
	}
}

func TestScriptQueuePrepends(t *testing.T) {
	var q ScriptQueue
	q.Enqueue("first")
	q.Enqueue("second")
	if got := q.String(); got != "second\nfirst" {
		t.Errorf("queue = %q", got)
	}
}

func TestStorefrontRequestHasCoupon(t *testing.T) {
	req := &StorefrontRequest{CartCoupons: []string{"Save10"}}
	if !req.HasCoupon("SAVE10") {
		t.Error("coupon match must ignore case")
	}
	if req.HasCoupon("OTHER") {
		t.Error("unexpected coupon match")
	}
}

func TestLinkErrorFormat(t *testing.T) {
	err := NewLinkError("Could not redirect to: %s", "https://evil.test")
	if err.Error() != "link_site: Could not redirect to: https://evil.test" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestExtractionErrorFingerprint(t *testing.T) {
	err := &ExtractionError{Version: "1.0.8", Component: "customer", Line: 131}
	if got := err.Fingerprint(); got != "1.0.8_customer_131" {
		t.Errorf("Fingerprint() = %q", got)
	}
}
