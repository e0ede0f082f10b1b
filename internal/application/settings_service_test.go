package application

import (
	"context"
	"testing"

	"storefront-relay/internal/domain"
)

func TestMergeDefaults(t *testing.T) {
	modules := []domain.ModuleDefaults{
		domain.PixelDefaults,
		{Module: "coupons", Defaults: map[string]any{"coupon_capture": "yes"}},
	}

	merged, dirty := MergeDefaults(domain.Settings{domain.SettingTrackingEnabled: false}, modules)
	if !dirty {
		t.Error("missing coupon default must mark settings dirty")
	}
	if merged[domain.SettingTrackingEnabled] != false {
		t.Error("stored value must win over the default")
	}
	if merged["coupon_capture"] != "yes" {
		t.Error("absent default must be added")
	}

	_, dirty = MergeDefaults(merged, modules)
	if dirty {
		t.Error("complete settings must not be dirty")
	}
}

func TestMergeDefaultsDoesNotMutateInput(t *testing.T) {
	in := domain.Settings{}
	MergeDefaults(in, []domain.ModuleDefaults{domain.PixelDefaults})
	if len(in) != 0 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestSettingsLoadPersistsDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	settings, err := env.settings.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !settings.Bool(domain.SettingTrackingEnabled, false) {
		t.Error("tracking must default to enabled")
	}
	if len(env.store.sets) != 1 {
		t.Fatalf("expected defaults saved once, got %d writes", len(env.store.sets))
	}

	if _, err := env.settings.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if len(env.store.sets) != 1 {
		t.Errorf("second load must not write, got %d writes", len(env.store.sets))
	}
}

func TestSettingsUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	updated, err := env.settings.Update(ctx, domain.Settings{domain.SettingTrackingEnabled: "no"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Bool(domain.SettingTrackingEnabled, true) {
		t.Error("update must disable tracking")
	}

	reloaded, _ := env.settings.Load(ctx)
	if reloaded.Bool(domain.SettingTrackingEnabled, true) {
		t.Error("update must be persisted")
	}
}
