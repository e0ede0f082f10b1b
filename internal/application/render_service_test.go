package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront-relay/internal/domain"
)

func newRenderEnv(t *testing.T) (*testEnv, *HookDispatcher, *RenderService) {
	t.Helper()
	env := newTestEnv()
	d := NewHookDispatcher(testLogger())
	return env, d, NewRenderService(env.pixels, env.identity, d, testLogger())
}

func TestRenderRejectsUnknownHookBeforeRunning(t *testing.T) {
	env, d, svc := newRenderEnv(t)
	var trace []string
	d.Register("page_head", PriorityDefault, &recordingHandler{name: "view", trace: &trace})

	_, err := svc.Render(context.Background(), &domain.StorefrontRequest{}, []string{"page_head", "bogus"})
	if !errors.Is(err, domain.ErrUnknownHook) {
		t.Fatalf("error = %v", err)
	}
	if len(trace) != 0 {
		t.Error("no handler may run when a hook is unknown")
	}
	if env.store.has(domain.KeySiteID) {
		t.Error("site id must not be generated for a rejected render")
	}
}

func TestRenderSharesBuilderAcrossHooks(t *testing.T) {
	env, d, svc := newRenderEnv(t)
	env.orders.orders[3] = &domain.Order{ID: 3}
	var trace []string

	sale := func(call *HookCall) { call.Pixel.EmitSale(context.Background(), call.Request.OrderID, call.Request.User) }
	d.Register(HookOrderReceived, PriorityDefault, &recordingHandler{name: "sale-received", trace: &trace, run: sale})
	d.Register(HookPaymentDone, PriorityDefault, &recordingHandler{name: "sale-paid", trace: &trace, run: sale})
	d.Register(HookLoaded, PriorityDefault, &recordingHandler{name: "broken", trace: &trace, err: errBackend})

	resp, err := svc.Render(context.Background(), &domain.StorefrontRequest{Host: "shop.example.com:8443", OrderID: 3, SessionID: "s9"},
		[]string{HookOrderReceived, HookPaymentDone, HookLoaded})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(resp.Events) != 1 || strings.Count(resp.DeferredScript, "event=sale") != 1 {
		t.Errorf("sale must be emitted once, events = %d script = %s", len(resp.Events), resp.DeferredScript)
	}
	if !resp.PixelEnabled || resp.SessionID != "s9" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Errors) != 1 || !strings.Contains(resp.Errors[0], "broken") {
		t.Errorf("errors = %v", resp.Errors)
	}
	if resp.LastParams[domain.FieldShop] != "shop.example.com" {
		t.Errorf("site id not generated from store url, last params = %v", resp.LastParams)
	}
}
