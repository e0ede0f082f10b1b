package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"storefront-relay/internal/domain"
)

func linkedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv()
	if err := env.identity.MarkLinked(context.Background(), "shop.example.com", "sig-1"); err != nil {
		t.Fatalf("MarkLinked() error = %v", err)
	}
	return env
}

func TestCompleteLinkValidation(t *testing.T) {
	valid := domain.LinkRequest{
		Site:      "shop.example.com",
		ReturnURL: testStoreURL + "/admin/settings",
		Signature: "sig-2",
	}

	tests := []struct {
		name    string
		linked  bool
		mutate  func(r *domain.LinkRequest)
		wantMsg string
	}{
		{"empty request", false, func(r *domain.LinkRequest) { *r = domain.LinkRequest{} }, "link_site: the request was empty"},
		{"missing site", false, func(r *domain.LinkRequest) { r.Site = "" }, "link_site: site was empty"},
		{"missing return", false, func(r *domain.LinkRequest) { r.ReturnURL = "" }, "link_site: return was empty"},
		{"missing signature", false, func(r *domain.LinkRequest) { r.Signature = "" }, "link_site: signature was empty"},
		{"linked without intent", true, func(r *domain.LinkRequest) {}, "link_site: Invalid token"},
		{"linked with wrong intent", true, func(r *domain.LinkRequest) { r.Intent = "nope" }, "link_site: Invalid token"},
		{"foreign redirect", false, func(r *domain.LinkRequest) { r.ReturnURL = "https://evil.example.net/x" }, "link_site: Could not redirect to: https://evil.example.net/x"},
		{"non http redirect", false, func(r *domain.LinkRequest) { r.ReturnURL = "javascript:alert(1)" }, "link_site: Could not redirect to: javascript:alert(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			if tt.linked {
				env = linkedEnv(t)
			}
			writes := len(env.store.sets)

			req := valid
			tt.mutate(&req)
			_, err := env.link.CompleteLink(context.Background(), req)

			var linkErr *domain.LinkError
			if !errors.As(err, &linkErr) {
				t.Fatalf("expected LinkError, got %v", err)
			}
			if linkErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", linkErr.Message, tt.wantMsg)
			}
			if !errors.Is(err, domain.ErrLinkRejected) {
				t.Error("LinkError must unwrap to ErrLinkRejected")
			}
			if len(env.store.sets) != writes {
				t.Error("rejected link must not write to the store")
			}
		})
	}
}

func TestCompleteLinkSuccess(t *testing.T) {
	env := newTestEnv()
	redirect, err := env.link.CompleteLink(context.Background(), domain.LinkRequest{
		Site:      "site-42",
		ReturnURL: testStoreURL + "/admin/settings?tab=relay",
		Signature: "sig-42",
	})
	if err != nil {
		t.Fatalf("CompleteLink() error = %v", err)
	}
	if redirect != testStoreURL+"/admin/settings?tab=relay" {
		t.Errorf("redirect = %s", redirect)
	}

	state, _ := env.identity.GetLinkState(context.Background())
	if !state.Linked || state.SiteID != "site-42" || state.Signature != "sig-42" {
		t.Errorf("state = %+v", state)
	}
}

func TestCompleteLinkRelinkWithIntent(t *testing.T) {
	env := linkedEnv(t)

	_, err := env.link.CompleteLink(context.Background(), domain.LinkRequest{
		Site:      "shop.example.com",
		ReturnURL: "https://app.sourceknowledge.com/woocommerce/shopping-ads/finish?x=1",
		Signature: "sig-3",
		Intent:    "sig-1",
	})
	if err != nil {
		t.Fatalf("CompleteLink() error = %v", err)
	}

	state, _ := env.identity.GetLinkState(context.Background())
	if state.Signature != "sig-3" {
		t.Errorf("signature = %s", state.Signature)
	}
}

func TestCompleteLinkHonorsEndpointOverride(t *testing.T) {
	env := newTestEnv()
	env.store.put(domain.KeyInstallBase, "https://staging.example.org/")

	_, err := env.link.CompleteLink(context.Background(), domain.LinkRequest{
		Site:      "site",
		ReturnURL: "https://staging.example.org/done",
		Signature: "sig",
	})
	if err != nil {
		t.Fatalf("CompleteLink() error = %v", err)
	}
}

func TestBeginLink(t *testing.T) {
	env := newTestEnv()
	link, err := env.link.BeginLink(context.Background())
	if err != nil {
		t.Fatalf("BeginLink() error = %v", err)
	}
	if link.Token == "" || link.Params["intent"] != link.Token {
		t.Errorf("token = %q params = %v", link.Token, link.Params)
	}
	if !strings.HasPrefix(link.InstallURL, "https://app.sourceknowledge.com/woocommerce/shopping-ads/init?") {
		t.Errorf("install url = %s", link.InstallURL)
	}

	u, err := url.Parse(link.InstallURL)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	q := u.Query()
	if q.Get("website") != testStoreURL || q.Get("email") != "admin@example.com" || q.Get("name") != "Example Shop" {
		t.Errorf("query = %v", q)
	}

	linked := linkedEnv(t)
	link, err = linked.link.BeginLink(context.Background())
	if err != nil {
		t.Fatalf("BeginLink() error = %v", err)
	}
	if link.Token != "" || link.Params["intent"] != "" {
		t.Errorf("linked store must not get an intent, got %q", link.Token)
	}
}

func TestProvideStatus(t *testing.T) {
	env := linkedEnv(t)
	info, err := env.link.ProvideStatus(context.Background())
	if err != nil {
		t.Fatalf("ProvideStatus() error = %v", err)
	}
	if info.Site != "shop.example.com" || !info.Linked || info.Version != testVersion || info.Currency != "USD" {
		t.Errorf("info = %+v", info)
	}
}

func TestActivateUnlinkedFlagsRevision(t *testing.T) {
	env := newTestEnv()
	if err := env.link.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if len(env.notifier.sent) != 0 {
		t.Error("unlinked activation must not notify")
	}
	if !env.store.has(domain.KeyNeedsRevision) {
		t.Error("needs-revision flag not set")
	}
}

func TestActivateLinkedSendsStatus(t *testing.T) {
	env := linkedEnv(t)
	if err := env.link.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if len(env.notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(env.notifier.sent))
	}
	if env.notifier.endpoints[0] != "https://plugins.sourceknowledge.com/woocommerce/shopping-ads/status?" {
		t.Errorf("endpoint = %s", env.notifier.endpoints[0])
	}
	want := domain.StatusNotification{Site: "shop.example.com", Sign: "sig-1", Status: domain.StatusActive}
	if env.notifier.sent[0] != want {
		t.Errorf("notification = %+v", env.notifier.sent[0])
	}
}

func TestActivateLinkedKeepsNeedsRevision(t *testing.T) {
	env := linkedEnv(t)
	env.store.put(domain.KeyNeedsRevision, false)

	if err := env.link.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	var pending bool
	found, err := env.store.Get(context.Background(), domain.KeyNeedsRevision, &pending)
	if err != nil || !found {
		t.Fatalf("needs-revision read = %v, %v", found, err)
	}
	if pending {
		t.Error("linked activation must leave needs-revision unchanged")
	}
}

func TestDeactivateUnlinkedSendsInactive(t *testing.T) {
	env := newTestEnv()
	if err := env.link.Deactivate(context.Background()); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if len(env.notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(env.notifier.sent))
	}
	if env.notifier.sent[0].Status != domain.StatusInactive {
		t.Errorf("notification = %+v", env.notifier.sent[0])
	}
	if env.notifier.endpoints[0] != "https://plugins.sourceknowledge.com/woocommerce/shopping-ads/status?" {
		t.Errorf("endpoint = %s", env.notifier.endpoints[0])
	}
}

func TestDeactivateSwallowsNotifierErrors(t *testing.T) {
	env := linkedEnv(t)
	env.notifier.err = errBackend
	env.store.put(domain.KeyStatusBase, "https://status.example.org/")

	if err := env.link.Deactivate(context.Background()); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if len(env.notifier.sent) != 1 || env.notifier.sent[0].Status != domain.StatusInactive {
		t.Errorf("sent = %+v", env.notifier.sent)
	}
	if env.notifier.endpoints[0] != "https://status.example.org/woocommerce/shopping-ads/status?" {
		t.Errorf("endpoint = %s", env.notifier.endpoints[0])
	}
}
