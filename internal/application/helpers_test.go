package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"storefront-relay/internal/domain"

	"github.com/rs/zerolog"
)

var errBackend = errors.New("backend unavailable")

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeStore is a JSON-backed SettingsStore with per-key failure injection
type fakeStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	failGet map[string]bool
	failSet map[string]bool
	sets    []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:  map[string][]byte{},
		failGet: map[string]bool{},
		failSet: map[string]bool{},
	}
}

func (s *fakeStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet[key] {
		return false, errBackend
	}
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (s *fakeStore) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet[key] {
		return errBackend
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	s.sets = append(s.sets, key)
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

func (s *fakeStore) put(key string, value any) {
	raw, _ := json.Marshal(value)
	s.mu.Lock()
	s.values[key] = raw
	s.mu.Unlock()
}

// fakeOrders is an in-memory OrderSource
type fakeOrders struct {
	orders      map[uint64]*domain.Order
	customers   map[uint64]*domain.Customer
	counts      map[string]int
	orderErr    error
	customerErr error
	countErr    error
	panicOnGet  bool
	countCalls  int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders:    map[uint64]*domain.Order{},
		customers: map[uint64]*domain.Customer{},
		counts:    map[string]int{},
	}
}

func (f *fakeOrders) GetOrder(ctx context.Context, orderID uint64) (*domain.Order, error) {
	if f.panicOnGet {
		panic("order storage corrupted")
	}
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.orders[orderID], nil
}

func (f *fakeOrders) GetCustomer(ctx context.Context, customerID uint64) (*domain.Customer, error) {
	if f.customerErr != nil {
		return nil, f.customerErr
	}
	return f.customers[customerID], nil
}

func (f *fakeOrders) CountOrdersByEmail(ctx context.Context, email string) (int, error) {
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[email], nil
}

// fakeSubscriptions is an in-memory SubscriptionSource
type fakeSubscriptions struct {
	byOrder map[uint64][]string
	subs    map[string]*domain.Subscription
	listErr error
	getErr  map[string]error
}

func (f *fakeSubscriptions) SubscriptionIDsForOrder(ctx context.Context, orderID uint64) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byOrder[orderID], nil
}

func (f *fakeSubscriptions) GetSubscription(ctx context.Context, id string) (*domain.Subscription, error) {
	if err := f.getErr[id]; err != nil {
		return nil, err
	}
	return f.subs[id], nil
}

// fakeNotifier records status notifications
type fakeNotifier struct {
	endpoints []string
	sent      []domain.StatusNotification
	err       error
}

func (f *fakeNotifier) SendStatus(ctx context.Context, endpoint string, status domain.StatusNotification) error {
	f.endpoints = append(f.endpoints, endpoint)
	f.sent = append(f.sent, status)
	return f.err
}

// fakeTap records published events
type fakeTap struct {
	events []*domain.TrackingEvent
}

func (f *fakeTap) Publish(event *domain.TrackingEvent) {
	f.events = append(f.events, event)
}

// fakeSessions is an in-memory SessionStore
type fakeSessions struct {
	values map[string]map[string]string
	getErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{values: map[string]map[string]string{}}
}

func (f *fakeSessions) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[sessionID][key]
	return v, ok, nil
}

func (f *fakeSessions) Set(ctx context.Context, sessionID, key, value string) error {
	if f.values[sessionID] == nil {
		f.values[sessionID] = map[string]string{}
	}
	f.values[sessionID][key] = value
	return nil
}

func (f *fakeSessions) Delete(ctx context.Context, sessionID, key string) error {
	delete(f.values[sessionID], key)
	return nil
}

// fakeValidator accepts the codes it holds
type fakeValidator struct {
	valid map[string]bool
	err   error
}

func (f *fakeValidator) ValidCoupon(ctx context.Context, code string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.valid[code], nil
}

// testEnv wires the services over fakes for a linked store
type testEnv struct {
	store    *fakeStore
	orders   *fakeOrders
	notifier *fakeNotifier
	tap      *fakeTap
	identity *IdentityService
	settings *SettingsService
	link     *LinkService
	pixels   *PixelService
}

const (
	testStoreURL = "https://shop.example.com"
	testVersion  = "1.0.8"
	testEndpoint = "//upx.provenpixel.com/woo.js.php"
)

var testMetadata = domain.StoreMetadata{
	Name:               "Example Shop",
	URL:                testStoreURL,
	AdminEmail:         "admin@example.com",
	Currency:           "USD",
	PermalinkStructure: "/%postname%/",
	SettingsURL:        testStoreURL + "/admin/settings",
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:    newFakeStore(),
		orders:   newFakeOrders(),
		notifier: &fakeNotifier{},
		tap:      &fakeTap{},
	}
	logger := testLogger()
	env.identity = NewIdentityService(env.store, testStoreURL, logger)
	env.settings = NewSettingsService(env.store, []domain.ModuleDefaults{domain.PixelDefaults}, logger)
	env.link = NewLinkService(
		env.identity,
		env.store,
		env.notifier,
		PlatformEndpoints{
			DashboardBase: "https://app.sourceknowledge.com/",
			PluginsBase:   "https://plugins.sourceknowledge.com/",
		},
		testMetadata,
		testVersion,
		logger,
	)
	extractor := NewOrderDataExtractor(env.orders, nil, testVersion, logger)
	env.pixels = NewPixelService(env.identity, env.settings, extractor, env.tap, testEndpoint, testVersion, logger)
	return env
}

func (env *testEnv) withSiteID(id string) *testEnv {
	env.store.put(domain.KeySiteID, id)
	return env
}
