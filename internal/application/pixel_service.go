package application

import (
	"context"
	"strconv"
	"strings"
	"time"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/metrics"
	"storefront-relay/internal/ports"

	"github.com/rs/zerolog"
)

// PixelService creates request-scoped pixel builders
type PixelService struct {
	identity  *IdentityService
	settings  *SettingsService
	extractor *OrderDataExtractor
	tap       ports.EventTap
	endpoint  string
	version   string
	logger    zerolog.Logger
}

// NewPixelService creates a new pixel service. tap may be nil.
func NewPixelService(
	identity *IdentityService,
	settings *SettingsService,
	extractor *OrderDataExtractor,
	tap ports.EventTap,
	endpoint string,
	version string,
	logger zerolog.Logger,
) *PixelService {
	return &PixelService{
		identity:  identity,
		settings:  settings,
		extractor: extractor,
		tap:       tap,
		endpoint:  endpoint,
		version:   version,
		logger:    logger,
	}
}

// NewBuilder creates the builder for one render. Enabled is decided here, once.
func (s *PixelService) NewBuilder(ctx context.Context, req *domain.StorefrontRequest) (*EventPixelBuilder, error) {
	shop, err := s.identity.SiteID(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	enabled := !req.IsAdmin && shop != "" && settings.Bool(domain.SettingTrackingEnabled, true)
	return &EventPixelBuilder{
		shop:      shop,
		version:   s.version,
		endpoint:  s.endpoint,
		enabled:   enabled,
		extractor: s.extractor,
		tap:       s.tap,
		logger:    s.logger,
	}, nil
}

// EventPixelBuilder turns store actions into pixel payloads for a single render.
// It is not safe for concurrent use and must not outlive the request.
type EventPixelBuilder struct {
	shop      string
	version   string
	endpoint  string
	enabled   bool
	lastEvent domain.EventType

	lastParams domain.Fields
	queue      domain.ScriptQueue
	output     strings.Builder
	events     []domain.TrackingEvent

	extractor *OrderDataExtractor
	tap       ports.EventTap
	logger    zerolog.Logger
}

// Enabled reports whether pixels are emitted for this render
func (b *EventPixelBuilder) Enabled() bool {
	return b.enabled
}

// ApplyEnabledFilter lets the host override the enabled flag. It runs before any event.
func (b *EventPixelBuilder) ApplyEnabledFilter(override *bool) {
	if override != nil {
		b.enabled = *override
	}
}

// BuildPayload merges caller fields over the base keys and records the result.
// shop, event and ver always reflect this builder.
func (b *EventPixelBuilder) BuildPayload(eventType domain.EventType, fields domain.Fields) domain.Fields {
	payload := make(domain.Fields, len(fields)+3)
	for k, v := range fields {
		payload[k] = v
	}
	payload[domain.FieldShop] = b.shop
	payload[domain.FieldEvent] = string(eventType)
	payload[domain.FieldVersion] = b.version

	b.lastParams = payload
	return payload
}

// SuppressIfDuplicate reports whether eventType was the last event of this render.
// When it was not, eventType becomes the last event.
func (b *EventPixelBuilder) SuppressIfDuplicate(eventType domain.EventType) bool {
	if b.lastEvent == eventType {
		metrics.PixelEventsSuppressedTotal.WithLabelValues(string(eventType)).Inc()
		return true
	}
	b.lastEvent = eventType
	return false
}

// EnrichWithUser adds the signed-in shopper's email hash and id when not already set
func (b *EventPixelBuilder) EnrichWithUser(fields domain.Fields, user *domain.User) domain.Fields {
	if user == nil || user.ID == 0 {
		return fields
	}
	if strings.TrimSpace(user.Email) != "" && !fields.Has(domain.FieldEmailHash) {
		fields[domain.FieldEmailHash] = domain.HashEmail(user.Email)
	}
	if !fields.Has(domain.FieldUserID) {
		fields[domain.FieldUserID] = user.ID
	}
	return fields
}

// EmitView renders the page view pixel. Pages without a post emit nothing.
func (b *EventPixelBuilder) EmitView(ctx context.Context, req *domain.StorefrontRequest) bool {
	if !b.enabled || req.PostID == 0 {
		return false
	}
	if b.SuppressIfDuplicate(domain.EventView) {
		return false
	}

	productID := ""
	if req.ProductID != 0 {
		productID = strconv.FormatUint(req.ProductID, 10)
	}
	fields := b.EnrichWithUser(domain.Fields{domain.FieldProductID: productID}, req.User)
	b.render(domain.EventView, fields)
	return true
}

// EmitSearch queues the search pixel for a non-empty storefront search
func (b *EventPixelBuilder) EmitSearch(ctx context.Context, req *domain.StorefrontRequest) bool {
	if !b.enabled || req.IsAdmin || !req.IsSearch || req.SearchQuery == "" {
		return false
	}
	if b.SuppressIfDuplicate(domain.EventSearch) {
		return false
	}

	fields := domain.Fields{
		domain.FieldTransaction: map[string]any{domain.TrSearchTerm: req.SearchQuery},
	}
	b.queueEvent(domain.EventSearch, b.EnrichWithUser(fields, req.User))
	return true
}

// QueueCart queues the cart pixel for a server-side add to cart
func (b *EventPixelBuilder) QueueCart(ctx context.Context, req *domain.StorefrontRequest) bool {
	if !b.enabled || b.SuppressIfDuplicate(domain.EventCart) {
		return false
	}
	b.queueEvent(domain.EventCart, b.EnrichWithUser(cartFields(req), req.User))
	return true
}

// RenderCart renders the cart pixel for an asynchronous add to cart and returns the script tag
func (b *EventPixelBuilder) RenderCart(ctx context.Context, req *domain.StorefrontRequest) string {
	if !b.enabled || b.SuppressIfDuplicate(domain.EventCart) {
		return ""
	}
	return b.render(domain.EventCart, b.EnrichWithUser(cartFields(req), req.User))
}

// EmitSale queues the purchase pixel. The first sale of a render wins.
// Enrichment failures never block the pixel; they surface as the err field.
func (b *EventPixelBuilder) EmitSale(ctx context.Context, orderID uint64, user *domain.User) bool {
	if !b.enabled || b.SuppressIfDuplicate(domain.EventSale) {
		return false
	}

	fields := domain.Fields{domain.FieldOrderID: orderID}
	fields = b.EnrichWithUser(fields, user)
	if b.extractor != nil {
		b.extractor.Enrich(ctx, orderID, fields)
	}
	b.queueEvent(domain.EventSale, fields)
	return true
}

// LastParams returns the most recently built payload
func (b *EventPixelBuilder) LastParams() domain.Fields {
	if b.lastParams == nil {
		return domain.Fields{}
	}
	return b.lastParams
}

// LastEvent returns the dedup guard state
func (b *EventPixelBuilder) LastEvent() domain.EventType {
	return b.lastEvent
}

// Deferred returns the render-wide deferred script buffer
func (b *EventPixelBuilder) Deferred() string {
	return b.queue.String()
}

// Output returns everything rendered directly so far
func (b *EventPixelBuilder) Output() string {
	return b.output.String()
}

// Events returns the pixels emitted in this render
func (b *EventPixelBuilder) Events() []domain.TrackingEvent {
	return b.events
}

func (b *EventPixelBuilder) invocationCode(eventType domain.EventType, fields domain.Fields) (string, domain.Fields) {
	payload := b.BuildPayload(eventType, fields)
	return loaderCode(b.endpoint, EncodeQuery(payload)), payload
}

func (b *EventPixelBuilder) queueEvent(eventType domain.EventType, fields domain.Fields) {
	b.lastEvent = eventType
	code, payload := b.invocationCode(eventType, fields)
	b.queue.Enqueue(code)
	b.emitted(eventType, payload, domain.DeliveryQueued, code)
}

func (b *EventPixelBuilder) render(eventType domain.EventType, fields domain.Fields) string {
	code, payload := b.invocationCode(eventType, fields)
	tag := scriptTag(code)
	b.output.WriteString(tag)
	b.emitted(eventType, payload, domain.DeliveryRendered, tag)
	return tag
}

func (b *EventPixelBuilder) emitted(eventType domain.EventType, payload domain.Fields, delivery, code string) {
	event := domain.TrackingEvent{
		Type:      eventType,
		Shop:      b.shop,
		Fields:    payload,
		Delivery:  delivery,
		Code:      code,
		EmittedAt: time.Now(),
	}
	b.events = append(b.events, event)
	metrics.PixelEventsTotal.WithLabelValues(string(eventType), delivery).Inc()

	if b.tap != nil {
		b.tap.Publish(&event)
	}

	b.logger.Debug().
		Str("shop", b.shop).
		Str("event", string(eventType)).
		Str("delivery", delivery).
		Msg("Pixel emitted")
}

func cartFields(req *domain.StorefrontRequest) domain.Fields {
	ids := make([]string, 0, len(req.Cart))
	for _, line := range req.Cart {
		ids = append(ids, strconv.FormatUint(line.ProductID, 10))
	}
	return domain.Fields{domain.FieldProductID: strings.Join(ids, ",")}
}

