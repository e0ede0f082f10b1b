package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/metrics"

	"github.com/rs/zerolog"
)

// Hook names the storefront engine calls at its lifecycle points
const (
	HookPageHead      = "page_head"
	HookQueryParsed   = "query_parsed"
	HookCartItemAdded = "cart_item_added"
	HookAfterCart     = "after_cart"
	HookAjaxAddToCart = "ajax_add_to_cart"
	HookOrderReceived = "order_received"
	HookPaymentDone   = "payment_complete"
	HookLoaded        = "loaded"
	HookBeforeCart    = "before_cart"
	HookAdminNotices  = "admin_notices"
	HookAdminInit     = "admin_init"
)

// Handler priorities
const (
	PriorityFirst   = 1
	PriorityHigh    = 2
	PriorityDefault = 10
	PriorityLow     = 11
)

// HookCall is the per-render state shared by every handler of a dispatch
type HookCall struct {
	Request  *domain.StorefrontRequest
	Pixel    *EventPixelBuilder
	Response *domain.HookResponse
}

// HookHandler handles one hook
type HookHandler interface {
	Name() string
	Handle(ctx context.Context, call *HookCall) error
}

type registration struct {
	priority int
	seq      int
	handler  HookHandler
}

// HookDispatcher maps hook names to ordered handlers
type HookDispatcher struct {
	hooks  map[string][]registration
	seq    int
	logger zerolog.Logger
}

// NewHookDispatcher creates a new hook dispatcher
func NewHookDispatcher(logger zerolog.Logger) *HookDispatcher {
	return &HookDispatcher{
		hooks:  make(map[string][]registration),
		logger: logger,
	}
}

// Register adds handler to hook. Lower priorities run first; equal priorities run in registration order.
// Registration happens at startup and is not safe concurrently with Dispatch.
func (d *HookDispatcher) Register(hook string, priority int, handler HookHandler) {
	d.seq++
	regs := append(d.hooks[hook], registration{priority: priority, seq: d.seq, handler: handler})
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority < regs[j].priority
		}
		return regs[i].seq < regs[j].seq
	})
	d.hooks[hook] = regs
}

// Has reports whether any handler is registered for hook
func (d *HookDispatcher) Has(hook string) bool {
	return len(d.hooks[hook]) > 0
}

// Handlers returns the handler names of hook in execution order
func (d *HookDispatcher) Handlers(hook string) []string {
	names := make([]string, 0, len(d.hooks[hook]))
	for _, reg := range d.hooks[hook] {
		names = append(names, reg.handler.Name())
	}
	return names
}

// Dispatch runs every handler of hook. A failing handler does not stop the rest;
// all failures are returned joined.
func (d *HookDispatcher) Dispatch(ctx context.Context, hook string, call *HookCall) error {
	regs, ok := d.hooks[hook]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownHook, hook)
	}

	start := time.Now()
	defer func() {
		metrics.HookDispatchDuration.WithLabelValues(hook).Observe(time.Since(start).Seconds())
	}()

	var errs []error
	for _, reg := range regs {
		if err := reg.handler.Handle(ctx, call); err != nil {
			d.logger.Error().
				Err(err).
				Str("hook", hook).
				Str("handler", reg.handler.Name()).
				Msg("Hook handler failed")
			errs = append(errs, fmt.Errorf("%s: %w", reg.handler.Name(), err))
		}
	}
	return errors.Join(errs...)
}
