package hook_handlers

import (
	"storefront-relay/internal/application"

	"github.com/rs/zerolog"
)

// RegisterAll wires every handler onto the dispatcher
func RegisterAll(
	d *application.HookDispatcher,
	coupons *application.CouponService,
	admin *application.AdminService,
	logger zerolog.Logger,
) {
	d.Register(application.HookPageHead, application.PriorityFirst, NewPixelFilterHandler())
	d.Register(application.HookPageHead, application.PriorityDefault, NewViewHandler())
	d.Register(application.HookQueryParsed, application.PriorityDefault, NewSearchHandler())
	d.Register(application.HookCartItemAdded, application.PriorityHigh, NewCartHandler(logger))
	d.Register(application.HookAfterCart, application.PriorityDefault, NewCartRedirectHandler(logger))
	d.Register(application.HookAjaxAddToCart, application.PriorityDefault, NewAjaxCartHandler(logger))
	d.Register(application.HookOrderReceived, application.PriorityHigh, NewGatewaySaleHandler(logger))
	d.Register(application.HookPaymentDone, application.PriorityHigh, NewSaleHandler(logger))

	d.Register(application.HookLoaded, application.PriorityDefault, NewCaptureCouponHandler(coupons))
	d.Register(application.HookBeforeCart, application.PriorityDefault, NewApplyCouponHandler(coupons))

	d.Register(application.HookAdminNotices, application.PriorityDefault, NewAdminNoticesHandler(admin))
	d.Register(application.HookAdminInit, application.PriorityDefault, NewNeedsRevisionHandler(admin))
}
