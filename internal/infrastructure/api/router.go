package api

import (
	"encoding/json"
	"net/http"

	"storefront-relay/internal/application"
	"storefront-relay/internal/infrastructure/pubsub"
	"storefront-relay/internal/ports"

	securitymiddleware "storefront-relay/internal/infrastructure/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services bundles the application services the HTTP surface exposes
type Services struct {
	Identity      *application.IdentityService
	Settings      *application.SettingsService
	Link          *application.LinkService
	Admin         *application.AdminService
	Render        *application.RenderService
	Subscriptions ports.SubscriptionWriter
	PubSub        *pubsub.PixelPubSub
}

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	HookSecret     string
	AllowedOrigins []string
	SwaggerFile    string
}

// NewRouter wires every relay route onto a chi router
func NewRouter(svc Services, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(securitymiddleware.AuditLoggingMiddleware(logger))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	swaggerFile := cfg.SwaggerFile
	if swaggerFile == "" {
		swaggerFile = "./docs/swagger.json"
	}
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, swaggerFile)
	})
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Platform callbacks, authenticated by their own parameters
	r.HandleFunc("/actions/link_site", linkSiteHandler(svc.Link, logger))
	r.HandleFunc("/actions/get_site_info", siteInfoHandler(svc.Link, logger))

	// Host engine calls
	r.Group(func(r chi.Router) {
		r.Use(securitymiddleware.SignatureMiddleware(cfg.HookSecret, logger))

		r.Post("/render", renderHandler(svc.Render, logger))
		r.Post("/hooks/{hook}", hookHandler(svc.Render, logger))

		r.Post("/lifecycle/activate", activateHandler(svc.Link, logger))
		r.Post("/lifecycle/deactivate", deactivateHandler(svc.Link, logger))
		r.Post("/lifecycle/uninstall", uninstallHandler(svc.Identity, logger))

		r.Get("/admin/setup", setupHandler(svc.Admin, logger))
		r.Get("/admin/settings", getSettingsHandler(svc.Settings, logger))
		r.Put("/admin/settings", updateSettingsHandler(svc.Settings, logger))

		r.Post("/subscriptions", syncSubscriptionsHandler(svc.Subscriptions, logger))

		// Pixels carry shopper identifiers, so the live stream stays behind the signature
		if svc.PubSub != nil {
			r.Get("/debug/pixels", pixelStreamHandler(svc.PubSub, logger))
		}
	})

	return r
}
