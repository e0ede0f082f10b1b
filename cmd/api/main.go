package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront-relay/internal/application"
	"storefront-relay/internal/application/hook_handlers"
	"storefront-relay/internal/config"
	"storefront-relay/internal/domain"
	apiinfra "storefront-relay/internal/infrastructure/api"
	"storefront-relay/internal/infrastructure/platform"
	"storefront-relay/internal/infrastructure/pubsub"
	"storefront-relay/internal/infrastructure/repository"
	"storefront-relay/internal/infrastructure/session"
	shopifyinfra "storefront-relay/internal/infrastructure/shopify"
	"storefront-relay/internal/metrics"
	"storefront-relay/internal/ports"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)
	logger.Info().Interface("config", cfg.Redacted()).Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.Mongo.Database)

	// Initialize repositories
	settingsRepo := repository.NewMongoSettingsRepository(db, cfg.Platform.SettingsPrefix)
	if err := settingsRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to ensure settings indexes")
	}

	var (
		subscriptionSource ports.SubscriptionSource
		subscriptionWriter ports.SubscriptionWriter
	)
	if cfg.Subscriptions.Enabled {
		subscriptionRepo := repository.NewMongoSubscriptionRepository(db)
		subscriptionSource = subscriptionRepo
		subscriptionWriter = subscriptionRepo
	}

	sessions, closeSessions := newSessionStore(ctx, cfg.Redis, logger)
	defer closeSessions()

	storefront, err := shopifyinfra.NewClient(shopifyinfra.Config{
		Shop:        cfg.Shopify.Shop,
		AccessToken: cfg.Shopify.AccessToken,
		APIKey:      cfg.Shopify.APIKey,
		APISecret:   cfg.Shopify.APISecret,
		Retries:     cfg.Shopify.Retries,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storefront client")
	}

	metrics.Register()
	pixelPubSub := pubsub.NewPixelPubSub(logger)

	metadata := domain.StoreMetadata{
		Name:               cfg.Store.Name,
		URL:                cfg.Store.URL,
		AdminEmail:         cfg.Store.AdminEmail,
		Currency:           cfg.Store.Currency,
		PlatformVersion:    cfg.Store.PlatformVersion,
		CommerceVersion:    cfg.Store.CommerceVersion,
		APIURL:             cfg.Store.APIURL,
		PermalinkStructure: cfg.Store.PermalinkStructure,
		SettingsURL:        cfg.Store.SettingsURL,
	}

	// Initialize application services
	identityService := application.NewIdentityService(settingsRepo, cfg.Store.URL, logger)
	settingsService := application.NewSettingsService(settingsRepo, []domain.ModuleDefaults{domain.PixelDefaults}, logger)
	linkService := application.NewLinkService(
		identityService,
		settingsRepo,
		platform.NewStatusClient(nil),
		application.PlatformEndpoints{
			DashboardBase: cfg.Platform.DashboardBase,
			PluginsBase:   cfg.Platform.PluginsBase,
		},
		metadata,
		cfg.Platform.Version,
		logger,
	)
	adminService := application.NewAdminService(identityService, linkService, metadata, logger)
	couponService := application.NewCouponService(sessions, storefront, logger)

	extractor := application.NewOrderDataExtractor(storefront, subscriptionSource, cfg.Platform.Version, logger)
	pixelService := application.NewPixelService(
		identityService,
		settingsService,
		extractor,
		pixelPubSub,
		cfg.Platform.PixelEndpoint,
		cfg.Platform.Version,
		logger,
	)

	// Initialize hook dispatcher and register handlers
	dispatcher := application.NewHookDispatcher(logger)
	hook_handlers.RegisterAll(dispatcher, couponService, adminService, logger)

	renderService := application.NewRenderService(pixelService, identityService, dispatcher, logger)

	router := apiinfra.NewRouter(apiinfra.Services{
		Identity:      identityService,
		Settings:      settingsService,
		Link:          linkService,
		Admin:         adminService,
		Render:        renderService,
		Subscriptions: subscriptionWriter,
		PubSub:        pixelPubSub,
	}, apiinfra.RouterConfig{
		HookSecret:     cfg.Server.HookSecret,
		AllowedOrigins: cfg.Server.CORSOrigins,
		SwaggerFile:    cfg.Server.SwaggerFile,
	}, logger)

	if cfg.Server.HookSecret == "" {
		logger.Warn().Msg("HOOK_SECRET not set, host requests are not verified")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting API server")
		logger.Info().Msg(fmt.Sprintf("Swagger documentation available at http://localhost:%d/swagger/index.html", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		logger.Info().Msg("Shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped with error")
	}
	logger.Info().Msg("Server stopped")
}

// newSessionStore uses Redis when an address is configured and memory otherwise
func newSessionStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (ports.SessionStore, func()) {
	if cfg.Addr == "" {
		logger.Info().Msg("REDIS_ADDR not set, using in-memory session store")
		return session.NewMemorySessionStore(), func() {}
	}

	store, err := session.NewRedisSessionStore(ctx, session.RedisConfig{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
		TLSEnabled: cfg.TLSEnabled,
		TTL:        cfg.SessionTTL.Duration,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
}
