package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path (skipped when path is empty) over the
// defaults, then applies environment overrides. A .env file is loaded first
// when present. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setInt(&cfg.Server.Port, "PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "CORS_ORIGINS")
	setStr(&cfg.Server.HookSecret, "HOOK_SECRET")
	setStr(&cfg.Server.SwaggerFile, "SWAGGER_FILE")
	setDuration(&cfg.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT")

	setStr(&cfg.Store.Name, "STORE_NAME")
	setStr(&cfg.Store.URL, "APP_URL")
	setStr(&cfg.Store.AdminEmail, "STORE_ADMIN_EMAIL")
	setStr(&cfg.Store.Currency, "STORE_CURRENCY")
	setStr(&cfg.Store.PlatformVersion, "STORE_PLATFORM_VERSION")
	setStr(&cfg.Store.CommerceVersion, "STORE_COMMERCE_VERSION")
	setStr(&cfg.Store.APIURL, "STORE_API_URL")
	setStr(&cfg.Store.PermalinkStructure, "STORE_PERMALINK_STRUCTURE")
	setStr(&cfg.Store.SettingsURL, "STORE_SETTINGS_URL")

	setStr(&cfg.Platform.DashboardBase, "PLATFORM_DASHBOARD_BASE")
	setStr(&cfg.Platform.PluginsBase, "PLATFORM_PLUGINS_BASE")
	setStr(&cfg.Platform.PixelEndpoint, "PIXEL_ENDPOINT")
	setStr(&cfg.Platform.Version, "RELAY_VERSION")
	setStr(&cfg.Platform.SettingsPrefix, "SETTINGS_PREFIX")

	setStr(&cfg.Mongo.URI, "MONGODB_URI")
	setStr(&cfg.Mongo.Database, "MONGODB_DATABASE")

	setStr(&cfg.Redis.Addr, "REDIS_ADDR")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.SessionTTL, "REDIS_SESSION_TTL")

	setStr(&cfg.Shopify.Shop, "SHOPIFY_SHOP")
	setStr(&cfg.Shopify.AccessToken, "SHOPIFY_ACCESS_TOKEN")
	setStr(&cfg.Shopify.APIKey, "SHOPIFY_API_KEY")
	setStr(&cfg.Shopify.APISecret, "SHOPIFY_API_SECRET")
	setInt(&cfg.Shopify.Retries, "SHOPIFY_RETRIES")

	setBool(&cfg.Subscriptions.Enabled, "SUBSCRIPTIONS_ENABLED")

	setStr(&cfg.LogLevel, "LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		*dst = cleaned
	}
}
