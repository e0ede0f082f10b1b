// Package config loads the relay configuration from defaults, an optional TOML
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the full relay configuration
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Store         StoreConfig         `toml:"store"`
	Platform      PlatformConfig      `toml:"platform"`
	Mongo         MongoConfig         `toml:"mongo"`
	Redis         RedisConfig         `toml:"redis"`
	Shopify       ShopifyConfig       `toml:"shopify"`
	Subscriptions SubscriptionsConfig `toml:"subscriptions"`
	LogLevel      string              `toml:"log_level"`
}

type ServerConfig struct {
	Port            int      `toml:"port"`
	CORSOrigins     []string `toml:"cors_origins"`
	HookSecret      string   `toml:"hook_secret"`
	SwaggerFile     string   `toml:"swagger_file"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// StoreConfig describes the storefront the relay is installed on
type StoreConfig struct {
	Name               string `toml:"name"`
	URL                string `toml:"url"`
	AdminEmail         string `toml:"admin_email"`
	Currency           string `toml:"currency"`
	PlatformVersion    string `toml:"platform_version"`
	CommerceVersion    string `toml:"commerce_version"`
	APIURL             string `toml:"api_url"`
	PermalinkStructure string `toml:"permalink_structure"`
	SettingsURL        string `toml:"settings_url"`
}

// PlatformConfig points at the advertising platform
type PlatformConfig struct {
	DashboardBase  string `toml:"dashboard_base"`
	PluginsBase    string `toml:"plugins_base"`
	PixelEndpoint  string `toml:"pixel_endpoint"`
	Version        string `toml:"version"`
	SettingsPrefix string `toml:"settings_prefix"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// RedisConfig enables the Redis session store when Addr is set
type RedisConfig struct {
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	SessionTTL duration `toml:"session_ttl"`
}

type ShopifyConfig struct {
	Shop        string `toml:"shop"`
	AccessToken string `toml:"access_token"`
	APIKey      string `toml:"api_key"`
	APISecret   string `toml:"api_secret"`
	Retries     int    `toml:"retries"`
}

type SubscriptionsConfig struct {
	Enabled bool `toml:"enabled"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			CORSOrigins:     []string{"*"},
			SwaggerFile:     "./docs/swagger.json",
			ShutdownTimeout: duration{10 * time.Second},
		},
		Store: StoreConfig{
			URL:                "http://localhost:8080",
			Currency:           "USD",
			PermalinkStructure: "/%postname%/",
		},
		Platform: PlatformConfig{
			DashboardBase:  "https://app.sourceknowledge.com/",
			PluginsBase:    "https://plugins.sourceknowledge.com/",
			PixelEndpoint:  "//upx.provenpixel.com/woo.js.php",
			Version:        "1.0.8",
			SettingsPrefix: "sourceknowledge",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "storefront_relay",
		},
		Redis: RedisConfig{
			PoolSize:   10,
			MaxRetries: 3,
			SessionTTL: duration{48 * time.Hour},
		},
		Shopify: ShopifyConfig{
			Retries: 3,
		},
		LogLevel: "info",
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for values the relay cannot run without
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
	}
	if c.Store.URL == "" {
		errs = append(errs, "store: url must not be empty")
	}
	if c.Platform.DashboardBase == "" || c.Platform.PluginsBase == "" {
		errs = append(errs, "platform: dashboard_base and plugins_base must not be empty")
	}
	if c.Platform.PixelEndpoint == "" {
		errs = append(errs, "platform: pixel_endpoint must not be empty")
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		errs = append(errs, "mongo: uri and database must not be empty")
	}
	if c.Shopify.Shop == "" || c.Shopify.AccessToken == "" {
		errs = append(errs, "shopify: shop and access_token must be set")
	}

	if len(errs) > 0 {
		return errors.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}
