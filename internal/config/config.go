package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	BoltPath    string `env:"BOLT_PATH" envDefault:"data/administration.db"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON     bool   `env:"LOG_JSON" envDefault:"false"`

	AuthMode               string `env:"AUTH_MODE" envDefault:"header"`
	SessionPublicKeyBase64 string `env:"SESSION_PUBLIC_KEY_BASE64"`
	AdminAPIKey            string `env:"ADMIN_API_KEY"`
	AdminRole              string `env:"ADMIN_ROLE" envDefault:"administration_admin"`

	ServiceComponentID       string        `env:"SERVICE_COMPONENT_ID" envDefault:"administration"`
	ServicePlatformID        string        `env:"SERVICE_PLATFORM_ID" envDefault:"core"`
	ServiceSigningKeySeedHex string        `env:"SERVICE_SIGNING_KEY_SEED_HEX"`
	ServiceTokenTTL          time.Duration `env:"SERVICE_TOKEN_TTL" envDefault:"1m"`

	AuthorityURL     string        `env:"AUTHORITY_URL"`
	AuthorityTimeout time.Duration `env:"AUTHORITY_TIMEOUT" envDefault:"5s"`
	RegistryURL      string        `env:"REGISTRY_URL"`

	NotifyTimeout     time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	NotifyConcurrency int           `env:"NOTIFY_CONCURRENCY" envDefault:"4"`
	NotifyAsync       bool          `env:"NOTIFY_ASYNC" envDefault:"true"`
	NotifyQueueSize   int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"64"`

	OwnershipCacheTTL       time.Duration `env:"OWNERSHIP_CACHE_TTL" envDefault:"0s"`
	RequireCreatorOwnership bool          `env:"REQUIRE_CREATOR_OWNERSHIP" envDefault:"false"`
	CreatePolicyPath        string        `env:"CREATE_POLICY_PATH"`

	RateLimitRequests      int  `env:"RATE_LIMIT_REQUESTS" envDefault:"0"`
	RateLimitWindowSeconds int  `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitFailClosed    bool `env:"RATE_LIMIT_FAIL_CLOSED" envDefault:"false"`
	RateLimitMaxKeys       int  `env:"RATE_LIMIT_MAX_KEYS" envDefault:"10000"`
	// Mutations per federation per window, across all callers. 0 disables.
	RateLimitFederationMutations int `env:"RATE_LIMIT_FEDERATION_MUTATIONS" envDefault:"0"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// FromEnv is Load for callers that prefer defaults over a startup error.
func FromEnv() Config {
	cfg, err := Load()
	if err != nil {
		cfg = Default()
	}
	return cfg
}

func Default() Config {
	var cfg Config
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.NotifyConcurrency <= 0 {
		c.NotifyConcurrency = 1
	}
	if c.NotifyQueueSize <= 0 {
		c.NotifyQueueSize = 64
	}
	if c.RateLimitMaxKeys <= 0 {
		c.RateLimitMaxKeys = 10000
	}
	if c.ServiceTokenTTL <= 0 {
		c.ServiceTokenTTL = time.Minute
	}
}

func (c Config) RateLimitWindow() time.Duration {
	if c.RateLimitWindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
