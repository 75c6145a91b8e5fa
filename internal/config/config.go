// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nexusmart/storefront/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	CartBackendMemory = "memory"
	CartBackendRedis  = "redis"
	CartBackendMongo  = "mongo"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	DBDriver string
	DBDSN    string

	CartBackend   string
	RedisAddr     string
	RedisPassword string
	ProductCache  bool
	MongoURI      string
	MongoDBName   string

	MongoMaxPoolSize    uint64
	MongoMinPoolSize    uint64
	MongoConnectTimeout time.Duration

	SessionSecret string
	SessionMaxAge time.Duration
	SessionSecure bool
	AdminPassword string

	KafkaBrokers []string
	KafkaTopic   string

	ShippingFee decimal.Decimal
	TaxRate     decimal.Decimal
	Currency    string

	SeedOnStart bool
	LogMode     string
	LogFile     string

	// Warnings lists values that could not be parsed and fell back to defaults.
	Warnings []string
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		MaxRequestBodySize: 1 << 20, // 1MB

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "./storefront.db"),

		CartBackend:   strings.ToLower(getEnv("CART_BACKEND", CartBackendMemory)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "storefront"),

		SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret-change-me"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "devops2025"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "orders.placed"),

		Currency: getEnv("CURRENCY", "USD"),
		LogMode:  getEnv("LOG_MODE", "development"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	cfg.RequestTimeout = cfg.duration("REQUEST_TIMEOUT", 30*time.Second)
	cfg.ShutdownTimeout = cfg.duration("SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.SessionMaxAge = cfg.duration("SESSION_MAX_AGE", 14*24*time.Hour)
	cfg.MongoMaxPoolSize = cfg.poolSize("MONGO_MAX_POOL_SIZE", 50)
	cfg.MongoMinPoolSize = cfg.poolSize("MONGO_MIN_POOL_SIZE", 2)
	cfg.MongoConnectTimeout = cfg.duration("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	cfg.ProductCache = cfg.boolean("PRODUCT_CACHE", false)
	cfg.SessionSecure = cfg.boolean("SESSION_SECURE", false)
	cfg.SeedOnStart = cfg.boolean("SEED_ON_START", true)
	cfg.ShippingFee = cfg.decimal("SHIPPING_FEE", pricing.DefaultShippingFee)
	cfg.TaxRate = cfg.decimal("TAX_RATE", pricing.DefaultTaxRate)

	switch cfg.CartBackend {
	case CartBackendMemory, CartBackendRedis, CartBackendMongo:
	default:
		cfg.warn("CART_BACKEND", cfg.CartBackend, CartBackendMemory)
		cfg.CartBackend = CartBackendMemory
	}

	return cfg
}

func (c *Config) PricingRules() pricing.Rules {
	return pricing.Rules{ShippingFee: c.ShippingFee, TaxRate: c.TaxRate}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		c.warn(key, raw, def.String())
		return def
	}
	return d
}

func (c *Config) boolean(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		c.warn(key, raw, strconv.FormatBool(def))
		return def
	}
	return b
}

func (c *Config) poolSize(key string, def uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		c.warn(key, raw, strconv.FormatUint(def, 10))
		return def
	}
	return n
}

func (c *Config) decimal(key string, def decimal.Decimal) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		c.warn(key, raw, def.String())
		return def
	}
	return d
}

func (c *Config) warn(key, raw, fallback string) {
	c.Warnings = append(c.Warnings, fmt.Sprintf("invalid %s=%q, using %s", key, raw, fallback))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
