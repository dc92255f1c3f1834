package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Catalog sources.
const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogMongo    = "mongo"
)

const devJWTSecret = "dev-only-secret"

// Config is the process configuration read from the environment.
type Config struct {
	Port string
	Dev  bool

	MongoURL string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     []byte
	TokenTTL      time.Duration
	ReceiptSecret []byte

	EmailHost string
	EmailPort int
	EmailUser string
	EmailPass string
	EmailFrom string

	CatalogSource string
	CatalogPath   string

	LogLevel string
	LogFile  string

	NotifyWorkers      int
	RateLimitPerMinute int
	CORSOrigins        []string
	ShutdownTimeout    time.Duration
}

// Load reads .env (if present) and the process environment. The returned bool reports
// whether a .env file was found.
func Load() (*Config, bool, error) {
	found := godotenv.Load() == nil
	cfg, err := FromLookup(os.Getenv)
	return cfg, found, err
}

// FromLookup builds a Config from an arbitrary key lookup, applying defaults.
func FromLookup(get func(string) string) (*Config, error) {
	str := func(key, def string) string {
		if v := strings.TrimSpace(get(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:               str("PORT", "8080"),
		Dev:                cast.ToBool(get("DEV")),
		MongoURL:           get("MONGO_URL"),
		MongoDB:            str("MONGO_DB", "storefront"),
		RedisAddr:          get("REDIS_ADDR"),
		RedisPassword:      get("REDIS_PASSWORD"),
		RedisDB:            cast.ToInt(str("REDIS_DB", "0")),
		TokenTTL:           cast.ToDuration(str("TOKEN_TTL", "12h")),
		EmailHost:          get("EMAIL_HOST"),
		EmailPort:          cast.ToInt(str("EMAIL_PORT", "587")),
		EmailUser:          get("EMAIL_USER"),
		EmailPass:          get("EMAIL_PASS"),
		EmailFrom:          str("EMAIL_FROM", get("EMAIL_USER")),
		CatalogSource:      str("CATALOG_SOURCE", CatalogEmbedded),
		CatalogPath:        get("CATALOG_PATH"),
		LogLevel:           str("LOG_LEVEL", "info"),
		LogFile:            get("LOG_FILE"),
		NotifyWorkers:      cast.ToInt(str("NOTIFY_WORKERS", "4")),
		RateLimitPerMinute: cast.ToInt(str("RATE_LIMIT_PER_MINUTE", "30")),
		ShutdownTimeout:    cast.ToDuration(str("SHUTDOWN_TIMEOUT", "10s")),
	}

	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}

	cfg.JWTSecret = []byte(get("JWT_SECRET"))
	if len(cfg.JWTSecret) == 0 {
		if !cfg.Dev {
			return nil, errors.New("JWT_SECRET is required outside DEV mode")
		}
		cfg.JWTSecret = []byte(devJWTSecret)
	}
	cfg.ReceiptSecret = []byte(str("RECEIPT_SECRET", string(cfg.JWTSecret)))

	for _, o := range strings.Split(str("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	switch cfg.CatalogSource {
	case CatalogEmbedded, CatalogMongo:
	case CatalogFile:
		if cfg.CatalogPath == "" {
			return nil, errors.New("CATALOG_PATH is required when CATALOG_SOURCE=file")
		}
	default:
		return nil, errors.New("unknown CATALOG_SOURCE " + cfg.CatalogSource)
	}
	if cfg.CatalogSource == CatalogMongo && cfg.MongoURL == "" {
		return nil, errors.New("CATALOG_SOURCE=mongo needs MONGO_URL")
	}
	if cfg.NotifyWorkers < 1 {
		cfg.NotifyWorkers = 1
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}

	return cfg, nil
}

// MailEnabled reports whether SMTP credentials are configured.
func (c *Config) MailEnabled() bool {
	return c.EmailHost != "" && c.EmailUser != ""
}
