package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "devjwtsecret"

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// StoreDriver selects the user store: postgres or memory
	StoreDriver string

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration
	DBMaxConnIdle time.Duration

	// Migrations
	MigrationsDir string

	// Redis (rate limiting)
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RateLimitEnabled bool

	// RateLimitBypassPrivate skips limits for loopback and private addresses
	RateLimitBypassPrivate bool

	// TrustProxyHeaders lets CF-Connecting-IP / X-Forwarded-For name the client
	TrustProxyHeaders bool

	// JWT
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Google Cloud Storage (avatars)
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// Mailgun
	MailgunDomain  string
	MailgunAPIKey  string
	MailgunSender  string
	MailgunAPIBase string // empty for the US region

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESUsersIndex       string

	// Email sending toggle
	MailSendEnabled bool

	// Debug metrics (/api/v1/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "go-ddd-auth-service"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", "postgres")),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "appdb"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),
		DBMaxConnIdle: getdur("DB_MAX_CONN_IDLE", 30*time.Minute),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		RedisDB:          getint("REDIS_DB", 0),
		RateLimitEnabled: getbool("RATE_LIMIT_ENABLED", true),

		RateLimitBypassPrivate: getbool("RATE_LIMIT_BYPASS_PRIVATE", false),
		TrustProxyHeaders:      getbool("TRUST_PROXY_HEADERS", false),

		JWTSecret:  getenv("JWT_SECRET", devJWTSecret),
		AccessTTL:  getdur("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getdur("JWT_REFRESH_TTL", 168*time.Hour),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", "*"),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		MailgunDomain:  getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:  getenv("MAILGUN_API_KEY", ""),
		MailgunSender:  getenv("MAILGUN_SENDER", ""),
		MailgunAPIBase: getenv("MAILGUN_API_BASE", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESUsersIndex:       getenv("ES_USERS_INDEX", "users"),

		// Welcome emails are opt-in
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	var errs []error
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL must be positive"))
	}
	if c.RefreshTTL <= c.AccessTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be longer than JWT_ACCESS_TTL"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Env == "production" && (c.JWTSecret == devJWTSecret || len(c.JWTSecret) < 32) {
		errs = append(errs, errors.New("JWT_SECRET must be set to at least 32 bytes in production"))
	}
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		errs = append(errs, errors.New("STORE_DRIVER must be postgres or memory"))
	}
	return errors.Join(errs...)
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
