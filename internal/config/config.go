package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Warranty     WarrantyConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// WarrantyConfig tunes warranty policy knobs.
type WarrantyConfig struct {
	// PurchaseToleranceHours is how far in the future a purchase date
	// may lie before product registration is rejected. Covers clock
	// skew and same-day store entries.
	PurchaseToleranceHours int
	// NotifyIntervalMinutes is the scan cadence of the expiry notifier.
	NotifyIntervalMinutes int
	TicketNumberPrefix    string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from the environment, applying defaults
// where a value is optional. A .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App:          loadApp(),
		Postgres:     loadPostgres(),
		Redis:        loadRedis(),
		Logger:       LoggerConfig{Level: getEnv("LOG_LEVEL", "info")},
		Auth:         loadAuth(),
		Warranty:     loadWarranty(),
		Notification: loadNotification(),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadApp() AppConfig {
	return AppConfig{
		Name:                  getEnv("APP_NAME", "warranty-service"),
		Env:                   getEnv("APP_ENV", "development"),
		Host:                  getEnv("APP_HOST", "0.0.0.0"),
		Port:                  getEnv("APP_PORT", "8080"),
		Version:               getEnv("APP_VERSION", "dev"),
		RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
	}
}

func loadPostgres() PostgresConfig {
	return PostgresConfig{
		DSN:            os.Getenv("POSTGRES_DSN"),
		MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
		MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
		RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
		ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
		ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
	}
}

func loadRedis() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

func loadAuth() AuthConfig {
	return AuthConfig{
		JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
		AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
	}
}

func loadWarranty() WarrantyConfig {
	return WarrantyConfig{
		PurchaseToleranceHours: getEnvAsInt("WARRANTY_PURCHASE_TOLERANCE_HOURS", 24),
		NotifyIntervalMinutes:  getEnvAsInt("WARRANTY_NOTIFY_INTERVAL_MINUTES", 60),
		TicketNumberPrefix:     getEnv("TICKET_NUMBER_PREFIX", "TKT"),
	}
}

func loadNotification() NotificationConfig {
	return NotificationConfig{
		EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
		WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
	}
}

// validate catches settings that are safe in development but must not
// reach production.
func (c *Config) validate() error {
	if c.App.Env == "production" && c.Auth.JWTSecret == "dev-secret" {
		return fmt.Errorf("AUTH_JWT_SECRET must be set in production")
	}
	if c.Warranty.TicketNumberPrefix == "" {
		return fmt.Errorf("TICKET_NUMBER_PREFIX must not be empty")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// PurchaseTolerance returns the future purchase date tolerance.
func (w WarrantyConfig) PurchaseTolerance() time.Duration {
	if w.PurchaseToleranceHours <= 0 {
		return 0
	}
	return time.Duration(w.PurchaseToleranceHours) * time.Hour
}

// NotifyInterval returns the expiry notifier scan cadence.
func (w WarrantyConfig) NotifyInterval() time.Duration {
	if w.NotifyIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(w.NotifyIntervalMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
