package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	StoreDriver string
	DatabaseURL string
	DBTimeout   time.Duration

	RedisURL           string
	OrderCacheTTL      time.Duration
	CheckoutRateLimit  int
	CheckoutRateWindow time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	JWTSecret         string
	AdminAPIKey       string
	OrderStatusPolicy string

	NotifyWorkers   int
	NotifyQueueSize int

	CORSOrigins []string
}

// Load reads .env if present and then the process environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() *Config {
	return &Config{
		Port:   getString("PORT", "8080"),
		AppEnv: getString("APP_ENV", "production"),

		StoreDriver: getString("STORE_DRIVER", "postgres"),
		DatabaseURL: databaseURL(),
		DBTimeout:   getDuration("DB_TIMEOUT", 5*time.Second),

		RedisURL:           os.Getenv("REDIS_URL"),
		OrderCacheTTL:      getDuration("ORDER_CACHE_TTL", 5*time.Minute),
		CheckoutRateLimit:  getInt("CHECKOUT_RATE_LIMIT", 20),
		CheckoutRateWindow: getDuration("CHECKOUT_RATE_WINDOW", time.Minute),

		KafkaBrokers:     getList("KAFKA_BROKERS", nil),
		KafkaTopicPrefix: getString("KAFKA_TOPIC_PREFIX", "orders"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminAPIKey:       os.Getenv("ADMIN_API_KEY"),
		OrderStatusPolicy: getString("ORDER_STATUS_POLICY", "permissive"),

		NotifyWorkers:   getInt("NOTIFY_WORKERS", 4),
		NotifyQueueSize: getInt("NOTIFY_QUEUE_SIZE", 256),

		CORSOrigins: getList("CORS_ORIGINS", []string{"*"}),
	}
}

func (c *Config) Development() bool { return c.AppEnv == "development" }

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL or DB_HOST/DB_NAME required for postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.AdminAPIKey == "" {
		return fmt.Errorf("config: ADMIN_API_KEY is required")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* parts.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), name, getString("DB_PORT", "5432"),
	)
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
