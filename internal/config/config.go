package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	// Empty PostgresHost selects the in-memory store (local development).
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsDir    string

	RedisAddr string

	KafkaBrokers  []string
	ConsumerGroup string

	OrdersAPIURL     string
	OrdersAPITimeout time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB

		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "storefront"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "storefront"),
		PostgresDB:       getEnv("POSTGRES_DB", "storefront"),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "./migrations"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		KafkaBrokers:  getList("KAFKA_BROKERS"),
		ConsumerGroup: getEnv("CONSUMER_GROUP", "storefront-client"),

		OrdersAPIURL:     getEnv("ORDERS_API_URL", "http://localhost:9090"),
		OrdersAPITimeout: getDuration("ORDERS_API_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
