package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	HTTPPort     string
	PostgresDSN  string
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	JWTSecret    string
	ReceiptsDir  string
	AppURL       string
	ServiceName  string
}

var (
	current Config
	loaded  bool
)

// Load reads the configuration from the environment and keeps it as
// the process-wide config returned by Get.
func Load() Config {
	current = Config{
		HTTPPort:     getenv("PORT", "8080"),
		PostgresDSN:  postgresDSN(),
		RedisAddr:    getenv("REDIS_ADDR", "127.0.0.1:6379"),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "farm2market.lifecycle"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		ReceiptsDir:  getenv("RECEIPTS_DIR", "./uploads/receipts"),
		AppURL:       getenv("APP_URL", "http://localhost:3000"),
		ServiceName:  getenv("SERVICE_NAME", "farm2market-api"),
	}
	loaded = true
	return current
}

func Get() Config {
	if !loaded {
		return Load()
	}
	return current
}

// postgresDSN prefers a full POSTGRES_DSN and falls back to the
// individual DB_* variables.
func postgresDSN() string {
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		getenv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_HOST", "localhost"),
		getenv("DB_PORT", "5432"),
		getenv("DB_NAME", "farm2market"),
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
