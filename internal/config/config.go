package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort int

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	JWTSecret  []byte
	SessionTTL time.Duration

	PaymentTokenSecret []byte

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	StorefrontHome string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "pcshop"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    EnvIntDefault("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    EnvIntDefault("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: EnvDurationDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		SessionTTL: EnvDurationDefault("SESSION_TTL", 24*time.Hour),

		PaymentTokenSecret: []byte(os.Getenv("PAYMENT_TOKEN_SECRET")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		StorefrontHome: EnvDefault("STOREFRONT_HOME", defaultHome()),
	}
}

func defaultHome() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".pcshop"
	}
	return dir + string(os.PathSeparator) + "pcshop"
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
