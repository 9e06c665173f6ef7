package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// Outbound delivery
	DispatchTimeout time.Duration // per delivery attempt (webhook or chat)
	GatewayURL      string        // WhatsApp gateway base URL
	GatewayToken    string        // fallback token when a tenant has none configured

	// Optional delivery-log archival to an external Postgres warehouse
	ArchiveDSN string

	// Delivery-log retention, purged by the nightly job
	LogRetentionDays int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "wa-assist"),
		SkipAuth:         getEnv("SKIP_AUTH", "false") == "true",
		Environment:      getEnv("ENVIRONMENT", "development"),
		AppId:            getEnv("APP_ID", "wa-assist"),
		DispatchTimeout:  getEnvDuration("DISPATCH_TIMEOUT", 10*time.Second),
		GatewayURL:       getEnv("GATEWAY_URL", "https://graph.facebook.com/v19.0"),
		GatewayToken:     getEnv("GATEWAY_TOKEN", ""),
		ArchiveDSN:       getEnv("ARCHIVE_DSN", ""),
		LogRetentionDays: getEnvInt("LOG_RETENTION_DAYS", 30),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
