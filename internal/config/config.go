package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the services consume. Built once at startup and
// passed down by reference; nothing reads the environment after Load.
type Config struct {
	// Database
	DatabaseURL            string
	DatabaseMaxConns       int
	DatabaseAcquireTimeout time.Duration

	// Pure data provider
	PureAPIKey string
	APIBaseURL string

	// Sync cadences
	ProductSyncInterval     time.Duration
	TransactionSyncInterval time.Duration

	// Retry policy
	RateLimitDelay time.Duration
	MaxRetries     int
	InitialBackoff time.Duration

	// Batch sizes
	ProductBatchSize    int
	TransactionPageSize int

	// Read API
	Port string
}

type missingEnvErr string

func (e missingEnvErr) Error() string { return "missing env: " + string(e) }

// Load reads configuration from the environment. A local .env file is
// honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, missingEnvErr("DATABASE_URL")
	}
	apiKey := os.Getenv("PURE_API_KEY")
	if apiKey == "" {
		return nil, missingEnvErr("PURE_API_KEY")
	}

	cfg := &Config{
		DatabaseURL:             dsn,
		DatabaseMaxConns:        getEnvInt("DATABASE_MAX_CONNECTIONS", 5),
		DatabaseAcquireTimeout:  getEnvSecs("DATABASE_ACQUIRE_TIMEOUT_SECS", 3),
		PureAPIKey:              apiKey,
		APIBaseURL:              getEnv("API_BASE_URL", "https://api.collectpure.com"),
		ProductSyncInterval:     getEnvSecs("PRODUCT_SYNC_INTERVAL_SECS", 3600),
		TransactionSyncInterval: getEnvSecs("TRANSACTION_SYNC_INTERVAL_SECS", 21600),
		RateLimitDelay:          getEnvSecs("RATE_LIMIT_DELAY_SECS", 6),
		MaxRetries:              getEnvInt("MAX_RETRIES", 10),
		InitialBackoff:          getEnvSecs("INITIAL_BACKOFF_SECS", 6),
		ProductBatchSize:        getEnvInt("PRODUCT_BATCH_SIZE", 30),
		TransactionPageSize:     getEnvInt("TRANSACTION_PAGE_SIZE", 1000),
		Port:                    getEnv("PORT", "3000"),
	}

	if cfg.ProductBatchSize <= 0 {
		return nil, fmt.Errorf("PRODUCT_BATCH_SIZE must be positive, got %d", cfg.ProductBatchSize)
	}
	if cfg.TransactionPageSize <= 0 {
		return nil, fmt.Errorf("TRANSACTION_PAGE_SIZE must be positive, got %d", cfg.TransactionPageSize)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
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

func getEnvSecs(key string, def int64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Second
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Duration(def) * time.Second
	}
	return time.Duration(n) * time.Second
}
