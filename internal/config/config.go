// Package config provides environment configuration for the bot.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Telegram settings
	TelegramBotToken string

	// LLM settings
	OpenAIAPIKey      string
	CompletionModel   string
	CompletionTimeout time.Duration
	MaxToolRounds     int

	// Language
	DefaultLanguage string

	// Embedding settings
	EmbedderType     string // "openai" or "clip"
	EmbeddingModel   string
	ClipServiceURL   string
	EmbeddingTimeout time.Duration

	// Catalog settings
	CatalogType       string // "qdrant" or "memory"
	QdrantURL         string
	QdrantAPIKey      string
	QdrantCollection  string
	CatalogTimeout    time.Duration
	SearchTopK        int

	// Payment settings
	ClickBaseURL    string
	ClickServiceID  string
	ClickMerchantID string
	ClickReturnURL  string

	// Session settings
	SessionIdleTTL  time.Duration
	SessionMaxTurns int

	// NATS settings (event publishing disabled when URL is empty)
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// Ops HTTP server
	OpsPort string

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Telegram
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		// LLM
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		CompletionModel:   getEnv("COMPLETION_MODEL", "gpt-4o"),
		CompletionTimeout: getDurationEnv("COMPLETION_TIMEOUT", 60*time.Second),
		MaxToolRounds:     getIntEnv("MAX_TOOL_ROUNDS", 4),

		// Language
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		// Embedding
		EmbedderType:     getEnv("EMBEDDER_TYPE", "clip"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		ClipServiceURL:   getEnv("CLIP_SERVICE_URL", "http://localhost:8090"),
		EmbeddingTimeout: getDurationEnv("EMBEDDING_TIMEOUT", 30*time.Second),

		// Catalog
		CatalogType:      getEnv("CATALOG_TYPE", "qdrant"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "bouquets"),
		CatalogTimeout:   getDurationEnv("CATALOG_TIMEOUT", 15*time.Second),
		SearchTopK:       getIntEnv("SEARCH_TOP_K", 3),

		// Payment
		ClickBaseURL:    getEnv("CLICK_BASE_URL", "https://my.click.uz/services/pay/"),
		ClickServiceID:  getEnv("CLICK_SERVICE_ID", ""),
		ClickMerchantID: getEnv("CLICK_MERCHANT_ID", ""),
		ClickReturnURL:  getEnv("CLICK_RETURN_URL", ""),

		// Sessions
		SessionIdleTTL:  getDurationEnv("SESSION_IDLE_TTL", 30*time.Minute),
		SessionMaxTurns: getIntEnv("SESSION_MAX_TURNS", 64),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// Ops server
		OpsPort: getEnv("OPS_PORT", "8080"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.EmbedderType != "openai" && c.EmbedderType != "clip" {
		return errors.New("EMBEDDER_TYPE must be \"openai\" or \"clip\"")
	}
	if c.CatalogType != "qdrant" && c.CatalogType != "memory" {
		return errors.New("CATALOG_TYPE must be \"qdrant\" or \"memory\"")
	}
	if c.ClickServiceID == "" || c.ClickMerchantID == "" || c.ClickReturnURL == "" {
		return errors.New("CLICK_SERVICE_ID, CLICK_MERCHANT_ID and CLICK_RETURN_URL are required")
	}
	if c.MaxToolRounds <= 0 {
		return errors.New("MAX_TOOL_ROUNDS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
