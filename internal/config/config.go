package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// WordPress source
	WordPressURL string

	// Payload target
	PayloadURL            string
	PayloadAPIKey         string
	PayloadAuthCollection string

	PostsCollection      string
	PagesCollection      string
	MediaCollection      string
	CategoriesCollection string

	// Auth for the serve endpoint. Empty disables auth.
	ServerAPIKey string

	// Outbound calls
	HTTPTimeout time.Duration

	// Request body limit for the serve endpoint
	MaxBodyBytes int64

	// Optional YAML overrides for sanitizer and page rules
	RulesFile string

	LogLevel  string
	LogFormat string

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		WordPressURL: os.Getenv("WORDPRESS_GRAPHQL_URL"),

		PayloadURL:            envOr("PAYLOAD_URL", "http://localhost:3000"),
		PayloadAPIKey:         os.Getenv("PAYLOAD_API_KEY"),
		PayloadAuthCollection: envOr("PAYLOAD_AUTH_COLLECTION", "users"),

		PostsCollection:      envOr("POSTS_COLLECTION", "posts"),
		PagesCollection:      envOr("PAGES_COLLECTION", "pages"),
		MediaCollection:      envOr("MEDIA_COLLECTION", "media"),
		CategoriesCollection: envOr("CATEGORIES_COLLECTION", "categories"),

		ServerAPIKey: os.Getenv("SERVER_API_KEY"),

		HTTPTimeout: envDuration("HTTP_TIMEOUT", 30*time.Second),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 10485760), // 10MB

		RulesFile: os.Getenv("RULES_FILE"),

		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10485760
	}

	return cfg
}

// Validate checks settings every command needs.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("json", "text")),
	)
}

// ValidateMigrate checks the settings a migration run needs on top of
// Validate.
func (c Config) ValidateMigrate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	err := validation.ValidateStruct(&c,
		validation.Field(&c.WordPressURL, validation.Required, is.URL),
		validation.Field(&c.PayloadURL, validation.Required, is.URL),
		validation.Field(&c.PayloadAPIKey, validation.Required),
		validation.Field(&c.PayloadAuthCollection, validation.Required),
		validation.Field(&c.PostsCollection, validation.Required),
		validation.Field(&c.PagesCollection, validation.Required),
		validation.Field(&c.MediaCollection, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("migration config: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
