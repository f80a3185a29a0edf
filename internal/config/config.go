package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// RSS settings
	FeedsConfigPath   string
	MaxEntriesPerFeed int
	MaxArticles       int
	MinContentLength  int // below this, the RSS body is considered a teaser and the page is scraped

	// Cache settings
	CacheDir string
	CacheTTL time.Duration

	// HTTP settings
	RequestTimeout    time.Duration
	ImageCheckTimeout time.Duration
	CheckImageAccess  bool
	RetryAttempts     int
	RetryDelay        time.Duration

	// Gemini settings
	GeminiAPIKey         string
	GeminiModel          string
	MaxSentimentRequests int           // per day, 0 = unlimited
	SentimentDelay       time.Duration // pause between sentiment calls

	// TTS settings
	TTSDir      string
	TTSLanguage string

	// Store settings
	StorePath     string
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// Server settings
	ServerAddr     string
	WarmupSchedule string

	// App settings
	Debug bool
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml")
	v.SetDefault("MAX_ENTRIES_PER_FEED", 20)
	v.SetDefault("MAX_ARTICLES", 50)
	v.SetDefault("MIN_CONTENT_LENGTH", 200)
	v.SetDefault("CACHE_DIR", "cache/rss_cache")
	v.SetDefault("CACHE_TTL_HOURS", 24)
	v.SetDefault("REQUEST_TIMEOUT", "20s")
	v.SetDefault("IMAGE_CHECK_TIMEOUT", "10s")
	v.SetDefault("CHECK_IMAGE_ACCESS", false)
	v.SetDefault("RETRY_ATTEMPTS", 3)
	v.SetDefault("RETRY_DELAY", "5s")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("MAX_SENTIMENT_REQUESTS", 0)
	v.SetDefault("SENTIMENT_DELAY", "1500ms")
	v.SetDefault("TTS_DIR", "cache/audio")
	v.SetDefault("TTS_LANGUAGE", "en")
	v.SetDefault("STORE_PATH", "personatracker.db")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("WARMUP_SCHEDULE", "0 */6 * * *")
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		FeedsConfigPath:      v.GetString("FEEDS_CONFIG_PATH"),
		MaxEntriesPerFeed:    v.GetInt("MAX_ENTRIES_PER_FEED"),
		MaxArticles:          v.GetInt("MAX_ARTICLES"),
		MinContentLength:     v.GetInt("MIN_CONTENT_LENGTH"),
		CacheDir:             v.GetString("CACHE_DIR"),
		CacheTTL:             time.Duration(v.GetInt("CACHE_TTL_HOURS")) * time.Hour,
		RequestTimeout:       v.GetDuration("REQUEST_TIMEOUT"),
		ImageCheckTimeout:    v.GetDuration("IMAGE_CHECK_TIMEOUT"),
		CheckImageAccess:     v.GetBool("CHECK_IMAGE_ACCESS"),
		RetryAttempts:        v.GetInt("RETRY_ATTEMPTS"),
		RetryDelay:           v.GetDuration("RETRY_DELAY"),
		GeminiAPIKey:         v.GetString("GEMINI_API_KEY"),
		GeminiModel:          v.GetString("GEMINI_MODEL"),
		MaxSentimentRequests: v.GetInt("MAX_SENTIMENT_REQUESTS"),
		SentimentDelay:       v.GetDuration("SENTIMENT_DELAY"),
		TTSDir:               v.GetString("TTS_DIR"),
		TTSLanguage:          v.GetString("TTS_LANGUAGE"),
		StorePath:            v.GetString("STORE_PATH"),
		AdminUsername:        v.GetString("ADMIN_USERNAME"),
		AdminEmail:           v.GetString("ADMIN_EMAIL"),
		AdminPassword:        v.GetString("ADMIN_PASSWORD"),
		ServerAddr:           v.GetString("SERVER_ADDR"),
		WarmupSchedule:       v.GetString("WARMUP_SCHEDULE"),
		Debug:                v.GetBool("DEBUG"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxEntriesPerFeed <= 0 {
		return fmt.Errorf("MAX_ENTRIES_PER_FEED must be positive")
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_HOURS must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// RequireGemini checks the settings needed for sentiment analysis and
// summarization. The aggregation pipeline itself works without them.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for analysis")
	}
	return nil
}
