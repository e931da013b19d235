package config

import (
	"fmt"
	"math"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Price     PriceConfig     `envconfig:"PRICE"`
	Nutrition NutritionConfig `envconfig:"NUTRITION"`
	News      NewsConfig      `envconfig:"NEWS"`
	Scoring   ScoringConfig   `envconfig:"SCORING"`
	TTS       TTSConfig       `envconfig:"TTS"`
	Session   SessionConfig   `envconfig:"SESSION"`
	Telegram  TelegramConfig  `envconfig:"TELEGRAM"`
	Logging   LoggingConfig   `envconfig:"LOGGING"`
}

// ServerConfig represents HTTP server parameters
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// PriceConfig represents the Google Shopping price adapter
type PriceConfig struct {
	SerpAPIKey string        `envconfig:"SERPAPI_KEY" required:"false"`
	Budget     time.Duration `envconfig:"PRICE_BUDGET" default:"8s"`
	CacheTTL   time.Duration `envconfig:"PRICE_CACHE_TTL" default:"5m"`
	MaxResults int           `envconfig:"PRICE_MAX_RESULTS" default:"5"`
}

// NutritionConfig represents the USDA FoodData Central adapter
type NutritionConfig struct {
	APIKey string        `envconfig:"USDA_API_KEY" required:"false"`
	Budget time.Duration `envconfig:"NUTRITION_BUDGET" default:"6s"`
}

// NewsConfig represents the news sentiment adapter
type NewsConfig struct {
	GNewsAPIKey  string        `envconfig:"GNEWS_API_KEY" required:"false"`
	Budget       time.Duration `envconfig:"NEWS_BUDGET" default:"6s"`
	LookbackDays int           `envconfig:"NEWS_LOOKBACK_DAYS" default:"60"`
	MaxArticles  int           `envconfig:"NEWS_MAX_ARTICLES" default:"5"`
}

// ScoringConfig represents aggregation policy. The weights and neutral
// default are policy knobs, not derived constants; defaults match the
// product decision of record.
type ScoringConfig struct {
	NutritionWeight float64 `envconfig:"SCORING_NUTRITION_WEIGHT" default:"0.4"`
	CarbonWeight    float64 `envconfig:"SCORING_CARBON_WEIGHT" default:"0.3"`
	SocialWeight    float64 `envconfig:"SCORING_SOCIAL_WEIGHT" default:"0.3"`
	NeutralScore    float64 `envconfig:"SCORING_NEUTRAL_SCORE" default:"5.0"`
}

// TTSConfig represents the speech synthesis gateway
type TTSConfig struct {
	APIKey   string        `envconfig:"ELEVENLABS_API_KEY" required:"false"`
	VoiceID  string        `envconfig:"ELEVENLABS_VOICE_ID" default:"pNInz6obpgDQGcFmaJgB"`
	Budget   time.Duration `envconfig:"TTS_BUDGET" default:"10s"`
	AssetDir string        `envconfig:"TTS_ASSET_DIR" default:"./assets"`
}

// SessionConfig represents live session behavior
type SessionConfig struct {
	GreetOnStart  bool `envconfig:"SESSION_GREET_ON_START" default:"true"`
	EventBuffer   int  `envconfig:"SESSION_EVENT_BUFFER" default:"16"`
	MaxSubscriber int  `envconfig:"SESSION_MAX_SUBSCRIBERS" default:"32"`
}

// TelegramConfig represents the optional Telegram notifier
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	total := c.Scoring.NutritionWeight + c.Scoring.CarbonWeight + c.Scoring.SocialWeight
	if math.Abs(total-1.0) > 0.01 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.2f", total)
	}
	if c.Scoring.NeutralScore < 0 || c.Scoring.NeutralScore > 10 {
		return fmt.Errorf("neutral score must be between 0 and 10")
	}

	if c.Price.Budget <= 0 || c.Nutrition.Budget <= 0 || c.News.Budget <= 0 {
		return fmt.Errorf("adapter budgets must be positive")
	}
	if c.News.LookbackDays < 1 {
		return fmt.Errorf("news lookback must be at least 1 day")
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat_id is required when bot token is set")
	}

	return nil
}

// HasTTS reports whether speech synthesis is configured
func (c *Config) HasTTS() bool {
	return c.TTS.APIKey != ""
}

// HasTelegram reports whether the Telegram notifier is configured
func (c *Config) HasTelegram() bool {
	return c.Telegram.BotToken != ""
}
