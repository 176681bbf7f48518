// Package config содержит загрузку и валидацию конфигурации.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config представляет конфигурацию приложения
type Config struct {
	// Telegram
	BotToken string

	// Database
	DatabaseURL string

	// Spotify
	SpotifyClientID     string
	SpotifyClientSecret string

	// Lyrics
	LyricsBaseURL string

	// Кэш скачанных треков
	CacheDir string

	// Playback
	MaxQueueSize   int
	MaxHistorySize int
	DefaultVolume  int
	AutoplayDelay  time.Duration
	IdleLeaveDelay time.Duration

	// Voting
	VoteExpiry    time.Duration
	VoteThreshold float64

	// Health
	HealthPort         string
	HealthCheckEnabled bool

	// Logging
	LogLevel string

	// App Data Directory
	AppDataDir string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	if err := godotenv.Load(); err != nil {
		// Игнорируем ошибку если файл не найден
	}

	config := &Config{
		BotToken:            getEnv("BOT_TOKEN", ""),
		DatabaseURL:         getEnv("DB_DSN", ""),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		LyricsBaseURL:       getEnv("LYRICS_BASE_URL", "https://genius.com"),
		CacheDir:            getEnv("CACHE_DIR", "cache"),
		MaxQueueSize:        getEnvInt("MAX_QUEUE_SIZE", 100),
		MaxHistorySize:      getEnvInt("MAX_HISTORY_SIZE", 50),
		DefaultVolume:       getEnvInt("DEFAULT_VOLUME", 100),
		AutoplayDelay:       getEnvDuration("AUTOPLAY_DELAY", 1*time.Second),
		IdleLeaveDelay:      getEnvDuration("IDLE_LEAVE_DELAY", 10*time.Second),
		VoteExpiry:          getEnvDuration("VOTE_EXPIRY", 60*time.Second),
		VoteThreshold:       getEnvFloat("VOTE_THRESHOLD", 0.5),
		HealthPort:          getEnv("HEALTH_PORT", "8080"),
		HealthCheckEnabled:  getEnvBool("HEALTH_CHECK_ENABLED", true),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AppDataDir:          getEnv("APP_DATA_DIR", "./data"),
	}

	// Валидация обязательных полей
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	if c.SpotifyClientID == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID is required")
	}

	if c.SpotifyClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_SECRET is required")
	}

	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("MAX_QUEUE_SIZE must be positive")
	}

	if c.MaxHistorySize <= 0 {
		return fmt.Errorf("MAX_HISTORY_SIZE must be positive")
	}

	if c.DefaultVolume < 0 || c.DefaultVolume > 200 {
		return fmt.Errorf("DEFAULT_VOLUME must be between 0 and 200")
	}

	if c.VoteThreshold <= 0 || c.VoteThreshold > 1 {
		return fmt.Errorf("VOTE_THRESHOLD must be in (0, 1]")
	}

	return nil
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как time.Duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
