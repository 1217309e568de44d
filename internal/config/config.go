package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`
	WebhookEvents     []string      `env:"WEBHOOK_EVENTS" envDefault:"newIncident,new-incident"`

	// Live Updates Config
	LiveUpdates LiveUpdatesConfig

	// Rate Limit Config
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"3.33"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"200"`

	// WebSocket Config
	WSAllowedOrigins []string `env:"WS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LiveUpdatesConfig - параметры симулятора живых обновлений
type LiveUpdatesConfig struct {
	Enabled          bool          `env:"LIVE_UPDATES_ENABLED" envDefault:"true"`
	Interval         time.Duration `env:"LIVE_UPDATES_INTERVAL" envDefault:"15s"`
	WorkingSetSize   int           `env:"LIVE_UPDATES_WORKING_SET" envDefault:"5"`
	SpawnProbability float64       `env:"LIVE_UPDATES_SPAWN_PROBABILITY" envDefault:"0.10"`
	TickTimeout      time.Duration `env:"LIVE_UPDATES_TICK_TIMEOUT" envDefault:"10s"`
}

// DefaultLiveUpdatesConfig возвращает значения по умолчанию для симулятора
func DefaultLiveUpdatesConfig() LiveUpdatesConfig {
	return LiveUpdatesConfig{
		Enabled:          true,
		Interval:         15 * time.Second,
		WorkingSetSize:   5,
		SpawnProbability: 0.10,
		TickTimeout:      10 * time.Second,
	}
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	defaults := DefaultLiveUpdatesConfig()
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		WebhookEvents:     getEnvAsSlice("WEBHOOK_EVENTS", []string{"newIncident", "new-incident"}),
		LiveUpdates: LiveUpdatesConfig{
			Enabled:          getEnvAsBool("LIVE_UPDATES_ENABLED", defaults.Enabled),
			Interval:         getEnvAsDuration("LIVE_UPDATES_INTERVAL", defaults.Interval),
			WorkingSetSize:   getEnvAsInt("LIVE_UPDATES_WORKING_SET", defaults.WorkingSetSize),
			SpawnProbability: getEnvAsFloat("LIVE_UPDATES_SPAWN_PROBABILITY", defaults.SpawnProbability),
			TickTimeout:      getEnvAsDuration("LIVE_UPDATES_TICK_TIMEOUT", defaults.TickTimeout),
		},
		RateLimitRPS:     getEnvAsFloat("RATE_LIMIT_RPS", 200.0/60.0),
		RateLimitBurst:   getEnvAsInt("RATE_LIMIT_BURST", 200),
		WSAllowedOrigins: getEnvAsSlice("WS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		APIKeys:          getEnvAsSlice("API_KEYS", nil),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if err := cfg.LiveUpdates.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет параметры симулятора
func (c LiveUpdatesConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("LIVE_UPDATES_INTERVAL must be positive, got %s", c.Interval)
	}
	if c.WorkingSetSize <= 0 {
		return fmt.Errorf("LIVE_UPDATES_WORKING_SET must be positive, got %d", c.WorkingSetSize)
	}
	if c.SpawnProbability < 0 || c.SpawnProbability > 1 {
		return fmt.Errorf("LIVE_UPDATES_SPAWN_PROBABILITY must be within [0, 1], got %v", c.SpawnProbability)
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsSlice разбирает список через запятую
func getEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
