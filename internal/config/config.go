package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Browserless BrowserlessConfig
	Redis       RedisConfig
	Scraper     ScraperConfig
}

type ServerConfig struct {
	Port int
}

type BrowserlessConfig struct {
	APIKey   string
	Endpoint string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ScraperConfig struct {
	BaseURL     string
	LocationAPI string
	SearchAPI   string
	DefaultTime string
	SettleDelay time.Duration
	PacingDelay time.Duration
	SessionTTL  time.Duration
	MaxBulkDays int
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present. The Browserless API
// key has no default and must be supplied externally.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 3000),
		},
		Browserless: BrowserlessConfig{
			APIKey:   getEnv("BROWSERLESS_API_KEY", ""),
			Endpoint: getEnv("BROWSERLESS_ENDPOINT", "https://production-sfo.browserless.io/stealth/bql"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Scraper: ScraperConfig{
			BaseURL:     getEnv("ENJOYTRAVEL_BASE_URL", "https://www.enjoytravel.com/en/car-hire"),
			LocationAPI: getEnv("ENJOYTRAVEL_LOCATION_API", "https://www.enjoytravel.com/api/location/search-locations"),
			SearchAPI:   getEnv("ENJOYTRAVEL_SEARCH_API", "https://www.enjoytravel.com/api/search"),
			DefaultTime: getEnv("SCRAPER_DEFAULT_TIME", "12:00"),
			SettleDelay: getEnvDuration("SCRAPER_SETTLE_DELAY", 2*time.Second),
			PacingDelay: getEnvDuration("SCRAPER_PACING_DELAY", 1*time.Second),
			SessionTTL:  getEnvDuration("SESSION_TTL", time.Hour),
			MaxBulkDays: getEnvInt("SCRAPER_MAX_BULK_DAYS", 365),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Browserless.Endpoint == "" {
		return fmt.Errorf("browserless endpoint is required")
	}

	if c.Scraper.MaxBulkDays < 1 {
		return fmt.Errorf("max bulk days must be at least 1")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
