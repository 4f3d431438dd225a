package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Game     GameConfig
	Analyzer AnalyzerConfig
	Logging  LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Host string
	Env  string // "development" or "production"
}

// GameConfig holds game-related configuration
type GameConfig struct {
	StartingWord        string
	SuccessDelay        time.Duration
	FailureDelay        time.Duration
	MaxSessions         int
	StaleSessionTimeout time.Duration
}

// AnalyzerConfig holds morphological analyzer configuration
type AnalyzerConfig struct {
	Mode string // "normal", "search" or "extended"
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		Game: GameConfig{
			StartingWord:        getEnv("STARTING_WORD", "しりとり"),
			SuccessDelay:        getEnvMillis("SUCCESS_DELAY_MS", 1500),
			FailureDelay:        getEnvMillis("FAILURE_DELAY_MS", 3000),
			MaxSessions:         getEnvInt("MAX_SESSIONS", 64),
			StaleSessionTimeout: time.Duration(getEnvInt("STALE_SESSION_MINUTES", 120)) * time.Minute,
		},
		Analyzer: AnalyzerConfig{
			Mode: getEnv("ANALYZER_MODE", "normal"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvMillis returns an environment variable in milliseconds as a duration
func getEnvMillis(key string, defaultValue int) time.Duration {
	ms := getEnvInt(key, defaultValue)
	if ms < 0 {
		ms = defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
