package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by database.Open
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Chat     ChatConfig
	Requests RequestsConfig
	Stats    StatsConfig
}

type ServerConfig struct {
	Port          string
	GinMode       string
	Environment   string
	LogFile       string
	PublicBaseURL string
}

type StoreConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string

	MongoURI      string
	MongoDatabase string
}

type RedisConfig struct {
	URL string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ChatConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type RequestsConfig struct {
	// AllowClosedEdits lets updateBloodRequest modify closed requests
	AllowClosedEdits bool
}

type StatsConfig struct {
	Schedule string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			GinMode:       getEnv("GIN_MODE", "debug"),
			Environment:   getEnv("ENVIRONMENT", "local"),
			LogFile:       getEnv("LOG_FILE", ""),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", DriverMySQL)),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", ""),
			User:          getEnv("DB_USER", ""),
			Password:      getEnv("DB_PASSWORD", ""),
			Database:      getEnv("DB_NAME", ""),
			SSLMode:       getEnv("DB_SSL_MODE", "disable"),
			MongoURI:      getEnv("MONGODB_URI", ""),
			MongoDatabase: getEnv("MONGODB_DATABASE", "blood_requests"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:9002")),
		},
		Chat: ChatConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash-001"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Timeout: parseDuration(getEnv("CHAT_TIMEOUT", "30s"), 30*time.Second),
		},
		Requests: RequestsConfig{
			AllowClosedEdits: parseBool(getEnv("REQUESTS_ALLOW_CLOSED_EDITS", "false")),
		},
		Stats: StatsConfig{
			Schedule: getEnv("STATS_SCHEDULE", "0 * * * * *"),
		},
	}

	if config.Store.Port == "" {
		config.Store.Port = defaultPort(config.Store.Driver)
	}

	return config
}

// StoreConfigured reports whether enough settings exist to open the store.
// When it returns false the server still starts, but every operation fails
// with a uniform "database not initialized" error.
func (c *Config) StoreConfigured() bool {
	switch c.Store.Driver {
	case DriverMemory:
		return true
	case DriverMongoDB:
		return c.Store.MongoURI != "" && c.Store.MongoDatabase != ""
	case DriverMySQL, DriverPostgres:
		return c.Store.Host != "" && c.Store.User != "" && c.Store.Database != ""
	default:
		return false
	}
}

// IsRelease reports whether gin runs in release mode
func (c *Config) IsRelease() bool {
	return c.Server.GinMode == "release"
}

func defaultPort(driver string) string {
	if driver == DriverPostgres {
		return "5432"
	}
	return "3306"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Warning: Invalid duration format '%s', using default\n", s)
		return fallback
	}
	return duration
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
