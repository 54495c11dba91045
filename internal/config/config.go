package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage modes
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory" // No external services; data is lost on restart
)

// Config holds the service configuration, read from the environment
type Config struct {
	Port        string
	Store       string
	MongoURI    string
	MongoDB     string
	RedisAddr   string
	SessionTTL  time.Duration
	JWTSecret   string
	Users       map[string]string // username -> password
	LogLevel    string
	LogFile     string
	CatalogFile string // Optional YAML catalog replacing the built-in one
	CORSOrigins string

	// Defaulted lists which security-sensitive keys fell back to built-in values
	Defaulted []string
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config using lookup in place of os.LookupEnv
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	getEnv := func(key, defaultVal string) string {
		if val, ok := lookup(key); ok && val != "" {
			return val
		}
		return defaultVal
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Store:       getEnv("STORE", StoreMongo),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "adaudit"),
		RedisAddr:   strings.TrimPrefix(getEnv("REDIS_URI", "localhost:6379"), "redis://"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		CatalogFile: getEnv("CATALOG_FILE", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	switch cfg.Store {
	case StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.Store)
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: %q", getEnv("SESSION_TTL", ""))
	}
	cfg.SessionTTL = ttl

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "super-secret-key-change-in-production"
		cfg.Defaulted = append(cfg.Defaulted, "JWT_SECRET")
	}

	users := getEnv("AUDIT_USERS", "")
	if users == "" {
		users = "admin:password123"
		cfg.Defaulted = append(cfg.Defaulted, "AUDIT_USERS")
	}
	if cfg.Users, err = parseUsers(users); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseUsers parses "alice:secret,bob:hunter2"
func parseUsers(s string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, pass, ok := strings.Cut(pair, ":")
		if !ok || name == "" || pass == "" {
			return nil, fmt.Errorf("invalid AUDIT_USERS entry %q, want user:password", pair)
		}
		users[name] = pass
	}
	if len(users) == 0 {
		return nil, errors.New("AUDIT_USERS has no users")
	}
	return users, nil
}
