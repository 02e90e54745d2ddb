package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	StoreDriver string

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	MongoURI      string
	MongoDatabase string

	RedisURL      string
	RedisPassword string
	CacheTTL      time.Duration

	JWTSecret      string
	AccessTokenTTL time.Duration

	FrontendURL    string
	AllowedOrigins []string

	LogLevel  string
	LogFormat string
	GinMode   string
}

// Production reports whether the server runs in gin release mode.
func (c *Config) Production() bool {
	return c.GinMode == "release"
}

func LoadConfig() *Config {
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")

	// Frontend URL first, then local dev, then any extras
	allowedOrigins := dedupe(append([]string{frontendURL, "http://localhost:5173"}, GetEnvAsList("ALLOWED_ORIGINS")...))

	storeDriver := strings.ToLower(GetEnv("STORE_DRIVER", DriverPostgres))
	switch storeDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		log.Printf("Unknown STORE_DRIVER %q, using default: %s", storeDriver, DriverPostgres)
		storeDriver = DriverPostgres
	}

	return &Config{
		Port:        GetEnv("PORT", "8080"),
		StoreDriver: storeDriver,

		DatabaseURL:          withSimpleProtocol(GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", ""))),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),

		MongoURI:      GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: GetEnv("MONGO_DATABASE", "game_records"),

		RedisURL:      GetEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		CacheTTL:      time.Duration(GetEnvAsInt("CACHE_TTL_SECONDS", 30)) * time.Second,

		JWTSecret:      GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		AccessTokenTTL: time.Duration(GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60*24)) * time.Minute,

		FrontendURL:    frontendURL,
		AllowedOrigins: allowedOrigins,

		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogFormat: GetEnv("LOG_FORMAT", "text"),
		GinMode:   GetEnv("GIN_MODE", "debug"),
	}
}

// withSimpleProtocol appends simple_protocol for PgBouncer compatibility (pgx driver).
func withSimpleProtocol(dbURL string) string {
	if dbURL == "" {
		return dbURL
	}
	u, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}
	q := u.Query()
	if q.Get("default_query_exec_mode") == "" {
		q.Set("default_query_exec_mode", "simple_protocol")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsList splits a comma separated variable, dropping blank entries.
func GetEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
