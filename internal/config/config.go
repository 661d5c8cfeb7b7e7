package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	ImageStoreRedis    = "redis"
	ImageStorePostgres = "postgres"
)

type Config struct {
	HTTP     HTTPConfig
	Auth     AuthConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Images   ImagesConfig
	LogLevel string
}

type HTTPConfig struct {
	Addr         string
	AllowOrigins []string
}

type AuthConfig struct {
	JWTSecret      string
	JWTAlgorithm   string
	JWTTTL         string
	PasswordScheme string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

type ImagesConfig struct {
	Store string
}

func Load() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:         getenv("HTTP_ADDR", ":8080"),
			AllowOrigins: splitList(getenv("CORS_ALLOW_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			JWTAlgorithm:   getenv("JWT_ALGORITHM", "HS256"),
			JWTTTL:         getenv("JWT_TTL", "24h"),
			PasswordScheme: getenv("PASSWORD_SCHEME", "sha256"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Username: os.Getenv("REDIS_USERNAME"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Images: ImagesConfig{
			Store: getenv("IMAGE_STORE", ImageStoreRedis),
		},
		LogLevel: getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
