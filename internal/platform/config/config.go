package config

import (
	"os"
	"time"
)

// Server captures process-wide configuration.
type Server struct {
	Addr          string
	PostgresDSN   string
	JWTSigningKey string
	VerifyBaseURL string
	Redis         RedisConfig
}

// RedisConfig holds connection settings for the optional verification-code cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TRAMITA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("TRAMITA_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	verifyBaseURL := os.Getenv("TRAMITA_VERIFY_BASE_URL")
	if verifyBaseURL == "" {
		verifyBaseURL = "http://localhost:8080/verify"
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("TRAMITA_POSTGRES_DSN"),
		JWTSigningKey: jwtSigningKey,
		VerifyBaseURL: verifyBaseURL,
		Redis: RedisConfig{
			URL:          os.Getenv("TRAMITA_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}
