package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	DatabaseURL        string
	RedisAddr          string
	RedisPassword      string
	SessionCookieName  string
	SessionTTL         time.Duration
	SecureCookies      bool
	AutoMigrate        bool
	RateLimitPerMinute int
	RateLimitBurst     int
}

func Load() Config {
	port := os.Getenv("LMS_PORT")
	if port == "" {
		port = "8080"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	cookieName := os.Getenv("LMS_SESSION_COOKIE")
	if cookieName == "" {
		cookieName = "sid"
	}

	return Config{
		Port:               port,
		DatabaseURL:        os.Getenv("DB_DSN"),
		RedisAddr:          redisAddr,
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		SessionCookieName:  cookieName,
		SessionTTL:         time.Duration(readInt("LMS_SESSION_TTL_MIN", 24*60)) * time.Minute,
		SecureCookies:      os.Getenv("LMS_SECURE_COOKIES") == "true",
		AutoMigrate:        os.Getenv("LMS_AUTO_MIGRATE") == "true",
		RateLimitPerMinute: readInt("LMS_RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("LMS_RATE_LIMIT_BURST", 30),
	}
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
