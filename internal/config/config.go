// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config carries the service settings resolved from the environment.
type Config struct {
	HTTPAddr      string
	TurnTimeLimit time.Duration
	RevealDelay   time.Duration
}

// LoadEnv loads ./.env when present. Missing files are fine; production
// environments inject variables directly.
func LoadEnv() {
	if err := godotenv.Load("./.env"); err != nil {
		log.Info("no .env file found, using process environment")
		return
	}
	log.Info(".env file loaded")
}

// Logging configures logrus from LOG_LEVEL.
func Logging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Load resolves the full service configuration.
func Load() Config {
	return Config{
		HTTPAddr:      ":" + getenv("ARENA_SERVICE_PORT", "8080"),
		TurnTimeLimit: durationEnv("TURN_TIME_LIMIT_SEC", 30) * time.Second,
		RevealDelay:   durationEnv("REVEAL_DELAY_SEC", 2) * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(fallback)
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warnf("invalid %s=%q, using %d", key, v, fallback)
		return time.Duration(fallback)
	}
	return time.Duration(n)
}
