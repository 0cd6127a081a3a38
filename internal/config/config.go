package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	TCPAddr      string        // TCP_ADDR, line-protocol listener
	HTTPAddr     string        // HTTP_ADDR, fiber app (health, lobby list, /ws)
	WordsFile    string        // WORDS_FILE, empty means embedded defaults
	RoundTimeout time.Duration // ROUND_SECONDS
}

// Load reads .env if present, then the environment, filling in defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		TCPAddr:      getEnv("TCP_ADDR", ":12345"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":3000"),
		WordsFile:    os.Getenv("WORDS_FILE"),
		RoundTimeout: time.Duration(getEnvInt("ROUND_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
