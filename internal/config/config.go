package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"

	APIKeyEnv = "GEMINI_API_KEY"
)

type Config struct {
	Port            string
	Model           string
	Transport       string
	BaseURL         string
	Temperature     float32
	MaxOutputTokens int32
	UpstreamTimeout time.Duration
	MaxUploadBytes  int64
}

// LoadDotEnv loads a .env file outside production. A missing file only
// produces a warning; real deployments set variables directly.
func LoadDotEnv() {
	if os.Getenv("ENV") == "production" {
		return
	}

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("WARN: .env file not loaded, using system environment variables: %v", err)
		return
	}
	log.Printf("Loaded environment variables from .env")
}

// Load reads the server configuration from the environment. The API key is
// deliberately not part of it: see APIKey.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      strings.TrimPrefix(getEnv("PORT", "8080"), ":"),
		Model:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		Transport: strings.ToLower(getEnv("GEMINI_TRANSPORT", TransportREST)),
		BaseURL:   strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "/"),
	}

	if cfg.Transport != TransportREST && cfg.Transport != TransportSDK {
		return nil, fmt.Errorf("GEMINI_TRANSPORT must be %q or %q, got %q", TransportREST, TransportSDK, cfg.Transport)
	}

	temperature, err := strconv.ParseFloat(getEnv("GEMINI_TEMPERATURE", "0.2"), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_TEMPERATURE: %w", err)
	}
	cfg.Temperature = float32(temperature)

	maxTokens, err := strconv.ParseInt(getEnv("GEMINI_MAX_OUTPUT_TOKENS", "1024"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_MAX_OUTPUT_TOKENS: %w", err)
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("GEMINI_MAX_OUTPUT_TOKENS must be positive, got %d", maxTokens)
	}
	cfg.MaxOutputTokens = int32(maxTokens)

	cfg.UpstreamTimeout, err = time.ParseDuration(getEnv("UPSTREAM_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}

	cfg.MaxUploadBytes, err = strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "20971520"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	return cfg, nil
}

// APIKey reads the upstream credential on every call so that a missing key
// surfaces per request instead of blocking startup.
func APIKey() string {
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
