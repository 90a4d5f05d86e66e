package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings of the admin BFF and the seed CLI.
type Config struct {
	APIBaseURL  string
	APIToken    string
	ServerPort  int
	DatabaseURL string

	JWTSecretKey string
	LogLevel     slog.Level
	HTTPTimeout  time.Duration

	TeardownConcurrency    int
	TeardownPassphraseHash string
	CORSAllowedOrigins     []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads the configuration from the environment. A .env file in the working directory is
// loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiBaseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/")
	if apiBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	level, err := parseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	timeout := 15 * time.Second
	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q: must be a positive duration", raw)
		}
	}

	concurrency, err := intEnv("TEARDOWN_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("TEARDOWN_CONCURRENCY must be positive, got %d", concurrency)
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = splitList(raw)
	}

	cfg := &Config{
		APIBaseURL:             apiBaseURL,
		APIToken:               os.Getenv("API_TOKEN"),
		ServerPort:             port,
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		JWTSecretKey:           os.Getenv("JWT_SECRET_KEY"),
		LogLevel:               level,
		HTTPTimeout:            timeout,
		TeardownConcurrency:    concurrency,
		TeardownPassphraseHash: os.Getenv("TEARDOWN_PASSPHRASE_HASH"),
		CORSAllowedOrigins:     origins,
		R2AccountID:            os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:          os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:      os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:           os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:        os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", raw)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
