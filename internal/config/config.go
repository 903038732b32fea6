package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	JWTSecret               string
	CORSOrigins             []string
	RateLimitRPM            int
	MutationRateLimitRPM    int
	UploadRoot              string
	CleanupTimeout          time.Duration
	PublicCacheTTL          time.Duration
	OrphanSweepSchedule     string
	OrphanSweepDryRun       bool
	LogLevel                string
	LogFormat               string
	TracingExporter         string
	TracingOTLPEndpoint     string
	TracingSampleRate       float64
	DocsPath                string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 2)),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 100),
		MutationRateLimitRPM:    getInt("MUTATION_RATE_LIMIT_RPM", 30),
		UploadRoot:              getEnv("UPLOAD_ROOT", "./uploads"),
		CleanupTimeout:          getDuration("CLEANUP_TIMEOUT", 5*time.Second),
		PublicCacheTTL:          getDuration("PUBLIC_CACHE_TTL", time.Minute),
		OrphanSweepSchedule:     strings.TrimSpace(os.Getenv("ORPHAN_SWEEP_SCHEDULE")),
		OrphanSweepDryRun:       getBool("ORPHAN_SWEEP_DRY_RUN", false),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "pretty"),
		TracingExporter:         getEnv("TRACING_EXPORTER", "none"),
		TracingOTLPEndpoint:     getEnv("TRACING_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate:       getFloat("TRACING_SAMPLE_RATE", 1.0),
		DocsPath:                getEnv("DOCS_PATH", "./docs/openapi.yaml"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadForCLI reads the same environment but only requires a database.
func LoadForCLI() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 2)),
		DBMinConns:     0,
		UploadRoot:     getEnv("UPLOAD_ROOT", "./uploads"),
		CleanupTimeout: getDuration("CLEANUP_TIMEOUT", 5*time.Second),
		LogLevel:       getEnv("LOG_LEVEL", "warn"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}

	if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if strings.TrimSpace(c.UploadRoot) == "" {
		return fmt.Errorf("UPLOAD_ROOT cannot be empty")
	}

	if c.CleanupTimeout <= 0 {
		return fmt.Errorf("CLEANUP_TIMEOUT must be positive")
	}

	if c.CleanupTimeout >= c.RequestTimeout {
		return fmt.Errorf("CLEANUP_TIMEOUT must be shorter than REQUEST_TIMEOUT")
	}

	switch strings.ToLower(c.LogFormat) {
	case "pretty", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be pretty or json")
	}

	switch strings.ToLower(c.TracingExporter) {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("TRACING_EXPORTER must be none, stdout or otlp")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
