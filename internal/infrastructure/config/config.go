package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCORSOrigins are the local front-end origins allowed when
// CORS_ALLOWED_ORIGINS is unset.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:3001",
}

// Config holds all configuration for the KARA service.
type Config struct {
	HTTPPort int
	GRPCPort int

	ModelPath     string
	ModelRequired bool

	GeminiAPIKey  string
	GeminiAPIURL  string
	GeminiModel   string
	ChatTimeout   time.Duration
	ChatRateLimit float64

	CORSAllowedOrigins []string

	GRPCReflection  bool
	GRPCTLSCertFile string
	GRPCTLSKeyFile  string

	Environment    string
	LogLevel       string
	LogFormat      string
	TracingEnabled bool
	OTLPEndpoint   string
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults
// and validates it.
func Load() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		HTTPPort:           p.getEnvInt("HTTP_PORT", 8000),
		GRPCPort:           p.getEnvInt("GRPC_PORT", 9000),
		ModelPath:          getEnv("MODEL_PATH", "models/completion_model.json"),
		ModelRequired:      p.getEnvBool("MODEL_REQUIRED", true),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiAPIURL:       getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		ChatTimeout:        p.getEnvDuration("CHAT_TIMEOUT", 30*time.Second),
		ChatRateLimit:      p.getEnvFloat("CHAT_RATE_LIMIT", 5),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins),
		GRPCReflection:     p.getEnvBool("GRPC_REFLECTION", false),
		GRPCTLSCertFile:    getEnv("GRPC_TLS_CERT_FILE", ""),
		GRPCTLSKeyFile:     getEnv("GRPC_TLS_KEY_FILE", ""),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		TracingEnabled:     p.getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports out-of-range values.
func (c *Config) Validate() error {
	var errs []error
	for name, port := range map[string]int{"HTTP_PORT": c.HTTPPort, "GRPC_PORT": c.GRPCPort} {
		if port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s must be between 1 and 65535, got %d", name, port))
		}
	}
	if c.HTTPPort == c.GRPCPort {
		errs = append(errs, errors.New("HTTP_PORT and GRPC_PORT must differ"))
	}
	if c.ModelPath == "" {
		errs = append(errs, errors.New("MODEL_PATH must not be empty"))
	}
	if c.ChatTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_TIMEOUT must be positive, got %s", c.ChatTimeout))
	}
	if c.ChatRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_RATE_LIMIT must be positive, got %v", c.ChatRateLimit))
	}
	if (c.GRPCTLSCertFile == "") != (c.GRPCTLSKeyFile == "") {
		errs = append(errs, errors.New("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GeminiConfigured reports whether the chat relay has a credential.
func (c *Config) GeminiConfigured() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parser collects malformed values so Load can report all of them at once.
type parser struct {
	errs []error
}

func (p *parser) getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, value))
		return defaultValue
	}
	return n
}

func (p *parser) getEnvFloat(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, value))
		return defaultValue
	}
	return f
}

func (p *parser) getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, value))
		return defaultValue
	}
	return b
}

func (p *parser) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, value))
		return defaultValue
	}
	return d
}
