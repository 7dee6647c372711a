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

// Supported text generation providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	// Server config
	Server ServerConfig

	// LLM provider config
	LLM LLMConfig

	// outbound page fetch config
	Fetch FetchConfig

	// prompt sizes and caching
	Limits LimitsConfig

	// Logging config
	Log LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	Environment  string // development, staging, production
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// LLMConfig selects and configures the text generation backend.
type LLMConfig struct {
	Provider       string
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	GeminiAPIKey   string
	GeminiModel    string
	Temperature    float64
	CallTimeout    time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// FetchConfig holds settings for fetching target sites.
type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// LimitsConfig holds prompt size and cache settings.
type LimitsConfig struct {
	MaxPromptChars int
	CacheSize      int
	CacheTTL       time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// Load reads configuration from the environment. A .env file is loaded first
// when present; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	cfg := &Config{}

	cfg.Server = ServerConfig{
		Port:         getEnvOrDefault("SERVER_PORT", "8080"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second, &errs),
		WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 0, &errs),
		IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second, &errs),
		CORSOrigins:  strings.Fields(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	cfg.LLM = LLMConfig{
		Provider:       strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		Temperature:    getFloat("LLM_TEMPERATURE", 0.7, &errs),
		CallTimeout:    getDuration("LLM_CALL_TIMEOUT", 90*time.Second, &errs),
		MaxAttempts:    getInt("LLM_MAX_ATTEMPTS", 3, &errs),
		RetryBaseDelay: getDuration("LLM_RETRY_BASE_DELAY", 500*time.Millisecond, &errs),
	}

	cfg.Fetch = FetchConfig{
		Timeout:   getDuration("FETCH_TIMEOUT", 20*time.Second, &errs),
		UserAgent: getEnvOrDefault("FETCH_USER_AGENT", "Mozilla/5.0 (compatible; CROAnalyzer/1.0)"),
		MaxBytes:  int64(getInt("FETCH_MAX_BYTES", 5<<20, &errs)),
	}

	cfg.Limits = LimitsConfig{
		MaxPromptChars: getInt("MAX_PROMPT_CHARS", 60000, &errs),
		CacheSize:      getInt("ANALYSIS_CACHE_SIZE", 128, &errs),
		CacheTTL:       getDuration("ANALYSIS_CACHE_TTL", 15*time.Minute, &errs),
	}

	cfg.Log = LogConfig{
		Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration parsing failed:\n%w", errors.Join(errs...))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present and valid.
func (c *Config) validate() error {
	var errs []error

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai"))
		}
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when LLM_PROVIDER=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of: openai, gemini (got: %s)", c.LLM.Provider))
	}

	if c.LLM.MaxAttempts < 1 || c.LLM.MaxAttempts > 10 {
		errs = append(errs, errors.New("LLM_MAX_ATTEMPTS must be between 1 and 10"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, errors.New("LLM_TEMPERATURE must be between 0 and 2"))
	}
	if c.Limits.MaxPromptChars < 1000 {
		errs = append(errs, errors.New("MAX_PROMPT_CHARS must be at least 1000"))
	}
	if c.Limits.CacheSize < 0 {
		errs = append(errs, errors.New("ANALYSIS_CACHE_SIZE must not be negative"))
	}
	if c.Fetch.MaxBytes <= 0 {
		errs = append(errs, errors.New("FETCH_MAX_BYTES must be positive"))
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of: development, staging, production (got: %s)", c.Server.Environment))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}

	return nil
}

// getEnvOrDefault returns the env value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return f
}
