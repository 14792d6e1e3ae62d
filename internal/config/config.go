package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gochart/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	LLM      LLMConfig
	Pipeline PipelineConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// LLMConfig holds completion service settings
type LLMConfig struct {
	Model            string
	APIKey           string
	BaseURL          string
	MaxTokens        int
	Temperature      float64
	Timeout          time.Duration
	TransportRetries int
	RetryBaseDelay   time.Duration
}

// PipelineConfig holds axis resolution and chart shaping settings
type PipelineConfig struct {
	TargetTokenLimit int
	IndustryDomain   string
	ModuleIDs        map[string]string
	TableRowLimit    int
	PromptsDir       string
	ContentAttempts  int
}

// LoggingConfig holds the feedback/logging service settings
type LoggingConfig struct {
	URL               string
	Timeout           time.Duration
	FeedbackCacheSize int
	FeedbackCacheTTL  time.Duration
}

// DatabaseConfig holds the optional target database connection
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port              string
	GinMode           string
	MaxConcurrentRuns int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	llmConfig, err := loadLLMConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load LLM configuration")
	}
	config.LLM = *llmConfig

	pipelineConfig, err := loadPipelineConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pipeline configuration")
	}
	config.Pipeline = *pipelineConfig

	config.Logging = *loadLoggingConfig()
	config.Database = DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")}
	config.Server = *loadServerConfig()

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadLLMConfig() (*LLMConfig, error) {
	model := strings.TrimSpace(os.Getenv("LLM_MODEL"))
	if model == "" {
		return nil, errors.ConfigInvalid("LLM_MODEL is required")
	}

	return &LLMConfig{
		Model:            model,
		APIKey:           getEnvOrDefault("LLM_API_KEY", ""),
		BaseURL:          getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
		MaxTokens:        getEnvIntOrDefault("LLM_MAX_TOKENS", 1024),
		Temperature:      getEnvFloatOrDefault("LLM_TEMPERATURE", 0.0),
		Timeout:          getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
		TransportRetries: getEnvIntOrDefault("LLM_TRANSPORT_RETRIES", 2),
		RetryBaseDelay:   getEnvDurationOrDefault("LLM_RETRY_BASE_DELAY", 500*time.Millisecond),
	}, nil
}

func loadPipelineConfig() (*PipelineConfig, error) {
	raw := strings.TrimSpace(os.Getenv("TARGET_TOKEN_LIMIT"))
	if raw == "" {
		return nil, errors.ConfigInvalid("TARGET_TOKEN_LIMIT is required")
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return nil, errors.ConfigInvalid("TARGET_TOKEN_LIMIT must be a positive integer, got " + strconv.Quote(raw))
	}

	moduleIDs, err := ParseModuleIDs(os.Getenv("MODULE_IDS"))
	if err != nil {
		return nil, err
	}

	return &PipelineConfig{
		TargetTokenLimit: limit,
		IndustryDomain:   getEnvOrDefault("INDUSTRY_DOMAIN", "general business"),
		ModuleIDs:        moduleIDs,
		TableRowLimit:    getEnvIntOrDefault("TABLE_ROW_LIMIT", 100),
		PromptsDir:       getEnvOrDefault("PROMPTS_DIR", ""),
		ContentAttempts:  getEnvIntOrDefault("AXIS_CONTENT_ATTEMPTS", 3),
	}, nil
}

func loadLoggingConfig() *LoggingConfig {
	url := getEnvOrDefault("LOGGING_URL", "")
	if url != "" && !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return &LoggingConfig{
		URL:               url,
		Timeout:           getEnvDurationOrDefault("LOGGING_TIMEOUT", 10*time.Second),
		FeedbackCacheSize: getEnvIntOrDefault("FEEDBACK_CACHE_SIZE", 256),
		FeedbackCacheTTL:  getEnvDurationOrDefault("FEEDBACK_CACHE_TTL", 5*time.Minute),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:              getEnvOrDefault("PORT", "8080"),
		GinMode:           getEnvOrDefault("GIN_MODE", "release"),
		MaxConcurrentRuns: int64(getEnvIntOrDefault("MAX_CONCURRENT_RUNS", 4)),
	}
}

func validateConfig(config *Config) error {
	if config.Pipeline.TargetTokenLimit <= 0 {
		return errors.ConfigInvalid("target token limit must be positive")
	}
	if config.Pipeline.ContentAttempts <= 0 {
		return errors.ConfigInvalid("AXIS_CONTENT_ATTEMPTS must be positive")
	}
	if config.LLM.MaxTokens <= 0 {
		return errors.ConfigInvalid("LLM_MAX_TOKENS must be positive")
	}
	if config.Server.MaxConcurrentRuns <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_RUNS must be positive")
	}
	return nil
}

// ParseModuleIDs reads "name=id,name=id" into a map
func ParseModuleIDs(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, id, ok := strings.Cut(pair, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			return nil, errors.ConfigInvalid("MODULE_IDS entry must be name=id, got " + strconv.Quote(pair))
		}
		out[name] = id
	}
	return out, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
