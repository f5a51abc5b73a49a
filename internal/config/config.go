package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`

	// Object storage
	StorageBackend    string `yaml:"storage_backend"`
	S3Endpoint        string `yaml:"s3_endpoint"`
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
	S3BucketName      string `yaml:"s3_bucket_name"`
	S3UseSSL          bool   `yaml:"s3_use_ssl"`

	// LLM providers
	GeminiAPIKey      string `yaml:"gemini_api_key"`
	GeminiModel       string `yaml:"gemini_model"`
	AnthropicAPIKey   string `yaml:"anthropic_api_key"`
	ClaudeModel       string `yaml:"claude_model"`
	PerplexityAPIKey  string `yaml:"perplexity_api_key"`
	PerplexityModel   string `yaml:"perplexity_model"`
	PerplexityBaseURL string `yaml:"perplexity_base_url"`

	// Provider used by each function
	AnalysisProvider string `yaml:"analysis_provider"`
	ChatProvider     string `yaml:"chat_provider"`
	PageProvider     string `yaml:"page_provider"`
	PersonaProvider  string `yaml:"persona_provider"`

	LLMMaxRetries int           `yaml:"llm_max_retries"`
	LLMTimeout    time.Duration `yaml:"llm_timeout"`

	// Upload limits
	MaxFileSize            int64 `yaml:"max_file_size"`
	ExtractBinaryDocuments bool  `yaml:"extract_binary_documents"`

	PageAnalysisInterval time.Duration `yaml:"page_analysis_interval"`

	// Match HTML documents in chat by visible text rather than markup.
	ChatMatchVisibleText bool `yaml:"chat_match_visible_text"`

	// Analysis job queue
	RedisURL          string        `yaml:"redis_url"`
	QueueSize         int           `yaml:"queue_size"`
	WorkerConcurrency int           `yaml:"worker_concurrency"`
	JobMaxAttempts    int           `yaml:"job_max_attempts"`
	JobRetryDelay     time.Duration `yaml:"job_retry_delay"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins).
func Load() (*Config, error) {
	cfg := defaults()

	path := getEnv("CONFIG_FILE", "")
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := mergeWithEnv(cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errs[0])
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:                 "8080",
		DatabaseURL:          "data/eia.db",
		LogLevel:             "info",
		StorageBackend:       "s3",
		S3Endpoint:           "localhost:9000",
		S3AccessKeyID:        "minioadmin",
		S3SecretAccessKey:    "minioadmin",
		S3BucketName:         "documents",
		GeminiModel:          "gemini-1.5-flash",
		ClaudeModel:          "claude-3-5-sonnet-20241022",
		PerplexityModel:      "sonar",
		PerplexityBaseURL:    "https://api.perplexity.ai",
		AnalysisProvider:     "gemini",
		ChatProvider:         "claude",
		PageProvider:         "gemini",
		PersonaProvider:      "gemini",
		LLMTimeout:           120 * time.Second,
		MaxFileSize:          500 * 1024 * 1024,
		PageAnalysisInterval: time.Second,
		QueueSize:            100,
		WorkerConcurrency:    2,
		JobMaxAttempts:       3,
		JobRetryDelay:        2 * time.Second,
	}
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

func mergeWithEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.StorageBackend = getEnv("STORAGE_BACKEND", cfg.StorageBackend)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", cfg.S3AccessKeyID)
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", cfg.S3SecretAccessKey)
	cfg.S3BucketName = getEnv("S3_BUCKET_NAME", cfg.S3BucketName)

	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.ClaudeModel = getEnv("CLAUDE_MODEL", cfg.ClaudeModel)
	cfg.PerplexityAPIKey = getEnv("PERPLEXITY_API_KEY", cfg.PerplexityAPIKey)
	cfg.PerplexityModel = getEnv("PERPLEXITY_MODEL", cfg.PerplexityModel)
	cfg.PerplexityBaseURL = getEnv("PERPLEXITY_BASE_URL", cfg.PerplexityBaseURL)

	cfg.AnalysisProvider = getEnv("ANALYSIS_PROVIDER", cfg.AnalysisProvider)
	cfg.ChatProvider = getEnv("CHAT_PROVIDER", cfg.ChatProvider)
	cfg.PageProvider = getEnv("PAGE_PROVIDER", cfg.PageProvider)
	cfg.PersonaProvider = getEnv("PERSONA_PROVIDER", cfg.PersonaProvider)

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)

	var err error
	if cfg.S3UseSSL, err = getEnvBool("S3_USE_SSL", cfg.S3UseSSL); err != nil {
		return err
	}
	if cfg.ExtractBinaryDocuments, err = getEnvBool("EXTRACT_BINARY_DOCUMENTS", cfg.ExtractBinaryDocuments); err != nil {
		return err
	}
	if cfg.ChatMatchVisibleText, err = getEnvBool("CHAT_MATCH_VISIBLE_TEXT", cfg.ChatMatchVisibleText); err != nil {
		return err
	}
	if cfg.LLMMaxRetries, err = getEnvInt("LLM_MAX_RETRIES", cfg.LLMMaxRetries); err != nil {
		return err
	}
	if cfg.QueueSize, err = getEnvInt("QUEUE_SIZE", cfg.QueueSize); err != nil {
		return err
	}
	if cfg.WorkerConcurrency, err = getEnvInt("WORKER_CONCURRENCY", cfg.WorkerConcurrency); err != nil {
		return err
	}
	if cfg.JobMaxAttempts, err = getEnvInt("JOB_MAX_ATTEMPTS", cfg.JobMaxAttempts); err != nil {
		return err
	}
	if cfg.LLMTimeout, err = getEnvDuration("LLM_TIMEOUT", cfg.LLMTimeout); err != nil {
		return err
	}
	if cfg.PageAnalysisInterval, err = getEnvDuration("PAGE_ANALYSIS_INTERVAL", cfg.PageAnalysisInterval); err != nil {
		return err
	}
	if cfg.JobRetryDelay, err = getEnvDuration("JOB_RETRY_DELAY", cfg.JobRetryDelay); err != nil {
		return err
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_FILE_SIZE: %w", err)
		}
		cfg.MaxFileSize = size
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
