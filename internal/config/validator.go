package config

import (
	"fmt"
	"net/url"
)

var knownProviders = map[string]bool{
	"gemini":     true,
	"claude":     true,
	"perplexity": true,
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Port == "" {
		errors = append(errors, ValidationError{Field: "port", Message: "port is required"})
	}

	if c.DatabaseURL == "" {
		errors = append(errors, ValidationError{Field: "database_url", Message: "database URL is required"})
	}

	switch c.StorageBackend {
	case "s3":
		if c.S3Endpoint == "" || c.S3BucketName == "" {
			errors = append(errors, ValidationError{
				Field:   "s3_endpoint",
				Message: "S3 endpoint and bucket are required for the s3 storage backend",
			})
		}
	case "memory":
	default:
		errors = append(errors, ValidationError{
			Field:   "storage_backend",
			Message: fmt.Sprintf("unknown storage backend: %s", c.StorageBackend),
		})
	}

	if c.GeminiAPIKey == "" && c.AnthropicAPIKey == "" && c.PerplexityAPIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "llm",
			Message: "at least one of GEMINI_API_KEY, ANTHROPIC_API_KEY or PERPLEXITY_API_KEY is required",
		})
	}

	providers := []struct {
		field string
		name  string
	}{
		{"analysis_provider", c.AnalysisProvider},
		{"chat_provider", c.ChatProvider},
		{"page_provider", c.PageProvider},
		{"persona_provider", c.PersonaProvider},
	}
	for _, p := range providers {
		if !knownProviders[p.name] {
			errors = append(errors, ValidationError{
				Field:   p.field,
				Message: fmt.Sprintf("unknown provider: %s", p.name),
			})
		}
	}

	// only Gemini takes page images
	if knownProviders[c.PageProvider] && c.PageProvider != "gemini" {
		errors = append(errors, ValidationError{
			Field:   "page_provider",
			Message: fmt.Sprintf("provider %s cannot analyze page images; use gemini", c.PageProvider),
		})
	}

	if c.PerplexityBaseURL != "" {
		if u, err := url.Parse(c.PerplexityBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "perplexity_base_url",
				Message: "invalid Perplexity base URL",
			})
		}
	}

	if c.LLMMaxRetries < 0 {
		errors = append(errors, ValidationError{Field: "llm_max_retries", Message: "llm_max_retries cannot be negative"})
	}

	if c.MaxFileSize <= 0 {
		errors = append(errors, ValidationError{Field: "max_file_size", Message: "max_file_size must be positive"})
	}

	if c.PageAnalysisInterval < 0 {
		errors = append(errors, ValidationError{Field: "page_analysis_interval", Message: "page_analysis_interval cannot be negative"})
	}

	if c.RedisURL == "" && c.QueueSize < 1 {
		errors = append(errors, ValidationError{Field: "queue_size", Message: "queue_size must be positive"})
	}

	if c.WorkerConcurrency < 1 {
		errors = append(errors, ValidationError{Field: "worker_concurrency", Message: "worker_concurrency must be positive"})
	}

	if c.JobMaxAttempts < 1 {
		errors = append(errors, ValidationError{Field: "job_max_attempts", Message: "job_max_attempts must be positive"})
	}

	return errors
}
