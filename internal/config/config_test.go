package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
port: "9090"
database_url: "postgres://localhost:5432/eia"
storage_backend: "memory"
gemini_api_key: "file-key"
chat_provider: "gemini"
max_file_size: 1048576
page_analysis_interval: 250ms
worker_concurrency: 4
`
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0644))
	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://localhost:5432/eia", cfg.DatabaseURL)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "file-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini", cfg.ChatProvider)
	assert.Equal(t, int64(1048576), cfg.MaxFileSize)
	assert.Equal(t, 250*time.Millisecond, cfg.PageAnalysisInterval)
	assert.Equal(t, 4, cfg.WorkerConcurrency)

	// untouched keys keep their defaults
	assert.Equal(t, "gemini", cfg.AnalysisProvider)
	assert.Equal(t, 3, cfg.JobMaxAttempts)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("port: \"9090\"\ngemini_api_key: \"file-key\"\n"), 0644))

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("PORT", "7070")
	t.Setenv("EXTRACT_BINARY_DOCUMENTS", "true")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("CHAT_MATCH_VISIBLE_TEXT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.True(t, cfg.ExtractBinaryDocuments)
	assert.True(t, cfg.ChatMatchVisibleText)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
}

func TestLoadRejectsBadEnvValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("WORKER_CONCURRENCY", "many")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKER_CONCURRENCY")
}

func TestDefaultsUploadCeiling(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, int64(500*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, time.Second, cfg.PageAnalysisInterval)
	assert.False(t, cfg.ChatMatchVisibleText)
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		cfg := *defaults()
		cfg.GeminiAPIKey = "key"
		return cfg
	}

	tests := []struct {
		name          string
		mutate        func(*Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name: "missing llm keys",
			mutate: func(c *Config) {
				c.GeminiAPIKey = ""
			},
			errorMessages: []string{"llm: at least one of"},
		},
		{
			name: "unknown provider and bad storage",
			mutate: func(c *Config) {
				c.StorageBackend = "ftp"
				c.ChatProvider = "gpt"
			},
			errorMessages: []string{
				"storage_backend: unknown storage backend: ftp",
				"chat_provider: unknown provider: gpt",
			},
		},
		{
			name: "page provider without image input",
			mutate: func(c *Config) {
				c.PageProvider = "claude"
			},
			errorMessages: []string{"page_provider: provider claude cannot analyze page images"},
		},
		{
			name: "perplexity as page provider",
			mutate: func(c *Config) {
				c.AnalysisProvider = "perplexity"
				c.PageProvider = "perplexity"
			},
			errorMessages: []string{"page_provider: provider perplexity cannot analyze page images"},
		},
		{
			name: "bad limits",
			mutate: func(c *Config) {
				c.PerplexityBaseURL = "not a url"
				c.MaxFileSize = 0
				c.WorkerConcurrency = 0
			},
			errorMessages: []string{
				"perplexity_base_url: invalid Perplexity base URL",
				"max_file_size: max_file_size must be positive",
				"worker_concurrency: worker_concurrency must be positive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			errors := cfg.Validate()
			require.Len(t, errors, len(tt.errorMessages))
			for i, msg := range tt.errorMessages {
				assert.Contains(t, errors[i].Error(), msg)
			}
		})
	}
}
