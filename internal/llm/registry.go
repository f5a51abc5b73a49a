package llm

import (
	"context"
	"fmt"

	"github.com/BerylCAtieno/eia-document-api/internal/config"
	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	ProviderGemini     = "gemini"
	ProviderClaude     = "claude"
	ProviderPerplexity = "perplexity"
)

// fallbackOrder is used when the requested provider has no API key.
var fallbackOrder = []string{ProviderGemini, ProviderClaude, ProviderPerplexity}

// imageProviders accept an image part alongside the prompt. The anthropic
// and OpenAI-compatible adapters reject or drop binary parts.
var imageProviders = map[string]bool{
	ProviderGemini: true,
}

// AcceptsImages reports whether GenerateWithImage works for the provider.
func AcceptsImages(provider string) bool {
	return imageProviders[provider]
}

// Registry holds one Client per configured provider.
type Registry struct {
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// NewRegistryFromConfig builds a client for every provider that has an API key.
func NewRegistryFromConfig(ctx context.Context, cfg *config.Config, logger *utils.Logger, m *metrics.Metrics) (*Registry, error) {
	r := NewRegistry()

	options := func(provider string) Options {
		return Options{
			Provider:   provider,
			MaxRetries: cfg.LLMMaxRetries,
			Timeout:    cfg.LLMTimeout,
		}
	}

	if cfg.GeminiAPIKey != "" {
		model, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel(cfg.GeminiModel),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		r.Register(ProviderGemini, NewClient(model, options(ProviderGemini), logger, m))
	}

	if cfg.AnthropicAPIKey != "" {
		model, err := anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.ClaudeModel),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create claude client: %w", err)
		}
		r.Register(ProviderClaude, NewClient(model, options(ProviderClaude), logger, m))
	}

	// Perplexity speaks the OpenAI chat completions protocol.
	if cfg.PerplexityAPIKey != "" {
		model, err := openai.New(
			openai.WithToken(cfg.PerplexityAPIKey),
			openai.WithModel(cfg.PerplexityModel),
			openai.WithBaseURL(cfg.PerplexityBaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create perplexity client: %w", err)
		}
		r.Register(ProviderPerplexity, NewClient(model, options(ProviderPerplexity), logger, m))
	}

	return r, nil
}

func (r *Registry) Register(name string, c Client) {
	r.clients[name] = c
}

// Get returns the client registered under name, or nil.
func (r *Registry) Get(name string) Client {
	return r.clients[name]
}

// Resolve returns the named client, falling back to the first configured
// provider. It returns nil when nothing is configured.
func (r *Registry) Resolve(name string) Client {
	if c, ok := r.clients[name]; ok {
		return c
	}
	for _, p := range fallbackOrder {
		if c, ok := r.clients[p]; ok {
			return c
		}
	}
	return nil
}

// ResolveImage is Resolve restricted to providers that accept images. It
// returns nil when none of them is configured.
func (r *Registry) ResolveImage(name string) Client {
	if AcceptsImages(name) {
		if c, ok := r.clients[name]; ok {
			return c
		}
	}
	for _, p := range fallbackOrder {
		if !AcceptsImages(p) {
			continue
		}
		if c, ok := r.clients[p]; ok {
			return c
		}
	}
	return nil
}

func (r *Registry) Len() int {
	return len(r.clients)
}
