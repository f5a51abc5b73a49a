// Package llm wraps the hosted language model providers behind a small
// interface used by the services.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/eia-document-api/internal/metrics"
	"github.com/BerylCAtieno/eia-document-api/internal/utils"
	"github.com/cenkalti/backoff/v5"
	"github.com/tmc/langchaingo/llms"
)

var ErrEmptyResponse = errors.New("empty response from model")

// Client generates completions from a single provider.
type Client interface {
	Provider() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error)
}

type Options struct {
	Provider   string
	MaxRetries int
	Timeout    time.Duration
	// BackOff overrides the retry schedule. Defaults to exponential.
	BackOff backoff.BackOff
}

type modelClient struct {
	model   llms.Model
	opts    Options
	logger  *utils.Logger
	metrics *metrics.Metrics
}

// NewClient adapts a langchaingo model into a Client with per-call timeout,
// retries and metrics.
func NewClient(model llms.Model, opts Options, logger *utils.Logger, m *metrics.Metrics) Client {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &modelClient{
		model:   model,
		opts:    opts,
		logger:  logger.With("provider", opts.Provider),
		metrics: m,
	}
}

func (c *modelClient) Provider() string {
	return c.opts.Provider
}

func (c *modelClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
}

func (c *modelClient) GenerateWithImage(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	return c.generate(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextPart(prompt),
			},
		},
	})
}

func (c *modelClient) generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	attempt := 0
	operation := func() (string, error) {
		attempt++
		text, err := c.call(ctx, messages)
		if err != nil {
			if ctx.Err() != nil {
				return "", backoff.Permanent(err)
			}
			c.logger.Warn("LLM call failed", "attempt", attempt, "error", err)
			return "", err
		}
		return text, nil
	}

	bo := c.opts.BackOff
	if bo == nil {
		bo = backoff.NewExponentialBackOff()
	}

	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.opts.MaxRetries+1)),
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.opts.Provider, err)
	}
	return text, nil
}

func (c *modelClient) call(ctx context.Context, messages []llms.MessageContent) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, messages)
	if err == nil {
		err = checkResponse(resp)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordLLMCall(c.opts.Provider, status, time.Since(start))

	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func checkResponse(resp *llms.ContentResponse) error {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return ErrEmptyResponse
	}
	if strings.TrimSpace(resp.Choices[0].Content) == "" {
		return ErrEmptyResponse
	}
	return nil
}
