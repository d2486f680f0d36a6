package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// Reply is one model response plus its reported token cost.
type Reply struct {
	Text       string
	TokensUsed int
}

// Generator is the raw language-model collaborator: a single synchronous
// prompt-in, text-out capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Reply, error)
}

// Client wraps a Generator with the governor, the retry policy and a
// process-wide mutex. Serializing every call presents one well-governed
// stream to the governor instead of racing callers against the shared
// window and budget counters.
type Client struct {
	generator Generator
	governor  *Governor
	policy    RetryPolicy

	mu sync.Mutex

	// sleep is replaceable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(generator Generator, governor *Governor, policy RetryPolicy) *Client {
	return &Client{
		generator: generator,
		governor:  governor,
		policy:    policy,
		sleep:     sleepCtx,
	}
}

// Generate runs one governed, retried model call. Rate-limit-class failures
// are retried with capped exponential backoff and jitter; an exhausted daily
// budget aborts with ErrBudgetExceeded; any other failure propagates
// immediately.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		if !c.governor.Admit() {
			if c.governor.BudgetExhausted() {
				return "", ErrBudgetExceeded
			}
			// Soft throttle: wait out the window, then proceed anyway.
			throttle := time.Duration(1+rand.Intn(5)) * time.Second
			slog.Debug("Model call throttled", "delay", throttle.String())
			if err := c.sleep(ctx, throttle); err != nil {
				return "", err
			}
		}

		reply, err := c.generator.Generate(ctx, prompt)
		if err == nil {
			c.governor.RecordUsage(reply.TokensUsed)
			return reply.Text, nil
		}

		if !IsRetryable(err) {
			return "", err
		}

		lastErr = err
		if attempt == c.policy.MaxAttempts-1 {
			break
		}

		delay := c.policy.Delay(attempt)
		slog.Warn("Model call rate limited, retrying", "attempt", attempt+1, "delay", delay.String(), "error", err)
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("model call failed after %d attempts: %w", c.policy.MaxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GeminiGenerator calls the Gemini API through the google genai SDK.
type GeminiGenerator struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	return &GeminiGenerator{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (Reply, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: int32(g.maxTokens),
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return Reply{}, fmt.Errorf("content generation failed: %w", err)
	}

	var text strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}

	if text.Len() == 0 {
		return Reply{}, fmt.Errorf("no response generated from model")
	}

	reply := Reply{Text: text.String()}
	if resp.UsageMetadata != nil {
		reply.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	} else {
		// Usage metadata absent: estimate roughly four characters per token.
		reply.TokensUsed = (len(prompt) + text.Len()) / 4
	}

	return reply, nil
}
