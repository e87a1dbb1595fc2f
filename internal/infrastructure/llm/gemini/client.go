package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/vpetrenko/jobfit/internal/core/domain"
	"github.com/vpetrenko/jobfit/internal/infrastructure/resilience"
)

const defaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	Model  string

	// RequestTimeout bounds a single generation call; expiry is surfaced as
	// a generation timeout.
	RequestTimeout time.Duration

	// MaxRPS throttles outgoing calls. Zero disables the limiter.
	MaxRPS float64

	// Resilience, when set, runs each call through a circuit breaker. Calls
	// are never retried here: later stages depend on earlier output, so a
	// failed stage fails the whole run.
	Resilience *resilience.Executor
}

// Client adapts the Gemini API to the TextGenerator port. One call per
// analysis stage; stage parameters come in through StageConfig.
type Client struct {
	client   *genai.Client
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	executor *resilience.Executor
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.MaxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1)
	}

	return &Client{
		client:   client,
		model:    model,
		timeout:  timeout,
		limiter:  limiter,
		executor: cfg.Resilience,
	}, nil
}

func (c *Client) Generate(ctx context.Context, prompt string, cfg domain.StageConfig) (string, error) {
	if c.executor == nil {
		return c.generateOnce(ctx, prompt, cfg)
	}

	var out string
	err := c.executor.Execute(ctx, "gemini."+string(cfg.Stage), func(ctx context.Context) error {
		text, err := c.generateOnce(ctx, prompt, cfg)
		if err != nil {
			return err
		}
		out = text
		return nil
	}, classifyBreakerFailure)
	if err != nil {
		if resilience.IsCircuitOpen(err) {
			return "", domain.WrapError(domain.ErrGenerationUnavailable, string(cfg.Stage), err)
		}
		return "", err
	}
	return out, nil
}

func (c *Client) generateOnce(ctx context.Context, prompt string, cfg domain.StageConfig) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", classifyGenerationError(string(cfg.Stage), err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	resp, err := c.client.Models.GenerateContent(
		callCtx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(cfg.Temperature),
			MaxOutputTokens: cfg.MaxOutputTokens,
			CandidateCount:  1,
		},
	)
	if err != nil {
		return "", classifyGenerationError(string(cfg.Stage), err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", domain.WrapError(
			domain.ErrGenerationUnknown,
			string(cfg.Stage),
			fmt.Errorf("model returned no text"),
		)
	}

	slog.Debug("generation_stage_done",
		"stage", string(cfg.Stage),
		"model", c.model,
		"duration_ms", time.Since(started).Milliseconds(),
		"output_chars", len(text),
	)
	return text, nil
}
