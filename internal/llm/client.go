package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/autocommit-go/internal/config"
	"github.com/huimingz/autocommit-go/internal/log"
	"github.com/huimingz/autocommit-go/internal/prompt"
)

// DefaultAttemptTimeout bounds one call to the generation service. A timed
// out attempt counts as transient and goes back through the retry loop.
const DefaultAttemptTimeout = 60 * time.Second

// SleepFunc waits for d or until ctx is done. Injected so retry tests run
// without wall-clock waiting.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Client sends prompts to the active provider's chat model and owns the
// retry loop around it. It keeps no state across calls beyond its settings.
type Client struct {
	provider       Provider
	retry          RetryConfig
	attemptTimeout time.Duration
	sleep          SleepFunc
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithRetryConfig overrides the retry configuration
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithAttemptTimeout overrides the per-attempt timeout
func WithAttemptTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.attemptTimeout = d
	}
}

// WithSleep overrides the backoff sleep
func WithSleep(sleep SleepFunc) ClientOption {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// NewClient creates a Client around the given provider
func NewClient(provider Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:       provider,
		retry:          DefaultRetryConfig(),
		attemptTimeout: DefaultAttemptTimeout,
		sleep:          defaultSleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromGeneration builds the provider and client for one run's
// resolved generation settings.
func NewClientFromGeneration(gen config.Generation, opts ...ClientOption) (*Client, error) {
	provider, err := NewProviderFactory().CreateFromGeneration(gen)
	if err != nil {
		return nil, err
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = gen.MaxRetries

	return NewClient(provider, append([]ClientOption{WithRetryConfig(retry)}, opts...)...), nil
}

// Generate sends one prompt and returns the raw response text. Transient
// failures are retried up to MaxRetries times with exponential backoff;
// credential and malformed-request failures fail immediately. After the
// budget is spent the last cause is wrapped in *ExhaustedError.
func (c *Client) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	chatModel, err := c.provider.CreateChatModel(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create chat model: %w", err)
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: p.System},
		{Role: schema.User, Content: p.User},
	}

	modelCfg := c.provider.GetConfig()
	log.DebugRequest(modelCfg.Model, modelCfg.BaseURL, len(p.System)+len(p.User))

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		start := time.Now()
		resp, err := c.generateOnce(ctx, chatModel, messages)
		log.DebugDuration(fmt.Sprintf("generation attempt %d", attempt), time.Since(start))

		if err == nil {
			log.DebugResponse(resp)
			return resp, nil
		}
		lastErr = err

		// The parent being done means cancellation, not a transient
		// attempt timeout.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		switch ClassifyError(err) {
		case ErrorTypeAuth:
			return "", &AuthError{Cause: err}
		case ErrorTypeRetryable:
			// fall through to backoff
		default:
			return "", err
		}

		if attempt > c.retry.MaxRetries {
			break
		}

		backoff := CalculateBackoff(attempt, c.retry.BackoffBase, c.retry.BackoffMax, c.retry.JitterFrac)
		log.Debug("transient generation failure (attempt %d/%d), retrying in %v: %v",
			attempt, c.retry.MaxRetries+1, backoff, err)
		if err := c.sleep(ctx, backoff); err != nil {
			return "", err
		}
	}

	return "", &ExhaustedError{Attempts: c.retry.MaxRetries + 1, Cause: lastErr}
}

func (c *Client) generateOnce(ctx context.Context, chatModel model.BaseChatModel, messages []*schema.Message) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	resp, err := chatModel.Generate(attemptCtx, messages)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("generation service returned no message")
	}
	return resp.Content, nil
}
