package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/autocommit-go/internal/config"
	"github.com/huimingz/autocommit-go/internal/prompt"
)

// scriptedModel replays a fixed sequence of results, one per Generate call
type scriptedModel struct {
	script []result
	calls  int
}

type result struct {
	content string
	err     error
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	i := m.calls
	m.calls++
	if i >= len(m.script) {
		return nil, errors.New("scripted model called too often")
	}
	if m.script[i].err != nil {
		return nil, m.script[i].err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.script[i].content}, nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported by scripted model")
}

func (m *scriptedModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

type fakeProvider struct {
	model *scriptedModel
}

func (p *fakeProvider) Name() string                  { return "fake" }
func (p *fakeProvider) GetConfig() config.ModelConfig { return config.ModelConfig{Model: "fake-model"} }
func (p *fakeProvider) CreateChatModel(ctx context.Context) (model.ChatModel, error) {
	return p.model, nil
}

// recordingSleep captures backoff delays instead of waiting
type recordingSleep struct {
	delays []time.Duration
}

func (s *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newTestClient(m *scriptedModel, maxRetries int) (*Client, *recordingSleep) {
	rec := &recordingSleep{}
	c := NewClient(&fakeProvider{model: m},
		WithRetryConfig(RetryConfig{MaxRetries: maxRetries, BackoffBase: 1.0, BackoffMax: 8.0}),
		WithSleep(rec.sleep),
	)
	return c, rec
}

var testPrompt = prompt.Prompt{System: "system", User: "user"}

func transientErr() error {
	return &HTTPError{Code: http.StatusServiceUnavailable, Message: "service unavailable"}
}

func TestClient_SuccessFirstAttempt(t *testing.T) {
	m := &scriptedModel{script: []result{{content: "feat: works"}}}
	c, rec := newTestClient(m, 3)

	got, err := c.Generate(context.Background(), testPrompt)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "feat: works" {
		t.Errorf("content = %q", got)
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1", m.calls)
	}
	if len(rec.delays) != 0 {
		t.Errorf("slept %v on success", rec.delays)
	}
}

func TestClient_TransientThenSuccess(t *testing.T) {
	m := &scriptedModel{script: []result{
		{err: transientErr()},
		{err: transientErr()},
		{content: "fix: third time lucky"},
	}}
	c, rec := newTestClient(m, 3)

	got, err := c.Generate(context.Background(), testPrompt)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "fix: third time lucky" {
		t.Errorf("content = %q", got)
	}
	if m.calls != 3 {
		t.Errorf("calls = %d, want 3", m.calls)
	}
	// Two backoffs: 1s then 2s (no jitter configured)
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("delays = %v, want %v", rec.delays, want)
	}
	for i := range want {
		if rec.delays[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, rec.delays[i], want[i])
		}
	}
}

func TestClient_ExhaustedAfterMaxRetries(t *testing.T) {
	m := &scriptedModel{script: []result{
		{err: transientErr()},
		{err: transientErr()},
		{err: transientErr()},
		{err: transientErr()},
	}}
	c, rec := newTestClient(m, 3)

	_, err := c.Generate(context.Background(), testPrompt)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", exhausted.Attempts)
	}
	if exhausted.Cause == nil {
		t.Error("Cause is nil")
	}
	// Exactly MaxRetries retries after the initial attempt
	if m.calls != 4 {
		t.Errorf("calls = %d, want 4", m.calls)
	}
	if len(rec.delays) != 3 {
		t.Errorf("slept %d times, want 3", len(rec.delays))
	}
}

func TestClient_AuthNoRetry(t *testing.T) {
	m := &scriptedModel{script: []result{
		{err: &HTTPError{Code: http.StatusUnauthorized, Message: "unauthorized"}},
	}}
	c, rec := newTestClient(m, 3)

	_, err := c.Generate(context.Background(), testPrompt)
	var auth *AuthError
	if !errors.As(err, &auth) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1 (zero retries on auth failure)", m.calls)
	}
	if len(rec.delays) != 0 {
		t.Errorf("slept %v on auth failure", rec.delays)
	}
}

func TestClient_BadRequestNoRetry(t *testing.T) {
	m := &scriptedModel{script: []result{
		{err: &HTTPError{Code: http.StatusBadRequest, Message: "bad request"}},
	}}
	c, _ := newTestClient(m, 3)

	_, err := c.Generate(context.Background(), testPrompt)
	if err == nil {
		t.Fatal("err = nil")
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("malformed request wrapped as exhaustion")
	}
	if m.calls != 1 {
		t.Errorf("calls = %d, want 1", m.calls)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	m := &scriptedModel{script: []result{{content: "never used"}}}
	c, _ := newTestClient(m, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, testPrompt)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if m.calls != 0 {
		t.Errorf("calls = %d, want 0", m.calls)
	}
}

func TestClient_RetryDisabled(t *testing.T) {
	m := &scriptedModel{script: []result{{err: transientErr()}}}
	c, rec := newTestClient(m, 0)

	_, err := c.Generate(context.Background(), testPrompt)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", exhausted.Attempts)
	}
	if m.calls != 1 || len(rec.delays) != 0 {
		t.Errorf("calls = %d delays = %v, want single attempt, no sleep", m.calls, rec.delays)
	}
}
