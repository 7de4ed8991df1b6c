// Package pipeline turns a repo's staged changes into one commit message:
// filter ignored files, pack the rest into budget-bounded chunks, generate
// and parse a message per chunk, merge. The pipeline holds no state across
// runs; everything lives and dies within one Run call.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/huimingz/autocommit-go/internal/chunk"
	"github.com/huimingz/autocommit-go/internal/config"
	"github.com/huimingz/autocommit-go/internal/diff"
	"github.com/huimingz/autocommit-go/internal/ignore"
	"github.com/huimingz/autocommit-go/internal/llm"
	"github.com/huimingz/autocommit-go/internal/log"
	"github.com/huimingz/autocommit-go/internal/message"
	"github.com/huimingz/autocommit-go/internal/prompt"
)

// DefaultConcurrency bounds how many chunk generations run at once
const DefaultConcurrency = 3

// Generator sends one prompt to the generation service. Satisfied by
// *llm.Client; narrowed so pipeline tests can fake the service.
type Generator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// Pipeline runs the commit-message generation sequence
type Pipeline struct {
	gen         Generator
	cfg         config.Generation
	builder     *prompt.Builder
	concurrency int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithContext passes developer-provided context into every prompt
func WithContext(context string) Option {
	return func(p *Pipeline) {
		p.builder = prompt.NewBuilder(prompt.WithContext(context))
	}
}

// WithConcurrency overrides the chunk generation parallelism limit
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New creates a Pipeline around a generator and one run's resolved settings
func New(gen Generator, cfg config.Generation, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:         gen,
		cfg:         cfg,
		builder:     prompt.NewBuilder(),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run generates one commit message for the given staged changes. It fails
// with ErrNoChanges when nothing was staged, ErrAllIgnored when every change
// matched an ignore pattern (before any network call), and otherwise
// surfaces the first fatal generation or parse failure. Cancelling ctx
// aborts in-flight generation calls; no partial result is ever returned.
func (p *Pipeline) Run(ctx context.Context, changes diff.RepoDiff, patterns []ignore.Pattern) (*message.CommitMessage, error) {
	if len(changes) == 0 {
		return nil, ErrNoChanges
	}

	filtered := ignore.Filter(changes, patterns)
	log.Debug("ignore filter kept %d of %d changes", len(filtered), len(changes))
	if len(filtered) == 0 {
		return nil, ErrAllIgnored
	}

	chunks := chunk.Split(filtered, p.cfg.TokenBudget)
	if len(chunks) == 0 {
		return nil, ErrNoChanges
	}
	log.Debug("packed %d changes into %d chunks (budget %d)", len(filtered), len(chunks), p.cfg.TokenBudget)

	// Prompts are built up front; a template failure should surface
	// before any network call.
	prompts := make([]prompt.Prompt, len(chunks))
	for i, c := range chunks {
		built, err := p.builder.Build(c, p.cfg)
		if err != nil {
			return nil, err
		}
		prompts[i] = built
	}

	msgs, err := p.generateAll(ctx, prompts)
	if err != nil {
		return nil, err
	}

	return message.Merge(msgs), nil
}

// generateAll runs generation and parsing per chunk, concurrently up to the
// parallelism limit. Results land in chunk order regardless of completion
// order; the first failure cancels the remaining chunks.
func (p *Pipeline) generateAll(ctx context.Context, prompts []prompt.Prompt) ([]*message.CommitMessage, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := p.concurrency
	if limit > len(prompts) {
		limit = len(prompts)
	}

	var (
		wg   sync.WaitGroup
		sem  = make(chan struct{}, limit)
		msgs = make([]*message.CommitMessage, len(prompts))
		errs = make([]error, len(prompts))
	)

	for i := range prompts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-runCtx.Done():
				errs[i] = runCtx.Err()
				return
			}
			defer func() { <-sem }()

			raw, err := p.gen.Generate(runCtx, prompts[i])
			if err != nil {
				errs[i] = fmt.Errorf("chunk %d/%d: %w", i+1, len(prompts), err)
				cancel()
				return
			}

			msg, err := message.Parse(raw, p.cfg)
			if err != nil {
				errs[i] = fmt.Errorf("chunk %d/%d: %w", i+1, len(prompts), err)
				cancel()
				return
			}
			msgs[i] = msg
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Prefer a real failure over a cancellation ripple from it
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
		if !errors.Is(err, context.Canceled) {
			return nil, err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return msgs, nil
}

// GenerateCommitMessage is the pipeline entry point: it builds the
// generation client for the resolved settings and runs the full sequence.
func GenerateCommitMessage(ctx context.Context, changes diff.RepoDiff, patterns []ignore.Pattern, gen config.Generation, opts ...Option) (*message.CommitMessage, error) {
	client, err := llm.NewClientFromGeneration(gen)
	if err != nil {
		return nil, err
	}
	return New(client, gen, opts...).Run(ctx, changes, patterns)
}
