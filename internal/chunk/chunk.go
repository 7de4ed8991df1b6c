// Package chunk packs filtered file diffs into budget-bounded chunks for the
// generation service. Packing is greedy over the input order and fully
// deterministic: the same changes and budget always produce the same chunk
// boundaries, which keeps prompts reproducible and retries safe.
package chunk

import (
	"github.com/huimingz/autocommit-go/internal/diff"
)

// DefaultTokenBudget is the per-request budget used when the config does not
// set one. Roughly half of a small model's context window, leaving room for
// the system prompt and the response.
const DefaultTokenBudget = 4096

// perChangeOverhead accounts for the section label the prompt builder wraps
// around each file's patch.
const perChangeOverhead = 16

// Chunk is an ordered subset of file changes whose combined approximate
// token size fits the budget. Truncated is set when a single oversized
// change had its patch cut down to fit.
type Chunk struct {
	Changes   []diff.FileChange
	Tokens    int
	Truncated bool
}

// ApproxTokens is a cheap, monotonic estimate of the generation service's
// token cost for a piece of text. Four characters per token is close enough
// for budget packing; exact accounting is not required.
func ApproxTokens(s string) int {
	return (len(s) + 3) / 4
}

func changeTokens(c diff.FileChange) int {
	return ApproxTokens(c.Patch) + ApproxTokens(c.Path) + perChangeOverhead
}

// Split packs changes into chunks of at most budget approximate tokens,
// greedily in input order. A single change that alone exceeds the budget
// becomes its own chunk with the patch truncated to fit and Truncated set.
// Every input change lands in exactly one chunk; empty input yields nil.
func Split(changes []diff.FileChange, budget int) []Chunk {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}

	var (
		chunks  []Chunk
		current Chunk
	)
	flush := func() {
		if len(current.Changes) > 0 {
			chunks = append(chunks, current)
			current = Chunk{}
		}
	}

	for _, change := range changes {
		tokens := changeTokens(change)

		if tokens > budget {
			flush()
			chunks = append(chunks, truncated(change, budget))
			continue
		}

		if current.Tokens+tokens > budget {
			flush()
		}
		current.Changes = append(current.Changes, change)
		current.Tokens += tokens
	}
	flush()

	return chunks
}

// truncated builds a singleton chunk for an oversized change, cutting the
// patch down so the chunk lands on the budget.
func truncated(change diff.FileChange, budget int) Chunk {
	keep := (budget - perChangeOverhead - ApproxTokens(change.Path)) * 4
	if keep < 0 {
		keep = 0
	}
	if keep < len(change.Patch) {
		change.Patch = change.Patch[:keep]
	}
	return Chunk{
		Changes:   []diff.FileChange{change},
		Tokens:    changeTokens(change),
		Truncated: true,
	}
}
