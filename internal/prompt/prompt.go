// Package prompt renders a chunk of file diffs into the system and user
// messages sent to the generation service. Rendering is a pure function of
// (chunk, generation settings): no timestamps, no randomized ordering, so
// identical inputs always produce byte-identical prompts.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/huimingz/autocommit-go/internal/chunk"
	"github.com/huimingz/autocommit-go/internal/config"
	"github.com/huimingz/autocommit-go/pkg/lang"
)

// Prompt is one generation request's text content
type Prompt struct {
	System string
	User   string
}

const systemTemplate = `You are a Git commit message generator. Analyze the staged changes and write a commit message following the Conventional Commits specification.

## Format
<type>[optional scope]: <description>
{{- if .Description}}

[optional body]
{{- end}}

## Types
feat, fix, docs, style, refactor, perf, test, chore, build, ci, revert

## Rules
1. The description must be concise (50 chars or less preferred)
2. Use imperative mood ("add" not "added")
3. Do not end the description with a period
{{- if .Emoji}}
4. Preface the first line with a GitMoji matching the change (e.g. 🐛 for fixes, ✨ for features)
{{- end}}
{{- if .Description}}
5. The body should explain what and why (not how)
{{- else}}
5. Output only the first line; do not add a body
{{- end}}

## Output Language
Write the commit message in: {{.Language}}
{{- if .Context}}

## Additional Context
The developer has provided the following context for this change:
"{{.Context}}"
{{- end}}

## IMPORTANT
Respond with ONLY the commit message text. No surrounding prose, no markdown fences, no explanation.`

const userTemplate = `Generate a commit message for the following staged changes.
{{- range .Changes}}

### {{.Path}} ({{.Kind}})
` + "```diff\n{{.Patch}}\n```" + `
{{- end}}
{{- if .Truncated}}

Note: the diff above was truncated to fit the request size limit.
{{- end}}`

// Builder renders prompts. The optional developer context is fixed at
// construction so repeated builds over the chunks of one run stay uniform.
type Builder struct {
	context string
	system  *template.Template
	user    *template.Template
}

// Option configures a Builder
type Option func(*Builder)

// WithContext adds developer-provided context to every prompt built
func WithContext(context string) Option {
	return func(b *Builder) {
		b.context = context
	}
}

// NewBuilder creates a prompt Builder
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		system: template.Must(template.New("system").Parse(systemTemplate)),
		user:   template.Must(template.New("user").Parse(userTemplate)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build renders the prompt for one chunk under the given generation settings
func (b *Builder) Build(c chunk.Chunk, gen config.Generation) (Prompt, error) {
	var system bytes.Buffer
	err := b.system.Execute(&system, map[string]interface{}{
		"Description": gen.Description,
		"Emoji":       gen.Emoji,
		"Language":    lang.ParseLanguage(gen.Language).DisplayName(),
		"Context":     b.context,
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to render system prompt: %w", err)
	}

	var user bytes.Buffer
	err = b.user.Execute(&user, map[string]interface{}{
		"Changes":   c.Changes,
		"Truncated": c.Truncated,
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to render user prompt: %w", err)
	}

	return Prompt{System: system.String(), User: user.String()}, nil
}
