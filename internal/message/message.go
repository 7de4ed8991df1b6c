// Package message holds the structured commit message and the tolerant
// parser that extracts one from the generation service's free-text reply.
package message

import (
	"fmt"
	"strings"
)

// Known conventional commit types
var knownTypes = map[string]bool{
	"feat":     true,
	"fix":      true,
	"docs":     true,
	"style":    true,
	"refactor": true,
	"perf":     true,
	"test":     true,
	"chore":    true,
	"build":    true,
	"ci":       true,
	"revert":   true,
}

// KnownType reports whether t is a standard conventional commit type
func KnownType(t string) bool {
	return knownTypes[t]
}

// CommitMessage is the structured result of parsing a generation response
type CommitMessage struct {
	Type        string // feat, fix, docs, ...
	Scope       string // optional
	Description string // subject line
	Body        string // optional
	Emoji       string // optional gitmoji prefix
	NonStandard bool   // type outside the known set, or recovered from loose text
}

// Title returns the formatted first line
func (m *CommitMessage) Title() string {
	var title string
	if m.Scope != "" {
		title = fmt.Sprintf("%s(%s): %s", m.Type, m.Scope, m.Description)
	} else {
		title = fmt.Sprintf("%s: %s", m.Type, m.Description)
	}
	if m.Emoji != "" {
		title = m.Emoji + " " + title
	}
	return title
}

// String returns the complete formatted commit message
func (m *CommitMessage) String() string {
	parts := []string{m.Title()}
	if m.Body != "" {
		parts = append(parts, "", m.Body)
	}
	return strings.Join(parts, "\n")
}

// Merge combines per-chunk messages into one. The first message provides the
// headline (type, scope, description, emoji) and its body leads; every later
// message contributes its description as a body bullet point. A single commit
// needs one coherent first line, so subsequent bodies are dropped in favor of
// their summaries.
func Merge(msgs []*CommitMessage) *CommitMessage {
	if len(msgs) == 0 {
		return nil
	}
	merged := *msgs[0]
	if len(msgs) == 1 {
		return &merged
	}

	var body []string
	if merged.Body != "" {
		body = append(body, merged.Body, "")
	}
	for _, m := range msgs[1:] {
		body = append(body, "- "+m.Description)
		if m.NonStandard {
			merged.NonStandard = true
		}
	}
	merged.Body = strings.Join(body, "\n")
	return &merged
}
