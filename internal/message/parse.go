package message

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/huimingz/autocommit-go/internal/config"
)

// ErrUnstructured is returned when no parsable first line can be recovered
// from the response at all.
var ErrUnstructured = errors.New("response contains no parsable commit message")

// headerRegex matches a conventional commit first line, with an optional
// gitmoji prefix (a pictographic rune or a :shortcode:). A trailing "!"
// breaking marker on the type is tolerated and dropped.
var headerRegex = regexp.MustCompile(
	`^(?:([\p{So}\p{Sk}][\x{FE0F}]?|:[a-z0-9_+-]+:)\s+)?` + // emoji
		`([A-Za-z]+)` + // type
		`(?:\(([^)]*)\))?` + // scope
		`!?` +
		`:\s+(.+)$`) // description

// Parse extracts a structured commit message from the raw response text.
// The parser is deliberately tolerant: the service's phrasing is not fully
// controllable, so markdown fences are stripped, unknown types are accepted
// but flagged, and a response with no conventional header at all degrades to
// a chore-typed message built from its first line. Content that the config
// disallows (emoji, body) is stripped rather than rejected. Only a response
// with nothing recoverable fails, with ErrUnstructured.
func Parse(raw string, gen config.Generation) (*CommitMessage, error) {
	lines := stripFences(raw)
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUnstructured)
	}

	msg, headerIdx := findHeader(lines)
	if msg == nil {
		// No conventional header anywhere; recover the first line as a
		// plain description.
		msg = &CommitMessage{
			Type:        "chore",
			Description: strings.TrimSpace(lines[0]),
			NonStandard: true,
		}
		headerIdx = 0
	}

	msg.Body = collectBody(lines, headerIdx)

	// Policy stripping: drop content the config disallows instead of
	// failing on it.
	if !gen.Emoji {
		msg.Emoji = ""
	}
	if !gen.Description {
		msg.Body = ""
	}

	return msg, nil
}

// stripFences trims the response and removes markdown code fence lines,
// returning the remaining non-blank-trimmed lines.
func stripFences(raw string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		lines = append(lines, line)
	}
	// Drop leading and trailing blank lines
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// findHeader returns the first line that parses as a conventional commit
// header, preferring the very first line but scanning the rest to recover
// from leading prose.
func findHeader(lines []string) (*CommitMessage, int) {
	for i, line := range lines {
		m := headerRegex.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		typ := strings.ToLower(m[2])
		return &CommitMessage{
			Type:        typ,
			Scope:       strings.TrimSpace(m[3]),
			Description: strings.TrimSpace(m[4]),
			Emoji:       m[1],
			NonStandard: !KnownType(typ),
		}, i
	}
	return nil, -1
}

// collectBody joins the lines after the header, skipping the conventional
// blank separator.
func collectBody(lines []string, headerIdx int) string {
	rest := lines[headerIdx+1:]
	for len(rest) > 0 && strings.TrimSpace(rest[0]) == "" {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.Join(rest, "\n"))
}
