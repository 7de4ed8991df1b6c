// Package diff models the staged changes handed to the generation pipeline:
// an ordered list of per-file changes, each carrying its raw patch text.
// Only the collaborator that talks to git produces these values; the rest of
// the pipeline treats them as immutable.
package diff

import (
	"strings"
)

// Kind classifies how a file changed
type Kind string

const (
	Added    Kind = "added"
	Modified Kind = "modified"
	Deleted  Kind = "deleted"
	Renamed  Kind = "renamed"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// FileChange is one staged file and its raw patch text
type FileChange struct {
	Path  string // path relative to repo root (new side for renames)
	Kind  Kind
	Patch string // unified diff section for this file
}

// RepoDiff is the ordered list of staged file changes. Order follows the
// git listing order and is preserved through the pipeline for determinism.
type RepoDiff []FileChange

// Paths returns the changed paths in order
func (d RepoDiff) Paths() []string {
	paths := make([]string, 0, len(d))
	for _, c := range d {
		paths = append(paths, c.Path)
	}
	return paths
}

// Parse splits the output of `git diff --cached --no-color` into per-file
// changes. Each section starting with "diff --git" becomes one FileChange;
// binary sections are kept with git's "Binary files ... differ" notice as
// their patch. Empty diff produces nil.
func Parse(diffOutput string) (RepoDiff, error) {
	if strings.TrimSpace(diffOutput) == "" {
		return nil, nil
	}

	var changes RepoDiff
	for _, section := range splitFileSections(diffOutput) {
		if strings.TrimSpace(section) == "" {
			continue
		}
		change, ok := parseFileSection(section)
		if !ok {
			continue
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// splitFileSections splits diff output by "diff --git " so each section is
// one file's diff (or one binary notice).
func splitFileSections(out string) []string {
	const prefix = "diff --git "
	var sections []string
	start := 0
	for {
		i := strings.Index(out[start:], prefix)
		if i < 0 {
			if start < len(out) && strings.TrimSpace(out[start:]) != "" {
				sections = append(sections, out[start:])
			}
			break
		}
		pos := start + i
		if pos > start && strings.TrimSpace(out[start:pos]) != "" {
			sections = append(sections, out[start:pos])
		}
		next := strings.Index(out[pos+len(prefix):], prefix)
		if next < 0 {
			sections = append(sections, out[pos:])
			break
		}
		sections = append(sections, out[pos:pos+len(prefix)+next])
		start = pos + len(prefix) + next
	}
	return sections
}

func parseFileSection(section string) (FileChange, bool) {
	var (
		pathA, pathB string
		kind         = Modified
	)

	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			pathA, pathB = parseDiffGitLine(line)
		case strings.HasPrefix(line, "new file mode"):
			kind = Added
		case strings.HasPrefix(line, "deleted file mode"):
			kind = Deleted
		case strings.HasPrefix(line, "rename from "):
			kind = Renamed
		case strings.HasPrefix(line, "rename to "):
			pathB = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "--- "):
			if pathA == "" {
				pathA = parsePathLine(line, "--- ")
			}
		case strings.HasPrefix(line, "+++ "):
			if p := parsePathLine(line, "+++ "); p != "" {
				pathB = p
			}
		}
	}

	path := pathB
	if path == "" || path == "/dev/null" {
		path = pathA
	}
	if path == "" || path == "/dev/null" {
		return FileChange{}, false
	}

	return FileChange{
		Path:  path,
		Kind:  kind,
		Patch: strings.TrimRight(section, "\n"),
	}, true
}

func parseDiffGitLine(line string) (a, b string) {
	// "diff --git a/path b/path"
	rest := strings.TrimPrefix(line, "diff --git ")
	parts := strings.Fields(rest)
	if len(parts) >= 2 {
		a = trimDiffPath(parts[0])
		b = trimDiffPath(parts[1])
	}
	return a, b
}

func trimDiffPath(s string) string {
	if len(s) >= 2 && (s[0] == 'a' || s[0] == 'b') && s[1] == '/' {
		return s[2:]
	}
	return s
}

func parsePathLine(line, prefix string) string {
	s := strings.TrimPrefix(line, prefix)
	if idx := strings.Index(s, "\t"); idx >= 0 {
		s = s[:idx]
	}
	if s == "/dev/null" {
		return ""
	}
	return trimDiffPath(s)
}
