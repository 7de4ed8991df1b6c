// Package ignore decides which staged files may be sent to the generation
// service. Patterns come from a plain-text ignore file in the repository
// root plus a built-in default set; matching follows glob semantics where
// `*` stays within a path segment and `**` spans segments.
package ignore

import (
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/huimingz/autocommit-go/internal/diff"
	"github.com/huimingz/autocommit-go/internal/log"
)

// DefaultFileName is the ignore file looked up in the repository root
const DefaultFileName = ".autoignore"

// Pattern is one glob pattern with its origin, for warning messages
type Pattern struct {
	Glob   string
	Source string // "default" or the ignore file path
}

// DefaultPatterns are always active, regardless of the user's ignore file.
// Lockfiles are machine-generated noise and routinely blow the token budget.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Glob: "*.lock", Source: "default"},
		{Glob: "*-lock.*", Source: "default"},
	}
}

// Load reads patterns from r, one glob per line. Blank lines and lines
// starting with '#' are skipped. The returned set does not include defaults;
// callers combine with DefaultPatterns.
func Load(r io.Reader, source string) ([]Pattern, error) {
	var patterns []Pattern
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, Pattern{Glob: line, Source: source})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// LoadFile loads patterns from the ignore file at dir, if present.
// A missing file is not an error; it just means no user patterns.
func LoadFile(dir string) ([]Pattern, error) {
	p := filepath.Join(dir, DefaultFileName)
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return Load(f, p)
}

// Filter returns the changes whose paths match none of the patterns,
// preserving input order. Default patterns are always applied in addition to
// the given ones. A malformed pattern is skipped with a warning; it never
// aborts the run.
func Filter(changes []diff.FileChange, patterns []Pattern) []diff.FileChange {
	all := append(DefaultPatterns(), patterns...)

	kept := make([]diff.FileChange, 0, len(changes))
	for _, change := range changes {
		if matchesAny(change.Path, all) {
			log.Debug("ignoring %s", change.Path)
			continue
		}
		kept = append(kept, change)
	}
	return kept
}

func matchesAny(p string, patterns []Pattern) bool {
	p = filepath.ToSlash(p)
	for _, pat := range patterns {
		ok, err := Match(pat.Glob, p)
		if err != nil {
			log.Warn("skipping malformed ignore pattern %q from %s: %v", pat.Glob, pat.Source, err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// Match reports whether the glob pattern matches the slash-separated path.
// `*` and `?` match within one path segment (path.Match semantics); `**`
// as a whole segment matches any number of segments, including zero. A
// pattern without a slash matches the path's base name, so "*.lock" matches
// "sub/Cargo.lock". Malformed patterns return path.ErrBadPattern.
func Match(pattern, p string) (bool, error) {
	pattern = strings.TrimPrefix(pattern, "/")
	if !strings.Contains(pattern, "/") && !strings.Contains(pattern, "**") {
		return path.Match(pattern, path.Base(p))
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(p, "/"))
}

func matchSegments(pat, segs []string) (bool, error) {
	for len(pat) > 0 {
		if pat[0] == "**" {
			// collapse consecutive ** segments
			rest := pat[1:]
			for len(rest) > 0 && rest[0] == "**" {
				rest = rest[1:]
			}
			if len(rest) == 0 {
				return true, nil
			}
			for i := 0; i <= len(segs); i++ {
				ok, err := matchSegments(rest, segs[i:])
				if err != nil || ok {
					return ok, err
				}
			}
			return false, nil
		}
		if len(segs) == 0 {
			return false, nil
		}
		ok, err := path.Match(pat[0], segs[0])
		if err != nil || !ok {
			return ok, err
		}
		pat = pat[1:]
		segs = segs[1:]
	}
	return len(segs) == 0, nil
}
