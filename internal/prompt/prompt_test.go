package prompt

import (
	"strings"
	"testing"

	"github.com/huimingz/autocommit-go/internal/chunk"
	"github.com/huimingz/autocommit-go/internal/config"
	"github.com/huimingz/autocommit-go/internal/diff"
)

func testChunk() chunk.Chunk {
	return chunk.Chunk{
		Changes: []diff.FileChange{
			{Path: "internal/server.go", Kind: diff.Modified, Patch: "@@ -1 +1 @@\n-old\n+new"},
			{Path: "docs/api.md", Kind: diff.Added, Patch: "@@ -0,0 +1 @@\n+# API"},
		},
	}
}

func TestBuild_deterministic(t *testing.T) {
	b := NewBuilder(WithContext("refactoring session"))
	gen := config.Generation{Description: true, Emoji: true, Language: "en"}

	first, err := b.Build(testChunk(), gen)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := b.Build(testChunk(), gen)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if first.System != second.System {
		t.Error("system prompts differ between identical builds")
	}
	if first.User != second.User {
		t.Error("user prompts differ between identical builds")
	}
}

func TestBuild_rendersAllChanges(t *testing.T) {
	b := NewBuilder()
	p, err := b.Build(testChunk(), config.Generation{Language: "en"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, want := range []string{
		"### internal/server.go (modified)",
		"### docs/api.md (added)",
		"```diff",
		"-old",
		"+# API",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestBuild_configDirectives(t *testing.T) {
	b := NewBuilder()
	c := testChunk()

	withEmoji, err := b.Build(c, config.Generation{Emoji: true, Description: true, Language: "en"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(withEmoji.System, "GitMoji") {
		t.Error("emoji-enabled prompt missing GitMoji directive")
	}

	plain, err := b.Build(c, config.Generation{Emoji: false, Description: false, Language: "en"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(plain.System, "GitMoji") {
		t.Error("emoji-disabled prompt contains GitMoji directive")
	}
	if !strings.Contains(plain.System, "do not add a body") {
		t.Error("description-disabled prompt missing no-body directive")
	}
}

func TestBuild_language(t *testing.T) {
	b := NewBuilder()
	p, err := b.Build(testChunk(), config.Generation{Language: "ja"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.System, "Japanese") {
		t.Error("system prompt missing target language name")
	}
}

func TestBuild_context(t *testing.T) {
	with := NewBuilder(WithContext("fixes login bug"))
	p, err := with.Build(testChunk(), config.Generation{Language: "en"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.System, "fixes login bug") {
		t.Error("system prompt missing developer context")
	}

	without := NewBuilder()
	p, err = without.Build(testChunk(), config.Generation{Language: "en"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if strings.Contains(p.System, "Additional Context") {
		t.Error("system prompt has context section without context")
	}
}

func TestBuild_truncationNotice(t *testing.T) {
	b := NewBuilder()
	c := testChunk()
	c.Truncated = true
	p, err := b.Build(c, config.Generation{Language: "en"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.User, "truncated") {
		t.Error("truncated chunk prompt missing truncation notice")
	}
}
