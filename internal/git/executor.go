package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// StatusEntry is a single line of `git status --porcelain` output.
type StatusEntry struct {
	Path   string
	Staged bool
	// Code is the two-character porcelain state, e.g. " M" or "??".
	Code string
}

// Executor defines the interface for git command execution
type Executor interface {
	// DiffCached returns the diff of staged changes
	DiffCached(ctx context.Context) (string, error)

	// Status returns the parsed porcelain status of the working tree
	Status(ctx context.Context) ([]StatusEntry, error)

	// HasStagedChanges reports whether the index differs from HEAD
	HasStagedChanges(ctx context.Context) (bool, error)

	// Add stages the given paths
	Add(ctx context.Context, paths ...string) error

	// AddAll stages every change in the working tree
	AddAll(ctx context.Context) error

	// Commit executes a git commit with the given message
	Commit(ctx context.Context, message string, author Author) error

	// Push pushes the given branch to the given remote
	Push(ctx context.Context, remote, branch string) error

	// Remotes returns the configured remote names
	Remotes(ctx context.Context) ([]string, error)

	// CurrentBranch returns the current branch name
	CurrentBranch(ctx context.Context) (string, error)

	// CurrentUser returns the current git user name
	CurrentUser(ctx context.Context) (string, error)
}

// Author overrides the committer identity for a single commit. Empty
// fields fall back to the repository's git config.
type Author struct {
	Name  string
	Email string
}

// DefaultExecutor is the default implementation of Executor
type DefaultExecutor struct {
	workDir string
}

// NewExecutor creates a new DefaultExecutor
func NewExecutor(workDir string) *DefaultExecutor {
	return &DefaultExecutor{workDir: workDir}
}

// runGit runs a git command and returns the output
func (e *DefaultExecutor) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = e.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w\n%s", strings.Join(args, " "), err, stderr.String())
	}

	return strings.TrimSpace(stdout.String()), nil
}

// DiffCached returns the diff of staged changes
func (e *DefaultExecutor) DiffCached(ctx context.Context) (string, error) {
	return e.runGit(ctx, "diff", "--cached")
}

// Status returns the parsed porcelain status of the working tree
func (e *DefaultExecutor) Status(ctx context.Context) ([]StatusEntry, error) {
	output, err := e.runGit(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(output), nil
}

// parsePorcelain splits `git status --porcelain` output into entries.
// Each line is "XY path" where X is the index state and Y the worktree
// state. Renames carry "old -> new"; only the new path is kept.
func parsePorcelain(output string) []StatusEntry {
	var entries []StatusEntry
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := strings.TrimSpace(line[3:])
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		entries = append(entries, StatusEntry{
			Path:   path,
			Staged: code[0] != ' ' && code[0] != '?',
			Code:   code,
		})
	}
	return entries
}

// HasStagedChanges reports whether the index differs from HEAD
func (e *DefaultExecutor) HasStagedChanges(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	cmd.Dir = e.workDir

	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("git diff --cached --quiet failed: %w", err)
}

// Add stages the given paths
func (e *DefaultExecutor) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := e.runGit(ctx, args...)
	return err
}

// AddAll stages every change in the working tree
func (e *DefaultExecutor) AddAll(ctx context.Context) error {
	_, err := e.runGit(ctx, "add", "-A")
	return err
}

// Commit executes a git commit with the given message
func (e *DefaultExecutor) Commit(ctx context.Context, message string, author Author) error {
	args := []string{}
	if author.Name != "" {
		args = append(args, "-c", "user.name="+author.Name)
	}
	if author.Email != "" {
		args = append(args, "-c", "user.email="+author.Email)
	}
	args = append(args, "commit", "-m", message)
	_, err := e.runGit(ctx, args...)
	return err
}

// Push pushes the given branch to the given remote
func (e *DefaultExecutor) Push(ctx context.Context, remote, branch string) error {
	_, err := e.runGit(ctx, "push", remote, branch)
	return err
}

// Remotes returns the configured remote names
func (e *DefaultExecutor) Remotes(ctx context.Context) ([]string, error) {
	output, err := e.runGit(ctx, "remote")
	if err != nil {
		return nil, err
	}
	if output == "" {
		return nil, nil
	}
	return strings.Split(output, "\n"), nil
}

// CurrentBranch returns the current branch name
func (e *DefaultExecutor) CurrentBranch(ctx context.Context) (string, error) {
	return e.runGit(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// CurrentUser returns the current git user name
func (e *DefaultExecutor) CurrentUser(ctx context.Context) (string, error) {
	return e.runGit(ctx, "config", "user.name")
}
