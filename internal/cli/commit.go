package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huimingz/autocommit-go/internal/config"
	"github.com/huimingz/autocommit-go/internal/diff"
	"github.com/huimingz/autocommit-go/internal/git"
	"github.com/huimingz/autocommit-go/internal/ignore"
	"github.com/huimingz/autocommit-go/internal/llm"
	"github.com/huimingz/autocommit-go/internal/log"
	"github.com/huimingz/autocommit-go/internal/pipeline"
	"github.com/huimingz/autocommit-go/internal/ui"
)

var (
	commitContext  string
	commitLanguage string
	commitAutoYes  bool
	commitPush     bool
)

func init() {
	rootCmd.Flags().StringVarP(&commitContext, "context", "c", "", "Additional context to help generate a better message")
	rootCmd.Flags().StringVarP(&commitLanguage, "language", "l", "", "Output language (en, zh, ja, etc.)")
	rootCmd.Flags().BoolVarP(&commitAutoYes, "yes", "y", false, "Auto-confirm the commit without prompting")
	rootCmd.Flags().BoolVarP(&commitPush, "push", "p", false, "Push to the remote after committing")
}

func runCommit(cmd *cobra.Command, args []string) error {
	ctx, stop := withInterrupt(context.Background())
	defer stop()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.DebugConfig("Configuration", cfg)

	gen, err := cfg.ResolveGeneration(modelName, commitLanguage)
	if err != nil {
		return err
	}

	log.Debug("Using model: %s (provider: %s)", gen.Model, gen.Provider)
	log.Debug("Using language: %s", gen.Language)

	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	gitExec := git.NewExecutor(cwd)

	rawDiff, err := stagedDiff(ctx, gitExec)
	if err != nil {
		return err
	}
	if rawDiff == "" {
		fmt.Println("No changes to commit.")
		return nil
	}

	changes, err := diff.Parse(rawDiff)
	if err != nil {
		return fmt.Errorf("failed to parse staged diff: %w", err)
	}

	patterns, err := ignore.LoadFile(cwd)
	if err != nil {
		return fmt.Errorf("failed to read ignore file: %w", err)
	}

	var opts []pipeline.Option
	if commitContext != "" {
		opts = append(opts, pipeline.WithContext(commitContext))
	}

	for {
		msg, err := pipeline.GenerateCommitMessage(ctx, changes, patterns, gen, opts...)
		if err != nil {
			return describeGenerationError(err)
		}

		commitMessage := msg.String()
		if err := ui.ShowCommitMessage(commitMessage, os.Stdout); err != nil {
			return err
		}

		if !commitAutoYes {
			action, err := ui.SelectOption("\nWhat next?",
				[]string{"Commit with this message", "Regenerate", "Abort"},
				0, os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			switch action {
			case 1:
				continue
			case 2:
				fmt.Println("Commit cancelled.")
				return nil
			}
		}

		author := git.Author{Name: gen.Name, Email: gen.Email}
		if err := gitExec.Commit(ctx, commitMessage, author); err != nil {
			return fmt.Errorf("failed to commit: %w", err)
		}
		fmt.Println("\n✅ Commit created successfully!")

		return maybePush(ctx, gitExec)
	}
}

// stagedDiff returns the staged diff, offering interactive staging when
// the index is empty but the working tree has changes.
func stagedDiff(ctx context.Context, gitExec git.Executor) (string, error) {
	rawDiff, err := gitExec.DiffCached(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get staged changes: %w", err)
	}
	if rawDiff != "" {
		return rawDiff, nil
	}

	entries, err := gitExec.Status(ctx)
	if err != nil {
		return "", err
	}

	var unstaged []string
	for _, e := range entries {
		if !e.Staged {
			unstaged = append(unstaged, e.Path)
		}
	}
	if len(unstaged) == 0 {
		return "", nil
	}

	fmt.Println("No staged changes found.")
	indices, err := ui.MultiSelect("Stage which files?", unstaged, os.Stdin, os.Stdout)
	if err != nil {
		return "", err
	}

	paths := make([]string, 0, len(indices))
	for _, i := range indices {
		paths = append(paths, unstaged[i])
	}
	if err := gitExec.Add(ctx, paths...); err != nil {
		return "", fmt.Errorf("failed to stage files: %w", err)
	}

	return gitExec.DiffCached(ctx)
}

// maybePush offers to push the commit when a remote is configured.
func maybePush(ctx context.Context, gitExec git.Executor) error {
	remotes, err := gitExec.Remotes(ctx)
	if err != nil || len(remotes) == 0 {
		return nil
	}

	remote := remotes[0]
	if len(remotes) > 1 && !commitAutoYes {
		idx, err := ui.SelectOption("Push to which remote?", remotes, 0, os.Stdin, os.Stdout)
		if err != nil {
			return nil
		}
		remote = remotes[idx]
	}

	if !commitPush {
		if commitAutoYes {
			return nil
		}
		confirmed, err := ui.Confirm(fmt.Sprintf("Push to %s?", remote), os.Stdin, os.Stdout)
		if err != nil || !confirmed {
			return nil
		}
	}

	branch, err := gitExec.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if err := gitExec.Push(ctx, remote, branch); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	fmt.Printf("✅ Pushed %s to %s\n", branch, remote)
	return nil
}

// describeGenerationError gives pipeline failures a friendlier wording.
func describeGenerationError(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrAllIgnored):
		return fmt.Errorf("every staged file matches an ignore pattern; adjust %s to proceed", ignore.DefaultFileName)
	case errors.Is(err, pipeline.ErrNoChanges):
		return errors.New("no changes to generate a commit message from")
	}

	var authErr *llm.AuthError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%w\nCheck the api_key setting for your model", authErr)
	}

	var exhausted *llm.ExhaustedError
	if errors.As(err, &exhausted) {
		return fmt.Errorf("%w\nThe service kept failing; try again later", exhausted)
	}

	return fmt.Errorf("failed to generate commit message: %w", err)
}
