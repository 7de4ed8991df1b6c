package llm

import "fmt"

// AuthError marks an authentication or authorization failure from the
// generation service. Never retried.
type AuthError struct {
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("generation service rejected credentials: %v", e.Cause)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// ExhaustedError is returned after the retry budget is spent on transient
// failures. It carries the last underlying cause.
type ExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}
