package llm

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrorType represents the classification of an error for retry purposes
type ErrorType int

const (
	// ErrorTypeRetryable indicates the error is transient and can be retried
	ErrorTypeRetryable ErrorType = iota
	// ErrorTypeNonRetryable indicates the error is permanent and should not be retried
	ErrorTypeNonRetryable
	// ErrorTypeAuth indicates the credentials were rejected (permanent, surfaced distinctly)
	ErrorTypeAuth
	// ErrorTypeUnknown indicates the error type is unknown (conservative: don't retry)
	ErrorTypeUnknown
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeRetryable:
		return "Retryable"
	case ErrorTypeNonRetryable:
		return "NonRetryable"
	case ErrorTypeAuth:
		return "Auth"
	default:
		return "Unknown"
	}
}

// HTTPStatusError is an interface for errors that have HTTP status codes
type HTTPStatusError interface {
	error
	HTTPStatusCode() int
}

// ClassifyError determines if an error is retryable based on its type and content
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeNonRetryable
	}

	// Context cancellation (user interrupted) is never retried
	if errors.Is(err, context.Canceled) {
		return ErrorTypeNonRetryable
	}

	// Timeouts are transient
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeRetryable
	}

	// Network errors
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrorTypeRetryable
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorTypeRetryable
	}

	// HTTP status errors
	if statusErr, ok := err.(HTTPStatusError); ok {
		return classifyHTTPStatus(statusErr.HTTPStatusCode())
	}

	type httpError interface {
		error
		StatusCode() int
	}
	if httpErr, ok := err.(httpError); ok {
		return classifyHTTPStatus(httpErr.StatusCode())
	}

	errMsg := strings.ToLower(err.Error())

	// Credential problems reported only in the message body
	authKeywords := []string{
		"unauthorized",
		"invalid api key",
		"incorrect api key",
		"authentication",
		"permission denied",
	}
	for _, keyword := range authKeywords {
		if strings.Contains(errMsg, keyword) {
			return ErrorTypeAuth
		}
	}

	// Context length issues cannot be fixed by retrying
	contextKeywords := []string{
		"context length",
		"context_length",
		"maximum context",
		"token limit",
		"tokens exceeded",
	}
	for _, keyword := range contextKeywords {
		if strings.Contains(errMsg, keyword) {
			return ErrorTypeNonRetryable
		}
	}

	if strings.Contains(errMsg, "rate limit") {
		return ErrorTypeRetryable
	}

	if strings.Contains(errMsg, "timeout") {
		return ErrorTypeRetryable
	}

	// Conservative approach: unknown errors are not retried
	return ErrorTypeUnknown
}

// classifyHTTPStatus classifies HTTP status codes
func classifyHTTPStatus(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return ErrorTypeRetryable
	case http.StatusServiceUnavailable: // 503
		return ErrorTypeRetryable
	case http.StatusBadGateway: // 502
		return ErrorTypeRetryable
	case http.StatusGatewayTimeout: // 504
		return ErrorTypeRetryable
	case http.StatusUnauthorized: // 401
		return ErrorTypeAuth
	case http.StatusForbidden: // 403
		return ErrorTypeAuth
	case http.StatusBadRequest: // 400
		return ErrorTypeNonRetryable
	case http.StatusNotFound: // 404
		return ErrorTypeNonRetryable
	default:
		if statusCode >= 500 {
			return ErrorTypeRetryable // Server errors are generally retryable
		}
		if statusCode >= 400 {
			return ErrorTypeNonRetryable // Client errors are not retryable
		}
		return ErrorTypeUnknown
	}
}

// CalculateBackoff calculates the backoff duration for a retry attempt using
// exponential backoff: min(base * 2^(attempt-1), max), plus up to jitterFrac
// of random jitter so repeated failures don't synchronize.
func CalculateBackoff(attempt int, base, max, jitterFrac float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	backoff := base * math.Pow(2, float64(attempt-1))
	if backoff > max {
		backoff = max
	}

	if jitterFrac > 0 {
		backoff += backoff * jitterFrac * rand.Float64()
	}

	return time.Duration(backoff * float64(time.Second))
}

// RetryConfig holds configuration for retry behavior
type RetryConfig struct {
	MaxRetries  int     // Retries after the first attempt (0 = try once)
	BackoffBase float64 // Base backoff duration in seconds
	BackoffMax  float64 // Maximum backoff duration in seconds
	JitterFrac  float64 // Fraction of jitter added to each backoff
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BackoffBase: 1.0,
		BackoffMax:  8.0,
		JitterFrac:  0.1,
	}
}

// Validate validates the retry configuration
func (c *RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("max_retries must be non-negative")
	}
	if c.BackoffBase < 0 {
		return errors.New("backoff_base must be non-negative")
	}
	if c.BackoffMax < c.BackoffBase {
		return errors.New("backoff_max must be greater than or equal to backoff_base")
	}
	return nil
}
