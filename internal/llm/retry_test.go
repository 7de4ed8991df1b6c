package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"
)

// TestClassifyError_NetworkErrors tests network error classification
func TestClassifyError_NetworkErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{
			name: "network timeout",
			err:  &net.OpError{Op: "dial", Err: errors.New("timeout")},
			want: ErrorTypeRetryable,
		},
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Err: errors.New("connection refused")},
			want: ErrorTypeRetryable,
		},
		{
			name: "DNS error",
			err:  &net.DNSError{Err: "no such host"},
			want: ErrorTypeRetryable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestClassifyError_ContextErrors tests context error classification
func TestClassifyError_ContextErrors(t *testing.T) {
	if got := ClassifyError(context.DeadlineExceeded); got != ErrorTypeRetryable {
		t.Errorf("deadline exceeded = %v, want Retryable", got)
	}
	// User cancellation should not retry
	if got := ClassifyError(context.Canceled); got != ErrorTypeNonRetryable {
		t.Errorf("canceled = %v, want NonRetryable", got)
	}
}

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func TestClassifyError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{http.StatusTooManyRequests, ErrorTypeRetryable},
		{http.StatusBadGateway, ErrorTypeRetryable},
		{http.StatusServiceUnavailable, ErrorTypeRetryable},
		{http.StatusGatewayTimeout, ErrorTypeRetryable},
		{http.StatusInternalServerError, ErrorTypeRetryable},
		{http.StatusUnauthorized, ErrorTypeAuth},
		{http.StatusForbidden, ErrorTypeAuth},
		{http.StatusBadRequest, ErrorTypeNonRetryable},
		{http.StatusNotFound, ErrorTypeNonRetryable},
	}

	for _, tt := range tests {
		err := &HTTPError{Code: tt.code, Message: http.StatusText(tt.code)}
		if got := ClassifyError(err); got != tt.want {
			t.Errorf("ClassifyError(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestClassifyError_Messages(t *testing.T) {
	tests := []struct {
		msg  string
		want ErrorType
	}{
		{"Incorrect API key provided", ErrorTypeAuth},
		{"request unauthorized", ErrorTypeAuth},
		{"maximum context length exceeded", ErrorTypeNonRetryable},
		{"rate limit reached for requests", ErrorTypeRetryable},
		{"client timeout while awaiting headers", ErrorTypeRetryable},
		{"something inscrutable happened", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyError(errors.New(tt.msg)); got != tt.want {
			t.Errorf("ClassifyError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestCalculateBackoff_Exponential(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 8 * time.Second}, // capped
	}

	for _, tt := range tests {
		got := CalculateBackoff(tt.attempt, 1.0, 8.0, 0)
		if got != tt.want {
			t.Errorf("CalculateBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestCalculateBackoff_Jitter(t *testing.T) {
	base := 2 * time.Second
	for i := 0; i < 50; i++ {
		got := CalculateBackoff(2, 1.0, 8.0, 0.1)
		if got < base || got > base+base/10 {
			t.Fatalf("jittered backoff %v outside [%v, %v]", got, base, base+base/10)
		}
	}
}

func TestRetryConfig_Validate(t *testing.T) {
	valid := DefaultRetryConfig()
	if err := valid.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	negative := RetryConfig{MaxRetries: -1, BackoffBase: 1, BackoffMax: 8}
	if err := negative.Validate(); err == nil {
		t.Error("negative max_retries accepted")
	}

	inverted := RetryConfig{MaxRetries: 3, BackoffBase: 8, BackoffMax: 1}
	if err := inverted.Validate(); err == nil {
		t.Error("backoff_max < backoff_base accepted")
	}
}
