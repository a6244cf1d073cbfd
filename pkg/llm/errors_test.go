package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ProviderError
		want string
	}{
		{"message only", NewProviderError(ErrCodeUpstream, "no credits", nil), "no credits"},
		{"wrapped", NewProviderError(ErrCodeTimeout, "request timed out", context.DeadlineExceeded), "request timed out: context deadline exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	err := fmt.Errorf("chat: %w", NewProviderError(ErrCodeTimeout, "cancelled", context.Canceled))
	if !errors.Is(err, context.Canceled) {
		t.Error("errors.Is(err, context.Canceled) = false, want true")
	}
	if !IsTimeoutError(err) {
		t.Error("IsTimeoutError() = false through wrapping, want true")
	}
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		check     func(error) bool
		retryable bool
	}{
		{ErrCodeAuthentication, IsAuthenticationError, false},
		{ErrCodeRateLimit, IsRateLimitError, true},
		{ErrCodeModelNotFound, IsModelNotFoundError, false},
		{ErrCodeContextLength, IsContextLengthError, false},
		{ErrCodeServerError, IsTransportError, true},
		{ErrCodeInvalidRequest, IsTransportError, false},
		{ErrCodeTimeout, IsTimeoutError, true},
		{ErrCodeUpstream, IsUpstreamError, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := NewProviderError(tt.code, "x", nil)
			if !tt.check(err) {
				t.Errorf("classifier rejected code %q", tt.code)
			}
			if got := IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := IsTransportError(err); got == (tt.code == ErrCodeUpstream) {
				t.Errorf("IsTransportError() = %v for code %q", got, tt.code)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("stream: %w", NewProviderError(ErrCodeRateLimit, "slow down", nil))
	if got := CodeOf(wrapped); got != ErrCodeRateLimit {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, ErrCodeRateLimit)
	}

	plain := errors.New("writing output: closed pipe")
	if got := CodeOf(plain); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
	if IsUpstreamError(plain) || IsTransportError(plain) {
		t.Error("plain error classified as a provider failure")
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(WithModel("a/b"), WithProviderOrder([]string{"x", "y"}))
	if cfg.Model != "a/b" {
		t.Errorf("Model = %q, want %q", cfg.Model, "a/b")
	}
	if len(cfg.ProviderOrder) != 2 || cfg.ProviderOrder[0] != "x" {
		t.Errorf("ProviderOrder = %v, want [x y]", cfg.ProviderOrder)
	}

	if empty := ApplyOptions(); empty.Model != "" || empty.ProviderOrder != nil {
		t.Errorf("ApplyOptions() = %+v, want zero value", empty)
	}
}
