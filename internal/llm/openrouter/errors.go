package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/HerbHall/orq/pkg/llm"
)

// statusError represents a non-success HTTP response from OpenRouter. Its
// text names only the status; mapError carries Message separately.
type statusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("openrouter: status %d", e.StatusCode)
}

// apiError is the error object OpenRouter embeds in response bodies and
// stream events.
type apiError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// upstreamError converts an error object found in a successful response.
func upstreamError(e *apiError) error {
	msg := e.Message
	if msg == "" {
		msg = "upstream returned an error without a message"
	}
	return llm.NewProviderError(llm.ErrCodeUpstream, msg, nil)
}

// mapError translates OpenRouter and network errors into typed llm.ProviderError values.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out or cancelled", err)
	}

	var se *statusError
	if errors.As(err, &se) {
		lower := strings.ToLower(se.Message)
		switch {
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			return llm.NewProviderError(llm.ErrCodeAuthentication, se.Message, err)
		case se.StatusCode == http.StatusTooManyRequests:
			return llm.NewProviderError(llm.ErrCodeRateLimit, se.Message, err)
		case se.StatusCode == http.StatusRequestTimeout:
			return llm.NewProviderError(llm.ErrCodeTimeout, se.Message, err)
		case se.StatusCode == http.StatusNotFound && strings.Contains(lower, "model"):
			return llm.NewProviderError(llm.ErrCodeModelNotFound, se.Message, err)
		case strings.Contains(lower, "context length"):
			return llm.NewProviderError(llm.ErrCodeContextLength, se.Message, err)
		case se.StatusCode >= 500:
			return llm.NewProviderError(llm.ErrCodeServerError, se.Message, err)
		default:
			return llm.NewProviderError(llm.ErrCodeInvalidRequest, se.Message, err)
		}
	}

	// Client.Timeout surfaces as a url.Error that is not a context error.
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return llm.NewProviderError(llm.ErrCodeTimeout, "request timed out", err)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return llm.NewProviderError(llm.ErrCodeServerError, "openrouter unreachable", err)
	}

	return llm.NewProviderError(llm.ErrCodeServerError, "openrouter error", err)
}

// parseStatusError reads an error response body.
func parseStatusError(resp *http.Response) *statusError {
	var errResp struct {
		Error apiError `json:"error"`
	}

	// Read a limited amount to avoid unbounded reads.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || json.Unmarshal(raw, &errResp) != nil {
		return &statusError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	msg := errResp.Error.Message
	if msg == "" {
		msg = resp.Status
	}
	var code string
	if errResp.Error.Code != nil {
		code = fmt.Sprint(errResp.Error.Code)
	}
	return &statusError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    msg,
	}
}
