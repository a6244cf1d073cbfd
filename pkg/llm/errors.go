package llm

import "errors"

// ErrorCode classifies a ProviderError. Providers translate their native
// failures into one of these.
type ErrorCode string

const (
	ErrCodeAuthentication ErrorCode = "authentication_error"
	ErrCodeRateLimit      ErrorCode = "rate_limit_exceeded"
	ErrCodeModelNotFound  ErrorCode = "model_not_found"
	ErrCodeInvalidRequest ErrorCode = "invalid_request"
	ErrCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrCodeServerError    ErrorCode = "server_error"
	ErrCodeTimeout        ErrorCode = "timeout"

	// ErrCodeUpstream marks an error object delivered inside a response
	// that was otherwise transported successfully. Every other code
	// describes a failure to obtain a response at all.
	ErrCodeUpstream ErrorCode = "upstream_error"
)

// ProviderError is a classified failure returned by a Provider.
type ProviderError struct {
	Code    ErrorCode
	Message string
	Err     error // may be nil
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError creates a typed provider error.
func NewProviderError(code ErrorCode, message string, err error) *ProviderError {
	return &ProviderError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first ProviderError in err's chain, or ""
// if there is none.
func CodeOf(err error) ErrorCode {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsUpstreamError reports whether err carries an error object the service
// returned in an otherwise successful response.
func IsUpstreamError(err error) bool { return CodeOf(err) == ErrCodeUpstream }

// IsTransportError reports whether err is a provider failure to deliver a
// response: a connection problem, a timeout or a non-success status.
func IsTransportError(err error) bool {
	code := CodeOf(err)
	return code != "" && code != ErrCodeUpstream
}

func IsAuthenticationError(err error) bool { return CodeOf(err) == ErrCodeAuthentication }
func IsRateLimitError(err error) bool      { return CodeOf(err) == ErrCodeRateLimit }
func IsModelNotFoundError(err error) bool  { return CodeOf(err) == ErrCodeModelNotFound }
func IsContextLengthError(err error) bool  { return CodeOf(err) == ErrCodeContextLength }
func IsTimeoutError(err error) bool        { return CodeOf(err) == ErrCodeTimeout }

// IsRetryable reports whether an identical request might succeed later.
// orq never retries on its own.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeRateLimit, ErrCodeServerError, ErrCodeTimeout:
		return true
	}
	return false
}
