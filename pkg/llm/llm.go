// Package llm provides the public types shared by orq's chat-completion
// backends. Implementations live in internal/llm/{provider}/ adapters.
package llm

import (
	"context"
	"iter"
)

// Provider is the core interface implemented by chat-completion backends.
type Provider interface {
	// Chat sends the conversation and waits for the complete answer.
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error)
}

// Streamer is optionally implemented by providers that can deliver the
// answer incrementally. Detected via type assertion.
type Streamer interface {
	// Stream sends the conversation and returns the answer as a lazy
	// sequence of text fragments. Iteration ends at the end-of-stream
	// marker, at the end of the body, or after the first non-nil error.
	// The response body is released when iteration stops.
	Stream(ctx context.Context, messages []Message, opts ...CallOption) (iter.Seq2[string, error], error)
}

// ModelLister is optionally implemented by providers that can enumerate
// the models they serve.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// CallOption configures a single Chat or Stream call.
type CallOption func(*CallConfig)

// CallConfig holds the resolved configuration for a single call.
// Users interact through CallOption functions, not this struct directly.
type CallConfig struct {
	Model         string
	ProviderOrder []string
	RequestID     string
}

// WithModel sets the model to use for this call, overriding the provider default.
func WithModel(model string) CallOption {
	return func(c *CallConfig) { c.Model = model }
}

// WithProviderOrder sets the preferred upstream providers, most preferred
// first. An empty list leaves routing to the service.
func WithProviderOrder(order []string) CallOption {
	return func(c *CallConfig) { c.ProviderOrder = order }
}

// WithRequestID tags the call with a caller-chosen id that is sent
// upstream and attached to log entries.
func WithRequestID(id string) CallOption {
	return func(c *CallConfig) { c.RequestID = id }
}

// ApplyOptions creates a CallConfig from a list of options.
func ApplyOptions(opts ...CallOption) CallConfig {
	var cfg CallConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
