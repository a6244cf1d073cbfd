// Package openrouter implements llm.Provider against the OpenRouter
// chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/HerbHall/orq/pkg/llm"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ llm.Provider    = (*Provider)(nil)
	_ llm.Streamer    = (*Provider)(nil)
	_ llm.ModelLister = (*Provider)(nil)
)

// Provider talks to OpenRouter. Each call issues exactly one HTTP request;
// failures are returned to the caller and never retried.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// New creates an OpenRouter provider.
func New(cfg Config, apiKey string, logger *zap.Logger) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter: api key is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("parse openrouter url %q: %w", cfg.URL, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Chat creates a completion from a conversation history and waits for the
// whole answer.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	cfg := llm.ApplyOptions(opts...)
	req, err := p.buildRequest(messages, cfg, false)
	if err != nil {
		return nil, err
	}

	respBody, err := p.doPost(ctx, "/chat/completions", req, cfg.RequestID)
	if err != nil {
		return nil, mapError(err)
	}
	defer respBody.Close()

	var resp chatResponse
	if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
		return nil, mapError(fmt.Errorf("decode chat response: %w", err))
	}
	if resp.Error != nil {
		return nil, upstreamError(resp.Error)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}

	return &llm.Response{
		Content:  content,
		Model:    model,
		Provider: resp.Provider,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Stream creates a completion delivered as server-sent events. The request
// is issued before Stream returns, so connection and status failures are
// reported here; failures while reading arrive through the sequence.
// Callers must range over the returned sequence to release the connection.
func (p *Provider) Stream(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (iter.Seq2[string, error], error) {
	cfg := llm.ApplyOptions(opts...)
	req, err := p.buildRequest(messages, cfg, true)
	if err != nil {
		return nil, err
	}

	respBody, err := p.doPost(ctx, "/chat/completions", req, cfg.RequestID)
	if err != nil {
		return nil, mapError(err)
	}

	logger := p.logger.With(zap.String("request_id", cfg.RequestID))
	return func(yield func(string, error) bool) {
		defer respBody.Close()
		var skipped int
		for fragment, err := range decodeEvents(respBody, func() { skipped++ }) {
			if !yield(fragment, err) {
				break
			}
		}
		if skipped > 0 {
			logger.Debug("skipped malformed stream events", zap.Int("count", skipped))
		}
	}, nil
}

// ListModels returns the model ids OpenRouter currently serves.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", http.NoBody)
	if err != nil {
		return nil, mapError(err)
	}
	p.setHeaders(req, "")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, mapError(parseStatusError(resp))
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	names := make([]string, len(result.Data))
	for i := range result.Data {
		names[i] = result.Data[i].ID
	}
	return names, nil
}

func (p *Provider) buildRequest(messages []llm.Message, cfg llm.CallConfig, stream bool) (*chatRequest, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "messages must not be empty", nil)
	}

	model := cfg.Model
	if model == "" {
		model = p.cfg.Model
	}

	apiMessages := make([]chatMessage, len(messages))
	for i, m := range messages {
		apiMessages[i] = chatMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	req := &chatRequest{
		Model:    model,
		Messages: apiMessages,
		Stream:   stream,
	}
	if len(cfg.ProviderOrder) > 0 {
		req.Provider = &providerPreferences{Order: cfg.ProviderOrder}
	}
	return req, nil
}

// doPost sends an authenticated POST request and returns the response body.
// The caller must close the returned body.
func (p *Provider) doPost(ctx context.Context, path string, payload *chatRequest, requestID string) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	p.setHeaders(req, requestID)
	req.Header.Set("Content-Type", "application/json")
	if payload.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	p.logger.Debug("sending chat request",
		zap.String("request_id", requestID),
		zap.String("model", payload.Model),
		zap.Bool("stream", payload.Stream),
		zap.Int("messages", len(payload.Messages)),
	)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("chat response received",
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, parseStatusError(resp)
	}

	return resp.Body, nil
}

func (p *Provider) setHeaders(req *http.Request, requestID string) {
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}
	if p.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", p.cfg.Referer)
	}
	if p.cfg.Title != "" {
		req.Header.Set("X-Title", p.cfg.Title)
	}
}

// --- OpenRouter REST API types (internal) ---

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []chatMessage        `json:"messages"`
	Stream   bool                 `json:"stream"`
	Provider *providerPreferences `json:"provider,omitempty"`
}

type providerPreferences struct {
	Order []string `json:"order"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID       string    `json:"id"`
	Model    string    `json:"model"`
	Provider string    `json:"provider"`
	Error    *apiError `json:"error"`
	Choices  []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type listResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}
