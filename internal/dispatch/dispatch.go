// Package dispatch sends a single prompt to an llm.Provider and renders the
// answer, either all at once or fragment by fragment as it streams in.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/HerbHall/orq/pkg/llm"
	"go.uber.org/zap"
)

// Request is one prompt to send. It is built once from the command line
// and configuration and never modified.
type Request struct {
	Model         string
	SystemPrompt  string // Omitted from the conversation when empty.
	Prompt        string
	Stream        bool
	ProviderOrder []string
	RequestID     string
}

// Messages returns the conversation for r: the system message when one is
// set, then the user prompt.
func (r Request) Messages() []llm.Message {
	msgs := make([]llm.Message, 0, 2)
	if r.SystemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: r.SystemPrompt})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: r.Prompt})
}

// Result summarizes a completed request.
type Result struct {
	Model    string
	Streamed bool
	Elapsed  time.Duration

	// Only set for non-streaming requests.
	Provider         string
	CompletionTokens int
}

// TokensPerSecond returns completion tokens divided by elapsed seconds,
// or 0 when no time has elapsed.
func (r Result) TokensPerSecond() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.CompletionTokens) / secs
}

// Footer renders the metadata line printed after the answer.
func (r Result) Footer() string {
	elapsed := r.Elapsed.Round(10 * time.Millisecond)
	if r.Streamed {
		return fmt.Sprintf("[%s | %s]", r.Model, elapsed)
	}
	provider := r.Provider
	if provider == "" {
		provider = "unknown"
	}
	return fmt.Sprintf("[%s | %s | %s | %.1f tok/s]", r.Model, elapsed, provider, r.TokensPerSecond())
}

// Dispatcher sends requests through a provider and writes answers to out.
type Dispatcher struct {
	provider llm.Provider
	out      io.Writer
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Dispatcher.
func New(provider llm.Provider, out io.Writer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		provider: provider,
		out:      out,
		logger:   logger,
		now:      time.Now,
	}
}

// Send issues req and writes the answer to the dispatcher's output. In
// streaming mode each fragment is written as soon as it arrives. On error
// the returned Result is nil; text already streamed stays written.
func (d *Dispatcher) Send(ctx context.Context, req Request) (*Result, error) {
	opts := []llm.CallOption{
		llm.WithModel(req.Model),
		llm.WithProviderOrder(req.ProviderOrder),
		llm.WithRequestID(req.RequestID),
	}

	start := d.now()
	if req.Stream {
		if err := d.stream(ctx, req, opts); err != nil {
			return nil, err
		}
		res := &Result{Model: req.Model, Streamed: true, Elapsed: d.now().Sub(start)}
		d.logger.Debug("stream finished", zap.Duration("elapsed", res.Elapsed))
		return res, nil
	}

	resp, err := d.provider.Chat(ctx, req.Messages(), opts...)
	if err != nil {
		return nil, err
	}
	elapsed := d.now().Sub(start)

	if err := d.write(resp.Content); err != nil {
		return nil, err
	}
	if err := d.terminateLine(resp.Content); err != nil {
		return nil, err
	}

	res := &Result{
		Model:            req.Model,
		Elapsed:          elapsed,
		Provider:         resp.Provider,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	d.logger.Debug("chat finished",
		zap.Duration("elapsed", res.Elapsed),
		zap.String("provider", res.Provider),
		zap.Int("completion_tokens", res.CompletionTokens),
	)
	return res, nil
}

func (d *Dispatcher) stream(ctx context.Context, req Request, opts []llm.CallOption) error {
	s, ok := d.provider.(llm.Streamer)
	if !ok {
		return errors.New("provider does not support streaming")
	}

	seq, err := s.Stream(ctx, req.Messages(), opts...)
	if err != nil {
		return err
	}

	var last string
	for fragment, err := range seq {
		if err != nil {
			return err
		}
		if err := d.write(fragment); err != nil {
			return err
		}
		last = fragment
	}
	return d.terminateLine(last)
}

// ListModels writes the provider's model ids to the output, one per line.
func (d *Dispatcher) ListModels(ctx context.Context) error {
	ml, ok := d.provider.(llm.ModelLister)
	if !ok {
		return errors.New("provider cannot list models")
	}
	models, err := ml.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		if err := d.write(m + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) write(s string) error {
	if _, err := io.WriteString(d.out, s); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// terminateLine ends the answer with a newline unless last already does.
func (d *Dispatcher) terminateLine(last string) error {
	if last == "" || strings.HasSuffix(last, "\n") {
		return nil
	}
	return d.write("\n")
}
