// Package llmtest provides shared contract tests that verify any
// llm.Provider implementation behaves correctly. Every provider's test
// file should call TestProviderContract to ensure conformance.
//
// The factory may point at a live service or at an httptest mock; the
// contract only relies on the mock answering "What is 2+2?" with text that
// contains "4".
package llmtest

import (
	"context"
	"strings"
	"testing"

	"github.com/HerbHall/orq/pkg/llm"
)

// TestProviderContract runs a suite of behavioral contract tests against
// any llm.Provider implementation. Call this from each provider's _test.go:
//
//	func TestContract(t *testing.T) {
//	    llmtest.TestProviderContract(t, func() llm.Provider { return newTestProvider(t, srv.URL) })
//	}
func TestProviderContract(t *testing.T, factory func() llm.Provider) {
	t.Helper()

	question := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a helpful assistant. Be concise."},
		{Role: llm.RoleUser, Content: "What is 2+2? Reply with just the number."},
	}

	t.Run("Chat_with_conversation_history", func(t *testing.T) {
		p := factory()
		resp, err := p.Chat(context.Background(), question)
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if resp == nil {
			t.Fatal("Chat() returned nil response")
		}
		if !strings.Contains(resp.Content, "4") {
			t.Logf("Chat() response = %q", resp.Content)
			t.Error("expected response to contain '4'")
		}
		if resp.Model == "" {
			t.Error("Response.Model must not be empty")
		}
	})

	t.Run("Chat_cancelled_context", func(t *testing.T) {
		p := factory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := p.Chat(ctx, question); err == nil {
			t.Error("Chat() with cancelled context should return error")
		}
	})

	t.Run("Chat_empty_messages_returns_error", func(t *testing.T) {
		p := factory()
		if _, err := p.Chat(context.Background(), nil); err == nil {
			t.Error("Chat() with nil messages should return error")
		}
	})

	t.Run("Streamer_if_implemented", func(t *testing.T) {
		s, ok := factory().(llm.Streamer)
		if !ok {
			t.Skip("Provider does not implement Streamer")
		}
		seq, err := s.Stream(context.Background(), question)
		if err != nil {
			t.Fatalf("Stream() error = %v", err)
		}
		var sb strings.Builder
		for fragment, err := range seq {
			if err != nil {
				t.Fatalf("stream fragment error = %v", err)
			}
			sb.WriteString(fragment)
		}
		if !strings.Contains(sb.String(), "4") {
			t.Logf("Stream() text = %q", sb.String())
			t.Error("expected streamed text to contain '4'")
		}
	})

	t.Run("ModelLister_if_implemented", func(t *testing.T) {
		ml, ok := factory().(llm.ModelLister)
		if !ok {
			t.Skip("Provider does not implement ModelLister")
		}
		models, err := ml.ListModels(context.Background())
		if err != nil {
			t.Fatalf("ListModels() error = %v", err)
		}
		if len(models) == 0 {
			t.Error("ListModels() returned empty list")
		}
	})
}
