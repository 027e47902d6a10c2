package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kradenko/rag-assistant/internal/infrastructure/resilience"
)

func noRetryExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		MaxAttempts:    1,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	})
}

func TestChatExtractsCandidateText(t *testing.T) {
	var capturedPath, capturedKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedKey = r.Header.Get("x-goog-api-key")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello "},{"text":"world"}]}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "secret", "gemini-2.5-flash", "text-embedding-004", noRetryExecutor())
	answer, err := client.Chat(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if answer != "hello world" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if capturedPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("unexpected path %q", capturedPath)
	}
	if capturedKey != "secret" {
		t.Fatalf("api key header missing, got %q", capturedKey)
	}
}

func TestChatEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "k", "gen", "embed", noRetryExecutor())
	if _, err := client.Chat(context.Background(), "q"); err == nil {
		t.Fatalf("expected error for empty candidates")
	}
}

func TestEmbedBatchesOneRequestPerCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var payload struct {
			Requests []json.RawMessage `json:"requests"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(payload.Requests) != 3 {
			t.Fatalf("expected 3 batched requests, got %d", len(payload.Requests))
		}
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[1,0]},{"values":[0,1]},{"values":[1,1]}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "k", "gen", "embed", noRetryExecutor())
	vectors, err := client.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one round-trip, got %d", calls)
	}
	if len(vectors) != 3 || len(vectors[0]) != 2 {
		t.Fatalf("unexpected vectors %v", vectors)
	}
}

func TestErrorIncludesResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "API key not valid", http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(server.URL, "bad", "gen", "embed", noRetryExecutor())
	_, err := client.Embed(context.Background(), []string{"x"})
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[1]}]}`))
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	})
	client := New(server.URL, "k", "gen", "embed", exec)
	if _, err := client.EmbedQuery(context.Background(), "x"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}
