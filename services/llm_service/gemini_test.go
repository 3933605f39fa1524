package llm_service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nyayasetu/nyayasetu/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		Backoff:     retry.Fixed,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func geminiConfig(url string) map[string]interface{} {
	return map[string]interface{}{
		"api_url": url,
		"api_key": "test-key",
	}
}

func TestGeminiService_CallLLM_Success(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Section 302 prescribes punishment for murder."}]}}]}`))
	}))
	defer srv.Close()

	s := NewGeminiService(testPolicy(), testLogger())
	got, err := s.CallLLM(context.Background(), geminiConfig(srv.URL), "What is Section 302 IPC?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Section 302 prescribes punishment for murder." {
		t.Errorf("unexpected response text: %q", got)
	}
	if requests != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
}

func TestGeminiService_CallLLM_ContentBlockedNotRetried(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	s := NewGeminiService(testPolicy(), testLogger())
	_, err := s.CallLLM(context.Background(), geminiConfig(srv.URL), "blocked prompt")
	if !errors.Is(err, ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
	if requests != 1 {
		t.Errorf("safety blocks must not be retried, got %d requests", requests)
	}
}

func TestGeminiService_CallLLM_SafetyFinishReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"finishReason":"SAFETY"}]}`))
	}))
	defer srv.Close()

	s := NewGeminiService(testPolicy(), testLogger())
	_, err := s.CallLLM(context.Background(), geminiConfig(srv.URL), "edge prompt")
	if !errors.Is(err, ErrContentBlocked) {
		t.Fatalf("expected ErrContentBlocked, got %v", err)
	}
}

func TestGeminiService_CallLLM_RetriesTransientFailure(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"recovered"}]}}]}`))
	}))
	defer srv.Close()

	s := NewGeminiService(testPolicy(), testLogger())
	got, err := s.CallLLM(context.Background(), geminiConfig(srv.URL), "prompt")
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if got != "recovered" {
		t.Errorf("unexpected response text: %q", got)
	}
	if requests != 3 {
		t.Errorf("expected 3 upstream requests, got %d", requests)
	}
}

func TestGeminiService_CallLLM_ExhaustsRetries(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewGeminiService(testPolicy(), testLogger())
	_, err := s.CallLLM(context.Background(), geminiConfig(srv.URL), "prompt")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if requests != 3 {
		t.Errorf("expected 3 upstream requests, got %d", requests)
	}
}
