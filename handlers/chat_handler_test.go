package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nyayasetu/nyayasetu/services/llm_service"
	"github.com/nyayasetu/nyayasetu/services/rag_service"
)

type stubAnswerer struct {
	answer  rag_service.GeneratedAnswer
	err     error
	query   string
	history []rag_service.ConversationTurn
	calls   int
}

func (s *stubAnswerer) Answer(ctx context.Context, query string, history []rag_service.ConversationTurn) (rag_service.GeneratedAnswer, error) {
	s.calls++
	s.query = query
	s.history = history
	if s.err != nil {
		return rag_service.GeneratedAnswer{}, s.err
	}
	return s.answer, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChatHandler_SuccessEnvelope(t *testing.T) {
	stub := &stubAnswerer{
		answer: rag_service.GeneratedAnswer{
			Answer:     "Section 302 IPC prescribes the punishment for murder.",
			Sources:    []string{"IPC - 302"},
			Confidence: 0.85,
		},
	}
	h := NewChatHandler(stub, "development", testLogger())

	rec := postChat(t, h, `{"messages":[{"role":"user","content":"What is Section 302 IPC?"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp rag_service.GeneratedAnswer
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Answer == "" {
		t.Error("expected non-empty answer")
	}
	if resp.Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %v", resp.Confidence)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "IPC - 302" {
		t.Errorf(`expected sources ["IPC - 302"], got %v`, resp.Sources)
	}
	if stub.query != "What is Section 302 IPC?" {
		t.Errorf("unexpected query passed to pipeline: %q", stub.query)
	}
}

func TestChatHandler_EmptyMessages(t *testing.T) {
	stub := &stubAnswerer{}
	h := NewChatHandler(stub, "development", testLogger())

	rec := postChat(t, h, `{"messages":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Error != "Messages are required" {
		t.Errorf(`expected error "Messages are required", got %q`, resp.Error)
	}
	if stub.calls != 0 {
		t.Error("pipeline must not be called for empty messages")
	}
}

func TestChatHandler_MissingMessagesField(t *testing.T) {
	h := NewChatHandler(&stubAnswerer{}, "development", testLogger())
	rec := postChat(t, h, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatHandler_LastMessageNotUser(t *testing.T) {
	h := NewChatHandler(&stubAnswerer{}, "development", testLogger())
	rec := postChat(t, h, `{"messages":[{"role":"assistant","content":"hello"}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatHandler_HistorySplitAndRoleNormalization(t *testing.T) {
	stub := &stubAnswerer{answer: rag_service.GeneratedAnswer{Answer: "a", Sources: []string{}}}
	h := NewChatHandler(stub, "development", testLogger())

	postChat(t, h, `{"messages":[
		{"role":"user","content":"one"},
		{"role":"model","content":"two"},
		{"role":"user","content":"three"}
	]}`)

	if len(stub.history) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(stub.history))
	}
	if stub.history[0].Role != rag_service.RoleUser {
		t.Errorf("expected first turn role user, got %q", stub.history[0].Role)
	}
	if stub.history[1].Role != rag_service.RoleAssistant {
		t.Errorf("expected unknown role normalized to assistant, got %q", stub.history[1].Role)
	}
	if stub.query != "three" {
		t.Errorf("expected last message as query, got %q", stub.query)
	}
}

func TestChatHandler_InvalidInputMapsTo400(t *testing.T) {
	stub := &stubAnswerer{err: fmt.Errorf("%w: query is empty", rag_service.ErrInvalidInput)}
	h := NewChatHandler(stub, "development", testLogger())

	rec := postChat(t, h, `{"messages":[{"role":"user","content":""}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatHandler_ContentBlockedDistinctMessage(t *testing.T) {
	stub := &stubAnswerer{err: fmt.Errorf("generation: %w: SAFETY", llm_service.ErrContentBlocked)}
	h := NewChatHandler(stub, "development", testLogger())

	rec := postChat(t, h, `{"messages":[{"role":"user","content":"blocked question"}]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp errorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.Contains(resp.Error, "safety") {
		t.Errorf("expected a safety-specific message, got %q", resp.Error)
	}
}

func TestChatHandler_GenericFailureEnvelope(t *testing.T) {
	stub := &stubAnswerer{err: errors.New("generation: all 3 attempts failed")}

	t.Run("development exposes details", func(t *testing.T) {
		h := NewChatHandler(stub, "development", testLogger())
		rec := postChat(t, h, `{"messages":[{"role":"user","content":"a question"}]}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		var resp errorResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Details == "" {
			t.Error("expected details outside production")
		}
	})

	t.Run("production hides details", func(t *testing.T) {
		h := NewChatHandler(stub, "production", testLogger())
		rec := postChat(t, h, `{"messages":[{"role":"user","content":"a question"}]}`)
		var resp errorResponse
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Details != "" {
			t.Errorf("expected no details in production, got %q", resp.Details)
		}
	})
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	h := NewChatHandler(&stubAnswerer{}, "development", testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
