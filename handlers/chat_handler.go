package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/nyayasetu/nyayasetu/services/llm_service"
	"github.com/nyayasetu/nyayasetu/services/rag_service"
)

// Answerer is the answer pipeline as the handler sees it.
type Answerer interface {
	Answer(ctx context.Context, query string, history []rag_service.ConversationTurn) (rag_service.GeneratedAnswer, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

// ChatHandler serves POST /api/chat. The last message must come from the
// user; everything before it is treated as conversation history.
type ChatHandler struct {
	pipeline    Answerer
	environment string
	logger      *slog.Logger
}

func NewChatHandler(pipeline Answerer, environment string, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		pipeline:    pipeline,
		environment: environment,
		logger:      logger,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.New().String()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Messages) == 0 {
		writeJSONError(w, "Messages are required", http.StatusBadRequest)
		return
	}

	last := req.Messages[len(req.Messages)-1]
	if last.Role != string(rag_service.RoleUser) {
		writeJSONError(w, "Last message must be from the user", http.StatusBadRequest)
		return
	}

	history := make([]rag_service.ConversationTurn, 0, len(req.Messages)-1)
	for _, m := range req.Messages[:len(req.Messages)-1] {
		if m.Role != string(rag_service.RoleUser) && m.Role != string(rag_service.RoleAssistant) {
			h.logger.Warn("Normalizing unknown message role to assistant",
				slog.String("request_id", requestID),
				slog.String("role", m.Role))
		}
		history = append(history, rag_service.ConversationTurn{
			Role:    rag_service.ParseRole(m.Role),
			Content: m.Content,
		})
	}

	answer, err := h.pipeline.Answer(r.Context(), last.Content, history)
	if err != nil {
		h.respondError(w, requestID, err)
		return
	}

	h.logger.Info("Chat request served",
		slog.String("request_id", requestID),
		slog.Int("history_turns", len(history)),
		slog.Float64("confidence", answer.Confidence),
		slog.Int("sources", len(answer.Sources)))

	writeJSON(w, http.StatusOK, answer)
}

func (h *ChatHandler) respondError(w http.ResponseWriter, requestID string, err error) {
	switch {
	case errors.Is(err, rag_service.ErrInvalidInput):
		writeJSONError(w, err.Error(), http.StatusBadRequest)

	case errors.Is(err, llm_service.ErrContentBlocked):
		h.logger.Warn("Chat request blocked by safety filter",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "The question was blocked by the content safety filter",
			Details: h.detail(err),
		})

	default:
		h.logger.Error("Chat request failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to generate an answer",
			Details: h.detail(err),
		})
	}
}

// detail exposes the underlying error outside production only.
func (h *ChatHandler) detail(err error) string {
	if h.environment == "production" {
		return ""
	}
	return err.Error()
}
