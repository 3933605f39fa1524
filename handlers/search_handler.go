package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nyayasetu/nyayasetu/services/rag_service"
)

// SearchRequest is a direct knowledge-base query, used by the admin frontend
// to inspect what the chatbot would retrieve.
// Threshold is a pointer so an explicit 0 (no score filter) is
// distinguishable from the field being absent.
type SearchRequest struct {
	Query     string   `json:"query"`
	Limit     int      `json:"limit"`
	Threshold *float64 `json:"threshold"`
}

type SearchResult struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Section string  `json:"section"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type SearchResponse struct {
	Documents []SearchResult `json:"documents"`
	Count     int            `json:"count"`
}

// SearchHandler handles document similarity search requests
type SearchHandler struct {
	embedder rag_service.Embedder
	searcher rag_service.Searcher
	logger   *slog.Logger
}

func NewSearchHandler(embedder rag_service.Embedder, searcher rag_service.Searcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
	}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode search request",
			slog.String("error", err.Error()))
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validateRequest(&req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	embedding, err := h.embedder.Embed(r.Context(), req.Query)
	if err != nil {
		h.logger.Error("Failed to embed search query",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to process search query", http.StatusInternalServerError)
		return
	}

	documents, err := h.searcher.Search(r.Context(), embedding, req.Limit, *req.Threshold)
	if err != nil {
		h.logger.Error("Knowledge base search failed",
			slog.String("error", err.Error()))
		writeJSONError(w, "Search failed", http.StatusInternalServerError)
		return
	}

	results := make([]SearchResult, 0, len(documents))
	for _, doc := range documents {
		results = append(results, SearchResult{
			ID:      doc.ID,
			Title:   doc.Metadata["title"],
			Section: doc.Metadata["section"],
			Content: doc.Text,
			Score:   doc.Score,
		})
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Documents: results,
		Count:     len(results),
	})
}

func (h *SearchHandler) validateRequest(req *SearchRequest) error {
	if req.Query == "" {
		return fmt.Errorf("search query cannot be empty")
	}

	if req.Limit == 0 {
		req.Limit = rag_service.DefaultTopK
	}
	if req.Limit < 1 || req.Limit > 50 {
		return fmt.Errorf("limit must be between 1 and 50")
	}

	if req.Threshold == nil {
		def := rag_service.DefaultMinScore
		req.Threshold = &def
	}
	if *req.Threshold < 0 || *req.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1")
	}

	return nil
}
