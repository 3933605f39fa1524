package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nyayasetu/nyayasetu/services/ingest_service"
)

type ingestURLRequest struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Section string `json:"section"`
}

// IngestURLHandler pulls a bare-act or commentary page into the knowledge
// base.
type IngestURLHandler struct {
	processor *ingest_service.Processor
	logger    *slog.Logger
}

func NewIngestURLHandler(processor *ingest_service.Processor, logger *slog.Logger) *IngestURLHandler {
	return &IngestURLHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *IngestURLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ingestURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		writeJSONError(w, "A valid http(s) url is required", http.StatusBadRequest)
		return
	}

	h.logger.Info("Received URL ingestion request",
		slog.String("url", req.URL),
		slog.String("title", req.Title))

	result, err := h.processor.ProcessURL(r.Context(), req.URL, req.Title, req.Section)
	if err != nil {
		h.logger.Error("URL ingestion failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to ingest page", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
