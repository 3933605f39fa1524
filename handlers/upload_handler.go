package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nyayasetu/nyayasetu/services/ingest_service"
)

// UploadHandler ingests statute and case-law files (PDF, DOC, DOCX) into the
// knowledge base.
type UploadHandler struct {
	processor *ingest_service.Processor
	logger    *slog.Logger
}

func NewUploadHandler(processor *ingest_service.Processor, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := r.ParseMultipartForm(10 << 20) // 10 MB limit
	if err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	title := r.FormValue("title")
	section := r.FormValue("section")

	h.logger.Info("Received document upload",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("title", title))

	result, err := h.processor.ProcessFile(r.Context(), header.Filename, title, section, buf.Bytes())
	if err != nil {
		if strings.Contains(err.Error(), "unsupported file type") {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Document ingestion failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to ingest document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
