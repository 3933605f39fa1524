package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Translator is the translation client as the handler sees it.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type TranslateHandler struct {
	translator Translator
	logger     *slog.Logger
}

func NewTranslateHandler(translator Translator, logger *slog.Logger) *TranslateHandler {
	return &TranslateHandler{
		translator: translator,
		logger:     logger,
	}
}

func (h *TranslateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Text == "" || req.SourceLanguage == "" || req.TargetLanguage == "" {
		writeJSONError(w, "text, source_language and target_language are required", http.StatusBadRequest)
		return
	}

	translated, err := h.translator.Translate(r.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		h.logger.Error("Translation failed",
			slog.String("source_language", req.SourceLanguage),
			slog.String("target_language", req.TargetLanguage),
			slog.String("error", err.Error()))
		writeJSONError(w, "Translation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{
		TranslatedText: translated,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
	})
}
