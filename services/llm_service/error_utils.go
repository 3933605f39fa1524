package llm_service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GeminiError represents the error structure returned by the Gemini API
type GeminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type GeminiHttpError struct {
	StatusCode int
	Message    string
	Status     string
	RawBody    string
}

func (e *GeminiHttpError) Error() string {
	return fmt.Sprintf("Gemini API error (HTTP %d): %s (Status: %s)", e.StatusCode, e.Message, e.Status)
}

// extractGeminiErrorDetails extracts error information from Gemini API responses
func extractGeminiErrorDetails(resp *http.Response) (string, *GeminiError) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	var geminiErr GeminiError
	if err := json.Unmarshal(body, &geminiErr); err == nil && geminiErr.Error.Message != "" {
		return string(body), &geminiErr
	}

	return string(body), nil
}
