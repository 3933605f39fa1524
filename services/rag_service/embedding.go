package rag_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pgvector/pgvector-go"

	"github.com/nyayasetu/nyayasetu/retry"
)

// Embedder converts text into its vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
}

// Input longer than this many characters is truncated before it is sent to
// the embedding endpoint.
const maxEmbeddingInputChars = 3000

type embeddingRequest struct {
	Model   string `json:"model"`
	Content struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

type embeddingResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// GeminiEmbedder calls the Gemini text-embedding-004 endpoint (768 dims).
type GeminiEmbedder struct {
	httpClient  *http.Client
	apiURL      string
	apiKey      string
	retryPolicy retry.Policy
	logger      *slog.Logger
}

func NewGeminiEmbedder(apiURL, apiKey string, retryPolicy retry.Policy, logger *slog.Logger) *GeminiEmbedder {
	return &GeminiEmbedder{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		apiURL:      apiURL,
		apiKey:      apiKey,
		retryPolicy: retryPolicy,
		logger:      logger,
	}
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return pgvector.Vector{}, fmt.Errorf("%w: cannot embed empty text", ErrInvalidInput)
	}

	if utf8.RuneCountInString(text) > maxEmbeddingInputChars {
		runes := []rune(text)
		e.logger.Debug("Truncating embedding input",
			slog.Int("original_length", len(runes)),
			slog.Int("truncated_length", maxEmbeddingInputChars))
		text = string(runes[:maxEmbeddingInputChars])
	}

	var vector pgvector.Vector
	err := retry.Do(ctx, e.retryPolicy, func(ctx context.Context) error {
		v, err := e.callEmbeddingAPI(ctx, text)
		if err != nil {
			return err
		}
		vector = v
		return nil
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embedding: %w", err)
	}

	return vector, nil
}

func (e *GeminiEmbedder) callEmbeddingAPI(ctx context.Context, text string) (pgvector.Vector, error) {
	var reqBody embeddingRequest
	reqBody.Model = "models/text-embedding-004"
	reqBody.Content.Parts = []struct {
		Text string `json:"text"`
	}{{Text: text}}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("failed to marshal embedding request: %v", err)
	}

	url := fmt.Sprintf("%s?key=%s", e.apiURL, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("failed to create HTTP request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("failed to send HTTP request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return pgvector.Vector{}, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(body))
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return pgvector.Vector{}, fmt.Errorf("failed to decode embedding response: %v", err)
	}

	if len(embeddingResp.Embedding.Values) == 0 {
		return pgvector.Vector{}, fmt.Errorf("no embedding data received")
	}

	return pgvector.NewVector(embeddingResp.Embedding.Values), nil
}
