package translation_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Inference tokens are issued for an hour; refresh a little early.
const tokenTTL = 55 * time.Minute

// Client talks to a Bhashini-style translation pipeline: one endpoint issues
// an inference token, another runs the translation with it.
type Client struct {
	httpClient *http.Client
	authURL    string
	computeURL string
	userID     string
	apiKey     string
	cache      *tokenCache
	logger     *slog.Logger
}

func NewClient(authURL, computeURL, userID, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		authURL:    authURL,
		computeURL: computeURL,
		userID:     userID,
		apiKey:     apiKey,
		cache:      newTokenCache(tokenTTL, nil),
		logger:     logger,
	}
}

// NewClientWithClock is used by tests to control token expiry.
func NewClientWithClock(authURL, computeURL, userID, apiKey string, clock Clock, logger *slog.Logger) *Client {
	c := NewClient(authURL, computeURL, userID, apiKey, logger)
	c.cache = newTokenCache(tokenTTL, clock)
	return c
}

// Translate converts text from sourceLang to targetLang (ISO 639 codes).
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("text to translate cannot be empty")
	}
	if sourceLang == "" || targetLang == "" {
		return "", fmt.Errorf("source and target languages are required")
	}

	token, err := c.cache.get(ctx, c.fetchToken)
	if err != nil {
		return "", fmt.Errorf("failed to acquire translation token: %w", err)
	}

	translated, err := c.callCompute(ctx, token, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	c.logger.Debug("Translation completed",
		slog.String("source_language", sourceLang),
		slog.String("target_language", targetLang),
		slog.Int("input_length", len(text)))

	return translated, nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	payload := map[string]interface{}{
		"pipelineTasks": []map[string]interface{}{
			{"taskType": "translation"},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshaling auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.authURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("userID", c.userID)
	req.Header.Set("ulcaApiKey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling auth endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("auth endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		PipelineInferenceAPIKey struct {
			Value string `json:"value"`
		} `json:"pipelineInferenceAPIKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error decoding auth response: %w", err)
	}

	if result.PipelineInferenceAPIKey.Value == "" {
		return "", fmt.Errorf("auth response contained no inference key")
	}

	return result.PipelineInferenceAPIKey.Value, nil
}

func (c *Client) callCompute(ctx context.Context, token, text, sourceLang, targetLang string) (string, error) {
	payload := map[string]interface{}{
		"pipelineTasks": []map[string]interface{}{
			{
				"taskType": "translation",
				"config": map[string]interface{}{
					"language": map[string]string{
						"sourceLanguage": sourceLang,
						"targetLanguage": targetLang,
					},
				},
			},
		},
		"inputData": map[string]interface{}{
			"input": []map[string]string{
				{"source": text},
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshaling compute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.computeURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating compute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error calling compute endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Token expired server-side before our TTL; drop it so the next call
		// refetches.
		c.cache.invalidate()
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translation token rejected (status %d): %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("compute endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		PipelineResponse []struct {
			Output []struct {
				Target string `json:"target"`
			} `json:"output"`
		} `json:"pipelineResponse"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error decoding compute response: %w", err)
	}

	if len(result.PipelineResponse) == 0 || len(result.PipelineResponse[0].Output) == 0 {
		return "", fmt.Errorf("compute response contained no translation output")
	}

	return result.PipelineResponse[0].Output[0].Target, nil
}
