package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nyayasetu/nyayasetu/retry"
)

type GeminiService struct {
	httpClient  *http.Client
	retryPolicy retry.Policy
	logger      *slog.Logger
}

func NewGeminiService(retryPolicy retry.Policy, logger *slog.Logger) *GeminiService {
	return &GeminiService{
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		retryPolicy: retryPolicy,
		logger:      logger,
	}
}

func (s *GeminiService) CallLLM(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
	var response string

	err := retry.Do(ctx, s.retryPolicy, func(ctx context.Context) error {
		resp, err := s.callGemini(ctx, config, prompt)
		if err != nil {
			s.logger.Warn("Gemini call failed",
				slog.String("error", err.Error()))
			return err
		}
		response = resp
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrContentBlocked) {
			return "", err
		}
		s.logger.Error("Error calling Gemini API after multiple attempts",
			slog.Int("attempts", s.retryPolicy.MaxAttempts),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to call Gemini API: %w", err)
	}

	return response, nil
}

func (s *GeminiService) callGemini(ctx context.Context, config map[string]interface{}, prompt string) (string, error) {
	apiURL, ok := config["api_url"].(string)
	if !ok {
		return "", &retry.Permanent{Err: fmt.Errorf("api_url not found in config")}
	}

	apiKey, ok := config["api_key"].(string)
	if !ok {
		return "", &retry.Permanent{Err: fmt.Errorf("api_key not found in config")}
	}

	url := fmt.Sprintf("%s?key=%s", apiURL, apiKey)

	params, ok := config["parameters"].(map[string]interface{})
	if !ok {
		params = make(map[string]interface{})
	}

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      safeParseFloat(params["temperature"], 0.7),
			"topK":             safeParseFloat(params["top_k"], 40),
			"topP":             safeParseFloat(params["top_p"], 0.95),
			"maxOutputTokens":  safeParseFloat(params["max_tokens"], 8192.0),
			"responseMimeType": "text/plain",
		},
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return "", &retry.Permanent{Err: fmt.Errorf("error marshaling request body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rawBody, geminiErr := extractGeminiErrorDetails(resp)
		httpErr := &GeminiHttpError{
			StatusCode: resp.StatusCode,
			RawBody:    rawBody,
		}
		if geminiErr != nil {
			httpErr.Message = geminiErr.Error.Message
			httpErr.Status = geminiErr.Error.Status
		}
		return "", httpErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	return extractGeneratedText(result)
}

// extractGeneratedText digs the answer text out of a generateContent
// response, surfacing safety blocks as ErrContentBlocked instead of empty
// text.
func extractGeneratedText(result map[string]interface{}) (string, error) {
	if promptFeedback, ok := result["promptFeedback"].(map[string]interface{}); ok {
		if blockReason, ok := promptFeedback["blockReason"].(string); ok && blockReason != "" {
			return "", &retry.Permanent{Err: fmt.Errorf("%w: %s", ErrContentBlocked, blockReason)}
		}
	}

	candidates, ok := result["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini API")
	}

	candidate, ok := candidates[0].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("unexpected candidate format from Gemini API")
	}

	if finishReason, ok := candidate["finishReason"].(string); ok && finishReason == "SAFETY" {
		return "", &retry.Permanent{Err: fmt.Errorf("%w: candidate finished with SAFETY", ErrContentBlocked)}
	}

	content, ok := candidate["content"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("content not found in Gemini API response")
	}

	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return "", fmt.Errorf("parts not found in Gemini API response")
	}

	text, ok := parts[0].(map[string]interface{})["text"].(string)
	if !ok {
		return "", fmt.Errorf("text not found in Gemini API response")
	}

	return text, nil
}
