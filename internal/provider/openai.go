package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient calls OpenAI-compatible chat completion APIs. It works against
// OpenAI, OpenRouter, vLLM and other compatible backends; the endpoint's URL
// selects the server, so one client serves every configured endpoint.
type OpenAIClient struct {
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewOpenAIClient creates a client with the given generation limits.
func NewOpenAIClient(maxTokens int, temperature float64) *OpenAIClient {
	return &OpenAIClient{
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Complete requests a single JSON-object completion and decodes the model's
// message content into out. A response that arrives but cannot be decoded is
// reported wrapping ErrMalformedResponse so the dispatcher retries it in
// place; transport and status failures are hard errors.
func (c *OpenAIClient) Complete(ctx context.Context, ep Endpoint, prompt string, out any) error {
	body := map[string]any{
		"model": ep.Model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"max_tokens":      c.maxTokens,
		"temperature":     c.temperature,
		"response_format": map[string]string{"type": "json_object"},
	}

	content, err := c.chat(ctx, ep, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(extractJSONObject(content)), out); err != nil {
		return fmt.Errorf("%w: decode %q: %v", ErrMalformedResponse, truncate(content, 200), err)
	}
	return nil
}

// Describe requests a short textual description of the given image URLs using
// OpenAI-compatible multimodal content parts.
func (c *OpenAIClient) Describe(ctx context.Context, ep Endpoint, urls []string) (string, error) {
	parts := []map[string]any{
		{"type": "text", "text": "Describe the attached image(s) in one or two sentences each."},
	}
	for _, u := range urls {
		parts = append(parts, map[string]any{
			"type":      "image_url",
			"image_url": map[string]string{"url": u},
		})
	}
	body := map[string]any{
		"model": ep.Model,
		"messages": []map[string]any{
			{"role": "user", "content": parts},
		},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
	}
	return c.chat(ctx, ep, body)
}

// chat performs one chat/completions call and returns the first choice's
// message content.
func (c *OpenAIClient) chat(ctx context.Context, ep Endpoint, body map[string]any) (string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(ep.URL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if ep.Key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+ep.Key)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrMalformedResponse, err)
	}
	if len(apiResp.Choices) == 0 || strings.TrimSpace(apiResp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}
	return apiResp.Choices[0].Message.Content, nil
}

// extractJSONObject trims markdown fences and surrounding prose around a
// JSON object.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
