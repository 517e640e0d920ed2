package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// resultSeparator joins search result snippets in the observation.
const resultSeparator = "\n---\n"

// WebSearchTool proxies a query to a SearxNG instance and returns the top
// result snippets. Transport failures yield an empty observation, never an
// error: a missing search backend must not derail the reply.
type WebSearchTool struct {
	baseURL    string
	user       string
	password   string
	maxResults int
	httpClient *http.Client
}

// NewWebSearchTool creates the web_search tool against the given SearxNG
// instance. user/password enable basic auth when non-empty.
func NewWebSearchTool(baseURL, user, password string, maxResults int) *WebSearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebSearchTool{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		user:       user,
		password:   password,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Searches the web and returns short snippets from the top results."
}

func (t *WebSearchTool) Args() []string { return []string{"query"} }

func (t *WebSearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := strings.TrimSpace(GetString(params, "query", ""))
	if query == "" {
		return "Error: a search query is required", nil
	}

	endpoint := fmt.Sprintf("%s/search?%s", t.baseURL, url.Values{
		"q":      {query},
		"format": {"json"},
	}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if t.user != "" && t.password != "" {
		req.SetBasicAuth(t.user, t.password)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		slog.Warn("Web search request failed", "query", query, "error", err)
		return "", nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.Warn("Web search returned error status", "query", query, "status", resp.StatusCode)
		return "", nil
	}

	var data struct {
		Results []struct {
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		slog.Warn("Web search response unparseable", "query", query, "error", err)
		return "", nil
	}

	snippets := make([]string, 0, t.maxResults)
	for _, result := range data.Results {
		if len(snippets) == t.maxResults {
			break
		}
		if result.Content != "" {
			snippets = append(snippets, result.Content)
		}
	}
	return strings.Join(snippets, resultSeparator), nil
}
