package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hutchisr/grok/internal/misskey"
)

// searchLimitCap bounds how many results a single search tool call may
// request from the instance.
const searchLimitCap = 25

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > searchLimitCap {
		return searchLimitCap
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// SearchUsersTool looks up accounts on the instance.
type SearchUsersTool struct {
	client *misskey.Client
}

// NewSearchUsersTool creates the search_users tool.
func NewSearchUsersTool(client *misskey.Client) *SearchUsersTool {
	return &SearchUsersTool{client: client}
}

func (t *SearchUsersTool) Name() string { return "search_users" }

func (t *SearchUsersTool) Description() string {
	return "Searches for user accounts by name or handle."
}

func (t *SearchUsersTool) Args() []string { return []string{"query", "limit", "offset"} }

func (t *SearchUsersTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := strings.TrimSpace(GetString(params, "query", ""))
	if query == "" {
		return "Error: a search query is required", nil
	}
	users, err := t.client.SearchUsers(ctx, query,
		clampLimit(GetInt(params, "limit", 10)),
		clampOffset(GetInt(params, "offset", 0)))
	if err != nil {
		return fmt.Sprintf("Error: user search failed: %v", err), nil
	}
	if len(users) == 0 {
		return "No users found.", nil
	}

	var b strings.Builder
	for _, user := range users {
		fmt.Fprintf(&b, "%s", user.Handle())
		if user.Name != "" {
			fmt.Fprintf(&b, " (%s)", user.Name)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// SearchNotesTool performs a full-text search over notes.
type SearchNotesTool struct {
	client *misskey.Client
}

// NewSearchNotesTool creates the search_notes tool.
func NewSearchNotesTool(client *misskey.Client) *SearchNotesTool {
	return &SearchNotesTool{client: client}
}

func (t *SearchNotesTool) Name() string { return "search_notes" }

func (t *SearchNotesTool) Description() string {
	return "Searches existing notes by text."
}

func (t *SearchNotesTool) Args() []string { return []string{"query", "limit", "offset"} }

func (t *SearchNotesTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := strings.TrimSpace(GetString(params, "query", ""))
	if query == "" {
		return "Error: a search query is required", nil
	}
	notes, err := t.client.SearchNotes(ctx, query,
		clampLimit(GetInt(params, "limit", 10)),
		clampOffset(GetInt(params, "offset", 0)))
	if err != nil {
		return fmt.Sprintf("Error: note search failed: %v", err), nil
	}
	if len(notes) == 0 {
		return "No notes found.", nil
	}

	var b strings.Builder
	for _, note := range notes {
		handle := "@?"
		if note.User != nil {
			handle = note.User.Handle()
		}
		fmt.Fprintf(&b, "%s: %s\n", handle, snippet(note.Text, 200))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func snippet(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
