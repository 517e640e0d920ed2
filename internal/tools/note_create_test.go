package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hutchisr/grok/internal/misskey"
)

// noteServer fakes the notes/create endpoint and records the payloads.
func noteServer(t *testing.T, status int, body string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var payloads []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/notes/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		payloads = append(payloads, payload)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	return srv, &payloads
}

func TestCreateNoteTool_Basic(t *testing.T) {
	srv, payloads := noteServer(t, http.StatusOK, `{"createdNote": {"id": "n1"}}`)
	defer srv.Close()

	tool := NewCreateNoteTool(misskey.NewClient(srv.URL, "token"), "grok")
	out, err := tool.Execute(context.Background(), map[string]any{
		"text":     "hello world",
		"mentions": []any{"alice", "@alice", "@grok", "bob"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "n1") {
		t.Errorf("expected the created note id, got %q", out)
	}
	if len(*payloads) != 1 {
		t.Fatalf("expected one request, got %d", len(*payloads))
	}
	payload := (*payloads)[0]
	text, _ := payload["text"].(string)
	if text != "@alice @bob hello world" {
		t.Errorf("unexpected text: %q", text)
	}
	if payload["visibility"] != "public" {
		t.Errorf("expected default public visibility, got %v", payload["visibility"])
	}
}

func TestCreateNoteTool_MentionAlreadyInText(t *testing.T) {
	srv, payloads := noteServer(t, http.StatusOK, `{"createdNote": {"id": "n1"}}`)
	defer srv.Close()

	tool := NewCreateNoteTool(misskey.NewClient(srv.URL, "token"), "grok")
	if _, err := tool.Execute(context.Background(), map[string]any{
		"text":     "thanks @alice for the tip",
		"mentions": []any{"@alice"},
	}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	text, _ := (*payloads)[0]["text"].(string)
	if text != "thanks @alice for the tip" {
		t.Errorf("a handle already in the text must not be prefixed again: %q", text)
	}
}

func TestCreateNoteTool_InvalidVisibility(t *testing.T) {
	tool := NewCreateNoteTool(misskey.NewClient("http://unused", "token"), "grok")
	out, err := tool.Execute(context.Background(), map[string]any{
		"text":       "hi",
		"visibility": "everyone",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "Error") || !strings.Contains(out, "visibility") {
		t.Errorf("expected a visibility error, got %q", out)
	}
}

func TestCreateNoteTool_EmptyText(t *testing.T) {
	tool := NewCreateNoteTool(misskey.NewClient("http://unused", "token"), "grok")
	out, err := tool.Execute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "Error") {
		t.Errorf("expected a usage error, got %q", out)
	}
}

func TestCreateNoteTool_OversizeText(t *testing.T) {
	srv, _ := noteServer(t, http.StatusBadRequest, `{"error": {"message": "text: must be no more than maxLength characters"}}`)
	defer srv.Close()

	tool := NewCreateNoteTool(misskey.NewClient(srv.URL, "token"), "grok")
	out, err := tool.Execute(context.Background(), map[string]any{"text": "way too long"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, "shorten") {
		t.Errorf("expected the oversize hint, got %q", out)
	}
}
