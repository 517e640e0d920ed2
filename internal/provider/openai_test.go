package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatResponse(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestOpenAIClient_Complete(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Write([]byte(chatResponse(`{"action": "final", "reply": "hi"}`)))
	}))
	defer srv.Close()

	client := NewOpenAIClient(512, 0.7)
	var out struct {
		Action string `json:"action"`
		Reply  string `json:"reply"`
	}
	ep := Endpoint{URL: srv.URL, Key: "sk-test", Model: "test-model"}
	if err := client.Complete(context.Background(), ep, "say hi", &out); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if out.Reply != "hi" {
		t.Errorf("expected reply 'hi', got %q", out.Reply)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("unexpected path %q", gotPath)
	}
}

func TestOpenAIClient_CompleteFencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse("Here you go:\n```json\n{\"reply\": \"ok\"}\n```")))
	}))
	defer srv.Close()

	client := NewOpenAIClient(512, 0.7)
	var out struct {
		Reply string `json:"reply"`
	}
	if err := client.Complete(context.Background(), Endpoint{URL: srv.URL, Model: "m"}, "p", &out); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if out.Reply != "ok" {
		t.Errorf("expected 'ok', got %q", out.Reply)
	}
}

func TestOpenAIClient_CompleteTrailingProse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse(`{"reply": "ok"} Let me know if you need anything else.`)))
	}))
	defer srv.Close()

	client := NewOpenAIClient(512, 0.7)
	var out struct {
		Reply string `json:"reply"`
	}
	if err := client.Complete(context.Background(), Endpoint{URL: srv.URL, Model: "m"}, "p", &out); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if out.Reply != "ok" {
		t.Errorf("expected 'ok', got %q", out.Reply)
	}
}

func TestOpenAIClient_MalformedContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatResponse("no json here at all")))
	}))
	defer srv.Close()

	client := NewOpenAIClient(512, 0.7)
	var out struct{}
	err := client.Complete(context.Background(), Endpoint{URL: srv.URL, Model: "m"}, "p", &out)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOpenAIClient_ServerErrorIsHard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewOpenAIClient(512, 0.7)
	var out struct{}
	err := client.Complete(context.Background(), Endpoint{URL: srv.URL, Model: "m"}, "p", &out)
	if err == nil {
		t.Fatal("expected error on 502")
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("a backend error must not be classified as malformed: %v", err)
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Sure! {\"a\": 1} hope that helps", `{"a": 1}`},
		{`{"a": 1} hope that helps`, `{"a": 1}`},
		{"no object", "no object"},
	}
	for _, tc := range cases {
		if got := extractJSONObject(tc.in); got != tc.want {
			t.Errorf("extractJSONObject(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
