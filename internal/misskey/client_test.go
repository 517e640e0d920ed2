package misskey

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_TokenMergedIntoPayload(t *testing.T) {
	var gotPayload map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"id": "n1", "text": "hi", "userId": "u1"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-token")
	note, err := client.ShowNote(context.Background(), "n1")
	if err != nil {
		t.Fatalf("ShowNote() error: %v", err)
	}
	if note.ID != "n1" || note.Text != "hi" {
		t.Errorf("unexpected note: %+v", note)
	}
	if gotPayload["i"] != "secret-token" {
		t.Errorf("token must ride in the payload, got %v", gotPayload)
	}
	if gotPayload["noteId"] != "n1" {
		t.Errorf("noteId missing from payload: %v", gotPayload)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestClient_CreateNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/notes/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"createdNote": {"id": "created1"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token")
	id, err := client.CreateNote(context.Background(), &CreateNoteRequest{
		Text:       "hello",
		Visibility: VisibilityPublic,
		ReplyID:    "parent1",
	})
	if err != nil {
		t.Fatalf("CreateNote() error: %v", err)
	}
	if id != "created1" {
		t.Errorf("expected created1, got %q", id)
	}
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "no such note"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token")
	_, err := client.ShowNote(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("unexpected status %d", apiErr.Status)
	}
	if apiErr.IsPayloadTooLarge() {
		t.Error("a generic 400 is not an oversize rejection")
	}
}

func TestAPIError_IsPayloadTooLarge(t *testing.T) {
	cases := []struct {
		err  APIError
		want bool
	}{
		{APIError{Status: http.StatusRequestEntityTooLarge}, true},
		{APIError{Status: http.StatusBadRequest, Body: `text: must be at most maxLength`}, true},
		{APIError{Status: http.StatusBadRequest, Body: `invalid visibility`}, false},
		{APIError{Status: http.StatusInternalServerError, Body: `maxLength`}, false},
	}
	for i, tc := range cases {
		if got := tc.err.IsPayloadTooLarge(); got != tc.want {
			t.Errorf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
}

func TestUserHandle(t *testing.T) {
	local := &User{Username: "alice"}
	if local.Handle() != "@alice" {
		t.Errorf("unexpected handle %q", local.Handle())
	}
	remote := &User{Username: "bob", Host: "remote.example"}
	if remote.Handle() != "@bob@remote.example" {
		t.Errorf("unexpected handle %q", remote.Handle())
	}
}

func TestStreamMessage_IsMention(t *testing.T) {
	frame := []byte(`{"type": "channel", "body": {"type": "mention", "id": "11111", "body": {"id": "n1", "userId": "u1", "text": "hi"}}}`)
	var msg StreamMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !msg.IsMention() {
		t.Error("expected a mention frame")
	}

	other := []byte(`{"type": "channel", "body": {"type": "note", "id": "11111", "body": {}}}`)
	var msg2 StreamMessage
	if err := json.Unmarshal(other, &msg2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg2.IsMention() {
		t.Error("a note frame is not a mention")
	}
}
