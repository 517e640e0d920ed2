package misskey

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

// Client talks to a Misskey instance's REST API. Construct once at process
// start and inject where needed; there is no package-level instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Misskey API client for the given instance.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the instance.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("misskey %s: status %d: %s", e.Endpoint, e.Status, e.Body)
}

// IsPayloadTooLarge reports whether the instance rejected the request because
// a field exceeded its length limit. Misskey answers 400 with a validation
// error naming maxLength for oversized note text.
func (e *APIError) IsPayloadTooLarge() bool {
	if e.Status == http.StatusRequestEntityTooLarge {
		return true
	}
	return e.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(e.Body), "maxlength")
}

func (c *Client) post(ctx context.Context, endpoint string, payload, out any) error {
	body := map[string]any{"i": c.token}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("merge request: %w", err)
		}
		body["i"] = c.token
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse %s response: %w", endpoint, err)
		}
	}
	return nil
}

// ShowNote fetches a note by ID.
func (c *Client) ShowNote(ctx context.Context, noteID string) (*Note, error) {
	var note Note
	if err := c.post(ctx, "notes/show", map[string]string{"noteId": noteID}, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// CreateNoteRequest is the payload for notes/create.
type CreateNoteRequest struct {
	Text       string `json:"text"`
	Visibility string `json:"visibility"`
	ReplyID    string `json:"replyId,omitempty"`
}

// CreateNote posts a note and returns the created note's ID.
func (c *Client) CreateNote(ctx context.Context, req *CreateNoteRequest) (string, error) {
	var out struct {
		CreatedNote struct {
			ID string `json:"id"`
		} `json:"createdNote"`
	}
	if err := c.post(ctx, "notes/create", req, &out); err != nil {
		return "", err
	}
	return out.CreatedNote.ID, nil
}

// ShowUser fetches a user by ID.
func (c *Client) ShowUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.post(ctx, "users/show", map[string]string{"userId": userID}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers searches accounts by query string.
func (c *Client) SearchUsers(ctx context.Context, query string, limit, offset int) ([]User, error) {
	var users []User
	payload := map[string]any{"query": query, "limit": limit, "offset": offset}
	if err := c.post(ctx, "users/search", payload, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SearchNotes performs a full-text note search.
func (c *Client) SearchNotes(ctx context.Context, query string, limit, offset int) ([]Note, error) {
	var notes []Note
	payload := map[string]any{"query": query, "limit": limit, "offset": offset}
	if err := c.post(ctx, "notes/search", payload, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}
