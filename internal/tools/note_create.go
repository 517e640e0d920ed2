package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hutchisr/grok/internal/misskey"
)

// CreateNoteTool posts a new note on behalf of the model. Mentions are
// normalized and prefixed onto the text so the recipients are notified even
// when the model forgot the @ syntax.
type CreateNoteTool struct {
	client      *misskey.Client
	botUsername string
}

// NewCreateNoteTool creates the create_note tool.
func NewCreateNoteTool(client *misskey.Client, botUsername string) *CreateNoteTool {
	return &CreateNoteTool{client: client, botUsername: botUsername}
}

func (t *CreateNoteTool) Name() string { return "create_note" }

func (t *CreateNoteTool) Description() string {
	return "Posts a new note. Optionally mentions users and replies to an existing note."
}

func (t *CreateNoteTool) Args() []string {
	return []string{"text", "visibility", "mentions", "reply_id"}
}

func (t *CreateNoteTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	text := strings.TrimSpace(GetString(params, "text", ""))
	if text == "" {
		return "Error: note text is required", nil
	}

	visibility := strings.TrimSpace(GetString(params, "visibility", misskey.VisibilityPublic))
	if !misskey.ValidVisibility(visibility) {
		return fmt.Sprintf("Error: invalid visibility %q (valid: public, home, followers, specified)", visibility), nil
	}

	if prefix := t.mentionPrefix(GetStringSlice(params, "mentions"), text); prefix != "" {
		text = prefix + " " + text
	}

	noteID, err := t.client.CreateNote(ctx, &misskey.CreateNoteRequest{
		Text:       text,
		Visibility: visibility,
		ReplyID:    strings.TrimSpace(GetString(params, "reply_id", "")),
	})
	if err != nil {
		var apiErr *misskey.APIError
		if errors.As(err, &apiErr) && apiErr.IsPayloadTooLarge() {
			return "Error: the note text exceeds the instance's maximum length; shorten it and try again", nil
		}
		return fmt.Sprintf("Error: could not create note: %v", err), nil
	}
	return fmt.Sprintf("Created note %s", noteID), nil
}

// mentionPrefix normalizes the handle list (dedup, @ prefix, own handle
// dropped) and returns the joined prefix for handles not already mentioned
// in the text.
func (t *CreateNoteTool) mentionPrefix(mentions []string, text string) string {
	seen := make(map[string]bool)
	var out []string
	for _, mention := range mentions {
		handle := strings.TrimSpace(mention)
		if handle == "" {
			continue
		}
		if !strings.HasPrefix(handle, "@") {
			handle = "@" + handle
		}
		lower := strings.ToLower(handle)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		if strings.EqualFold(strings.TrimPrefix(handle, "@"), t.botUsername) {
			continue
		}
		if strings.Contains(strings.ToLower(text), lower) {
			continue
		}
		out = append(out, handle)
	}
	return strings.Join(out, " ")
}
