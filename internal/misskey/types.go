// Package misskey provides the Misskey API client and domain types.
package misskey

import "encoding/json"

// Visibility values accepted by the notes/create endpoint.
const (
	VisibilityPublic    = "public"
	VisibilityHome      = "home"
	VisibilityFollowers = "followers"
	VisibilitySpecified = "specified"
)

// ValidVisibility reports whether v is an accepted note visibility.
func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityHome, VisibilityFollowers, VisibilitySpecified:
		return true
	}
	return false
}

// User is a Misskey account.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username"`
	Host     string `json:"host,omitempty"`
	Location string `json:"location,omitempty"`
}

// Handle returns the canonical @user or @user@host reference.
func (u *User) Handle() string {
	if u.Host != "" {
		return "@" + u.Username + "@" + u.Host
	}
	return "@" + u.Username
}

// DriveFile is a file attached to a note.
type DriveFile struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Note is a Misskey post. Reply and Renote may be nested one level by the
// API; the reply graph is walked iteratively by the context builder, never
// through these pointers recursively.
type Note struct {
	ID         string      `json:"id"`
	Text       string      `json:"text,omitempty"`
	UserID     string      `json:"userId"`
	User       *User       `json:"user,omitempty"`
	ReplyID    string      `json:"replyId,omitempty"`
	RenoteID   string      `json:"renoteId,omitempty"`
	Reply      *Note       `json:"reply,omitempty"`
	Renote     *Note       `json:"renote,omitempty"`
	Visibility string      `json:"visibility,omitempty"`
	Mentions   []string    `json:"mentions,omitempty"`
	Files      []DriveFile `json:"files,omitempty"`
}

// HasContent reports whether the note carries anything worth showing to the
// model: text or at least one attachment.
func (n *Note) HasContent() bool {
	return n.Text != "" || len(n.Files) > 0
}

// StreamMessage is the outer envelope of a streaming API frame.
type StreamMessage struct {
	Type string      `json:"type"`
	Body *StreamBody `json:"body,omitempty"`
}

// StreamBody is the inner envelope. For channel events Type names the event
// kind and Body holds the payload.
type StreamBody struct {
	Type    string          `json:"type,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
	Channel string          `json:"channel,omitempty"`
	ID      string          `json:"id,omitempty"`
}

// IsMention reports whether the frame is a mention event on a channel
// subscription.
func (m *StreamMessage) IsMention() bool {
	return m.Type == "channel" && m.Body != nil && m.Body.Type == "mention" && len(m.Body.Body) > 0
}
