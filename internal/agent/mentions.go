package agent

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/hutchisr/grok/internal/misskey"
)

// UserSource resolves a user id to a user record.
type UserSource interface {
	ShowUser(ctx context.Context, id string) (*misskey.User, error)
}

// MentionResolver turns the engine's mention references into handles and
// keeps the bot itself out of its own replies.
type MentionResolver struct {
	source      UserSource
	botUsername string
	domain      string
}

func NewMentionResolver(source UserSource, botUsername, domain string) *MentionResolver {
	return &MentionResolver{
		source:      source,
		botUsername: strings.ToLower(strings.TrimPrefix(botUsername, "@")),
		domain:      strings.ToLower(domain),
	}
}

// Resolve maps mention references to handles. References that already
// contain "@" are taken verbatim; anything else is treated as a user id and
// looked up. The note author is always included. The bot's own handle is
// never included, and each handle appears at most once, in first-seen order.
func (r *MentionResolver) Resolve(ctx context.Context, refs []string, author *misskey.User) []string {
	var handles []string
	seen := make(map[string]bool)

	add := func(handle string) {
		handle = "@" + strings.TrimPrefix(handle, "@")
		key := strings.ToLower(handle)
		if r.isSelf(key) || seen[key] {
			return
		}
		seen[key] = true
		handles = append(handles, handle)
	}

	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if strings.Contains(ref, "@") {
			add(ref)
			continue
		}
		user, err := r.source.ShowUser(ctx, ref)
		if err != nil {
			slog.Warn("mention lookup failed", "ref", ref, "error", err)
			continue
		}
		add(user.Handle())
	}

	if author != nil {
		add(author.Handle())
	}
	return handles
}

func (r *MentionResolver) isSelf(handle string) bool {
	local := "@" + r.botUsername
	if handle == local {
		return true
	}
	return r.domain != "" && handle == local+"@"+r.domain
}

var leadingMentions = regexp.MustCompile(`^(?:@[\w.-]+(?:@[\w.-]+)?\s*)+`)

// StripLeadingMentions removes the run of mentions a client prepends to a
// reply so the engine sees only the message itself.
func StripLeadingMentions(text string) string {
	return strings.TrimSpace(leadingMentions.ReplaceAllString(text, ""))
}

// FormatReply prefixes the reply text with the resolved handles.
func FormatReply(handles []string, text string) string {
	if len(handles) == 0 {
		return text
	}
	return strings.Join(handles, " ") + " " + text
}
