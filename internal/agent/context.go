package agent

import (
	"context"
	"log/slog"

	"github.com/hutchisr/grok/internal/misskey"
)

// NoteSource fetches a single note by id.
type NoteSource interface {
	ShowNote(ctx context.Context, id string) (*misskey.Note, error)
}

// ContextBuilder reconstructs the reply chain a mention belongs to.
type ContextBuilder struct {
	source  NoteSource
	maxHops int
}

func NewContextBuilder(source NoteSource, maxHops int) *ContextBuilder {
	if maxHops <= 0 {
		maxHops = 10
	}
	return &ContextBuilder{source: source, maxHops: maxHops}
}

// Build walks the reply chain upward from note, newest first. Each fetch
// counts against the hop budget whether or not the fetched note carries
// content; notes without content are omitted from the result but their
// parents are still followed. A fetch failure ends the walk with whatever
// was gathered so far. If note quotes another note with content, the quoted
// note is appended regardless of the budget.
func (b *ContextBuilder) Build(ctx context.Context, note *misskey.Note) []misskey.Note {
	var history []misskey.Note

	current := note
	for hops := 0; hops < b.maxHops; hops++ {
		parentID := current.ReplyID
		if parentID == "" {
			break
		}
		parent, err := b.source.ShowNote(ctx, parentID)
		if err != nil {
			slog.Warn("context walk stopped", "note", parentID, "error", err)
			break
		}
		if parent.HasContent() {
			history = append(history, *parent)
		}
		current = parent
	}

	if note.Renote != nil && note.Renote.HasContent() {
		history = append(history, *note.Renote)
	}
	return history
}
