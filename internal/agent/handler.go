package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hutchisr/grok/internal/misskey"
	"github.com/hutchisr/grok/internal/provider"
	"github.com/hutchisr/grok/internal/timeline"
)

// NotePoster posts a note and returns the created note's id.
type NotePoster interface {
	CreateNote(ctx context.Context, req *misskey.CreateNoteRequest) (string, error)
}

// Recorder keeps the audit trail of handled mentions. It may be nil.
type Recorder interface {
	Record(ctx context.Context, event timeline.Event) error
}

// Handler turns one incoming mention into one posted reply.
type Handler struct {
	poster    NotePoster
	builder   *ContextBuilder
	engine    *ReactEngine
	resolver  *MentionResolver
	describer provider.Describer
	recorder  Recorder
	botUserID string
	system    string
}

func NewHandler(poster NotePoster, builder *ContextBuilder, engine *ReactEngine, resolver *MentionResolver, describer provider.Describer, recorder Recorder, botUserID, system string) *Handler {
	return &Handler{
		poster:    poster,
		builder:   builder,
		engine:    engine,
		resolver:  resolver,
		describer: describer,
		recorder:  recorder,
		botUserID: botUserID,
		system:    system,
	}
}

// HandleMention processes one mention end to end. It never returns an error
// to the stream; every failure mode is logged and recorded.
func (h *Handler) HandleMention(ctx context.Context, note *misskey.Note) {
	if note == nil || note.ID == "" {
		return
	}
	trace := uuid.NewString()
	log := slog.With("trace", trace, "note", note.ID)

	if note.UserID == h.botUserID {
		log.Debug("Ignoring own note")
		return
	}
	text := StripLeadingMentions(note.Text)
	if text == "" && len(note.Files) == 0 {
		log.Debug("Ignoring mention without content")
		h.record(ctx, trace, note, timeline.StatusSkipped, "", "no content")
		return
	}
	log.Info("Handling mention", "user", noteAuthor(note))
	h.record(ctx, trace, note, timeline.StatusReceived, "", "")

	history := h.builder.Build(ctx, note)

	imageDescription := h.describeImages(ctx, log, note)

	prompted := *note
	prompted.Text = text
	reply, err := h.engine.Run(ctx, BuildTaskPrompt(h.system, &prompted, history, imageDescription))
	if err != nil {
		log.Error("Reply generation failed", "error", err)
		h.record(ctx, trace, note, timeline.StatusFailed, "", err.Error())
		return
	}

	// The outgoing mention set covers everyone the note referenced plus
	// whoever the model named; the resolver dedupes and drops the bot.
	refs := make([]string, 0, len(note.Mentions)+len(reply.Mentions))
	refs = append(refs, note.Mentions...)
	refs = append(refs, reply.Mentions...)
	handles := h.resolver.Resolve(ctx, refs, note.User)
	body := FormatReply(handles, reply.Text)

	replyID, err := h.poster.CreateNote(ctx, &misskey.CreateNoteRequest{
		Text:       body,
		Visibility: misskey.VisibilityPublic,
		ReplyID:    note.ID,
	})
	if err != nil {
		log.Error("Posting reply failed", "error", err)
		h.record(ctx, trace, note, timeline.StatusFailed, "", err.Error())
		return
	}
	log.Info("Replied", "reply", replyID)
	h.record(ctx, trace, note, timeline.StatusReplied, replyID, "")
}

// describeImages runs the vision endpoints over the note's image
// attachments. Description is best effort; on failure the mention is
// answered from text alone.
func (h *Handler) describeImages(ctx context.Context, log *slog.Logger, note *misskey.Note) string {
	if h.describer == nil {
		return ""
	}
	var urls []string
	for _, file := range note.Files {
		if !strings.HasPrefix(file.Type, "image/") || file.ThumbnailURL == "" {
			continue
		}
		urls = append(urls, file.ThumbnailURL)
	}
	if len(urls) == 0 {
		return ""
	}
	description, err := h.describer.DescribeImages(ctx, urls)
	if err != nil {
		if errors.Is(err, provider.ErrEndpointsExhausted) {
			log.Warn("Vision endpoints exhausted, answering without images")
		} else {
			log.Warn("Image description failed", "error", err)
		}
		return ""
	}
	return description
}

func (h *Handler) record(ctx context.Context, trace string, note *misskey.Note, status, replyID, detail string) {
	if h.recorder == nil {
		return
	}
	username := ""
	if note.User != nil {
		username = note.User.Handle()
	}
	event := timeline.Event{
		TraceID:  trace,
		NoteID:   note.ID,
		Username: username,
		Status:   status,
		ReplyID:  replyID,
		Detail:   detail,
	}
	if err := h.recorder.Record(ctx, event); err != nil {
		slog.Debug("Timeline record failed", "error", err)
	}
}
