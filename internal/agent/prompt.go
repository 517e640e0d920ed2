package agent

import (
	"fmt"
	"strings"

	"github.com/hutchisr/grok/internal/misskey"
)

// renderPrompt assembles the per-iteration prompt: the task, the tool
// catalog, the decision schema, and the transcript of prior steps.
func (e *ReactEngine) renderPrompt(task string, steps []Step) string {
	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\nYou can use the following tools:\n")
	b.WriteString(e.registry.Catalog())
	b.WriteString(`
Decide your next step. Respond with a single JSON object:
- To use a tool: {"thought": "...", "action": "<tool name>", "action_input": <arguments>}
- To answer: {"action": "final", "reply": "<your reply>", "mentions": ["<handles mentioned in the message>"]}
The reply must not contain mentions or usernames and must not be empty.
`)

	if len(steps) > 0 {
		b.WriteString("\nSteps taken so far:\n")
		for _, step := range steps {
			fmt.Fprintf(&b, "Action: %s\nInput: %s\nObservation: %s\n\n", step.Action, step.Input, step.Observation)
		}
	}
	return b.String()
}

// BuildTaskPrompt renders the base task for one mention: the system prompt,
// the conversation so far (oldest first), any image descriptions, and the
// message being answered.
func BuildTaskPrompt(system string, note *misskey.Note, history []misskey.Note, imageDescription string) string {
	var b strings.Builder
	if system != "" {
		b.WriteString(system)
		b.WriteString("\n\n")
	}

	if len(history) > 0 {
		// history arrives newest first; render oldest first.
		b.WriteString("Conversation so far:\n")
		for i := len(history) - 1; i >= 0; i-- {
			prior := &history[i]
			fmt.Fprintf(&b, "%s: %s\n", noteAuthor(prior), noteBody(prior))
		}
		b.WriteString("\n")
	}

	if imageDescription != "" {
		fmt.Fprintf(&b, "Attached images: %s\n\n", imageDescription)
	}

	fmt.Fprintf(&b, "Message from %s", noteAuthor(note))
	if note.User != nil && note.User.Location != "" {
		fmt.Fprintf(&b, " (location: %s)", note.User.Location)
	}
	fmt.Fprintf(&b, ":\n%s\n", note.Text)
	return b.String()
}

func noteAuthor(note *misskey.Note) string {
	if note.User != nil {
		return note.User.Handle()
	}
	return "@?"
}

func noteBody(note *misskey.Note) string {
	if note.Text != "" {
		return note.Text
	}
	if len(note.Files) > 0 {
		return fmt.Sprintf("[%d attachment(s)]", len(note.Files))
	}
	return ""
}
