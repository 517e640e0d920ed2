// Package agent implements the per-mention reply pipeline: thread context
// reconstruction, the reason-act decision loop, and mention formatting.
package agent

import "encoding/json"

// Step is one completed reason-act iteration: the action the model chose,
// the raw input it supplied, and what the tool said back. Steps live only in
// the loop's working memory for one mention.
type Step struct {
	Action      string
	Input       string
	Observation string
}

// ReplyOutput is the engine's result: the reply text (never empty on
// success) and the model's own mention handles, deduplicated.
type ReplyOutput struct {
	Text     string
	Mentions []string
}

// FinalAction is the reserved action name that terminates the loop.
const FinalAction = "final"

// apologyText is posted when the loop cannot produce a usable answer within
// its step budget.
const apologyText = "Sorry, I couldn't come up with a good answer this time."

// decision is the JSON object the model is asked to produce each iteration:
// either a tool call (action + action_input) or a final answer (action
// "final" + reply + optional mentions). Thought is the model's private
// scratch space and is never surfaced.
type decision struct {
	Thought     string          `json:"thought,omitempty"`
	Action      string          `json:"action"`
	ActionInput json.RawMessage `json:"action_input,omitempty"`
	Reply       string          `json:"reply,omitempty"`
	Mentions    []string        `json:"mentions,omitempty"`
}

// rawInput renders the action input for tool invocation: a JSON string
// literal becomes its unquoted value, anything else is passed through as
// JSON text for the registry's heuristic parse.
func (d *decision) rawInput() string {
	if len(d.ActionInput) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(d.ActionInput, &s); err == nil {
		return s
	}
	return string(d.ActionInput)
}

// dedupeMentions removes duplicate handles preserving first-seen order.
func dedupeMentions(mentions []string) []string {
	if len(mentions) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(mentions))
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
