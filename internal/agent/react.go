package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hutchisr/grok/internal/provider"
	"github.com/hutchisr/grok/internal/tools"
)

// ReactEngine runs the bounded reason-act loop: ask the model for the next
// step, execute the named tool, feed the observation back, repeat until the
// model answers or the step budget runs out.
type ReactEngine struct {
	generator provider.Generator
	registry  *tools.Registry
	maxSteps  int
}

// NewReactEngine creates an engine over the given generator and tool
// registry. maxSteps defaults to 6 when not positive.
func NewReactEngine(generator provider.Generator, registry *tools.Registry, maxSteps int) *ReactEngine {
	if maxSteps <= 0 {
		maxSteps = 6
	}
	return &ReactEngine{
		generator: generator,
		registry:  registry,
		maxSteps:  maxSteps,
	}
}

// Run drives the loop for one task. The only error it returns is a failed
// generation (endpoints exhausted or cancellation); tool failures and an
// exhausted step budget degrade to usable replies instead.
func (e *ReactEngine) Run(ctx context.Context, task string) (*ReplyOutput, error) {
	var steps []Step

	for i := 0; i < e.maxSteps; i++ {
		var d decision
		if err := e.generator.Generate(ctx, e.renderPrompt(task, steps), &d); err != nil {
			return nil, fmt.Errorf("reason-act step %d: %w", i, err)
		}

		action := strings.TrimSpace(d.Action)
		if action == FinalAction || (action == "" && strings.TrimSpace(d.Reply) != "") {
			return e.finalize(&d), nil
		}

		input := d.rawInput()
		var observation string
		if tool, ok := e.registry.Get(action); ok {
			observation = e.registry.Invoke(ctx, tool, input)
		} else {
			observation = fmt.Sprintf("Unknown tool %q. Valid tools: %s, or %q to answer.",
				action, strings.Join(e.registry.Names(), ", "), FinalAction)
		}
		slog.Debug("Reason-act step", "step", i, "action", action, "observation_len", len(observation))
		steps = append(steps, Step{Action: action, Input: input, Observation: observation})
	}

	slog.Warn("Reason-act step budget exhausted", "steps", e.maxSteps)
	return &ReplyOutput{Text: apologyText}, nil
}

// finalize builds the ReplyOutput from a final decision. Leading mentions
// the model wrote itself are stripped here; the formatter prepends the
// resolved mention set and must not duplicate them. An empty reply is
// replaced by the apology rather than surfaced.
func (e *ReactEngine) finalize(d *decision) *ReplyOutput {
	text := strings.TrimSpace(d.Reply)
	if text == "" {
		text = strings.TrimSpace(d.rawInput())
	}
	text = StripLeadingMentions(text)
	if text == "" {
		text = apologyText
	}
	return &ReplyOutput{Text: text, Mentions: dedupeMentions(d.Mentions)}
}
