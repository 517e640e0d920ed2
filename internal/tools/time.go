package tools

import (
	"context"
	"time"
)

// CurrentTimeTool reports the current date and time.
type CurrentTimeTool struct{}

// NewCurrentTimeTool creates the current_time tool.
func NewCurrentTimeTool() *CurrentTimeTool { return &CurrentTimeTool{} }

func (t *CurrentTimeTool) Name() string { return "current_time" }

func (t *CurrentTimeTool) Description() string {
	return "Returns the current date and time in UTC."
}

func (t *CurrentTimeTool) Args() []string { return nil }

func (t *CurrentTimeTool) Execute(_ context.Context, _ map[string]any) (string, error) {
	return time.Now().UTC().Format(time.RFC1123), nil
}
