// Package tools provides the tool framework and implementations for the
// reason-act loop.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tool is the interface that all agent tools must implement.
type Tool interface {
	// Name returns the tool identifier used in action steps.
	Name() string
	// Description returns a one-line description for the LLM.
	Description() string
	// Args returns the declared argument names in positional order.
	Args() []string
	// Execute runs the tool with the given parameters.
	// Returns result string and error. On error, return user-friendly message.
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// Registry manages tool registration and invocation.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog renders the tool list for inclusion in a prompt: one line per tool
// with its name, argument names and description.
func (r *Registry) Catalog() string {
	var b strings.Builder
	for _, name := range r.Names() {
		tool := r.tools[name]
		fmt.Fprintf(&b, "- %s(%s): %s\n", name, strings.Join(tool.Args(), ", "), tool.Description())
	}
	return b.String()
}

// Invoke parses the raw action input and runs the tool in its own goroutine
// so a blocking tool cannot stall the caller's loop. Errors and panics are
// converted to an observation string, never propagated.
func (r *Registry) Invoke(ctx context.Context, tool Tool, rawInput string) string {
	params := ParseArgs(tool.Args(), rawInput)

	type invokeResult struct {
		out string
		err error
	}
	done := make(chan invokeResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- invokeResult{err: fmt.Errorf("tool panicked: %v", rec)}
			}
		}()
		out, err := tool.Execute(ctx, params)
		done <- invokeResult{out: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return fmt.Sprintf("Error: %v", res.err)
		}
		return res.out
	case <-ctx.Done():
		return fmt.Sprintf("Error: %v", ctx.Err())
	}
}

// ParseArgs interprets a raw action input three ways, in order: a JSON object
// is used as named arguments; a JSON array is mapped positionally onto the
// declared argument names; anything else is passed verbatim as the first
// argument.
func ParseArgs(argNames []string, raw string) map[string]any {
	raw = strings.TrimSpace(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj != nil {
		return obj
	}

	var arr []any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil && arr != nil {
		params := make(map[string]any, len(arr))
		for i, v := range arr {
			if i >= len(argNames) {
				break
			}
			params[argNames[i]] = v
		}
		return params
	}

	params := make(map[string]any, 1)
	if len(argNames) > 0 && raw != "" {
		params[argNames[0]] = raw
	}
	return params
}

// GetString extracts a string parameter with a default value.
func GetString(params map[string]any, key string, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// GetInt extracts an int parameter with a default value.
func GetInt(params map[string]any, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return defaultVal
}

// GetStringSlice extracts a list-of-strings parameter. Scalars are wrapped in
// a one-element slice so models that pass a single handle still work.
func GetStringSlice(params map[string]any, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	}
	return nil
}
