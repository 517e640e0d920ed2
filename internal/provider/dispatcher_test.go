package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// scriptedCaller replays a canned outcome sequence across Complete calls and
// records which endpoint served each attempt.
type scriptedCaller struct {
	outcomes []error
	calls    []string
	reply    string
}

func (c *scriptedCaller) next(ep Endpoint) error {
	c.calls = append(c.calls, ep.Model)
	if len(c.outcomes) == 0 {
		return nil
	}
	err := c.outcomes[0]
	c.outcomes = c.outcomes[1:]
	return err
}

func (c *scriptedCaller) Complete(ctx context.Context, ep Endpoint, prompt string, out any) error {
	return c.next(ep)
}

func (c *scriptedCaller) Describe(ctx context.Context, ep Endpoint, urls []string) (string, error) {
	if err := c.next(ep); err != nil {
		return "", err
	}
	return c.reply, nil
}

func twoEndpoints() []Endpoint {
	return []Endpoint{
		{URL: "http://primary", Model: "primary"},
		{URL: "http://fallback", Model: "fallback"},
	}
}

func TestDispatcher_HardFailureFallsThrough(t *testing.T) {
	caller := &scriptedCaller{outcomes: []error{fmt.Errorf("connection refused"), nil}}
	d := NewDispatcher(twoEndpoints(), nil, caller, 0)

	if err := d.Generate(context.Background(), "prompt", &struct{}{}); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	want := []string{"primary", "fallback"}
	if len(caller.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), caller.calls)
	}
	for i, model := range want {
		if caller.calls[i] != model {
			t.Errorf("call %d: expected %s, got %s", i, model, caller.calls[i])
		}
	}
}

func TestDispatcher_MalformedRetriesSameEndpoint(t *testing.T) {
	caller := &scriptedCaller{outcomes: []error{
		fmt.Errorf("%w: bad json", ErrMalformedResponse),
		fmt.Errorf("%w: bad json", ErrMalformedResponse),
		fmt.Errorf("%w: bad json", ErrMalformedResponse),
		nil,
	}}
	d := NewDispatcher(twoEndpoints(), nil, caller, 0)

	if err := d.Generate(context.Background(), "prompt", &struct{}{}); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(caller.calls) != 4 {
		t.Fatalf("expected 4 calls, got %d: %v", len(caller.calls), caller.calls)
	}
	for i, model := range caller.calls {
		if model != "primary" {
			t.Errorf("call %d: malformed responses must stay on the first endpoint, got %s", i, model)
		}
	}
}

func TestDispatcher_AllEndpointsExhausted(t *testing.T) {
	caller := &scriptedCaller{outcomes: []error{
		fmt.Errorf("500 from backend"),
		fmt.Errorf("500 from backend"),
	}}
	d := NewDispatcher(twoEndpoints(), nil, caller, 0)

	err := d.Generate(context.Background(), "prompt", &struct{}{})
	if !errors.Is(err, ErrEndpointsExhausted) {
		t.Fatalf("expected ErrEndpointsExhausted, got %v", err)
	}
	if len(caller.calls) != 2 {
		t.Errorf("expected one attempt per endpoint, got %v", caller.calls)
	}
}

func TestDispatcher_NoEndpoints(t *testing.T) {
	d := NewDispatcher(nil, nil, &scriptedCaller{}, 0)
	if err := d.Generate(context.Background(), "prompt", &struct{}{}); !errors.Is(err, ErrEndpointsExhausted) {
		t.Fatalf("expected ErrEndpointsExhausted, got %v", err)
	}
}

func TestDispatcher_CancellationStopsMalformedRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// Every call reports malformed and cancels the context, so the retry
	// loop must exit on the next iteration instead of spinning.
	count := 0
	d := NewDispatcher([]Endpoint{{URL: "http://primary", Model: "primary"}}, nil, &funcCaller{
		complete: func(context.Context, Endpoint, string, any) error {
			count++
			cancel()
			return fmt.Errorf("%w: truncated", ErrMalformedResponse)
		},
	}, 0)

	err := d.Generate(ctx, "prompt", &struct{}{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one attempt before cancellation, got %d", count)
	}
}

func TestDispatcher_DescribeImages(t *testing.T) {
	caller := &scriptedCaller{reply: "a cat on a keyboard"}
	d := NewDispatcher(nil, twoEndpoints(), caller, 0)

	desc, err := d.DescribeImages(context.Background(), []string{"http://example/img.png"})
	if err != nil {
		t.Fatalf("DescribeImages() error: %v", err)
	}
	if desc != "a cat on a keyboard" {
		t.Errorf("unexpected description: %q", desc)
	}
}

type funcCaller struct {
	complete func(context.Context, Endpoint, string, any) error
}

func (f *funcCaller) Complete(ctx context.Context, ep Endpoint, prompt string, out any) error {
	return f.complete(ctx, ep, prompt, out)
}

func (f *funcCaller) Describe(ctx context.Context, ep Endpoint, urls []string) (string, error) {
	return "", fmt.Errorf("not implemented")
}
