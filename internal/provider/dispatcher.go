package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Dispatcher tries configured endpoints in priority order. Failures are split
// into two kinds: a malformed response is retried against the same endpoint
// immediately and without limit, while any other failure abandons the
// endpoint for this call after a fixed backoff. Once every endpoint for the
// capability has failed the call returns ErrEndpointsExhausted.
type Dispatcher struct {
	chat    []Endpoint
	vision  []Endpoint
	caller  Caller
	backoff time.Duration
}

// NewDispatcher creates a dispatcher over the given endpoint lists. The lists
// are fallback-ordered and treated as immutable.
func NewDispatcher(chat, vision []Endpoint, caller Caller, backoff time.Duration) *Dispatcher {
	return &Dispatcher{
		chat:    chat,
		vision:  vision,
		caller:  caller,
		backoff: backoff,
	}
}

// Generate produces a structured completion from the chat endpoints.
func (d *Dispatcher) Generate(ctx context.Context, prompt string, out any) error {
	return d.walk(ctx, d.chat, func(ctx context.Context, ep Endpoint) error {
		return d.caller.Complete(ctx, ep, prompt, out)
	})
}

// DescribeImages produces a textual description of the given image URLs from
// the vision endpoints.
func (d *Dispatcher) DescribeImages(ctx context.Context, urls []string) (string, error) {
	var desc string
	err := d.walk(ctx, d.vision, func(ctx context.Context, ep Endpoint) error {
		var callErr error
		desc, callErr = d.caller.Describe(ctx, ep, urls)
		return callErr
	})
	if err != nil {
		return "", err
	}
	return desc, nil
}

func (d *Dispatcher) walk(ctx context.Context, endpoints []Endpoint, call func(context.Context, Endpoint) error) error {
	if len(endpoints) == 0 {
		return ErrEndpointsExhausted
	}
	for _, ep := range endpoints {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := call(ctx, ep)
			if err == nil {
				return nil
			}
			if errors.Is(err, ErrMalformedResponse) {
				// Same endpoint, no backoff. Context cancellation is the
				// only way out of a consistently misbehaving backend.
				slog.Debug("Malformed model response, retrying", "model", ep.Model, "error", err)
				continue
			}
			slog.Warn("Model endpoint failed, trying next", "model", ep.Model, "url", ep.URL, "error", err)
			d.wait(ctx)
			break
		}
	}
	return ErrEndpointsExhausted
}

// wait sleeps for the configured backoff, returning early on cancellation.
func (d *Dispatcher) wait(ctx context.Context) {
	if d.backoff <= 0 {
		return
	}
	timer := time.NewTimer(d.backoff)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
