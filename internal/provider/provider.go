// Package provider implements the LLM endpoint clients and the fallback
// dispatcher that walks them in priority order.
package provider

import (
	"context"
	"errors"
)

// Endpoint is one configured LLM backend: an OpenAI-compatible base URL, an
// optional credential, and the model to request.
type Endpoint struct {
	URL      string
	Key      string
	Model    string
	Provider string
}

// ErrMalformedResponse marks a structurally unusable response from a backend:
// the HTTP exchange succeeded but the body did not decode into the requested
// shape. The dispatcher retries these against the same endpoint immediately.
var ErrMalformedResponse = errors.New("malformed model response")

// ErrEndpointsExhausted is returned once every configured endpoint for a
// capability has failed. Callers must not retry on top of it.
var ErrEndpointsExhausted = errors.New("all model backends exhausted")

// Generator produces a structured JSON decision from a prompt. Implemented by
// Dispatcher; the agent engine depends only on this.
type Generator interface {
	Generate(ctx context.Context, prompt string, out any) error
}

// Describer produces a short textual description for a batch of image URLs.
type Describer interface {
	DescribeImages(ctx context.Context, urls []string) (string, error)
}

// Caller issues one generation call against one endpoint. The production
// implementation is the OpenAI-compatible client; tests substitute scripted
// fakes.
type Caller interface {
	// Complete requests a JSON object completion and decodes it into out.
	// Decode failures are reported wrapping ErrMalformedResponse.
	Complete(ctx context.Context, ep Endpoint, prompt string, out any) error
	// Describe requests a plain-text description of the given images.
	Describe(ctx context.Context, ep Endpoint, urls []string) (string, error)
}
