// Package config provides configuration types and loading for grok.
package config

import "time"

// Config is the root configuration struct.
// Top-level groups: Server, Model, Agent, Tools, Ledger, Prompt.
type Config struct {
	Server Server `json:"server"`
	Model  Model  `json:"model"`
	Agent  Agent  `json:"agent"`
	Tools  Tools  `json:"tools"`
	Ledger Ledger `json:"ledger"`
	Prompt Prompt `json:"prompt"`
}

// ---------------------------------------------------------------------------
// Server – Misskey instance connection and bot identity
// ---------------------------------------------------------------------------

// Server groups the Misskey instance settings.
type Server struct {
	URL         string `json:"url" envconfig:"URL"`
	WSURL       string `json:"wsUrl" envconfig:"WS_URL"`
	Token       string `json:"token" envconfig:"TOKEN"`
	Domain      string `json:"domain" envconfig:"DOMAIN"`
	BotUserID   string `json:"botUserId" envconfig:"BOT_USER_ID"`
	BotUsername string `json:"botUsername" envconfig:"BOT_USERNAME"`
}

// ---------------------------------------------------------------------------
// Model – LLM endpoints and generation limits
// ---------------------------------------------------------------------------

// Endpoint is one configured LLM backend. List order is fallback order and
// never changes at runtime.
type Endpoint struct {
	URL      string `json:"url"`
	Key      string `json:"key,omitempty"`
	Model    string `json:"model"`
	Provider string `json:"provider,omitempty"`
}

// Model groups LLM endpoint lists and generation settings.
type Model struct {
	ChatEndpoints   []Endpoint `json:"chatEndpoints"`
	VisionEndpoints []Endpoint `json:"visionEndpoints"`
	MaxTokens       int        `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature     float64    `json:"temperature" envconfig:"TEMPERATURE"`
}

// ---------------------------------------------------------------------------
// Agent – loop and context bounds
// ---------------------------------------------------------------------------

// Agent groups the reply-generation bounds.
type Agent struct {
	MaxContextDepth int           `json:"maxContextDepth" envconfig:"MAX_CONTEXT_DEPTH"`
	MaxSteps        int           `json:"maxSteps" envconfig:"MAX_STEPS"`
	RetryBackoff    time.Duration `json:"retryBackoff" envconfig:"RETRY_BACKOFF"`
}

// ---------------------------------------------------------------------------
// Tools – tool-specific behaviour
// ---------------------------------------------------------------------------

// Tools contains tool-specific settings.
type Tools struct {
	Search SearchConfig `json:"search"`
}

// SearchConfig contains web search (SearxNG) settings.
type SearchConfig struct {
	URL        string `json:"url" envconfig:"URL"`
	User       string `json:"user,omitempty" envconfig:"USER"`
	Password   string `json:"password,omitempty" envconfig:"PASSWORD"`
	MaxResults int    `json:"maxResults" envconfig:"MAX_RESULTS"`
}

// ---------------------------------------------------------------------------
// Ledger – Redis-backed score store
// ---------------------------------------------------------------------------

// Ledger configures the optional score ledger. An empty Addr disables the
// ledger tools.
type Ledger struct {
	Addr      string `json:"addr" envconfig:"ADDR"`
	Password  string `json:"password,omitempty" envconfig:"PASSWORD"`
	DB        int    `json:"db" envconfig:"DB"`
	KeyPrefix string `json:"keyPrefix" envconfig:"KEY_PREFIX"`
}

// Enabled reports whether a ledger store is configured.
func (l Ledger) Enabled() bool { return l.Addr != "" }

// ---------------------------------------------------------------------------
// Prompt – persona
// ---------------------------------------------------------------------------

// Prompt groups prompt settings.
type Prompt struct {
	System string `json:"system" envconfig:"SYSTEM"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: Model{
			MaxTokens:   4096,
			Temperature: 0.7,
		},
		Agent: Agent{
			MaxContextDepth: 10,
			MaxSteps:        6,
			RetryBackoff:    time.Second,
		},
		Tools: Tools{
			Search: SearchConfig{
				MaxResults: 5,
			},
		},
		Ledger: Ledger{
			KeyPrefix: "grok:",
		},
	}
}
