package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".grok"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("GROK_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load loads the configuration from file and environment variables.
// Priority: environment > file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil // Use defaults if we can't find config path
	}

	data, err := os.ReadFile(path)
	if err == nil {
		data = substituteEnv(data)
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	// If file doesn't exist, continue with defaults

	// Override with environment variables for each group
	envconfig.Process("GROK_SERVER", &cfg.Server)
	envconfig.Process("GROK_MODEL", &cfg.Model)
	envconfig.Process("GROK_AGENT", &cfg.Agent)
	envconfig.Process("GROK_TOOLS_SEARCH", &cfg.Tools.Search)
	envconfig.Process("GROK_LEDGER", &cfg.Ledger)
	envconfig.Process("GROK_PROMPT", &cfg.Prompt)

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Model.MaxTokens <= 0 {
		cfg.Model.MaxTokens = def.Model.MaxTokens
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = def.Model.Temperature
	}
	if cfg.Agent.MaxContextDepth <= 0 {
		cfg.Agent.MaxContextDepth = def.Agent.MaxContextDepth
	}
	if cfg.Agent.MaxSteps <= 0 {
		cfg.Agent.MaxSteps = def.Agent.MaxSteps
	}
	if cfg.Agent.RetryBackoff <= 0 {
		cfg.Agent.RetryBackoff = def.Agent.RetryBackoff
	}
	if cfg.Tools.Search.MaxResults <= 0 {
		cfg.Tools.Search.MaxResults = def.Tools.Search.MaxResults
	}
	if strings.TrimSpace(cfg.Ledger.KeyPrefix) == "" {
		cfg.Ledger.KeyPrefix = def.Ledger.KeyPrefix
	}
}

// Validate checks that the configuration is usable for the run command.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("server.url is required")
	}
	if strings.TrimSpace(c.Server.WSURL) == "" {
		return fmt.Errorf("server.wsUrl is required")
	}
	if strings.TrimSpace(c.Server.Token) == "" {
		return fmt.Errorf("server.token is required")
	}
	if strings.TrimSpace(c.Server.BotUserID) == "" {
		return fmt.Errorf("server.botUserId is required")
	}
	if strings.TrimSpace(c.Server.BotUsername) == "" {
		return fmt.Errorf("server.botUsername is required")
	}
	if len(c.Model.ChatEndpoints) == 0 {
		return fmt.Errorf("model.chatEndpoints must list at least one endpoint")
	}
	for i, ep := range c.Model.ChatEndpoints {
		if strings.TrimSpace(ep.URL) == "" || strings.TrimSpace(ep.Model) == "" {
			return fmt.Errorf("model.chatEndpoints[%d]: url and model are required", i)
		}
	}
	for i, ep := range c.Model.VisionEndpoints {
		if strings.TrimSpace(ep.URL) == "" || strings.TrimSpace(ep.Model) == "" {
			return fmt.Errorf("model.visionEndpoints[%d]: url and model are required", i)
		}
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substituteEnv replaces ${VAR} references in the raw config file with the
// corresponding environment values. Unset variables are left as-is.
func substituteEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		if value, ok := os.LookupEnv(string(name)); ok {
			return []byte(value)
		}
		return match
	})
}

// Save writes the configuration to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
