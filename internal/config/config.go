// Package config loads recap configuration from an optional YAML file and
// the environment. Environment variables override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI and server need to talk to Slack and the
// summarization API.
type Config struct {
	SlackToken         string `yaml:"slack_bot_token,omitempty"`
	SlackSigningSecret string `yaml:"slack_signing_secret,omitempty"`
	AnthropicAPIKey    string `yaml:"anthropic_api_key,omitempty"`
	Model              string `yaml:"model,omitempty"`
	Addr               string `yaml:"addr,omitempty"`
	MaxMessages        int    `yaml:"max_messages,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "recap"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// DefaultAddr is the server listen address when none is configured.
	DefaultAddr = ":3000"
)

// DefaultPath returns the path to the config file. Respects
// XDG_CONFIG_HOME, defaults to ~/.config/recap/config.yml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file at path (DefaultPath when empty) and applies
// environment overrides. A missing file is not an error: the environment
// alone is a complete configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to the environment
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SLACK_BOT_TOKEN"); v != "" {
		c.SlackToken = v
	}
	if v := os.Getenv("SLACK_SIGNING_SECRET"); v != "" {
		c.SlackSigningSecret = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AnthropicAPIKey = v
	}
	if v := os.Getenv("RECAP_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Addr = ":" + v
	}
}

// ValidateSlack checks that Slack API access is configured.
func (c *Config) ValidateSlack() error {
	if c.SlackToken == "" {
		return errors.New("SLACK_BOT_TOKEN not set; required for Slack API access")
	}
	return nil
}

// ValidateSummarizer checks that the summarization API is configured.
func (c *Config) ValidateSummarizer() error {
	if c.AnthropicAPIKey == "" {
		return errors.New("ANTHROPIC_API_KEY not set; required for summarization")
	}
	return nil
}

// ValidateServer checks everything the slash command server needs.
func (c *Config) ValidateServer() error {
	if err := c.ValidateSlack(); err != nil {
		return err
	}
	if err := c.ValidateSummarizer(); err != nil {
		return err
	}
	if c.SlackSigningSecret == "" {
		return errors.New("SLACK_SIGNING_SECRET not set; required to verify slash command requests")
	}
	return nil
}
