// Package main provides the recap CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"recap/internal/config"
	"recap/internal/recap"
	"recap/internal/slack"
	"recap/internal/summarize"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath overrides the default config file location
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like unknown flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recap",
	Short: "Slack channel summarization with Claude",
	Long: `recap condenses recent Slack channel activity into Claude-written summaries.

Core features:
  - Channel history fetch with optional thread expansion
  - Transcript rendering with message and participant stats
  - Detailed or brief summaries via the Anthropic API
  - Preview summaries locally or post them back to Slack
  - Slash command server for /summarize inside Slack

Requires SLACK_BOT_TOKEN with channels:history, channels:read, users:read,
and chat:write scopes, plus ANTHROPIC_API_KEY for summarization. Both are
read from the environment, a .env file, or ~/.config/recap/config.yml.
Listing commands output JSON by default; use --human for tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for SLACK_BOT_TOKEN and ANTHROPIC_API_KEY)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.config/recap/config.yml)")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// mustSlackClient builds the Slack client from config, exits on error.
func mustSlackClient(cfg *config.Config) *slack.Client {
	if err := cfg.ValidateSlack(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	var opts []slack.ClientOption
	if cfg.MaxMessages > 0 {
		opts = append(opts, slack.WithMaxMessages(cfg.MaxMessages))
	}
	client, err := slack.New(cfg.SlackToken, opts...)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return client
}

// mustSummarizer builds the Claude summarizer from config, exits on error.
func mustSummarizer(cfg *config.Config) *summarize.Summarizer {
	if err := cfg.ValidateSummarizer(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	var opts []summarize.Option
	if cfg.Model != "" {
		opts = append(opts, summarize.WithModel(cfg.Model))
	}
	s, err := summarize.New(cfg.AnthropicAPIKey, opts...)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return s
}

// mustService wires the full summarization pipeline, exits on error.
func mustService(cfg *config.Config) *recap.Service {
	return recap.NewService(mustSlackClient(cfg), mustSummarizer(cfg))
}
