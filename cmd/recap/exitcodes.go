package main

import (
	"errors"

	"recap/internal/slack"
	"recap/internal/summarize"
)

// Exit codes returned by the recap CLI
const (
	ExitSuccess         = 0 // Success
	ExitError           = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError     = 2 // Configuration error (missing token or API key)
	ExitChannelNotFound = 3 // Channel not found or not visible to the bot
	ExitAccessDenied    = 4 // Bot is not in the channel or lacks a scope
	ExitUpstreamError   = 5 // Slack API failure
	ExitSummarizeError  = 6 // Claude API failure
)

// exitCodeFor maps pipeline errors to exit codes. AccessDenied and
// ChannelNotFound are checked before Upstream so the specific codes win
// over the general one in wrapped chains.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, slack.ErrChannelNotFound):
		return ExitChannelNotFound
	case errors.Is(err, slack.ErrAccessDenied):
		return ExitAccessDenied
	case errors.Is(err, summarize.ErrSummarization):
		return ExitSummarizeError
	case errors.Is(err, slack.ErrUpstream):
		return ExitUpstreamError
	default:
		return ExitError
	}
}
