package slack

import "errors"

// Sentinel errors for Slack API failures. Callers match these with errors.Is
// to decide exit codes and user-facing messages.
var (
	// ErrChannelNotFound indicates the channel name or ID could not be resolved.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrAccessDenied indicates the bot is not a member of the channel or
	// lacks the required scope.
	ErrAccessDenied = errors.New("access denied")

	// ErrRateLimited indicates the API returned HTTP 429. The client retries
	// once; if the retry also fails the error is escalated wrapped in
	// ErrUpstream.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates any other non-recoverable Slack API failure.
	ErrUpstream = errors.New("slack api error")
)
