package main

import (
	"errors"
	"fmt"
	"testing"

	"recap/internal/slack"
	"recap/internal/summarize"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "channel not found",
			err:  slack.ErrChannelNotFound,
			want: ExitChannelNotFound,
		},
		{
			name: "wrapped channel not found",
			err:  fmt.Errorf("fetching #general: %w", slack.ErrChannelNotFound),
			want: ExitChannelNotFound,
		},
		{
			name: "access denied",
			err:  fmt.Errorf("%w: not_in_channel", slack.ErrAccessDenied),
			want: ExitAccessDenied,
		},
		{
			name: "upstream",
			err:  fmt.Errorf("%w: conversations.history returned status 500", slack.ErrUpstream),
			want: ExitUpstreamError,
		},
		{
			name: "rate limited escalates to upstream",
			err:  fmt.Errorf("%w: conversations.history: %w after 2 attempts", slack.ErrUpstream, slack.ErrRateLimited),
			want: ExitUpstreamError,
		},
		{
			name: "summarization",
			err:  fmt.Errorf("%w: api timeout", summarize.ErrSummarization),
			want: ExitSummarizeError,
		},
		{
			name: "plain error",
			err:  errors.New("something else"),
			want: ExitError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
