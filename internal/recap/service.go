// Package recap wires channel history, transcript rendering, and
// summarization into the single pipeline shared by the CLI and the slash
// command server.
package recap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recap/internal/slack"
	"recap/internal/summarize"
	"recap/internal/transcript"
)

// HistorySource is the part of the Slack client the pipeline needs.
type HistorySource interface {
	ResolveChannel(ctx context.Context, ref string) (slack.Channel, error)
	FetchMessages(ctx context.Context, channelID string, window slack.Window, includeThreads bool) ([]slack.Message, error)
	PostMessage(ctx context.Context, channelID, text string) error
}

// SummaryProvider turns a transcript into summary text.
type SummaryProvider interface {
	Summarize(ctx context.Context, t transcript.Transcript, channelName string, style transcript.Style) (summarize.Result, error)
}

// Request describes one summarization run.
type Request struct {
	// Channel is a channel reference: a name, "#name", or a channel ID.
	Channel string

	// Duration is how far back from now to fetch. Must be positive.
	Duration time.Duration

	// IncludeThreads expands thread replies into the transcript.
	IncludeThreads bool

	// Style defaults to transcript.StyleDetailed when empty.
	Style transcript.Style
}

// Result is a completed run. Everything here is derived per request and
// never stored.
type Result struct {
	Channel slack.Channel    `json:"channel"`
	Window  slack.Window     `json:"window"`
	Stats   transcript.Stats `json:"stats"`
	Summary string           `json:"summary"`
}

// Empty reports whether the run found no messages.
func (r Result) Empty() bool {
	return r.Stats.MessageCount == 0
}

// Service runs the fetch, format, summarize pipeline. Each call is
// independent; a Service is safe for concurrent use as long as its
// dependencies are.
type Service struct {
	slack      HistorySource
	summarizer SummaryProvider

	// now is a hook for tests.
	now func() time.Time
}

// NewService creates a Service from its two dependencies.
func NewService(source HistorySource, summarizer SummaryProvider) *Service {
	return &Service{
		slack:      source,
		summarizer: summarizer,
		now:        time.Now,
	}
}

// Run executes one summarization request: resolve the channel, fetch its
// history for the window ending now, render the transcript, and request the
// summary. Steps run sequentially; the first failure aborts the run.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	if req.Duration <= 0 {
		return Result{}, fmt.Errorf("%w: duration must be positive", ErrInvalidDuration)
	}
	style := req.Style
	if style == "" {
		style = transcript.StyleDetailed
	}

	channel, err := s.slack.ResolveChannel(ctx, req.Channel)
	if err != nil {
		return Result{}, err
	}

	window := slack.NewWindow(s.now(), req.Duration)
	messages, err := s.slack.FetchMessages(ctx, channel.ID, window, req.IncludeThreads)
	if err != nil {
		return Result{}, fmt.Errorf("fetching #%s: %w", channel.Name, err)
	}

	t := transcript.Format(messages, style)
	res, err := s.summarizer.Summarize(ctx, t, channel.Name, style)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Channel: channel,
		Window:  window,
		Stats:   t.Stats,
		Summary: res.Text,
	}, nil
}

// PostSummary posts text to the referenced channel and returns the resolved
// channel.
func (s *Service) PostSummary(ctx context.Context, channelRef, text string) (slack.Channel, error) {
	channel, err := s.slack.ResolveChannel(ctx, channelRef)
	if err != nil {
		return slack.Channel{}, err
	}
	if err := s.slack.PostMessage(ctx, channel.ID, text); err != nil {
		return slack.Channel{}, fmt.Errorf("posting to #%s: %w", channel.Name, err)
	}
	return channel, nil
}

// IsUserError reports whether err is something the caller did wrong (bad
// channel, bad duration, missing access) rather than an upstream failure.
func IsUserError(err error) bool {
	return errors.Is(err, slack.ErrChannelNotFound) ||
		errors.Is(err, slack.ErrAccessDenied) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrUnknownUnit)
}
