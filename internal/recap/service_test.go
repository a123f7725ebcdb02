package recap

import (
	"context"
	"errors"
	"testing"
	"time"

	"recap/internal/slack"
	"recap/internal/summarize"
	"recap/internal/transcript"
)

// Interface checks against the real implementations.
var (
	_ HistorySource   = (*slack.Client)(nil)
	_ SummaryProvider = (*summarize.Summarizer)(nil)
)

type fakeHistory struct {
	channel    slack.Channel
	resolveErr error
	messages   []slack.Message
	fetchErr   error
	postErr    error

	resolvedRef    string
	fetchedID      string
	fetchedWindow  slack.Window
	fetchedThreads bool
	posted         []string
}

func (f *fakeHistory) ResolveChannel(ctx context.Context, ref string) (slack.Channel, error) {
	f.resolvedRef = ref
	if f.resolveErr != nil {
		return slack.Channel{}, f.resolveErr
	}
	return f.channel, nil
}

func (f *fakeHistory) FetchMessages(ctx context.Context, channelID string, window slack.Window, includeThreads bool) ([]slack.Message, error) {
	f.fetchedID = channelID
	f.fetchedWindow = window
	f.fetchedThreads = includeThreads
	return f.messages, f.fetchErr
}

func (f *fakeHistory) PostMessage(ctx context.Context, channelID, text string) error {
	if f.postErr != nil {
		return f.postErr
	}
	f.posted = append(f.posted, channelID+": "+text)
	return nil
}

type fakeSummarizer struct {
	err error

	transcript  transcript.Transcript
	channelName string
	style       transcript.Style
}

func (f *fakeSummarizer) Summarize(ctx context.Context, t transcript.Transcript, channelName string, style transcript.Style) (summarize.Result, error) {
	f.transcript = t
	f.channelName = channelName
	f.style = style
	if f.err != nil {
		return summarize.Result{}, f.err
	}
	return summarize.Result{Text: "summary of " + channelName, Style: style}, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
}

func newTestService(history *fakeHistory, summarizer *fakeSummarizer) *Service {
	s := NewService(history, summarizer)
	s.now = fixedNow
	return s
}

func TestRunPipeline(t *testing.T) {
	history := &fakeHistory{
		channel: slack.Channel{ID: "C001", Name: "general", IsMember: true},
		messages: []slack.Message{
			{TS: "1", UserID: "U1", UserName: "alice", Text: "hello", Time: fixedNow().Add(-2 * time.Hour)},
			{TS: "2", UserID: "U2", UserName: "bob", Text: "hi", Time: fixedNow().Add(-time.Hour)},
		},
	}
	summarizer := &fakeSummarizer{}
	svc := newTestService(history, summarizer)

	res, err := svc.Run(context.Background(), Request{
		Channel:        "#general",
		Duration:       24 * time.Hour,
		IncludeThreads: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if history.resolvedRef != "#general" {
		t.Errorf("resolved ref = %q", history.resolvedRef)
	}
	if history.fetchedID != "C001" {
		t.Errorf("fetched channel = %q, want C001", history.fetchedID)
	}
	if !history.fetchedThreads {
		t.Error("thread expansion flag was not passed through")
	}

	wantWindow := slack.NewWindow(fixedNow(), 24*time.Hour)
	if history.fetchedWindow != wantWindow {
		t.Errorf("window = %+v, want %+v", history.fetchedWindow, wantWindow)
	}

	if summarizer.channelName != "general" {
		t.Errorf("summarizer got channel %q, want general", summarizer.channelName)
	}
	if summarizer.style != transcript.StyleDetailed {
		t.Errorf("style = %q, want detailed default", summarizer.style)
	}
	if summarizer.transcript.Stats.MessageCount != 2 {
		t.Errorf("transcript MessageCount = %d, want 2", summarizer.transcript.Stats.MessageCount)
	}

	if res.Summary != "summary of general" {
		t.Errorf("Summary = %q", res.Summary)
	}
	if res.Channel.ID != "C001" || res.Window != wantWindow || res.Stats.MessageCount != 2 {
		t.Errorf("Result = %+v", res)
	}
	if res.Empty() {
		t.Error("Result should not be empty")
	}
}

func TestRunStylePassthrough(t *testing.T) {
	history := &fakeHistory{channel: slack.Channel{ID: "C001", Name: "general"}}
	summarizer := &fakeSummarizer{}
	svc := newTestService(history, summarizer)

	_, err := svc.Run(context.Background(), Request{
		Channel:  "general",
		Duration: time.Hour,
		Style:    transcript.StyleBrief,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summarizer.style != transcript.StyleBrief {
		t.Errorf("style = %q, want brief", summarizer.style)
	}
}

func TestRunRejectsNonPositiveDuration(t *testing.T) {
	svc := newTestService(&fakeHistory{}, &fakeSummarizer{})

	for _, d := range []time.Duration{0, -time.Hour} {
		_, err := svc.Run(context.Background(), Request{Channel: "general", Duration: d})
		if !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("Run(duration=%v) error = %v, want ErrInvalidDuration", d, err)
		}
	}
}

func TestRunChannelNotFound(t *testing.T) {
	history := &fakeHistory{resolveErr: slack.ErrChannelNotFound}
	svc := newTestService(history, &fakeSummarizer{})

	_, err := svc.Run(context.Background(), Request{Channel: "missing", Duration: time.Hour})
	if !errors.Is(err, slack.ErrChannelNotFound) {
		t.Fatalf("got %v, want ErrChannelNotFound", err)
	}
}

func TestRunFetchError(t *testing.T) {
	history := &fakeHistory{
		channel:  slack.Channel{ID: "C001", Name: "general"},
		fetchErr: slack.ErrUpstream,
	}
	svc := newTestService(history, &fakeSummarizer{})

	_, err := svc.Run(context.Background(), Request{Channel: "general", Duration: time.Hour})
	if !errors.Is(err, slack.ErrUpstream) {
		t.Fatalf("got %v, want ErrUpstream", err)
	}
}

func TestRunSummarizeError(t *testing.T) {
	history := &fakeHistory{channel: slack.Channel{ID: "C001", Name: "general"}}
	summarizer := &fakeSummarizer{err: summarize.ErrSummarization}
	svc := newTestService(history, summarizer)

	_, err := svc.Run(context.Background(), Request{Channel: "general", Duration: time.Hour})
	if !errors.Is(err, summarize.ErrSummarization) {
		t.Fatalf("got %v, want ErrSummarization", err)
	}
}

func TestRunEmptyChannel(t *testing.T) {
	history := &fakeHistory{channel: slack.Channel{ID: "C001", Name: "quiet"}}
	summarizer := &fakeSummarizer{}
	svc := newTestService(history, summarizer)

	res, err := svc.Run(context.Background(), Request{Channel: "quiet", Duration: time.Hour})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Empty() {
		t.Error("Result should be empty")
	}
	if summarizer.transcript.Stats.MessageCount != 0 {
		t.Error("summarizer should still be invoked with the empty transcript")
	}
}

func TestPostSummary(t *testing.T) {
	history := &fakeHistory{channel: slack.Channel{ID: "C002", Name: "digest", IsMember: true}}
	svc := newTestService(history, &fakeSummarizer{})

	ch, err := svc.PostSummary(context.Background(), "digest", "the summary")
	if err != nil {
		t.Fatalf("PostSummary failed: %v", err)
	}
	if ch.ID != "C002" {
		t.Errorf("channel = %+v", ch)
	}
	if len(history.posted) != 1 || history.posted[0] != "C002: the summary" {
		t.Errorf("posted = %v", history.posted)
	}
}

func TestPostSummaryError(t *testing.T) {
	history := &fakeHistory{
		channel: slack.Channel{ID: "C002", Name: "digest"},
		postErr: slack.ErrAccessDenied,
	}
	svc := newTestService(history, &fakeSummarizer{})

	_, err := svc.PostSummary(context.Background(), "digest", "text")
	if !errors.Is(err, slack.ErrAccessDenied) {
		t.Fatalf("got %v, want ErrAccessDenied", err)
	}
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{slack.ErrChannelNotFound, true},
		{slack.ErrAccessDenied, true},
		{ErrInvalidDuration, true},
		{ErrUnknownUnit, true},
		{slack.ErrUpstream, false},
		{summarize.ErrSummarization, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsUserError(tt.err); got != tt.want {
			t.Errorf("IsUserError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
