// Package summarize turns a rendered channel transcript into a summary by
// calling the Anthropic API.
package summarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"recap/internal/transcript"
)

// ErrSummarization indicates the summarization API call failed. The
// upstream error detail is attached; the call is never retried here.
var ErrSummarization = errors.New("summarization failed")

const (
	// DefaultModel is the model used when the caller does not override it.
	DefaultModel = anthropic.ModelClaudeSonnet4_20250514

	// DefaultMaxTokens bounds the summary length.
	DefaultMaxTokens = 1500
)

// Result is a finished summary. Transient: rendered to the caller and
// discarded.
type Result struct {
	Text  string           `json:"text"`
	Style transcript.Style `json:"style"`
}

// Summarizer produces channel summaries through the Anthropic messages API.
type Summarizer struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	baseURL   string
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(s *Summarizer) {
		s.model = anthropic.Model(model)
	}
}

// WithMaxTokens overrides the default response token budget.
func WithMaxTokens(n int64) Option {
	return func(s *Summarizer) {
		s.maxTokens = n
	}
}

// WithBaseURL overrides the default API endpoint (useful for testing).
func WithBaseURL(url string) Option {
	return func(s *Summarizer) {
		s.baseURL = url
	}
}

// New creates a Summarizer. The API key is required. Upstream failures are
// surfaced on the first attempt: the SDK's built-in retries are disabled.
func New(apiKey string, opts ...Option) (*Summarizer, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key is required")
	}

	s := &Summarizer{
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(s)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	s.client = anthropic.NewClient(reqOpts...)
	return s, nil
}

// Summarize sends the transcript to the model and returns the summary text
// prefixed with a stats header. An empty transcript short-circuits to a
// fixed no-activity message without calling the API.
func (s *Summarizer) Summarize(ctx context.Context, t transcript.Transcript, channelName string, style transcript.Style) (Result, error) {
	if t.Empty() {
		return Result{
			Text:  fmt.Sprintf("No messages found in #%s for the specified time period.", channelName),
			Style: style,
		}, nil
	}

	prompt := buildPrompt(t, channelName, style)

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrSummarization, err)
	}

	text := textContent(msg)
	if text == "" {
		return Result{}, fmt.Errorf("%w: model returned no text content", ErrSummarization)
	}

	return Result{
		Text:  buildHeader(t.Stats, channelName) + "\n" + text,
		Style: style,
	}, nil
}

func textContent(msg *anthropic.Message) string {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}
