package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recap/internal/transcript"
)

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicRequest struct {
	Model     string           `json:"model"`
	MaxTokens int64            `json:"max_tokens"`
	System    []anthropicBlock `json:"system"`
	Messages  []struct {
		Role    string           `json:"role"`
		Content []anthropicBlock `json:"content"`
	} `json:"messages"`
}

// fakeAnthropic records requests to the messages endpoint and answers each
// one with a single text block.
type fakeAnthropic struct {
	reply    string
	status   int
	requests []anthropicRequest
}

func (f *fakeAnthropic) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		f.requests = append(f.requests, req)

		if f.status != 0 {
			w.WriteHeader(f.status)
			w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"model":       req.Model,
			"content":     []anthropicBlock{{Type: "text", Text: f.reply}},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 10, "output_tokens": 25},
		})
	})
	return mux
}

func newTestSummarizer(t *testing.T, fake *fakeAnthropic, opts ...Option) *Summarizer {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	opts = append(opts, WithBaseURL(server.URL))
	s, err := New("sk-ant-test", opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func sampleTranscript() transcript.Transcript {
	return transcript.Transcript{
		Text: "[09:15] alice: deploy went out\n[11:05] bob: lunch?",
		Stats: transcript.Stats{
			MessageCount:     2,
			ParticipantCount: 2,
			First:            time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC),
			Last:             time.Date(2024, 1, 15, 11, 5, 0, 0, time.UTC),
		},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") should fail")
	}
}

func TestSummarizeBuildsRequest(t *testing.T) {
	fake := &fakeAnthropic{reply: "*Summary text*"}
	s := newTestSummarizer(t, fake)

	_, err := s.Summarize(context.Background(), sampleTranscript(), "general", transcript.StyleDetailed)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("got %d API calls, want 1", len(fake.requests))
	}
	req := fake.requests[0]
	if req.Model != string(DefaultModel) {
		t.Errorf("model = %q, want %q", req.Model, DefaultModel)
	}
	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("max_tokens = %d, want %d", req.MaxTokens, DefaultMaxTokens)
	}
	if len(req.System) != 1 || !strings.Contains(req.System[0].Text, "Slack") {
		t.Errorf("system prompt missing Slack formatting rules: %+v", req.System)
	}

	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want one user message", req.Messages)
	}
	prompt := req.Messages[0].Content[0].Text
	for _, want := range []string{
		"#general channel",
		"2 messages from 2 participants",
		"Key discussions and topics covered",
		"[09:15] alice: deploy went out",
		"Provide the summary now:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestSummarizeBriefInstruction(t *testing.T) {
	fake := &fakeAnthropic{reply: "Short."}
	s := newTestSummarizer(t, fake)

	_, err := s.Summarize(context.Background(), sampleTranscript(), "general", transcript.StyleBrief)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	prompt := fake.requests[0].Messages[0].Content[0].Text
	if !strings.Contains(prompt, "brief 2-3 sentence summary") {
		t.Errorf("prompt missing brief instruction:\n%s", prompt)
	}
	if strings.Contains(prompt, "Key discussions") {
		t.Errorf("brief prompt should not carry the detailed instruction:\n%s", prompt)
	}
}

func TestSummarizeOptions(t *testing.T) {
	fake := &fakeAnthropic{reply: "ok"}
	s := newTestSummarizer(t, fake, WithModel("claude-haiku-test"), WithMaxTokens(400))

	_, err := s.Summarize(context.Background(), sampleTranscript(), "general", transcript.StyleDetailed)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	req := fake.requests[0]
	if req.Model != "claude-haiku-test" {
		t.Errorf("model = %q, want claude-haiku-test", req.Model)
	}
	if req.MaxTokens != 400 {
		t.Errorf("max_tokens = %d, want 400", req.MaxTokens)
	}
}

func TestSummarizeHeader(t *testing.T) {
	fake := &fakeAnthropic{reply: "*Deploys*\n- shipped release"}
	s := newTestSummarizer(t, fake)

	tr := sampleTranscript()
	tr.Stats.ThreadCount = 1
	tr.Stats.ReplyCount = 3
	tr.Stats.MessageCount = 5

	res, err := s.Summarize(context.Background(), tr, "general", transcript.StyleDetailed)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	lines := strings.Split(res.Text, "\n")
	if lines[0] != "*#general Summary* - January 15, 2024" {
		t.Errorf("header line = %q", lines[0])
	}
	if lines[1] != "_09:15 - 11:05 | 5 messages | 2 participants | 1 threads (3 replies)_" {
		t.Errorf("stats line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "━━━") {
		t.Errorf("ruler line = %q", lines[2])
	}
	if !strings.HasSuffix(res.Text, "*Deploys*\n- shipped release") {
		t.Errorf("summary body missing:\n%s", res.Text)
	}
}

func TestSummarizeStatsBarOmitsEmptyThreads(t *testing.T) {
	fake := &fakeAnthropic{reply: "ok"}
	s := newTestSummarizer(t, fake)

	res, err := s.Summarize(context.Background(), sampleTranscript(), "general", transcript.StyleDetailed)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if strings.Contains(res.Text, "threads") {
		t.Errorf("stats bar should omit threads when none were rendered:\n%s", res.Text)
	}
}

func TestSummarizeEmptyTranscriptSkipsAPI(t *testing.T) {
	fake := &fakeAnthropic{reply: "should never be used"}
	s := newTestSummarizer(t, fake)

	res, err := s.Summarize(context.Background(), transcript.Transcript{}, "quiet-channel", transcript.StyleDetailed)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(fake.requests) != 0 {
		t.Errorf("empty transcript should not reach the API, got %d calls", len(fake.requests))
	}
	want := "No messages found in #quiet-channel for the specified time period."
	if res.Text != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
}

func TestSummarizeAPIError(t *testing.T) {
	fake := &fakeAnthropic{status: http.StatusInternalServerError}
	s := newTestSummarizer(t, fake)

	_, err := s.Summarize(context.Background(), sampleTranscript(), "general", transcript.StyleDetailed)
	if !errors.Is(err, ErrSummarization) {
		t.Fatalf("got %v, want ErrSummarization", err)
	}
	if len(fake.requests) != 1 {
		t.Errorf("got %d API calls, want exactly 1 (no retries)", len(fake.requests))
	}
}

func TestSummarizeNoTextContent(t *testing.T) {
	fake := &fakeAnthropic{reply: ""}
	s := newTestSummarizer(t, fake)

	_, err := s.Summarize(context.Background(), sampleTranscript(), "general", transcript.StyleDetailed)
	if !errors.Is(err, ErrSummarization) {
		t.Fatalf("got %v, want ErrSummarization", err)
	}
}
