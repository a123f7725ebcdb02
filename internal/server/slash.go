package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recap/internal/recap"
	"recap/internal/transcript"
)

const (
	responseEphemeral = "ephemeral"
	responseInChannel = "in_channel"

	// defaultWindow applies when the command names no timeframe; maxWindow
	// caps what a user may request.
	defaultWindow = 30 * 24 * time.Hour
	maxWindow     = 30 * 24 * time.Hour
)

type slackResponse struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

func (s *Server) respond(w http.ResponseWriter, responseType, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(slackResponse{ResponseType: responseType, Text: text})
}

// handleSummarize acknowledges the slash command within Slack's 3 second
// deadline and hands the actual work to a background goroutine that posts
// the result to the command's response URL.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !verifySignature(r, body, s.signingSecret) {
		s.log.Warn("rejected slash command with invalid signature", "remote_addr", r.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	responseURL := form.Get("response_url")
	fallback := form.Get("channel_name")
	if fallback == "" {
		fallback = form.Get("channel_id")
	}

	cmd, errMsg := parseCommandText(form.Get("text"), fallback)
	if errMsg != "" {
		s.respond(w, responseEphemeral, errMsg)
		return
	}

	id := requestID(r.Context())
	s.log.Info("slash command accepted",
		"request_id", id,
		"channel", cmd.channel,
		"window", recap.DescribeDuration(cmd.duration),
		"threads", cmd.threads,
		"style", cmd.style)

	s.wg.Add(1)
	go s.processSummary(id, cmd, responseURL)

	s.respond(w, responseEphemeral, fmt.Sprintf(
		"Generating summary for #%s (last %s)... This may take a moment.",
		cmd.channel, recap.DescribeDuration(cmd.duration)))
}

type slashCommand struct {
	channel  string
	duration time.Duration
	threads  bool
	style    transcript.Style
}

// parseCommandText parses the free-form slash command text. The first token
// may name a channel ("#general", "<#C123|general>"); remaining tokens may
// set a timeframe ("7d", "12h"), disable thread expansion ("no-threads"),
// or pick a style ("brief", "detailed"). Unrecognized tokens are ignored.
// A non-empty errMsg is returned to the user verbatim.
func parseCommandText(text, fallbackChannel string) (cmd slashCommand, errMsg string) {
	cmd = slashCommand{
		channel:  fallbackChannel,
		duration: defaultWindow,
		threads:  true,
		style:    transcript.StyleDetailed,
	}

	tokens := strings.Fields(text)
	if len(tokens) > 0 {
		if name, ok := parseChannelToken(tokens[0]); ok {
			cmd.channel = name
			tokens = tokens[1:]
		}
	}
	if cmd.channel == "" {
		return cmd, "Error: Could not determine channel. Please specify a channel explicitly."
	}

	durationSet := false
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		switch lower {
		case "no-threads":
			cmd.threads = false
			continue
		case string(transcript.StyleBrief), string(transcript.StyleDetailed):
			cmd.style = transcript.Style(lower)
			continue
		}
		if durationSet {
			continue
		}
		if d, err := recap.ParseDuration(lower); err == nil {
			if d > maxWindow {
				return cmd, fmt.Sprintf(
					"Error: Maximum timeframe is 30 days. You requested %s.",
					recap.DescribeDuration(d))
			}
			cmd.duration = d
			durationSet = true
		}
	}

	return cmd, ""
}

// parseChannelToken extracts a channel reference from "#name", "<#C123>",
// or "<#C123|name>" tokens. Escaped tokens prefer the readable name so the
// summary header shows it.
func parseChannelToken(tok string) (string, bool) {
	if strings.HasPrefix(tok, "<#") && strings.HasSuffix(tok, ">") {
		inner := tok[2 : len(tok)-1]
		id, name, found := strings.Cut(inner, "|")
		if found && name != "" {
			return name, true
		}
		return id, id != ""
	}
	if strings.HasPrefix(tok, "#") {
		name := strings.TrimPrefix(tok, "#")
		return name, name != ""
	}
	return "", false
}

// processSummary runs the pipeline and delivers the result. It runs with a
// background context: an accepted command runs to completion even while the
// server is shutting down.
func (s *Server) processSummary(id string, cmd slashCommand, responseURL string) {
	defer s.wg.Done()

	start := time.Now()
	res, err := s.service.Run(context.Background(), recap.Request{
		Channel:        cmd.channel,
		Duration:       cmd.duration,
		IncludeThreads: cmd.threads,
		Style:          cmd.style,
	})
	if err != nil {
		s.log.Error("summary failed", "request_id", id, "channel", cmd.channel, "error", err)
		s.postResponse(responseURL, responseEphemeral, fmt.Sprintf("Error generating summary: %s", err))
		return
	}

	s.log.Info("summary complete",
		"request_id", id,
		"channel", res.Channel.Name,
		"range", recap.FormatDateRange(res.Window.Start, res.Window.End),
		"messages", res.Stats.MessageCount,
		"participants", res.Stats.ParticipantCount,
		"elapsed", time.Since(start).Round(time.Millisecond))

	s.postResponse(responseURL, responseInChannel, res.Summary)
}

// postResponse delivers text to the slash command's response URL. Failures
// are logged; there is nowhere else to report them.
func (s *Server) postResponse(responseURL, responseType, text string) {
	if responseURL == "" {
		return
	}

	payload, err := json.Marshal(slackResponse{ResponseType: responseType, Text: text})
	if err != nil {
		s.log.Error("encoding response payload", "error", err)
		return
	}

	resp, err := s.httpClient.Post(responseURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		s.log.Error("posting to response URL", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("response URL returned non-OK status", "status", resp.StatusCode)
	}
}
