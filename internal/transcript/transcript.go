// Package transcript renders fetched channel messages into the text block
// handed to the summarizer, along with aggregate statistics about the
// conversation.
package transcript

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"recap/internal/slack"
)

// Style controls how much per-message detail is forwarded to the summarizer.
type Style string

const (
	// StyleDetailed forwards the full transcript including thread markers.
	StyleDetailed Style = "detailed"

	// StyleBrief truncates long messages and omits thread markers, for
	// when the caller wants a short digest rather than a breakdown.
	StyleBrief Style = "brief"
)

// briefTextLimit caps per-message text in brief transcripts.
const briefTextLimit = 200

// ParseStyle validates a style name. The empty string maps to
// StyleDetailed.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "", string(StyleDetailed):
		return StyleDetailed, nil
	case string(StyleBrief):
		return StyleBrief, nil
	default:
		return "", fmt.Errorf("unknown style %q (expected detailed or brief)", s)
	}
}

// Stats summarizes the conversation the transcript was rendered from.
// MessageCount includes thread replies; ThreadCount counts root messages
// with at least one rendered reply.
type Stats struct {
	MessageCount     int       `json:"message_count"`
	ParticipantCount int       `json:"participant_count"`
	ThreadCount      int       `json:"thread_count"`
	ReplyCount       int       `json:"reply_count"`
	First            time.Time `json:"first,omitzero"`
	Last             time.Time `json:"last,omitzero"`
}

// Transcript is the rendered conversation plus its stats. Constructed
// fresh per request and discarded once the summary comes back.
type Transcript struct {
	Text  string `json:"text"`
	Stats Stats  `json:"stats"`
}

// Empty reports whether the transcript contains no messages.
func (t Transcript) Empty() bool {
	return t.Stats.MessageCount == 0
}

// Format renders messages into a transcript. The input must be ordered the
// way the fetcher returns it: roots ascending by timestamp, each root's
// replies directly after it. Replies whose root is not present are dropped.
//
// Format performs no I/O; identical input always yields identical output.
func Format(messages []slack.Message, style Style) Transcript {
	var (
		b           strings.Builder
		stats       Stats
		authors     = make(map[string]struct{})
		currentRoot string
		threadOpen  bool
	)

	closeThread := func() {
		if threadOpen && style == StyleDetailed {
			b.WriteString("    [THREAD END]\n")
		}
		threadOpen = false
	}

	for _, m := range messages {
		if m.IsReply() {
			if m.ThreadTS != currentRoot {
				continue
			}
			if !threadOpen {
				stats.ThreadCount++
				threadOpen = true
			}
			stats.ReplyCount++
			fmt.Fprintf(&b, "    └─ [%s] %s: %s\n", clock(m.Time), m.UserName, renderText(m.Text, style))
		} else {
			closeThread()
			currentRoot = m.TS
			line := fmt.Sprintf("[%s] %s: %s", clock(m.Time), m.UserName, renderText(m.Text, style))
			if style == StyleDetailed && m.ReplyCount > 0 {
				line += fmt.Sprintf(" [THREAD START - %d replies]", m.ReplyCount)
			}
			b.WriteString(line)
			b.WriteByte('\n')
		}

		stats.MessageCount++
		authors[m.UserID] = struct{}{}
		if stats.First.IsZero() || m.Time.Before(stats.First) {
			stats.First = m.Time
		}
		if m.Time.After(stats.Last) {
			stats.Last = m.Time
		}
	}
	closeThread()

	stats.ParticipantCount = len(authors)
	return Transcript{Text: strings.TrimSuffix(b.String(), "\n"), Stats: stats}
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

func renderText(text string, style Style) string {
	if style == StyleBrief {
		return truncateUTF8(text, briefTextLimit)
	}
	return text
}

// truncateUTF8 truncates text to at most maxLen bytes without splitting a
// multi-byte character. Adds "..." if anything was cut.
func truncateUTF8(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}

	validLen := maxLen
	for validLen > 0 && !utf8.RuneStart(text[validLen]) {
		validLen--
	}

	if validLen == 0 {
		return ""
	}

	return text[:validLen] + "..."
}
