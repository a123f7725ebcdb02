package slack

import (
	"fmt"
	"strings"
	"time"
)

// Message is a single channel message from history or a thread.
type Message struct {
	TS         string    `json:"ts"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Text       string    `json:"text"`
	Time       time.Time `json:"time"`
	ThreadTS   string    `json:"thread_ts,omitempty"`
	ReplyCount int       `json:"reply_count,omitempty"`
}

// IsReply reports whether the message is a thread reply. Thread roots carry
// their own TS as ThreadTS, so equality means root.
func (m Message) IsReply() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}

// Channel is a conversation the bot can see.
type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
}

// Identity describes the authenticated bot, from auth.test.
type Identity struct {
	Team   string `json:"team"`
	User   string `json:"user"`
	UserID string `json:"user_id"`
}

// Window is a half-open time range [Start, End) for history fetches.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow returns the window ending at end and reaching back d.
func NewWindow(end time.Time, d time.Duration) Window {
	return Window{Start: end.Add(-d), End: end}
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// parseTimestamp parses a Slack timestamp token (e.g. "1737990123.000100").
func parseTimestamp(ts string) (time.Time, error) {
	parts := strings.SplitN(ts, ".", 2)
	var sec int64
	if _, err := fmt.Sscanf(parts[0], "%d", &sec); err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", ts)
	}
	var micro int64
	if len(parts) == 2 {
		fmt.Sscanf(parts[1], "%d", &micro)
	}
	return time.Unix(sec, micro*1000), nil
}

// formatTimestamp renders a time as a Slack timestamp parameter.
func formatTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}
