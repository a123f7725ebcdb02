package slack

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// wireMessage is a message as returned by the history and replies endpoints.
type wireMessage struct {
	Type       string `json:"type"`
	SubType    string `json:"subtype,omitempty"`
	User       string `json:"user"`
	Text       string `json:"text"`
	TS         string `json:"ts"`
	ThreadTS   string `json:"thread_ts,omitempty"`
	ReplyCount int    `json:"reply_count,omitempty"`
}

// isUserMessage reports whether the raw message is a plain user-authored
// text message. Subtyped events (channel_join, bot_message, ...) and
// messages without an author or body are dropped.
func (m wireMessage) isUserMessage() bool {
	return m.Type == "message" && m.SubType == "" && m.User != "" && m.Text != ""
}

// historyResponse is the response from conversations.history and
// conversations.replies.
type historyResponse struct {
	apiResponse
	Messages         []wireMessage    `json:"messages"`
	HasMore          bool             `json:"has_more"`
	ResponseMetadata responseMetadata `json:"response_metadata"`
}

// FetchMessages retrieves the channel's messages inside the window, oldest
// first. Root messages are paginated from conversations.history; when
// includeThreads is set, each root with replies gets its thread fetched and
// the replies are placed directly after it, ordered ascending within the
// thread. No message appears twice even if the API returns it on more than
// one page or in both the history and a thread.
func (c *Client) FetchMessages(ctx context.Context, channelID string, window Window, includeThreads bool) ([]Message, error) {
	names := c.newUserCache()
	seen := make(map[string]bool)

	roots, err := c.fetchRoots(ctx, channelID, window, seen, names)
	if err != nil {
		return nil, err
	}

	if !includeThreads {
		return roots, nil
	}

	out := make([]Message, 0, len(roots))
	for _, root := range roots {
		out = append(out, root)
		if root.ReplyCount == 0 {
			continue
		}
		replies, err := c.fetchThread(ctx, channelID, root.TS, seen, names)
		if err != nil {
			return nil, err
		}
		out = append(out, replies...)
	}
	return out, nil
}

// fetchRoots pages through conversations.history collecting root messages.
// The endpoint returns newest first; pagination stops when the API reports
// no more pages, a message falls below the window's lower bound, or the
// message budget is reached. The result is sorted ascending.
func (c *Client) fetchRoots(ctx context.Context, channelID string, window Window, seen map[string]bool, names *userCache) ([]Message, error) {
	var roots []Message

	cursor := ""
	for len(roots) < c.maxMessages {
		params := url.Values{}
		params.Set("channel", channelID)
		params.Set("oldest", formatTimestamp(window.Start))
		params.Set("latest", formatTimestamp(window.End))
		params.Set("limit", strconv.Itoa(min(pageSize, c.maxMessages-len(roots))))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page historyResponse
		if err := c.call(ctx, "conversations.history", params, nil, &page); err != nil {
			return nil, fmt.Errorf("fetching history for %s: %w", channelID, err)
		}

		pastWindow := false
		for _, raw := range page.Messages {
			t, err := parseTimestamp(raw.TS)
			if err != nil {
				continue
			}
			if t.Before(window.Start) {
				// Newest-first: everything after this is older still.
				pastWindow = true
				break
			}
			if !t.Before(window.End) {
				continue
			}
			if !raw.isUserMessage() {
				continue
			}
			if raw.ThreadTS != "" && raw.ThreadTS != raw.TS {
				// A reply surfaced in the main feed; the thread fetch owns it.
				continue
			}
			if seen[raw.TS] {
				continue
			}
			seen[raw.TS] = true
			roots = append(roots, newMessage(raw, t, names.resolve(ctx, raw.User)))
			if len(roots) >= c.maxMessages {
				break
			}
		}

		if pastWindow || !page.HasMore || page.ResponseMetadata.NextCursor == "" {
			break
		}
		cursor = page.ResponseMetadata.NextCursor
	}

	sortMessages(roots)
	return roots, nil
}

// fetchThread pages through conversations.replies for one thread root,
// returning the replies ascending. The parent message leads the reply feed
// and is skipped, as is anything already collected.
func (c *Client) fetchThread(ctx context.Context, channelID, rootTS string, seen map[string]bool, names *userCache) ([]Message, error) {
	var replies []Message

	cursor := ""
	for {
		params := url.Values{}
		params.Set("channel", channelID)
		params.Set("ts", rootTS)
		params.Set("limit", strconv.Itoa(pageSize))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page historyResponse
		if err := c.call(ctx, "conversations.replies", params, nil, &page); err != nil {
			return nil, fmt.Errorf("fetching thread %s: %w", rootTS, err)
		}

		for _, raw := range page.Messages {
			if raw.TS == rootTS {
				continue
			}
			if !raw.isUserMessage() {
				continue
			}
			if seen[raw.TS] {
				continue
			}
			t, err := parseTimestamp(raw.TS)
			if err != nil {
				continue
			}
			if raw.ThreadTS == "" {
				raw.ThreadTS = rootTS
			}
			seen[raw.TS] = true
			replies = append(replies, newMessage(raw, t, names.resolve(ctx, raw.User)))
		}

		if !page.HasMore || page.ResponseMetadata.NextCursor == "" {
			break
		}
		cursor = page.ResponseMetadata.NextCursor
	}

	sortMessages(replies)
	return replies, nil
}

// newMessage converts a wire message to the public form.
func newMessage(raw wireMessage, t time.Time, userName string) Message {
	return Message{
		TS:         raw.TS,
		UserID:     raw.User,
		UserName:   userName,
		Text:       raw.Text,
		Time:       t,
		ThreadTS:   raw.ThreadTS,
		ReplyCount: raw.ReplyCount,
	}
}

// sortMessages orders messages ascending by time, breaking ties on the
// timestamp token, which is unique per channel.
func sortMessages(messages []Message) {
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].Time.Equal(messages[j].Time) {
			return messages[i].Time.Before(messages[j].Time)
		}
		return messages[i].TS < messages[j].TS
	})
}
