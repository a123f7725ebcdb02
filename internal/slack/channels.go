package slack

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// wireChannel is a channel record from conversations.list.
type wireChannel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
}

// channelListResponse is the response from conversations.list.
type channelListResponse struct {
	apiResponse
	Channels         []wireChannel    `json:"channels"`
	ResponseMetadata responseMetadata `json:"response_metadata"`
}

// ListChannels returns all non-archived public channels visible to the bot,
// members and non-members alike.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel

	cursor := ""
	for {
		params := url.Values{}
		params.Set("types", "public_channel")
		params.Set("exclude_archived", "true")
		params.Set("limit", strconv.Itoa(pageSize))
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var page channelListResponse
		if err := c.call(ctx, "conversations.list", params, nil, &page); err != nil {
			return nil, fmt.Errorf("listing channels: %w", err)
		}

		for _, raw := range page.Channels {
			channels = append(channels, Channel{ID: raw.ID, Name: raw.Name, IsMember: raw.IsMember})
		}

		cursor = page.ResponseMetadata.NextCursor
		if cursor == "" {
			break
		}
	}

	return channels, nil
}

// ResolveChannel turns a channel reference (name, #name, or raw ID) into a
// Channel. Names are matched against the public channel list. Raw IDs are
// accepted as-is; their membership is verified by the first history call.
func (c *Client) ResolveChannel(ctx context.Context, ref string) (Channel, error) {
	name := strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if name == "" {
		return Channel{}, fmt.Errorf("%w: empty channel reference", ErrChannelNotFound)
	}

	if isChannelID(name) {
		return Channel{ID: name, Name: name, IsMember: true}, nil
	}

	channels, err := c.ListChannels(ctx)
	if err != nil {
		return Channel{}, err
	}
	for _, ch := range channels {
		if ch.Name == name {
			if !ch.IsMember {
				return Channel{}, fmt.Errorf("%w: bot is not a member of #%s", ErrAccessDenied, name)
			}
			return ch, nil
		}
	}

	return Channel{}, fmt.Errorf("%w: #%s", ErrChannelNotFound, name)
}

// isChannelID reports whether s looks like a Slack channel ID, e.g.
// "C024BE91L".
func isChannelID(s string) bool {
	if len(s) < 9 {
		return false
	}
	if s[0] != 'C' && s[0] != 'G' {
		return false
	}
	for _, r := range s[1:] {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
