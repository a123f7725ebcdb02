package slack

import (
	"context"
	"fmt"
)

// postMessageRequest is the JSON body for chat.postMessage.
type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// postMessageResponse is the response from chat.postMessage.
type postMessageResponse struct {
	apiResponse
	TS string `json:"ts"`
}

// PostMessage posts text to a channel as the bot.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) error {
	body := postMessageRequest{Channel: channelID, Text: text}
	var resp postMessageResponse
	if err := c.call(ctx, "chat.postMessage", nil, body, &resp); err != nil {
		return fmt.Errorf("posting to %s: %w", channelID, err)
	}
	return nil
}

// authTestResponse is the response from auth.test.
type authTestResponse struct {
	apiResponse
	Team   string `json:"team"`
	User   string `json:"user"`
	UserID string `json:"user_id"`
}

// AuthTest verifies the token and returns the authenticated bot identity.
func (c *Client) AuthTest(ctx context.Context) (Identity, error) {
	var resp authTestResponse
	if err := c.call(ctx, "auth.test", nil, nil, &resp); err != nil {
		return Identity{}, err
	}
	return Identity{Team: resp.Team, User: resp.User, UserID: resp.UserID}, nil
}
