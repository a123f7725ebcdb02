package slack

import (
	"context"
	"net/url"
)

// wireUser is a user record from the users.info endpoint.
type wireUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Profile  struct {
		DisplayName string `json:"display_name"`
		RealName    string `json:"real_name"`
	} `json:"profile"`
}

// userInfoResponse is the response from users.info.
type userInfoResponse struct {
	apiResponse
	User wireUser `json:"user"`
}

// userCache resolves user IDs to display names for the duration of a single
// fetch. It lives and dies with one FetchMessages call, so concurrent
// requests share nothing.
type userCache struct {
	client *Client
	names  map[string]string
}

func (c *Client) newUserCache() *userCache {
	return &userCache{client: c, names: make(map[string]string)}
}

// resolve returns the display name for a user ID, falling back to the ID
// itself when the lookup fails. The fallback is cached too so a failing
// lookup is not repeated for every message by the same author.
func (u *userCache) resolve(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	if name, ok := u.names[userID]; ok {
		return name
	}

	name := userID
	params := url.Values{}
	params.Set("user", userID)
	var resp userInfoResponse
	if err := u.client.call(ctx, "users.info", params, nil, &resp); err == nil {
		if resolved := displayName(resp.User); resolved != "" {
			name = resolved
		}
	}

	u.names[userID] = name
	return name
}

// displayName picks the best available name for a user: profile display
// name, then real name, then the account name.
func displayName(u wireUser) string {
	if u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	if u.Profile.RealName != "" {
		return u.Profile.RealName
	}
	if u.RealName != "" {
		return u.RealName
	}
	return u.Name
}
