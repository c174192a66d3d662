package internal

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// The helpers below each build one route, pick the authentication the
// endpoint requires and return the decoded payload untouched. Hydration into
// models is the caller's job.

// ExchangeToken trades an authorization code for an access token.
func (c *Client) ExchangeToken(ctx context.Context, code, redirectURI string) (*types.AccessTokenResponse, error) {
	route, err := c.Route(http.MethodPost, "/oauth2/token", nil)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)

	var resp types.AccessTokenResponse
	if err := c.Do(ctx, &Request{Route: route, Auth: NoAuth, Form: form}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken trades a refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*types.AccessTokenResponse, error) {
	route, err := c.Route(http.MethodPost, "/oauth2/token", nil)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	var resp types.AccessTokenResponse
	if err := c.Do(ctx, &Request{Route: route, Auth: NoAuth, Form: form}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RevokeToken revokes an access or refresh token. tokenType is sent as the
// RFC 7009 token_type_hint.
func (c *Client) RevokeToken(ctx context.Context, token, tokenType string) error {
	route, err := c.Route(http.MethodPost, "/oauth2/token/revoke", nil)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("token", token)
	form.Set("token_type_hint", tokenType)

	return c.Do(ctx, &Request{Route: route, Auth: NoAuth, Form: form}, nil)
}

// ClientCredentialsToken performs the client credentials grant for the
// space-separated scope list. The application's owner is the token's user.
func (c *Client) ClientCredentialsToken(ctx context.Context, scope string) (*types.AccessTokenResponse, error) {
	route, err := c.Route(http.MethodPost, "/oauth2/token", nil)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if scope != "" {
		form.Set("scope", scope)
	}

	var resp types.AccessTokenResponse
	if err := c.Do(ctx, &Request{Route: route, Auth: Basic(), Form: form}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAppInfo fetches the application of the configured bot token.
func (c *Client) GetAppInfo(ctx context.Context) (*types.AppInfo, error) {
	route, err := c.Route(http.MethodGet, "/oauth2/applications/@me", nil)
	if err != nil {
		return nil, err
	}

	var resp types.AppInfo
	if err := c.Do(ctx, &Request{Route: route, Auth: Bot()}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCurrentAuthInfo fetches information about the authorization behind accessToken.
func (c *Client) GetCurrentAuthInfo(ctx context.Context, accessToken string) (*types.AuthInfo, error) {
	route, err := c.Route(http.MethodGet, "/oauth2/@me", nil)
	if err != nil {
		return nil, err
	}

	var resp types.AuthInfo
	if err := c.Do(ctx, &Request{Route: route, Auth: Bearer(accessToken)}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCurrentUser fetches the user who owns accessToken.
func (c *Client) GetCurrentUser(ctx context.Context, accessToken string) (*types.User, error) {
	route, err := c.Route(http.MethodGet, "/users/@me", nil)
	if err != nil {
		return nil, err
	}

	var resp types.User
	if err := c.Do(ctx, &Request{Route: route, Auth: Bearer(accessToken)}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EditCurrentUser modifies the user who owns accessToken.
func (c *Client) EditCurrentUser(ctx context.Context, payload *types.EditUserPayload, accessToken string) (*types.User, error) {
	route, err := c.Route(http.MethodPatch, "/users/@me", nil)
	if err != nil {
		return nil, err
	}

	var resp types.User
	if err := c.Do(ctx, &Request{Route: route, Auth: Bearer(accessToken), JSON: payload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GuildsQuery holds the pagination parameters of the current user's guild list.
// Zero Before/After values are not sent.
type GuildsQuery struct {
	Before     types.Snowflake
	After      types.Snowflake
	Limit      int
	WithCounts bool
}

// GetCurrentUserGuilds fetches one page of the current user's guilds.
func (c *Client) GetCurrentUserGuilds(ctx context.Context, q GuildsQuery, accessToken string) ([]types.PartialGuild, error) {
	route, err := c.Route(http.MethodGet, "/users/@me/guilds", nil)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(q.Limit))
	query.Set("with_counts", strconv.FormatBool(q.WithCounts))
	if q.Before != 0 {
		query.Set("before", q.Before.String())
	}
	if q.After != 0 {
		query.Set("after", q.After.String())
	}

	var resp []types.PartialGuild
	if err := c.Do(ctx, &Request{Route: route, Auth: Bearer(accessToken), Query: query}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetCurrentUserGuildMember fetches the current user's member object in a guild.
func (c *Client) GetCurrentUserGuildMember(ctx context.Context, guildID types.Snowflake, accessToken string) (*types.GuildMember, error) {
	route, err := c.Route(http.MethodGet, "/users/@me/guilds/{guild_id}/member", Params{"guild_id": guildID})
	if err != nil {
		return nil, err
	}

	var resp types.GuildMember
	if err := c.Do(ctx, &Request{Route: route, Auth: Bearer(accessToken)}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUserConnections fetches the accounts the current user linked to Discord.
func (c *Client) GetUserConnections(ctx context.Context, accessToken string) ([]types.Connection, error) {
	route, err := c.Route(http.MethodGet, "/users/@me/connections", nil)
	if err != nil {
		return nil, err
	}

	var resp []types.Connection
	if err := c.Do(ctx, &Request{Route: route, Auth: Bearer(accessToken)}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetUserApplicationRoleConnection fetches the current user's role connection for an application.
func (c *Client) GetUserApplicationRoleConnection(ctx context.Context, applicationID types.Snowflake, accessToken string) (*types.ApplicationRoleConnection, error) {
	route, err := c.Route(http.MethodGet, "/users/@me/applications/{application_id}/role-connection", Params{"application_id": applicationID})
	if err != nil {
		return nil, err
	}

	var resp types.ApplicationRoleConnection
	if err := c.Do(ctx, &Request{Route: route, Auth: Bearer(accessToken)}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateUserApplicationRoleConnection replaces the current user's role connection for an application.
func (c *Client) UpdateUserApplicationRoleConnection(ctx context.Context, applicationID types.Snowflake, payload *types.UpdateRoleConnectionPayload, accessToken string) (*types.ApplicationRoleConnection, error) {
	route, err := c.Route(http.MethodPut, "/users/@me/applications/{application_id}/role-connection", Params{"application_id": applicationID})
	if err != nil {
		return nil, err
	}

	var resp types.ApplicationRoleConnection
	if err := c.Do(ctx, &Request{Route: route, Auth: Bearer(accessToken), JSON: payload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRoleConnectionMetadata fetches an application's role connection metadata records.
func (c *Client) GetRoleConnectionMetadata(ctx context.Context, applicationID types.Snowflake) ([]types.ApplicationRoleConnectionMetadata, error) {
	route, err := c.Route(http.MethodGet, "/applications/{application_id}/role-connections/metadata", Params{"application_id": applicationID})
	if err != nil {
		return nil, err
	}

	var resp []types.ApplicationRoleConnectionMetadata
	if err := c.Do(ctx, &Request{Route: route, Auth: Bot()}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateRoleConnectionMetadata replaces an application's role connection metadata records.
func (c *Client) UpdateRoleConnectionMetadata(ctx context.Context, applicationID types.Snowflake, records []types.ApplicationRoleConnectionMetadata) ([]types.ApplicationRoleConnectionMetadata, error) {
	route, err := c.Route(http.MethodPut, "/applications/{application_id}/role-connections/metadata", Params{"application_id": applicationID})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []types.ApplicationRoleConnectionMetadata{}
	}

	var resp []types.ApplicationRoleConnectionMetadata
	if err := c.Do(ctx, &Request{Route: route, Auth: Bot(), JSON: records}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AddGuildMember adds the owner of payload.AccessToken to a guild using the bot token.
// It returns nil without error when the user was already a member (204).
func (c *Client) AddGuildMember(ctx context.Context, guildID, userID types.Snowflake, payload *types.AddGuildMemberPayload) (*types.GuildMember, error) {
	route, err := c.Route(http.MethodPut, "/guilds/{guild_id}/members/{user_id}", Params{"guild_id": guildID, "user_id": userID})
	if err != nil {
		return nil, err
	}

	var resp *types.GuildMember
	if err := c.Do(ctx, &Request{Route: route, Auth: Bot(), JSON: payload}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateGroupDM creates a group DM with the owners of the given access tokens.
func (c *Client) CreateGroupDM(ctx context.Context, payload *types.CreateGroupDMPayload) (*types.GroupDMChannel, error) {
	route, err := c.Route(http.MethodPost, "/users/@me/channels", nil)
	if err != nil {
		return nil, err
	}

	var resp types.GroupDMChannel
	if err := c.Do(ctx, &Request{Route: route, Auth: Bot(), JSON: payload}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddGroupDMRecipient adds a user to a group DM owned by the bot.
func (c *Client) AddGroupDMRecipient(ctx context.Context, channelID, userID types.Snowflake, payload *types.AddGroupDMRecipientPayload) error {
	route, err := c.Route(http.MethodPut, "/channels/{channel_id}/recipients/{user_id}", Params{"channel_id": channelID, "user_id": userID})
	if err != nil {
		return err
	}

	return c.Do(ctx, &Request{Route: route, Auth: Bot(), JSON: payload}, nil)
}

// RemoveGroupDMRecipient removes a user from a group DM owned by the bot.
func (c *Client) RemoveGroupDMRecipient(ctx context.Context, channelID, userID types.Snowflake) error {
	route, err := c.Route(http.MethodDelete, "/channels/{channel_id}/recipients/{user_id}", Params{"channel_id": channelID, "user_id": userID})
	if err != nil {
		return err
	}

	return c.Do(ctx, &Request{Route: route, Auth: Bot()}, nil)
}
