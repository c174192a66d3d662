package discordauth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
	"golang.org/x/oauth2"
)

// Session is a user's authorization of the application, obtained with
// Client.ExchangeCode or Client.SessionFromToken.
//
// Refresh replaces the token fields in place. Revoke is terminal: the
// session is removed from its client and every later call that needs the
// access token returns errors.ErrSessionRevoked. A Session is safe for
// concurrent use.
type Session struct {
	// ID identifies the session locally. It is never sent to Discord.
	ID string

	client *Client
	state  string

	// revokeMu serializes Revoke calls without blocking token readers.
	revokeMu sync.Mutex

	mu           sync.RWMutex
	accessToken  string
	tokenType    string
	expiresAt    time.Time
	scope        string
	scopes       Scopes
	refreshToken string
	guildID      types.Snowflake
	permissions  int64
	guild        *Guild
	revoked      bool
}

func newSession(c *Client, resp *types.AccessTokenResponse, state string) (*Session, error) {
	s := &Session{
		ID:     uuid.NewString(),
		client: c,
		state:  state,
	}
	if err := s.apply("Session", resp); err != nil {
		return nil, err
	}
	return s, nil
}

// apply overwrites the token fields from resp. The expiry is recomputed
// against the client clock every time. Optional fields absent from resp keep
// their previous value.
func (s *Session) apply(op string, resp *types.AccessTokenResponse) error {
	if err := requireTokenFields(op, resp); err != nil {
		return err
	}

	var guild *Guild
	if resp.Guild != nil {
		g, err := newGuild(s.client, resp.Guild)
		if err != nil {
			return err
		}
		guild = g
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = *resp.AccessToken
	s.tokenType = *resp.TokenType
	s.expiresAt = s.client.now().Add(time.Duration(*resp.ExpiresIn) * time.Second)
	s.scope = *resp.Scope
	s.scopes = knownScopes(*resp.Scope)
	if resp.RefreshToken != nil {
		s.refreshToken = *resp.RefreshToken
	}
	if resp.GuildID != nil {
		s.guildID = *resp.GuildID
	}
	if resp.Permissions != nil {
		s.permissions = int64(*resp.Permissions)
	}
	if guild != nil {
		s.guild = guild
	}
	return nil
}

// Client returns the client managing the session.
func (s *Session) Client() *Client {
	return s.client
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// TokenType returns the token type, usually "Bearer".
func (s *Session) TokenType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenType
}

// RefreshToken returns the refresh token, or "" when none was issued.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// ExpiresAt returns the expiry of the current access token.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// IsExpired reports whether the current access token has expired.
func (s *Session) IsExpired() bool {
	now := s.client.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !now.Before(s.expiresAt)
}

// Scope returns the raw space separated scope list granted by the user.
func (s *Session) Scope() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

// Scopes returns the granted scopes known to this package.
func (s *Session) Scopes() Scopes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes
}

// State returns the authorization state the session was created with, if any.
func (s *Session) State() string {
	return s.state
}

// GuildID returns the guild the bot was added to, for ScopeBot authorizations.
func (s *Session) GuildID() types.Snowflake {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guildID
}

// Permissions returns the permissions granted to the bot, for ScopeBot authorizations.
func (s *Session) Permissions() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions
}

// Guild returns the guild the bot was added to, when Discord included it.
func (s *Session) Guild() *Guild {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guild
}

// IsRevoked reports whether Revoke succeeded.
func (s *Session) IsRevoked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revoked
}

// bearer returns the access token for a user-scoped request.
func (s *Session) bearer() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.revoked {
		return "", pkgerrs.ErrSessionRevoked
	}
	return s.accessToken, nil
}

// Refresh obtains a new access token with the refresh token and replaces
// the session's token fields in place.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.RLock()
	refreshToken, revoked := s.refreshToken, s.revoked
	s.mu.RUnlock()

	if revoked {
		return pkgerrs.ErrSessionRevoked
	}
	if refreshToken == "" {
		return &pkgerrs.StateError{Operation: "Refresh", Message: "session has no refresh token"}
	}

	resp, err := s.client.http.RefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.apply("Refresh", resp); err != nil {
		return err
	}

	s.client.logger.Debug("session refreshed", "session_id", s.ID)
	return nil
}

// Revoke revokes the access token and removes the session from its client.
// Calling Revoke again returns errors.ErrSessionRevoked without a request.
//
// Concurrent Revoke calls wait for the one in flight. Other operations keep
// using the session until the revocation succeeds; a failed revocation leaves
// it usable and Revoke may be retried.
func (s *Session) Revoke(ctx context.Context) error {
	s.revokeMu.Lock()
	defer s.revokeMu.Unlock()

	s.mu.RLock()
	token, revoked := s.accessToken, s.revoked
	s.mu.RUnlock()
	if revoked {
		return pkgerrs.ErrSessionRevoked
	}

	if err := s.client.http.RevokeToken(ctx, token, TokenTypeAccessToken); err != nil {
		return err
	}

	s.mu.Lock()
	s.revoked = true
	s.mu.Unlock()

	s.client.removeSession(s)
	return nil
}

// FetchCurrentUser fetches the user who authorized the session. The user is
// bound to the session, so its user-scoped operations are available.
func (s *Session) FetchCurrentUser(ctx context.Context) (*User, error) {
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}

	data, err := s.client.http.GetCurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return newUser(s.client, data, s)
}

// FetchAuthorizationInfo fetches the application, scopes and expiry of the authorization.
func (s *Session) FetchAuthorizationInfo(ctx context.Context) (*AuthorizationInfo, error) {
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}

	data, err := s.client.http.GetCurrentAuthInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return newAuthorizationInfo(s.client, data, s)
}

// FetchGuildMember fetches the user's member object in a guild. Requires
// ScopeGuildsMembersRead.
func (s *Session) FetchGuildMember(ctx context.Context, guildID types.Snowflake) (*GuildMember, error) {
	if err := s.client.validator.ValidateSnowflake("guildID", guildID); err != nil {
		return nil, err
	}
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}

	data, err := s.client.http.GetCurrentUserGuildMember(ctx, guildID, token)
	if err != nil {
		return nil, err
	}
	return newGuildMember(s.client, data, guildID, s)
}

// JoinGuild adds the session's user to a guild with the bot token. Requires
// ScopeGuildsJoin. It returns nil and no error when the user already was a member.
func (s *Session) JoinGuild(ctx context.Context, guildID types.Snowflake, opts AddGuildMemberOptions) (*GuildMember, error) {
	if err := s.client.requireBot("JoinGuild"); err != nil {
		return nil, err
	}
	if err := s.client.validator.ValidateSnowflake("guildID", guildID); err != nil {
		return nil, err
	}
	if opts.Nick != nil {
		if err := s.client.validator.ValidateNick(*opts.Nick); err != nil {
			return nil, err
		}
	}

	user, err := s.FetchCurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}
	return s.client.AddGuildMember(ctx, guildID, user.ID, token, opts)
}

// GroupDMOptions identify the recipient added by AddToGroupDM. When UserID
// or Nick is empty the current user is fetched to fill them in; Nick then
// defaults to the username.
type GroupDMOptions struct {
	UserID types.Snowflake
	Nick   string
}

// AddToGroupDM adds the session's user to a group DM owned by the bot.
// Requires ScopeGDMJoin.
func (s *Session) AddToGroupDM(ctx context.Context, channelID types.Snowflake, opts GroupDMOptions) error {
	if err := s.client.requireBot("AddToGroupDM"); err != nil {
		return err
	}
	if err := s.client.validator.ValidateSnowflake("channelID", channelID); err != nil {
		return err
	}
	token, err := s.bearer()
	if err != nil {
		return err
	}

	userID, nick := opts.UserID, opts.Nick
	if userID == 0 || nick == "" {
		user, err := s.FetchCurrentUser(ctx)
		if err != nil {
			return err
		}
		if userID == 0 {
			userID = user.ID
		}
		if nick == "" {
			nick = user.Username
		}
	}
	if err := s.client.validator.ValidateNick(nick); err != nil {
		return err
	}

	return s.client.http.AddGroupDMRecipient(ctx, channelID, userID, &types.AddGroupDMRecipientPayload{
		AccessToken: token,
		Nick:        nick,
	})
}

// RemoveFromGroupDM removes a user from a group DM owned by the bot. A zero
// userID removes the session's user.
func (s *Session) RemoveFromGroupDM(ctx context.Context, channelID, userID types.Snowflake) error {
	if err := s.client.requireBot("RemoveFromGroupDM"); err != nil {
		return err
	}
	if err := s.client.validator.ValidateSnowflake("channelID", channelID); err != nil {
		return err
	}

	if userID == 0 {
		user, err := s.FetchCurrentUser(ctx)
		if err != nil {
			return err
		}
		userID = user.ID
	}

	return s.client.http.RemoveGroupDMRecipient(ctx, channelID, userID)
}

// Token returns the current token in golang.org/x/oauth2 form.
func (s *Session) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &oauth2.Token{
		AccessToken:  s.accessToken,
		TokenType:    s.tokenType,
		RefreshToken: s.refreshToken,
		Expiry:       s.expiresAt,
	}
}

// TokenSource returns an oauth2.TokenSource that refreshes the session when
// its token has expired, so the session can back an oauth2 HTTP client.
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(s.Token(), &sessionTokenSource{ctx: ctx, session: s})
}

type sessionTokenSource struct {
	ctx     context.Context
	session *Session
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	if ts.session.IsRevoked() {
		return nil, pkgerrs.ErrSessionRevoked
	}
	if ts.session.IsExpired() {
		if err := ts.session.Refresh(ts.ctx); err != nil {
			return nil, err
		}
	}
	return ts.session.Token(), nil
}
