package discordauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jamesprial/go-discord-oauth2/internal"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/statestore"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the versioned root of the Discord REST API.
	DefaultBaseURL = internal.DefaultBaseURL
	// DefaultAuthorizeURL is the page users are redirected to in order to authorize an application.
	DefaultAuthorizeURL = "https://discord.com/oauth2/authorize"
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = internal.DefaultTimeout
	// DefaultStateCapacity is the number of outstanding authorization states kept by default.
	DefaultStateCapacity = statestore.DefaultCapacity

	// stateBytes is the entropy of generated state values.
	stateBytes = 32
	// minTimeout rejects timeouts too short to complete a token exchange.
	minTimeout = time.Second
)

// RateLimitConfig throttles outgoing requests on the client side. See Config.RateLimit.
type RateLimitConfig = internal.RateLimitConfig

// StateStore holds the outstanding authorization states. See package statestore.
type StateStore = statestore.Store

// Config holds the configuration for the Discord OAuth2 client.
//
// ClientID, ClientSecret and RedirectURI are required. BotToken is only
// needed for the operations that act as the application's bot: FetchAppInfo,
// AddGuildMember, the group DM operations and the role connection metadata
// operations.
//
// Example:
//
//	config := &discordauth.Config{
//		ClientID:     "1234567890",
//		ClientSecret: "your-client-secret",
//		RedirectURI:  "https://example.com/callback",
//	}
type Config struct {
	// ClientID and ClientSecret identify the application.
	// Obtain these from the Discord developer portal.
	ClientID     string
	ClientSecret string

	// RedirectURI is the registered callback that receives the authorization code.
	RedirectURI string

	// BotToken authenticates requests that act as the application's bot.
	// Optional.
	BotToken string

	// BaseURL for the Discord REST API.
	// Defaults to DefaultBaseURL. Usually only changed in tests.
	BaseURL string

	// CDNURL for Discord media assets. Defaults to DefaultCDNURL.
	CDNURL string

	// AuthorizeURL is the authorization page. Defaults to DefaultAuthorizeURL.
	AuthorizeURL string

	// HTTPClient to use for requests. When nil, one is created on first use
	// with Timeout applied.
	HTTPClient *http.Client

	// Timeout of the HTTP client created when HTTPClient is nil.
	// Defaults to DefaultTimeout. Must be at least one second when set.
	Timeout time.Duration

	// StateCapacity bounds the default in-memory state store.
	// Defaults to DefaultStateCapacity. Ignored when StateStore is set.
	StateCapacity int

	// StateStore replaces the in-memory state store, e.g. with a
	// statestore.Redis shared between several processes.
	StateStore StateStore

	// RateLimit enables client-side throttling. Requests are spaced out,
	// never retried. Disabled when nil.
	RateLimit *RateLimitConfig

	// MetricsRegisterer, when set, receives request count and latency metrics.
	MetricsRegisterer prometheus.Registerer

	// Logger for structured diagnostics.
	// Optional. If provided, debug information will be logged during API calls.
	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now. Token expiry is
	// computed and checked against this clock.
	Now func() time.Time
}

// Client is the Discord OAuth2 client.
//
// It builds authorization links, validates the state of incoming redirects,
// exchanges codes for sessions and keeps the list of active sessions. A
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	config    Config
	http      *internal.Client
	validator *internal.Validator
	states    StateStore
	assets    assetBuilder
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions []*Session
}

// NewClient creates a new client with the provided configuration.
//
// The function will:
//   - Validate that required configuration fields are present
//   - Set default values for optional fields
//   - Prepare the request pipeline and the state store
//
// No network traffic happens here; the HTTP session is created by the first request.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	cfg := *config

	if cfg.ClientID == "" {
		return nil, &pkgerrs.ConfigError{Field: "ClientID", Message: "client ID is required"}
	}
	if _, err := types.ParseSnowflake(cfg.ClientID); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "ClientID", Message: "client ID must be a snowflake"}
	}
	if cfg.ClientSecret == "" {
		return nil, &pkgerrs.ConfigError{Field: "ClientSecret", Message: "client secret is required"}
	}

	validator := internal.NewValidator()
	if err := validator.ValidateRedirectURI(cfg.RedirectURI); err != nil {
		return nil, err
	}
	if cfg.Timeout != 0 && cfg.Timeout < minTimeout {
		return nil, &pkgerrs.ConfigError{Field: "Timeout", Message: "timeout must be at least one second"}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CDNURL == "" {
		cfg.CDNURL = DefaultCDNURL
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if _, err := url.ParseRequestURI(cfg.AuthorizeURL); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "AuthorizeURL", Message: err.Error()}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var metrics *internal.Metrics
	if cfg.MetricsRegisterer != nil {
		m, err := internal.NewMetrics(cfg.MetricsRegisterer)
		if err != nil {
			return nil, &pkgerrs.ConfigError{Field: "MetricsRegisterer", Message: err.Error()}
		}
		metrics = m
	}

	httpClient, err := internal.NewClient(internal.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BotToken:     cfg.BotToken,
		BaseURL:      cfg.BaseURL,
		HTTPClient:   cfg.HTTPClient,
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		Metrics:      metrics,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	states := cfg.StateStore
	if states == nil {
		mem, err := statestore.NewMemory(cfg.StateCapacity)
		if err != nil {
			return nil, err
		}
		states = mem
	}

	return &Client{
		config:    cfg,
		http:      httpClient,
		validator: validator,
		states:    states,
		assets:    assetBuilder{base: strings.TrimSuffix(cfg.CDNURL, "/"), http: httpClient},
		logger:    logger,
		now:       cfg.Now,
	}, nil
}

// ClientID returns the application's client ID.
func (c *Client) ClientID() string {
	return c.config.ClientID
}

// RedirectURI returns the configured redirect URI.
func (c *Client) RedirectURI() string {
	return c.config.RedirectURI
}

// Close releases idle connections of the shared HTTP session. Sessions and
// models obtained from the client must not be used afterwards.
func (c *Client) Close() {
	c.http.Close()
}

// ResponseType selects the authorization flow.
type ResponseType string

const (
	// ResponseTypeCode is the authorization code flow.
	ResponseTypeCode ResponseType = "code"
	// ResponseTypeToken is the implicit flow; the token is returned in the URL fragment.
	ResponseTypeToken ResponseType = "token"
)

// Prompt controls whether the user is asked again for an existing authorization.
type Prompt string

const (
	PromptConsent Prompt = "consent"
	PromptNone    Prompt = "none"
)

// AuthorizationOptions describe an authorization link.
type AuthorizationOptions struct {
	// Scopes requested from the user.
	Scopes Scopes
	// RedirectURI overrides Config.RedirectURI for this link.
	RedirectURI string
	// Permissions requested for the bot when ScopeBot is included. Nil omits the parameter.
	Permissions *int64
	// GuildID pre-selects a guild in the bot authorization dialog. Zero omits it.
	GuildID types.Snowflake
	// DisableGuildSelect locks the dialog to GuildID.
	DisableGuildSelect bool
	// ResponseType defaults to ResponseTypeCode.
	ResponseType ResponseType
	// Prompt defaults to PromptConsent.
	Prompt Prompt
	// State is embedded verbatim. GenerateStateLink overwrites it.
	State string
}

// redirectURI resolves the redirect URI a link built from opts carries.
func (c *Client) redirectURI(opts AuthorizationOptions) (string, error) {
	if opts.RedirectURI == "" {
		return c.config.RedirectURI, nil
	}
	if err := c.validator.ValidateRedirectURI(opts.RedirectURI); err != nil {
		return "", err
	}
	return opts.RedirectURI, nil
}

// AuthorizationURL builds the authorization link for opts without issuing a state.
// Most callers want GenerateStateLink instead.
func (c *Client) AuthorizationURL(opts AuthorizationOptions) (string, error) {
	redirectURI, err := c.redirectURI(opts)
	if err != nil {
		return "", err
	}

	responseType := opts.ResponseType
	switch responseType {
	case "":
		responseType = ResponseTypeCode
	case ResponseTypeCode, ResponseTypeToken:
	default:
		return "", &pkgerrs.ConfigError{Field: "ResponseType", Message: "response type must be code or token"}
	}

	prompt := opts.Prompt
	switch prompt {
	case "":
		prompt = PromptConsent
	case PromptConsent, PromptNone:
	default:
		return "", &pkgerrs.ConfigError{Field: "Prompt", Message: "prompt must be consent or none"}
	}

	// Parameters are written in a fixed order; url.Values would sort them.
	var sb strings.Builder
	sb.WriteString(c.config.AuthorizeURL)
	sb.WriteString("?client_id=")
	sb.WriteString(url.QueryEscape(c.config.ClientID))
	if opts.Scopes != NoScopes {
		sb.WriteString("&scope=")
		sb.WriteString(opts.Scopes.URLParam())
	}
	if opts.Permissions != nil {
		sb.WriteString("&permissions=")
		sb.WriteString(strconv.FormatInt(*opts.Permissions, 10))
	}
	if opts.GuildID != 0 {
		sb.WriteString("&guild_id=")
		sb.WriteString(opts.GuildID.String())
	}
	sb.WriteString("&response_type=")
	sb.WriteString(string(responseType))
	sb.WriteString("&redirect_uri=")
	sb.WriteString(url.QueryEscape(redirectURI))
	if opts.DisableGuildSelect {
		sb.WriteString("&disable_guild_select=true")
	}
	if opts.State != "" {
		sb.WriteString("&state=")
		sb.WriteString(url.QueryEscape(opts.State))
	}
	sb.WriteString("&prompt=")
	sb.WriteString(string(prompt))

	return sb.String(), nil
}

// GenerateStateLink issues a new random state, records it in the state store
// and returns the authorization link embedding it together with the state.
//
// The state must be passed back to ExchangeCode (or SessionFromToken) when the
// user is redirected. It is recorded with the link's redirect URI, which
// ExchangeCode sends back to Discord. Once more than the store's capacity of
// states are outstanding, the oldest ones are no longer accepted.
func (c *Client) GenerateStateLink(ctx context.Context, opts AuthorizationOptions) (link, state string, err error) {
	state, err = newState()
	if err != nil {
		return "", "", err
	}

	opts.State = state
	link, err = c.AuthorizationURL(opts)
	if err != nil {
		return "", "", err
	}

	redirectURI, err := c.redirectURI(opts)
	if err != nil {
		return "", "", err
	}
	if err := c.states.Add(ctx, state, redirectURI); err != nil {
		return "", "", err
	}
	c.logger.Debug("authorization state issued", "scopes", opts.Scopes.String())

	return link, state, nil
}

func newState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", &pkgerrs.StateError{Operation: "GenerateStateLink", Message: "failed to read random bytes", Err: err}
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// consumeState removes state from the store and returns the redirect URI it
// was issued for. An empty state is not checked and yields the configured URI.
func (c *Client) consumeState(ctx context.Context, state string) (string, error) {
	if state == "" {
		return c.config.RedirectURI, nil
	}
	redirectURI, ok, err := c.states.Consume(ctx, state)
	if err != nil {
		return "", &pkgerrs.AuthStateError{State: state, Message: "state store lookup failed", Err: err}
	}
	if !ok {
		c.logger.Debug("authorization state rejected")
		return "", &pkgerrs.AuthStateError{State: state, Message: "state was not issued by this client, has expired or was already used"}
	}
	if redirectURI == "" {
		redirectURI = c.config.RedirectURI
	}
	return redirectURI, nil
}

// ExchangeCode trades the authorization code of a redirect for a session.
//
// When state is non-empty it must be one this client issued and has not yet
// accepted; otherwise an *errors.AuthStateError is returned and no request is
// made. The exchange repeats the redirect URI of the link that issued state.
// The returned session is added to the client's active sessions.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (*Session, error) {
	if code == "" {
		return nil, &pkgerrs.ConfigError{Field: "code", Message: "authorization code cannot be empty"}
	}
	redirectURI, err := c.consumeState(ctx, state)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.ExchangeToken(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	session, err := newSession(c, resp, state)
	if err != nil {
		return nil, err
	}
	c.addSession(session)
	return session, nil
}

// SessionFromToken builds a session from the token of an implicit
// (ResponseTypeToken) authorization, applying the same state check as
// ExchangeCode. No request is made.
func (c *Client) SessionFromToken(ctx context.Context, token *types.AccessTokenResponse, state string) (*Session, error) {
	if token == nil {
		return nil, &pkgerrs.ConfigError{Field: "token", Message: "token cannot be nil"}
	}
	if _, err := c.consumeState(ctx, state); err != nil {
		return nil, err
	}

	session, err := newSession(c, token, state)
	if err != nil {
		return nil, err
	}
	c.addSession(session)
	return session, nil
}

// Sessions returns a snapshot of the active sessions, oldest first.
func (c *Client) Sessions() []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

func (c *Client) addSession(s *Session) {
	c.mu.Lock()
	c.sessions = append(c.sessions, s)
	n := len(c.sessions)
	c.mu.Unlock()

	c.logger.Debug("session registered", "session_id", s.ID, "active_sessions", n)
}

// removeSession drops s from the registry and reports whether it was present.
func (c *Client) removeSession(s *Session) bool {
	c.mu.Lock()
	removed := false
	for i, existing := range c.sessions {
		if existing == s {
			c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
			removed = true
			break
		}
	}
	n := len(c.sessions)
	c.mu.Unlock()

	if removed {
		c.logger.Debug("session removed", "session_id", s.ID, "active_sessions", n)
	}
	return removed
}

// ClientCredentials performs the client credentials grant. The token
// belongs to the owner of the application. NoScopes requests ScopeIdentify.
func (c *Client) ClientCredentials(ctx context.Context, scopes Scopes) (*AccessToken, error) {
	if scopes == NoScopes {
		scopes = ScopeIdentify
	}

	resp, err := c.http.ClientCredentialsToken(ctx, scopes.String())
	if err != nil {
		return nil, err
	}
	return newAccessToken(resp, c.now)
}

// RefreshToken trades a refresh token for a new access token without
// involving a session.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AccessToken, error) {
	if refreshToken == "" {
		return nil, &pkgerrs.ConfigError{Field: "refreshToken", Message: "refresh token cannot be empty"}
	}

	resp, err := c.http.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newAccessToken(resp, c.now)
}

// Token type hints accepted by the revocation endpoint.
const (
	TokenTypeAccessToken  = "access_token"
	TokenTypeRefreshToken = "refresh_token"
)

// RevokeRequest selects the token to revoke: either Token, or RawToken together
// with its TokenType.
type RevokeRequest struct {
	Token     *AccessToken
	RawToken  string
	TokenType string
}

// RevokeToken revokes a token. Invalid argument combinations are rejected
// with an *errors.ConfigError before any request.
//
// Revoking a session's token here does not remove the session from the
// client; use Session.Revoke for that.
func (c *Client) RevokeToken(ctx context.Context, req RevokeRequest) error {
	var token, hint string
	switch {
	case req.Token != nil && req.TokenType != "":
		return &pkgerrs.ConfigError{Field: "TokenType", Message: "token type cannot be combined with an AccessToken"}
	case req.Token != nil && req.RawToken != "":
		return &pkgerrs.ConfigError{Field: "RawToken", Message: "provide either Token or RawToken, not both"}
	case req.Token != nil:
		token, hint = req.Token.AccessToken, TokenTypeAccessToken
	case req.RawToken == "":
		return &pkgerrs.ConfigError{Field: "RawToken", Message: "a token to revoke is required"}
	case req.TokenType == "":
		return &pkgerrs.ConfigError{Field: "TokenType", Message: "token type is required when revoking a raw token"}
	default:
		token, hint = req.RawToken, req.TokenType
	}

	return c.http.RevokeToken(ctx, token, hint)
}

// requireBot fails operations that need the bot token when none is configured.
func (c *Client) requireBot(operation string) error {
	if c.http.HasBotToken() {
		return nil
	}
	return &pkgerrs.StateError{Operation: operation, Message: "a bot token is required"}
}

// FetchAppInfo fetches the application the bot token belongs to.
func (c *Client) FetchAppInfo(ctx context.Context) (*AppInfo, error) {
	if err := c.requireBot("FetchAppInfo"); err != nil {
		return nil, err
	}

	data, err := c.http.GetAppInfo(ctx)
	if err != nil {
		return nil, err
	}
	return newAppInfo(c, data)
}

// AddGuildMemberOptions are the optional fields of AddGuildMember. Nil
// fields are omitted; an explicit false is sent.
type AddGuildMemberOptions struct {
	Nick  *string
	Roles []types.Snowflake
	Mute  *bool
	Deaf  *bool
}

// AddGuildMember adds a user to a guild using their access token, which must
// have ScopeGuildsJoin. The bot must be in the guild. It returns nil and no
// error when the user already was a member.
func (c *Client) AddGuildMember(ctx context.Context, guildID, userID types.Snowflake, accessToken string, opts AddGuildMemberOptions) (*GuildMember, error) {
	if err := c.requireBot("AddGuildMember"); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateSnowflake("guildID", guildID); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateSnowflake("userID", userID); err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, &pkgerrs.ConfigError{Field: "accessToken", Message: "access token cannot be empty"}
	}
	if opts.Nick != nil {
		if err := c.validator.ValidateNick(*opts.Nick); err != nil {
			return nil, err
		}
	}

	data, err := c.http.AddGuildMember(ctx, guildID, userID, &types.AddGuildMemberPayload{
		AccessToken: accessToken,
		Nick:        opts.Nick,
		Roles:       opts.Roles,
		Mute:        opts.Mute,
		Deaf:        opts.Deaf,
	})
	if err != nil || data == nil {
		return nil, err
	}
	return newGuildMember(c, data, guildID, nil)
}

// CreateGroupDM creates a group DM with the owners of accessTokens, who must
// have granted ScopeGDMJoin. nicks maps user IDs to their nickname in the
// channel and may be nil.
func (c *Client) CreateGroupDM(ctx context.Context, accessTokens []string, nicks map[types.Snowflake]string) (*GroupDMChannel, error) {
	if err := c.requireBot("CreateGroupDM"); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateAccessTokens(accessTokens); err != nil {
		return nil, err
	}
	if nicks == nil {
		nicks = map[types.Snowflake]string{}
	}

	data, err := c.http.CreateGroupDM(ctx, &types.CreateGroupDMPayload{AccessTokens: accessTokens, Nicks: nicks})
	if err != nil {
		return nil, err
	}
	return newGroupDMChannel(c, data)
}

// FetchRoleConnectionMetadata fetches the role connection metadata records of an application.
func (c *Client) FetchRoleConnectionMetadata(ctx context.Context, applicationID types.Snowflake) ([]*ApplicationRoleConnectionMetadata, error) {
	if err := c.requireBot("FetchRoleConnectionMetadata"); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateSnowflake("applicationID", applicationID); err != nil {
		return nil, err
	}

	data, err := c.http.GetRoleConnectionMetadata(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return newRoleConnectionMetadataList(data)
}

// UpdateRoleConnectionMetadata replaces the role connection metadata records
// of an application and returns the stored records.
func (c *Client) UpdateRoleConnectionMetadata(ctx context.Context, applicationID types.Snowflake, records []*ApplicationRoleConnectionMetadata) ([]*ApplicationRoleConnectionMetadata, error) {
	if err := c.requireBot("UpdateRoleConnectionMetadata"); err != nil {
		return nil, err
	}
	if err := c.validator.ValidateSnowflake("applicationID", applicationID); err != nil {
		return nil, err
	}

	payload := make([]types.ApplicationRoleConnectionMetadata, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		payload = append(payload, r.payload())
	}

	data, err := c.http.UpdateRoleConnectionMetadata(ctx, applicationID, payload)
	if err != nil {
		return nil, err
	}
	return newRoleConnectionMetadataList(data)
}

// Endpoint returns the client's endpoints in golang.org/x/oauth2 form.
func (c *Client) Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   c.config.AuthorizeURL,
		TokenURL:  c.http.BaseURL + "/oauth2/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// OAuth2Config returns an *oauth2.Config equivalent to this client for code
// that already speaks golang.org/x/oauth2.
func (c *Client) OAuth2Config(scopes Scopes) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		Endpoint:     c.Endpoint(),
		RedirectURL:  c.config.RedirectURI,
		Scopes:       scopes.APINames(),
	}
}
