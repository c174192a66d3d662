package discordauth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/statestore"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
	"github.com/jamesprial/go-discord-oauth2/test_helpers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewClient_Validation(t *testing.T) {
	valid := func() *Config {
		return &Config{ClientID: testClientID, ClientSecret: testSecret, RedirectURI: testRedirectURI}
	}

	tests := []struct {
		name   string
		config *Config
		field  string
	}{
		{"nil config", nil, ""},
		{"missing client ID", func() *Config { c := valid(); c.ClientID = ""; return c }(), "ClientID"},
		{"non-numeric client ID", func() *Config { c := valid(); c.ClientID = "abc"; return c }(), "ClientID"},
		{"missing secret", func() *Config { c := valid(); c.ClientSecret = ""; return c }(), "ClientSecret"},
		{"missing redirect", func() *Config { c := valid(); c.RedirectURI = ""; return c }(), "RedirectURI"},
		{"relative redirect", func() *Config { c := valid(); c.RedirectURI = "/callback"; return c }(), "RedirectURI"},
		{"timeout too short", func() *Config { c := valid(); c.Timeout = 10 * time.Millisecond; return c }(), "Timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config)
			var configErr *pkgerrs.ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected *errors.ConfigError, got %T: %v", err, err)
			}
			if configErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, configErr.Field)
			}
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(&Config{ClientID: testClientID, ClientSecret: testSecret, RedirectURI: testRedirectURI})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	defer c.Close()

	if c.config.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.config.BaseURL, DefaultBaseURL)
	}
	if c.config.AuthorizeURL != DefaultAuthorizeURL {
		t.Errorf("AuthorizeURL = %q, want %q", c.config.AuthorizeURL, DefaultAuthorizeURL)
	}
	if c.ClientID() != testClientID || c.RedirectURI() != testRedirectURI {
		t.Error("expected accessors to return the configured values")
	}
	mem, ok := c.states.(*statestore.Memory)
	if !ok {
		t.Fatalf("expected the in-memory state store, got %T", c.states)
	}
	if mem.Capacity() != DefaultStateCapacity {
		t.Errorf("state capacity = %d, want %d", mem.Capacity(), DefaultStateCapacity)
	}
	if len(c.Sessions()) != 0 {
		t.Error("expected no sessions")
	}
	if c.logger.Handler() != slog.DiscardHandler {
		t.Errorf("expected the discard handler without a logger, got %T", c.logger.Handler())
	}
}

func TestAuthorizationURL_ParameterOrder(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)

	perms := int64(8)
	link, err := c.AuthorizationURL(AuthorizationOptions{
		Scopes:             ScopeBot | ScopeIdentify,
		Permissions:        &perms,
		GuildID:            types.Snowflake(42),
		DisableGuildSelect: true,
		State:              "abc",
	})
	if err != nil {
		t.Fatalf("AuthorizationURL returned error: %v", err)
	}

	want := DefaultAuthorizeURL +
		"?client_id=" + testClientID +
		"&scope=bot%20identify" +
		"&permissions=8" +
		"&guild_id=42" +
		"&response_type=code" +
		"&redirect_uri=" + url.QueryEscape(testRedirectURI) +
		"&disable_guild_select=true" +
		"&state=abc" +
		"&prompt=consent"
	if link != want {
		t.Errorf("AuthorizationURL =\n%s\nwant\n%s", link, want)
	}
}

func TestAuthorizationURL_Options(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)

	tests := []struct {
		name     string
		opts     AuthorizationOptions
		contains []string
		excludes []string
		wantErr  bool
	}{
		{
			name:     "no scopes omits scope",
			opts:     AuthorizationOptions{},
			excludes: []string{"scope=", "permissions=", "guild_id=", "state="},
		},
		{
			name:     "implicit flow without prompt",
			opts:     AuthorizationOptions{Scopes: ScopeIdentify, ResponseType: ResponseTypeToken, Prompt: PromptNone},
			contains: []string{"response_type=token", "prompt=none"},
		},
		{
			name:     "redirect override",
			opts:     AuthorizationOptions{RedirectURI: "https://other.example.com/cb?x=1"},
			contains: []string{"redirect_uri=" + url.QueryEscape("https://other.example.com/cb?x=1")},
		},
		{
			name:     "zero permissions are sent",
			opts:     AuthorizationOptions{Permissions: new(int64)},
			contains: []string{"permissions=0"},
		},
		{name: "invalid response type", opts: AuthorizationOptions{ResponseType: "id_token"}, wantErr: true},
		{name: "invalid prompt", opts: AuthorizationOptions{Prompt: "login"}, wantErr: true},
		{name: "invalid redirect override", opts: AuthorizationOptions{RedirectURI: "not a url"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := c.AuthorizationURL(tt.opts)
			if tt.wantErr {
				assertConfigError(t, err)
				return
			}
			if err != nil {
				t.Fatalf("AuthorizationURL returned error: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(link, s) {
					t.Errorf("expected %q in %s", s, link)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(link, s) {
					t.Errorf("expected no %q in %s", s, link)
				}
			}
		})
	}
}

func TestGenerateStateLink_ExchangeCode(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)
	ctx := context.Background()

	link, state, err := c.GenerateStateLink(ctx, AuthorizationOptions{Scopes: ScopeIdentify | ScopeGuilds})
	if err != nil {
		t.Fatalf("GenerateStateLink returned error: %v", err)
	}
	if len(state) < 32 {
		t.Errorf("expected a long random state, got %q", state)
	}
	if !strings.Contains(link, "&state="+state+"&") {
		t.Errorf("expected the link to embed the state, got %s", link)
	}

	session, err := c.ExchangeCode(ctx, "the-code", state)
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}

	req, ok := ms.LastRequest("POST /oauth2/token")
	if !ok {
		t.Fatal("expected a token request")
	}
	form := req.Form()
	if form.Get("grant_type") != "authorization_code" || form.Get("code") != "the-code" {
		t.Errorf("unexpected token form: %v", form)
	}
	if form.Get("client_id") != testClientID || form.Get("client_secret") != testSecret {
		t.Errorf("expected client credentials in the form: %v", form)
	}
	if form.Get("redirect_uri") != testRedirectURI {
		t.Errorf("redirect_uri = %q", form.Get("redirect_uri"))
	}
	if req.Headers.Get("Authorization") != "" {
		t.Error("expected no Authorization header on the code exchange")
	}

	if session.AccessToken() != test_helpers.AccessToken {
		t.Errorf("AccessToken() = %q", session.AccessToken())
	}
	if session.State() != state {
		t.Errorf("State() = %q, want %q", session.State(), state)
	}
	if !session.Scopes().Has(ScopeIdentify | ScopeGuilds) {
		t.Errorf("Scopes() = %q", session.Scopes().String())
	}
	if got := c.Sessions(); len(got) != 1 || got[0] != session {
		t.Errorf("expected the session to be registered, got %v", got)
	}

	// States are single-use.
	_, err = c.ExchangeCode(ctx, "the-code", state)
	var stateErr *pkgerrs.AuthStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected *errors.AuthStateError on reuse, got %T: %v", err, err)
	}
	if ms.GetCallCount("POST /oauth2/token") != 1 {
		t.Errorf("expected no request for a reused state, got %d token calls", ms.GetCallCount("POST /oauth2/token"))
	}
}

func TestExchangeCode_UsesRedirectURIOfLink(t *testing.T) {
	const override = "https://other.example.com/cb"

	ms := newTestServer(t)
	c := newTestClient(t, ms)
	ctx := context.Background()

	link, overridden, err := c.GenerateStateLink(ctx, AuthorizationOptions{Scopes: ScopeIdentify, RedirectURI: override})
	if err != nil {
		t.Fatalf("GenerateStateLink returned error: %v", err)
	}
	if !strings.Contains(link, "&redirect_uri="+url.QueryEscape(override)+"&") {
		t.Fatalf("expected the link to carry the override, got %s", link)
	}
	_, plain, err := c.GenerateStateLink(ctx, AuthorizationOptions{Scopes: ScopeIdentify})
	if err != nil {
		t.Fatalf("GenerateStateLink returned error: %v", err)
	}

	tests := []struct {
		name  string
		state string
		want  string
	}{
		{"override", overridden, override},
		{"configured", plain, testRedirectURI},
		{"no state", "", testRedirectURI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.ExchangeCode(ctx, "code", tt.state); err != nil {
				t.Fatalf("ExchangeCode returned error: %v", err)
			}
			req, ok := ms.LastRequest("POST /oauth2/token")
			if !ok {
				t.Fatal("expected a token request")
			}
			if got := req.Form().Get("redirect_uri"); got != tt.want {
				t.Errorf("redirect_uri = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExchangeCode_StateEviction(t *testing.T) {
	const capacity = 3
	const issued = 5

	ms := newTestServer(t)
	c := newTestClient(t, ms, func(cfg *Config) { cfg.StateCapacity = capacity })
	ctx := context.Background()

	states := make([]string, 0, issued)
	for i := 0; i < issued; i++ {
		_, state, err := c.GenerateStateLink(ctx, AuthorizationOptions{Scopes: ScopeIdentify})
		if err != nil {
			t.Fatalf("GenerateStateLink returned error: %v", err)
		}
		states = append(states, state)
	}

	n, err := c.states.Len(ctx)
	if err != nil {
		t.Fatalf("Len returned error: %v", err)
	}
	if n != capacity {
		t.Fatalf("expected %d outstanding states, got %d", capacity, n)
	}

	for i, state := range states[:issued-capacity] {
		_, err := c.ExchangeCode(ctx, "code", state)
		var stateErr *pkgerrs.AuthStateError
		if !errors.As(err, &stateErr) {
			t.Errorf("state %d: expected *errors.AuthStateError, got %v", i, err)
		}
	}
	if ms.TotalCalls() != 0 {
		t.Fatalf("expected no requests for evicted states, got %d", ms.TotalCalls())
	}

	for i, state := range states[issued-capacity:] {
		if _, err := c.ExchangeCode(ctx, "code", state); err != nil {
			t.Errorf("state %d: ExchangeCode returned error: %v", i+issued-capacity, err)
		}
	}
}

func TestExchangeCode_UnknownState(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)

	_, err := c.ExchangeCode(context.Background(), "code", "forged")
	var stateErr *pkgerrs.AuthStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected *errors.AuthStateError, got %T: %v", err, err)
	}
	if stateErr.State != "forged" {
		t.Errorf("State = %q", stateErr.State)
	}
	if ms.TotalCalls() != 0 {
		t.Errorf("expected no requests, got %d", ms.TotalCalls())
	}
}

func TestExchangeCode_Errors(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)
	ctx := context.Background()

	_, err := c.ExchangeCode(ctx, "", "")
	assertConfigError(t, err)

	ms.SetResponse("POST /oauth2/token", &test_helpers.MockResponse{
		Status: http.StatusBadRequest,
		Body:   `{"error": "invalid_grant", "error_description": "Invalid \"code\" in request."}`,
	})
	_, err = c.ExchangeCode(ctx, "bad", "")
	var apiErr *pkgerrs.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *errors.APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || !strings.HasPrefix(apiErr.Message, "invalid_grant") {
		t.Errorf("unexpected API error: %+v", apiErr)
	}
	if len(c.Sessions()) != 0 {
		t.Error("expected no session after a failed exchange")
	}

	ms.SetResponse("POST /oauth2/token", test_helpers.JSONResponse(map[string]any{
		"access_token": "tok", "token_type": "Bearer", "expires_in": 60,
	}))
	_, err = c.ExchangeCode(ctx, "code", "")
	assertParseError(t, err, "scope")
}

func TestSessionFromToken(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)
	ctx := context.Background()

	_, state, err := c.GenerateStateLink(ctx, AuthorizationOptions{Scopes: ScopeIdentify, ResponseType: ResponseTypeToken})
	if err != nil {
		t.Fatalf("GenerateStateLink returned error: %v", err)
	}

	access, tokenType, scope := "implicit", "Bearer", "identify"
	expires := types.FlexInt(604800)
	session, err := c.SessionFromToken(ctx, &types.AccessTokenResponse{
		AccessToken: &access, TokenType: &tokenType, ExpiresIn: &expires, Scope: &scope,
	}, state)
	if err != nil {
		t.Fatalf("SessionFromToken returned error: %v", err)
	}
	if session.AccessToken() != "implicit" || session.RefreshToken() != "" {
		t.Errorf("unexpected session tokens: %q %q", session.AccessToken(), session.RefreshToken())
	}
	if ms.TotalCalls() != 0 {
		t.Errorf("expected no requests, got %d", ms.TotalCalls())
	}

	_, err = c.SessionFromToken(ctx, nil, "")
	assertConfigError(t, err)
}

func TestClientCredentials(t *testing.T) {
	ms := newTestServer(t)
	clock := newFakeClock()
	c := newTestClient(t, ms, func(cfg *Config) { cfg.Now = clock.Now })
	ms.SetupToken("cc-token", "", "identify connections", 3600)

	token, err := c.ClientCredentials(context.Background(), ScopeIdentify|ScopeConnections)
	if err != nil {
		t.Fatalf("ClientCredentials returned error: %v", err)
	}

	req, _ := ms.LastRequest("POST /oauth2/token")
	form := req.Form()
	if form.Get("grant_type") != "client_credentials" || form.Get("scope") != "connections identify" {
		t.Errorf("unexpected form: %v", form)
	}
	if form.Get("client_secret") != "" {
		t.Error("expected the secret in the Authorization header, not the form")
	}
	user, pass, ok := (&http.Request{Header: req.Headers}).BasicAuth()
	if !ok || user != testClientID || pass != testSecret {
		t.Errorf("expected basic auth with the client credentials, got %q %q %v", user, pass, ok)
	}

	if token.AccessToken != "cc-token" || token.RefreshToken != "" {
		t.Errorf("unexpected token: %+v", token)
	}
	if !token.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", token.ExpiresAt)
	}
	if token.IsExpired() {
		t.Error("expected a fresh token")
	}
	clock.Advance(time.Hour)
	if !token.IsExpired() {
		t.Error("expected the token to expire after its lifetime")
	}
	if len(c.Sessions()) != 0 {
		t.Error("expected client credentials not to create a session")
	}
}

func TestClientCredentials_DefaultScope(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)

	if _, err := c.ClientCredentials(context.Background(), NoScopes); err != nil {
		t.Fatalf("ClientCredentials returned error: %v", err)
	}
	req, _ := ms.LastRequest("POST /oauth2/token")
	if got := req.Form().Get("scope"); got != "identify" {
		t.Errorf("scope = %q, want identify", got)
	}
}

func TestRefreshToken(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)
	ms.SetupToken("new-access", "new-refresh", "identify", 3600)

	token, err := c.RefreshToken(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("RefreshToken returned error: %v", err)
	}
	req, _ := ms.LastRequest("POST /oauth2/token")
	if req.Form().Get("grant_type") != "refresh_token" || req.Form().Get("refresh_token") != "old-refresh" {
		t.Errorf("unexpected form: %v", req.Form())
	}
	if token.AccessToken != "new-access" || token.RefreshToken != "new-refresh" {
		t.Errorf("unexpected token: %+v", token)
	}

	_, err = c.RefreshToken(context.Background(), "")
	assertConfigError(t, err)
}

func TestRevokeToken(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)
	ctx := context.Background()

	token := &AccessToken{AccessToken: "structured"}

	tests := []struct {
		name     string
		req      RevokeRequest
		wantErr  bool
		wantTok  string
		wantHint string
	}{
		{name: "structured token", req: RevokeRequest{Token: token}, wantTok: "structured", wantHint: TokenTypeAccessToken},
		{name: "raw refresh token", req: RevokeRequest{RawToken: "raw", TokenType: TokenTypeRefreshToken}, wantTok: "raw", wantHint: TokenTypeRefreshToken},
		{name: "structured token with type", req: RevokeRequest{Token: token, TokenType: TokenTypeAccessToken}, wantErr: true},
		{name: "both tokens", req: RevokeRequest{Token: token, RawToken: "raw"}, wantErr: true},
		{name: "raw token without type", req: RevokeRequest{RawToken: "raw"}, wantErr: true},
		{name: "nothing", req: RevokeRequest{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms.ClearLog()
			err := c.RevokeToken(ctx, tt.req)
			if tt.wantErr {
				assertConfigError(t, err)
				if ms.TotalCalls() != 0 {
					t.Errorf("expected no request, got %d", ms.TotalCalls())
				}
				return
			}
			if err != nil {
				t.Fatalf("RevokeToken returned error: %v", err)
			}
			req, ok := ms.LastRequest("POST /oauth2/token/revoke")
			if !ok {
				t.Fatal("expected a revoke request")
			}
			form := req.Form()
			if form.Get("token") != tt.wantTok || form.Get("token_type_hint") != tt.wantHint {
				t.Errorf("unexpected form: %v", form)
			}
		})
	}
}

func TestBotOperations_RequireBotToken(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms, func(cfg *Config) { cfg.BotToken = "" })
	ctx := context.Background()

	_, err := c.FetchAppInfo(ctx)
	assertStateError(t, err)
	_, err = c.AddGuildMember(ctx, 1, 2, "token", AddGuildMemberOptions{})
	assertStateError(t, err)
	_, err = c.CreateGroupDM(ctx, []string{"token"}, nil)
	assertStateError(t, err)
	_, err = c.FetchRoleConnectionMetadata(ctx, 1)
	assertStateError(t, err)
	_, err = c.UpdateRoleConnectionMetadata(ctx, 1, nil)
	assertStateError(t, err)

	if ms.TotalCalls() != 0 {
		t.Errorf("expected no requests, got %d", ms.TotalCalls())
	}
}

func TestFetchAppInfo(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)

	ms.SetResponse("GET /oauth2/applications/@me", test_helpers.JSONResponse(map[string]any{
		"id":                     "172150183260323840",
		"name":                   "Baba O-Riley",
		"icon":                   "8342729096ea3675442027381ff50dfe",
		"description":            "Test",
		"bot_public":             true,
		"bot_require_code_grant": false,
		"verify_key":             "1e0a356058d627ca38a5c8c9648818061d49e49bd9da9e3ab17d98ad4d6bg2u8",
		"install_params":         map[string]any{"scopes": []string{"bot", "applications.commands"}, "permissions": "8"},
		"team": map[string]any{
			"id":            "531992624043786253",
			"name":          "Team",
			"icon":          "dd9b7dcfdf5351b9c3de0fe167bacbe1",
			"owner_user_id": test_helpers.UserID,
			"members": []map[string]any{{
				"membership_state": 2,
				"permissions":      []string{"*"},
				"team_id":          "531992624043786253",
				"role":             "admin",
				"user":             test_helpers.UserPayload(test_helpers.UserID, "owner", "0"),
			}},
		},
	}))

	app, err := c.FetchAppInfo(context.Background())
	if err != nil {
		t.Fatalf("FetchAppInfo returned error: %v", err)
	}

	req, _ := ms.LastRequest("GET /oauth2/applications/@me")
	if req.Headers.Get("Authorization") != "Bot bot-token" {
		t.Errorf("Authorization = %q", req.Headers.Get("Authorization"))
	}

	if app.ID != 172150183260323840 || app.Name != "Baba O-Riley" || !app.BotPublic || app.BotRequireCodeGrant {
		t.Errorf("unexpected app: %+v", app)
	}
	if app.InstallParams == nil || app.InstallParams.Scopes != ScopeBot|ScopeApplicationsCommands || app.InstallParams.Permissions != 8 {
		t.Errorf("unexpected install params: %+v", app.InstallParams)
	}
	if got := app.Icon().URL; got != testCDN+"/app-icons/172150183260323840/8342729096ea3675442027381ff50dfe.png?size=1024" {
		t.Errorf("Icon() = %q", got)
	}
	if app.CoverImage() != nil {
		t.Error("expected no cover image")
	}

	if app.Team == nil || len(app.Team.Members) != 1 {
		t.Fatalf("unexpected team: %+v", app.Team)
	}
	member := app.Team.Members[0]
	if member.Team != app.Team || member.MembershipState != TeamMembershipAccepted || member.MembershipState.String() != "accepted" {
		t.Errorf("unexpected member: %+v", member)
	}
	if app.Team.Owner() != member {
		t.Error("expected the owner to be the listed member")
	}
	if !strings.HasPrefix(app.Team.Icon().URL, testCDN+"/team-icons/531992624043786253/") {
		t.Errorf("team icon = %q", app.Team.Icon().URL)
	}
	_, err = member.User.Guilds(context.Background(), GuildsOptions{})
	assertStateError(t, err)
}

func TestAddGuildMember(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)
	ctx := context.Background()

	route := "PUT /guilds/41771983423143937/members/" + test_helpers.UserID
	ms.SetResponse(route, &test_helpers.MockResponse{Status: http.StatusCreated, Body: `{
		"user": {"id": "80351110224678912", "username": "nelly", "discriminator": "0"},
		"nick": "nel", "roles": ["1"], "joined_at": "2015-04-26T06:26:56.936000+00:00",
		"deaf": false, "mute": false
	}`})

	nick, mute := "nel", false
	userID, _ := types.ParseSnowflake(test_helpers.UserID)
	member, err := c.AddGuildMember(ctx, 41771983423143937, userID, "user-token", AddGuildMemberOptions{Nick: &nick, Mute: &mute})
	if err != nil {
		t.Fatalf("AddGuildMember returned error: %v", err)
	}

	req, _ := ms.LastRequest(route)
	var payload map[string]any
	if err := req.JSON(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload["access_token"] != "user-token" || payload["nick"] != "nel" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if v, ok := payload["mute"]; !ok || v != false {
		t.Errorf("expected explicit mute=false to be sent, got %v", payload)
	}
	if _, ok := payload["deaf"]; ok {
		t.Error("expected nil deaf to be omitted")
	}
	if _, ok := payload["roles"]; ok {
		t.Error("expected nil roles to be omitted")
	}

	if member == nil || member.Nick != "nel" || member.GuildID != 41771983423143937 {
		t.Fatalf("unexpected member: %+v", member)
	}
	if member.JoinedAt.Year() != 2015 {
		t.Errorf("JoinedAt = %v", member.JoinedAt)
	}

	ms.SetResponse(route, &test_helpers.MockResponse{Status: http.StatusNoContent})
	member, err = c.AddGuildMember(ctx, 41771983423143937, userID, "user-token", AddGuildMemberOptions{})
	if err != nil || member != nil {
		t.Errorf("expected nil member and no error for an existing member, got %v, %v", member, err)
	}

	_, err = c.AddGuildMember(ctx, 0, userID, "user-token", AddGuildMemberOptions{})
	assertConfigError(t, err)
	_, err = c.AddGuildMember(ctx, 1, userID, "", AddGuildMemberOptions{})
	assertConfigError(t, err)
}

func TestCreateGroupDM(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)

	ms.SetResponse("POST /users/@me/channels", test_helpers.JSONResponse(map[string]any{
		"id":         "319674150115610528",
		"type":       3,
		"owner_id":   "172150183260323840",
		"icon":       "abc",
		"recipients": []any{test_helpers.UserPayload(test_helpers.UserID, "nelly", "0")},
	}))

	channel, err := c.CreateGroupDM(context.Background(), []string{"t1"}, map[types.Snowflake]string{80351110224678912: "nel"})
	if err != nil {
		t.Fatalf("CreateGroupDM returned error: %v", err)
	}

	req, _ := ms.LastRequest("POST /users/@me/channels")
	var payload struct {
		AccessTokens []string          `json:"access_tokens"`
		Nicks        map[string]string `json:"nicks"`
	}
	if err := req.JSON(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if len(payload.AccessTokens) != 1 || payload.Nicks[test_helpers.UserID] != "nel" {
		t.Errorf("unexpected payload: %+v", payload)
	}

	if channel.ID != 319674150115610528 || len(channel.Recipients) != 1 {
		t.Errorf("unexpected channel: %+v", channel)
	}
	if got := channel.Icon().URL; got != testCDN+"/channel-icons/319674150115610528/abc.png?size=1024" {
		t.Errorf("Icon() = %q", got)
	}

	_, err = c.CreateGroupDM(context.Background(), nil, nil)
	assertConfigError(t, err)
}

func TestRoleConnectionMetadata(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)
	ctx := context.Background()

	route := "PUT /applications/172150183260323840/role-connections/metadata"
	ms.SetResponse(route, test_helpers.JSONResponse([]map[string]any{{
		"type": 7, "key": "verified", "name": "Verified", "description": "Has a verified account",
	}}))

	records, err := c.UpdateRoleConnectionMetadata(ctx, 172150183260323840, []*ApplicationRoleConnectionMetadata{{
		Type:              MetadataBooleanEqual,
		Key:               "verified",
		Name:              "Verified",
		Description:       "Has a verified account",
		NameLocalizations: map[string]string{"fr": "Vérifié"},
	}})
	if err != nil {
		t.Fatalf("UpdateRoleConnectionMetadata returned error: %v", err)
	}

	req, _ := ms.LastRequest(route)
	var payload []map[string]any
	if err := req.JSON(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if len(payload) != 1 || payload[0]["type"] != float64(7) || payload[0]["key"] != "verified" {
		t.Errorf("unexpected payload: %v", payload)
	}
	if _, ok := payload[0]["description_localizations"]; ok {
		t.Error("expected empty localizations to be omitted")
	}
	if _, ok := payload[0]["name_localizations"]; !ok {
		t.Error("expected name localizations to be sent")
	}

	if len(records) != 1 || records[0].Type != MetadataBooleanEqual || records[0].Type.String() != "boolean_equal" {
		t.Errorf("unexpected records: %+v", records)
	}

	ms.SetResponse("GET /applications/172150183260323840/role-connections/metadata", test_helpers.JSONResponse([]map[string]any{{
		"type": 1, "key": "level", "name": "Level",
	}}))
	_, err = c.FetchRoleConnectionMetadata(ctx, 172150183260323840)
	assertParseError(t, err, "description")
}

func TestOAuth2Config(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)

	cfg := c.OAuth2Config(ScopeIdentify | ScopeEmail)
	if cfg.ClientID != testClientID || cfg.ClientSecret != testSecret || cfg.RedirectURL != testRedirectURI {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Scopes) != 2 || cfg.Scopes[0] != "email" || cfg.Scopes[1] != "identify" {
		t.Errorf("Scopes = %v", cfg.Scopes)
	}
	if cfg.Endpoint.TokenURL != ms.URL()+"/oauth2/token" || cfg.Endpoint.AuthURL != DefaultAuthorizeURL {
		t.Errorf("unexpected endpoint: %+v", cfg.Endpoint)
	}
}

func TestClient_Metrics(t *testing.T) {
	ms := newTestServer(t)
	reg := prometheus.NewRegistry()
	c := newTestClient(t, ms, func(cfg *Config) { cfg.MetricsRegisterer = reg })

	newTestSession(t, c)

	n, err := testutil.GatherAndCount(reg, "discordauth_requests_total")
	if err != nil {
		t.Fatalf("GatherAndCount returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected one request series, got %d", n)
	}
}
