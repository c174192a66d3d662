// Package discordauth is a client for Discord's OAuth2 flows and the REST
// endpoints an OAuth2 application calls on behalf of its users.
//
// # Overview
//
// The package builds authorization links, validates the state of incoming
// redirects, exchanges authorization codes for sessions and wraps the
// user-scoped endpoints (current user, guilds, connections, role
// connections) as well as the bot-token endpoints an application needs
// around them (adding members to guilds, group DMs, role connection
// metadata).
//
// # Features
//
//   - Authorization code, implicit, refresh token and client credentials grants
//   - Bounded store of anti-CSRF states, in memory or shared through Redis
//   - Typed models with lazy CDN asset accessors
//   - Cursor pagination over the user's guilds
//   - Optional client-side rate limiting and Prometheus metrics
//   - Structured logging support via Go's slog package
//   - golang.org/x/oauth2 interoperability
//
// # Quick Start
//
//	client, err := discordauth.NewClient(&discordauth.Config{
//		ClientID:     "1234567890",
//		ClientSecret: "your-client-secret",
//		RedirectURI:  "https://example.com/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	link, _, err := client.GenerateStateLink(ctx, discordauth.AuthorizationOptions{
//		Scopes: discordauth.ScopeIdentify | discordauth.ScopeGuilds,
//	})
//
// Redirect the user to link. Discord then calls the redirect URI with a code
// and the state:
//
//	session, err := client.ExchangeCode(ctx, r.URL.Query().Get("code"), r.URL.Query().Get("state"))
//	if err != nil {
//		// *errors.AuthStateError for forged or replayed states
//	}
//
//	user, err := session.FetchCurrentUser(ctx)
//	fmt.Println(user.DisplayName(), user.DisplayAvatar())
//
// # Sessions
//
// A Session holds the tokens of one authorization. Refresh replaces them in
// place; Revoke invalidates them on Discord's side and removes the session
// from Client.Sessions. Users fetched through a session are bound to it and
// use its token for their own operations:
//
//	it, err := user.Guilds(ctx, discordauth.GuildsOptions{WithCounts: true})
//	guilds, err := it.Collect(0)
//
// # Scopes
//
// Scopes is a bit set. Its String form is the space separated list the API
// expects, and ParseScopes accepts both wire names ("guilds.join") and
// package names ("guilds_join").
//
// # Error Handling
//
// The errors returned by this package are defined in pkg/errors:
//
//	switch e := err.(type) {
//	case *errors.ConfigError:
//		// invalid configuration or arguments, no request was made
//	case *errors.AuthStateError:
//		// unknown, evicted or reused authorization state
//	case *errors.StateError:
//		// operation not possible in the current state
//	case *errors.RequestError:
//		// transport failure
//	case *errors.APIError:
//		// non-2xx response from Discord
//	case *errors.ParseError:
//		// malformed response or a required field missing
//	}
//
// Nothing is retried. errors.ErrSessionRevoked is returned by every session
// operation after a successful Revoke.
//
// # Logging
//
// Enable debug logging by providing a logger in the config:
//
//	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	}))
//
//	config := &discordauth.Config{
//		// ... other config ...
//		Logger: logger,
//	}
//
// Tokens and client secrets are never logged.
//
// # Security Considerations
//
//   - Always pass the state back to ExchangeCode; an empty state skips the check
//   - Keep the client secret and bot token out of source code
//   - Never disable TLS verification on a custom HTTPClient
//   - Share one StateStore between processes that serve the same redirect URI
package discordauth
