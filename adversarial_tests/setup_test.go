package adversarial_tests

import (
	"context"
	"errors"
	"testing"

	discordauth "github.com/jamesprial/go-discord-oauth2"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/test_helpers"
)

const (
	testClientID    = "123456789012345678"
	testSecret      = "s3cret"
	testRedirectURI = "https://example.com/callback"

	tokenRoute = "POST /oauth2/token"
)

func newServer(t *testing.T) *test_helpers.DiscordMockServer {
	t.Helper()
	ms := test_helpers.NewDiscordMockServer()
	t.Cleanup(ms.Close)
	return ms
}

func newClient(t *testing.T, ms *test_helpers.DiscordMockServer, mutate ...func(*discordauth.Config)) *discordauth.Client {
	t.Helper()
	config := &discordauth.Config{
		ClientID:     testClientID,
		ClientSecret: testSecret,
		RedirectURI:  testRedirectURI,
		BotToken:     "bot-token",
		BaseURL:      ms.URL(),
	}
	for _, m := range mutate {
		m(config)
	}
	c, err := discordauth.NewClient(config)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func newSession(t *testing.T, c *discordauth.Client) *discordauth.Session {
	t.Helper()
	s, err := c.ExchangeCode(context.Background(), "code", "")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}
	return s
}

func isConfigError(err error) bool {
	var target *pkgerrs.ConfigError
	return errors.As(err, &target)
}

func isAuthStateError(err error) bool {
	var target *pkgerrs.AuthStateError
	return errors.As(err, &target)
}

func isParseError(err error) bool {
	var target *pkgerrs.ParseError
	return errors.As(err, &target)
}

func isRequestError(err error) bool {
	var target *pkgerrs.RequestError
	return errors.As(err, &target)
}
