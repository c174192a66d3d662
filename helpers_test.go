package discordauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/test_helpers"
)

const (
	testClientID    = "123456789012345678"
	testSecret      = "s3cret"
	testRedirectURI = "https://example.com/callback"
	testCDN         = "https://cdn.example.com"
)

// fakeClock is a settable Config.Now.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestServer(t *testing.T) *test_helpers.DiscordMockServer {
	t.Helper()
	ms := test_helpers.NewDiscordMockServer()
	t.Cleanup(ms.Close)
	return ms
}

// newTestClient returns a client against ms with a bot token configured.
func newTestClient(t *testing.T, ms *test_helpers.DiscordMockServer, mutate ...func(*Config)) *Client {
	t.Helper()
	config := &Config{
		ClientID:     testClientID,
		ClientSecret: testSecret,
		RedirectURI:  testRedirectURI,
		BotToken:     "bot-token",
		BaseURL:      ms.URL(),
		CDNURL:       testCDN,
	}
	for _, m := range mutate {
		m(config)
	}
	c, err := NewClient(config)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// newTestSession exchanges a code without a state.
func newTestSession(t *testing.T, c *Client) *Session {
	t.Helper()
	s, err := c.ExchangeCode(context.Background(), "code", "")
	if err != nil {
		t.Fatalf("ExchangeCode returned error: %v", err)
	}
	return s
}

func assertConfigError(t *testing.T, err error) {
	t.Helper()
	var configErr *pkgerrs.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected *errors.ConfigError, got %T: %v", err, err)
	}
}

func assertStateError(t *testing.T, err error) {
	t.Helper()
	var stateErr *pkgerrs.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected *errors.StateError, got %T: %v", err, err)
	}
}

func assertParseError(t *testing.T, err error, field string) {
	t.Helper()
	var parseErr *pkgerrs.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *errors.ParseError, got %T: %v", err, err)
	}
	if field != "" && parseErr.Field != field {
		t.Errorf("expected parse error on field %q, got %q", field, parseErr.Field)
	}
}
