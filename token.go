package discordauth

import (
	"strings"
	"time"

	"github.com/jamesprial/go-discord-oauth2/pkg/types"
	"golang.org/x/oauth2"
)

// AccessToken is the result of a token grant that is not tracked as a
// session: client credentials, or a refresh performed through the client.
type AccessToken struct {
	AccessToken  string
	TokenType    string
	ExpiresAt    time.Time
	RefreshToken string
	// Scope is the raw space separated scope list.
	Scope string
	// Scopes holds the known scopes of Scope.
	Scopes Scopes

	now func() time.Time
}

func newAccessToken(resp *types.AccessTokenResponse, now func() time.Time) (*AccessToken, error) {
	const op = "AccessToken"
	if err := requireTokenFields(op, resp); err != nil {
		return nil, err
	}

	t := &AccessToken{
		AccessToken: *resp.AccessToken,
		TokenType:   *resp.TokenType,
		ExpiresAt:   now().Add(time.Duration(*resp.ExpiresIn) * time.Second),
		Scope:       *resp.Scope,
		Scopes:      knownScopes(*resp.Scope),
		now:         now,
	}
	if resp.RefreshToken != nil {
		t.RefreshToken = *resp.RefreshToken
	}
	return t, nil
}

// requireTokenFields checks the fields every token response carries.
func requireTokenFields(op string, resp *types.AccessTokenResponse) error {
	if resp == nil {
		return requireField(op, "access_token", false)
	}
	checks := []struct {
		field   string
		present bool
	}{
		{"access_token", resp.AccessToken != nil},
		{"token_type", resp.TokenType != nil},
		{"expires_in", resp.ExpiresIn != nil},
		{"scope", resp.Scope != nil},
	}
	for _, c := range checks {
		if err := requireField(op, c.field, c.present); err != nil {
			return err
		}
	}
	return nil
}

// knownScopes parses a scope list, skipping names this package does not know.
func knownScopes(scope string) Scopes {
	var out Scopes
	for _, name := range strings.Fields(scope) {
		if s, err := ParseScopes([]string{name}); err == nil {
			out |= s
		}
	}
	return out
}

// IsExpired reports whether the access token has expired.
func (t *AccessToken) IsExpired() bool {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	return !now().Before(t.ExpiresAt)
}

// Token converts the access token for use with golang.org/x/oauth2.
func (t *AccessToken) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}
