package discordauth

import (
	"strings"
	"time"

	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// InstallParams are an application's default in-app authorization settings.
type InstallParams struct {
	Scopes      Scopes
	Permissions int64
}

func newInstallParams(p *types.InstallParams) *InstallParams {
	if p == nil {
		return nil
	}
	return &InstallParams{
		Scopes:      knownScopes(strings.Join(p.Scopes, " ")),
		Permissions: int64(p.Permissions),
	}
}

// AppInfo is the application the bot token belongs to.
type AppInfo struct {
	ID                             types.Snowflake
	Name                           string
	Description                    string
	RPCOrigins                     []string
	BotPublic                      bool
	BotRequireCodeGrant            bool
	TermsOfServiceURL              string
	PrivacyPolicyURL               string
	Owner                          *User
	VerifyKey                      string
	Team                           *Team
	GuildID                        types.Snowflake
	PrimarySKUID                   types.Snowflake
	Slug                           string
	Tags                           []string
	Flags                          int
	InstallParams                  *InstallParams
	CustomInstallURL               string
	RoleConnectionsVerificationURL string

	iconHash  string
	coverHash string
	client    *Client
}

func newAppInfo(c *Client, p *types.AppInfo) (*AppInfo, error) {
	const op = "AppInfo"
	required := []struct {
		field   string
		present bool
	}{
		{"id", p.ID != nil},
		{"name", p.Name != nil},
		{"description", p.Description != nil},
		{"bot_public", p.BotPublic != nil},
		{"bot_require_code_grant", p.BotRequireCodeGrant != nil},
		{"verify_key", p.VerifyKey != nil},
	}
	for _, r := range required {
		if err := requireField(op, r.field, r.present); err != nil {
			return nil, err
		}
	}

	app := &AppInfo{
		ID:                             *p.ID,
		Name:                           *p.Name,
		Description:                    *p.Description,
		RPCOrigins:                     p.RPCOrigins,
		BotPublic:                      *p.BotPublic,
		BotRequireCodeGrant:            *p.BotRequireCodeGrant,
		TermsOfServiceURL:              deref(p.TermsOfServiceURL),
		PrivacyPolicyURL:               deref(p.PrivacyPolicyURL),
		VerifyKey:                      *p.VerifyKey,
		GuildID:                        deref(p.GuildID),
		PrimarySKUID:                   deref(p.PrimarySKUID),
		Slug:                           deref(p.Slug),
		Tags:                           p.Tags,
		Flags:                          p.Flags,
		InstallParams:                  newInstallParams(p.InstallParams),
		CustomInstallURL:               deref(p.CustomInstallURL),
		RoleConnectionsVerificationURL: deref(p.RoleConnectionsVerificationURL),
		iconHash:                       deref(p.Icon),
		coverHash:                      deref(p.CoverImage),
		client:                         c,
	}

	if p.Owner != nil {
		owner, err := newUser(c, p.Owner, nil)
		if err != nil {
			return nil, err
		}
		app.Owner = owner
	}
	if p.Team != nil {
		team, err := newTeam(c, p.Team)
		if err != nil {
			return nil, err
		}
		app.Team = team
	}
	return app, nil
}

// Icon returns the application icon, or nil.
func (a *AppInfo) Icon() *Asset {
	if a.iconHash == "" {
		return nil
	}
	return a.client.assets.icon("app", a.ID, a.iconHash)
}

// CoverImage returns the store cover image, or nil.
func (a *AppInfo) CoverImage() *Asset {
	if a.coverHash == "" {
		return nil
	}
	return a.client.assets.coverImage(a.ID, a.coverHash)
}

// PartialAppInfo is the application embedded in an AuthorizationInfo.
type PartialAppInfo struct {
	ID                types.Snowflake
	Name              string
	Description       string
	VerifyKey         string
	RPCOrigins        []string
	TermsOfServiceURL string
	PrivacyPolicyURL  string
	BotPublic         bool
	Hook              bool
	Flags             int

	iconHash  string
	coverHash string
	client    *Client
}

func newPartialAppInfo(c *Client, p *types.PartialAppInfo) (*PartialAppInfo, error) {
	const op = "PartialAppInfo"
	if p == nil {
		return nil, requireField(op, "application", false)
	}
	required := []struct {
		field   string
		present bool
	}{
		{"id", p.ID != nil},
		{"name", p.Name != nil},
		{"description", p.Description != nil},
		{"verify_key", p.VerifyKey != nil},
	}
	for _, r := range required {
		if err := requireField(op, r.field, r.present); err != nil {
			return nil, err
		}
	}

	return &PartialAppInfo{
		ID:                *p.ID,
		Name:              *p.Name,
		Description:       *p.Description,
		VerifyKey:         *p.VerifyKey,
		RPCOrigins:        p.RPCOrigins,
		TermsOfServiceURL: deref(p.TermsOfServiceURL),
		PrivacyPolicyURL:  deref(p.PrivacyPolicyURL),
		BotPublic:         p.BotPublic,
		Hook:              p.Hook,
		Flags:             p.Flags,
		iconHash:          deref(p.Icon),
		coverHash:         deref(p.CoverImage),
		client:            c,
	}, nil
}

// Icon returns the application icon, or nil.
func (a *PartialAppInfo) Icon() *Asset {
	if a.iconHash == "" {
		return nil
	}
	return a.client.assets.icon("app", a.ID, a.iconHash)
}

// CoverImage returns the store cover image, or nil.
func (a *PartialAppInfo) CoverImage() *Asset {
	if a.coverHash == "" {
		return nil
	}
	return a.client.assets.coverImage(a.ID, a.coverHash)
}

// AuthorizationInfo describes the authorization behind a session.
type AuthorizationInfo struct {
	Application *PartialAppInfo
	Scopes      Scopes
	Expires     time.Time
	// User is set when the identify scope was granted. It is bound to the session.
	User *User
}

func newAuthorizationInfo(c *Client, p *types.AuthInfo, s *Session) (*AuthorizationInfo, error) {
	const op = "AuthorizationInfo"
	if err := requireField(op, "scopes", p.Scopes != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "expires", p.Expires != nil); err != nil {
		return nil, err
	}

	app, err := newPartialAppInfo(c, p.Application)
	if err != nil {
		return nil, err
	}
	expires, err := parseTimestamp(op, "expires", *p.Expires)
	if err != nil {
		return nil, err
	}

	info := &AuthorizationInfo{
		Application: app,
		Scopes:      knownScopes(strings.Join(p.Scopes, " ")),
		Expires:     expires,
	}
	if p.User != nil {
		u, err := newUser(c, p.User, s)
		if err != nil {
			return nil, err
		}
		info.User = u
	}
	return info, nil
}
