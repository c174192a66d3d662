package discordauth

import (
	"context"
	"time"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// User is a Discord user.
//
// Users returned by Session.FetchCurrentUser are bound to that session and
// support the user-scoped operations (Edit, Guilds, FetchConnections and the
// role connection calls). Those operations fail with an *errors.StateError
// on users that are not bound, such as team members or group DM recipients.
type User struct {
	ID            types.Snowflake
	Username      string
	Discriminator string
	GlobalName    string
	Bot           bool
	System        bool
	MFAEnabled    bool
	Verified      bool
	Locale        string
	Email         string
	Flags         int
	PremiumType   int
	PublicFlags   int
	AccentColor   *int

	avatarHash      string
	bannerHash      string
	decorationAsset string

	client  *Client
	session *Session
}

func newUser(c *Client, p *types.User, s *Session) (*User, error) {
	const op = "User"
	if p == nil {
		return nil, requireField(op, "user", false)
	}
	if err := requireField(op, "id", p.ID != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "username", p.Username != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "discriminator", p.Discriminator != nil); err != nil {
		return nil, err
	}
	if _, ok := parseDiscriminator(*p.Discriminator); !ok {
		return nil, &pkgerrs.ParseError{Operation: op, Field: "discriminator", Message: "discriminator must be one to four digits"}
	}

	u := &User{
		ID:            *p.ID,
		Username:      *p.Username,
		Discriminator: *p.Discriminator,
		GlobalName:    deref(p.GlobalName),
		Bot:           p.Bot,
		System:        p.System,
		MFAEnabled:    p.MFAEnabled,
		Verified:      p.Verified,
		Locale:        deref(p.Locale),
		Email:         deref(p.Email),
		Flags:         p.Flags,
		PremiumType:   p.PremiumType,
		PublicFlags:   p.PublicFlags,
		AccentColor:   p.AccentColor,
		avatarHash:    deref(p.Avatar),
		bannerHash:    deref(p.Banner),
		client:        c,
		session:       s,
	}
	if p.AvatarDecorationData != nil {
		u.decorationAsset = p.AvatarDecorationData.Asset
	}
	return u, nil
}

// parseDiscriminator accepts "0" for migrated users and legacy numeric tags.
func parseDiscriminator(d string) (int, bool) {
	if d == "" || len(d) > 4 {
		return 0, false
	}
	n := 0
	for _, r := range d {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// CreatedAt returns the account creation time.
func (u *User) CreatedAt() time.Time {
	return u.ID.CreatedAt()
}

// DisplayName returns the global name, or the username when none is set.
func (u *User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Session returns the session the user is bound to, or nil.
func (u *User) Session() *Session {
	return u.session
}

// DefaultAvatarIndex returns the index of the default avatar Discord shows
// for the user. Migrated users (discriminator "0") are keyed on their ID,
// legacy users on their discriminator.
func (u *User) DefaultAvatarIndex() int {
	if u.Discriminator == "0" {
		return int((uint64(u.ID) >> 22) % 6)
	}
	n, _ := parseDiscriminator(u.Discriminator)
	return n % 5
}

// DefaultAvatar returns the default avatar asset.
func (u *User) DefaultAvatar() *Asset {
	return u.client.assets.defaultAvatar(u.DefaultAvatarIndex())
}

// Avatar returns the user's avatar, or nil when none is set.
func (u *User) Avatar() *Asset {
	if u.avatarHash == "" {
		return nil
	}
	return u.client.assets.avatar(u.ID, u.avatarHash)
}

// DisplayAvatar returns the avatar, or the default avatar when none is set.
func (u *User) DisplayAvatar() *Asset {
	if a := u.Avatar(); a != nil {
		return a
	}
	return u.DefaultAvatar()
}

// Banner returns the user's banner, or nil when none is set.
func (u *User) Banner() *Asset {
	if u.bannerHash == "" {
		return nil
	}
	return u.client.assets.banner(u.ID, u.bannerHash)
}

// AvatarDecoration returns the user's avatar decoration, or nil.
func (u *User) AvatarDecoration() *Asset {
	if u.decorationAsset == "" {
		return nil
	}
	return u.client.assets.avatarDecoration(u.decorationAsset)
}

// boundToken returns the access token of the bound session.
func (u *User) boundToken(operation string) (string, error) {
	if u.session == nil {
		return "", &pkgerrs.StateError{Operation: operation, Message: "user is not bound to a session"}
	}
	return u.session.bearer()
}

// EditUserOptions are the fields Edit changes. Nil fields are left untouched.
type EditUserOptions struct {
	Username *string
	Avatar   *File
	Banner   *File
}

// Edit modifies the user and returns the updated user.
func (u *User) Edit(ctx context.Context, opts EditUserOptions) (*User, error) {
	token, err := u.boundToken("Edit")
	if err != nil {
		return nil, err
	}

	payload := &types.EditUserPayload{Username: opts.Username}
	if opts.Username != nil {
		if err := u.client.validator.ValidateUsername(*opts.Username); err != nil {
			return nil, err
		}
	}
	if opts.Avatar != nil {
		uri, err := opts.Avatar.DataURI()
		if err != nil {
			return nil, err
		}
		payload.Avatar = &uri
	}
	if opts.Banner != nil {
		uri, err := opts.Banner.DataURI()
		if err != nil {
			return nil, err
		}
		payload.Banner = &uri
	}

	data, err := u.client.http.EditCurrentUser(ctx, payload, token)
	if err != nil {
		return nil, err
	}
	return newUser(u.client, data, u.session)
}

// Guilds returns an iterator over the guilds the user is in. Requires ScopeGuilds.
func (u *User) Guilds(ctx context.Context, opts GuildsOptions) (*GuildIterator, error) {
	if _, err := u.boundToken("Guilds"); err != nil {
		return nil, err
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultGuildsLimit
	}
	if err := u.client.validator.ValidateGuildsLimit(opts.Limit); err != nil {
		return nil, err
	}
	return newGuildIterator(ctx, u, opts), nil
}

// FetchConnections fetches the accounts the user linked to Discord.
// Requires ScopeConnections.
func (u *User) FetchConnections(ctx context.Context) ([]*Connection, error) {
	token, err := u.boundToken("FetchConnections")
	if err != nil {
		return nil, err
	}

	data, err := u.client.http.GetUserConnections(ctx, token)
	if err != nil {
		return nil, err
	}

	out := make([]*Connection, 0, len(data))
	for i := range data {
		conn, err := newConnection(&data[i])
		if err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, nil
}

// FetchRoleConnection fetches the user's role connection for an application.
// Requires ScopeRoleConnectionsWrite.
func (u *User) FetchRoleConnection(ctx context.Context, applicationID types.Snowflake) (*ApplicationRoleConnection, error) {
	token, err := u.boundToken("FetchRoleConnection")
	if err != nil {
		return nil, err
	}
	if err := u.client.validator.ValidateSnowflake("applicationID", applicationID); err != nil {
		return nil, err
	}

	data, err := u.client.http.GetUserApplicationRoleConnection(ctx, applicationID, token)
	if err != nil {
		return nil, err
	}
	return newApplicationRoleConnection(data), nil
}

// RoleConnectionUpdate is the new role connection of a user. Nil fields are omitted.
type RoleConnectionUpdate struct {
	PlatformName     *string
	PlatformUsername *string
	// Metadata maps metadata record keys to stringified values.
	Metadata map[string]string
}

// UpdateRoleConnection replaces the user's role connection for an application.
// Requires ScopeRoleConnectionsWrite.
func (u *User) UpdateRoleConnection(ctx context.Context, applicationID types.Snowflake, update RoleConnectionUpdate) (*ApplicationRoleConnection, error) {
	token, err := u.boundToken("UpdateRoleConnection")
	if err != nil {
		return nil, err
	}
	if err := u.client.validator.ValidateSnowflake("applicationID", applicationID); err != nil {
		return nil, err
	}
	if err := u.client.validator.ValidateRoleConnection(update.PlatformName, update.PlatformUsername, update.Metadata); err != nil {
		return nil, err
	}

	data, err := u.client.http.UpdateUserApplicationRoleConnection(ctx, applicationID, &types.UpdateRoleConnectionPayload{
		PlatformName:     update.PlatformName,
		PlatformUsername: update.PlatformUsername,
		Metadata:         update.Metadata,
	}, token)
	if err != nil {
		return nil, err
	}
	return newApplicationRoleConnection(data), nil
}
