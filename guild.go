package discordauth

import (
	"time"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// PartialGuild is an entry of the current user's guild list.
type PartialGuild struct {
	ID          types.Snowflake
	Name        string
	Owner       bool
	Permissions int64
	Features    []string
	// ApproximateMemberCount and ApproximatePresenceCount are only set when
	// the list was requested WithCounts.
	ApproximateMemberCount   *int
	ApproximatePresenceCount *int

	iconHash   string
	bannerHash string
	client     *Client
}

func newPartialGuild(c *Client, p *types.PartialGuild) (*PartialGuild, error) {
	const op = "PartialGuild"
	if err := requireField(op, "id", p.ID != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "name", p.Name != nil); err != nil {
		return nil, err
	}

	return &PartialGuild{
		ID:                       *p.ID,
		Name:                     *p.Name,
		Owner:                    p.Owner,
		Permissions:              int64(p.Permissions),
		Features:                 p.Features,
		ApproximateMemberCount:   p.ApproximateMemberCount,
		ApproximatePresenceCount: p.ApproximatePresenceCount,
		iconHash:                 deref(p.Icon),
		bannerHash:               deref(p.Banner),
		client:                   c,
	}, nil
}

// Icon returns the guild icon, or nil.
func (g *PartialGuild) Icon() *Asset {
	if g.iconHash == "" {
		return nil
	}
	return g.client.assets.guildIcon(g.ID, g.iconHash)
}

// Banner returns the guild banner, or nil.
func (g *PartialGuild) Banner() *Asset {
	if g.bannerHash == "" {
		return nil
	}
	return g.client.assets.banner(g.ID, g.bannerHash)
}

// Role is a guild role.
type Role struct {
	ID          types.Snowflake
	Name        string
	Color       int
	Hoist       bool
	Position    int
	Permissions int64
	Managed     bool
	Mentionable bool
	Flags       int

	iconHash string
	client   *Client
}

func newRole(c *Client, p *types.Role) (*Role, error) {
	const op = "Role"
	if err := requireField(op, "id", p.ID != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "name", p.Name != nil); err != nil {
		return nil, err
	}
	return &Role{
		ID:          *p.ID,
		Name:        *p.Name,
		Color:       p.Color,
		Hoist:       p.Hoist,
		Position:    p.Position,
		Permissions: int64(p.Permissions),
		Managed:     p.Managed,
		Mentionable: p.Mentionable,
		Flags:       p.Flags,
		iconHash:    deref(p.Icon),
		client:      c,
	}, nil
}

// Icon returns the role icon, or nil.
func (r *Role) Icon() *Asset {
	if r.iconHash == "" {
		return nil
	}
	return r.client.assets.icon("role", r.ID, r.iconHash)
}

// Guild is the full guild object Discord returns with a token when the bot
// scope was granted.
type Guild struct {
	ID                          types.Snowflake
	Name                        string
	Description                 string
	OwnerID                     types.Snowflake
	ApplicationID               types.Snowflake
	AFKChannelID                types.Snowflake
	AFKTimeout                  int
	SystemChannelID             types.Snowflake
	SystemChannelFlags          int
	RulesChannelID              types.Snowflake
	PublicUpdatesChannelID      types.Snowflake
	SafetyAlertsChannelID       types.Snowflake
	WidgetEnabled               bool
	WidgetChannelID             types.Snowflake
	VerificationLevel           int
	DefaultMessageNotifications int
	ExplicitContentFilter       int
	MFALevel                    int
	NSFWLevel                   int
	PremiumTier                 int
	PremiumSubscriptionCount    int
	PremiumProgressBarEnabled   bool
	PreferredLocale             string
	VanityURLCode               string
	MaxMembers                  int
	MaxPresences                *int
	MaxVideoChannelUsers        int
	Features                    []string
	Roles                       []*Role

	iconHash            string
	splashHash          string
	discoverySplashHash string
	bannerHash          string
	client              *Client
}

func newGuild(c *Client, p *types.Guild) (*Guild, error) {
	const op = "Guild"
	if err := requireField(op, "id", p.ID != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "name", p.Name != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "owner_id", p.OwnerID != nil); err != nil {
		return nil, err
	}

	g := &Guild{
		ID:                          *p.ID,
		Name:                        *p.Name,
		Description:                 deref(p.Description),
		OwnerID:                     *p.OwnerID,
		ApplicationID:               deref(p.ApplicationID),
		AFKChannelID:                deref(p.AFKChannelID),
		AFKTimeout:                  p.AFKTimeout,
		SystemChannelID:             deref(p.SystemChannelID),
		SystemChannelFlags:          p.SystemChannelFlags,
		RulesChannelID:              deref(p.RulesChannelID),
		PublicUpdatesChannelID:      deref(p.PublicUpdatesChannelID),
		SafetyAlertsChannelID:       deref(p.SafetyAlertsChannelID),
		WidgetEnabled:               p.WidgetEnabled,
		WidgetChannelID:             deref(p.WidgetChannelID),
		VerificationLevel:           p.VerificationLevel,
		DefaultMessageNotifications: p.DefaultMessageNotifications,
		ExplicitContentFilter:       p.ExplicitContentFilter,
		MFALevel:                    p.MFALevel,
		NSFWLevel:                   p.NSFWLevel,
		PremiumTier:                 p.PremiumTier,
		PremiumSubscriptionCount:    p.PremiumSubscriptionCount,
		PremiumProgressBarEnabled:   p.PremiumProgressBarEnabled,
		PreferredLocale:             p.PreferredLocale,
		VanityURLCode:               deref(p.VanityURLCode),
		MaxMembers:                  p.MaxMembers,
		MaxPresences:                p.MaxPresences,
		MaxVideoChannelUsers:        p.MaxVideoChannelUsers,
		Features:                    p.Features,
		iconHash:                    deref(p.Icon),
		splashHash:                  deref(p.Splash),
		discoverySplashHash:         deref(p.DiscoverySplash),
		bannerHash:                  deref(p.Banner),
		client:                      c,
	}

	g.Roles = make([]*Role, 0, len(p.Roles))
	for i := range p.Roles {
		r, err := newRole(c, &p.Roles[i])
		if err != nil {
			return nil, err
		}
		g.Roles = append(g.Roles, r)
	}
	return g, nil
}

// CreatedAt returns the guild creation time.
func (g *Guild) CreatedAt() time.Time {
	return g.ID.CreatedAt()
}

// Icon returns the guild icon, or nil.
func (g *Guild) Icon() *Asset {
	if g.iconHash == "" {
		return nil
	}
	return g.client.assets.guildIcon(g.ID, g.iconHash)
}

// Splash returns the invite splash image, or nil.
func (g *Guild) Splash() *Asset {
	if g.splashHash == "" {
		return nil
	}
	return g.client.assets.hashed("splashes/"+g.ID.String(), g.splashHash, false)
}

// DiscoverySplash returns the discovery splash image, or nil.
func (g *Guild) DiscoverySplash() *Asset {
	if g.discoverySplashHash == "" {
		return nil
	}
	return g.client.assets.hashed("discovery-splashes/"+g.ID.String(), g.discoverySplashHash, false)
}

// Banner returns the guild banner, or nil.
func (g *Guild) Banner() *Asset {
	if g.bannerHash == "" {
		return nil
	}
	return g.client.assets.banner(g.ID, g.bannerHash)
}

// GuildMember is a user's membership in a guild.
type GuildMember struct {
	GuildID types.Snowflake
	// User is nil in responses that omit it.
	User                       *User
	Nick                       string
	Roles                      []types.Snowflake
	JoinedAt                   time.Time
	PremiumSince               *time.Time
	Deaf                       bool
	Mute                       bool
	Flags                      int
	Pending                    bool
	CommunicationDisabledUntil *time.Time

	avatarHash string
	client     *Client
}

func newGuildMember(c *Client, p *types.GuildMember, guildID types.Snowflake, s *Session) (*GuildMember, error) {
	const op = "GuildMember"
	if err := requireField(op, "joined_at", p.JoinedAt != nil); err != nil {
		return nil, err
	}
	joinedAt, err := parseTimestamp(op, "joined_at", *p.JoinedAt)
	if err != nil {
		return nil, err
	}
	premiumSince, err := parseOptionalTimestamp(op, "premium_since", p.PremiumSince)
	if err != nil {
		return nil, err
	}
	timeoutUntil, err := parseOptionalTimestamp(op, "communication_disabled_until", p.CommunicationDisabledUntil)
	if err != nil {
		return nil, err
	}

	m := &GuildMember{
		GuildID:                    guildID,
		Nick:                       deref(p.Nick),
		Roles:                      p.Roles,
		JoinedAt:                   joinedAt,
		PremiumSince:               premiumSince,
		Deaf:                       p.Deaf,
		Mute:                       p.Mute,
		Flags:                      p.Flags,
		Pending:                    p.Pending,
		CommunicationDisabledUntil: timeoutUntil,
		avatarHash:                 deref(p.Avatar),
		client:                     c,
	}
	if p.User != nil {
		u, err := newUser(c, p.User, s)
		if err != nil {
			return nil, err
		}
		m.User = u
	}
	return m, nil
}

// DisplayName returns the nickname, falling back to the user's display name.
func (m *GuildMember) DisplayName() string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		return m.User.DisplayName()
	}
	return ""
}

// Avatar returns the guild-specific avatar, or nil when none is set.
func (m *GuildMember) Avatar() *Asset {
	if m.avatarHash == "" || m.User == nil {
		return nil
	}
	return m.client.assets.guildMemberAvatar(m.GuildID, m.User.ID, m.avatarHash)
}

func parseTimestamp(op, field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, &pkgerrs.ParseError{Operation: op, Field: field, Message: "invalid timestamp", Err: err}
	}
	return t, nil
}

func parseOptionalTimestamp(op, field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseTimestamp(op, field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
