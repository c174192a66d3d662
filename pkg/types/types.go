// Package types holds the JSON wire payloads exchanged with the Discord API.
//
// Fields the API documents as always present are pointers so that an absent
// field can be told apart from a zero value; the root package rejects payloads
// with a nil required field. Optional booleans and integers are plain values and
// default to their zero value.
package types

// AccessTokenResponse is returned by the token endpoint for the authorization
// code, refresh token and client credentials grants.
type AccessTokenResponse struct {
	AccessToken  *string    `json:"access_token"`
	TokenType    *string    `json:"token_type"`
	ExpiresIn    *FlexInt   `json:"expires_in"`
	Scope        *string    `json:"scope"`
	RefreshToken *string    `json:"refresh_token,omitempty"`
	GuildID      *Snowflake `json:"guild_id,omitempty"`
	Permissions  *FlexInt   `json:"permissions,omitempty"`
	Guild        *Guild     `json:"guild,omitempty"`
}

// AvatarDecorationData describes a user's avatar decoration.
type AvatarDecorationData struct {
	Asset string    `json:"asset"`
	SKUID Snowflake `json:"sku_id"`
}

// User is a Discord user object.
type User struct {
	ID                   *Snowflake            `json:"id"`
	Username             *string               `json:"username"`
	Discriminator        *string               `json:"discriminator"`
	GlobalName           *string               `json:"global_name"`
	Avatar               *string               `json:"avatar"`
	Banner               *string               `json:"banner"`
	AccentColor          *int                  `json:"accent_color"`
	AvatarDecorationData *AvatarDecorationData `json:"avatar_decoration_data"`
	Bot                  bool                  `json:"bot"`
	System               bool                  `json:"system"`
	MFAEnabled           bool                  `json:"mfa_enabled"`
	Verified             bool                  `json:"verified"`
	Locale               *string               `json:"locale"`
	Email                *string               `json:"email"`
	Flags                int                   `json:"flags"`
	PremiumType          int                   `json:"premium_type"`
	PublicFlags          int                   `json:"public_flags"`
}

// EditUserPayload is the body of PATCH /users/@me. Nil fields are omitted.
type EditUserPayload struct {
	Username *string `json:"username,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Banner   *string `json:"banner,omitempty"`
}

// PartialGuild is an entry of the current user's guild list.
type PartialGuild struct {
	ID                       *Snowflake `json:"id"`
	Name                     *string    `json:"name"`
	Icon                     *string    `json:"icon"`
	Banner                   *string    `json:"banner"`
	Owner                    bool       `json:"owner"`
	Permissions              FlexInt    `json:"permissions"`
	Features                 []string   `json:"features"`
	ApproximateMemberCount   *int       `json:"approximate_member_count,omitempty"`
	ApproximatePresenceCount *int       `json:"approximate_presence_count,omitempty"`
}

// Role is a guild role.
type Role struct {
	ID          *Snowflake `json:"id"`
	Name        *string    `json:"name"`
	Color       int        `json:"color"`
	Hoist       bool       `json:"hoist"`
	Icon        *string    `json:"icon"`
	Position    int        `json:"position"`
	Permissions FlexInt    `json:"permissions"`
	Managed     bool       `json:"managed"`
	Mentionable bool       `json:"mentionable"`
	Flags       int        `json:"flags"`
}

// Guild is the full guild object, returned alongside a token when the bot
// scope is granted.
type Guild struct {
	ID                          *Snowflake `json:"id"`
	Name                        *string    `json:"name"`
	Icon                        *string    `json:"icon"`
	Splash                      *string    `json:"splash"`
	DiscoverySplash             *string    `json:"discovery_splash"`
	Banner                      *string    `json:"banner"`
	Description                 *string    `json:"description"`
	OwnerID                     *Snowflake `json:"owner_id"`
	ApplicationID               *Snowflake `json:"application_id"`
	AFKChannelID                *Snowflake `json:"afk_channel_id"`
	AFKTimeout                  int        `json:"afk_timeout"`
	SystemChannelID             *Snowflake `json:"system_channel_id"`
	SystemChannelFlags          int        `json:"system_channel_flags"`
	RulesChannelID              *Snowflake `json:"rules_channel_id"`
	PublicUpdatesChannelID      *Snowflake `json:"public_updates_channel_id"`
	SafetyAlertsChannelID       *Snowflake `json:"safety_alerts_channel_id"`
	WidgetEnabled               bool       `json:"widget_enabled"`
	WidgetChannelID             *Snowflake `json:"widget_channel_id"`
	VerificationLevel           int        `json:"verification_level"`
	DefaultMessageNotifications int        `json:"default_message_notifications"`
	ExplicitContentFilter       int        `json:"explicit_content_filter"`
	MFALevel                    int        `json:"mfa_level"`
	NSFWLevel                   int        `json:"nsfw_level"`
	PremiumTier                 int        `json:"premium_tier"`
	PremiumSubscriptionCount    int        `json:"premium_subscription_count"`
	PremiumProgressBarEnabled   bool       `json:"premium_progress_bar_enabled"`
	PreferredLocale             string     `json:"preferred_locale"`
	VanityURLCode               *string    `json:"vanity_url_code"`
	MaxMembers                  int        `json:"max_members"`
	MaxPresences                *int       `json:"max_presences"`
	MaxVideoChannelUsers        int        `json:"max_video_channel_users"`
	Features                    []string   `json:"features"`
	Roles                       []Role     `json:"roles"`
}

// GuildMember is the current user's member object in a guild.
type GuildMember struct {
	User                       *User       `json:"user"`
	Nick                       *string     `json:"nick"`
	Avatar                     *string     `json:"avatar"`
	Roles                      []Snowflake `json:"roles"`
	JoinedAt                   *string     `json:"joined_at"`
	PremiumSince               *string     `json:"premium_since"`
	Deaf                       bool        `json:"deaf"`
	Mute                       bool        `json:"mute"`
	Flags                      int         `json:"flags"`
	Pending                    bool        `json:"pending"`
	CommunicationDisabledUntil *string     `json:"communication_disabled_until"`
}

// AddGuildMemberPayload is the body of PUT /guilds/{guild.id}/members/{user.id}.
type AddGuildMemberPayload struct {
	AccessToken string      `json:"access_token"`
	Nick        *string     `json:"nick,omitempty"`
	Roles       []Snowflake `json:"roles,omitempty"`
	Mute        *bool       `json:"mute,omitempty"`
	Deaf        *bool       `json:"deaf,omitempty"`
}

// TeamMember is a member of an application's team.
type TeamMember struct {
	User            *User     `json:"user"`
	MembershipState *int      `json:"membership_state"`
	Permissions     []string  `json:"permissions"`
	TeamID          Snowflake `json:"team_id"`
	Role            string    `json:"role"`
}

// Team owns an application.
type Team struct {
	ID          *Snowflake   `json:"id"`
	Name        *string      `json:"name"`
	Icon        *string      `json:"icon"`
	OwnerUserID *Snowflake   `json:"owner_user_id"`
	Members     []TeamMember `json:"members"`
}

// InstallParams are the default in-app authorization settings of an application.
type InstallParams struct {
	Scopes      []string `json:"scopes"`
	Permissions FlexInt  `json:"permissions"`
}

// AppInfo is the application object returned by /oauth2/applications/@me.
type AppInfo struct {
	ID                             *Snowflake     `json:"id"`
	Name                           *string        `json:"name"`
	Icon                           *string        `json:"icon"`
	Description                    *string        `json:"description"`
	RPCOrigins                     []string       `json:"rpc_origins"`
	BotPublic                      *bool          `json:"bot_public"`
	BotRequireCodeGrant            *bool          `json:"bot_require_code_grant"`
	TermsOfServiceURL              *string        `json:"terms_of_service_url"`
	PrivacyPolicyURL               *string        `json:"privacy_policy_url"`
	Owner                          *User          `json:"owner"`
	VerifyKey                      *string        `json:"verify_key"`
	Team                           *Team          `json:"team"`
	GuildID                        *Snowflake     `json:"guild_id"`
	PrimarySKUID                   *Snowflake     `json:"primary_sku_id"`
	Slug                           *string        `json:"slug"`
	CoverImage                     *string        `json:"cover_image"`
	Flags                          int            `json:"flags"`
	Tags                           []string       `json:"tags"`
	InstallParams                  *InstallParams `json:"install_params"`
	CustomInstallURL               *string        `json:"custom_install_url"`
	RoleConnectionsVerificationURL *string        `json:"role_connections_verification_url"`
}

// PartialAppInfo is the application object embedded in the current authorization info.
type PartialAppInfo struct {
	ID                *Snowflake `json:"id"`
	Name              *string    `json:"name"`
	Icon              *string    `json:"icon"`
	Description       *string    `json:"description"`
	RPCOrigins        []string   `json:"rpc_origins"`
	VerifyKey         *string    `json:"verify_key"`
	TermsOfServiceURL *string    `json:"terms_of_service_url"`
	PrivacyPolicyURL  *string    `json:"privacy_policy_url"`
	CoverImage        *string    `json:"cover_image"`
	Flags             int        `json:"flags"`
	BotPublic         bool       `json:"bot_public"`
	Hook              bool       `json:"hook"`
}

// AuthInfo is returned by GET /oauth2/@me.
type AuthInfo struct {
	Application *PartialAppInfo `json:"application"`
	Scopes      []string        `json:"scopes"`
	Expires     *string         `json:"expires"`
	User        *User           `json:"user"`
}

// IntegrationAccount is the external account of an integration.
type IntegrationAccount struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

// PartialIntegration is an integration attached to a connection.
type PartialIntegration struct {
	ID            *Snowflake          `json:"id"`
	Name          *string             `json:"name"`
	Type          *string             `json:"type"`
	Account       *IntegrationAccount `json:"account"`
	ApplicationID *Snowflake          `json:"application_id"`
}

// Connection is an account the user linked to Discord. Connection IDs are
// identifiers of the third-party service, not snowflakes.
type Connection struct {
	ID           *string              `json:"id"`
	Name         *string              `json:"name"`
	Type         *string              `json:"type"`
	Revoked      bool                 `json:"revoked"`
	Integrations []PartialIntegration `json:"integrations"`
	Verified     *bool                `json:"verified"`
	FriendSync   *bool                `json:"friend_sync"`
	ShowActivity *bool                `json:"show_activity"`
	TwoWayLink   *bool                `json:"two_way_link"`
	Visibility   *int                 `json:"visibility"`
}

// ApplicationRoleConnection is the role connection an application attached to a user.
type ApplicationRoleConnection struct {
	PlatformName     *string           `json:"platform_name"`
	PlatformUsername *string           `json:"platform_username"`
	Metadata         map[string]string `json:"metadata"`
}

// UpdateRoleConnectionPayload is the body of
// PUT /users/@me/applications/{application.id}/role-connection.
type UpdateRoleConnectionPayload struct {
	PlatformName     *string           `json:"platform_name,omitempty"`
	PlatformUsername *string           `json:"platform_username,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// ApplicationRoleConnectionMetadata is a role connection metadata record of an application.
type ApplicationRoleConnectionMetadata struct {
	Type                     *int              `json:"type"`
	Key                      *string           `json:"key"`
	Name                     *string           `json:"name"`
	NameLocalizations        map[string]string `json:"name_localizations,omitempty"`
	Description              *string           `json:"description"`
	DescriptionLocalizations map[string]string `json:"description_localizations,omitempty"`
}

// CreateGroupDMPayload is the body of POST /users/@me/channels for group DMs.
type CreateGroupDMPayload struct {
	AccessTokens []string             `json:"access_tokens"`
	Nicks        map[Snowflake]string `json:"nicks"`
}

// AddGroupDMRecipientPayload is the body of PUT /channels/{channel.id}/recipients/{user.id}.
type AddGroupDMRecipientPayload struct {
	AccessToken string `json:"access_token"`
	Nick        string `json:"nick"`
}

// GroupDMChannel is a group DM channel object.
type GroupDMChannel struct {
	ID            *Snowflake `json:"id"`
	Type          int        `json:"type"`
	Name          *string    `json:"name"`
	Icon          *string    `json:"icon"`
	Recipients    []User     `json:"recipients"`
	OwnerID       *Snowflake `json:"owner_id"`
	LastMessageID *Snowflake `json:"last_message_id"`
	ApplicationID *Snowflake `json:"application_id"`
	Managed       bool       `json:"managed"`
	Flags         int        `json:"flags"`
}
