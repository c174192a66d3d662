package discordauth

import (
	"maps"

	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// ConnectionType is the service of a linked account, as named by the API.
type ConnectionType string

const (
	ConnectionBattleNet       ConnectionType = "battlenet"
	ConnectionEbay            ConnectionType = "ebay"
	ConnectionEpicGames       ConnectionType = "epicgames"
	ConnectionFacebook        ConnectionType = "facebook"
	ConnectionGitHub          ConnectionType = "github"
	ConnectionInstagram       ConnectionType = "instagram"
	ConnectionLeagueOfLegends ConnectionType = "leagueoflegends"
	ConnectionPayPal          ConnectionType = "paypal"
	ConnectionPlayStation     ConnectionType = "playstation"
	ConnectionReddit          ConnectionType = "reddit"
	ConnectionRiotGames       ConnectionType = "riotgames"
	ConnectionSpotify         ConnectionType = "spotify"
	ConnectionSkype           ConnectionType = "skype"
	ConnectionSteam           ConnectionType = "steam"
	ConnectionTikTok          ConnectionType = "tiktok"
	ConnectionTwitch          ConnectionType = "twitch"
	ConnectionTwitter         ConnectionType = "twitter"
	ConnectionXbox            ConnectionType = "xbox"
	ConnectionYouTube         ConnectionType = "youtube"
)

var connectionDisplayNames = map[ConnectionType]string{
	ConnectionBattleNet:       "Battle.net",
	ConnectionEbay:            "eBay",
	ConnectionEpicGames:       "Epic Games",
	ConnectionFacebook:        "Facebook",
	ConnectionGitHub:          "GitHub",
	ConnectionInstagram:       "Instagram",
	ConnectionLeagueOfLegends: "League of Legends",
	ConnectionPayPal:          "PayPal",
	ConnectionPlayStation:     "PlayStation Network",
	ConnectionReddit:          "Reddit",
	ConnectionRiotGames:       "Riot Games",
	ConnectionSpotify:         "Spotify",
	ConnectionSkype:           "Skype",
	ConnectionSteam:           "Steam",
	ConnectionTikTok:          "TikTok",
	ConnectionTwitch:          "Twitch",
	ConnectionTwitter:         "X",
	ConnectionXbox:            "Xbox",
	ConnectionYouTube:         "YouTube",
}

// DisplayName returns the human readable service name. Services this
// package does not know are returned as is.
func (t ConnectionType) DisplayName() string {
	if name, ok := connectionDisplayNames[t]; ok {
		return name
	}
	return string(t)
}

// VisibilityType controls who can see a connection.
type VisibilityType int

const (
	VisibilityNone     VisibilityType = 0
	VisibilityEveryone VisibilityType = 1
)

// Connection is an account the user linked to Discord.
type Connection struct {
	// ID is the account ID on the linked service.
	ID           string
	Name         string
	Type         ConnectionType
	Revoked      bool
	Verified     bool
	FriendSync   bool
	ShowActivity bool
	TwoWayLink   bool
	Visibility   VisibilityType
	Integrations []*PartialIntegration
}

func newConnection(p *types.Connection) (*Connection, error) {
	const op = "Connection"
	required := []struct {
		field   string
		present bool
	}{
		{"id", p.ID != nil},
		{"name", p.Name != nil},
		{"type", p.Type != nil},
		{"verified", p.Verified != nil},
		{"friend_sync", p.FriendSync != nil},
		{"show_activity", p.ShowActivity != nil},
		{"two_way_link", p.TwoWayLink != nil},
		{"visibility", p.Visibility != nil},
	}
	for _, r := range required {
		if err := requireField(op, r.field, r.present); err != nil {
			return nil, err
		}
	}

	conn := &Connection{
		ID:           *p.ID,
		Name:         *p.Name,
		Type:         ConnectionType(*p.Type),
		Revoked:      p.Revoked,
		Verified:     *p.Verified,
		FriendSync:   *p.FriendSync,
		ShowActivity: *p.ShowActivity,
		TwoWayLink:   *p.TwoWayLink,
		Visibility:   VisibilityType(*p.Visibility),
	}
	for i := range p.Integrations {
		integration, err := newPartialIntegration(&p.Integrations[i])
		if err != nil {
			return nil, err
		}
		conn.Integrations = append(conn.Integrations, integration)
	}
	return conn, nil
}

// IntegrationAccount is the external account behind an integration.
type IntegrationAccount struct {
	ID   string
	Name string
}

// PartialIntegration is an integration attached to a connection.
type PartialIntegration struct {
	ID            types.Snowflake
	Name          string
	Type          string
	Account       IntegrationAccount
	ApplicationID types.Snowflake
}

func newPartialIntegration(p *types.PartialIntegration) (*PartialIntegration, error) {
	const op = "PartialIntegration"
	required := []struct {
		field   string
		present bool
	}{
		{"id", p.ID != nil},
		{"name", p.Name != nil},
		{"type", p.Type != nil},
		{"account", p.Account != nil},
	}
	for _, r := range required {
		if err := requireField(op, r.field, r.present); err != nil {
			return nil, err
		}
	}
	if err := requireField("IntegrationAccount", "id", p.Account.ID != nil); err != nil {
		return nil, err
	}
	if err := requireField("IntegrationAccount", "name", p.Account.Name != nil); err != nil {
		return nil, err
	}

	return &PartialIntegration{
		ID:   *p.ID,
		Name: *p.Name,
		Type: *p.Type,
		Account: IntegrationAccount{
			ID:   *p.Account.ID,
			Name: *p.Account.Name,
		},
		ApplicationID: deref(p.ApplicationID),
	}, nil
}

// ApplicationRoleConnection is the role connection an application attached to a user.
type ApplicationRoleConnection struct {
	PlatformName     string
	PlatformUsername string
	// Metadata maps metadata record keys to stringified values.
	Metadata map[string]string
}

func newApplicationRoleConnection(p *types.ApplicationRoleConnection) *ApplicationRoleConnection {
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &ApplicationRoleConnection{
		PlatformName:     deref(p.PlatformName),
		PlatformUsername: deref(p.PlatformUsername),
		Metadata:         metadata,
	}
}

// MetadataType is the comparison a role connection metadata record performs.
type MetadataType int

const (
	MetadataIntegerLessThanOrEqual     MetadataType = 1
	MetadataIntegerGreaterThanOrEqual  MetadataType = 2
	MetadataIntegerEqual               MetadataType = 3
	MetadataIntegerNotEqual            MetadataType = 4
	MetadataDatetimeLessThanOrEqual    MetadataType = 5
	MetadataDatetimeGreaterThanOrEqual MetadataType = 6
	MetadataBooleanEqual               MetadataType = 7
	MetadataBooleanNotEqual            MetadataType = 8
)

func (t MetadataType) String() string {
	switch t {
	case MetadataIntegerLessThanOrEqual:
		return "integer_less_than_or_equal"
	case MetadataIntegerGreaterThanOrEqual:
		return "integer_greater_than_or_equal"
	case MetadataIntegerEqual:
		return "integer_equal"
	case MetadataIntegerNotEqual:
		return "integer_not_equal"
	case MetadataDatetimeLessThanOrEqual:
		return "datetime_less_than_or_equal"
	case MetadataDatetimeGreaterThanOrEqual:
		return "datetime_greater_than_or_equal"
	case MetadataBooleanEqual:
		return "boolean_equal"
	case MetadataBooleanNotEqual:
		return "boolean_not_equal"
	default:
		return "unknown"
	}
}

// ApplicationRoleConnectionMetadata is a role connection metadata record
// of an application. Users' role connections set values for its Key.
type ApplicationRoleConnectionMetadata struct {
	Type                     MetadataType
	Key                      string
	Name                     string
	Description              string
	NameLocalizations        map[string]string
	DescriptionLocalizations map[string]string
}

func newRoleConnectionMetadata(p *types.ApplicationRoleConnectionMetadata) (*ApplicationRoleConnectionMetadata, error) {
	const op = "ApplicationRoleConnectionMetadata"
	required := []struct {
		field   string
		present bool
	}{
		{"type", p.Type != nil},
		{"key", p.Key != nil},
		{"name", p.Name != nil},
		{"description", p.Description != nil},
	}
	for _, r := range required {
		if err := requireField(op, r.field, r.present); err != nil {
			return nil, err
		}
	}

	return &ApplicationRoleConnectionMetadata{
		Type:                     MetadataType(*p.Type),
		Key:                      *p.Key,
		Name:                     *p.Name,
		Description:              *p.Description,
		NameLocalizations:        p.NameLocalizations,
		DescriptionLocalizations: p.DescriptionLocalizations,
	}, nil
}

func newRoleConnectionMetadataList(data []types.ApplicationRoleConnectionMetadata) ([]*ApplicationRoleConnectionMetadata, error) {
	out := make([]*ApplicationRoleConnectionMetadata, 0, len(data))
	for i := range data {
		m, err := newRoleConnectionMetadata(&data[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// payload converts the record to its wire form. Empty localization maps are omitted.
func (m *ApplicationRoleConnectionMetadata) payload() types.ApplicationRoleConnectionMetadata {
	typ := int(m.Type)
	key, name, description := m.Key, m.Name, m.Description
	p := types.ApplicationRoleConnectionMetadata{
		Type:        &typ,
		Key:         &key,
		Name:        &name,
		Description: &description,
	}
	if len(m.NameLocalizations) > 0 {
		p.NameLocalizations = maps.Clone(m.NameLocalizations)
	}
	if len(m.DescriptionLocalizations) > 0 {
		p.DescriptionLocalizations = maps.Clone(m.DescriptionLocalizations)
	}
	return p
}
