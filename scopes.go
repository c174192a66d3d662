package discordauth

import (
	"math/bits"
	"strings"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
)

// Scopes is a set of OAuth2 scopes. Each scope is a distinct bit; sets are
// combined with the | operator.
//
//	scopes := discordauth.ScopeIdentify | discordauth.ScopeGuilds | discordauth.ScopeEmail
type Scopes uint64

const (
	ScopeActivitiesRead Scopes = 1 << iota
	ScopeActivitiesWrite
	ScopeApplicationsBuildsRead
	ScopeApplicationsBuildsUpload
	ScopeApplicationsCommands
	ScopeApplicationsCommandsUpdate
	ScopeApplicationsCommandsPermissionsUpdate
	ScopeApplicationsEntitlements
	ScopeApplicationsStoreUpdate
	ScopeBot
	ScopeConnections
	ScopeDMChannelsRead
	ScopeEmail
	ScopeGDMJoin
	ScopeGuilds
	ScopeGuildsJoin
	ScopeGuildsMembersRead
	ScopeIdentify
	ScopeMessagesRead
	ScopeRelationshipsRead
	ScopeRoleConnectionsWrite
	ScopeRPC
	ScopeRPCActivitiesWrite
	ScopeRPCNotificationsRead
	ScopeRPCVoiceRead
	ScopeRPCVoiceWrite
	ScopeVoice
	ScopeWebhookIncoming

	scopeSentinel
)

// NoScopes is the empty set.
const NoScopes Scopes = 0

// AllScopes contains every known scope.
const AllScopes = scopeSentinel - 1

type scopeName struct {
	name string
	wire string
}

// scopeNames is indexed by bit position. Discord names most scopes by
// replacing every underscore of the symbolic name with a dot, but
// role_connections.write and dm_channels.read keep their first underscore.
var scopeNames = [...]scopeName{
	{"activities_read", "activities.read"},
	{"activities_write", "activities.write"},
	{"applications_builds_read", "applications.builds.read"},
	{"applications_builds_upload", "applications.builds.upload"},
	{"applications_commands", "applications.commands"},
	{"applications_commands_update", "applications.commands.update"},
	{"applications_commands_permissions_update", "applications.commands.permissions.update"},
	{"applications_entitlements", "applications.entitlements"},
	{"applications_store_update", "applications.store.update"},
	{"bot", "bot"},
	{"connections", "connections"},
	{"dm_channels_read", "dm_channels.read"},
	{"email", "email"},
	{"gdm_join", "gdm.join"},
	{"guilds", "guilds"},
	{"guilds_join", "guilds.join"},
	{"guilds_members_read", "guilds.members.read"},
	{"identify", "identify"},
	{"messages_read", "messages.read"},
	{"relationships_read", "relationships.read"},
	{"role_connections_write", "role_connections.write"},
	{"rpc", "rpc"},
	{"rpc_activities_write", "rpc.activities.write"},
	{"rpc_notifications_read", "rpc.notifications.read"},
	{"rpc_voice_read", "rpc.voice.read"},
	{"rpc_voice_write", "rpc.voice.write"},
	{"voice", "voice"},
	{"webhook_incoming", "webhook.incoming"},
}

var scopesByWireName = func() map[string]Scopes {
	m := make(map[string]Scopes, len(scopeNames))
	for i, n := range scopeNames {
		m[n.wire] = Scopes(1) << i
	}
	return m
}()

var scopesByName = func() map[string]Scopes {
	m := make(map[string]Scopes, len(scopeNames))
	for i, n := range scopeNames {
		m[n.name] = Scopes(1) << i
	}
	return m
}()

// Has reports whether every scope of other is in s.
func (s Scopes) Has(other Scopes) bool {
	return s&other == other
}

// Len returns the number of scopes in the set.
func (s Scopes) Len() int {
	return bits.OnesCount64(uint64(s & AllScopes))
}

// Split returns the individual scopes of s in ascending bit order.
// Unknown bits are ignored.
func (s Scopes) Split() []Scopes {
	out := make([]Scopes, 0, s.Len())
	s.Each(func(scope Scopes) {
		out = append(out, scope)
	})
	return out
}

// Each calls fn for every scope in s, in ascending bit order.
func (s Scopes) Each(fn func(Scopes)) {
	n := s & AllScopes
	for n != 0 {
		low := n & -n
		fn(low)
		n ^= low
	}
}

// Name returns the symbolic name of a single scope, e.g. "guilds_members_read".
// It returns "" for sets with more or less than one scope.
func (s Scopes) Name() string {
	if s.Len() != 1 || s&^AllScopes != 0 {
		return ""
	}
	return scopeNames[bits.TrailingZeros64(uint64(s))].name
}

// APIName returns the wire name of a single scope, e.g. "guilds.members.read".
// It returns "" for sets with more or less than one scope.
func (s Scopes) APIName() string {
	if s.Len() != 1 || s&^AllScopes != 0 {
		return ""
	}
	return scopeNames[bits.TrailingZeros64(uint64(s))].wire
}

// APINames returns the wire names of every scope in s, in ascending bit order.
func (s Scopes) APINames() []string {
	names := make([]string, 0, s.Len())
	s.Each(func(scope Scopes) {
		names = append(names, scope.APIName())
	})
	return names
}

// String joins the wire names with a space, the form used by token responses.
func (s Scopes) String() string {
	return strings.Join(s.APINames(), " ")
}

// URLParam joins the wire names with "%20" for direct use in a query string.
func (s Scopes) URLParam() string {
	return strings.Join(s.APINames(), "%20")
}

// ParseScopes converts wire names (or symbolic names) back to a set.
// An unknown name is a *errors.ParseError.
func ParseScopes(names []string) (Scopes, error) {
	var out Scopes
	for _, name := range names {
		if name == "" {
			continue
		}
		scope, ok := scopesByWireName[name]
		if !ok {
			scope, ok = scopesByName[name]
		}
		if !ok {
			return NoScopes, &pkgerrs.ParseError{Operation: "ParseScopes", Field: "scope", Message: "unknown scope " + name}
		}
		out |= scope
	}
	return out, nil
}

// ParseScopeString parses a space separated scope list such as the scope
// field of a token response.
func ParseScopeString(s string) (Scopes, error) {
	return ParseScopes(strings.Fields(s))
}
