package test_generators

import (
	"math/rand"
	"sort"
	"time"

	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// GuildGenerator generates realistic guild lists for testing
type GuildGenerator struct {
	rand     *rand.Rand
	now      time.Time
	topics   []string
	suffixes []string
	features []string
}

// NewGuildGenerator creates a new guild generator
func NewGuildGenerator(seed int64) *GuildGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GuildGenerator{
		rand: rand.New(rand.NewSource(seed)),
		now:  time.Now(),
		topics: []string{
			"Go", "Rust", "Speedrunning", "Minecraft", "Homelab",
			"Photography", "Chess", "Synthwave", "Retro Gaming", "Study",
		},
		suffixes: []string{
			"Hub", "Community", "Lounge", "Club", "Collective", "Den", "HQ",
		},
		features: []string{
			"COMMUNITY", "NEWS", "DISCOVERABLE", "INVITE_SPLASH", "BANNER",
			"ANIMATED_ICON", "VANITY_URL", "ROLE_ICONS", "WELCOME_SCREEN_ENABLED",
		},
	}
}

// GuildOptions controls generated guild lists
type GuildOptions struct {
	// WithCounts sets the approximate member and presence counts
	WithCounts bool
	// OwnerRatio is the share of guilds owned by the user
	OwnerRatio float32
}

// GenerateGuild creates a realistic partial guild
func (gg *GuildGenerator) GenerateGuild(opts GuildOptions) types.PartialGuild {
	id := randomSnowflake(gg.rand, gg.now)
	name := gg.randElement(gg.topics) + " " + gg.randElement(gg.suffixes)

	guild := types.PartialGuild{
		ID:          &id,
		Name:        &name,
		Owner:       gg.rand.Float32() < opts.OwnerRatio,
		Permissions: types.FlexInt(gg.rand.Int63n(1 << 41)),
		Features:    gg.generateFeatures(),
	}
	if guild.Owner {
		// Owners hold every permission
		guild.Permissions = types.FlexInt(1<<41 - 1)
	}

	if gg.rand.Float32() < 0.6 { // 60% chance
		icon := randomHash(gg.rand, gg.rand.Float32() < 0.2)
		guild.Icon = &icon
	}

	if opts.WithCounts {
		members := 1 + gg.rand.Intn(250000)
		presences := gg.rand.Intn(members + 1)
		guild.ApproximateMemberCount = &members
		guild.ApproximatePresenceCount = &presences
	}

	return guild
}

// GenerateGuilds creates count guilds with distinct IDs in ascending ID order,
// the order Discord lists them in.
func (gg *GuildGenerator) GenerateGuilds(count int, opts GuildOptions) []types.PartialGuild {
	seen := make(map[types.Snowflake]bool, count)
	guilds := make([]types.PartialGuild, 0, count)
	for len(guilds) < count {
		g := gg.GenerateGuild(opts)
		if seen[*g.ID] {
			continue
		}
		seen[*g.ID] = true
		guilds = append(guilds, g)
	}

	sort.Slice(guilds, func(i, j int) bool {
		return *guilds[i].ID < *guilds[j].ID
	})
	return guilds
}

// IDs returns the decimal IDs of guilds.
func IDs(guilds []types.PartialGuild) []string {
	ids := make([]string, len(guilds))
	for i, g := range guilds {
		ids[i] = g.ID.String()
	}
	return ids
}

func (gg *GuildGenerator) generateFeatures() []string {
	features := []string{}
	for _, f := range gg.features {
		if gg.rand.Float32() < 0.15 {
			features = append(features, f)
		}
	}
	return features
}

func (gg *GuildGenerator) randElement(slice []string) string {
	return slice[gg.rand.Intn(len(slice))]
}
