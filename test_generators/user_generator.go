// Package test_generators builds realistic Discord payloads for tests.
package test_generators

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// UserGenerator generates realistic Discord users for testing
type UserGenerator struct {
	rand      *rand.Rand
	now       time.Time
	adjective []string
	nouns     []string
	locales   []string
}

// NewUserGenerator creates a new user generator
func NewUserGenerator(seed int64) *UserGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &UserGenerator{
		rand: rand.New(rand.NewSource(seed)),
		now:  time.Now(),
		adjective: []string{
			"quiet", "sleepy", "brave", "lucky", "cosmic",
			"pixel", "frosty", "rusty", "golden", "neon",
		},
		nouns: []string{
			"otter", "wizard", "falcon", "badger", "comet",
			"panda", "ranger", "koala", "raven", "tiger",
		},
		locales: []string{"en-US", "en-GB", "de", "fr", "pt-BR", "ja", "ko", "es-ES"},
	}
}

// UserOptions controls the optional fields of generated users
type UserOptions struct {
	// LegacyDiscriminator generates a four digit tag instead of "0"
	LegacyDiscriminator bool
	// AnimatedAvatar generates an a_ prefixed avatar hash
	AnimatedAvatar bool
	// WithEmail sets verified and email, as granted by the email scope
	WithEmail bool
}

// GenerateUser creates a realistic user
func (ug *UserGenerator) GenerateUser() types.User {
	return ug.GenerateUserWithOptions(UserOptions{
		LegacyDiscriminator: ug.rand.Float32() < 0.2, // 20% chance
		AnimatedAvatar:      ug.rand.Float32() < 0.1, // 10% chance
		WithEmail:           ug.rand.Float32() < 0.5, // 50% chance
	})
}

// GenerateUserWithOptions creates a user with the given options
func (ug *UserGenerator) GenerateUserWithOptions(opts UserOptions) types.User {
	id := ug.Snowflake()
	username := ug.generateUsername()
	discriminator := "0"
	if opts.LegacyDiscriminator {
		discriminator = fmt.Sprintf("%04d", 1+ug.rand.Intn(9999))
	}
	locale := ug.randElement(ug.locales)

	user := types.User{
		ID:            &id,
		Username:      &username,
		Discriminator: &discriminator,
		Locale:        &locale,
		MFAEnabled:    ug.rand.Float32() < 0.3,
		PublicFlags:   ug.rand.Intn(1 << 8),
	}

	if ug.rand.Float32() < 0.7 { // 70% chance
		globalName := ug.generateGlobalName()
		user.GlobalName = &globalName
	}
	if ug.rand.Float32() < 0.8 || opts.AnimatedAvatar {
		avatar := ug.AssetHash(opts.AnimatedAvatar)
		user.Avatar = &avatar
	}
	if ug.rand.Float32() < 0.1 {
		banner := ug.AssetHash(false)
		user.Banner = &banner
		color := ug.rand.Intn(0xFFFFFF + 1)
		user.AccentColor = &color
	}
	if opts.WithEmail {
		email := fmt.Sprintf("%s@example.com", username)
		user.Email = &email
		user.Verified = true
	}

	return user
}

// GenerateUsers creates multiple users
func (ug *UserGenerator) GenerateUsers(count int) []types.User {
	users := make([]types.User, count)
	for i := range users {
		users[i] = ug.GenerateUser()
	}
	return users
}

// Snowflake creates an ID minted at a random time between the Discord epoch
// and the generator's creation.
func (ug *UserGenerator) Snowflake() types.Snowflake {
	return randomSnowflake(ug.rand, ug.now)
}

// AssetHash creates a CDN asset hash
func (ug *UserGenerator) AssetHash(animated bool) string {
	return randomHash(ug.rand, animated)
}

func (ug *UserGenerator) generateUsername() string {
	name := ug.randElement(ug.adjective) + "_" + ug.randElement(ug.nouns)
	if ug.rand.Float32() < 0.5 {
		name += fmt.Sprintf("%d", ug.rand.Intn(1000))
	}
	return name
}

func (ug *UserGenerator) generateGlobalName() string {
	adj := ug.randElement(ug.adjective)
	noun := ug.randElement(ug.nouns)
	return fmt.Sprintf("%c%s %c%s", adj[0]-32, adj[1:], noun[0]-32, noun[1:])
}

func (ug *UserGenerator) randElement(slice []string) string {
	return slice[ug.rand.Intn(len(slice))]
}

func randomSnowflake(r *rand.Rand, now time.Time) types.Snowflake {
	span := now.UnixMilli() - types.DiscordEpoch
	ms := r.Int63n(span)
	worker := uint64(r.Intn(1 << 10))
	seq := uint64(r.Intn(1 << 12))
	return types.Snowflake(uint64(ms)<<22 | worker<<12 | seq)
}

func randomHash(r *rand.Rand, animated bool) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = hexDigits[r.Intn(len(hexDigits))]
	}
	if animated {
		return "a_" + string(buf)
	}
	return string(buf)
}
