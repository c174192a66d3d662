package discordauth

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jamesprial/go-discord-oauth2/internal"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// DefaultCDNURL is the root of Discord's media CDN.
const DefaultCDNURL = "https://cdn.discordapp.com"

// assetSize is the size query parameter appended to hashed assets.
const assetSize = 1024

// Asset is an image hosted on the Discord CDN.
type Asset struct {
	// URL is the absolute CDN URL.
	URL string
	// Key is the content hash, or the index for default avatars.
	Key string
	// Animated is true for hashes with the "a_" prefix.
	Animated bool

	http *internal.Client
}

// Read downloads the asset.
func (a *Asset) Read(ctx context.Context) ([]byte, error) {
	return a.http.GetFromCDN(ctx, a.URL)
}

// Save downloads the asset into w and returns the number of bytes written.
func (a *Asset) Save(ctx context.Context, w io.Writer) (int, error) {
	data, err := a.Read(ctx)
	if err != nil {
		return 0, err
	}
	return w.Write(data)
}

// SaveFile downloads the asset into the file at path, creating or truncating it.
func (a *Asset) SaveFile(ctx context.Context, path string) (int, error) {
	data, err := a.Read(ctx)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write asset to %s: %w", path, err)
	}
	return len(data), nil
}

func (a *Asset) String() string {
	return a.URL
}

// assetBuilder builds asset URLs against one CDN root.
type assetBuilder struct {
	base string
	http *internal.Client
}

func (b assetBuilder) hashed(path string, hash string, allowAnimated bool) *Asset {
	animated := allowAnimated && strings.HasPrefix(hash, "a_")
	ext := "png"
	if animated {
		ext = "gif"
	}
	return &Asset{
		URL:      fmt.Sprintf("%s/%s/%s.%s?size=%d", b.base, path, hash, ext, assetSize),
		Key:      hash,
		Animated: animated,
		http:     b.http,
	}
}

func (b assetBuilder) defaultAvatar(index int) *Asset {
	return &Asset{
		URL:  fmt.Sprintf("%s/embed/avatars/%d.png", b.base, index),
		Key:  fmt.Sprint(index),
		http: b.http,
	}
}

func (b assetBuilder) avatar(userID types.Snowflake, hash string) *Asset {
	return b.hashed("avatars/"+userID.String(), hash, true)
}

func (b assetBuilder) guildMemberAvatar(guildID, userID types.Snowflake, hash string) *Asset {
	return b.hashed(fmt.Sprintf("guilds/%s/users/%s/avatars", guildID, userID), hash, true)
}

func (b assetBuilder) banner(id types.Snowflake, hash string) *Asset {
	return b.hashed("banners/"+id.String(), hash, true)
}

func (b assetBuilder) guildIcon(guildID types.Snowflake, hash string) *Asset {
	return b.hashed("icons/"+guildID.String(), hash, true)
}

// icon builds app-icons and team-icons URLs.
func (b assetBuilder) icon(kind string, id types.Snowflake, hash string) *Asset {
	return b.hashed(kind+"-icons/"+id.String(), hash, false)
}

func (b assetBuilder) coverImage(appID types.Snowflake, hash string) *Asset {
	return b.hashed("app-assets/"+appID.String()+"/store", hash, false)
}

// avatarDecoration uses the preset path of avatar_decoration_data.asset.
func (b assetBuilder) avatarDecoration(asset string) *Asset {
	return b.hashed("avatar-decoration-presets", asset, false)
}

// requireField returns a ParseError when a required payload field is nil.
func requireField(operation, field string, present bool) error {
	if present {
		return nil
	}
	return &pkgerrs.ParseError{Operation: operation, Field: field, Message: "required field is missing"}
}
