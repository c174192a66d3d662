// Package validation checks the format of Discord payload values, e.g. for
// servers that fake the Discord API or for auditing decoded responses.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// Regular expressions for validating Discord data formats
var (
	// snowflakeRegex matches decimal snowflake strings without leading zeros
	snowflakeRegex = regexp.MustCompile(`^(0|[1-9][0-9]{0,19})$`)

	// assetHashRegex matches CDN asset hashes; animated assets carry an a_ prefix
	assetHashRegex = regexp.MustCompile(`^(a_)?[0-9a-f]{32}$`)

	// discriminatorRegex matches the legacy four digit tag, or "0" for migrated users
	discriminatorRegex = regexp.MustCompile(`^(0|[0-9]{4})$`)

	// localeRegex matches the locales Discord reports, e.g. "en-US" or "fr"
	localeRegex = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

	// scopeNameRegex matches OAuth2 scope names, e.g. "applications.commands.permissions.update"
	scopeNameRegex = regexp.MustCompile(`^[a-z_]+(\.[a-z_]+)*$`)
)

// IsValidSnowflake checks if a string is a decimal snowflake that fits in 64 bits
func IsValidSnowflake(s string) bool {
	if !snowflakeRegex.MatchString(s) {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

// IsValidAssetHash checks if a string is a CDN asset hash
func IsValidAssetHash(s string) bool {
	return assetHashRegex.MatchString(s)
}

// IsValidDiscriminator checks if a string is a user discriminator
func IsValidDiscriminator(s string) bool {
	return discriminatorRegex.MatchString(s)
}

// IsValidLocale checks if a string is a locale tag
func IsValidLocale(s string) bool {
	return localeRegex.MatchString(s)
}

// IsValidScopeList checks a space separated scope list. The empty list is valid.
func IsValidScopeList(s string) bool {
	if s == "" {
		return true
	}
	for _, name := range strings.Split(s, " ") {
		if !scopeNameRegex.MatchString(name) {
			return false
		}
	}
	return true
}

// ValidateSnowflakeTime checks that a snowflake was minted after the Discord
// epoch and not after now.
func ValidateSnowflakeTime(id types.Snowflake, now time.Time) error {
	if id == 0 {
		return fmt.Errorf("snowflake is zero")
	}
	created := id.CreatedAt()
	if created.After(now) {
		return fmt.Errorf("snowflake %s is from the future (%s)", id, created.Format(time.RFC3339))
	}
	return nil
}

// ValidateAccessTokenResponse validates a token endpoint response
func ValidateAccessTokenResponse(r *types.AccessTokenResponse) error {
	if r == nil {
		return fmt.Errorf("token response is nil")
	}

	var errs []error

	if r.AccessToken == nil || *r.AccessToken == "" {
		errs = append(errs, fmt.Errorf("access_token is required"))
	}
	if r.TokenType == nil {
		errs = append(errs, fmt.Errorf("token_type is required"))
	} else if !strings.EqualFold(*r.TokenType, "Bearer") {
		errs = append(errs, fmt.Errorf("token_type must be Bearer, got %q", *r.TokenType))
	}
	if r.ExpiresIn == nil {
		errs = append(errs, fmt.Errorf("expires_in is required"))
	} else if *r.ExpiresIn < 0 {
		errs = append(errs, fmt.Errorf("expires_in cannot be negative, got %d", *r.ExpiresIn))
	}
	if r.Scope == nil {
		errs = append(errs, fmt.Errorf("scope is required"))
	} else if !IsValidScopeList(*r.Scope) {
		errs = append(errs, fmt.Errorf("scope has invalid format: %q", *r.Scope))
	}
	if r.RefreshToken != nil && *r.RefreshToken == "" {
		errs = append(errs, fmt.Errorf("refresh_token cannot be empty when present"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("token response validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateUser validates a user object
func ValidateUser(u *types.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	var errs []error

	if u.ID == nil || *u.ID == 0 {
		errs = append(errs, fmt.Errorf("id is required"))
	}

	if u.Username == nil {
		errs = append(errs, fmt.Errorf("username is required"))
	} else if n := len([]rune(*u.Username)); n < 2 || n > 32 {
		errs = append(errs, fmt.Errorf("username must be 2 to 32 characters, got %d", n))
	}

	if u.Discriminator == nil {
		errs = append(errs, fmt.Errorf("discriminator is required"))
	} else if !IsValidDiscriminator(*u.Discriminator) {
		errs = append(errs, fmt.Errorf("discriminator has invalid format: %q", *u.Discriminator))
	}

	// Hashes are optional but must be well formed when present
	for field, hash := range map[string]*string{"avatar": u.Avatar, "banner": u.Banner} {
		if hash != nil && !IsValidAssetHash(*hash) {
			errs = append(errs, fmt.Errorf("%s has invalid hash: %q", field, *hash))
		}
	}

	if u.Locale != nil && !IsValidLocale(*u.Locale) {
		errs = append(errs, fmt.Errorf("locale has invalid format: %q", *u.Locale))
	}
	if u.AccentColor != nil && (*u.AccentColor < 0 || *u.AccentColor > 0xFFFFFF) {
		errs = append(errs, fmt.Errorf("accent_color out of range: %d", *u.AccentColor))
	}

	if len(errs) > 0 {
		return fmt.Errorf("user validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// ValidatePartialGuild validates a guild from the current user's guild list
func ValidatePartialGuild(g *types.PartialGuild) error {
	if g == nil {
		return fmt.Errorf("guild is nil")
	}

	var errs []error

	if g.ID == nil || *g.ID == 0 {
		errs = append(errs, fmt.Errorf("id is required"))
	}
	if g.Name == nil || strings.TrimSpace(*g.Name) == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	} else if n := len([]rune(*g.Name)); n > 100 {
		errs = append(errs, fmt.Errorf("name cannot exceed 100 characters, got %d", n))
	}
	if g.Icon != nil && !IsValidAssetHash(*g.Icon) {
		errs = append(errs, fmt.Errorf("icon has invalid hash: %q", *g.Icon))
	}
	if g.Permissions < 0 {
		errs = append(errs, fmt.Errorf("permissions cannot be negative"))
	}
	if g.ApproximatePresenceCount != nil && g.ApproximateMemberCount != nil &&
		*g.ApproximatePresenceCount > *g.ApproximateMemberCount {
		errs = append(errs, fmt.Errorf("presence count %d exceeds member count %d",
			*g.ApproximatePresenceCount, *g.ApproximateMemberCount))
	}

	if len(errs) > 0 {
		return fmt.Errorf("guild validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateGuildPage checks a page of the guild list: every guild valid and
// IDs strictly ascending.
func ValidateGuildPage(page []types.PartialGuild) error {
	var prev types.Snowflake
	for i := range page {
		if err := ValidatePartialGuild(&page[i]); err != nil {
			return fmt.Errorf("guild %d: %w", i, err)
		}
		id := *page[i].ID
		if i > 0 && id <= prev {
			return fmt.Errorf("guild %d: ID %s is not after %s", i, id, prev)
		}
		prev = id
	}
	return nil
}
