package test_utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	discordauth "github.com/jamesprial/go-discord-oauth2"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
	"github.com/jamesprial/go-discord-oauth2/pkg/validation"
)

// discordEpoch is the earliest creation time of any Discord object.
var discordEpoch = time.UnixMilli(types.DiscordEpoch)

// AssertValidSnowflake validates that an ID is set and was minted in the past
func AssertValidSnowflake(id types.Snowflake) error {
	return validation.ValidateSnowflakeTime(id, time.Now())
}

// AssertValidUser validates that a hydrated user has all required fields and valid data
func AssertValidUser(u *discordauth.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	if err := AssertValidSnowflake(u.ID); err != nil {
		return fmt.Errorf("user ID is invalid: %v", err)
	}
	if err := AssertStringLength(u.Username, "username", 2, 32); err != nil {
		return err
	}
	if !validation.IsValidDiscriminator(u.Discriminator) {
		return fmt.Errorf("discriminator has invalid format: %q", u.Discriminator)
	}
	if u.Locale != "" && !validation.IsValidLocale(u.Locale) {
		return fmt.Errorf("locale has invalid format: %q", u.Locale)
	}
	if err := AssertTimeRange(u.CreatedAt(), discordEpoch, time.Now()); err != nil {
		return fmt.Errorf("user creation time: %v", err)
	}
	if u.DisplayName() == "" {
		return fmt.Errorf("display name is empty")
	}
	if u.DisplayAvatar() == nil {
		return fmt.Errorf("display avatar is nil")
	}
	return nil
}

// AssertValidGuild validates that a guild list entry has valid data
func AssertValidGuild(g *discordauth.PartialGuild) error {
	if g == nil {
		return fmt.Errorf("guild is nil")
	}
	if err := AssertValidSnowflake(g.ID); err != nil {
		return fmt.Errorf("guild ID is invalid: %v", err)
	}
	if err := AssertStringNotEmpty(g.Name, "name"); err != nil {
		return err
	}
	if g.Permissions < 0 {
		return fmt.Errorf("permissions cannot be negative: %d", g.Permissions)
	}
	if icon := g.Icon(); icon != nil {
		if err := AssertAsset(icon, "icons/"+g.ID.String()); err != nil {
			return err
		}
	}
	return nil
}

// AssertGuildListValid validates every guild and their ascending ID order
func AssertGuildListValid(guilds []*discordauth.PartialGuild) error {
	for i, g := range guilds {
		if err := AssertValidGuild(g); err != nil {
			return fmt.Errorf("guild at index %d is invalid: %v", i, err)
		}
		if i > 0 && g.ID <= guilds[i-1].ID {
			return fmt.Errorf("guild at index %d is out of order: %s after %s", i, g.ID, guilds[i-1].ID)
		}
	}
	return nil
}

// AssertValidSession validates the token state of a live session
func AssertValidSession(s *discordauth.Session) error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	if s.IsRevoked() {
		return fmt.Errorf("session is revoked")
	}
	if err := AssertStringNotEmpty(s.AccessToken(), "access token"); err != nil {
		return err
	}
	if !strings.EqualFold(s.TokenType(), "Bearer") {
		return fmt.Errorf("token type must be Bearer, got %q", s.TokenType())
	}
	if !validation.IsValidScopeList(s.Scope()) {
		return fmt.Errorf("scope has invalid format: %q", s.Scope())
	}
	return nil
}

// AssertAsset validates that an asset URL is a sized CDN URL under path
func AssertAsset(a *discordauth.Asset, path string) error {
	if a == nil {
		return fmt.Errorf("asset is nil")
	}
	if !strings.Contains(a.URL, "/"+path+"/") {
		return fmt.Errorf("asset URL %q is not under %s", a.URL, path)
	}
	if !validation.IsValidAssetHash(a.Key) {
		return fmt.Errorf("asset key has invalid hash: %q", a.Key)
	}
	ext := ".png"
	if a.Animated {
		ext = ".gif"
	}
	if !strings.Contains(a.URL, a.Key+ext+"?size=") {
		return fmt.Errorf("asset URL %q does not end in %s%s with a size", a.URL, a.Key, ext)
	}
	return nil
}

// AssertTimeRange validates that a time is within expected range
func AssertTimeRange(t, min, max time.Time) error {
	if t.Before(min) {
		return fmt.Errorf("time %v is before minimum %v", t, min)
	}
	if t.After(max) {
		return fmt.Errorf("time %v is after maximum %v", t, max)
	}
	return nil
}

// AssertStringNotEmpty validates that a string is not empty
func AssertStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("field %s is empty", fieldName)
	}
	return nil
}

// AssertStringLength validates that a string's character count is within range
func AssertStringLength(s, fieldName string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min {
		return fmt.Errorf("field %s is too short: %d characters (minimum %d)", fieldName, n, min)
	}
	if n > max {
		return fmt.Errorf("field %s is too long: %d characters (maximum %d)", fieldName, n, max)
	}
	return nil
}

// AssertErrorType validates that an error is, or wraps, the named error type
// of package errors, e.g. "ConfigError".
func AssertErrorType(err error, expectedType string) error {
	if err == nil {
		return fmt.Errorf("expected error of type %s, got nil", expectedType)
	}

	var matched bool
	switch expectedType {
	case "ConfigError":
		var target *pkgerrs.ConfigError
		matched = errors.As(err, &target)
	case "AuthStateError":
		var target *pkgerrs.AuthStateError
		matched = errors.As(err, &target)
	case "StateError":
		var target *pkgerrs.StateError
		matched = errors.As(err, &target)
	case "RequestError":
		var target *pkgerrs.RequestError
		matched = errors.As(err, &target)
	case "ParseError":
		var target *pkgerrs.ParseError
		matched = errors.As(err, &target)
	case "APIError":
		var target *pkgerrs.APIError
		matched = errors.As(err, &target)
	default:
		return fmt.Errorf("unknown error type %s", expectedType)
	}

	if !matched {
		return fmt.Errorf("expected error type %s, got %s: %v", expectedType, reflect.TypeOf(err), err)
	}
	return nil
}

// AssertErrorMessage validates that an error message contains expected text
func AssertErrorMessage(err error, expectedMessage string) error {
	if err == nil {
		return fmt.Errorf("expected error containing message '%s', got nil", expectedMessage)
	}

	if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(expectedMessage)) {
		return fmt.Errorf("expected error message containing '%s', got '%s'", expectedMessage, err.Error())
	}

	return nil
}
