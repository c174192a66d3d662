package internal

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

const (
	// Guild list pagination constraints
	minGuildsLimit = 1
	maxGuildsLimit = 200

	// Username constraints
	minUsernameLength = 2
	maxUsernameLength = 32

	// Nickname constraints
	maxNickLength = 32

	// Group DM constraints
	maxGroupDMRecipients = 10

	// Role connection constraints
	maxPlatformNameLength = 50
	maxMetadataEntries    = 5
)

// Validator checks call arguments before any request is made.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSnowflake rejects the zero ID.
func (v *Validator) ValidateSnowflake(field string, id types.Snowflake) error {
	if id == 0 {
		return &pkgerrs.ConfigError{Field: field, Message: "ID cannot be zero"}
	}
	return nil
}

// ValidateRedirectURI checks that uri is an absolute URL with a scheme and host.
func (v *Validator) ValidateRedirectURI(uri string) error {
	if uri == "" {
		return &pkgerrs.ConfigError{Field: "RedirectURI", Message: "redirect URI cannot be empty"}
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return &pkgerrs.ConfigError{Field: "RedirectURI", Message: fmt.Sprintf("invalid redirect URI: %v", err)}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return &pkgerrs.ConfigError{Field: "RedirectURI", Message: "redirect URI must be absolute"}
	}
	if parsed.Fragment != "" {
		return &pkgerrs.ConfigError{Field: "RedirectURI", Message: "redirect URI cannot contain a fragment"}
	}
	return nil
}

// ValidateGuildsLimit checks the page size of the guild list.
func (v *Validator) ValidateGuildsLimit(limit int) error {
	if limit < minGuildsLimit || limit > maxGuildsLimit {
		return &pkgerrs.ConfigError{Field: "limit", Message: fmt.Sprintf("limit must be between %d and %d", minGuildsLimit, maxGuildsLimit)}
	}
	return nil
}

// ValidateUsername checks a new username for the current user.
func (v *Validator) ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return &pkgerrs.ConfigError{Field: "username", Message: fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)}
	}
	if strings.TrimSpace(username) != username {
		return &pkgerrs.ConfigError{Field: "username", Message: "username cannot start or end with whitespace"}
	}
	return nil
}

// ValidateNick checks a nickname.
func (v *Validator) ValidateNick(nick string) error {
	if utf8.RuneCountInString(nick) > maxNickLength {
		return &pkgerrs.ConfigError{Field: "nick", Message: fmt.Sprintf("nick cannot exceed %d characters", maxNickLength)}
	}
	return nil
}

// ValidateAccessTokens checks the token list of a new group DM.
func (v *Validator) ValidateAccessTokens(tokens []string) error {
	if len(tokens) == 0 {
		return &pkgerrs.ConfigError{Field: "access_tokens", Message: "at least one access token is required"}
	}
	if len(tokens) > maxGroupDMRecipients {
		return &pkgerrs.ConfigError{Field: "access_tokens", Message: fmt.Sprintf("a group DM cannot have more than %d recipients", maxGroupDMRecipients)}
	}
	for i, tok := range tokens {
		if tok == "" {
			return &pkgerrs.ConfigError{Field: "access_tokens", Message: fmt.Sprintf("access token at index %d is empty", i)}
		}
	}
	return nil
}

// ValidateRoleConnection checks an application role connection update.
func (v *Validator) ValidateRoleConnection(platformName, platformUsername *string, metadata map[string]string) error {
	if platformName != nil && utf8.RuneCountInString(*platformName) > maxPlatformNameLength {
		return &pkgerrs.ConfigError{Field: "platform_name", Message: fmt.Sprintf("platform name cannot exceed %d characters", maxPlatformNameLength)}
	}
	if platformUsername != nil && utf8.RuneCountInString(*platformUsername) > maxPlatformNameLength {
		return &pkgerrs.ConfigError{Field: "platform_username", Message: fmt.Sprintf("platform username cannot exceed %d characters", maxPlatformNameLength)}
	}
	if len(metadata) > maxMetadataEntries {
		return &pkgerrs.ConfigError{Field: "metadata", Message: fmt.Sprintf("metadata cannot have more than %d entries", maxMetadataEntries)}
	}
	return nil
}
