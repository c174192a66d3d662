package test_utils

import (
	"fmt"

	discordauth "github.com/jamesprial/go-discord-oauth2"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// CompareUser checks that a hydrated user carries the fields of its payload.
func CompareUser(expected types.User, actual *discordauth.User) error {
	if actual == nil {
		return fmt.Errorf("user is nil")
	}

	checks := []struct {
		field         string
		expected, got any
	}{
		{"id", deref(expected.ID), actual.ID},
		{"username", deref(expected.Username), actual.Username},
		{"discriminator", deref(expected.Discriminator), actual.Discriminator},
		{"global_name", deref(expected.GlobalName), actual.GlobalName},
		{"locale", deref(expected.Locale), actual.Locale},
		{"email", deref(expected.Email), actual.Email},
		{"verified", expected.Verified, actual.Verified},
		{"mfa_enabled", expected.MFAEnabled, actual.MFAEnabled},
		{"public_flags", expected.PublicFlags, actual.PublicFlags},
	}
	for _, c := range checks {
		if c.expected != c.got {
			return fmt.Errorf("field %s mismatch: expected %v, got %v", c.field, c.expected, c.got)
		}
	}

	if err := compareHash("avatar", expected.Avatar, actual.Avatar()); err != nil {
		return err
	}
	return compareHash("banner", expected.Banner, actual.Banner())
}

// CompareGuilds checks that hydrated guilds match their payloads in order.
func CompareGuilds(expected []types.PartialGuild, actual []*discordauth.PartialGuild) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("guild count mismatch: expected %d, got %d", len(expected), len(actual))
	}

	for i := range expected {
		e, a := expected[i], actual[i]
		switch {
		case deref(e.ID) != a.ID:
			return fmt.Errorf("guild %d: ID mismatch: expected %s, got %s", i, deref(e.ID), a.ID)
		case deref(e.Name) != a.Name:
			return fmt.Errorf("guild %d: name mismatch: expected %q, got %q", i, deref(e.Name), a.Name)
		case e.Owner != a.Owner:
			return fmt.Errorf("guild %d: owner mismatch: expected %v, got %v", i, e.Owner, a.Owner)
		case int64(e.Permissions) != a.Permissions:
			return fmt.Errorf("guild %d: permissions mismatch: expected %d, got %d", i, e.Permissions, a.Permissions)
		}
		if err := CompareStringLists(e.Features, a.Features); err != nil {
			return fmt.Errorf("guild %d: features: %v", i, err)
		}
		if err := compareHash("icon", e.Icon, a.Icon()); err != nil {
			return fmt.Errorf("guild %d: %v", i, err)
		}
		if err := compareCount("approximate_member_count", e.ApproximateMemberCount, a.ApproximateMemberCount); err != nil {
			return fmt.Errorf("guild %d: %v", i, err)
		}
	}
	return nil
}

// CompareStringLists compares two string slices element by element
func CompareStringLists(expected, actual []string) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("length mismatch: expected %d, got %d", len(expected), len(actual))
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return fmt.Errorf("element %d mismatch: expected %q, got %q", i, expected[i], actual[i])
		}
	}
	return nil
}

func compareHash(field string, expected *string, actual *discordauth.Asset) error {
	switch {
	case expected == nil && actual != nil:
		return fmt.Errorf("field %s: expected no asset, got %s", field, actual.URL)
	case expected != nil && actual == nil:
		return fmt.Errorf("field %s: expected hash %s, got no asset", field, *expected)
	case expected != nil && actual.Key != *expected:
		return fmt.Errorf("field %s: expected hash %s, got %s", field, *expected, actual.Key)
	}
	return nil
}

func compareCount(field string, expected, actual *int) error {
	if (expected == nil) != (actual == nil) {
		return fmt.Errorf("field %s: presence mismatch", field)
	}
	if expected != nil && *expected != *actual {
		return fmt.Errorf("field %s: expected %d, got %d", field, *expected, *actual)
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
