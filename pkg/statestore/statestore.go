// Package statestore holds the bounded caches of outstanding OAuth2 "state"
// values. A state is added when an authorization link is generated and
// consumed when the redirect comes back; once more than Capacity states are
// outstanding the oldest ones are dropped.
//
// Each state carries the redirect URI of the link it was issued for, since
// the code exchange must repeat that exact URI.
package statestore

import (
	"context"
	"strings"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
)

// DefaultCapacity is the number of outstanding states kept when no capacity is given.
const DefaultCapacity = 100

// Store is a bounded, insertion-ordered set of states. Implementations must be
// safe for concurrent use.
type Store interface {
	// Add records state and the redirect URI it was issued for, evicting the
	// oldest entry when the store is full.
	Add(ctx context.Context, state, redirectURI string) error
	// Consume removes state and returns its redirect URI. ok reports whether
	// the state was present; only one concurrent caller sees ok.
	Consume(ctx context.Context, state string) (redirectURI string, ok bool, err error)
	// Contains reports whether state is present without removing it.
	Contains(ctx context.Context, state string) (bool, error)
	// Len returns the number of outstanding states.
	Len(ctx context.Context) (int, error)
}

func checkState(state string) error {
	if state == "" {
		return &pkgerrs.ConfigError{Field: "state", Message: "state cannot be empty"}
	}
	if strings.ContainsAny(state, entrySep) {
		return &pkgerrs.ConfigError{Field: "state", Message: "state cannot contain a newline"}
	}
	return nil
}
