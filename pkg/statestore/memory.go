package statestore

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
)

// Memory keeps states in process memory.
//
// The underlying LRU is only ever written with Add and read with Peek,
// Contains and Remove, none of which refresh recency, so eviction follows
// insertion order.
type Memory struct {
	mu       sync.Mutex
	cache    *lru.Cache[string, string]
	capacity int
}

// NewMemory returns an in-memory store holding at most capacity states.
// A capacity below one selects DefaultCapacity.
func NewMemory(capacity int) (*Memory, error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "StateCapacity", Message: err.Error()}
	}
	return &Memory{cache: cache, capacity: capacity}, nil
}

// Capacity returns the maximum number of outstanding states.
func (m *Memory) Capacity() int {
	return m.capacity
}

func (m *Memory) Add(_ context.Context, state, redirectURI string) error {
	if err := checkState(state); err != nil {
		return err
	}
	m.cache.Add(state, redirectURI)
	return nil
}

func (m *Memory) Consume(_ context.Context, state string) (string, bool, error) {
	// Peek and Remove together, so only one caller gets the redirect URI.
	m.mu.Lock()
	defer m.mu.Unlock()

	redirectURI, ok := m.cache.Peek(state)
	if !ok {
		return "", false, nil
	}
	m.cache.Remove(state)
	return redirectURI, true, nil
}

func (m *Memory) Contains(_ context.Context, state string) (bool, error) {
	return m.cache.Contains(state), nil
}

func (m *Memory) Len(_ context.Context) (int, error) {
	return m.cache.Len(), nil
}
