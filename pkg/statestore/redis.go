package statestore

import (
	"context"
	"strings"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list key used when RedisOptions.Key is empty.
const DefaultRedisKey = "discordauth:states"

// entrySep separates a state from its redirect URI in a list entry.
const entrySep = "\n"

// RedisOptions configures a Redis-backed store.
type RedisOptions struct {
	// Key is the Redis list holding the states, newest first.
	Key string
	// Capacity bounds the list length. Defaults to DefaultCapacity.
	Capacity int
}

// Redis keeps states in a capped Redis list so several processes serving the
// same redirect URI share one cache. Entries are "state\nredirectURI".
type Redis struct {
	client   redis.UniversalClient
	key      string
	capacity int
}

// NewRedis returns a store on top of an existing client. The client is not
// closed by the store.
func NewRedis(client redis.UniversalClient, opts RedisOptions) (*Redis, error) {
	if client == nil {
		return nil, &pkgerrs.ConfigError{Field: "StateStore", Message: "redis client cannot be nil"}
	}
	key := opts.Key
	if key == "" {
		key = DefaultRedisKey
	}
	capacity := opts.Capacity
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Redis{client: client, key: key, capacity: capacity}, nil
}

func (r *Redis) Add(ctx context.Context, state, redirectURI string) error {
	if err := checkState(state); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, state+entrySep+redirectURI)
		pipe.LTrim(ctx, r.key, 0, int64(r.capacity-1))
		return nil
	})
	if err != nil {
		return &pkgerrs.StateError{Operation: "statestore.Add", Message: "redis pipeline failed", Err: err}
	}
	return nil
}

// Consume finds the entry for state and removes it with LREM. LREM is atomic,
// so when several processes race only one of them removes the entry.
func (r *Redis) Consume(ctx context.Context, state string) (string, bool, error) {
	entry, found, err := r.find(ctx, "statestore.Consume", state)
	if err != nil || !found {
		return "", false, err
	}

	removed, err := r.client.LRem(ctx, r.key, 1, entry).Result()
	if err != nil {
		return "", false, &pkgerrs.StateError{Operation: "statestore.Consume", Message: "redis LREM failed", Err: err}
	}
	if removed == 0 {
		return "", false, nil
	}
	_, redirectURI, _ := strings.Cut(entry, entrySep)
	return redirectURI, true, nil
}

func (r *Redis) Contains(ctx context.Context, state string) (bool, error) {
	_, found, err := r.find(ctx, "statestore.Contains", state)
	return found, err
}

func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, &pkgerrs.StateError{Operation: "statestore.Len", Message: "redis LLEN failed", Err: err}
	}
	return int(n), nil
}

// find returns the raw list entry recorded for state.
func (r *Redis) find(ctx context.Context, op, state string) (string, bool, error) {
	entries, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return "", false, &pkgerrs.StateError{Operation: op, Message: "redis LRANGE failed", Err: err}
	}
	prefix := state + entrySep
	for _, e := range entries {
		if strings.HasPrefix(e, prefix) {
			return e, true, nil
		}
	}
	return "", false, nil
}
