package statestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, capacity int) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	store, err := NewRedis(rdb, RedisOptions{Capacity: capacity})
	if err != nil {
		t.Fatalf("NewRedis returned error: %v", err)
	}
	return store, mr
}

func stores(t *testing.T, capacity int) map[string]Store {
	t.Helper()
	mem, err := NewMemory(capacity)
	if err != nil {
		t.Fatalf("NewMemory returned error: %v", err)
	}
	rs, _ := newRedisStore(t, capacity)
	return map[string]Store{"memory": mem, "redis": rs}
}

func TestStore_AddConsume(t *testing.T) {
	for name, store := range stores(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := store.Add(ctx, "abc", "https://example.com/cb"); err != nil {
				t.Fatalf("Add returned error: %v", err)
			}
			if ok, _ := store.Contains(ctx, "abc"); !ok {
				t.Fatal("expected state to be present after Add")
			}

			redirectURI, ok, err := store.Consume(ctx, "abc")
			if err != nil {
				t.Fatalf("Consume returned error: %v", err)
			}
			if !ok {
				t.Fatal("expected first Consume to succeed")
			}
			if redirectURI != "https://example.com/cb" {
				t.Errorf("redirect URI = %q, want the one recorded with the state", redirectURI)
			}

			_, ok, _ = store.Consume(ctx, "abc")
			if ok {
				t.Error("a state must only be consumable once")
			}
			if _, ok, _ := store.Consume(ctx, "never-added"); ok {
				t.Error("unknown state must not be consumable")
			}
		})
	}
}

func TestStore_EvictsOldestFirst(t *testing.T) {
	for name, store := range stores(t, 3) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := 0; i < 5; i++ {
				if err := store.Add(ctx, fmt.Sprintf("s%d", i), ""); err != nil {
					t.Fatalf("Add returned error: %v", err)
				}
				// Lookups must not change eviction order.
				_, _ = store.Contains(ctx, "s0")
			}

			n, err := store.Len(ctx)
			if err != nil {
				t.Fatalf("Len returned error: %v", err)
			}
			if n != 3 {
				t.Fatalf("Len = %d, want 3", n)
			}

			for _, evicted := range []string{"s0", "s1"} {
				if ok, _ := store.Contains(ctx, evicted); ok {
					t.Errorf("expected %s to be evicted", evicted)
				}
			}
			for _, kept := range []string{"s2", "s3", "s4"} {
				if ok, _ := store.Contains(ctx, kept); !ok {
					t.Errorf("expected %s to be kept", kept)
				}
			}
		})
	}
}

func TestStore_RedirectURIPerState(t *testing.T) {
	for name, store := range stores(t, 10) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			uris := map[string]string{
				"a":      "https://example.com/cb",
				"b":      "https://other.example.com/cb",
				"prefix": "",
				"pre":    "https://example.com/short",
			}
			for state, uri := range uris {
				if err := store.Add(ctx, state, uri); err != nil {
					t.Fatalf("Add(%q) returned error: %v", state, err)
				}
			}
			for state, want := range uris {
				got, ok, err := store.Consume(ctx, state)
				if err != nil || !ok {
					t.Fatalf("Consume(%q) = %v, %v", state, ok, err)
				}
				if got != want {
					t.Errorf("Consume(%q) redirect URI = %q, want %q", state, got, want)
				}
			}
		})
	}
}

func TestStore_RejectsInvalidStates(t *testing.T) {
	for name, store := range stores(t, 10) {
		t.Run(name, func(t *testing.T) {
			for _, state := range []string{"", "a\nb"} {
				err := store.Add(context.Background(), state, "")
				var cfgErr *pkgerrs.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("Add(%q): expected ConfigError, got %v", state, err)
				}
			}
		})
	}
}

func TestMemory_DefaultCapacity(t *testing.T) {
	m, err := NewMemory(0)
	if err != nil {
		t.Fatalf("NewMemory returned error: %v", err)
	}
	if m.Capacity() != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", m.Capacity(), DefaultCapacity)
	}
}

func TestMemory_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	m, _ := NewMemory(10)
	ctx := context.Background()
	_ = m.Add(ctx, "race", "https://example.com/cb")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := m.Consume(ctx, "race"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one successful consume, got %d", wins)
	}
}

func TestRedis_UsesConfiguredKey(t *testing.T) {
	store, mr := newRedisStore(t, 5)
	ctx := context.Background()

	if err := store.Add(ctx, "xyz", "https://example.com/cb"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	got, err := mr.List(DefaultRedisKey)
	if err != nil {
		t.Fatalf("reading list failed: %v", err)
	}
	if len(got) != 1 || got[0] != "xyz\nhttps://example.com/cb" {
		t.Errorf("unexpected list contents %v", got)
	}
}

func TestRedis_ErrorsAreStateErrors(t *testing.T) {
	store, mr := newRedisStore(t, 5)
	mr.Close()

	err := store.Add(context.Background(), "abc", "")
	var stateErr *pkgerrs.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError, got %T (%v)", err, err)
	}

	_, _, err = store.Consume(context.Background(), "abc")
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError from Consume, got %T", err)
	}
}

func TestNewRedis_NilClient(t *testing.T) {
	_, err := NewRedis(nil, RedisOptions{})
	var cfgErr *pkgerrs.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
