package discordauth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	pkgerrs "github.com/jamesprial/go-discord-oauth2/pkg/errors"
	"github.com/jamesprial/go-discord-oauth2/test_helpers"
)

func guildIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(100 + i)
	}
	return ids
}

func collectIDs(guilds []*PartialGuild) []string {
	out := make([]string, len(guilds))
	for i, g := range guilds {
		out[i] = g.ID.String()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGuildIterator_Forward(t *testing.T) {
	ms := newTestServer(t)
	ids := guildIDs(7)
	ms.SetupGuildPages(ids)
	c := newTestClient(t, ms)
	u := fetchBoundUser(t, c)

	it, err := u.Guilds(context.Background(), GuildsOptions{Limit: 3, WithCounts: true})
	if err != nil {
		t.Fatalf("Guilds returned error: %v", err)
	}

	guilds, err := it.Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got := collectIDs(guilds); !equalIDs(got, ids) {
		t.Errorf("got %v, want %v", got, ids)
	}

	log := ms.GetRequestLog()
	var pages []test_helpers.RequestEntry
	for _, e := range log {
		if e.Path == "/users/@me/guilds" {
			pages = append(pages, e)
		}
	}
	if len(pages) != 3 {
		t.Fatalf("expected three page requests, got %d", len(pages))
	}
	if pages[0].Query.Get("after") != "" || pages[1].Query.Get("after") != "102" || pages[2].Query.Get("after") != "105" {
		t.Errorf("unexpected cursors: %q %q %q", pages[0].Query.Get("after"), pages[1].Query.Get("after"), pages[2].Query.Get("after"))
	}
	if pages[0].Query.Get("limit") != "3" || pages[0].Query.Get("with_counts") != "true" {
		t.Errorf("unexpected query: %v", pages[0].Query)
	}

	if it.HasNext() {
		t.Error("expected the iterator to be exhausted")
	}
	if _, err := it.Next(); !errors.Is(err, ErrNoMoreGuilds) {
		t.Errorf("expected ErrNoMoreGuilds, got %v", err)
	}
}

func TestGuildIterator_ExactMultipleOfLimit(t *testing.T) {
	ms := newTestServer(t)
	ids := guildIDs(4)
	ms.SetupGuildPages(ids)
	c := newTestClient(t, ms)
	u := fetchBoundUser(t, c)

	it, err := u.Guilds(context.Background(), GuildsOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Guilds returned error: %v", err)
	}
	guilds, err := it.Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got := collectIDs(guilds); !equalIDs(got, ids) {
		t.Errorf("got %v, want %v", got, ids)
	}
	// Two full pages, then an empty one ends the iteration.
	if n := ms.GetCallCount("GET /users/@me/guilds"); n != 3 {
		t.Errorf("expected three page requests, got %d", n)
	}
}

func TestGuildIterator_Backwards(t *testing.T) {
	ms := newTestServer(t)
	ms.SetupGuildPages(guildIDs(7))
	c := newTestClient(t, ms)
	u := fetchBoundUser(t, c)

	it, err := u.Guilds(context.Background(), GuildsOptions{Before: 105, Limit: 2})
	if err != nil {
		t.Fatalf("Guilds returned error: %v", err)
	}
	guilds, err := it.Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	want := []string{"104", "103", "102", "101", "100"}
	if got := collectIDs(guilds); !equalIDs(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	req, _ := ms.LastRequest("GET /users/@me/guilds")
	if req.Query.Get("before") != "101" || req.Query.Get("after") != "" {
		t.Errorf("unexpected last cursor: %v", req.Query)
	}
}

func TestGuildIterator_AfterCursor(t *testing.T) {
	ms := newTestServer(t)
	ms.SetupGuildPages(guildIDs(5))
	c := newTestClient(t, ms)
	u := fetchBoundUser(t, c)

	it, err := u.Guilds(context.Background(), GuildsOptions{After: 102})
	if err != nil {
		t.Fatalf("Guilds returned error: %v", err)
	}
	guilds, err := it.Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got := collectIDs(guilds); !equalIDs(got, []string{"103", "104"}) {
		t.Errorf("got %v", got)
	}
	req, _ := ms.LastRequest("GET /users/@me/guilds")
	if req.Query.Get("limit") != strconv.Itoa(DefaultGuildsLimit) {
		t.Errorf("limit = %q, want the default", req.Query.Get("limit"))
	}
}

func TestGuildIterator_CollectMaxAndReset(t *testing.T) {
	ms := newTestServer(t)
	ms.SetupGuildPages(guildIDs(6))
	c := newTestClient(t, ms)
	u := fetchBoundUser(t, c)

	it, err := u.Guilds(context.Background(), GuildsOptions{Limit: 4})
	if err != nil {
		t.Fatalf("Guilds returned error: %v", err)
	}

	first, err := it.Collect(3)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got := collectIDs(first); !equalIDs(got, []string{"100", "101", "102"}) {
		t.Errorf("got %v", got)
	}

	rest, err := it.Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if got := collectIDs(rest); !equalIDs(got, []string{"103", "104", "105"}) {
		t.Errorf("got %v", got)
	}

	it.Reset()
	again, err := it.Collect(0)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(again) != 6 {
		t.Errorf("expected all guilds after Reset, got %d", len(again))
	}
}

func TestGuildIterator_Error(t *testing.T) {
	ms := newTestServer(t)
	ms.SetResponse("GET /users/@me/guilds", &test_helpers.MockResponse{
		Status: http.StatusUnauthorized,
		Body:   `{"code": 0, "message": "401: Unauthorized"}`,
	})
	c := newTestClient(t, ms)
	u := fetchBoundUser(t, c)

	it, err := u.Guilds(context.Background(), GuildsOptions{})
	if err != nil {
		t.Fatalf("Guilds returned error: %v", err)
	}

	_, err = it.Next()
	var apiErr *pkgerrs.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected a 401 *errors.APIError, got %v", err)
	}
	if it.HasNext() || it.Error() == nil {
		t.Error("expected the iterator to stop on error")
	}
	if _, err := it.Next(); !errors.As(err, &apiErr) {
		t.Errorf("expected the error to be sticky, got %v", err)
	}
}

func TestGuildIterator_PartialGuild(t *testing.T) {
	ms := newTestServer(t)
	page := test_helpers.GuildPayload("80351110224678912", "1337 Krew")
	page["icon"] = "8342729096ea3675442027381ff50dfe"
	page["owner"] = true
	page["features"] = []string{"COMMUNITY", "NEWS"}
	page["approximate_member_count"] = 3268
	ms.SetResponse("GET /users/@me/guilds", test_helpers.JSONResponse([]any{page}))
	c := newTestClient(t, ms)
	u := fetchBoundUser(t, c)

	it, err := u.Guilds(context.Background(), GuildsOptions{})
	if err != nil {
		t.Fatalf("Guilds returned error: %v", err)
	}
	g, err := it.Next()
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if g.Name != "1337 Krew" || !g.Owner || g.Permissions != 104324673 || len(g.Features) != 2 {
		t.Errorf("unexpected guild: %+v", g)
	}
	if g.ApproximateMemberCount == nil || *g.ApproximateMemberCount != 3268 || g.ApproximatePresenceCount != nil {
		t.Errorf("unexpected counts: %v %v", g.ApproximateMemberCount, g.ApproximatePresenceCount)
	}
	if want := testCDN + "/icons/80351110224678912/8342729096ea3675442027381ff50dfe.png?size=1024"; g.Icon().URL != want {
		t.Errorf("Icon() = %q", g.Icon().URL)
	}
	if g.Banner() != nil {
		t.Error("expected no banner")
	}
}

func TestGuilds_LimitValidation(t *testing.T) {
	ms := newTestServer(t)
	c := newTestClient(t, ms)
	u := fetchBoundUser(t, c)

	for _, limit := range []int{-1, 201} {
		_, err := u.Guilds(context.Background(), GuildsOptions{Limit: limit})
		assertConfigError(t, err)
	}
	if ms.GetCallCount("GET /users/@me/guilds") != 0 {
		t.Error("expected no guild requests")
	}
}
