package discordauth

import (
	"context"
	"errors"

	"github.com/jamesprial/go-discord-oauth2/internal"
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// DefaultGuildsLimit is the page size of the guild list, and its maximum.
const DefaultGuildsLimit = 200

// ErrNoMoreGuilds is returned by GuildIterator.Next once the list is exhausted.
var ErrNoMoreGuilds = errors.New("no more guilds available")

// GuildsOptions select a window of the user's guild list.
type GuildsOptions struct {
	// Before and After are guild ID cursors. When Before is set and After is
	// not, the iterator walks backwards from Before.
	Before types.Snowflake
	After  types.Snowflake
	// Limit is the page size, 1 to 200. Zero selects DefaultGuildsLimit.
	Limit int
	// WithCounts includes approximate member and presence counts.
	WithCounts bool
}

// GuildIterator pages through the current user's guilds. Each call to Next
// that exhausts the buffered page fetches the next one.
type GuildIterator struct {
	user      *User
	opts      GuildsOptions
	backwards bool
	buffer    []*PartialGuild
	bufferIdx int
	before    types.Snowflake
	after     types.Snowflake
	hasMore   bool
	err       error
	ctx       context.Context
}

func newGuildIterator(ctx context.Context, u *User, opts GuildsOptions) *GuildIterator {
	it := &GuildIterator{
		user:      u,
		opts:      opts,
		backwards: opts.Before != 0 && opts.After == 0,
		ctx:       ctx,
	}
	it.Reset()
	return it
}

// HasNext returns true if there may be more guilds to iterate through.
func (it *GuildIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next guild.
func (it *GuildIterator) Next() (*PartialGuild, error) {
	if it.err != nil {
		return nil, it.err
	}

	if it.bufferIdx >= len(it.buffer) {
		if !it.hasMore {
			return nil, ErrNoMoreGuilds
		}
		if err := it.fetch(); err != nil {
			it.err = err
			return nil, err
		}
		if len(it.buffer) == 0 {
			return nil, ErrNoMoreGuilds
		}
	}

	guild := it.buffer[it.bufferIdx]
	it.bufferIdx++
	return guild, nil
}

func (it *GuildIterator) fetch() error {
	token, err := it.user.boundToken("Guilds")
	if err != nil {
		return err
	}

	q := internal.GuildsQuery{Limit: it.opts.Limit, WithCounts: it.opts.WithCounts}
	if it.backwards {
		q.Before = it.before
	} else {
		q.Before = it.opts.Before
		q.After = it.after
	}

	data, err := it.user.client.http.GetCurrentUserGuilds(it.ctx, q, token)
	if err != nil {
		return err
	}

	page := make([]*PartialGuild, 0, len(data))
	for i := range data {
		g, err := newPartialGuild(it.user.client, &data[i])
		if err != nil {
			return err
		}
		page = append(page, g)
	}

	it.buffer = page
	it.bufferIdx = 0
	if len(page) == 0 {
		it.hasMore = false
		return nil
	}

	if it.backwards {
		// Pages are sorted by ID; the next page ends before the first entry.
		it.before = page[0].ID
		it.buffer = reverse(page)
	} else {
		it.after = page[len(page)-1].ID
	}

	// A short page is the last one.
	if len(page) < it.opts.Limit {
		it.hasMore = false
	}
	return nil
}

func reverse(page []*PartialGuild) []*PartialGuild {
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page
}

// Error returns any error encountered during iteration.
func (it *GuildIterator) Error() error {
	return it.err
}

// Reset rewinds the iterator to the starting cursors.
func (it *GuildIterator) Reset() {
	it.buffer = nil
	it.bufferIdx = 0
	it.before = it.opts.Before
	it.after = it.opts.After
	it.hasMore = true
	it.err = nil
}

// Collect fetches all remaining guilds up to a maximum count. A maxGuilds of
// zero or less collects everything.
func (it *GuildIterator) Collect(maxGuilds int) ([]*PartialGuild, error) {
	var guilds []*PartialGuild

	for it.HasNext() && (maxGuilds <= 0 || len(guilds) < maxGuilds) {
		guild, err := it.Next()
		if errors.Is(err, ErrNoMoreGuilds) {
			break
		}
		if err != nil {
			return guilds, err
		}
		guilds = append(guilds, guild)
	}

	return guilds, nil
}
