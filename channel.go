package discordauth

import (
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// GroupDMChannel is a group DM created by the bot.
type GroupDMChannel struct {
	ID            types.Snowflake
	Type          int
	Name          string
	OwnerID       types.Snowflake
	LastMessageID types.Snowflake
	ApplicationID types.Snowflake
	Managed       bool
	Flags         int
	// Recipients are not bound to a session.
	Recipients []*User

	iconHash string
	client   *Client
}

func newGroupDMChannel(c *Client, p *types.GroupDMChannel) (*GroupDMChannel, error) {
	const op = "GroupDMChannel"
	if err := requireField(op, "id", p.ID != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "owner_id", p.OwnerID != nil); err != nil {
		return nil, err
	}

	ch := &GroupDMChannel{
		ID:            *p.ID,
		Type:          p.Type,
		Name:          deref(p.Name),
		OwnerID:       *p.OwnerID,
		LastMessageID: deref(p.LastMessageID),
		ApplicationID: deref(p.ApplicationID),
		Managed:       p.Managed,
		Flags:         p.Flags,
		iconHash:      deref(p.Icon),
		client:        c,
	}

	ch.Recipients = make([]*User, 0, len(p.Recipients))
	for i := range p.Recipients {
		u, err := newUser(c, &p.Recipients[i], nil)
		if err != nil {
			return nil, err
		}
		ch.Recipients = append(ch.Recipients, u)
	}
	return ch, nil
}

// Icon returns the channel icon, or nil.
func (ch *GroupDMChannel) Icon() *Asset {
	if ch.iconHash == "" {
		return nil
	}
	return ch.client.assets.icon("channel", ch.ID, ch.iconHash)
}
