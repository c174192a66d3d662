package discordauth

import (
	"github.com/jamesprial/go-discord-oauth2/pkg/types"
)

// TeamMembershipState is the invitation status of a team member.
type TeamMembershipState int

const (
	TeamMembershipInvited  TeamMembershipState = 1
	TeamMembershipAccepted TeamMembershipState = 2
)

func (s TeamMembershipState) String() string {
	switch s {
	case TeamMembershipInvited:
		return "invited"
	case TeamMembershipAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Team owns an application.
type Team struct {
	ID          types.Snowflake
	Name        string
	OwnerUserID types.Snowflake
	Members     []*TeamMember

	iconHash string
	client   *Client
}

// TeamMember is a member of a Team. Its User is not bound to a session.
type TeamMember struct {
	User            *User
	MembershipState TeamMembershipState
	Permissions     []string
	Role            string
	Team            *Team
}

func newTeam(c *Client, p *types.Team) (*Team, error) {
	const op = "Team"
	if err := requireField(op, "id", p.ID != nil); err != nil {
		return nil, err
	}
	if err := requireField(op, "name", p.Name != nil); err != nil {
		return nil, err
	}

	team := &Team{
		ID:          *p.ID,
		Name:        *p.Name,
		OwnerUserID: deref(p.OwnerUserID),
		iconHash:    deref(p.Icon),
		client:      c,
	}

	team.Members = make([]*TeamMember, 0, len(p.Members))
	for i := range p.Members {
		m := &p.Members[i]
		if err := requireField("TeamMember", "membership_state", m.MembershipState != nil); err != nil {
			return nil, err
		}
		user, err := newUser(c, m.User, nil)
		if err != nil {
			return nil, err
		}
		team.Members = append(team.Members, &TeamMember{
			User:            user,
			MembershipState: TeamMembershipState(*m.MembershipState),
			Permissions:     m.Permissions,
			Role:            m.Role,
			Team:            team,
		})
	}
	return team, nil
}

// Icon returns the team icon, or nil.
func (t *Team) Icon() *Asset {
	if t.iconHash == "" {
		return nil
	}
	return t.client.assets.icon("team", t.ID, t.iconHash)
}

// Owner returns the member owning the team, or nil when it is not listed.
func (t *Team) Owner() *TeamMember {
	for _, m := range t.Members {
		if m.User.ID == t.OwnerUserID {
			return m
		}
	}
	return nil
}
