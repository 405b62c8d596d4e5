package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-gymdesk/components/gym"
)

type memberService interface {
	Members(ctx context.Context, query gym.MemberQuery) ([]gym.Member, error)
	SearchCheckInCandidates(ctx context.Context, term string) ([]gym.Member, error)
	ExpiringMembers(ctx context.Context) ([]gym.Member, error)
}

// MembersQuery lists members matching a filter.
type MembersQuery struct {
	service memberService
}

// NewMembersQuery builds the query.
func NewMembersQuery(service memberService) *MembersQuery {
	return &MembersQuery{service: service}
}

var _ gocommand.Querier[gym.MemberQuery, []gym.Member] = (*MembersQuery)(nil)

// Query lists members.
func (q *MembersQuery) Query(ctx context.Context, input gym.MemberQuery) ([]gym.Member, error) {
	return q.service.Members(ctx, input)
}

// CheckInSearchInput is the free-text term typed into the check-in box.
type CheckInSearchInput struct {
	Term string
}

// CheckInSearchQuery finds active members eligible for check-in.
type CheckInSearchQuery struct {
	service memberService
}

// NewCheckInSearchQuery builds the query.
func NewCheckInSearchQuery(service memberService) *CheckInSearchQuery {
	return &CheckInSearchQuery{service: service}
}

var _ gocommand.Querier[CheckInSearchInput, []gym.Member] = (*CheckInSearchQuery)(nil)

// Query returns candidates, or nothing for terms shorter than gym.MinSearchLength.
func (q *CheckInSearchQuery) Query(ctx context.Context, input CheckInSearchInput) ([]gym.Member, error) {
	return q.service.SearchCheckInCandidates(ctx, input.Term)
}

// ExpiringMembersQuery lists members whose plan ends inside the alert window.
type ExpiringMembersQuery struct {
	service memberService
}

// NewExpiringMembersQuery builds the query.
func NewExpiringMembersQuery(service memberService) *ExpiringMembersQuery {
	return &ExpiringMembersQuery{service: service}
}

var _ gocommand.Querier[StatsInput, []gym.Member] = (*ExpiringMembersQuery)(nil)

// Query lists expiring members.
func (q *ExpiringMembersQuery) Query(ctx context.Context, _ StatsInput) ([]gym.Member, error) {
	return q.service.ExpiringMembers(ctx)
}
