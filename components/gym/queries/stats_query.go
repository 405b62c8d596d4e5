package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-gymdesk/components/gym"
)

// StatsInput carries no filters; statistics always cover the current data.
type StatsInput struct{}

type statsService interface {
	AttendanceStats(ctx context.Context) (gym.AttendanceStats, error)
	PlanStats(ctx context.Context) (gym.PlanStats, error)
	TrainerStats(ctx context.Context) (gym.TrainerStats, error)
	Summary(ctx context.Context) (gym.DashboardSummary, error)
}

// AttendanceStatsQuery derives today's attendance statistics.
type AttendanceStatsQuery struct {
	service statsService
}

// NewAttendanceStatsQuery builds the query.
func NewAttendanceStatsQuery(service statsService) *AttendanceStatsQuery {
	return &AttendanceStatsQuery{service: service}
}

var _ gocommand.Querier[StatsInput, gym.AttendanceStats] = (*AttendanceStatsQuery)(nil)

// Query returns the statistics for today's records.
func (q *AttendanceStatsQuery) Query(ctx context.Context, _ StatsInput) (gym.AttendanceStats, error) {
	return q.service.AttendanceStats(ctx)
}

// PlanStatsQuery derives plan subscription statistics.
type PlanStatsQuery struct {
	service statsService
}

// NewPlanStatsQuery builds the query.
func NewPlanStatsQuery(service statsService) *PlanStatsQuery {
	return &PlanStatsQuery{service: service}
}

var _ gocommand.Querier[StatsInput, gym.PlanStats] = (*PlanStatsQuery)(nil)

// Query returns plan statistics.
func (q *PlanStatsQuery) Query(ctx context.Context, _ StatsInput) (gym.PlanStats, error) {
	return q.service.PlanStats(ctx)
}

// TrainerStatsQuery derives trainer workload statistics.
type TrainerStatsQuery struct {
	service statsService
}

// NewTrainerStatsQuery builds the query.
func NewTrainerStatsQuery(service statsService) *TrainerStatsQuery {
	return &TrainerStatsQuery{service: service}
}

var _ gocommand.Querier[StatsInput, gym.TrainerStats] = (*TrainerStatsQuery)(nil)

// Query returns trainer statistics.
func (q *TrainerStatsQuery) Query(ctx context.Context, _ StatsInput) (gym.TrainerStats, error) {
	return q.service.TrainerStats(ctx)
}

// SummaryQuery loads the backend dashboard summary.
type SummaryQuery struct {
	service statsService
}

// NewSummaryQuery builds the query.
func NewSummaryQuery(service statsService) *SummaryQuery {
	return &SummaryQuery{service: service}
}

var _ gocommand.Querier[StatsInput, gym.DashboardSummary] = (*SummaryQuery)(nil)

// Query returns the dashboard summary.
func (q *SummaryQuery) Query(ctx context.Context, _ StatsInput) (gym.DashboardSummary, error) {
	return q.service.Summary(ctx)
}
