package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-gymdesk/components/gym"
)

type reportService interface {
	Report(ctx context.Context, req gym.ReportRequest) (gym.Report, error)
}

// ReportQuery fetches and decodes a report for a date window.
type ReportQuery struct {
	service reportService
}

// NewReportQuery builds the query.
func NewReportQuery(service reportService) *ReportQuery {
	return &ReportQuery{service: service}
}

var _ gocommand.Querier[gym.ReportRequest, gym.Report] = (*ReportQuery)(nil)

// Query resolves the report.
func (q *ReportQuery) Query(ctx context.Context, input gym.ReportRequest) (gym.Report, error) {
	return q.service.Report(ctx, input)
}
