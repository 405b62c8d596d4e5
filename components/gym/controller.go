package gym

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultDashboardTemplate is the embedded dashboard page.
const DefaultDashboardTemplate = "dashboard.html"

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// ControllerOptions wires the dashboard page.
type ControllerOptions struct {
	Service  *Service
	Renderer Renderer
	Charts   *Charts
	Template string
	Title    string
}

// Controller assembles the dashboard page from the service's derived stats.
type Controller struct {
	service  *Service
	renderer Renderer
	charts   *Charts
	template string
	title    string
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Charts == nil {
		opts.Charts = NewCharts()
	}
	if opts.Template == "" {
		opts.Template = DefaultDashboardTemplate
	}
	if opts.Title == "" {
		opts.Title = "Gym dashboard"
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		charts:   opts.Charts,
		template: opts.Template,
		title:    opts.Title,
	}
}

// DashboardView is everything the dashboard page shows.
type DashboardView struct {
	Summary    DashboardSummary
	Attendance AttendanceStats
	Plans      PlanStats
	Trainers   TrainerStats
	Payments   []Payment
}

// View loads the summary and derives every statistic the page shows.
func (c *Controller) View(ctx context.Context) (DashboardView, error) {
	if c.service == nil {
		return DashboardView{}, errMissingBackend
	}
	var view DashboardView
	var err error
	if view.Summary, err = c.service.Summary(ctx); err != nil {
		return DashboardView{}, fmt.Errorf("gym: load summary: %w", err)
	}
	if view.Attendance, err = c.service.AttendanceStats(ctx); err != nil {
		return DashboardView{}, fmt.Errorf("gym: attendance stats: %w", err)
	}
	if view.Plans, err = c.service.PlanStats(ctx); err != nil {
		return DashboardView{}, fmt.Errorf("gym: plan stats: %w", err)
	}
	if view.Trainers, err = c.service.TrainerStats(ctx); err != nil {
		return DashboardView{}, fmt.Errorf("gym: trainer stats: %w", err)
	}
	view.Payments = view.Summary.PendingPayments
	return view, nil
}

// RenderTemplate renders the dashboard page into out.
func (c *Controller) RenderTemplate(ctx context.Context, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("gym: renderer is required")
	}
	view, err := c.View(ctx)
	if err != nil {
		return err
	}
	payload, err := c.templatePayload(ctx, view)
	if err != nil {
		return err
	}
	if _, err := c.renderer.Render(c.template, payload, out); err != nil {
		return fmt.Errorf("gym: render %s: %w", c.template, err)
	}
	return nil
}

func (c *Controller) templatePayload(ctx context.Context, view DashboardView) (map[string]any, error) {
	attendanceChart, err := c.charts.Attendance(ctx, view.Attendance)
	if err != nil {
		return nil, err
	}
	distribution := view.Plans.Distribution
	if len(view.Summary.PlanDistribution) > 0 {
		distribution = view.Summary.PlanDistribution
	}
	planChart, err := c.charts.PlanDistribution(ctx, distribution)
	if err != nil {
		return nil, err
	}

	payments := make([]map[string]any, 0, len(view.Payments))
	for _, p := range view.Payments {
		member, _ := p.Member.Doc()
		payments = append(payments, map[string]any{
			"receipt":      orNA(p.ReceiptNumber),
			"member":       orNA(member.FullName),
			"amount":       FormatCurrency(p.FinalAmount),
			"status":       p.PaymentStatus,
			"status_color": StatusColor(p.PaymentStatus),
			"date":         FormatDate(p.PaymentDate),
		})
	}
	recent := make([]map[string]any, 0, len(view.Summary.RecentMembers))
	for _, m := range view.Summary.RecentMembers {
		recent = append(recent, map[string]any{
			"name":         m.FullName,
			"member_id":    m.MemberID,
			"status":       m.MembershipStatus,
			"status_color": StatusColor(m.MembershipStatus),
			"joined":       RelativeTime(m.JoinDate),
		})
	}

	return map[string]any{
		"title":        c.title,
		"generated_at": FormatDateTime(c.service.Today()),
		"summary": map[string]any{
			"total_members":    view.Summary.Members.Total,
			"active_members":   view.Summary.Members.Active,
			"attendance_today": view.Summary.Attendance.Today,
			"monthly_revenue":  FormatCurrency(view.Summary.Revenue.Monthly),
			"expiring":         view.Summary.Alerts.ExpiringMemberships,
		},
		"attendance": map[string]any{
			"total":        view.Attendance.Total,
			"currently_in": view.Attendance.CurrentlyIn,
			"checked_out":  view.Attendance.CheckedOut,
			"avg_duration": view.Attendance.AvgDuration,
			"peak_hour":    view.Attendance.PeakHourLabel,
		},
		"plans": map[string]any{
			"active":      view.Plans.ActivePlans,
			"subscribers": view.Plans.TotalSubscribers,
			"revenue":     FormatCurrency(view.Plans.MonthlyRevenue),
			"top":         view.Plans.TopPerformingPlan,
			"least":       view.Plans.LeastPerformingPlan,
			"expiring":    view.Plans.ExpiringSubscriptions,
		},
		"trainers": map[string]any{
			"total":      view.Trainers.TotalTrainers,
			"active":     view.Trainers.ActiveTrainers,
			"clients":    view.Trainers.ActiveClients,
			"average":    fmt.Sprintf("%.1f", view.Trainers.AvgClientsPerTrainer),
			"unassigned": view.Trainers.UnassignedMembers,
		},
		"pending_payments": payments,
		"recent_members":   recent,
		"attendance_chart": attendanceChart,
		"plan_chart":       planChart,
	}, nil
}
