package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	gocommand "github.com/goliatone/go-command"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-gymdesk/components/gym"
	"github.com/goliatone/go-gymdesk/components/gym/commands"
	"github.com/goliatone/go-gymdesk/components/gym/queries"
	"github.com/goliatone/go-gymdesk/pkg/api"
)

// PageRenderer renders the full dashboard page.
type PageRenderer interface {
	RenderTemplate(ctx context.Context, out io.Writer) error
}

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	CheckIn     gocommand.Commander[gym.CheckInRequest]
	CheckOut    gocommand.Commander[commands.CheckOutInput]
	MarkPaid    gocommand.Commander[commands.MarkPaidInput]
	Delete      gocommand.Commander[commands.DeleteInput]
	SaveMember  gocommand.Commander[gym.MemberDraft]
	SavePlan    gocommand.Commander[gym.PlanDraft]
	SaveTrainer gocommand.Commander[gym.TrainerDraft]
	Refresh     gocommand.Commander[commands.RefreshInput]

	AttendanceStats gocommand.Querier[queries.StatsInput, gym.AttendanceStats]
	PlanStats       gocommand.Querier[queries.StatsInput, gym.PlanStats]
	TrainerStats    gocommand.Querier[queries.StatsInput, gym.TrainerStats]
	Summary         gocommand.Querier[queries.StatsInput, gym.DashboardSummary]
	Members         gocommand.Querier[gym.MemberQuery, []gym.Member]
	Search          gocommand.Querier[queries.CheckInSearchInput, []gym.Member]
	Expiring        gocommand.Querier[queries.StatsInput, []gym.Member]
	Report          gocommand.Querier[gym.ReportRequest, gym.Report]

	Page     PageRenderer
	Charts   *gym.Charts
	Now      func() time.Time
	Location *time.Location
	Logger   zerolog.Logger
}

// NewHandlers wires every endpoint to the service.
func NewHandlers(service *gym.Service, page PageRenderer, charts *gym.Charts, telemetry commands.Telemetry, logger zerolog.Logger) *Handlers {
	if charts == nil {
		charts = gym.NewCharts()
	}
	return &Handlers{
		CheckIn:     commands.NewCheckInCommand(service, telemetry),
		CheckOut:    commands.NewCheckOutCommand(service, telemetry),
		MarkPaid:    commands.NewMarkPaidCommand(service, telemetry),
		Delete:      commands.NewDeleteCommand(service, telemetry),
		SaveMember:  commands.NewSaveMemberCommand(service, telemetry),
		SavePlan:    commands.NewSavePlanCommand(service, telemetry),
		SaveTrainer: commands.NewSaveTrainerCommand(service, telemetry),
		Refresh:     commands.NewRefreshCommand(service, telemetry),

		AttendanceStats: queries.NewAttendanceStatsQuery(service),
		PlanStats:       queries.NewPlanStatsQuery(service),
		TrainerStats:    queries.NewTrainerStatsQuery(service),
		Summary:         queries.NewSummaryQuery(service),
		Members:         queries.NewMembersQuery(service),
		Search:          queries.NewCheckInSearchQuery(service),
		Expiring:        queries.NewExpiringMembersQuery(service),
		Report:          queries.NewReportQuery(service),

		Page:     page,
		Charts:   charts,
		Now:      service.Today,
		Location: service.Location(),
		Logger:   logger.With().Str("component", "gym_httpapi").Logger(),
	}
}

// Register attaches the dashboard page and JSON API to router.
func (h *Handlers) Register(router fiber.Router) {
	router.Get("/", h.HandleDashboard)
	router.Get("/dashboard", h.HandleDashboard)

	group := router.Group("/api")
	group.Get("/summary", h.HandleSummary)
	group.Get("/stats/attendance", h.HandleAttendanceStats)
	group.Get("/stats/plans", h.HandlePlanStats)
	group.Get("/stats/trainers", h.HandleTrainerStats)
	group.Get("/charts/attendance", h.HandleAttendanceChart)
	group.Get("/charts/plans", h.HandlePlanChart)

	group.Get("/members", h.HandleMembers)
	group.Get("/members/expiring", h.HandleExpiring)
	group.Get("/checkin/search", h.HandleSearch)
	group.Post("/members", h.HandleSaveMember)
	group.Put("/members/:id", h.HandleSaveMember)
	group.Post("/plans", h.HandleSavePlan)
	group.Put("/plans/:id", h.HandleSavePlan)
	group.Post("/trainers", h.HandleSaveTrainer)
	group.Put("/trainers/:id", h.HandleSaveTrainer)
	group.Delete("/:kind/:id", h.HandleDelete)

	group.Post("/attendance/checkin", h.HandleCheckIn)
	group.Post("/attendance/checkout", h.HandleCheckOut)
	group.Post("/payments/:id/paid", h.HandleMarkPaid)
	group.Post("/cache/refresh", h.HandleRefresh)

	group.Get("/reports/:kind", h.HandleReport)
}

// HandleDashboard renders the HTML dashboard.
func (h *Handlers) HandleDashboard(c *fiber.Ctx) error {
	if h.Page == nil {
		return h.fail(c, fiber.StatusNotFound, errors.New("dashboard page not configured"))
	}
	var buf bytes.Buffer
	if err := h.Page.RenderTemplate(c.UserContext(), &buf); err != nil {
		return h.fail(c, statusFor(err), err)
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// HandleSummary returns the backend dashboard summary.
func (h *Handlers) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.Summary.Query(c.UserContext(), queries.StatsInput{})
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	return ok(c, fiber.StatusOK, summary)
}

// HandleAttendanceStats returns today's derived attendance statistics.
func (h *Handlers) HandleAttendanceStats(c *fiber.Ctx) error {
	stats, err := h.AttendanceStats.Query(c.UserContext(), queries.StatsInput{})
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	return ok(c, fiber.StatusOK, stats)
}

// HandlePlanStats returns derived plan statistics.
func (h *Handlers) HandlePlanStats(c *fiber.Ctx) error {
	stats, err := h.PlanStats.Query(c.UserContext(), queries.StatsInput{})
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	return ok(c, fiber.StatusOK, stats)
}

// HandleTrainerStats returns derived trainer statistics.
func (h *Handlers) HandleTrainerStats(c *fiber.Ctx) error {
	stats, err := h.TrainerStats.Query(c.UserContext(), queries.StatsInput{})
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	return ok(c, fiber.StatusOK, stats)
}

// HandleAttendanceChart renders the hourly check-in chart as an HTML fragment.
func (h *Handlers) HandleAttendanceChart(c *fiber.Ctx) error {
	stats, err := h.AttendanceStats.Query(c.UserContext(), queries.StatsInput{})
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	html, err := h.Charts.Attendance(c.UserContext(), stats)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	c.Type("html", "utf-8")
	return c.SendString(html)
}

// HandlePlanChart renders the plan distribution chart as an HTML fragment.
func (h *Handlers) HandlePlanChart(c *fiber.Ctx) error {
	stats, err := h.PlanStats.Query(c.UserContext(), queries.StatsInput{})
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	html, err := h.Charts.PlanDistribution(c.UserContext(), stats.Distribution)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	c.Type("html", "utf-8")
	return c.SendString(html)
}

// HandleMembers lists members filtered by status, search, and limit.
func (h *Handlers) HandleMembers(c *fiber.Ctx) error {
	query := gym.MemberQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return h.fail(c, fiber.StatusBadRequest, errors.New("limit must be a non-negative integer"))
		}
		query.Limit = limit
	}
	members, err := h.Members.Query(c.UserContext(), query)
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	return ok(c, fiber.StatusOK, members)
}

// HandleExpiring lists members whose plan ends soon.
func (h *Handlers) HandleExpiring(c *fiber.Ctx) error {
	members, err := h.Expiring.Query(c.UserContext(), queries.StatsInput{})
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	return ok(c, fiber.StatusOK, members)
}

// HandleSearch finds active members for the check-in box.
func (h *Handlers) HandleSearch(c *fiber.Ctx) error {
	members, err := h.Search.Query(c.UserContext(), queries.CheckInSearchInput{Term: c.Query("q")})
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	if members == nil {
		members = []gym.Member{}
	}
	return ok(c, fiber.StatusOK, members)
}

// HandleSaveMember creates (POST) or updates (PUT /:id) a member.
func (h *Handlers) HandleSaveMember(c *fiber.Ctx) error {
	draft := gym.NewMemberDraft()
	if err := c.BodyParser(&draft); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	draft.ID = c.Params("id")
	return h.execute(c, createdOrOK(draft.ID), h.SaveMember.Execute(c.UserContext(), draft))
}

// HandleSavePlan creates (POST) or updates (PUT /:id) a plan.
func (h *Handlers) HandleSavePlan(c *fiber.Ctx) error {
	draft := gym.NewPlanDraft()
	if err := c.BodyParser(&draft); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	draft.ID = c.Params("id")
	return h.execute(c, createdOrOK(draft.ID), h.SavePlan.Execute(c.UserContext(), draft))
}

// HandleSaveTrainer creates (POST) or updates (PUT /:id) a trainer.
func (h *Handlers) HandleSaveTrainer(c *fiber.Ctx) error {
	draft := gym.NewTrainerDraft()
	if err := c.BodyParser(&draft); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	draft.ID = c.Params("id")
	return h.execute(c, createdOrOK(draft.ID), h.SaveTrainer.Execute(c.UserContext(), draft))
}

var deletableKinds = map[string]gym.EntityKind{
	"members":  gym.EntityMember,
	"trainers": gym.EntityTrainer,
	"plans":    gym.EntityPlan,
}

// HandleDelete removes a member, trainer, or plan.
func (h *Handlers) HandleDelete(c *fiber.Ctx) error {
	kind, known := deletableKinds[c.Params("kind")]
	if !known {
		return h.fail(c, fiber.StatusNotFound, errors.New("unknown collection "+c.Params("kind")))
	}
	input := commands.DeleteInput{Kind: kind, ID: c.Params("id")}
	return h.execute(c, fiber.StatusNoContent, h.Delete.Execute(c.UserContext(), input))
}

// HandleCheckIn records a manual check-in.
func (h *Handlers) HandleCheckIn(c *fiber.Ctx) error {
	var payload gym.CheckInRequest
	if err := c.BodyParser(&payload); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	return h.execute(c, fiber.StatusCreated, h.CheckIn.Execute(c.UserContext(), payload))
}

type checkOutPayload struct {
	AttendanceID string `json:"attendanceId"`
}

// HandleCheckOut closes an attendance record.
func (h *Handlers) HandleCheckOut(c *fiber.Ctx) error {
	var payload checkOutPayload
	if err := c.BodyParser(&payload); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	input := commands.CheckOutInput{AttendanceID: payload.AttendanceID}
	return h.execute(c, fiber.StatusOK, h.CheckOut.Execute(c.UserContext(), input))
}

// HandleMarkPaid settles a pending payment.
func (h *Handlers) HandleMarkPaid(c *fiber.Ctx) error {
	input := commands.MarkPaidInput{PaymentID: c.Params("id")}
	return h.execute(c, fiber.StatusOK, h.MarkPaid.Execute(c.UserContext(), input))
}

// HandleRefresh drops cached queries; ?prefix= may repeat.
func (h *Handlers) HandleRefresh(c *fiber.Ctx) error {
	var prefixes []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("prefix") {
		if prefix := strings.TrimSpace(string(raw)); prefix != "" {
			prefixes = append(prefixes, prefix)
		}
	}
	return h.execute(c, fiber.StatusAccepted, h.Refresh.Execute(c.UserContext(), commands.RefreshInput{Prefixes: prefixes}))
}

// HandleReport returns a report as JSON, or as a CSV download with ?format=csv.
func (h *Handlers) HandleReport(c *fiber.Ctx) error {
	kind, err := gym.ParseReportKind(c.Params("kind"))
	if err != nil {
		return h.fail(c, fiber.StatusNotFound, err)
	}
	req := gym.ReportRequest{Kind: kind, Preset: gym.RangePreset(strings.ToLower(c.Query("range", string(gym.RangeMonth))))}
	if req.Preset == gym.RangeCustom {
		req.Custom, err = gym.ParseDateRange(c.Query("start"), c.Query("end"), h.location())
		if err != nil {
			return h.fail(c, fiber.StatusBadRequest, err)
		}
	}
	if _, err := gym.ResolveDateRange(req.Preset, h.now(), req.Custom); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	report, err := h.Report.Query(c.UserContext(), req)
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	if !strings.EqualFold(c.Query("format"), "csv") {
		return ok(c, fiber.StatusOK, report)
	}
	var buf bytes.Buffer
	if err := gym.ExportReport(&buf, report); err != nil {
		return h.fail(c, statusFor(err), err)
	}
	c.Attachment(gym.ReportFileName(kind, h.now()))
	c.Type("csv")
	return c.Send(buf.Bytes())
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().In(h.location())
}

func (h *Handlers) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.Local
}

func (h *Handlers) execute(c *fiber.Ctx, status int, err error) error {
	if err != nil {
		return h.fail(c, statusFor(err), err)
	}
	if status == fiber.StatusNoContent {
		return c.SendStatus(status)
	}
	return ok(c, status, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, status int, err error) error {
	evt := h.Logger.Warn()
	if status >= fiber.StatusInternalServerError {
		evt = h.Logger.Error()
	}
	evt.Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Msg("request failed")

	body := fiber.Map{"success": false, "message": err.Error()}
	var verr *gym.ValidationError
	if errors.As(err, &verr) {
		body["errors"] = verr.Fields
	}
	return c.Status(status).JSON(body)
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func createdOrOK(id string) int {
	if id == "" {
		return fiber.StatusCreated
	}
	return fiber.StatusOK
}

// statusFor maps service and backend errors onto HTTP statuses.
func statusFor(err error) int {
	var verr *gym.ValidationError
	var remote *api.Error
	switch {
	case errors.As(err, &verr), errors.Is(err, gym.ErrMissingID), errors.Is(err, gym.ErrNothingToExport):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, gym.ErrSubmitInProgress), errors.Is(err, gym.ErrFormBusy):
		return fiber.StatusConflict
	case errors.Is(err, api.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.As(err, &remote):
		if remote.Status >= 400 && remote.Status < 500 {
			return remote.Status
		}
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
