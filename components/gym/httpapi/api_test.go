package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-gymdesk/components/gym"
	"github.com/goliatone/go-gymdesk/components/gym/queries"
	"github.com/goliatone/go-gymdesk/pkg/api"
)

type stubPage struct {
	calls int
}

func (s *stubPage) RenderTemplate(_ context.Context, out io.Writer) error {
	s.calls++
	_, err := io.WriteString(out, "<html>gym</html>")
	return err
}

type failingQuerier[I, O any] struct {
	err error
}

func (f failingQuerier[I, O]) Query(context.Context, I) (O, error) {
	var zero O
	return zero, f.err
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

func newTestApp(t *testing.T) (*fiber.App, *Handlers, *api.MockClient, *stubPage) {
	t.Helper()
	return newTestAppWith(t, gym.Options{})
}

func newTestAppWith(t *testing.T, opts gym.Options) (*fiber.App, *Handlers, *api.MockClient, *stubPage) {
	t.Helper()
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	mock := api.NewMockClient(api.DemoData(now)).WithClock(clock)
	opts.Backend, opts.Now, opts.Location = mock, clock, time.UTC
	service := gym.NewService(opts)
	page := &stubPage{}
	handlers := NewHandlers(service, page, nil, nil, zerolog.Nop())
	app := fiber.New()
	handlers.Register(app)
	return app, handlers, mock, page
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Data = raw
	}
	return resp, env
}

func TestHandleAttendanceStats(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, env := doRequest(t, app, http.MethodGet, "/api/stats/attendance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var stats gym.AttendanceStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.CurrentlyIn)
	assert.Equal(t, 2, stats.CheckedOut)
	assert.Equal(t, "1h 15m", stats.AvgDuration)
}

func TestHandleCheckInInvalidatesStats(t *testing.T) {
	app, _, mock, _ := newTestApp(t)

	_, _ = doRequest(t, app, http.MethodGet, "/api/stats/attendance", nil)
	resp, env := doRequest(t, app, http.MethodPost, "/api/attendance/checkin", map[string]string{"memberId": "member-6"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	_, env = doRequest(t, app, http.MethodGet, "/api/stats/attendance", nil)
	var stats gym.AttendanceStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, mock.Calls("TodayAttendance"))
}

func TestHandleCheckInRejectedByBackend(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, env := doRequest(t, app, http.MethodPost, "/api/attendance/checkin", map[string]string{"memberId": "member-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "already checked in")
}

func TestHandleCheckOutRequiresID(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/attendance/checkout", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleSaveMemberValidation(t *testing.T) {
	app, _, mock, _ := newTestApp(t)

	resp, env := doRequest(t, app, http.MethodPost, "/api/members", map[string]any{"phone": "555"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "fullName")
	assert.Zero(t, mock.Calls("CreateMember"))

	resp, env = doRequest(t, app, http.MethodPost, "/api/members", map[string]any{
		"fullName":    "Ann Lee",
		"phone":       "555",
		"currentPlan": "plan-basic",
		"payment":     map[string]any{"months": 1, "amount": 1000, "fullPayment": 400},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.Equal(t, 1, mock.Calls("CreateMember"))
}

func TestHandleSaveMemberRequiresTrainerWhenConfigured(t *testing.T) {
	app, _, mock, _ := newTestAppWith(t, gym.Options{RequireTrainer: true})
	member := map[string]any{
		"fullName":    "Ann Lee",
		"phone":       "555",
		"currentPlan": "plan-basic",
		"payment":     map[string]any{"months": 1, "amount": 1000},
	}

	resp, env := doRequest(t, app, http.MethodPost, "/api/members", member)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Errors, "assignedTrainer")
	assert.Zero(t, mock.Calls("CreateMember"))

	member["assignedTrainer"] = "trainer-1"
	resp, env = doRequest(t, app, http.MethodPost, "/api/members", member)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.Equal(t, 1, mock.Calls("CreateMember"))
}

func TestHandleDelete(t *testing.T) {
	app, _, mock, _ := newTestApp(t)

	resp, _ := doRequest(t, app, http.MethodDelete, "/api/plans/plan-trial", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, mock.Calls("DeletePlan"))

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/lockers/l1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/plans/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleMarkPaid(t *testing.T) {
	app, _, mock, _ := newTestApp(t)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/payments/payment-4/paid", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, mock.Calls("MarkPaymentPaid"))
}

func TestHandleSearchShortTerm(t *testing.T) {
	app, _, mock, _ := newTestApp(t)

	resp, env := doRequest(t, app, http.MethodGet, "/api/checkin/search?q=p", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Zero(t, mock.Calls("ListMembers"))

	_, env = doRequest(t, app, http.MethodGet, "/api/checkin/search?q=priya", nil)
	var members []gym.Member
	require.NoError(t, json.Unmarshal(env.Data, &members))
	require.Len(t, members, 1)
	assert.Equal(t, "Priya Shah", members[0].FullName)
}

func TestHandleMembersRejectsBadLimit(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/members?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleReportCSV(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, env := doRequest(t, app, http.MethodGet, "/api/reports/plans?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "plans_report_2024-05-01.csv")
	body := string(env.Data)
	assert.True(t, strings.HasPrefix(body, "Plan Name,Price,Duration"), body)
	assert.Contains(t, body, "Basic")
}

func TestHandleReportErrors(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/reports/bogus", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/reports/members?range=custom&start=2024-05-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/reports/members?range=custom&start=2024-05-01&end=2024-04-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/reports/members?range=decade", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleDashboardRendersPage(t *testing.T) {
	app, _, _, page := newTestApp(t)

	resp, env := doRequest(t, app, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>gym</html>", string(env.Data))
	assert.Equal(t, 1, page.calls)
}

func TestHandleChartsRenderHTML(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	resp, env := doRequest(t, app, http.MethodGet, "/api/charts/attendance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(env.Data), "Check-ins by hour")
}

func TestUnauthorizedBackendMapsTo401(t *testing.T) {
	app, handlers, _, _ := newTestApp(t)
	handlers.Summary = failingQuerier[queries.StatsInput, gym.DashboardSummary]{err: api.ErrUnauthorized}

	resp, env := doRequest(t, app, http.MethodGet, "/api/summary", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
}
