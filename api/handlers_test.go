/*
handlers_test.go - HTTP tests for the attendance routes

Every test runs against the demo data in an in-memory store, through the
full router (middleware included).
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogitrack/studio/config"
	"github.com/yogitrack/studio/seed"
	"github.com/yogitrack/studio/studio"
	"github.com/yogitrack/studio/studio/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type testServer struct {
	router  http.Handler
	store   *store.TxMemory
	metrics *Metrics
}

func testConfig() config.Config {
	return config.Config{
		Port:        8080,
		DBPath:      ":memory:",
		AppEnv:      "test",
		CORSOrigins: []string{"*"},
	}
}

func newTestServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()
	mem := store.NewTxMemory()
	data, err := seed.Demo()
	require.NoError(t, err)
	_, err = seed.Load(context.Background(), mem, data, seed.ModuleAll, nil)
	require.NoError(t, err)

	metrics := NewMetrics()
	svc := studio.NewService(mem,
		studio.WithClock(func() time.Time { return time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC) }),
		studio.WithRetry(2, time.Millisecond, 2*time.Millisecond),
		studio.WithHooks(metrics.Hooks()),
	)
	h := NewHandler(svc, cfg, nil, metrics)
	return &testServer{router: NewRouter(h), store: mem, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) balance(t *testing.T, customerID string) int {
	t.Helper()
	c, err := s.store.GetCustomer(context.Background(), customerID)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.ClassBalance
}

// =============================================================================
// CHECK-IN
// =============================================================================

func TestCheckIn_Success(t *testing.T) {
	srv := newTestServer(t, testConfig())

	// WHEN: Y001 (balance 2) checks into A001
	rec := srv.do(t, http.MethodPost, "/api/attendance/checkin", CheckinRequest{
		CustomerID: "Y001", ClassID: "A001", Datetime: "2025-07-02",
	})

	// THEN: 201 with the new record and the remaining balance
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[CheckinResponse](t, rec)
	assert.Equal(t, "Check-in successful", resp.Message)
	assert.Equal(t, int64(12), resp.Attendance.CheckinID)
	assert.Equal(t, "checked-in", resp.Attendance.Status)
	assert.Equal(t, "2025-07-02", resp.Attendance.Datetime)
	assert.Equal(t, 1, resp.RemainingBalance)
	assert.Equal(t, 1, srv.balance(t, "Y001"))
}

func TestCheckIn_DefaultsDateToToday(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodPost, "/api/attendance/checkin", CheckinRequest{CustomerID: "Y002", ClassID: "A002"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "2025-07-01", decode[CheckinResponse](t, rec).Attendance.Datetime)
}

func TestCheckIn_ClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    CheckinRequest
		message string
	}{
		{"missing class", CheckinRequest{CustomerID: "Y001"}, studio.MsgMissingFields},
		{"unknown customer", CheckinRequest{CustomerID: "Y999", ClassID: "A001"}, studio.MsgCustomerNotFound},
		{"unknown class", CheckinRequest{CustomerID: "Y001", ClassID: "A999"}, studio.MsgClassNotFound},
		{"no balance", CheckinRequest{CustomerID: "Y004", ClassID: "A001"}, studio.MsgNoBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, testConfig())

			rec := srv.do(t, http.MethodPost, "/api/attendance/checkin", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decode[ErrorResponse](t, rec).Message)
			all, err := srv.store.FindAttendance(context.Background(), studio.AttendanceFilter{})
			require.NoError(t, err)
			assert.Len(t, all, 11, "ledger unchanged")
		})
	}
}

func TestCheckIn_MalformedBody(t *testing.T) {
	srv := newTestServer(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/attendance/checkin", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()

	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// CANCEL / UPDATE STATUS
// =============================================================================

func TestCancelCheckin_RestoresThenRejectsSecondCancel(t *testing.T) {
	srv := newTestServer(t, testConfig())

	// GIVEN: record 1 is Y001 checked-in, Y001 has 2 credits
	// WHEN: cancelling it
	rec := srv.do(t, http.MethodPut, "/api/attendance/cancelCheckin", map[string]any{"checkinId": 1})

	// THEN: the credit comes back
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[CancelCheckinResponse](t, rec)
	assert.Equal(t, "Check-in cancelled and balance restored", resp.Message)
	assert.True(t, resp.BalanceRestored)
	assert.Equal(t, "cancelled", resp.Attendance.Status)
	assert.Equal(t, 3, srv.balance(t, "Y001"))

	// AND: a second cancel is refused without touching the balance
	rec = srv.do(t, http.MethodPut, "/api/attendance/cancelCheckin", map[string]any{"checkinId": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, studio.MsgAlreadyCancelled, decode[ErrorResponse](t, rec).Message)
	assert.Equal(t, 3, srv.balance(t, "Y001"))
}

func TestCancelCheckin_NoShowKeepsBalance(t *testing.T) {
	srv := newTestServer(t, testConfig())

	// record 5 is a no-show for Y005; the id arrives as a string
	rec := srv.do(t, http.MethodPut, "/api/attendance/cancelCheckin", map[string]any{"checkinId": "5"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CancelCheckinResponse](t, rec)
	assert.Equal(t, "Check-in cancelled", resp.Message)
	assert.False(t, resp.BalanceRestored)
	assert.Equal(t, 12, srv.balance(t, "Y005"))
}

func TestCancelCheckin_NotFound(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodPut, "/api/attendance/cancelCheckin", map[string]any{"checkinId": 999})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, studio.MsgAttendanceNotFound, decode[ErrorResponse](t, rec).Error)
}

func TestUpdateStatus(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodPut, "/api/attendance/updateStatus", map[string]any{"checkinId": 3, "status": "no-show"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[UpdateStatusResponse](t, rec)
	assert.Equal(t, "Attendance status updated", resp.Message)
	assert.Equal(t, "no-show", resp.Attendance.Status)
	assert.Equal(t, 9, srv.balance(t, "Y002"), "status changes never move credits")

	rec = srv.do(t, http.MethodPut, "/api/attendance/updateStatus", map[string]any{"checkinId": 3, "status": "late"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, studio.MsgInvalidStatus, decode[ErrorResponse](t, rec).Error)

	rec = srv.do(t, http.MethodPut, "/api/attendance/updateStatus", map[string]any{"checkinId": 404, "status": "cancelled"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, studio.MsgAttendanceNotFound, decode[ErrorResponse](t, rec).Error)
}

// =============================================================================
// READS AND REPORTS
// =============================================================================

func TestGetAttendance(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/attendance/getAttendance?checkinId=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	a := decode[AttendanceDTO](t, rec)
	assert.Equal(t, "Y003", a.CustomerID)
	assert.Equal(t, "cancelled", a.Status)

	rec = srv.do(t, http.MethodGet, "/api/attendance/getAttendance?checkinId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAttendanceRecords_Enriched(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/attendance/getAttendanceRecords", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]AttendanceRecordDTO](t, rec)
	require.Len(t, rows, 11)
	assert.Equal(t, int64(11), rows[0].CheckinID, "newest first")
	assert.Equal(t, "Sam Smith", rows[0].CustomerName)
	assert.Equal(t, 9, rows[0].CustomerBalance)
	assert.Equal(t, "Yoga with Weights", rows[0].ClassName)
	assert.Equal(t, "Jane Lee", rows[0].InstructorName)

	rec = srv.do(t, http.MethodGet, "/api/attendance/getAttendanceRecords?status=no-show", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]AttendanceRecordDTO](t, rec), 2)
}

func TestGetCustomerHistory(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/attendance/getCustomerHistory?customerId=Y100", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]CustomerHistoryDTO](t, rec)
	require.Len(t, rows, 5)
	assert.Equal(t, "2025-06-29", rows[0].Datetime, "latest date first")
	assert.Equal(t, "Tour Class", rows[0].ClassName)
	assert.Equal(t, "Tour Teacher", rows[0].InstructorName)

	rec = srv.do(t, http.MethodGet, "/api/attendance/getCustomerHistory", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, studio.MsgMissingFields, decode[ErrorResponse](t, rec).Message)
}

func TestGetClassAttendance(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/attendance/getClassAttendance?classId=A002", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]ClassAttendanceDTO](t, rec)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-10-12", rows[0].Datetime)
	assert.Equal(t, "Sam Smith", rows[0].CustomerName)
	assert.Equal(t, "234-567-8900", rows[0].CustomerPhone)
	assert.Equal(t, "sam@yoga.com", rows[0].CustomerEmail)

	rec = srv.do(t, http.MethodGet, "/api/attendance/getClassAttendance?classId=A002&date=2025-05-07", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows = decode[[]ClassAttendanceDTO](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sara Doe", rows[0].CustomerName)
}

func TestGetStats(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/api/attendance/getStats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[StatsDTO](t, rec)
	assert.Equal(t, 7, stats.TotalCheckins)
	assert.Equal(t, 2, stats.TotalCancellations)
	assert.Equal(t, 2, stats.TotalNoShows)
	require.Len(t, stats.PopularClasses, 3)
	assert.Equal(t, PopularClassDTO{ClassID: "A002", ClassName: "Yoga with Weights", AttendanceCount: 3}, stats.PopularClasses[0])

	// June only: the tour records
	rec = srv.do(t, http.MethodGet, "/api/attendance/getStats?startDate=2025-06-01&endDate=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats = decode[StatsDTO](t, rec)
	assert.Equal(t, 3, stats.TotalCheckins)
	assert.Equal(t, 1, stats.TotalCancellations)
	assert.Equal(t, 1, stats.TotalNoShows)

	// a lone bound does not filter
	rec = srv.do(t, http.MethodGet, "/api/attendance/getStats?startDate=2025-06-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats = decode[StatsDTO](t, rec)
	assert.Equal(t, 7, stats.TotalCheckins)
	assert.Equal(t, 2, stats.TotalCancellations)
	assert.Equal(t, 2, stats.TotalNoShows)

	rec = srv.do(t, http.MethodGet, "/api/attendance/getStats?startDate=June", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// METRICS / HEALTH
// =============================================================================

func TestMetrics_CountOutcomesAndRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig())
	srv.do(t, http.MethodPost, "/api/attendance/checkin", CheckinRequest{CustomerID: "Y001", ClassID: "A001"})
	srv.do(t, http.MethodPost, "/api/attendance/checkin", CheckinRequest{CustomerID: "Y004", ClassID: "A001"})
	srv.do(t, http.MethodPut, "/api/attendance/cancelCheckin", map[string]any{"checkinId": 1})

	rec := srv.do(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `yogitrack_checkins_total{outcome="success"} 1`)
	assert.Contains(t, body, `yogitrack_checkins_total{outcome="no_balance"} 1`)
	assert.Contains(t, body, `yogitrack_cancellations_total{outcome="restored"} 1`)
	assert.Contains(t, body, `route="/api/attendance/checkin"`)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := srv.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
