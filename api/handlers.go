/*
handlers.go - HTTP API handlers for attendance

PURPOSE:
  Exposes the check-in and balance workflows via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to package studio.

ENDPOINTS:
  GET  /api/attendance/getAttendance?checkinId=      Single record
  GET  /api/attendance/getAttendanceRecords          Enriched listing
  POST /api/attendance/checkin                       Check in, spend a credit
  PUT  /api/attendance/updateStatus                  Set status, no balance effect
  PUT  /api/attendance/cancelCheckin                 Cancel, maybe restore a credit
  GET  /api/attendance/getCustomerHistory?customerId=
  GET  /api/attendance/getClassAttendance?classId=&date=
  GET  /api/attendance/getStats?startDate=&endDate=

REQUEST FLOW:
  1. Parse HTTP request
  2. Call the studio.Service workflow
  3. Serialize response
  4. Map errors to status codes

ERROR HANDLING:
  - 400: Validation errors, no balance, already cancelled, duplicate key
  - 404: Record not found (check-in itself answers 400, as the UI expects)
  - 500: Storage failures

  The UI reads {message} on some routes and {error} on others; each
  handler writes the key its route has always used.

SECURITY NOTE:
  No authentication. Only the admin seed route is guarded (admin.go).

SEE ALSO:
  - dto.go: Request/response data structures
  - entities.go: Customer/class/instructor/package handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yogitrack/studio/config"
	"github.com/yogitrack/studio/studio"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc     *studio.Service
	cfg     config.Config
	log     logrus.FieldLogger
	metrics *Metrics
}

// NewHandler creates a handler. metrics may be nil.
func NewHandler(svc *studio.Service, cfg config.Config, log logrus.FieldLogger, metrics *Metrics) *Handler {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Handler{svc: svc, cfg: cfg, log: log, metrics: metrics}
}

var validate = validator.New()

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// GetAttendance returns one record.
// GET /api/attendance/getAttendance?checkinId=
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := queryCheckinID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}
	a, err := h.svc.GetAttendance(r.Context(), id)
	if err != nil {
		writeError(w, statusFor(err), "", err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTO(*a))
}

// GetAttendanceRecords lists records, newest first, with display names.
// GET /api/attendance/getAttendanceRecords?customerId=&classId=&date=&status=
func (h *Handler) GetAttendanceRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := studio.AttendanceFilter{
		CustomerID: q.Get("customerId"),
		ClassID:    q.Get("classId"),
		Date:       q.Get("date"),
		Status:     studio.Status(q.Get("status")),
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(w, http.StatusBadRequest, "", errors.New(studio.MsgInvalidStatus))
		return
	}

	rows, err := h.svc.Records(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	dtos := make([]AttendanceRecordDTO, len(rows))
	for i, e := range rows {
		dtos[i] = AttendanceRecordDTO{
			AttendanceDTO:   toAttendanceDTO(e.Attendance),
			CustomerName:    e.CustomerName,
			CustomerBalance: e.CustomerBalance,
			ClassName:       e.ClassName,
			InstructorName:  e.InstructorName,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CheckIn records attendance and spends one class credit.
// POST /api/attendance/checkin
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.svc.CheckIn(r.Context(), studio.CheckinInput{
		CustomerID: req.CustomerID,
		ClassID:    req.ClassID,
		Datetime:   req.Datetime,
	})
	if err != nil {
		if studio.IsClientError(err) {
			writeError(w, http.StatusBadRequest, clientMessage(err), nil)
			return
		}
		h.log.WithError(err).WithField("customer_id", req.CustomerID).Error("check-in failed")
		writeError(w, http.StatusInternalServerError, "Failed to check in", err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckinResponse{
		Message:          "Check-in successful",
		Attendance:       toAttendanceDTO(res.Attendance),
		RemainingBalance: res.RemainingBalance,
	})
}

// UpdateStatus sets a record's status. Balances are not touched.
// PUT /api/attendance/updateStatus
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	a, err := h.svc.UpdateStatus(r.Context(), studio.CheckinID(req.CheckinID), studio.Status(req.Status))
	if err != nil {
		writeError(w, statusFor(err), "", errors.New(clientMessage(err)))
		return
	}

	writeJSON(w, http.StatusOK, UpdateStatusResponse{
		Message:    "Attendance status updated",
		Attendance: toAttendanceDTO(*a),
	})
}

// CancelCheckin cancels a record and restores the credit it consumed.
// PUT /api/attendance/cancelCheckin
func (h *Handler) CancelCheckin(w http.ResponseWriter, r *http.Request) {
	var req CancelCheckinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	res, err := h.svc.Cancel(r.Context(), studio.CheckinID(req.CheckinID))
	switch {
	case err == nil:
	case errors.Is(err, studio.ErrAlreadyCancelled), errors.Is(err, studio.ErrValidation):
		writeError(w, http.StatusBadRequest, clientMessage(err), nil)
		return
	case studio.IsNotFound(err):
		writeError(w, http.StatusNotFound, "", err)
		return
	default:
		h.log.WithError(err).WithField("checkin_id", req.CheckinID).Error("cancel failed")
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}

	msg := "Check-in cancelled"
	if res.BalanceRestored {
		msg = "Check-in cancelled and balance restored"
	}
	writeJSON(w, http.StatusOK, CancelCheckinResponse{
		Message:         msg,
		BalanceRestored: res.BalanceRestored,
		Attendance:      toAttendanceDTO(res.Attendance),
	})
}

// GetCustomerHistory lists a customer's records, latest date first.
// GET /api/attendance/getCustomerHistory?customerId=
func (h *Handler) GetCustomerHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.CustomerHistory(r.Context(), r.URL.Query().Get("customerId"))
	if err != nil {
		if errors.Is(err, studio.ErrValidation) {
			writeError(w, http.StatusBadRequest, clientMessage(err), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}

	dtos := make([]CustomerHistoryDTO, len(rows))
	for i, e := range rows {
		dtos[i] = CustomerHistoryDTO{
			AttendanceDTO:  toAttendanceDTO(e.Attendance),
			ClassName:      e.ClassName,
			InstructorName: e.InstructorName,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClassAttendance lists who attended a class, optionally on one date.
// GET /api/attendance/getClassAttendance?classId=&date=
func (h *Handler) GetClassAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.svc.ClassAttendance(r.Context(), q.Get("classId"), q.Get("date"))
	if err != nil {
		if errors.Is(err, studio.ErrValidation) {
			writeError(w, http.StatusBadRequest, clientMessage(err), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}

	dtos := make([]ClassAttendanceDTO, len(rows))
	for i, e := range rows {
		dtos[i] = ClassAttendanceDTO{
			AttendanceDTO: toAttendanceDTO(e.Attendance),
			CustomerName:  e.CustomerName,
			CustomerPhone: e.CustomerPhone,
			CustomerEmail: e.CustomerEmail,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStats reports totals and the most popular classes.
// GET /api/attendance/getStats?startDate=&endDate=
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.svc.Stats(r.Context(), studio.StatsQuery{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	})
	if err != nil {
		h.log.WithError(err).Error("stats failed")
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes {message} when message is set and {error} when err is.
func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// decodeJSON decodes the request body into v. An empty body leaves v zero.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// statusFor maps a studio error to an HTTP status.
func statusFor(err error) int {
	switch {
	case studio.IsNotFound(err):
		return http.StatusNotFound
	case studio.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the user-facing text of err, without field hints.
func clientMessage(err error) string {
	var ve *studio.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var nf *studio.NotFoundError
	if errors.As(err, &nf) {
		return nf.Message
	}
	return err.Error()
}

func queryCheckinID(r *http.Request) (studio.CheckinID, error) {
	raw := r.URL.Query().Get("checkinId")
	if raw == "" {
		return 0, errors.New(studio.MsgMissingFields)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("checkinId must be an integer")
	}
	return studio.CheckinID(n), nil
}
