package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/attendance"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/handler/http/response"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	RaiseDispute(w http.ResponseWriter, r *http.Request)
	ResolveDispute(w http.ResponseWriter, r *http.Request)
	ListDisputes(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// monthFromQuery reads year/month query params, defaulting to the current
// reporting month when absent. Non-numeric values are a validation error, not
// a fallback.
func monthFromQuery(r *http.Request) (int, int, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	var errs validator.ValidationErrors
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "year",
				Message: "year must be a number",
			})
		} else {
			year = parsed
		}
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "month must be a number",
			})
		} else {
			month = parsed
		}
	}
	if len(errs) > 0 {
		return 0, 0, errs
	}
	return year, month, nil
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ClockIn(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ClockOut(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	results, err := h.attendanceService.GetMyMonthlyAttendance(r.Context(), attendance.MonthFilter{
		Year:  year,
		Month: month,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := attendance.ListMonthFilter{Year: year, Month: month}
	if workerID := r.URL.Query().Get("worker_id"); workerID != "" {
		filter.WorkerID = &workerID
	}

	results, err := h.attendanceService.ListMonthlyAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// RaiseDispute implements AttendanceHandler.
func (h *attendanceHandlerImpl) RaiseDispute(w http.ResponseWriter, r *http.Request) {
	var req attendance.RaiseDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RecordID = chi.URLParam(r, "id")

	result, err := h.attendanceService.RaiseDispute(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Objection submitted", result)
}

// ResolveDispute implements AttendanceHandler.
func (h *attendanceHandlerImpl) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	var req attendance.ResolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RecordID = chi.URLParam(r, "id")

	result, err := h.attendanceService.ResolveDispute(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Objection resolved", result)
}

// ListDisputes implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListDisputes(w http.ResponseWriter, r *http.Request) {
	results, err := h.attendanceService.ListPendingDisputes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}
