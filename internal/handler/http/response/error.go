package response

import (
	"errors"
	"net/http"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/attendance"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/notification"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/schedule"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/worker"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/clocktime"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance capture
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "Already clocked in today")
	case errors.Is(err, attendance.ErrNotClockedIn):
		BadRequest(w, "No clock-in record for today", nil)
	case errors.Is(err, attendance.ErrAlreadyClockedOut):
		Conflict(w, "Already clocked out today")

	// Dispute lifecycle
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNotRecordOwner):
		Forbidden(w, "Cannot dispute another worker's record")
	case errors.Is(err, attendance.ErrDisputeAlreadyPending):
		Conflict(w, "An objection is already pending on this record")
	case errors.Is(err, attendance.ErrNoPendingDispute):
		Conflict(w, "No pending objection on this record")
	case errors.Is(err, attendance.ErrStaleRecordConflict):
		Conflict(w, "Record was modified by someone else; reload and retry")

	// Time normalization
	case errors.Is(err, clocktime.ErrInvalidTimeFormat):
		ValidationError(w, map[string]string{"time": "time must be HH:MM with a valid AM/PM period"})

	// Other domains
	case errors.Is(err, worker.ErrWorkerNotFound):
		NotFound(w, "Worker not found")
	case errors.Is(err, schedule.ErrShiftScheduleNotFound):
		NotFound(w, "Shift schedule not found")
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
