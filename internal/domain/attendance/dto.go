package attendance

import (
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/clocktime"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type RecordResponse struct {
	ID             string  `json:"id"`
	WorkerID       string  `json:"worker_id"`
	WorkerName     *string `json:"worker_name,omitempty"`
	Date           string  `json:"date"`
	ClockIn        *string `json:"clock_in,omitempty"`
	ClockOut       *string `json:"clock_out,omitempty"`
	Status         Status  `json:"status"`
	StatusLabel    string  `json:"status_label"`
	DisputeState   string  `json:"dispute_state"`
	DisputeMessage *string `json:"dispute_message,omitempty"`
	Version        int     `json:"version"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// ToResponse maps a Record entity to its API shape.
func ToResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:             rec.ID,
		WorkerID:       rec.WorkerID,
		WorkerName:     rec.WorkerName,
		Date:           rec.DateString(),
		ClockIn:        rec.ClockIn,
		ClockOut:       rec.ClockOut,
		Status:         rec.Status,
		StatusLabel:    rec.Status.Label(),
		DisputeState:   string(rec.DisputeState),
		DisputeMessage: rec.DisputeMessage,
		Version:        rec.Version,
		CreatedAt:      rec.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:      rec.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// TimeEntry is the 12-hour edit-form shape of one clock time, produced by the
// normalizer's display direction.
type TimeEntry struct {
	Period      string `json:"period"`
	PeriodLabel string `json:"period_label"`
	ClockFace   string `json:"clock_face"`
}

// DisputeReviewResponse is one row of the manager's pending-review list. The
// suggested status comes from the classifier and only pre-fills the form; the
// manager's final choice is taken as-is.
type DisputeReviewResponse struct {
	RecordResponse
	SuggestedStatus Status     `json:"suggested_status"`
	ClockInEntry    *TimeEntry `json:"clock_in_entry,omitempty"`
	ClockOutEntry   *TimeEntry `json:"clock_out_entry,omitempty"`
}

type MonthFilter struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (f *MonthFilter) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(f.Year, f.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "year must be 2000-2100 and month 1-12",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListMonthFilter is the manager variant of MonthFilter with an optional
// worker scope.
type ListMonthFilter struct {
	WorkerID *string `json:"worker_id,omitempty"`
	Year     int     `json:"year"`
	Month    int     `json:"month"`
}

func (f *ListMonthFilter) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(f.Year, f.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "year must be 2000-2100 and month 1-12",
		})
	}

	if f.WorkerID != nil && !validator.IsValidUUID(*f.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RaiseDisputeRequest struct {
	RecordID string `json:"-"`
	Message  string `json:"message"`
}

func (r *RaiseDisputeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Message) {
		errs = append(errs, validator.ValidationError{
			Field:   "message",
			Message: "objection message is required",
		})
	} else if len(r.Message) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "message",
			Message: "objection message must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ResolveDisputeRequest carries the manager's correction. Clock times arrive
// as (period, clock face) entry pairs; a nil clock face means the corrected
// record has no clock time on that side. A missing period means the face is
// already canonical.
type ResolveDisputeRequest struct {
	RecordID       string  `json:"-"`
	ClockInPeriod  *string `json:"clock_in_period,omitempty"`
	ClockIn        *string `json:"clock_in,omitempty"`
	ClockOutPeriod *string `json:"clock_out_period,omitempty"`
	ClockOut       *string `json:"clock_out,omitempty"`
	Status         string  `json:"status"`
}

func (r *ResolveDisputeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Status(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: PRESENT, LATE, EARLY_LEAVE, ABSENT",
		})
	}

	if r.ClockInPeriod != nil && r.ClockIn == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_in",
			Message: "clock_in is required when clock_in_period is set",
		})
	}

	if r.ClockOutPeriod != nil && r.ClockOut == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "clock_out",
			Message: "clock_out is required when clock_out_period is set",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// NormalizedClockIn runs the clock-in entry through the time normalizer and
// returns the canonical form, or nil when absent. Malformed entry fails with
// the normalizer's ErrInvalidTimeFormat; it is never coerced.
func (r *ResolveDisputeRequest) NormalizedClockIn() (*string, error) {
	return normalizeEntry(r.ClockInPeriod, r.ClockIn)
}

// NormalizedClockOut is the clock-out counterpart of NormalizedClockIn.
func (r *ResolveDisputeRequest) NormalizedClockOut() (*string, error) {
	return normalizeEntry(r.ClockOutPeriod, r.ClockOut)
}

func normalizeEntry(period, clockFace *string) (*string, error) {
	if clockFace == nil {
		return nil, nil
	}
	if period == nil {
		canonical, err := clocktime.Canonicalize(*clockFace)
		if err != nil {
			return nil, err
		}
		return &canonical, nil
	}
	m, err := clocktime.ParseMeridiem(*period)
	if err != nil {
		return nil, err
	}
	canonical, err := clocktime.ToCanonical(m, *clockFace)
	if err != nil {
		return nil, err
	}
	return &canonical, nil
}
