package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/config"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/attendance"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/notification"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/schedule"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/clocktime"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	schedule.ShiftScheduleRepository
	notificationService notification.NotificationService
	defaultShift        config.ShiftConfig
	now                 func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	shiftRepo schedule.ShiftScheduleRepository,
	notificationService notification.NotificationService,
	defaultShift config.ShiftConfig,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository:    attendanceRepo,
		ShiftScheduleRepository: shiftRepo,
		notificationService:     notificationService,
		defaultShift:            defaultShift,
		now:                     time.Now,
	}
}

func claimsFromContext(ctx context.Context) (workerID string, siteID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	workerID, ok := claims["worker_id"].(string)
	if !ok || workerID == "" {
		return "", "", fmt.Errorf("worker_id claim is missing or invalid")
	}

	siteID, ok = claims["site_id"].(string)
	if !ok || siteID == "" {
		return "", "", fmt.Errorf("site_id claim is missing or invalid")
	}

	return workerID, siteID, nil
}

// shiftFor returns the site's configured shift schedule, falling back to the
// service-wide default when the site has none.
func (a *AttendanceServiceImpl) shiftFor(ctx context.Context, siteID string) (schedule.ShiftSchedule, error) {
	shift, err := a.ShiftScheduleRepository.GetBySite(ctx, siteID)
	if err != nil {
		if errors.Is(err, schedule.ErrShiftScheduleNotFound) {
			return schedule.ShiftSchedule{
				SiteID:       siteID,
				ClockIn:      a.defaultShift.ClockIn,
				ClockOut:     a.defaultShift.ClockOut,
				GraceMinutes: a.defaultShift.GraceMinutes,
			}, nil
		}
		return schedule.ShiftSchedule{}, fmt.Errorf("failed to get shift schedule: %w", err)
	}
	return shift, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context) (attendance.RecordResponse, error) {
	workerID, siteID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := a.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	existing, err := a.AttendanceRepository.GetByWorkerAndDate(ctx, workerID, today, siteID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyClockedIn
	}

	shift, err := a.shiftFor(ctx, siteID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	clockIn := now.Format("15:04")

	// Status is derived at capture time only; later corrections are the
	// manager's judgment and are never re-derived.
	status, err := attendance.Classify(&clockIn, nil, shift)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to classify clock in: %w", err)
	}

	rec, err := a.AttendanceRepository.Create(ctx, attendance.Record{
		WorkerID:     workerID,
		SiteID:       siteID,
		Date:         today,
		ClockIn:      &clockIn,
		Status:       status,
		DisputeState: attendance.DisputeNone,
	})
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return attendance.ToResponse(rec), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context) (attendance.RecordResponse, error) {
	workerID, siteID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := a.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	rec, err := a.AttendanceRepository.GetByWorkerAndDate(ctx, workerID, today, siteID)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if rec == nil {
		return attendance.RecordResponse{}, attendance.ErrNotClockedIn
	}
	if rec.ClockOut != nil {
		return attendance.RecordResponse{}, attendance.ErrAlreadyClockedOut
	}

	shift, err := a.shiftFor(ctx, siteID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	clockOut := now.Format("15:04")

	status, err := attendance.Classify(rec.ClockIn, &clockOut, shift)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to classify clock out: %w", err)
	}

	if err := a.AttendanceRepository.SetClockOut(ctx, rec.ID, siteID, clockOut, status); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to set clock out: %w", err)
	}

	rec.ClockOut = &clockOut
	rec.Status = status
	return attendance.ToResponse(*rec), nil
}

// GetMyMonthlyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyMonthlyAttendance(ctx context.Context, filter attendance.MonthFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	workerID, siteID, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := a.AttendanceRepository.ListByMonth(ctx, workerID, filter.Year, filter.Month, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly attendance: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToResponse(rec))
	}
	return responses, nil
}

// ListMonthlyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListMonthlyAttendance(ctx context.Context, filter attendance.ListMonthFilter) ([]attendance.RecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	_, siteID, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := a.AttendanceRepository.ListMonth(ctx, filter.WorkerID, filter.Year, filter.Month, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly attendance: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.ToResponse(rec))
	}
	return responses, nil
}

// RaiseDispute implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RaiseDispute(ctx context.Context, req attendance.RaiseDisputeRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	workerID, siteID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, req.RecordID, siteID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.RecordResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	if rec.WorkerID != workerID {
		return attendance.RecordResponse{}, attendance.ErrNotRecordOwner
	}
	if rec.HasPendingDispute() {
		return attendance.RecordResponse{}, attendance.ErrDisputeAlreadyPending
	}

	// The store re-checks state and version; a concurrent raise loses here.
	updated, err := a.AttendanceRepository.MarkDisputePending(ctx, rec.ID, siteID, req.Message, rec.Version)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	// Best effort: the objection stands even if the manager feed write fails.
	workerName := workerID
	if rec.WorkerName != nil {
		workerName = *rec.WorkerName
	}
	if err := a.notificationService.NotifyDisputeRaised(ctx, siteID, rec.ID, workerName, rec.DateString()); err != nil {
		slog.Warn("failed to notify manager review queue", "record_id", rec.ID, "error", err)
	}

	updated.WorkerName = rec.WorkerName
	return attendance.ToResponse(updated), nil
}

// ResolveDispute implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ResolveDispute(ctx context.Context, req attendance.ResolveDisputeRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	// Normalize before touching the store; malformed entry rejects the whole
	// operation with the record untouched.
	clockIn, err := req.NormalizedClockIn()
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	clockOut, err := req.NormalizedClockOut()
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	_, siteID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, req.RecordID, siteID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.RecordResponse{}, attendance.ErrAttendanceNotFound
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	if !rec.HasPendingDispute() {
		return attendance.RecordResponse{}, attendance.ErrNoPendingDispute
	}

	// The corrected status is the manager's final judgment; it is stored
	// as-is, never re-derived from the corrected times.
	updated, err := a.AttendanceRepository.ResolveDispute(ctx, rec.ID, siteID, clockIn, clockOut, attendance.Status(req.Status), rec.Version)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	updated.WorkerName = rec.WorkerName
	return attendance.ToResponse(updated), nil
}

// ListPendingDisputes implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListPendingDisputes(ctx context.Context) ([]attendance.DisputeReviewResponse, error) {
	_, siteID, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := a.AttendanceRepository.ListPendingDisputes(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending disputes: %w", err)
	}

	shift, err := a.shiftFor(ctx, siteID)
	if err != nil {
		return nil, err
	}

	responses := make([]attendance.DisputeReviewResponse, 0, len(records))
	for _, rec := range records {
		// Suggested status pre-fills the correction form only.
		suggested, err := attendance.Classify(rec.ClockIn, rec.ClockOut, shift)
		if err != nil {
			suggested = rec.Status
		}

		responses = append(responses, attendance.DisputeReviewResponse{
			RecordResponse:  attendance.ToResponse(rec),
			SuggestedStatus: suggested,
			ClockInEntry:    toTimeEntry(rec.ClockIn),
			ClockOutEntry:   toTimeEntry(rec.ClockOut),
		})
	}
	return responses, nil
}

// toTimeEntry converts a stored canonical time to the 12-hour edit-form
// shape, or nil when the record has no time on that side.
func toTimeEntry(canonical *string) *attendance.TimeEntry {
	if canonical == nil {
		return nil
	}
	period, clockFace, err := clocktime.ToDisplay(*canonical)
	if err != nil {
		return nil
	}
	return &attendance.TimeEntry{
		Period:      string(period),
		PeriodLabel: period.Label(),
		ClockFace:   clockFace,
	}
}
