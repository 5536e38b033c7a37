package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/attendance"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.worker_id, a.site_id, a.date, a.clock_in, a.clock_out,
	a.status, a.dispute_state, a.dispute_message, a.version,
	a.created_at, a.updated_at
`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.WorkerID, &rec.SiteID, &rec.Date, &rec.ClockIn, &rec.ClockOut,
		&rec.Status, &rec.DisputeState, &rec.DisputeMessage, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.DisputeState == "" {
		rec.DisputeState = attendance.DisputeNone
	}

	query := `
		INSERT INTO attendance_records (
			id, worker_id, site_id, date, clock_in, clock_out,
			status, dispute_state, dispute_message
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.WorkerID,
		rec.SiteID,
		rec.Date,
		rec.ClockIn,
		rec.ClockOut,
		rec.Status,
		rec.DisputeState,
		rec.DisputeMessage,
	).Scan(&rec.Version, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, siteID string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `, w.name AS worker_name
		FROM attendance_records a
		LEFT JOIN workers w ON w.id = a.worker_id
		WHERE a.id = $1 AND a.site_id = $2
	`

	var rec attendance.Record
	err := q.QueryRow(ctx, query, id, siteID).Scan(
		&rec.ID, &rec.WorkerID, &rec.SiteID, &rec.Date, &rec.ClockIn, &rec.ClockOut,
		&rec.Status, &rec.DisputeState, &rec.DisputeMessage, &rec.Version,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.WorkerName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record by ID: %w", err)
	}

	return rec, nil
}

// GetByWorkerAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByWorkerAndDate(ctx context.Context, workerID string, date time.Time, siteID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		WHERE a.worker_id = $1 AND a.date = $2 AND a.site_id = $3
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, workerID, date, siteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by worker and date: %w", err)
	}

	return &rec, nil
}

// SetClockOut implements attendance.AttendanceRepository.
func (a *attendanceRepository) SetClockOut(ctx context.Context, id string, siteID string, clockOut string, status attendance.Status) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET clock_out = $3, status = $4, updated_at = NOW()
		WHERE id = $1 AND site_id = $2
		RETURNING id
	`

	var updatedID string
	if err := q.QueryRow(ctx, query, id, siteID, clockOut, status).Scan(&updatedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to set clock out: %w", err)
	}

	return nil
}

// ListByMonth implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByMonth(ctx context.Context, workerID string, year int, month int, siteID string) ([]attendance.Record, error) {
	return a.listMonth(ctx, &workerID, year, month, siteID)
}

// ListMonth implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListMonth(ctx context.Context, workerID *string, year int, month int, siteID string) ([]attendance.Record, error) {
	return a.listMonth(ctx, workerID, year, month, siteID)
}

func (a *attendanceRepository) listMonth(ctx context.Context, workerID *string, year int, month int, siteID string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	baseWhere := "a.site_id = $1 AND a.date >= $2 AND a.date < $3"
	args := []interface{}{siteID, monthStart, monthEnd}
	if workerID != nil {
		baseWhere += " AND a.worker_id = $4"
		args = append(args, *workerID)
	}

	query := `
		SELECT ` + attendanceColumns + `, w.name AS worker_name
		FROM attendance_records a
		LEFT JOIN workers w ON w.id = a.worker_id
		WHERE ` + baseWhere + `
		ORDER BY a.date DESC, w.name ASC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly attendance: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		err := rows.Scan(
			&rec.ID, &rec.WorkerID, &rec.SiteID, &rec.Date, &rec.ClockIn, &rec.ClockOut,
			&rec.Status, &rec.DisputeState, &rec.DisputeMessage, &rec.Version,
			&rec.CreatedAt, &rec.UpdatedAt,
			&rec.WorkerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// ListPendingDisputes implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListPendingDisputes(ctx context.Context, siteID string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `, w.name AS worker_name
		FROM attendance_records a
		LEFT JOIN workers w ON w.id = a.worker_id
		WHERE a.site_id = $1 AND a.dispute_state = 'PENDING'
		ORDER BY a.updated_at ASC
	`

	rows, err := q.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending disputes: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var rec attendance.Record
		err := rows.Scan(
			&rec.ID, &rec.WorkerID, &rec.SiteID, &rec.Date, &rec.ClockIn, &rec.ClockOut,
			&rec.Status, &rec.DisputeState, &rec.DisputeMessage, &rec.Version,
			&rec.CreatedAt, &rec.UpdatedAt,
			&rec.WorkerName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending dispute: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// MarkDisputePending implements attendance.AttendanceRepository.
func (a *attendanceRepository) MarkDisputePending(ctx context.Context, id string, siteID string, message string, expectedVersion int) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records a
		SET dispute_state = 'PENDING', dispute_message = $3,
		    version = version + 1, updated_at = NOW()
		WHERE a.id = $1 AND a.site_id = $2
		  AND a.dispute_state <> 'PENDING'
		  AND a.version = $4
		RETURNING ` + attendanceColumns + `
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id, siteID, message, expectedVersion))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, a.classifyDisputeFailure(ctx, id, siteID, attendance.ErrDisputeAlreadyPending, expectedVersion)
		}
		return attendance.Record{}, fmt.Errorf("failed to mark dispute pending: %w", err)
	}

	return rec, nil
}

// ResolveDispute implements attendance.AttendanceRepository.
func (a *attendanceRepository) ResolveDispute(ctx context.Context, id string, siteID string, clockIn, clockOut *string, status attendance.Status, expectedVersion int) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records a
		SET clock_in = $3, clock_out = $4, status = $5,
		    dispute_state = 'NONE', dispute_message = NULL,
		    version = version + 1, updated_at = NOW()
		WHERE a.id = $1 AND a.site_id = $2
		  AND a.dispute_state = 'PENDING'
		  AND a.version = $6
		RETURNING ` + attendanceColumns + `
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id, siteID, clockIn, clockOut, status, expectedVersion))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, a.classifyDisputeFailure(ctx, id, siteID, attendance.ErrNoPendingDispute, expectedVersion)
		}
		return attendance.Record{}, fmt.Errorf("failed to resolve dispute: %w", err)
	}

	return rec, nil
}

// classifyDisputeFailure distinguishes why a conditional dispute update
// matched no row: missing record, a lost optimistic race, or wrong dispute
// state. A version mismatch means the row moved on after the caller read it,
// so the race is reported before the state reason.
func (a *attendanceRepository) classifyDisputeFailure(ctx context.Context, id string, siteID string, stateErr error, expectedVersion int) error {
	q := GetQuerier(ctx, a.db)

	var state attendance.DisputeState
	var version int
	err := q.QueryRow(ctx,
		`SELECT dispute_state, version FROM attendance_records WHERE id = $1 AND site_id = $2`,
		id, siteID,
	).Scan(&state, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to inspect dispute state: %w", err)
	}

	if version != expectedVersion {
		return attendance.ErrStaleRecordConflict
	}
	return stateErr
}

// CountPendingByWorker implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountPendingByWorker(ctx context.Context, siteID string) (map[string]int, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT worker_id, COUNT(*)
		FROM attendance_records
		WHERE site_id = $1 AND dispute_state = 'PENDING'
		GROUP BY worker_id
	`

	rows, err := q.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending disputes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var workerID string
		var count int
		if err := rows.Scan(&workerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan pending count: %w", err)
		}
		counts[workerID] = count
	}

	return counts, nil
}
