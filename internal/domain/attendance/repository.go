package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records. All
// methods take siteID to prevent cross-site data access. The dispute
// mutations are optimistic: they carry the version the caller read, and the
// store denies the write when the row has moved on (last writer denied, not
// last writer wins).
type AttendanceRepository interface {
	// Create inserts a new record; one per worker per day.
	Create(ctx context.Context, rec Record) (Record, error)

	GetByID(ctx context.Context, id string, siteID string) (Record, error)

	// GetByWorkerAndDate returns nil when the worker has no record that day.
	GetByWorkerAndDate(ctx context.Context, workerID string, date time.Time, siteID string) (*Record, error)

	// SetClockOut closes the day's open record.
	SetClockOut(ctx context.Context, id string, siteID string, clockOut string, status Status) error

	// ListByMonth returns one worker's records for a reporting month,
	// newest first.
	ListByMonth(ctx context.Context, workerID string, year int, month int, siteID string) ([]Record, error)

	// ListMonth is the manager variant: all workers, or one when workerID
	// is non-nil.
	ListMonth(ctx context.Context, workerID *string, year int, month int, siteID string) ([]Record, error)

	// ListPendingDisputes returns the site's records awaiting review,
	// oldest dispute first.
	ListPendingDisputes(ctx context.Context, siteID string) ([]Record, error)

	// MarkDisputePending attaches a PENDING objection. Fails with
	// ErrDisputeAlreadyPending when one is outstanding and with
	// ErrStaleRecordConflict when the version no longer matches.
	MarkDisputePending(ctx context.Context, id string, siteID string, message string, expectedVersion int) (Record, error)

	// ResolveDispute atomically overwrites clock times and status and clears
	// the objection. Fails with ErrNoPendingDispute when nothing is pending
	// and with ErrStaleRecordConflict when the version no longer matches;
	// the record is left untouched in both cases.
	ResolveDispute(ctx context.Context, id string, siteID string, clockIn, clockOut *string, status Status, expectedVersion int) (Record, error)

	// CountPendingByWorker returns pending-dispute counts keyed by worker,
	// for roster badge rendering.
	CountPendingByWorker(ctx context.Context, siteID string) (map[string]int, error)
}
