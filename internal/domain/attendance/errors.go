package attendance

import "errors"

// Attendance domain errors
var (
	// Capture errors
	ErrAlreadyClockedIn  = errors.New("you have already clocked in today")
	ErrNotClockedIn      = errors.New("you have not clocked in yet")
	ErrAlreadyClockedOut = errors.New("you have already clocked out today")

	// Dispute lifecycle errors. Each one is a genuine state mismatch that
	// needs a human decision; none is retried automatically.
	ErrDisputeAlreadyPending = errors.New("an objection is already pending on this record")
	ErrNoPendingDispute      = errors.New("no pending objection exists on this record")
	ErrStaleRecordConflict   = errors.New("record was modified concurrently, refresh and retry")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNotRecordOwner     = errors.New("cannot raise an objection on another worker's record")
)
