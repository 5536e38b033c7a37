package attendance

import (
	"time"
)

// Status is the attendance category of a record. One label per record; the
// same enumeration backs every screen (정상/지각/조퇴/결근).
type Status string

const (
	StatusPresent    Status = "PRESENT"
	StatusLate       Status = "LATE"
	StatusEarlyLeave Status = "EARLY_LEAVE"
	StatusAbsent     Status = "ABSENT"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusEarlyLeave, StatusAbsent:
		return true
	}
	return false
}

// Label returns the Korean display label.
func (s Status) Label() string {
	switch s {
	case StatusPresent:
		return "정상"
	case StatusLate:
		return "지각"
	case StatusEarlyLeave:
		return "조퇴"
	case StatusAbsent:
		return "결근"
	}
	return string(s)
}

// DisputeState is the lifecycle state of the objection attached to a record.
// The only defined transitions are NONE --raise--> PENDING --resolve--> NONE;
// RESOLVED is the transient outcome of a resolution, persisted as NONE because
// the incident is closed once the record is corrected.
type DisputeState string

const (
	DisputeNone     DisputeState = "NONE"
	DisputePending  DisputeState = "PENDING"
	DisputeResolved DisputeState = "RESOLVED"
)

// Record is one worker's attendance entry for one calendar day. Clock times
// are canonical 24-hour "HH:MM" strings; either may be absent if the worker
// never clocked in/out that day. Version backs optimistic concurrency on
// dispute mutations: the store is the authority and a stale writer is denied.
type Record struct {
	ID             string
	WorkerID       string
	SiteID         string
	Date           time.Time
	ClockIn        *string
	ClockOut       *string
	Status         Status
	DisputeState   DisputeState
	DisputeMessage *string
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined for display
	WorkerName *string
}

func (r Record) HasPendingDispute() bool {
	return r.DisputeState == DisputePending
}

// DateString renders the record date in the YYYY-MM-DD display convention.
func (r Record) DateString() string {
	return r.Date.Format("2006-01-02")
}
