package schedule

import "time"

// ShiftSchedule is the expected shift window lateness and early leave are
// judged against. One per site; external configuration as far as the
// reconciliation logic is concerned. Clock times are canonical "HH:MM".
type ShiftSchedule struct {
	SiteID       string
	ClockIn      string
	ClockOut     string
	GraceMinutes int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
