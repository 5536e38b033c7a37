package schedule

import "context"

type ShiftScheduleRepository interface {
	// GetBySite returns the site's configured shift schedule, or
	// ErrShiftScheduleNotFound when the site has none.
	GetBySite(ctx context.Context, siteID string) (ShiftSchedule, error)
}
