package schedule

import "errors"

var (
	ErrShiftScheduleNotFound = errors.New("shift schedule not found for site")
)
