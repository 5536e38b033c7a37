package attendance

import (
	"github.com/sitecrew-app/sitecrew-backend-go/internal/domain/schedule"
	"github.com/sitecrew-app/sitecrew-backend-go/internal/pkg/clocktime"
)

// Classify derives an attendance status from canonical clock times against
// the shift schedule. Rules, in order:
//
//	both times absent                        -> ABSENT
//	clock-in after shift start + grace       -> LATE
//	clock-out before shift end               -> EARLY_LEAVE
//	otherwise                                -> PRESENT
//
// LATE is checked first and wins when both conditions hold. The result is
// advisory: dispute resolution takes the manager's status as-is and only uses
// Classify to pre-fill the correction form.
func Classify(clockIn, clockOut *string, shift schedule.ShiftSchedule) (Status, error) {
	if clockIn == nil && clockOut == nil {
		return StatusAbsent, nil
	}

	shiftStart, err := clocktime.MinuteOfDay(shift.ClockIn)
	if err != nil {
		return "", err
	}
	shiftEnd, err := clocktime.MinuteOfDay(shift.ClockOut)
	if err != nil {
		return "", err
	}

	if clockIn != nil {
		in, err := clocktime.MinuteOfDay(*clockIn)
		if err != nil {
			return "", err
		}
		if in > shiftStart+shift.GraceMinutes {
			return StatusLate, nil
		}
	}

	if clockOut != nil {
		out, err := clocktime.MinuteOfDay(*clockOut)
		if err != nil {
			return "", err
		}
		if out < shiftEnd {
			return StatusEarlyLeave, nil
		}
	}

	return StatusPresent, nil
}
