// Package clocktime converts between 12-hour meridiem time entry and the
// canonical 24-hour "HH:MM" form used everywhere else in the system.
package clocktime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTimeFormat is returned for any clock-face value that cannot be
// normalized. Callers must surface it, never coerce.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// Meridiem is the AM/PM half of a 12-hour time entry.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// Label returns the Korean entry label (오전/오후).
func (m Meridiem) Label() string {
	if m == PM {
		return "오후"
	}
	return "오전"
}

// ParseMeridiem accepts both the English and Korean entry forms.
func ParseMeridiem(s string) (Meridiem, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AM", "오전":
		return AM, nil
	case "PM", "오후":
		return PM, nil
	}
	return "", fmt.Errorf("%w: unknown period %q", ErrInvalidTimeFormat, s)
}

func splitClockFace(clockFace string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(clockFace), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q is not HH:MM", ErrInvalidTimeFormat, clockFace)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: non-numeric hour in %q", ErrInvalidTimeFormat, clockFace)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: non-numeric minute in %q", ErrInvalidTimeFormat, clockFace)
	}
	if minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute out of range in %q", ErrInvalidTimeFormat, clockFace)
	}
	return hour, minute, nil
}

// ToCanonical converts a (meridiem, "HH:MM") entry pair to the canonical
// zero-padded 24-hour form. The clock-face hour may be 1..12 (12-hour entry)
// or 0..23 (already canonical); both occur in practice and are normalized
// defensively. Hour 12 maps to 00 under AM and stays 12 under PM. Minutes are
// preserved verbatim.
func ToCanonical(period Meridiem, clockFace string) (string, error) {
	if period != AM && period != PM {
		return "", fmt.Errorf("%w: unknown period %q", ErrInvalidTimeFormat, string(period))
	}
	hour, minute, err := splitClockFace(clockFace)
	if err != nil {
		return "", err
	}
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: hour out of range in %q", ErrInvalidTimeFormat, clockFace)
	}

	switch {
	case period == PM && hour < 12:
		hour += 12
	case period == AM && hour >= 12:
		hour -= 12
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// ToDisplay is the inverse of ToCanonical, used to re-populate an edit form
// from a stored canonical value. Canonical 00 displays as 12 AM and canonical
// 12 as 12 PM.
func ToDisplay(canonical string) (Meridiem, string, error) {
	hour, minute, err := splitClockFace(canonical)
	if err != nil {
		return "", "", err
	}
	if hour < 0 || hour > 23 {
		return "", "", fmt.Errorf("%w: hour out of range in %q", ErrInvalidTimeFormat, canonical)
	}

	period := AM
	displayHour := hour
	switch {
	case hour == 0:
		displayHour = 12
	case hour == 12:
		period = PM
	case hour > 12:
		period = PM
		displayHour = hour - 12
	}

	return period, fmt.Sprintf("%02d:%02d", displayHour, minute), nil
}

// Canonicalize validates an already 24-hour clock value and re-formats it to
// the zero-padded canonical form, so "8:15" is stored as "08:15" and never
// verbatim.
func Canonicalize(s string) (string, error) {
	hour, minute, err := splitClockFace(s)
	if err != nil {
		return "", err
	}
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("%w: hour out of range in %q", ErrInvalidTimeFormat, s)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// MinuteOfDay converts a canonical "HH:MM" to minutes since midnight, for
// same-day comparisons.
func MinuteOfDay(canonical string) (int, error) {
	hour, minute, err := splitClockFace(canonical)
	if err != nil {
		return 0, err
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: hour out of range in %q", ErrInvalidTimeFormat, canonical)
	}
	return hour*60 + minute, nil
}
