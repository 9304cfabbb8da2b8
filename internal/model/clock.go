package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockTime is a time of day expressed as minutes since midnight.  Booking
// intervals never cross a date boundary, so a pair of ClockTime values plus
// a civil date fully describes an interval and keeps the core free of
// timezone arithmetic.
type ClockTime int

// DateLayout is the civil date format used throughout the core.
const DateLayout = "2006-01-02"

// ParseClock parses a 24-hour "HH:MM" string into a ClockTime.  It rejects
// malformed strings and out-of-range hour or minute components.
func ParseClock(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime(h*60 + m), nil
}

// String renders the time back as zero-padded "HH:MM".
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON encodes the time as its "HH:MM" form so API payloads carry
// the same representation booking forms submit.
func (t ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON accepts a quoted "HH:MM" string.
func (t *ClockTime) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
