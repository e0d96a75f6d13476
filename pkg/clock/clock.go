package clock

import (
	"fmt"
	"time"
)

// Clock produces calendar dates and clock times in a fixed reference
// timezone, independent of the host's local zone. All persisted dates are
// YYYY-MM-DD strings and times are HH:MM 24-hour strings.
type Clock struct {
	loc *time.Location
	// now is overridable in tests.
	now func() time.Time
}

func New(utcOffsetHours int) *Clock {
	return &Clock{
		loc: time.FixedZone(fmt.Sprintf("UTC%+d", utcOffsetHours), utcOffsetHours*3600),
		now: time.Now,
	}
}

// NewFrozen returns a clock pinned to a fixed instant, for tests.
func NewFrozen(at time.Time, utcOffsetHours int) *Clock {
	c := New(utcOffsetHours)
	c.now = func() time.Time { return at }
	return c
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar date, e.g. "2026-09-01".
func (c *Clock) Today() string {
	return c.Now().Format(time.DateOnly)
}

// HHMM returns the current wall time, e.g. "14:05".
func (c *Clock) HHMM() string {
	return c.Now().Format("15:04")
}

// AddDays shifts a YYYY-MM-DD date string by n days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, n).Format(time.DateOnly), nil
}

// MinutesOfDay converts an HH:MM string to minutes since midnight. Malformed
// input sorts first rather than failing; the stored form is canonical.
func MinutesOfDay(hhmm string) int {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0
	}
	return h*60 + m
}

// Display12h derives the 12-hour display form of an HH:MM time, e.g.
// "14:05" -> "2:05 PM". Stored times stay 24-hour; display is derived only.
func Display12h(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04 PM")
}
