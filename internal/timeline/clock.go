package timeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// ErrInvalidClock is returned when a wall-clock string is not in HH:MM form.
var ErrInvalidClock = errors.New("timeline: invalid clock value")

// Clock is a wall-clock time expressed as minutes since midnight. Values are
// kept unbounded while adding and only wrapped when rendered.
type Clock int

// ParseClock parses "HH:MM" (or "H:MM") in 24-hour notation.
func ParseClock(value string) (Clock, error) {
	value = strings.TrimSpace(value)
	hh, mm, ok := strings.Cut(value, ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return Clock(hours*60 + minutes), nil
}

// MustParseClock is ParseClock for literals known to be valid.
func MustParseClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Add returns the clock advanced by the given number of minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Minutes returns the clock as minutes since midnight, wrapped into one day.
func (c Clock) Minutes() int {
	m := int(c) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return m
}

// String renders the clock as zero-padded HH:MM, wrapping past midnight.
func (c Clock) String() string {
	m := c.Minutes()
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AbsoluteTimes converts a session offset relative to start into wall-clock
// start and end strings.
func AbsoluteTimes(start Clock, relStart, duration int) (string, string) {
	from := start.Add(relStart)
	return from.String(), from.Add(duration).String()
}

// FormatDuration renders minutes as "1h 30min", "2h" or "45min".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours, rest := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dmin", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dmin", hours, rest)
	}
}
