// Package timeutil holds the time-of-day arithmetic the shift validators
// are built on: parsing "HH:MM" tokens, duration and ordering math, and
// the overnight wraparound used for inter-journey rest.
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFormat reports a token that does not parse as HH:MM.
var ErrFormat = errors.New("invalid time format")

const minutesPerDay = 24 * 60

// TimeOfDay is an immutable clock value, hours [0,23] and minutes [0,59].
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Parse parses an "HH:MM" token. Hour and minute must both be in range;
// anything else fails with ErrFormat.
func Parse(token string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrFormat, token)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrFormat, token)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrFormat, token)
	}

	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrFormat, token)
	}

	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Minutes returns minutes since midnight. Total ordering follows from it.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// Format renders the value back as zero-padded "HH:MM".
func (t TimeOfDay) Format() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// DurationMinutes returns end minus start in minutes. It does not wrap
// around midnight; callers check ordering first.
func DurationMinutes(start, end TimeOfDay) int {
	return end.Minutes() - start.Minutes()
}

// StrictlyIncreasing reports whether every successive pair is strictly
// ordered. Equal neighbours fail.
func StrictlyIncreasing(times ...TimeOfDay) bool {
	for i := 0; i < len(times)-1; i++ {
		if times[i].Minutes() >= times[i+1].Minutes() {
			return false
		}
	}
	return true
}

// InterJourneyMinutes computes the rest between the end of one shift and
// the start of the next. When the next start is earlier in the day the
// rest spans midnight: time left until 24:00 plus time since 00:00.
func InterJourneyMinutes(endOfShift1, startOfShift2 TimeOfDay) int {
	if startOfShift2.Minutes() >= endOfShift1.Minutes() {
		return DurationMinutes(endOfShift1, startOfShift2)
	}
	return (minutesPerDay - endOfShift1.Minutes()) + startOfShift2.Minutes()
}

// FormatDuration renders a minute count. With readable=false it returns
// zero-padded "HH:MM" (hours not reduced modulo 24). With readable=true
// it returns a compact label: "45min", "2h", "1h05".
func FormatDuration(minutes int, readable bool) string {
	if readable {
		if minutes < 60 {
			return fmt.Sprintf("%dmin", minutes)
		}
		h, m := minutes/60, minutes%60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FirstToken parses the first whitespace-separated token of a shift string.
func FirstToken(tokens string) (TimeOfDay, bool) {
	fields := strings.Fields(tokens)
	if len(fields) == 0 {
		return TimeOfDay{}, false
	}
	t, err := Parse(fields[0])
	return t, err == nil
}

// LastToken parses the last whitespace-separated token of a shift string.
func LastToken(tokens string) (TimeOfDay, bool) {
	fields := strings.Fields(tokens)
	if len(fields) == 0 {
		return TimeOfDay{}, false
	}
	t, err := Parse(fields[len(fields)-1])
	return t, err == nil
}

// NormalizeKey collapses whitespace runs in a time-token string to single
// spaces and trims. It is the canonical key for code lookups.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
