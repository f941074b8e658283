package validator

import "strings"

// Status glyphs. Every verdict message carries exactly one as prefix.
const (
	GlyphSuccess = "✅"
	GlyphWarning = "⚠️"
	GlyphError   = "❌"
)

// Verdict is the outcome of one shift validation. Expected failures
// (bad tokens, no matching shift, break out of bounds) are verdicts,
// never errors: hard errors are reserved for config and I/O.
type Verdict struct {
	Valid        bool
	Message      string
	Duration     string // computed duration, "HH:MM"
	DayType      string
	Code         string // looked-up organizational code, if any
	WeeklyHours  int
	MonthlyHours int
	Break        string // break duration label, 4-token shifts only
}

// IsWarning reports whether a valid verdict carries a warning marker.
func (v Verdict) IsWarning() bool {
	return v.Valid && strings.Contains(v.Message, GlyphWarning)
}

// Outcome returns the classification bucket: "valid", "warning" or "error".
func (v Verdict) Outcome() string {
	switch {
	case !v.Valid:
		return "error"
	case v.IsWarning():
		return "warning"
	default:
		return "valid"
	}
}

func errorVerdict(glyph, message string) Verdict {
	if !strings.HasPrefix(message, GlyphSuccess) &&
		!strings.HasPrefix(message, GlyphWarning) &&
		!strings.HasPrefix(message, GlyphError) {
		message = glyph + " " + message
	}
	return Verdict{
		Valid:    false,
		Message:  message,
		Duration: "00:00",
	}
}
