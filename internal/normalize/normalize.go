// Package normalize turns loosely-formatted spreadsheet time values into
// canonical "HH:MM" strings. Source workbooks mix real time cells
// (fractional-day floats), packed "HHMM" integers, bare hour numbers and
// free text; all of them funnel through here before validation.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	colonToken = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	bareToken  = regexp.MustCompile(`\b(\d{3,4})\b`)

	// Connector words seen in grouped cells ("8:00 às 12h e 13:30-17:30").
	// Order matters: "às" must be handled before "as".
	connectors = strings.NewReplacer(
		"às", " ", "Às", " ", "as", " ", "e", " ",
		",", " ", ";", " ", "-", " ",
		"h", ":", "H", ":",
	)

	spaceRun = regexp.MustCompile(`\s+`)
)

// Normalizer converts raw cell values to canonical time tokens.
type Normalizer struct {
	// CorrectRounding enables the off-by-one-minute fix for minutes
	// ending in 9. The source spreadsheet tool truncates fractional-day
	// floats so that clean 10-minute boundaries come back one minute
	// short (07:29 instead of 07:30). The fix can miscorrect a genuine
	// :09/:19/... value, so it is configurable.
	CorrectRounding bool
}

// New returns a Normalizer with the rounding correction enabled, which
// matches the behaviour the source data was calibrated against.
func New() *Normalizer {
	return &Normalizer{CorrectRounding: true}
}

// Cell normalizes one raw cell value read from a workbook. It never
// fails loudly: malformed values come back as "" and are dropped by the
// caller. The raw path applies the rounding correction; Text does not.
func (n *Normalizer) Cell(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// Fractional-day number strictly inside (0,1).
	if frac, err := strconv.ParseFloat(raw, 64); err == nil && frac > 0 && frac < 1 {
		total := int(math.Round(frac * 1440.0))
		if total > 1439 {
			total = 1439
		}
		return n.correct(total/60, total%60)
	}

	if strings.Contains(raw, ":") {
		result := Text(raw)
		if result == "" {
			return ""
		}
		h, _ := strconv.Atoi(result[:2])
		m, _ := strconv.Atoi(result[3:])
		return n.correct(h, m)
	}

	return Text(raw)
}

// correct applies the known-rounding-error heuristic: a minute component
// one short of a 10-minute boundary is bumped up, rolling the hour and
// day as needed.
func (n *Normalizer) correct(h, m int) string {
	if n.CorrectRounding && m%10 == 9 {
		m++
		if m >= 60 {
			m = 0
			h++
			if h >= 24 {
				h = 0
			}
		}
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// Text normalizes a free-text time value without the rounding heuristic.
//
// Priority: "HH:MM"-shaped text, then a decimal fraction of a day, then
// a whole hour in [0,23], then a packed "HHMM" integer in [0,2359].
// Anything else normalizes to "".
func Text(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if strings.Contains(value, ":") {
		parts := strings.SplitN(value, ":", 3)
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		if errH == nil && errM == nil && h >= 0 && h <= 23 && m >= 0 && m <= 59 {
			return fmt.Sprintf("%02d:%02d", h, m)
		}
		return ""
	}

	if frac, err := strconv.ParseFloat(value, 64); err == nil {
		if frac > 0 && frac < 1 {
			total := int(math.Round(frac * 1440.0))
			if total > 1439 {
				total = 1439
			}
			return fmt.Sprintf("%02d:%02d", total/60, total%60)
		}
		if frac >= 0 && frac <= 23 && frac == math.Floor(frac) {
			return fmt.Sprintf("%02d:00", int(frac))
		}
	}

	if num, err := strconv.Atoi(value); err == nil && num >= 0 && num <= 2359 {
		h, m := num/100, num%100
		if m <= 59 {
			return fmt.Sprintf("%02d:%02d", h, m)
		}
	}

	return ""
}

// ExtractTimes pulls every time-of-day out of a grouped prose cell.
// Connector words are stripped, "h" separators become colons, then both
// colon-separated and bare 3-4 digit tokens are collected. The result is
// deduplicated and sorted ascending.
func ExtractTimes(text string) []string {
	text = spaceRun.ReplaceAllString(connectors.Replace(text), " ")
	text = strings.TrimSpace(text)

	seen := make(map[string]struct{})
	var times []string

	add := func(h, m int) {
		if h < 0 || h > 23 || m < 0 || m > 59 {
			return
		}
		token := fmt.Sprintf("%02d:%02d", h, m)
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		times = append(times, token)
	}

	for _, match := range colonToken.FindAllStringSubmatch(text, -1) {
		h, _ := strconv.Atoi(match[1])
		m, _ := strconv.Atoi(match[2])
		add(h, m)
	}

	for _, match := range bareToken.FindAllStringSubmatch(text, -1) {
		num, _ := strconv.Atoi(match[1])
		add(num/100, num%100)
	}

	sort.Strings(times)
	return times
}
