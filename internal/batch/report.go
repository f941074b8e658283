package batch

import (
	"fmt"
	"strings"
	"time"

	"validador/internal/validator"
)

// RowRecord is one retained spreadsheet row and its verdict. Records are
// owned by a single pipeline run and discarded with the report.
type RowRecord struct {
	Number     int // 1-based row number in the source sheet
	EmployeeID string
	Name       string
	Role       string
	Tokens     []string // normalized "HH:MM" tokens, source order
	RawText    string   // original cell text
	Verdict    validator.Verdict
}

// Pattern returns the canonical joined form of the row's times, used to
// group repeated shift patterns.
func (r RowRecord) Pattern() string {
	return strings.Join(r.Tokens, " - ")
}

// HasError reports whether the row's verdict failed.
func (r RowRecord) HasError() bool {
	return !r.Verdict.Valid
}

// HasWarning reports whether the row passed with a warning marker.
func (r RowRecord) HasWarning() bool {
	return r.Verdict.IsWarning()
}

// ErrorText returns the diagnostic for a failed row, empty otherwise.
func (r RowRecord) ErrorText() string {
	if r.Verdict.Valid {
		return ""
	}
	return r.Verdict.Message
}

// Progress is an incremental snapshot reported during a batch run.
type Progress struct {
	Row      int
	Total    int
	Valid    int
	Errors   int
	Warnings int
	Message  string
}

// Percent returns run completion in [0,100].
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Row) * 100.0 / float64(p.Total)
}

// Report aggregates one batch validation run. It is immutable once
// returned; Rows preserves original sheet order.
type Report struct {
	RunID      string
	SourceFile string
	SheetName  string
	StartedAt  time.Time
	Duration   time.Duration

	TotalRows    int
	ValidCount   int
	ErrorCount   int
	WarningCount int

	Rows             []RowRecord
	ErrorsByType     map[string]int
	RepeatedPatterns map[string]int
}

// ErrorRows returns the rows whose verdict failed, in sheet order.
func (r *Report) ErrorRows() []RowRecord {
	var out []RowRecord
	for _, row := range r.Rows {
		if row.HasError() {
			out = append(out, row)
		}
	}
	return out
}

// SuccessRate returns the percentage of valid rows.
func (r *Report) SuccessRate() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.ValidCount) * 100.0 / float64(r.TotalRows)
}

// Summary renders the one-line tally used in logs and progress bars.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s %d | %s %d | %s %d | Total: %d",
		validator.GlyphSuccess, r.ValidCount,
		validator.GlyphError, r.ErrorCount,
		validator.GlyphWarning, r.WarningCount,
		r.TotalRows)
}
