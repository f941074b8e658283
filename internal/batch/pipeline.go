// Package batch applies the shift validator across a whole spreadsheet:
// row extraction per configured column layout, per-row validation,
// tallying and repeated-pattern detection, with incremental progress.
package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"validador/internal/metrics"
	"validador/internal/normalize"
	"validador/internal/validator"
)

// Config selects what a batch run validates and where the data lives.
// Columns are 0-based; StartRow is 1-based.
type Config struct {
	CheckPeriods bool
	CheckShift   bool
	CheckBreaks  bool

	StartRow int

	// Grouped mode reads one prose cell holding every time; individual
	// mode reads four fixed time columns.
	Grouped       bool
	GroupedColumn int
	TimeColumns   []int

	IDColumn   int
	NameColumn int
	RoleColumn int

	// ProgressEvery bounds the progress callback cadence.
	ProgressEvery int
}

// DefaultConfig mirrors the layout of the source payroll sheets: data
// from row 3, times in columns I, K, L and N, identity in A/C/E.
func DefaultConfig() Config {
	return Config{
		CheckPeriods:  true,
		CheckShift:    true,
		CheckBreaks:   true,
		StartRow:      3,
		GroupedColumn: 1,
		TimeColumns:   []int{8, 10, 11, 13},
		IDColumn:      0,
		NameColumn:    2,
		RoleColumn:    4,
		ProgressEvery: 10,
	}
}

func (c Config) options() validator.Options {
	return validator.Options{
		CheckPeriods: c.CheckPeriods,
		CheckShift:   c.CheckShift,
		CheckBreaks:  c.CheckBreaks,
	}
}

// RowSource supplies parsed spreadsheet rows as indexed cell arrays.
// The pipeline never touches workbook APIs itself.
type RowSource interface {
	File() string
	Sheet() string
	Rows() ([][]string, error)
}

// headerKeywords marks header rows by identity-cell content,
// case-insensitive substring match.
var headerKeywords = []string{
	"NOME", "FUNCIONARIO", "FUNCIONÁRIO", "CARGO", "HORARIO", "HORÁRIO",
	"MATRICULA", "MATRÍCULA", "CODIGO", "CÓDIGO", "QUADRO",
}

// titleMarkers flag section/company title rows in individual mode.
// Short legal-form markers match as whole words only.
var (
	titleMarkers     = []string{"SUPERMERCADOS", "LTDA", "EIRELI", "PLANALTO", "PLANEJAMENTO", "DEPARTAMENTO", "SETOR", "SEÇÃO", "DIVISÃO"}
	titleMarkerWords = []string{"ME", "S/A", "S.A."}
)

// Pipeline runs batch validations. It is safe to reuse across runs.
type Pipeline struct {
	validator  *validator.Validator
	normalizer *normalize.Normalizer
	logger     *zerolog.Logger
}

// New creates a pipeline over v. normalizer may be nil for defaults.
func New(v *validator.Validator, normalizer *normalize.Normalizer, logger *zerolog.Logger) *Pipeline {
	if normalizer == nil {
		normalizer = normalize.New()
	}
	return &Pipeline{validator: v, normalizer: normalizer, logger: logger}
}

// Run validates every retained row of src and aggregates a report.
// Cancellation is cooperative at row granularity: on a done context the
// partial report is returned along with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, src RowSource, cfg Config, progress func(Progress)) (*Report, error) {
	started := time.Now()
	report := &Report{
		RunID:            uuid.NewString(),
		SourceFile:       src.File(),
		SheetName:        src.Sheet(),
		StartedAt:        started,
		ErrorsByType:     make(map[string]int),
		RepeatedPatterns: make(map[string]int),
	}

	rows, err := src.Rows()
	if err != nil {
		return nil, err
	}

	records := p.extract(rows, cfg)
	report.TotalRows = len(records)

	every := cfg.ProgressEvery
	if every <= 0 {
		every = 10
	}

	metrics.IncBatchRun()

	var runErr error
	for i := range records {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		rec := &records[i]
		rec.Verdict = p.validator.ValidateTokens(rec.Tokens, cfg.options())

		outcome := rec.Verdict.Outcome()
		switch outcome {
		case "error":
			report.ErrorCount++
			report.ErrorsByType[rec.Verdict.Message]++
		case "warning":
			report.WarningCount++
		default:
			report.ValidCount++
		}
		metrics.IncBatchRow(outcome)

		report.Rows = append(report.Rows, *rec)

		if progress != nil && ((i+1)%every == 0 || i == len(records)-1) {
			progress(Progress{
				Row:      i + 1,
				Total:    len(records),
				Valid:    report.ValidCount,
				Errors:   report.ErrorCount,
				Warnings: report.WarningCount,
				Message:  fmt.Sprintf("Validando linha %d/%d", i+1, len(records)),
			})
		}
	}

	for _, rec := range report.Rows {
		if len(rec.Tokens) >= 2 {
			report.RepeatedPatterns[rec.Pattern()]++
		}
	}

	report.Duration = time.Since(started)

	if p.logger != nil {
		p.logger.Info().
			Str("run_id", report.RunID).
			Int("rows", report.TotalRows).
			Int("valid", report.ValidCount).
			Int("errors", report.ErrorCount).
			Int("warnings", report.WarningCount).
			Dur("took", report.Duration).
			Msg("batch run finished")
	}

	return report, runErr
}

// extract turns raw sheet rows into retained RowRecords: time tokens per
// the configured layout, identity columns, header and title filtering.
func (p *Pipeline) extract(rows [][]string, cfg Config) []RowRecord {
	start := cfg.StartRow
	if start < 1 {
		start = 1
	}

	var records []RowRecord
	for i := start - 1; i < len(rows); i++ {
		row := rows[i]
		rec := RowRecord{Number: i + 1}

		if cfg.Grouped {
			text := cell(row, cfg.GroupedColumn)
			if text == "" {
				continue
			}
			rec.RawText = text
			rec.Tokens = normalize.ExtractTimes(text)
		} else {
			for _, col := range cfg.TimeColumns {
				token := p.normalizer.Cell(cell(row, col))
				if token != "" && token != "00:00" {
					rec.Tokens = append(rec.Tokens, token)
				}
			}
			rec.RawText = strings.Join(rec.Tokens, " ")
		}
		if len(rec.Tokens) == 0 {
			continue
		}

		rec.EmployeeID = cell(row, cfg.IDColumn)
		if cfg.Grouped {
			if rec.EmployeeID == "" || isHeader(rec.EmployeeID) {
				continue
			}
		} else {
			rec.Name = cell(row, cfg.NameColumn)
			rec.Role = cell(row, cfg.RoleColumn)
			if rec.Name == "" || isHeader(rec.Name) {
				continue
			}
			if isTitleRow(rec.Name, rec.Role) {
				continue
			}
		}

		records = append(records, rec)
	}
	return records
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isHeader(text string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range headerKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

func isTitleRow(name, role string) bool {
	if name == "" {
		return false
	}

	upper := strings.ToUpper(name)
	for _, marker := range titleMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	for _, word := range strings.Fields(upper) {
		for _, marker := range titleMarkerWords {
			if word == marker {
				return true
			}
		}
	}

	// A long name with no role is a section title, not an employee.
	return role == "" && len([]rune(name)) > 40
}
