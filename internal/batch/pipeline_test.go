package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"validador/internal/config"
	"validador/internal/validator"
)

// fakeSource implements RowSource over an in-memory grid.
type fakeSource struct {
	rows [][]string
}

func (f *fakeSource) File() string  { return "test.xlsx" }
func (f *fakeSource) Sheet() string { return "Plan1" }

func (f *fakeSource) Rows() ([][]string, error) { return f.rows, nil }

func testConfig() *config.RuleConfig {
	return &config.RuleConfig{
		Shifts: []config.ShiftDefinition{
			{Name: "Jornada 4h", DurationMinutes: 240, WeeklyHours: 24, MonthlyHours: 120},
			{Name: "Jornada 8h", DurationMinutes: 480, WeeklyHours: 44, MonthlyHours: 220,
				MinBreakMinutes: 60, MaxBreakMinutes: 120},
		},
		MaxPeriodHours:       10.0,
		MinRestMinutes:       660,
		MaxContinuousMinutes: 240,
	}
}

func newPipeline() *Pipeline {
	return New(validator.New(testConfig(), nil), nil, nil)
}

// individualRow builds a sheet row for the default column layout:
// id in A, name in C, role in E, times in I, K, L, N.
func individualRow(id, name, role string, times ...string) []string {
	row := make([]string, 14)
	row[0] = id
	row[2] = name
	row[4] = role
	cols := []int{8, 10, 11, 13}
	for i, tm := range times {
		if i < len(cols) {
			row[cols[i]] = tm
		}
	}
	return row
}

func TestRunIndividualMode(t *testing.T) {
	src := &fakeSource{rows: [][]string{
		individualRow("MATRÍCULA", "NOME", "CARGO"), // header, above the data start row
		{}, // blank
		individualRow("100", "Maria Silva", "Caixa", "08:00", "12:00"),
		individualRow("101", "João Souza", "Repositor", "08:00", "12:00", "13:00", "17:00"),
		individualRow("102", "Ana Lima", "Fiscal", "08:00", "12:00", "12:30", "16:30"),
		individualRow("", "", ""), // no times, skipped
	}}

	report, err := newPipeline().Run(context.Background(), src, DefaultConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, "test.xlsx", report.SourceFile)
	assert.Equal(t, "Plan1", report.SheetName)
	assert.NotEmpty(t, report.RunID)

	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.ValidCount)
	assert.Equal(t, 1, report.ErrorCount)
	assert.Zero(t, report.WarningCount)

	require.Len(t, report.Rows, 3)
	// Original sheet order preserved.
	assert.Equal(t, "Maria Silva", report.Rows[0].Name)
	assert.Equal(t, 3, report.Rows[0].Number)
	assert.True(t, report.Rows[0].Verdict.Valid)
	assert.False(t, report.Rows[2].Verdict.Valid)
	assert.Contains(t, report.Rows[2].ErrorText(), "Intervalo insuficiente")

	assert.Len(t, report.ErrorsByType, 1)
	assert.Len(t, report.ErrorRows(), 1)
}

func TestRunGroupedMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grouped = true
	cfg.StartRow = 1

	src := &fakeSource{rows: [][]string{
		{"CÓDIGO", "HORÁRIO"}, // header keyword in id cell
		{"J01", "8:00 às 12:00 e 13:00 às 17:00"},
		{"J02", "08:00 12:00"},
		{"", "08:00 12:00"}, // no id, skipped
		{"J03", "sem horário"},
	}}

	report, err := newPipeline().Run(context.Background(), src, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, []string{"08:00", "12:00", "13:00", "17:00"}, report.Rows[0].Tokens)
	assert.Equal(t, "8:00 às 12:00 e 13:00 às 17:00", report.Rows[0].RawText)
	assert.True(t, report.Rows[0].Verdict.Valid)
}

func TestHeaderAndTitleFiltering(t *testing.T) {
	src := &fakeSource{rows: [][]string{
		{}, {},
		individualRow("1", "matrícula", "x", "08:00", "12:00"),
		individualRow("2", "SUPERMERCADOS PLANALTO LTDA", "", "08:00", "12:00"),
		individualRow("3", "COMERCIO DE ALIMENTOS ME", "", "08:00", "12:00"),
		individualRow("4", "FILIAL PLANALTO NORTE", "", "08:00", "12:00"),
		individualRow("5", "Pedro Almeida", "Caixa", "08:00", "12:00"),
	}}

	report, err := newPipeline().Run(context.Background(), src, DefaultConfig(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalRows)
	assert.Equal(t, "Pedro Almeida", report.Rows[0].Name)
}

func TestRepeatedPatterns(t *testing.T) {
	src := &fakeSource{rows: [][]string{
		{}, {},
		individualRow("1", "Maria", "Caixa", "08:00", "12:00"),
		individualRow("2", "João", "Caixa", "08:00", "12:00"),
		individualRow("3", "Ana", "Caixa", "08:00", "12:00", "13:00", "17:00"),
	}}

	report, err := newPipeline().Run(context.Background(), src, DefaultConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.RepeatedPatterns["08:00 - 12:00"])
	assert.Equal(t, 1, report.RepeatedPatterns["08:00 - 12:00 - 13:00 - 17:00"])
}

func TestPlaceholderTimesDropped(t *testing.T) {
	src := &fakeSource{rows: [][]string{
		{}, {},
		individualRow("1", "Maria", "Caixa", "08:00", "00:00", "12:00"),
	}}

	report, err := newPipeline().Run(context.Background(), src, DefaultConfig(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalRows)
	assert.Equal(t, []string{"08:00", "12:00"}, report.Rows[0].Tokens)
	assert.True(t, report.Rows[0].Verdict.Valid)
}

func TestProgressCadence(t *testing.T) {
	var rows [][]string
	rows = append(rows, nil, nil)
	for i := 0; i < 25; i++ {
		rows = append(rows, individualRow("1", "Maria", "Caixa", "08:00", "12:00"))
	}

	cfg := DefaultConfig()
	cfg.ProgressEvery = 10

	var snapshots []Progress
	_, err := newPipeline().Run(context.Background(), &fakeSource{rows: rows}, cfg,
		func(p Progress) { snapshots = append(snapshots, p) })
	require.NoError(t, err)

	// Rows 10, 20 and the final row 25.
	require.Len(t, snapshots, 3)
	assert.Equal(t, 10, snapshots[0].Row)
	assert.Equal(t, 20, snapshots[1].Row)
	assert.Equal(t, 25, snapshots[2].Row)
	assert.Equal(t, 25, snapshots[2].Total)
	assert.Equal(t, 100.0, snapshots[2].Percent())
	assert.Equal(t, 25, snapshots[2].Valid)
}

func TestCancellation(t *testing.T) {
	var rows [][]string
	rows = append(rows, nil, nil)
	for i := 0; i < 50; i++ {
		rows = append(rows, individualRow("1", "Maria", "Caixa", "08:00", "12:00"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultConfig()
	cfg.ProgressEvery = 5

	pipeline := newPipeline()
	report, err := pipeline.Run(ctx, &fakeSource{rows: rows}, cfg, func(p Progress) {
		if p.Row >= 10 {
			cancel()
		}
	})

	// Partial report comes back with the context error.
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.GreaterOrEqual(t, len(report.Rows), 10)
	assert.Less(t, len(report.Rows), 50)
}

func TestReportSummary(t *testing.T) {
	r := &Report{TotalRows: 10, ValidCount: 7, ErrorCount: 2, WarningCount: 1}
	assert.Equal(t, "✅ 7 | ❌ 2 | ⚠️ 1 | Total: 10", r.Summary())
	assert.InDelta(t, 70.0, r.SuccessRate(), 0.001)
}
