package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"validador/internal/batch"
	"validador/internal/validator"
)

// writeWorkbook creates an xlsx fixture with the given rows on the
// default sheet, cells starting at A1.
func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, val))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestSourceRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadro.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{"MATRÍCULA", "", "NOME"},
		{},
		{"100", "", "Maria Silva", "", "Caixa", "", "", "", "08:00", "", "12:00"},
	})

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, path, src.File())
	assert.Equal(t, "Sheet1", src.Sheet())

	rows, err := src.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Maria Silva", rows[2][2])
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestAnnotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadro.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{}, {},
		{"100", "", "Maria Silva", "", "Caixa", "", "", "", "08:00", "", "12:00"},
		{"101", "", "Ana Lima", "", "Fiscal", "", "", "", "08:00", "", "12:00", "12:30", "", "16:30"},
	})

	report := &batch.Report{
		Rows: []batch.RowRecord{
			{
				Number:     3,
				EmployeeID: "100",
				Name:       "Maria Silva",
				Role:       "Caixa",
				Tokens:     []string{"08:00", "12:00"},
				Verdict:    validator.Verdict{Valid: true, Message: "✅ Duração: 04:00"},
			},
			{
				Number:     4,
				EmployeeID: "101",
				Name:       "Ana Lima",
				Role:       "Fiscal",
				Tokens:     []string{"08:00", "12:00", "12:30", "16:30"},
				Verdict:    validator.Verdict{Valid: false, Message: "❌ Intervalo insuficiente (30min). Mínimo: 1h"},
			},
		},
		RepeatedPatterns: map[string]int{
			"08:00 - 12:00":                 2,
			"08:00 - 12:00 - 13:00 - 17:00": 1,
		},
	}

	require.NoError(t, Annotate(path, report, DefaultAnnotateConfig()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Diagnostics written to the message column of the first sheet.
	msg, err := f.GetCellValue("Sheet1", "O3")
	require.NoError(t, err)
	assert.Equal(t, "✅ Duração: 04:00", msg)

	msg, err = f.GetCellValue("Sheet1", "O4")
	require.NoError(t, err)
	assert.Contains(t, msg, "Intervalo insuficiente")

	// Error worksheet rebuilt with the failed row.
	require.Contains(t, f.GetSheetList(), ErrorsSheetName)

	title, err := f.GetCellValue(ErrorsSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "RELATÓRIO DE ERROS DE HORÁRIO", title)

	// Individual layout carried names, so the five-column table is used.
	header, err := f.GetCellValue(ErrorsSheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Nome", header)

	name, err := f.GetCellValue(ErrorsSheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", name)

	diag, err := f.GetCellValue(ErrorsSheetName, "E3")
	require.NoError(t, err)
	assert.Contains(t, diag, "Intervalo insuficiente")

	// Pattern summary, most frequent first.
	summary, err := f.GetCellValue(ErrorsSheetName, "A5")
	require.NoError(t, err)
	assert.Equal(t, "RESUMO - JORNADAS REPETIDAS", summary)

	top, err := f.GetCellValue(ErrorsSheetName, "A7")
	require.NoError(t, err)
	assert.Equal(t, "08:00 - 12:00", top)
}

func TestAnnotateNoErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadro.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{}, {},
		{"100", "", "Maria Silva", "", "Caixa", "", "", "", "08:00", "", "12:00"},
	})

	report := &batch.Report{
		Rows: []batch.RowRecord{
			{
				Number:  3,
				Name:    "Maria Silva",
				Tokens:  []string{"08:00", "12:00"},
				Verdict: validator.Verdict{Valid: true, Message: "✅ Duração: 04:00"},
			},
		},
	}

	require.NoError(t, Annotate(path, report, DefaultAnnotateConfig()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	banner, err := f.GetCellValue(ErrorsSheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Nenhum erro encontrado!", banner)
}

func TestAnnotateReplacesErrorsSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadro.xlsx")
	writeWorkbook(t, path, [][]interface{}{
		{}, {},
		{"100", "", "Maria Silva", "", "Caixa", "", "", "", "08:00", "", "12:00"},
	})

	report := &batch.Report{Rows: []batch.RowRecord{{
		Number:  3,
		Name:    "Maria Silva",
		Tokens:  []string{"08:00", "12:00"},
		Verdict: validator.Verdict{Valid: true, Message: "✅ Duração: 04:00"},
	}}}

	require.NoError(t, Annotate(path, report, DefaultAnnotateConfig()))
	require.NoError(t, Annotate(path, report, DefaultAnnotateConfig()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	seen := 0
	for _, name := range f.GetSheetList() {
		if name == ErrorsSheetName {
			seen++
		}
	}
	assert.Equal(t, 1, seen)
}
