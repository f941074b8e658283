package sheet

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"validador/internal/batch"
)

// ErrorsSheetName is the worksheet rebuilt on every annotated run.
const ErrorsSheetName = "Erros_Validacao"

const (
	fillGreen = "8FF059"
	fillRed   = "FF0000"
	fillGray  = "D3D3D3"
	fillZebra = "F0F0F0"
	fontRed   = "FF0000"
)

// AnnotateConfig places the status fill and diagnostic text. Columns
// are 1-based, matching the source payroll sheet layout.
type AnnotateConfig struct {
	IndicatorColumn int
	MessageColumn   int
}

// DefaultAnnotateConfig targets columns I and O of the payroll layout.
func DefaultAnnotateConfig() AnnotateConfig {
	return AnnotateConfig{IndicatorColumn: 9, MessageColumn: 15}
}

// Annotate writes the run outcome back into the workbook at path: a
// green or red fill on the indicator column of every validated row, the
// diagnostic text on the message column, and a rebuilt error worksheet
// with the failed rows and the repeated-pattern tally.
func Annotate(path string, report *batch.Report, cfg AnnotateConfig) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ErrNoSheets
	}
	main := sheets[0]

	st, err := newStyleSet(f)
	if err != nil {
		return err
	}

	for _, row := range report.Rows {
		indicator, err := excelize.CoordinatesToCellName(cfg.IndicatorColumn, row.Number)
		if err != nil {
			return err
		}
		message, err := excelize.CoordinatesToCellName(cfg.MessageColumn, row.Number)
		if err != nil {
			return err
		}

		if row.HasError() {
			if err := f.SetCellStyle(main, indicator, indicator, st.redFill); err != nil {
				return err
			}
			if err := f.SetCellValue(main, message, row.ErrorText()); err != nil {
				return err
			}
			if err := f.SetCellStyle(main, message, message, st.redBold); err != nil {
				return err
			}
		} else {
			if err := f.SetCellStyle(main, indicator, indicator, st.greenFill); err != nil {
				return err
			}
			if err := f.SetCellValue(main, message, row.Verdict.Message); err != nil {
				return err
			}
		}
	}

	if err := writeErrorsSheet(f, report, st); err != nil {
		return err
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// styleSet caches the style IDs reused across cells. excelize dedupes
// styles internally, but the IDs still have to come from NewStyle.
type styleSet struct {
	greenFill  int
	redFill    int
	redBold    int
	header     int
	title      int
	zebra      int
	okBanner   int
	centerCell int
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	var st styleSet
	var err error

	if st.greenFill, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillGreen}, Pattern: 1},
	}); err != nil {
		return nil, err
	}
	if st.redFill, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillRed}, Pattern: 1},
	}); err != nil {
		return nil, err
	}
	if st.redBold, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: fontRed},
	}); err != nil {
		return nil, err
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fillGray}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}
	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fillGray}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}
	if st.zebra, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fillZebra}, Pattern: 1},
	}); err != nil {
		return nil, err
	}
	if st.okBanner, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fillGreen}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}
	if st.centerCell, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}

	return &st, nil
}

// writeErrorsSheet rebuilds the Erros_Validacao worksheet from scratch.
// The column set depends on whether the run carried employee names
// (individual layout) or only pattern codes (grouped layout).
func writeErrorsSheet(f *excelize.File, report *batch.Report, st *styleSet) error {
	if err := f.DeleteSheet(ErrorsSheetName); err != nil {
		return err
	}
	if _, err := f.NewSheet(ErrorsSheetName); err != nil {
		return err
	}

	errRows := report.ErrorRows()

	withNames := false
	for _, row := range errRows {
		if row.Name != "" {
			withNames = true
			break
		}
	}

	lastCol := "C"
	headers := []string{"Código", "Jornada Completa", "Tipo de Erro"}
	if withNames {
		lastCol = "E"
		headers = []string{"Matrícula", "Nome", "Cargo", "Jornada Completa", "Tipo de Erro"}
	}

	if err := f.MergeCell(ErrorsSheetName, "A1", lastCol+"1"); err != nil {
		return err
	}
	if err := f.SetCellValue(ErrorsSheetName, "A1", "RELATÓRIO DE ERROS DE HORÁRIO"); err != nil {
		return err
	}
	if err := f.SetCellStyle(ErrorsSheetName, "A1", lastCol+"1", st.title); err != nil {
		return err
	}
	_ = f.SetRowHeight(ErrorsSheetName, 1, 30)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(ErrorsSheetName, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(ErrorsSheetName, "A2", lastCol+"2", st.header); err != nil {
		return err
	}
	_ = f.SetRowHeight(ErrorsSheetName, 2, 25)

	next := 3
	if len(errRows) == 0 {
		if err := f.MergeCell(ErrorsSheetName, "A3", lastCol+"3"); err != nil {
			return err
		}
		if err := f.SetCellValue(ErrorsSheetName, "A3", "Nenhum erro encontrado!"); err != nil {
			return err
		}
		if err := f.SetCellStyle(ErrorsSheetName, "A3", lastCol+"3", st.okBanner); err != nil {
			return err
		}
		next = 4
	} else {
		for _, row := range errRows {
			var cells []interface{}
			if withNames {
				cells = []interface{}{row.EmployeeID, row.Name, row.Role, row.Pattern(), row.ErrorText()}
			} else {
				cells = []interface{}{row.EmployeeID, row.Pattern(), row.ErrorText()}
			}

			if next%2 == 1 {
				first, _ := excelize.CoordinatesToCellName(1, next)
				last, _ := excelize.CoordinatesToCellName(len(cells), next)
				if err := f.SetCellStyle(ErrorsSheetName, first, last, st.zebra); err != nil {
					return err
				}
			}
			for i, v := range cells {
				cell, _ := excelize.CoordinatesToCellName(i+1, next)
				if err := f.SetCellValue(ErrorsSheetName, cell, v); err != nil {
					return err
				}
			}
			diag, _ := excelize.CoordinatesToCellName(len(cells), next)
			if err := f.SetCellStyle(ErrorsSheetName, diag, diag, st.redBold); err != nil {
				return err
			}
			next++
		}
	}

	if err := writePatternSummary(f, report, st, next+1, lastCol); err != nil {
		return err
	}

	if withNames {
		_ = f.SetColWidth(ErrorsSheetName, "A", "A", 12)
		_ = f.SetColWidth(ErrorsSheetName, "B", "B", 30)
		_ = f.SetColWidth(ErrorsSheetName, "C", "C", 25)
		_ = f.SetColWidth(ErrorsSheetName, "D", "D", 35)
		_ = f.SetColWidth(ErrorsSheetName, "E", "E", 50)
	} else {
		_ = f.SetColWidth(ErrorsSheetName, "A", "A", 15)
		_ = f.SetColWidth(ErrorsSheetName, "B", "B", 40)
		_ = f.SetColWidth(ErrorsSheetName, "C", "C", 60)
	}

	return nil
}

// writePatternSummary appends the repeated-shift tally, most frequent
// first, below the error table.
func writePatternSummary(f *excelize.File, report *batch.Report, st *styleSet, start int, lastCol string) error {
	if len(report.RepeatedPatterns) == 0 {
		return nil
	}

	type patternCount struct {
		pattern string
		count   int
	}
	counts := make([]patternCount, 0, len(report.RepeatedPatterns))
	for pattern, n := range report.RepeatedPatterns {
		counts = append(counts, patternCount{pattern, n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].pattern < counts[j].pattern
	})

	row := start
	anchor := fmt.Sprintf("A%d", row)
	if err := f.MergeCell(ErrorsSheetName, anchor, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
		return err
	}
	if err := f.SetCellValue(ErrorsSheetName, anchor, "RESUMO - JORNADAS REPETIDAS"); err != nil {
		return err
	}
	if err := f.SetCellStyle(ErrorsSheetName, anchor, fmt.Sprintf("%s%d", lastCol, row), st.title); err != nil {
		return err
	}
	row++

	if err := f.SetCellValue(ErrorsSheetName, fmt.Sprintf("A%d", row), "Jornada Completa"); err != nil {
		return err
	}
	if err := f.MergeCell(ErrorsSheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("%s%d", lastCol, row)); err != nil {
		return err
	}
	if err := f.SetCellValue(ErrorsSheetName, fmt.Sprintf("B%d", row), "Quantidade"); err != nil {
		return err
	}
	if err := f.SetCellStyle(ErrorsSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), st.header); err != nil {
		return err
	}
	row++

	for _, pc := range counts {
		if err := f.SetCellValue(ErrorsSheetName, fmt.Sprintf("A%d", row), pc.pattern); err != nil {
			return err
		}
		if err := f.MergeCell(ErrorsSheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("%s%d", lastCol, row)); err != nil {
			return err
		}
		if err := f.SetCellValue(ErrorsSheetName, fmt.Sprintf("B%d", row), pc.count); err != nil {
			return err
		}
		if err := f.SetCellStyle(ErrorsSheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("%s%d", lastCol, row), st.centerCell); err != nil {
			return err
		}
		if row%2 == 0 {
			if err := f.SetCellStyle(ErrorsSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), st.zebra); err != nil {
				return err
			}
		}
		row++
	}

	return nil
}
