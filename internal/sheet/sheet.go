// Package sheet binds the batch pipeline to xlsx workbooks: a row
// source over the first worksheet and an annotator that writes the
// validation outcome back into the file.
package sheet

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets means the workbook has no worksheets at all.
var ErrNoSheets = errors.New("sheet: workbook has no worksheets")

// Source reads spreadsheet rows from the first worksheet of an xlsx
// file. It satisfies batch.RowSource.
type Source struct {
	file  *excelize.File
	path  string
	sheet string
}

// Open opens the workbook at path and targets its first worksheet.
func Open(path string) (*Source, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, ErrNoSheets
	}

	return &Source{file: f, path: path, sheet: sheets[0]}, nil
}

// File returns the workbook path.
func (s *Source) File() string { return s.path }

// Sheet returns the active worksheet name.
func (s *Source) Sheet() string { return s.sheet }

// Rows returns every row of the worksheet as indexed cell arrays.
func (s *Source) Rows() ([][]string, error) {
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows from %s: %w", s.sheet, err)
	}
	return rows, nil
}

// Close releases the open workbook.
func (s *Source) Close() error {
	return s.file.Close()
}
