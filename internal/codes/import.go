package codes

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportFile reads a code catalog from an .xlsx, .csv or .json file and
// merges it into the store. Spreadsheet and CSV files carry code in the
// first column and the time pattern in the second; skipHeader drops the
// first row. Returns the number of entries imported.
func (s *Store) ImportFile(path string, skipHeader bool) (int, error) {
	var (
		entries map[string]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		entries, err = readExcel(path, skipHeader)
	case ".csv":
		entries, err = readCSV(path, skipHeader)
	case ".json":
		entries, err = readJSON(path)
	default:
		return 0, fmt.Errorf("codes: unsupported import format %q", filepath.Ext(path))
	}
	if err != nil {
		return 0, err
	}

	return s.ImportMerge(entries)
}

func readExcel(path string, skipHeader bool) (map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("codes: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("codes: %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("codes: read %s: %w", path, err)
	}

	entries := make(map[string]string)
	for i, row := range rows {
		if skipHeader && i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		code := strings.TrimSpace(row[0])
		times := strings.TrimSpace(row[1])
		if code != "" && times != "" {
			entries[times] = code
		}
	}
	return entries, nil
}

func readCSV(path string, skipHeader bool) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("codes: open %s: %w", path, err)
	}
	defer f.Close()

	entries := make(map[string]string)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if skipHeader && line == 1 {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		// Accept comma, semicolon or tab as separator; split once so
		// patterns may themselves contain separators.
		sep := strings.IndexAny(text, ",;\t")
		if sep < 0 {
			continue
		}
		code := strings.Trim(strings.TrimSpace(text[:sep]), `"`)
		times := strings.Trim(strings.TrimSpace(text[sep+1:]), `"`)
		if code != "" && times != "" {
			entries[times] = code
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("codes: read %s: %w", path, err)
	}
	return entries, nil
}

func readJSON(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codes: open %s: %w", path, err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("codes: parse %s: %w", path, err)
	}
	return entries, nil
}
