package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table is a header row plus data rows keyed by normalized column name.
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(path string) (*table, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSVFile(path)
	case ".xlsx", ".xlsm":
		records, err = readXLSXFile(path)
	default:
		return nil, fmt.Errorf("unsupported table format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return newTable(records)
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readCSV(f, path)
}

func readCSV(r io.Reader, name string) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%s is not valid UTF-8", name)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", name, err)
	}
	return records, nil
}

// readXLSXFile reads the first sheet of the workbook.
func readXLSXFile(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func newTable(records [][]string) (*table, error) {
	if len(records) == 0 {
		return nil, errors.New("table has no header row")
	}
	t := &table{columns: make(map[string]int, len(records[0]))}
	for i, name := range records[0] {
		key := headerKey(name)
		if key == "" {
			continue
		}
		if _, dup := t.columns[key]; !dup {
			t.columns[key] = i
		}
	}
	for _, row := range records[1:] {
		if blankRow(row) {
			continue
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// column returns the index of the first header matching any alias.
func (t *table) column(aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := t.columns[headerKey(alias)]; ok {
			return idx, true
		}
	}
	return -1, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// headerKey folds "Required Skills", "required_skills" and "RequiredSkills"
// to the same key.
func headerKey(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '_', '-', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
