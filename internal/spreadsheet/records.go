package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmpty is returned when a file has no header row.
var ErrEmpty = errors.New("spreadsheet: file is empty")

// Record is one data row keyed by its header cell.
type Record map[string]string

// ReadFile loads records from a .csv or .xlsx file. Only the first sheet of a
// workbook is read.
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(file)
	case ".csv", "":
		return ReadCSV(file)
	default:
		return nil, fmt.Errorf("spreadsheet: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCSV reads comma separated records with a header row.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return toRecords(rows)
}

// ReadXLSX reads the first sheet of a workbook with a header row.
func ReadXLSX(r io.Reader) ([]Record, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toRecords(rows)
}

func toRecords(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	header := make([]string, len(rows[0]))
	for idx, key := range rows[0] {
		header[idx] = normalizeHeader(key)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(header))
		blank := true
		for idx, key := range header {
			if key == "" || idx >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[idx])
			if value != "" {
				blank = false
			}
			record[key] = value
		}
		if blank {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// normalizeHeader folds "Purchase Unit", "purchase_unit" and "PURCHASE-UNIT" to the same key.
func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(value, "\ufeff")))
	value = strings.NewReplacer(" ", "_", "-", "_").Replace(value)
	return value
}
