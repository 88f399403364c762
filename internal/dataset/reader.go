package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"emiscli/internal/errors"
)

// Read loads a raw dataset, picking the reader by file extension.
// .xlsx workbooks go through excelize; everything else is treated as CSV.
func Read(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}
	return ReadCSV(path)
}

// ReadCSV loads a raw wide-format CSV into memory.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open input file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, cells resolve via header index

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV input", err).
			WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, errors.NewParsingError("input file has no header row", nil).
			WithContext("path", path)
	}

	header := trimBOM(records[0])
	return NewTable(header, records[1:]), nil
}

// ReadXLSX loads a raw wide-format sheet from an Excel workbook. It scans the
// sheet list for the first sheet whose header row carries the required
// identifier columns, so exports with cover sheets still load.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		if hasRequiredHeader(rows[0]) {
			return NewTable(rows[0], rows[1:]), nil
		}
	}

	return nil, errors.NewParsingError("no sheet with Area/Item/Element header found in workbook", nil).
		WithContext("path", path)
}

// hasRequiredHeader reports whether a header row carries all required columns.
func hasRequiredHeader(header []string) bool {
	present := make(map[string]bool, len(header))
	for _, c := range header {
		present[strings.TrimSpace(c)] = true
	}
	for _, c := range requiredColumns {
		if !present[c] {
			return false
		}
	}
	return true
}

// trimBOM strips a UTF-8 byte order mark from the first header cell.
// Spreadsheet exports routinely prepend one.
func trimBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}
