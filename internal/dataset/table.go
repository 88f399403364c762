package dataset

import (
	"regexp"
	"strconv"
	"strings"

	"emiscli/internal/errors"
)

// Required identifier columns of the raw wide-format table.
var requiredColumns = []string{"Area", "Item", "Element"}

// yearColumnPattern matches wide-format year columns such as Y2010.
var yearColumnPattern = regexp.MustCompile(`^Y\d+$`)

// Table is a raw tabular dataset held fully in memory: a header and string
// cells, exactly as read from the input file.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table from a header and rows.
func NewTable(columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	return &Table{Columns: columns, Rows: rows, index: index}
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Cell returns the value of a column in a row; empty string when the row is
// ragged or the column is absent.
func (t *Table) Cell(row []string, column string) string {
	i := t.ColumnIndex(column)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Validate confirms the required identifier columns exist and at least one
// year column is present. It is read-only and reports every missing column
// in one error.
func (t *Table) Validate() error {
	var missing []string
	for _, c := range requiredColumns {
		if t.ColumnIndex(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingColumnsError(missing)
	}
	if len(t.YearColumns()) == 0 {
		return errors.NewNoYearColumnsError()
	}
	return nil
}

// YearColumn is a detected wide-format year column and its parsed year.
type YearColumn struct {
	Name string
	Year int
}

// YearColumns detects columns named Y<digits> in header order.
func (t *Table) YearColumns() []YearColumn {
	var cols []YearColumn
	for _, c := range t.Columns {
		if !yearColumnPattern.MatchString(c) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimPrefix(c, "Y"))
		if err != nil {
			continue
		}
		cols = append(cols, YearColumn{Name: c, Year: year})
	}
	return cols
}
