package overrides

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
)

// =============================================================================
// DELIMITED TEXT OVERRIDES
// =============================================================================

// utf8BOM is stripped from the first header cell. Spreadsheet exports on
// Windows usually start with one.
const utf8BOM = "\ufeff"

// LoadCSV reads overrides from a delimited text file with the same layout as
// the workbook: a header row naming the file column and canonical keys, then
// one row per input file.
//
// PARAMETERS:
//   - path: The text file.
//   - delimiter: ",", ";", "|" or "tab" (also "\t" and "pipe"). Empty
//     means comma.
//
// RETURNS:
//   - The overrides keyed by file.
//   - A FILE_READ_FAILED error if the file cannot be read, or a
//     CONFIG_INVALID error if it has no file column.
func LoadCSV(path, delimiter string) (*Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewFileReadError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	configureReader(reader, delimiter)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewFileReadError(path, fmt.Errorf("failed to read CSV: %w", err))
	}

	rows = dropEmptyRows(rows)
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}

	return fromRows(path, rows, DefaultWorkbookColumns())
}

// configureReader sets the delimiter and relaxes quoting and column counts.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Rows may be shorter than the header when trailing cells are empty.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// dropEmptyRows removes rows whose cells are all blank.
func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		if !isRowEmpty(row) {
			out = append(out, row)
		}
	}
	return out
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
