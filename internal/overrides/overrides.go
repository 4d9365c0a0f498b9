// =============================================================================
// VAR Sheet Mapper - Field Overrides
// =============================================================================
//
// Overrides replace mapped values after the dialect mapping has run. They come
// from three layers, merged in this order (later wins):
//   1. default_overrides in the main config
//   2. the overrides workbook (one row per input file)
//   3. --set KEY=VALUE flags on the command line
//
// WORKBOOK STRUCTURE (Expected Columns):
//   The file is an XLSX workbook or a delimited text file with the same
//   layout. The first row holds headers. One column names the input file, every other
//   column is a canonical field key. Header matching ignores case.
//
//   | File      | TSYS_Terminal_Number | Merchant_Time_Zone | Processing_Debit |
//   |-----------|----------------------|--------------------|------------------|
//   | acme.txt  | 0002                 |                    | MHC              |
//   | harbor    |                      | 706                |                  |
//
//   - The file cell is matched against the input base name, so "acme",
//     "acme.txt" and "acme.txt.gz" all address the same sheet
//   - Empty cells set nothing
//   - Columns that are not canonical keys are reported and ignored
//
// =============================================================================

package overrides

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
	"github.com/ginjaninja78/VAR-sheet-mapper/pkg/utils"
)

// =============================================================================
// WORKBOOK STRUCTURE
// =============================================================================

// Workbook holds the per-file overrides read from an XLSX sheet.
type Workbook struct {
	// Path is the source workbook.
	Path string

	// Rows maps a lowercased file base name to its overrides.
	Rows map[string]map[string]string

	// IgnoredColumns lists headers that are not canonical keys.
	IgnoredColumns []string
}

// WorkbookColumns configures how the overrides sheet is read.
type WorkbookColumns struct {
	// SheetName selects the sheet. Empty means the first sheet.
	SheetName string

	// FileHeaders are the accepted names of the file column.
	FileHeaders []string

	// HeaderRow is the row number containing column headers (0-based).
	// Default: 0 (Row 1)
	HeaderRow int
}

// DefaultWorkbookColumns returns the default column configuration.
func DefaultWorkbookColumns() WorkbookColumns {
	return WorkbookColumns{
		FileHeaders: []string{"file", "file name", "filename", "source"},
		HeaderRow:   0,
	}
}

// =============================================================================
// WORKBOOK LOADING
// =============================================================================

// Load reads an overrides file with the default layout. Files ending in
// .csv, .tsv or .txt are read as delimited text, everything else as XLSX.
func Load(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path, ",")
	case ".tsv", ".txt":
		return LoadCSV(path, "tab")
	}
	return LoadWorkbook(path)
}

// LoadWorkbook reads an overrides workbook with the default layout.
func LoadWorkbook(path string) (*Workbook, error) {
	return LoadWorkbookWithConfig(path, DefaultWorkbookColumns())
}

// LoadWorkbookWithConfig reads an overrides workbook.
//
// RETURNS:
//   - The workbook overrides keyed by file.
//   - A FILE_READ_FAILED error if the workbook cannot be opened, or a
//     CONFIG_INVALID error if it has no file column.
func LoadWorkbookWithConfig(path string, columns WorkbookColumns) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewFileReadError(path, err)
	}
	defer f.Close()

	sheetName := columns.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, apperrors.NewConfigInvalidError(path, fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.NewFileReadError(path, fmt.Errorf("failed to read rows: %w", err))
	}

	return fromRows(path, rows, columns)
}

// fromRows builds the overrides from a header row and data rows.
func fromRows(path string, rows [][]string, columns WorkbookColumns) (*Workbook, error) {
	workbook := &Workbook{
		Path: path,
		Rows: make(map[string]map[string]string),
	}

	if len(rows) <= columns.HeaderRow {
		return workbook, nil
	}

	fileColumn, keyColumns, ignored := parseHeader(rows[columns.HeaderRow], columns.FileHeaders)
	if fileColumn < 0 {
		return nil, apperrors.NewConfigInvalidError(path,
			fmt.Errorf("no file column found (expected one of %s)", strings.Join(columns.FileHeaders, ", ")))
	}
	workbook.IgnoredColumns = ignored

	for i := columns.HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]

		getCell := func(index int) string {
			if index < len(row) {
				return strings.TrimSpace(row[index])
			}
			return ""
		}

		file := getCell(fileColumn)
		if file == "" {
			continue
		}

		key := fileKey(file)
		values := workbook.Rows[key]
		if values == nil {
			values = make(map[string]string)
		}
		for index, field := range keyColumns {
			if value := getCell(index); value != "" {
				values[field] = value
			}
		}
		if len(values) > 0 {
			workbook.Rows[key] = values
		}
	}

	return workbook, nil
}

// parseHeader locates the file column and the canonical key columns.
func parseHeader(header []string, fileHeaders []string) (int, map[int]string, []string) {
	fileColumn := -1
	keyColumns := make(map[int]string)
	var ignored []string

	for i, cell := range header {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if fileColumn < 0 && containsFold(fileHeaders, name) {
			fileColumn = i
			continue
		}
		if key, ok := types.LookupCanonicalKey(name); ok {
			keyColumns[i] = key
			continue
		}
		ignored = append(ignored, name)
	}

	return fileColumn, keyColumns, ignored
}

// For returns a copy of the overrides recorded for an input file, or nil.
func (w *Workbook) For(fileName string) map[string]string {
	if w == nil {
		return nil
	}
	values, ok := w.Rows[fileKey(fileName)]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

// Files returns the file keys with overrides, sorted.
func (w *Workbook) Files() []string {
	if w == nil {
		return nil
	}
	files := make([]string, 0, len(w.Rows))
	for file := range w.Rows {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

func fileKey(name string) string {
	return strings.ToLower(utils.BaseName(strings.TrimSpace(name)))
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// =============================================================================
// COMMAND LINE ASSIGNMENTS
// =============================================================================

// ParseAssignments parses KEY=VALUE pairs. Keys are matched against the
// canonical keys ignoring case; the value may be empty to clear a field.
func ParseAssignments(assignments []string) (map[string]string, error) {
	out := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		name, value, ok := strings.Cut(assignment, "=")
		if !ok {
			return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("override %q is not KEY=VALUE", assignment))
		}
		key, known := types.LookupCanonicalKey(name)
		if !known {
			return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf("override key %q is not a canonical field", strings.TrimSpace(name)))
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// Merge layers override maps; later layers win. Unknown keys are dropped.
func Merge(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, layer := range layers {
		for name, value := range layer {
			if key, ok := types.LookupCanonicalKey(name); ok {
				out[key] = value
			}
		}
	}
	return out
}
