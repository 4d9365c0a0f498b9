package output

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// Report sheet names.
const (
	ReportRecordsSheet = "Records"
	ReportIssuesSheet  = "Issues"
)

// ReportRow is one processed sheet in the batch report.
type ReportRow struct {
	// Source names the input file when Document is nil.
	Source string

	Document *Document

	// Outputs lists the files written for the sheet.
	Outputs []string

	// Error is set when the sheet failed before a document existed or while
	// writing it.
	Error string
}

var reportPrefixColumns = []string{"File", "Dialect", "Dialect Source", "Valid", "Errors", "Warnings", "Outputs", "Failure"}

// WriteReport writes an XLSX workbook with a Records sheet (one row per
// sheet, canonical fields as columns) and an Issues sheet (one row per
// validation issue).
func WriteReport(path string, rows []ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportRecordsSheet); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	if _, err := f.NewSheet(ReportIssuesSheet); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	if err := writeRecordsSheet(f, rows, headerStyle); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	if err := writeIssuesSheet(f, rows, headerStyle); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	return nil
}

func writeRecordsSheet(f *excelize.File, rows []ReportRow, headerStyle int) error {
	header := make([]interface{}, 0, len(reportPrefixColumns)+len(types.CanonicalKeys))
	for _, col := range reportPrefixColumns {
		header = append(header, col)
	}
	for _, key := range types.CanonicalKeys {
		header = append(header, key)
	}
	if err := writeHeader(f, ReportRecordsSheet, header, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		values := make([]interface{}, 0, len(header))
		doc := row.Document
		if doc == nil {
			doc = &Document{}
		}

		source := doc.Source
		if source == "" {
			source = row.Source
		}
		valid, errCount, warnCount := "", "", ""
		if doc.Validation != nil {
			valid = fmt.Sprintf("%t", doc.Validation.IsValid)
			errCount = fmt.Sprintf("%d", len(doc.Validation.Errors))
			warnCount = fmt.Sprintf("%d", len(doc.Validation.Warnings))
		}
		dialect := ""
		if doc.Dialect != "" {
			dialect = doc.Dialect.String()
		}

		values = append(values, source, dialect, doc.DialectSource, valid, errCount, warnCount,
			strings.Join(row.Outputs, ", "), row.Error)
		for _, key := range types.CanonicalKeys {
			values = append(values, doc.Fields.Get(key))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ReportRecordsSheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SetPanes(ReportRecordsSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})
}

func writeIssuesSheet(f *excelize.File, rows []ReportRow, headerStyle int) error {
	header := []interface{}{"File", "Dialect", "Severity", "Field", "Rule", "Message"}
	if err := writeHeader(f, ReportIssuesSheet, header, headerStyle); err != nil {
		return err
	}

	next := 2
	for _, row := range rows {
		doc := row.Document
		if doc == nil || doc.Validation == nil {
			continue
		}
		for _, issue := range doc.Validation.Issues {
			cell, err := excelize.CoordinatesToCellName(1, next)
			if err != nil {
				return err
			}
			values := []interface{}{doc.Source, doc.Dialect.String(), issue.Severity, issue.Field, issue.Rule, issue.Message}
			if err := f.SetSheetRow(ReportIssuesSheet, cell, &values); err != nil {
				return err
			}
			next++
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
