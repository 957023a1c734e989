package excel

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"hpoannotate/domain/annotation"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet exported annotations are written to
const SheetName = "annotations"

// CSVWriter writes annotation tables with every field quoted, so embedded
// delimiters, quotes and newlines survive a round trip.
type CSVWriter struct{}

// Format returns the format key
func (CSVWriter) Format() string { return "csv" }

// Extension returns the file extension including the dot
func (CSVWriter) Extension() string { return ".csv" }

// ContentType returns the MIME type served with the payload
func (CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// Write serializes the header and rows in index order
func (CSVWriter) Write(w io.Writer, rows []annotation.Judgment) error {
	bw := bufio.NewWriter(w)
	if err := writeQuotedRecord(bw, annotation.ExportColumns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeQuotedRecord(bw, row.Fields()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeQuotedRecord writes one line; encoding/csv only quotes when needed
func writeQuotedRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// XLSXWriter writes annotation tables as an Excel workbook
type XLSXWriter struct{}

// Format returns the format key
func (XLSXWriter) Format() string { return "xlsx" }

// Extension returns the file extension including the dot
func (XLSXWriter) Extension() string { return ".xlsx" }

// ContentType returns the MIME type served with the payload
func (XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Write serializes the header and rows into a single sheet
func (XLSXWriter) Write(w io.Writer, rows []annotation.Judgment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := setStringRow(f, 1, annotation.ExportColumns); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setStringRow(f, i+2, row.Fields()); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setStringRow(f *excelize.File, rowNum int, fields []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(fields))
	for i, field := range fields {
		values[i] = field
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

// ParseCSV reads an exported annotation table back into judgments
func ParseCSV(src io.Reader) ([]annotation.Judgment, error) {
	rows, err := readAllCSV(src)
	if err != nil {
		return nil, err
	}
	return judgmentsFromRows(rows)
}

// ParseXLSX reads an exported workbook back into judgments
func ParseXLSX(src io.Reader) ([]annotation.Judgment, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, err
	}
	return judgmentsFromRows(rows)
}

func judgmentsFromRows(rows [][]string) ([]annotation.Judgment, error) {
	table, err := tableFromRows(rows)
	if err != nil {
		return nil, err
	}
	if strings.Join(table.Headers, ",") != strings.Join(annotation.ExportColumns, ",") {
		return nil, fmt.Errorf("unexpected header %v, want %v", table.Headers, annotation.ExportColumns)
	}

	out := make([]annotation.Judgment, len(table.Rows))
	for i, row := range table.Rows {
		j, err := annotation.JudgmentFromFields(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out[i] = j
	}
	return out, nil
}
