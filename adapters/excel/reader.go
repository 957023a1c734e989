package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hpoannotate/domain/annotation"
	"hpoannotate/domain/core"
	"hpoannotate/internal"
	"hpoannotate/internal/errors"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const utf8BOM = "\ufeff"

// DataReader handles reading dataset files in CSV or Excel format
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	return &DataReader{
		filePath: filePath,
		fileType: fileTypeOf(filePath),
		logger:   internal.DefaultLogger.With("dataset"),
	}
}

func fileTypeOf(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		return "xlsx"
	}
	return "csv"
}

// Path returns the file the reader loads
func (r *DataReader) Path() string {
	return r.filePath
}

// ReadRecords loads the dataset and validates it into records.
// Every cell is kept as a literal string.
func (r *DataReader) ReadRecords(ctx context.Context) ([]annotation.Record, error) {
	table, err := r.ReadData(ctx)
	if err != nil {
		return nil, err
	}

	records, err := recordsFromTable(table)
	if err != nil {
		return nil, errors.DatasetMalformed(r.filePath, err)
	}

	r.logger.Info("Loaded %d records from %s", len(records), r.filePath)
	return records, nil
}

// ReadData reads the file into a raw table
func (r *DataReader) ReadData(ctx context.Context) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Debug("Starting to read %s file: %s", r.fileType, r.filePath)

	// Check if file exists
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.DatasetNotFound(r.filePath, core.ErrDatasetNotFound)
	}

	var rows [][]string
	var err error
	readStart := time.Now()
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		rows, err = r.readCSVRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s file read in %.2fms (%d rows)", strings.ToUpper(r.fileType),
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	table, err := tableFromRows(rows)
	if err != nil {
		return nil, errors.DatasetMalformed(r.filePath, err)
	}
	return table, nil
}

// readCSVRows reads CSV data with every field treated as a quoted literal
func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	rows, err := readAllCSV(file)
	if err != nil {
		return nil, errors.DatasetMalformed(r.filePath, err)
	}
	return rows, nil
}

// readExcelRows reads the first sheet of a workbook
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.DatasetMalformed(r.filePath, fmt.Errorf("failed to open Excel file: %w", err))
	}
	defer f.Close()

	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, errors.DatasetMalformed(r.filePath, err)
	}
	return rows, nil
}

// readAllCSV drops a leading byte order mark before parsing, so a quoted
// first header is still seen as quoted.
func readAllCSV(src io.Reader) ([][]string, error) {
	decoded := transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	// all rows must have as many fields as the header
	reader.FieldsPerRecord = 0
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	// excelize drops trailing empty cells and returns blank rows as empty slices
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		for len(row) < width {
			row = append(row, "")
		}
		out = append(out, row)
	}
	return out, nil
}

// tableFromRows splits off and normalizes the header row
func tableFromRows(rows [][]string) (*RawTable, error) {
	if len(rows) == 0 {
		return nil, core.NewMalformedError(1, "missing header row")
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		if i == 0 {
			header = strings.TrimPrefix(header, utf8BOM)
		}
		headers[i] = strings.TrimSpace(header)
	}

	for i, row := range rows[1:] {
		if len(row) != len(headers) {
			return nil, core.NewMalformedError(i+2, fmt.Sprintf("expected %d fields, got %d", len(headers), len(row)))
		}
	}

	return &RawTable{
		Headers: headers,
		Rows:    rows[1:],
	}, nil
}

// recordsFromTable maps the required columns onto records.
// Extra columns are ignored.
func recordsFromTable(table *RawTable) ([]annotation.Record, error) {
	index := make(map[string]int, len(annotation.RequiredColumns))
	for _, column := range annotation.RequiredColumns {
		i := table.Column(column)
		if i < 0 {
			return nil, core.NewMissingColumnError(column)
		}
		index[column] = i
	}

	records := make([]annotation.Record, len(table.Rows))
	for i, row := range table.Rows {
		records[i] = annotation.Record{
			HPOLabel: row[index[annotation.ColumnHPOLabel]],
			HPOID:    row[index[annotation.ColumnHPOID]],
			Sentence: row[index[annotation.ColumnSentence]],
			Span:     row[index[annotation.ColumnSpan]],
		}
	}
	return records, nil
}
