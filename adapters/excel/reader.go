package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gochart/adapters/datareadiness"
	"gochart/adapters/datareadiness/coercer"
	"gochart/domain/frame"
	"gochart/domain/schema"
	"gochart/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   ExcelConfig
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, config ExcelConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if config.SheetName == "" {
		config.SheetName = "Sheet1"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		config:   config,
		logger:   internal.DefaultLogger.Named("DataReader"),
	}
}

// ReadData reads the raw text of the file
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("reading %s file %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadFrame reads the file and types every cell with the coercer
func (r *DataReader) ReadFrame(ctx context.Context) (*frame.Frame, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	c := coercer.NewTypeCoercer(r.config.CoercionConfig)
	rows := make([][]any, len(data.Rows))
	for i, raw := range data.Rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := make([]any, len(data.Headers))
		for j := range data.Headers {
			row[j] = c.CoerceCell(raw[j])
		}
		rows[i] = row
	}
	return frame.New(data.Headers, rows), nil
}

// ReadSummary reads the file and profiles it into a DataSummary
func (r *DataReader) ReadSummary(ctx context.Context) (*schema.DataSummary, *frame.Frame, error) {
	f, err := r.ReadFrame(ctx)
	if err != nil {
		return nil, nil, err
	}
	name := strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	summary, err := datareadiness.NewProfilerAdapter(r.config.ProfilingConfig).Summarize(ctx, name, f)
	if err != nil {
		return nil, nil, fmt.Errorf("profile %s: %w", r.filePath, err)
	}
	return summary, f, nil
}

// readExcelData reads the configured sheet
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.SheetName, err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", r.config.SheetName, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// readCSVData reads CSV data
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}
	return r.processRows(rows)
}

// processRows trims headers and pads short rows
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	seen := make(map[string]bool, len(headerRow))
	for i, header := range headerRow {
		h := strings.TrimSpace(header)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("duplicate header %q", h)
		}
		seen[h] = true
		headers[i] = h
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		padded := make([]string, len(headers))
		for j := 0; j < len(row) && j < len(headers); j++ {
			padded[j] = strings.TrimSpace(row[j])
		}
		dataRows = append(dataRows, padded)
	}

	r.logger.Debug("%s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{Headers: headers, Rows: dataRows}, nil
}
