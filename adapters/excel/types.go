package excel

// ExcelData is the raw text content of a sheet
type ExcelData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, padded to len(Headers)
}
