package excel

import (
	"gochart/adapters/datareadiness"
	"gochart/adapters/datareadiness/coercer"
)

// ExcelConfig holds configuration for spreadsheet data sources
type ExcelConfig struct {
	SheetName       string                        `json:"sheet_name"`
	CoercionConfig  coercer.CoercionConfig        `json:"coercion_config"`
	ProfilingConfig datareadiness.ProfilingConfig `json:"profiling_config"`
}

// DefaultExcelConfig returns sensible defaults for spreadsheet processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		SheetName:       "Sheet1",
		CoercionConfig:  coercer.DefaultCoercionConfig(),
		ProfilingConfig: datareadiness.DefaultProfilingConfig(),
	}
}
