package schema

import (
	"fmt"
	"sort"

	"gochart/domain/core"
)

// Tribe is the semantic family of a column
type Tribe string

const (
	TribeCategorical Tribe = "categorical"
	TribeNumerical   Tribe = "numerical"
	TribeDateRelated Tribe = "date_related"
	TribeID          Tribe = "id"
)

// Valid reports whether t is one of the known tribes
func (t Tribe) Valid() bool {
	switch t {
	case TribeCategorical, TribeNumerical, TribeDateRelated, TribeID:
		return true
	}
	return false
}

// DataSummary describes the schema a chart question is asked against.
// It is supplied by the schema-summarization layer and treated as read-only.
type DataSummary struct {
	DDL                string            `json:"ddl"`
	TableDescription   string            `json:"table_description"`
	ColumnDescriptions map[string]string `json:"column_description_dict"`
	ColumnNames        []string          `json:"column_name_list"`
	UniqueCounts       map[string]int    `json:"column_n_unique_value_dict"`
	Tribes             map[string]Tribe  `json:"column_data_tribes"`
	SQLTypes           map[string]string `json:"column_sql_types"`
	DatabaseTag        string            `json:"database_tag"`
}

// Validate checks column uniqueness and that every per-column mapping only
// names columns from ColumnNames.
func (s *DataSummary) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: summary is nil", core.ErrInvalidSummary)
	}
	if len(s.ColumnNames) == 0 {
		return fmt.Errorf("%w: column_name_list is empty", core.ErrInvalidSummary)
	}

	seen := make(map[string]bool, len(s.ColumnNames))
	for _, name := range s.ColumnNames {
		if name == "" {
			return fmt.Errorf("%w: empty column name", core.ErrInvalidSummary)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate column %q", core.ErrInvalidSummary, name)
		}
		seen[name] = true
	}

	check := func(field string, keys []string) error {
		for _, k := range keys {
			if !seen[k] {
				return fmt.Errorf("%w: %s references unknown column %q", core.ErrInvalidSummary, field, k)
			}
		}
		return nil
	}
	if err := check("column_description_dict", keysOf(s.ColumnDescriptions)); err != nil {
		return err
	}
	if err := check("column_n_unique_value_dict", keysOf(s.UniqueCounts)); err != nil {
		return err
	}
	if err := check("column_data_tribes", keysOf(s.Tribes)); err != nil {
		return err
	}
	if err := check("column_sql_types", keysOf(s.SQLTypes)); err != nil {
		return err
	}

	for col, tribe := range s.Tribes {
		if !tribe.Valid() {
			return fmt.Errorf("%w: column %q has unknown tribe %q", core.ErrInvalidSummary, col, tribe)
		}
	}
	return nil
}

// HasColumn reports whether name is in ColumnNames
func (s *DataSummary) HasColumn(name string) bool {
	for _, c := range s.ColumnNames {
		if c == name {
			return true
		}
	}
	return false
}

// TribeOf returns the tribe for a column, or "" when unknown
func (s *DataSummary) TribeOf(column string) Tribe {
	return s.Tribes[column]
}

// Cardinality returns the distinct value count and whether it is known
func (s *DataSummary) Cardinality(column string) (int, bool) {
	n, ok := s.UniqueCounts[column]
	return n, ok
}

// ColumnsWhere filters ColumnNames, preserving order
func (s *DataSummary) ColumnsWhere(keep func(column string) bool) []string {
	out := make([]string, 0, len(s.ColumnNames))
	for _, c := range s.ColumnNames {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
