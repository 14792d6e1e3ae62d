package schema

import (
	"testing"

	"gochart/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regionSummary() *DataSummary {
	return &DataSummary{
		ColumnNames:  []string{"Region", "Revenue"},
		UniqueCounts: map[string]int{"Region": 4, "Revenue": 4},
		Tribes:       map[string]Tribe{"Region": TribeCategorical, "Revenue": TribeNumerical},
		SQLTypes:     map[string]string{"Region": "TEXT", "Revenue": "NUMERIC"},
	}
}

func TestValidateAcceptsSubsetMappings(t *testing.T) {
	require.NoError(t, regionSummary().Validate())
}

func TestValidateRejectsUnknownKeys(t *testing.T) {
	s := regionSummary()
	s.UniqueCounts["Country"] = 30

	err := s.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidSummary)
	assert.Contains(t, err.Error(), "Country")
}

func TestValidateRejectsDuplicateColumns(t *testing.T) {
	s := regionSummary()
	s.ColumnNames = append(s.ColumnNames, "Region")
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidSummary)
}

func TestValidateRejectsUnknownTribe(t *testing.T) {
	s := regionSummary()
	s.Tribes["Region"] = Tribe("geo")
	assert.ErrorIs(t, s.Validate(), core.ErrInvalidSummary)
}

func TestColumnsWhereKeepsOrder(t *testing.T) {
	s := regionSummary()
	got := s.ColumnsWhere(func(c string) bool { return s.TribeOf(c) != TribeID })
	assert.Equal(t, []string{"Region", "Revenue"}, got)

	n, ok := s.Cardinality("Region")
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}
