package frame

import (
	"gochart/domain/chart"
	"gochart/domain/core"
)

// ResolveAxisColumns maps an axis role onto physical result columns. The
// lookup order is fixed:
//  1. a column literally named after the role ("xAxis", "yAxis", ...)
//  2. the bound column when it is a single name present in the result
//  3. the bound column list when every member is present
//  4. the bound title used as a column name
func ResolveAxisColumns(role chart.AxisRole, binding chart.AxisBinding, columns []string) ([]string, error) {
	has := make(map[string]bool, len(columns))
	for _, c := range columns {
		has[c] = true
	}

	if has[string(role)] {
		return []string{string(role)}, nil
	}

	field, ok := binding.Get(role)
	if !ok {
		if f, bound := bindingTitle(binding, role); bound && has[f] {
			return []string{f}, nil
		}
		return nil, core.NewAxisNotFoundError(string(role))
	}

	if !field.ListValued && len(field.Columns) == 1 && has[field.Columns[0]] {
		return []string{field.Columns[0]}, nil
	}

	if field.ListValued || len(field.Columns) > 1 {
		all := len(field.Columns) > 0
		for _, c := range field.Columns {
			if !has[c] {
				all = false
				break
			}
		}
		if all {
			return append([]string(nil), field.Columns...), nil
		}
	}

	if field.Title != "" && has[field.Title] {
		return []string{field.Title}, nil
	}
	return nil, core.NewAxisNotFoundError(string(role))
}

// ResolveAxisColumn returns the first column resolved for role
func ResolveAxisColumn(role chart.AxisRole, binding chart.AxisBinding, columns []string) (string, error) {
	cols, err := ResolveAxisColumns(role, binding, columns)
	if err != nil {
		return "", err
	}
	return cols[0], nil
}

func bindingTitle(binding chart.AxisBinding, role chart.AxisRole) (string, bool) {
	v, ok := binding.Flat()[role.TitleKey()].(string)
	return v, ok && v != ""
}
