package chart

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AxisRole names a logical axis slot of a chart
type AxisRole string

const (
	RoleX      AxisRole = "xAxis"
	RoleY      AxisRole = "yAxis"
	RoleY2     AxisRole = "yAxis2"
	RoleY3     AxisRole = "yAxis3"
	RoleZ      AxisRole = "zAxis"
	RoleSeries AxisRole = "series"
	RoleYBar   AxisRole = "yAxisBar"
	RoleYLine  AxisRole = "yAxisLine"
)

const (
	allSentinel  = "all"
	titleSuffix  = "_title"
	columnSuffix = "_column"
	aggSuffix    = "_aggregation"
)

// Roles lists every role in display order
var Roles = []AxisRole{RoleX, RoleY, RoleY2, RoleY3, RoleZ, RoleSeries, RoleYBar, RoleYLine}

// YRoles are the value-bearing roles checked for duplicates and all-zero data
var YRoles = []AxisRole{RoleY, RoleY2, RoleY3, RoleYBar, RoleYLine}

// HasAggregation reports whether the role carries an aggregation verb
func (r AxisRole) HasAggregation() bool {
	return r != RoleX && r != RoleSeries
}

// TitleKey, ColumnKey and AggregationKey return the flat binding keys
func (r AxisRole) TitleKey() string       { return string(r) + titleSuffix }
func (r AxisRole) ColumnKey() string      { return string(r) + columnSuffix }
func (r AxisRole) AggregationKey() string { return string(r) + aggSuffix }

// Keys returns the flat keys a binding for r must carry
func (r AxisRole) Keys() []string {
	if r.HasAggregation() {
		return []string{r.TitleKey(), r.ColumnKey(), r.AggregationKey()}
	}
	return []string{r.TitleKey(), r.ColumnKey()}
}

// AxisField is one bound role
type AxisField struct {
	Title       string
	Columns     []string
	ListValued  bool
	Aggregation string
}

// Column returns the first bound column
func (f AxisField) Column() string {
	if len(f.Columns) == 0 {
		return ""
	}
	return f.Columns[0]
}

// Empty reports whether nothing is bound
func (f AxisField) Empty() bool {
	return len(f.Columns) == 0 && f.Title == ""
}

// AxisBinding maps axis roles to result columns, titles and aggregations.
// The zero value binds nothing; All marks the table sentinel.
type AxisBinding struct {
	All    bool
	fields map[AxisRole]AxisField
}

// NewAxisBinding returns an empty binding
func NewAxisBinding() AxisBinding {
	return AxisBinding{fields: make(map[AxisRole]AxisField)}
}

// AllColumns is the sentinel binding used by table charts
func AllColumns() AxisBinding {
	return AxisBinding{All: true, fields: make(map[AxisRole]AxisField)}
}

// Set binds a role, returning the binding for chaining
func (b AxisBinding) Set(role AxisRole, f AxisField) AxisBinding {
	out := b.Clone()
	if f.Empty() {
		delete(out.fields, role)
		return out
	}
	out.fields[role] = f
	return out
}

// Get returns the field bound to role
func (b AxisBinding) Get(role AxisRole) (AxisField, bool) {
	f, ok := b.fields[role]
	return f, ok && len(f.Columns) > 0
}

// Has reports whether role has at least one column bound
func (b AxisBinding) Has(role AxisRole) bool {
	_, ok := b.Get(role)
	return ok
}

// BoundRoles returns the roles with columns, in display order
func (b AxisBinding) BoundRoles() []AxisRole {
	var out []AxisRole
	for _, r := range Roles {
		if b.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns a deep copy
func (b AxisBinding) Clone() AxisBinding {
	out := AxisBinding{All: b.All, fields: make(map[AxisRole]AxisField, len(b.fields))}
	for r, f := range b.fields {
		f.Columns = append([]string(nil), f.Columns...)
		out.fields[r] = f
	}
	return out
}

// Alias moves the field bound at from to to, replacing whatever was there
func (b AxisBinding) Alias(from, to AxisRole) AxisBinding {
	out := b.Clone()
	f, ok := out.fields[from]
	if !ok {
		return out
	}
	delete(out.fields, from)
	out.fields[to] = f
	return out
}

// Flat renders the binding as the flat key map exchanged with the model
// and the feedback service.
func (b AxisBinding) Flat() map[string]any {
	out := make(map[string]any)
	if b.All {
		out[allSentinel] = allSentinel
		return out
	}
	for r, f := range b.fields {
		out[r.TitleKey()] = f.Title
		if f.ListValued {
			out[r.ColumnKey()] = append([]string(nil), f.Columns...)
		} else {
			out[r.ColumnKey()] = f.Column()
		}
		if r.HasAggregation() {
			out[r.AggregationKey()] = f.Aggregation
		}
	}
	return out
}

// MarshalJSON renders the flat key form
func (b AxisBinding) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Flat())
}

// UnmarshalJSON reads the flat key form
func (b *AxisBinding) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseFlatBinding(raw)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseFlatBinding converts a flat key map into a binding. Roles whose title
// and column are both empty are left unbound. No schema checks are made here.
func ParseFlatBinding(raw map[string]any) (AxisBinding, error) {
	if v, ok := raw[allSentinel]; ok && fmt.Sprint(v) == allSentinel {
		return AllColumns(), nil
	}
	b := NewAxisBinding()
	for _, r := range Roles {
		title, _ := raw[r.TitleKey()].(string)
		colRaw, hasCol := raw[r.ColumnKey()]
		if !hasCol && title == "" {
			continue
		}
		f := AxisField{Title: strings.TrimSpace(title)}
		switch v := colRaw.(type) {
		case nil:
		case string:
			if s := strings.TrimSpace(v); s != "" {
				f.Columns = []string{s}
			}
		case []string:
			f.Columns = trimAll(v)
			f.ListValued = true
		case []any:
			cols := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return AxisBinding{}, fmt.Errorf("%s must hold strings, got %T", r.ColumnKey(), item)
				}
				cols = append(cols, s)
			}
			f.Columns = trimAll(cols)
			f.ListValued = true
		default:
			return AxisBinding{}, fmt.Errorf("%s has unsupported type %T", r.ColumnKey(), colRaw)
		}
		if r.HasAggregation() {
			agg, _ := raw[r.AggregationKey()].(string)
			f.Aggregation = strings.ToUpper(strings.TrimSpace(agg))
		}
		if !f.Empty() {
			b.fields[r] = f
		}
	}
	return b, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

