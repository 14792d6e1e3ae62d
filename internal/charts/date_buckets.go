package charts

import (
	"fmt"
	"sort"
	"time"

	"gochart/domain/frame"
)

// Granularity is the calendar unit a date axis is bucketed to
type Granularity string

const (
	GranularityDay     Granularity = "Day"
	GranularityMonth   Granularity = "Month"
	GranularityQuarter Granularity = "Quarter"
	GranularityYear    Granularity = "Year"
)

var granularities = []Granularity{GranularityDay, GranularityMonth, GranularityQuarter, GranularityYear}

// DateBucketer re-buckets a date axis to the finest granularity that keeps
// the number of points at or below MaxBuckets.
type DateBucketer struct {
	MaxBuckets int
}

// NewDateBucketer creates a bucketer; maxBuckets <= 0 uses 36
func NewDateBucketer(maxBuckets int) *DateBucketer {
	if maxBuckets <= 0 {
		maxBuckets = 36
	}
	return &DateBucketer{MaxBuckets: maxBuckets}
}

// Buckets is a re-bucketed date axis with summed values
type Buckets struct {
	Granularity Granularity
	Labels      []string
	Starts      []time.Time
	Values      [][]float64
}

// Bucket groups xValues by calendar bucket, summing each values series.
// Rows whose x is null are dropped; any other unparseable x is an error.
func (b *DateBucketer) Bucket(xValues []any, values [][]float64) (*Buckets, error) {
	dates := make([]time.Time, len(xValues))
	valid := make([]bool, len(xValues))
	for i, v := range xValues {
		if v == nil {
			continue
		}
		d, ok := frame.ParseAxisDate(v)
		if !ok {
			return nil, fmt.Errorf("x value %q is not a date", frame.Label(v))
		}
		dates[i], valid[i] = d, true
	}

	g := b.choose(dates, valid)
	type bucket struct {
		start time.Time
		sums  []float64
	}
	byKey := make(map[string]*bucket)
	var keys []string
	for i := range xValues {
		if !valid[i] {
			continue
		}
		key, start := bucketOf(dates[i], g)
		bk, ok := byKey[key]
		if !ok {
			bk = &bucket{start: start, sums: make([]float64, len(values))}
			byKey[key] = bk
			keys = append(keys, key)
		}
		for s := range values {
			bk.sums[s] += values[s][i]
		}
	}
	sort.SliceStable(keys, func(i, j int) bool { return byKey[keys[i]].start.Before(byKey[keys[j]].start) })

	out := &Buckets{Granularity: g, Values: make([][]float64, len(values))}
	for _, key := range keys {
		bk := byKey[key]
		out.Labels = append(out.Labels, key)
		out.Starts = append(out.Starts, bk.start)
		for s := range values {
			out.Values[s] = append(out.Values[s], bk.sums[s])
		}
	}
	return out, nil
}

// choose starts from the finest granularity the data actually carries
// (month-start dates are never split into days) and coarsens until the
// bucket count fits.
func (b *DateBucketer) choose(dates []time.Time, valid []bool) Granularity {
	start := 0
	monthStarts, yearStarts := true, true
	for i, d := range dates {
		if !valid[i] {
			continue
		}
		if d.Day() != 1 {
			monthStarts, yearStarts = false, false
			break
		}
		if d.Month() != time.January {
			yearStarts = false
		}
	}
	switch {
	case yearStarts:
		start = 3
	case monthStarts:
		start = 1
	}

	for _, g := range granularities[start:] {
		seen := make(map[string]bool)
		for i, d := range dates {
			if valid[i] {
				key, _ := bucketOf(d, g)
				seen[key] = true
			}
		}
		if len(seen) <= b.MaxBuckets {
			return g
		}
	}
	return GranularityYear
}

func bucketOf(d time.Time, g Granularity) (string, time.Time) {
	switch g {
	case GranularityMonth:
		start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01"), start
	case GranularityQuarter:
		q := (int(d.Month())-1)/3 + 1
		start := time.Date(d.Year(), time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%d-Q%d", d.Year(), q), start
	case GranularityYear:
		start := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start.Format("2006"), start
	default:
		start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01-02"), start
	}
}
