package trend

import (
	"sort"
	"time"

	"mediawatch/internal/domain"
)

// Group is one tracked tonality set with the label and overlay color the
// time-series chart attaches to its highlight rectangles.
type Group struct {
	Label  string
	Color  string
	Values []string
}

// Interval is a closed run of report days.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Highlight carries one interval together with its group's presentation key.
type Highlight struct {
	Label string
	Color string
	Interval
}

// CriticalIntervals returns the maximal runs of adjacent report days whose
// trailing rolling ratio of records in the tonality set reaches the
// threshold (>= comparison).
//
// Ratios are bucketed per calendar day; days without records do not exist in
// the series and are neither zero-filled nor counted by the window. The
// rolling mean spans windowDays calendar days ending at the current bucket,
// using whatever history exists (minimum fill of one bucket). Two qualifying
// days merge only when no other bucket lies between them in the series; a
// qualifying day with no qualifying neighbor yields nothing, so isolated
// spikes are never highlighted.
func CriticalIntervals(records domain.Collection, values []string, windowDays int, threshold float64) []Interval {
	dates, ratios := dailyRatios(records, values)
	if len(dates) < 2 {
		return nil
	}

	rolling := rollingMean(dates, ratios, windowDays)

	var selected []int
	for i, mean := range rolling {
		if mean >= threshold {
			selected = append(selected, i)
		}
	}

	var intervals []Interval
	runStart := 0
	for k := 1; k <= len(selected); k++ {
		if k < len(selected) && selected[k] == selected[k-1]+1 {
			continue
		}
		if k-runStart >= 2 {
			intervals = append(intervals, Interval{
				Start: dates[selected[runStart]],
				End:   dates[selected[k-1]],
			})
		}
		runStart = k
	}
	return intervals
}

// Highlights computes critical intervals for every group independently and
// concatenates the results in group order.
func Highlights(records domain.Collection, groups []Group, windowDays int, threshold float64) []Highlight {
	var out []Highlight
	for _, group := range groups {
		for _, interval := range CriticalIntervals(records, group.Values, windowDays, threshold) {
			out = append(out, Highlight{Label: group.Label, Color: group.Color, Interval: interval})
		}
	}
	return out
}

// dailyRatios buckets records by day and computes, per existing day, the
// fraction of its records whose tonality is in the set. Dates come back
// sorted ascending.
func dailyRatios(records domain.Collection, values []string) ([]time.Time, []float64) {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	type bucket struct {
		matched int
		total   int
	}
	buckets := map[time.Time]*bucket{}
	for i := range records {
		day := domain.Day(records[i].Date)
		b := buckets[day]
		if b == nil {
			b = &bucket{}
			buckets[day] = b
		}
		b.total++
		if _, ok := set[records[i].Tonality]; ok {
			b.matched++
		}
	}

	dates := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	ratios := make([]float64, len(dates))
	for i, day := range dates {
		b := buckets[day]
		ratios[i] = float64(b.matched) / float64(b.total)
	}
	return dates, ratios
}

// rollingMean computes the trailing time-based mean: for each date, the mean
// of ratios over buckets falling inside the windowDays-day window ending at
// that date. Absent calendar days simply contribute nothing.
func rollingMean(dates []time.Time, ratios []float64, windowDays int) []float64 {
	if windowDays < 1 {
		windowDays = 1
	}

	means := make([]float64, len(dates))
	start := 0
	sum := 0.0
	for i := range dates {
		sum += ratios[i]
		floor := dates[i].AddDate(0, 0, -(windowDays - 1))
		for dates[start].Before(floor) {
			sum -= ratios[start]
			start++
		}
		means[i] = sum / float64(i-start+1)
	}
	return means
}

// GroupPoint is one date's record count for one coarse tonality group,
// feeding the stacked area chart.
type GroupPoint struct {
	Date  time.Time
	Group string
	Count int
}

// GroupCounts aggregates the filtered subset into per-day counts per coarse
// tonality group, ordered by date then group label.
func GroupCounts(records domain.Collection) []GroupPoint {
	counts := map[time.Time]map[string]int{}
	for i := range records {
		day := domain.Day(records[i].Date)
		if counts[day] == nil {
			counts[day] = map[string]int{}
		}
		counts[day][domain.ToneGroup(records[i].Tonality)]++
	}

	dates := make([]time.Time, 0, len(counts))
	for day := range counts {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var points []GroupPoint
	for _, day := range dates {
		groups := make([]string, 0, len(counts[day]))
		for group := range counts[day] {
			groups = append(groups, group)
		}
		sort.Strings(groups)
		for _, group := range groups {
			points = append(points, GroupPoint{Date: day, Group: group, Count: counts[day][group]})
		}
	}
	return points
}
