package usecase

import (
	"log/slog"
	"sort"

	"mediawatch/internal/domain"
	"mediawatch/internal/filter"
	"mediawatch/internal/stats"
	"mediawatch/internal/trend"
)

const shareFoldThreshold = 0.02

// Params carries everything one dashboard refresh needs besides the
// collection itself.
type Params struct {
	Filter     filter.Spec
	WindowDays int
	Threshold  float64
	Groups     []trend.Group
	PageSize   int
	MaxWords   int
	Stopwords  []string
}

// Report is the full payload the presentation layer renders for one filter
// state: the date-sorted subset, per-column filter summaries, highlight
// intervals, and the chart feeds.
type Report struct {
	Records        domain.Collection
	Summaries      []string
	Highlights     []trend.Highlight
	TrendCounts    []trend.GroupPoint
	MediaShares    []stats.Share
	TonalityShares []stats.Share
	TerritoryTones map[string]string
	Words          []stats.WordCount
	Pages          int
}

// Builder recomputes reports against an immutable standardized collection.
// Every Build call is a pure function of the collection and its params;
// nothing is cached between interactions.
type Builder struct {
	collection domain.Collection
	logger     *slog.Logger
}

// NewBuilder wraps the standardized collection; logger may be nil.
func NewBuilder(collection domain.Collection, logger *slog.Logger) *Builder {
	return &Builder{collection: collection, logger: logger}
}

// Size reports how many records the base collection holds.
func (b *Builder) Size() int {
	return len(b.collection)
}

// Build filters the collection and derives every aggregate of the dashboard.
func (b *Builder) Build(params Params) Report {
	subset := params.Filter.Apply(b.collection)

	// The filter may alias the base collection; sort a copy so the shared
	// snapshot keeps its load order.
	sorted := make(domain.Collection, len(subset))
	copy(sorted, subset)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	report := Report{
		Records:        sorted,
		Summaries:      b.summaries(params.Filter),
		Highlights:     trend.Highlights(sorted, params.Groups, params.WindowDays, params.Threshold),
		TrendCounts:    trend.GroupCounts(sorted),
		MediaShares:    stats.CategoryShares(sorted, domain.FieldMedia, shareFoldThreshold),
		TonalityShares: stats.CategoryShares(sorted, domain.FieldTonality, 0),
		TerritoryTones: stats.TerritoryTones(sorted),
		Words:          stats.WordFrequencies(sorted, params.Stopwords, params.MaxWords),
		Pages:          stats.PageCount(len(sorted), params.PageSize),
	}

	if b.logger != nil {
		b.logger.Debug("report built",
			"records", len(report.Records),
			"highlights", len(report.Highlights),
			"pages", report.Pages)
	}
	return report
}

func (b *Builder) summaries(spec filter.Spec) []string {
	selections := map[domain.Field][]string{
		domain.FieldTerritory: spec.Territories,
		domain.FieldTheme:     spec.Themes,
		domain.FieldMedia:     spec.Medias,
		domain.FieldTonality:  spec.Tonalities,
	}

	var out []string
	for _, field := range domain.CategoricalFields() {
		out = append(out, filter.Summary(field.Label(), selections[field]))
	}
	return out
}
